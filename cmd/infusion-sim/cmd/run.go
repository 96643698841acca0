package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/oshokin/infusion-controller/internal/service/simulator"
)

var (
	// cycles overrides the configured number of cycles.
	cycles int
	// interval overrides the configured time between cycles.
	interval time.Duration
	// runSeed overrides the configured noise seed.
	runSeed uint64

	// runCmd runs the live simulation.
	runCmd = &cobra.Command{
		Use:   "run",
		Short: "Run the live closed-loop simulation.",
		Long: `Runs the closed control loop for the configured number of cycles and prints
the vital signs, PID state, infusion command and alarm status of every cycle.

Use --interval 0 to run cycles back to back. Ctrl+C stops the run cleanly.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signalContext()
			defer stop()

			options := &simulator.Options{
				ConfigPath: configPath,
				Cycles:     cycles,
				Seed:       runSeed,
				LogLevel:   logLevel,
				NoColor:    noColor,
				Output:     cmd.OutOrStdout(),
			}

			if cmd.Flags().Changed("interval") {
				options.Interval = &interval
			}

			_, err := simulator.Run(ctx, options)

			return err
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	runCmd.Flags().IntVarP(&cycles, "cycles", "n", 0, "number of control cycles (configured value when 0)")
	runCmd.Flags().DurationVarP(&interval, "interval", "i", time.Second, "time between cycles")
	runCmd.Flags().Uint64Var(&runSeed, "seed", 0, "noise seed (configured value when 0)")

	rootCmd.AddCommand(runCmd)
}
