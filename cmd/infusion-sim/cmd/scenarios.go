package cmd

import (
	"github.com/spf13/cobra"

	"github.com/oshokin/infusion-controller/internal/service/scenarios"
)

var (
	// scenarioSeed overrides the configured noise seed.
	scenarioSeed uint64

	// scenariosCmd runs the reference scenarios.
	scenariosCmd = &cobra.Command{
		Use:   "scenarios",
		Short: "Run the reference test scenarios.",
		Long: `Runs three reference scenarios against fresh sessions:
normal patient response, a simulated hypoxemia alarm, and the PID response to
a high heart rate. Exits with a non-zero status when any scenario fails.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signalContext()
			defer stop()

			_, err := scenarios.Run(ctx, &scenarios.Options{
				ConfigPath: configPath,
				Seed:       scenarioSeed,
				NoColor:    noColor,
				Output:     cmd.OutOrStdout(),
			})

			return err
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	scenariosCmd.Flags().Uint64Var(&scenarioSeed, "seed", 0, "noise seed (configured value when 0)")

	rootCmd.AddCommand(scenariosCmd)
}
