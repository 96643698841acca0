package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/oshokin/infusion-controller/internal/logger"
	"github.com/oshokin/infusion-controller/internal/service/common"
	"github.com/oshokin/infusion-controller/internal/version"
)

const (
	// defaultEnvFile is loaded when present and --env-file is not given.
	defaultEnvFile = ".env"
	// envConfigPath supplies --config when the flag is not set.
	envConfigPath = "INFUSION_CONFIG"
	// envLogLevel supplies --log-level when the flag is not set.
	envLogLevel = "INFUSION_LOG_LEVEL"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// envFile is the dotenv file loaded before running.
	envFile string
	// logLevel overrides the configured log level.
	logLevel string
	// noColor disables ANSI colours in the console report.
	noColor bool

	// rootCmd represents the base command of the simulator.
	rootCmd = &cobra.Command{
		Use:   "infusion-sim",
		Short: "Simulate a closed-loop infusion controller.",
		Long: `Simulates a closed-loop infusion controller against a patient response model.

Each control cycle reads the patient's vital signs, computes a PID target from
the heart rate, ramps the infusion command toward it, checks every vital sign
against the safety thresholds and applies the command to the patient model.
Critical hypoxemia stops the infusion immediately.

Settings come from an optional YAML file (see "config init"). Environment
variables INFUSION_CONFIG and INFUSION_LOG_LEVEL, optionally loaded from a
.env file, provide defaults for --config and --log-level.`,
		SilenceUsage:      true,
		PersistentPreRunE: prepareEnvironment,
	}
)

// Execute runs the infusion-sim CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	defer logger.Sync()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// signalContext returns a context canceled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
}

// prepareEnvironment loads the dotenv file, fills unset flags from the
// environment and applies the log level.
func prepareEnvironment(cmd *cobra.Command, _ []string) error {
	if err := loadEnvFile(cmd.Flags().Changed("env-file")); err != nil {
		return err
	}

	if value, ok := os.LookupEnv(envConfigPath); ok && !cmd.Flags().Changed("config") {
		configPath = value
	}

	if value, ok := os.LookupEnv(envLogLevel); ok && !cmd.Flags().Changed("log-level") {
		logLevel = value
	}

	return common.ApplyLogLevel(logLevel)
}

// loadEnvFile loads envFile. A missing default file is not an error.
func loadEnvFile(explicit bool) error {
	if envFile == "" {
		return nil
	}

	if _, err := os.Stat(envFile); err != nil && !explicit && errors.Is(err, os.ErrNotExist) {
		return nil
	}

	if err := godotenv.Load(envFile); err != nil {
		return fmt.Errorf("load env file %s: %w", envFile, err)
	}

	return nil
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup persistent flags shared by every subcommand.
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to configuration file (defaults built in)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", defaultEnvFile, "dotenv file with INFUSION_* variables")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable coloured output")
}
