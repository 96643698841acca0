package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oshokin/infusion-controller/internal/config"
)

var (
	// force allows config init to overwrite an existing file.
	force bool

	// errConfigExists is returned when config init would overwrite a file.
	errConfigExists = errors.New("configuration file already exists")

	// configCmd groups configuration helpers.
	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file.",
	}

	// configInitCmd writes the default configuration.
	configInitCmd = &cobra.Command{
		Use:   "init [path]",
		Short: "Write the default configuration to a YAML file.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.DefaultConfigFilename
			if len(args) > 0 {
				path = args[0]
			}

			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%w: %s (use --force to overwrite)", errConfigExists, path)
			}

			if err := config.Save(path, config.Default()); err != nil {
				return fmt.Errorf("save configuration: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Configuration written to %s\n", path)

			return nil
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	configInitCmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")

	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}
