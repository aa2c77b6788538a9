package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// configKeys are written by init; runtime overrides such as the log file
// of a test stay out of the generated file.
var configKeys = []string{
	configVersionKey,
	outputFlagName,
	timeoutFactorKey,
	runParallelConfigKey,
	operatorsKey,
	orderKey,
	homStrategyKey,
	percentageKey,
	coverageKey,
	timeoutAsKilledKey,
	reportYAMLKey,
	uiTUIKey,
	telemetryExporterKey,
	telemetryFileKey,
	logLevelKey,
	logMaxSizeKey,
	logMaxBackupsKey,
	logMaxAgeKey,
	logCompressKey,
}

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Generate a default muton.yaml configuration file",
		Long: `Create a muton.yaml in the current working directory populated with the
current defaults so it can be edited manually. An existing file is kept.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			targetPath := filepath.Join(configFolderPath, configFileName)

			config := viper.New()
			for _, key := range configKeys {
				config.Set(key, viper.Get(key))
			}

			if err := config.SafeWriteConfigAs(targetPath); err != nil {
				return fmt.Errorf("failed to write config file: %w", err)
			}

			cmd.Printf("Wrote %s\n", targetPath)

			return nil
		},
	}
}

func init() {
	rootCmd.AddCommand(newInitCmd())
}
