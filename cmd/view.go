package cmd

import (
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"muton.dev/pkg/muton/internal/adapter"
	m "muton.dev/pkg/muton/internal/model"
)

func newViewCmd() *cobra.Command {
	var showMutants bool

	cmd := &cobra.Command{
		Use:   "view",
		Short: "View a previously written mutation report",
		Long:  "View the report.yaml of the output directory.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := m.Path(filepath.Join(viper.GetString(outputFlagName), defaultReportFile))

			doc, err := adapter.LoadReport(fsAdapter, path)
			if err != nil {
				return err
			}

			ui := newUI(cmd, showMutants)
			defer ui.Close(cmd.Context())

			return ui.DisplayReport(cmd.Context(), doc)
		},
	}

	cmd.Flags().BoolVar(&showMutants, showMutantsFlagName, false, "print the diff of every surviving mutant")

	return cmd
}

func init() {
	rootCmd.AddCommand(newViewCmd())
}
