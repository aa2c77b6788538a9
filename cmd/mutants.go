package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	m "muton.dev/pkg/muton/internal/model"
)

func newMutantsCmd() *cobra.Command {
	var (
		sel         selection
		showMutants bool
	)

	cmd := &cobra.Command{
		Use:     "mutants",
		Aliases: []string{"list"},
		Short:   "List the mutants of the targets",
		Long:    mutantsLongDescription,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			bindFlags(cmd, selectionBindings...)

			args, err := sel.runArgs()
			if err != nil {
				return err
			}

			wd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}

			mutants, err := newRunner(m.Path(wd)).Mutants(cmd.Context(), args)
			if err != nil {
				return err
			}

			ui := newUI(cmd, showMutants)
			defer ui.Close(cmd.Context())

			return ui.DisplayMutants(cmd.Context(), mutants)
		},
	}

	sel.register(cmd)
	cmd.Flags().BoolVar(&showMutants, showMutantsFlagName, false, "print the diff of every mutant")

	return cmd
}

func init() {
	rootCmd.AddCommand(newMutantsCmd())
}
