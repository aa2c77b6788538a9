package cmd

import (
	"github.com/spf13/cobra"

	"muton.dev/pkg/muton/internal/domain/mutagens"
)

func newOperatorsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "operators",
		Short: "List the mutation operators",
		Long:  "List the code and description of every mutation operator accepted by --operator.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ui := newUI(cmd, false)
			defer ui.Close(cmd.Context())

			return ui.DisplayOperators(cmd.Context(), mutagens.All())
		},
	}
}

func init() {
	rootCmd.AddCommand(newOperatorsCmd())
}
