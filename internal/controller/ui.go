// Package controller provides the console views of a mutation run.
package controller

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"muton.dev/pkg/muton/internal/domain"
	"muton.dev/pkg/muton/internal/domain/mutagens"
	m "muton.dev/pkg/muton/internal/model"
)

// UI is a view of every run event plus the static listings of the CLI.
// Implementations can use different output methods (simple text, TUI, etc).
type UI interface {
	domain.Initializer
	domain.Starter
	domain.PassReporter
	domain.OriginalFailReporter
	domain.MutationReporter
	domain.KillReporter
	domain.SurviveReporter
	domain.TimeoutReporter
	domain.IncompetentReporter
	domain.LoadFailReporter
	domain.EndReporter

	// Close releases the terminal. It is safe to call more than once.
	Close(ctx context.Context)
	DisplayOperators(ctx context.Context, operators []*mutagens.Operator) error
	DisplayMutants(ctx context.Context, mutants []m.Mutant) error
	DisplayReport(ctx context.Context, doc m.ReportDocument) error
}

// NewUI returns the TUI when useTTY is set and the command writes to a
// terminal, and the SimpleUI otherwise.
func NewUI(cmd *cobra.Command, useTTY, showMutants bool) UI {
	if useTTY && IsTTY(cmd.OutOrStdout()) {
		return NewTUI(cmd.OutOrStdout(), showMutants)
	}

	return NewSimpleUI(cmd, showMutants)
}

// IsTTY reports whether w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// terminalSize returns the size of w, or zeros when w is not a terminal.
func terminalSize(w io.Writer) (int, int) {
	f, ok := w.(*os.File)
	if !ok {
		return 0, 0
	}

	width, height, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0, 0
	}

	return width, height
}
