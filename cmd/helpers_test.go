package cmd

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"muton.dev/pkg/muton/internal/controller"
	"muton.dev/pkg/muton/internal/domain"
	m "muton.dev/pkg/muton/internal/model"
)

// newTestRoot builds a root command holding sub that prints into the
// returned buffer and logs into a temporary file.
func newTestRoot(t *testing.T, sub ...*cobra.Command) (*cobra.Command, *bytes.Buffer) {
	t.Helper()

	viper.Set(logFilenameKey, filepath.Join(t.TempDir(), "muton.log"))

	out := &bytes.Buffer{}

	cmd := newRootCmd()
	cmd.AddCommand(sub...)
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})

	return cmd, out
}

// stubRunner makes commands use runner and returns the views they passed.
func stubRunner(t *testing.T, runner domain.Runner) *[]any {
	t.Helper()

	var views []any

	original := newRunner
	newRunner = func(_ m.Path, v ...any) domain.Runner {
		views = v
		return runner
	}

	t.Cleanup(func() { newRunner = original })

	return &views
}

// stubUI makes commands print plain text.
func stubUI(t *testing.T) {
	t.Helper()

	original := newUI
	newUI = func(cmd *cobra.Command, showMutants bool) controller.UI {
		return controller.NewSimpleUI(cmd, showMutants)
	}

	t.Cleanup(func() { newUI = original })
}
