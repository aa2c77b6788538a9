package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"muton.dev/pkg/muton/internal/domain"
)

func TestNewRootCmd(t *testing.T) {
	cmd := newRootCmd()
	assert.Equal(t, "muton", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.Equal(t, rootLongDescription, cmd.Long)
	assert.NotNil(t, cmd.PersistentFlags().Lookup(outputFlagName))
	assert.NotNil(t, cmd.PersistentFlags().ShorthandLookup("v"))
}

func TestRootCmd_HelpOutput(t *testing.T) {
	cmd, out := newTestRoot(t)
	cmd.SetArgs([]string{})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "Usage:")
	assert.Contains(t, out.String(), "Targets are Go package patterns")
}

func TestRootCmd_RegistersCommands(t *testing.T) {
	for _, name := range []string{"run", "mutants", "operators", "merge", "view", "init", "version"} {
		found, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, found.Name())
	}

	found, _, err := rootCmd.Find([]string{"list"})
	require.NoError(t, err)
	assert.Equal(t, "mutants", found.Name())
}

func TestInit(t *testing.T) {
	assert.NotNil(t, fsAdapter)
	assert.NotNil(t, testAdapter)
	assert.NotNil(t, newRunner)
	assert.NotNil(t, newUI)
	assert.NotNil(t, newRunner("."))
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 1, exitCode(errors.New("boom")))
	assert.Equal(t, exitTestsFailAtOriginal, exitCode(domain.ErrTestsFailAtOriginal))
	assert.Equal(t, exitTestsFailAtOriginal, exitCode(fmt.Errorf("run: %w", domain.ErrTestsFailAtOriginal)))
}

func TestExecute(t *testing.T) {
	originalRootCmd := rootCmd
	defer func() { rootCmd = originalRootCmd }()

	mockCmd := &cobra.Command{
		Use: "test",
		RunE: func(*cobra.Command, []string) error {
			return nil
		},
	}
	mockCmd.SetOut(&bytes.Buffer{})
	mockCmd.SetErr(&bytes.Buffer{})
	mockCmd.SetArgs([]string{})

	rootCmd = mockCmd

	Execute()
}
