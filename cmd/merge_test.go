package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"muton.dev/pkg/muton/internal/adapter"
	m "muton.dev/pkg/muton/internal/model"
)

func writeShardReport(t *testing.T, output string, shard int, reports ...m.Report) {
	t.Helper()

	dir := filepath.Join(output, fmt.Sprintf("shard_%d", shard))
	require.NoError(t, os.MkdirAll(dir, 0o755))

	doc := m.ReportDocument{
		RunID:   "run",
		Module:  "example.com/calc",
		Started: time.Date(2024, 5, 1, 12, shard, 0, 0, time.UTC),
		Score:   m.MutationScore{TimeoutAsKilled: true},
		Mutants: reports,
	}

	require.NoError(t, adapter.WriteReport(fsAdapter, m.Path(filepath.Join(dir, defaultReportFile)), doc))
}

func TestMergeCmd_MergesShardReports(t *testing.T) {
	output := t.TempDir()

	writeShardReport(t, output, 0,
		m.Report{Number: 1, Status: m.Killed.String()},
		m.Report{Number: 3, Status: m.Survived.String()},
	)
	writeShardReport(t, output, 1, m.Report{Number: 2, Status: m.Killed.String()})

	cmd, out := newTestRoot(t, newMergeCmd())
	cmd.SetArgs([]string{"--output", output, "merge"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "Merged 2 shard reports (3 mutants)")

	doc, err := adapter.LoadReport(fsAdapter, m.Path(filepath.Join(output, defaultReportFile)))
	require.NoError(t, err)

	require.Len(t, doc.Mutants, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{doc.Mutants[0].Number, doc.Mutants[1].Number, doc.Mutants[2].Number})
	assert.Equal(t, 2, doc.Score.Killed)
	assert.Equal(t, 1, doc.Score.Survived)
}

func TestMergeCmd_ErrorsWithoutShards(t *testing.T) {
	cmd, _ := newTestRoot(t, newMergeCmd())
	cmd.SetArgs([]string{"--output", t.TempDir(), "merge"})

	err := cmd.Execute()
	require.ErrorIs(t, err, errNoShardReports)
}
