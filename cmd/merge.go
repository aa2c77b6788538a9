package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"muton.dev/pkg/muton/internal/adapter"
	"muton.dev/pkg/muton/internal/domain"
	m "muton.dev/pkg/muton/internal/model"
)

// errNoShardReports is returned by merge when no shard wrote a report.
var errNoShardReports = errors.New("no shard reports found")

func newMergeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "merge",
		Short: "Merge sharded reports into a single report",
		Long:  "Merge the reports of shard_* subdirectories of the output directory into its report.yaml.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir := viper.GetString(outputFlagName)

			paths, err := filepath.Glob(filepath.Join(dir, "shard_*", defaultReportFile))
			if err != nil {
				return fmt.Errorf("failed to list shard reports: %w", err)
			}

			if len(paths) == 0 {
				return fmt.Errorf("%w in %s", errNoShardReports, dir)
			}

			docs := make([]m.ReportDocument, 0, len(paths))

			for _, path := range paths {
				doc, err := adapter.LoadReport(fsAdapter, m.Path(path))
				if err != nil {
					return err
				}

				docs = append(docs, doc)
			}

			merged := domain.MergeReports(docs)
			target := m.Path(filepath.Join(dir, defaultReportFile))

			if err := adapter.WriteReport(fsAdapter, target, merged); err != nil {
				return err
			}

			slog.Info("Merged shard reports", "shards", len(docs), "mutants", len(merged.Mutants), "path", target)
			cmd.Printf("Merged %d shard reports (%d mutants) into %s\n", len(docs), len(merged.Mutants), target)

			return nil
		},
	}
}

func init() {
	rootCmd.AddCommand(newMergeCmd())
}
