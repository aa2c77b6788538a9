package domain

import (
	"cmp"
	"context"
	"slices"
	"time"

	m "muton.dev/pkg/muton/internal/model"
)

// classify maps a runner verdict onto a mutant outcome. A nil result means
// the run was killed on its deadline.
func classify(result *m.TestRunResult) m.Status {
	if result == nil {
		return m.Timeout
	}

	return result.Status()
}

// recordOutcome updates score with the outcome of one mutant and tells the
// views about it.
func recordOutcome(ctx context.Context, views *Notifier, score *m.MutationScore, result *m.TestRunResult, duration time.Duration) (m.Status, error) {
	status := classify(result)
	score.Record(status)

	switch status {
	case m.Timeout:
		return status, views.Timeout(ctx, duration)
	case m.Incompetent:
		return status, views.Incompetent(ctx, duration, result.Exception, result.TestsRun)
	case m.Survived:
		return status, views.Survived(ctx, duration, result.TestsRun)
	default:
		return status, views.Killed(ctx, duration, result.Killer, result.ExceptionTraceback, result.TestsRun)
	}
}

// ScoreFromReports recounts a score from stored mutant records. Records with
// an unknown status are ignored.
func ScoreFromReports(reports []m.Report, timeoutAsKilled bool) m.MutationScore {
	score := m.NewMutationScore(timeoutAsKilled)

	for _, report := range reports {
		switch report.Status {
		case m.Killed.String():
			score.IncKilled()
		case m.Survived.String():
			score.IncSurvived()
		case m.Timeout.String():
			score.IncTimeout()
		case m.Incompetent.String():
			score.IncIncompetent()
		}
	}

	return score
}

// MergeReports combines the reports of sharded runs of the same targets.
// Mutants are ordered by number; a number seen twice keeps its first record.
// Every shard covers all targets, so coverage is taken from the first report.
func MergeReports(docs []m.ReportDocument) m.ReportDocument {
	if len(docs) == 0 {
		return m.ReportDocument{}
	}

	merged := docs[0]
	merged.Mutants = nil
	merged.TotalTime = 0

	seen := make(map[int]struct{})

	for _, doc := range docs {
		merged.TotalTime = max(merged.TotalTime, doc.TotalTime)

		if doc.Started.Before(merged.Started) {
			merged.Started = doc.Started
		}

		for _, report := range doc.Mutants {
			if _, ok := seen[report.Number]; ok {
				continue
			}

			seen[report.Number] = struct{}{}
			merged.Mutants = append(merged.Mutants, report)
		}
	}

	slices.SortStableFunc(merged.Mutants, func(a, b m.Report) int {
		return cmp.Compare(a.Number, b.Number)
	})

	counted := ScoreFromReports(merged.Mutants, docs[0].Score.TimeoutAsKilled)
	counted.UpdateCoverage(docs[0].Score.CoveredNodes, docs[0].Score.AllNodes)

	merged.Score = counted
	merged.MutationScore = counted.Count()

	if counted.AllNodes > 0 {
		merged.Coverage = counted.Coverage()
	}

	return merged
}
