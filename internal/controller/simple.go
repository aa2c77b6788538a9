package controller

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"muton.dev/pkg/muton/internal/domain/mutagens"
	m "muton.dev/pkg/muton/internal/model"
	"muton.dev/pkg/muton/pkg"
)

// SimpleUI implements UI by printing one line per event to the command output.
type SimpleUI struct {
	cmd         *cobra.Command
	showMutants bool
	pending     *m.Mutant
}

var _ UI = (*SimpleUI)(nil)

// NewSimpleUI creates a new SimpleUI. With showMutants the diff of every
// surviving mutant is printed.
func NewSimpleUI(cmd *cobra.Command, showMutants bool) *SimpleUI {
	return &SimpleUI{cmd: cmd, showMutants: showMutants}
}

// Initialize prints the run parameters.
func (s *SimpleUI) Initialize(_ context.Context, targets, tests []string) error {
	s.printf("[*] Start mutation process:\n")
	s.printf("   - targets: %s\n", strings.Join(targets, ", "))
	s.printf("   - tests: %s\n", strings.Join(tests, ", "))

	return nil
}

// Passed prints the baseline tests.
func (s *SimpleUI) Passed(_ context.Context, tests []m.TestResult, numberOfTests int) error {
	s.printf("[*] %d tests passed:\n", numberOfTests)

	for _, test := range tests {
		s.printf("   - %s [%.5f s]\n", test.ID, test.Duration.Seconds())
	}

	return nil
}

// OriginalTestsFail prints the failing baseline.
func (s *SimpleUI) OriginalTestsFail(_ context.Context, result m.TestRunResult) error {
	s.printf("[*] Tests failed:\n")

	switch {
	case result.Incompetent:
		s.printf("   - build error: %s\n", result.Exception)
	default:
		s.printf("   - fail in %s - %s\n", result.Killer, result.Exception)
	}

	return nil
}

// Start announces mutation.
func (s *SimpleUI) Start(context.Context) error {
	s.printf("[*] Start mutants generation and execution:\n")
	return nil
}

// Mutation remembers the mutant; its line is printed with the outcome.
func (s *SimpleUI) Mutation(_ context.Context, mutant m.Mutant) error {
	s.pending = &mutant
	return nil
}

// Killed prints a killed mutant.
func (s *SimpleUI) Killed(_ context.Context, duration time.Duration, killer, _ string, _ int) error {
	s.outcome(duration, "killed by "+killer, false)
	return nil
}

// Survived prints a surviving mutant, with its diff when enabled.
func (s *SimpleUI) Survived(_ context.Context, duration time.Duration, _ int) error {
	s.outcome(duration, "survived", s.showMutants)
	return nil
}

// Timeout prints a timed out mutant.
func (s *SimpleUI) Timeout(_ context.Context, duration time.Duration) error {
	s.outcome(duration, "timeout", false)
	return nil
}

// Incompetent prints an incompetent mutant.
func (s *SimpleUI) Incompetent(_ context.Context, duration time.Duration, exception string, _ int) error {
	s.outcome(duration, "incompetent: "+firstLine(exception), false)
	return nil
}

// CantLoad prints a name that failed to load.
func (s *SimpleUI) CantLoad(_ context.Context, name string, err error) error {
	s.printf("[!] can't load %s: %v\n", name, err)
	return nil
}

// End prints the score summary.
func (s *SimpleUI) End(_ context.Context, score m.MutationScore, duration time.Duration) error {
	s.printf("[*] Summary:\n%s", renderScoreTable(score, duration))

	return nil
}

// Close is a no-op for SimpleUI.
func (s *SimpleUI) Close(context.Context) {}

// DisplayOperators prints the operator catalogue.
func (s *SimpleUI) DisplayOperators(_ context.Context, operators []*mutagens.Operator) error {
	s.printf("%s", renderOperatorsTable(operators))
	return nil
}

// DisplayMutants prints generated mutants, with diffs when enabled.
func (s *SimpleUI) DisplayMutants(_ context.Context, mutants []m.Mutant) error {
	s.printf("%s", renderMutantsTable(mutants))

	if !s.showMutants {
		return nil
	}

	for _, mutant := range mutants {
		s.printf("\n[#%4d] %s\n%s\n", mutant.Number, mutant.Describe(),
			pkg.UnifiedDiff(displayPath(mutant.File), mutant.Original, mutant.Source))
	}

	return nil
}

// DisplayReport prints a stored report.
func (s *SimpleUI) DisplayReport(_ context.Context, doc m.ReportDocument) error {
	writeReport(s.cmd.OutOrStdout(), doc, s.showMutants)
	return nil
}

func (s *SimpleUI) outcome(duration time.Duration, verdict string, diff bool) {
	if s.pending == nil {
		return
	}

	mutant := *s.pending
	s.pending = nil

	s.printf("   - [#%4d] %s %s: [%.5f s] %s\n",
		mutant.Number,
		strings.Join(mutant.Operators(), ","),
		location(mutant.File, mutant.Mutations),
		duration.Seconds(),
		verdict)

	if diff {
		s.printf("%s\n", pkg.UnifiedDiff(displayPath(mutant.File), mutant.Original, mutant.Source))
	}
}

func (s *SimpleUI) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(s.cmd.OutOrStdout(), format, args...)
}

// writeReport prints a report summary, its mutants and optionally the diffs
// of the surviving ones.
func writeReport(w io.Writer, doc m.ReportDocument, showMutants bool) {
	_, _ = fmt.Fprintf(w, "Run %s", doc.RunID)
	if doc.Module != "" {
		_, _ = fmt.Fprintf(w, " of %s", doc.Module)
	}

	_, _ = fmt.Fprintf(w, " started %s\n", doc.Started.Format(time.RFC3339))
	_, _ = fmt.Fprintf(w, "%s\n", renderReportTable(doc.Mutants))
	_, _ = fmt.Fprintf(w, "%s", renderScoreTable(doc.Score, doc.TotalTime))

	if !showMutants {
		return
	}

	for _, report := range doc.Mutants {
		if report.Status != m.Survived.String() || report.Diff == "" {
			continue
		}

		_, _ = fmt.Fprintf(w, "\n[#%4d] %s\n%s\n", report.Number, report.Status, report.Diff)
	}
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
