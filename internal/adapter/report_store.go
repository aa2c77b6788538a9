package adapter

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	m "muton.dev/pkg/muton/internal/model"
	"muton.dev/pkg/muton/pkg"
)

// ReportStore is a view that records every mutant of a run and writes the
// YAML report when the run ends.
type ReportStore struct {
	path    m.Path
	root    m.Path
	fs      SourceFSAdapter
	spill   pkg.FileSpill[m.Report]
	doc     m.ReportDocument
	pending *m.Report
	now     func() time.Time
}

// NewReportStore creates a store writing to path. File names in the report
// are relative to the module found above dir.
func NewReportStore(path, dir m.Path, fs SourceFSAdapter) *ReportStore {
	return &ReportStore{path: path, root: dir, fs: fs, now: time.Now}
}

// Initialize starts a new report.
func (s *ReportStore) Initialize(_ context.Context, targets, tests []string) error {
	spill, err := pkg.NewFileSpill[m.Report]("")
	if err != nil {
		return fmt.Errorf("failed to create report spill: %w", err)
	}

	s.spill = spill
	s.doc = m.ReportDocument{
		RunID:   uuid.NewString(),
		Targets: targets,
		Tests:   tests,
		Started: s.now().UTC(),
	}

	if root, err := s.fs.FindProjectRoot(s.root); err == nil {
		s.root = root

		if module, err := s.fs.ModulePath(root); err == nil {
			s.doc.Module = module
		}
	}

	return nil
}

// Passed records the number of baseline tests.
func (s *ReportStore) Passed(_ context.Context, _ []m.TestResult, n int) error {
	s.doc.NumberOfTests = n
	return nil
}

// Mutation opens the record of a mutant.
func (s *ReportStore) Mutation(_ context.Context, mutant m.Mutant) error {
	file := mutant.File
	if rel, err := s.fs.RelPath(s.root, mutant.File); err == nil {
		file = rel
	}

	s.pending = &m.Report{
		Number:    mutant.Number,
		File:      file,
		Mutations: mutant.Mutations,
		Diff:      pkg.UnifiedDiff(string(file), mutant.Original, mutant.Source),
	}

	return nil
}

// Killed closes the pending record as killed.
func (s *ReportStore) Killed(_ context.Context, duration time.Duration, killer, traceback string, testsRun int) error {
	return s.finish(m.Killed, duration, killer, traceback, testsRun)
}

// Survived closes the pending record as survived.
func (s *ReportStore) Survived(_ context.Context, duration time.Duration, testsRun int) error {
	return s.finish(m.Survived, duration, "", "", testsRun)
}

// Timeout closes the pending record as timed out.
func (s *ReportStore) Timeout(_ context.Context, duration time.Duration) error {
	return s.finish(m.Timeout, duration, "", "", 0)
}

// Incompetent closes the pending record as incompetent.
func (s *ReportStore) Incompetent(_ context.Context, duration time.Duration, exception string, testsRun int) error {
	return s.finish(m.Incompetent, duration, "", exception, testsRun)
}

func (s *ReportStore) finish(status m.Status, duration time.Duration, killer, exception string, testsRun int) error {
	if s.pending == nil || s.spill == nil {
		return nil
	}

	report := *s.pending
	s.pending = nil

	report.Status = status.String()
	report.Duration = duration
	report.Killer = killer
	report.Exception = exception
	report.TestsRun = testsRun

	return s.spill.Append(report)
}

// End writes the report file.
func (s *ReportStore) End(_ context.Context, score m.MutationScore, duration time.Duration) error {
	if s.spill == nil {
		return nil
	}

	defer s.removeSpill()

	s.doc.TotalTime = duration
	s.doc.Score = score
	s.doc.MutationScore = score.Count()

	if score.AllNodes > 0 {
		s.doc.Coverage = score.Coverage()
	}

	s.doc.Mutants = make([]m.Report, 0, s.spill.Len())

	if err := s.spill.Range(func(_ uint64, report m.Report) error {
		s.doc.Mutants = append(s.doc.Mutants, report)
		return nil
	}); err != nil {
		return fmt.Errorf("failed to read report spill: %w", err)
	}

	if err := WriteReport(s.fs, s.path, s.doc); err != nil {
		slog.Error("Failed to write report", "path", s.path, "error", err)
		return err
	}

	slog.Debug("Wrote report", "path", s.path, "mutants", len(s.doc.Mutants))

	return nil
}

// Abort drops the records of a run that stopped before its end.
func (s *ReportStore) Abort(_ context.Context, _ error) error {
	s.pending = nil
	s.removeSpill()

	return nil
}

func (s *ReportStore) removeSpill() {
	if s.spill == nil {
		return
	}

	if err := s.spill.Remove(); err != nil {
		slog.Error("Failed to remove report spill", "path", s.spill.Path(), "error", err)
	}

	s.spill = nil
}

// LoadReport reads a YAML report written by a ReportStore.
func LoadReport(fs SourceFSAdapter, path m.Path) (m.ReportDocument, error) {
	var doc m.ReportDocument

	data, err := fs.ReadFile(path)
	if err != nil {
		return doc, fmt.Errorf("failed to read report %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &doc); err != nil {
		return doc, fmt.Errorf("failed to decode report %s: %w", path, err)
	}

	return doc, nil
}

// WriteReport encodes doc as YAML into path.
func WriteReport(fs SourceFSAdapter, path m.Path, doc m.ReportDocument) error {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	if err := fs.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write report %s: %w", path, err)
	}

	return nil
}
