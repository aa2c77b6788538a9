package domain

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"muton.dev/pkg/muton/internal/adapter"
	"muton.dev/pkg/muton/internal/domain/astree"
	m "muton.dev/pkg/muton/internal/model"
)

// minBaseline is the smallest baseline a mutant's time budget is scaled from.
const minBaseline = time.Second

// TestRunner runs test suites against the original program, an instrumented
// copy of one target, or a mutant of it.
type TestRunner interface {
	// RunTest runs one suite unmodified.
	RunTest(ctx context.Context, suite m.TestSuite) (m.TestRunResult, time.Duration, error)

	// InjectCoverage runs every test of suites against a probe-instrumented
	// copy of target and records which probes each test hit.
	InjectCoverage(ctx context.Context, target m.Target, tree *astree.Tree, suites []m.TestSuite) (*CoverageInjector, *CoverageResult, error)

	// RunTestsWithMutant runs suites with mutant in place of target. A nil
	// result means the run exceeded its time budget.
	RunTestsWithMutant(
		ctx context.Context,
		baseline time.Duration,
		target m.Target,
		mutant []byte,
		mutations []m.Mutation,
		coverage *CoverageInjector,
		suites []m.TestSuite,
	) (*m.TestRunResult, time.Duration, error)
}

// Orchestrator is the TestRunner that injects files through go build
// overlays. Every cycle works in its own temporary directory, removed when
// the cycle ends.
type Orchestrator struct {
	fsAdapter     adapter.SourceFSAdapter
	testAdapter   adapter.TestRunnerAdapter
	timeoutFactor float64
	parallel      int
}

// NewOrchestrator constructs an Orchestrator backed by the provided
// filesystem and test runner adapters. A mutant may run for timeoutFactor
// times the baseline; coverage collection runs up to parallel tests at once.
func NewOrchestrator(fsAdapter adapter.SourceFSAdapter, testAdapter adapter.TestRunnerAdapter, timeoutFactor float64, parallel int) *Orchestrator {
	if timeoutFactor <= 0 {
		timeoutFactor = 5
	}

	if parallel <= 0 {
		parallel = 1
	}

	return &Orchestrator{
		fsAdapter:     fsAdapter,
		testAdapter:   testAdapter,
		timeoutFactor: timeoutFactor,
		parallel:      parallel,
	}
}

// Budget returns the time a mutant run may take given the baseline duration.
func (o *Orchestrator) Budget(baseline time.Duration) time.Duration {
	return time.Duration(o.timeoutFactor * float64(max(baseline, minBaseline)))
}

// RunTest builds and runs suite. The returned duration covers the test run
// only.
func (o *Orchestrator) RunTest(ctx context.Context, suite m.TestSuite) (m.TestRunResult, time.Duration, error) {
	tmpDir, err := o.fsAdapter.CreateTempDir("muton-baseline-*")
	if err != nil {
		slog.Error("Failed to create temp dir", "error", err)
		return m.TestRunResult{}, 0, fmt.Errorf("failed to create temp dir: %w", err)
	}

	defer o.cleanupTempDir(tmpDir)

	binary := o.fsAdapter.JoinPath(string(tmpDir), "baseline.test")

	if err := o.testAdapter.BuildTestBinary(ctx, suite, "", binary); err != nil {
		if errors.Is(err, adapter.ErrBuildFailed) {
			return incompetent(err), 0, nil
		}

		slog.Error("Failed to build tests", "package", suite.Package, "error", err)

		return m.TestRunResult{}, 0, fmt.Errorf("failed to build tests of %s: %w", suite.Package, err)
	}

	start := time.Now()

	result, err := o.testAdapter.RunTestBinary(ctx, adapter.TestRun{
		Binary:  binary,
		Dir:     suite.Dir,
		Package: suite.Package,
	})
	if err != nil {
		slog.Error("Failed to run tests", "package", suite.Package, "error", err)
		return m.TestRunResult{}, 0, fmt.Errorf("failed to run tests of %s: %w", suite.Package, err)
	}

	return result, time.Since(start), nil
}

// InjectCoverage runs each test in its own process so hits can be told apart.
func (o *Orchestrator) InjectCoverage(
	ctx context.Context,
	target m.Target,
	tree *astree.Tree,
	suites []m.TestSuite,
) (*CoverageInjector, *CoverageResult, error) {
	src, err := tree.Instrument()
	if err != nil {
		return nil, nil, err
	}

	tmpDir, overlay, err := o.stage(target, src, "muton-coverage-*")
	if tmpDir != "" {
		defer o.cleanupTempDir(tmpDir)
	}

	if err != nil {
		return nil, nil, err
	}

	result := &CoverageResult{PerTest: make(map[m.TestID]map[int]struct{})}

	var mu sync.Mutex

	for i, suite := range suites {
		binary := o.fsAdapter.JoinPath(string(tmpDir), fmt.Sprintf("suite%d.test", i))

		if err := o.testAdapter.BuildTestBinary(ctx, suite, overlay, binary); err != nil {
			slog.Error("Failed to build instrumented tests", "package", suite.Package, "error", err)
			return nil, nil, fmt.Errorf("failed to build instrumented tests of %s: %w", suite.Package, err)
		}

		tests, err := o.testAdapter.ListTests(ctx, binary, suite.Dir)
		if err != nil {
			return nil, nil, err
		}

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(o.parallel)

		for j, test := range tests {
			g.Go(func() error {
				hitsFile := o.fsAdapter.JoinPath(string(tmpDir), fmt.Sprintf("hits-%d-%d", i, j))

				if _, err := o.testAdapter.RunTestBinary(gctx, adapter.TestRun{
					Binary:  binary,
					Dir:     suite.Dir,
					Package: suite.Package,
					Tests:   []string{test},
					Env:     []string{astree.CoverageEnv + "=" + string(hitsFile)},
				}); err != nil {
					return fmt.Errorf("failed to collect coverage of %s: %w", test, err)
				}

				markers, err := o.readMarkers(hitsFile)
				if err != nil {
					return err
				}

				mu.Lock()
				result.PerTest[m.TestID{Package: suite.Package, Name: test}] = markers
				result.TestsRun++
				mu.Unlock()

				return nil
			})
		}

		if err := g.Wait(); err != nil {
			slog.Error("Failed to collect coverage", "target", target.File, "error", err)
			return nil, nil, err
		}
	}

	slog.Debug("Collected coverage", "target", target.File, "tests", result.TestsRun)

	return NewCoverageInjector(tree, result), result, nil
}

func (o *Orchestrator) readMarkers(path m.Path) (markerSet, error) {
	markers := make(markerSet)

	data, err := o.fsAdapter.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return markers, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read coverage markers: %w", err)
	}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		marker, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
		if err != nil {
			continue
		}

		markers[marker] = struct{}{}
	}

	return markers, nil
}

// RunTestsWithMutant builds every suite against the mutant, then runs them
// under one deadline. Suites stop at the first kill.
func (o *Orchestrator) RunTestsWithMutant(
	ctx context.Context,
	baseline time.Duration,
	target m.Target,
	mutant []byte,
	mutations []m.Mutation,
	coverage *CoverageInjector,
	suites []m.TestSuite,
) (*m.TestRunResult, time.Duration, error) {
	start := time.Now()

	tmpDir, overlay, err := o.stage(target, mutant, "muton-mutant-*")
	if tmpDir != "" {
		defer o.cleanupTempDir(tmpDir)
	}

	if err != nil {
		return nil, 0, err
	}

	runs := make([]adapter.TestRun, 0, len(suites))

	for i, suite := range suites {
		tests, skip := selectTests(suite, coverage, mutations)
		if skip {
			continue
		}

		binary := o.fsAdapter.JoinPath(string(tmpDir), fmt.Sprintf("suite%d.test", i))

		if err := o.testAdapter.BuildTestBinary(ctx, suite, overlay, binary); err != nil {
			if errors.Is(err, adapter.ErrBuildFailed) {
				result := incompetent(err)
				return &result, time.Since(start), nil
			}

			return nil, time.Since(start), fmt.Errorf("failed to build mutant tests of %s: %w", suite.Package, err)
		}

		runs = append(runs, adapter.TestRun{
			Binary:  binary,
			Dir:     suite.Dir,
			Package: suite.Package,
			Tests:   tests,
		})
	}

	runCtx, cancel := context.WithTimeout(ctx, o.Budget(baseline))
	defer cancel()

	merged := m.TestRunResult{Survived: true}

	for _, run := range runs {
		result, err := o.testAdapter.RunTestBinary(runCtx, run)
		if err != nil {
			if ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
				slog.Debug("Mutant timed out", "target", target.File, "budget", o.Budget(baseline))
				return nil, time.Since(start), nil
			}

			return nil, time.Since(start), fmt.Errorf("failed to run mutant tests: %w", err)
		}

		merged.Merge(result)

		if merged.Incompetent || !merged.Survived {
			break
		}
	}

	return &merged, time.Since(start), nil
}

// stage writes src into a fresh temp dir together with an overlay mapping
// target.File onto it.
func (o *Orchestrator) stage(target m.Target, src []byte, pattern string) (m.Path, m.Path, error) {
	tmpDir, err := o.fsAdapter.CreateTempDir(pattern)
	if err != nil {
		slog.Error("Failed to create temp dir", "error", err)
		return "", "", fmt.Errorf("failed to create temp dir: %w", err)
	}

	path := o.fsAdapter.JoinPath(string(tmpDir), filepath.Base(string(target.File)))

	if err := o.fsAdapter.WriteFile(path, src, 0o600); err != nil {
		slog.Error("Failed to write mutated file", "path", path, "error", err)
		return tmpDir, "", fmt.Errorf("failed to write mutated file: %w", err)
	}

	overlay, err := o.fsAdapter.WriteOverlay(tmpDir, map[m.Path]m.Path{target.File: path})
	if err != nil {
		return tmpDir, "", err
	}

	return tmpDir, overlay, nil
}

// selectTests narrows suite to the tests covering the mutations. skip is
// true when no test of suite reaches them.
func selectTests(suite m.TestSuite, coverage *CoverageInjector, mutations []m.Mutation) ([]string, bool) {
	if coverage == nil {
		return nil, false
	}

	tests, all := coverage.TestsFor(mutations)
	if all {
		return nil, false
	}

	var names []string

	for _, test := range tests {
		if test.Package == suite.Package {
			names = append(names, test.Name)
		}
	}

	return names, len(names) == 0
}

func incompetent(err error) m.TestRunResult {
	traceback := strings.TrimSpace(strings.TrimPrefix(err.Error(), adapter.ErrBuildFailed.Error()+":"))
	exception := ""

	for _, line := range strings.Split(traceback, "\n") {
		if line = strings.TrimSpace(line); line != "" && !strings.HasPrefix(line, "#") {
			exception = line
			break
		}
	}

	return m.TestRunResult{
		Incompetent:        true,
		Exception:          exception,
		ExceptionTraceback: traceback,
	}
}

// cleanupTempDir removes the temporary directory, logging errors if cleanup fails.
func (o *Orchestrator) cleanupTempDir(tmpDir m.Path) {
	if err := o.fsAdapter.RemoveAll(tmpDir); err != nil {
		slog.Error("Failed to cleanup temp dir", "tmpDir", tmpDir, "error", err)
	}
}
