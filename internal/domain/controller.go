package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/codes"

	"muton.dev/pkg/muton/internal/adapter"
	"muton.dev/pkg/muton/internal/domain/astree"
	"muton.dev/pkg/muton/internal/domain/mutagens"
	m "muton.dev/pkg/muton/internal/model"
)

// RunArgs configures one mutation run.
type RunArgs struct {
	Targets   []string
	Tests     []string
	Operators []*mutagens.Operator
	Mutator   Mutator
	// Sampler may be nil to realise every candidate.
	Sampler mutagens.Sampler
	// Coverage restricts mutation to nodes the tests execute.
	Coverage bool
	// MutationNumber, when positive, tests only that mutant.
	MutationNumber  int
	ShardIndex      int
	ShardCount      int
	TimeoutAsKilled bool
}

// Runner runs mutation testing.
type Runner interface {
	Run(ctx context.Context, args RunArgs) (m.MutationScore, error)
	Mutants(ctx context.Context, args RunArgs) ([]m.Mutant, error)
}

// MutationController drives one run: baseline, then every mutant of every
// target, reporting each step to its views.
type MutationController struct {
	loader    adapter.PackageLoader
	runner    TestRunner
	views     *Notifier
	telemetry *Telemetry
}

var _ Runner = (*MutationController)(nil)

// NewMutationController creates a controller notifying views in order.
func NewMutationController(loader adapter.PackageLoader, runner TestRunner, views ...any) *MutationController {
	return &MutationController{
		loader:    loader,
		runner:    runner,
		views:     NewNotifier(views...),
		telemetry: globalTelemetry(),
	}
}

// WithTelemetry makes the controller record into t instead of the global
// otel providers.
func (c *MutationController) WithTelemetry(t *Telemetry) *MutationController {
	c.telemetry = t
	return c
}

// baseline is what the original tests reported.
type baseline struct {
	suites   []m.TestSuite
	tests    []m.TestResult
	testsRun int
	duration time.Duration
}

// Run executes the run. A failing baseline returns ErrTestsFailAtOriginal.
// Cancelling ctx stops mutation early; the partial score is still reported
// and returned without error. Views are told with Abort when the run stops
// on an error before End.
func (c *MutationController) Run(ctx context.Context, args RunArgs) (_ m.MutationScore, err error) {
	start := time.Now()
	score := m.NewMutationScore(args.TimeoutAsKilled)
	ended := false

	c.log(c.views.Initialize(ctx, args.Targets, args.Tests))

	defer func() {
		if err != nil && !ended {
			c.log(c.views.Abort(context.WithoutCancel(ctx), err))
		}
	}()

	suites, err := c.loadTests(ctx, args.Tests)
	if err != nil {
		return score, err
	}

	targets := c.loadTargets(ctx, args.Targets)
	if len(targets) == 0 {
		return score, ErrNoTargets
	}

	base, err := c.runBaseline(ctx, suites)
	if err != nil {
		return score, err
	}

	c.log(c.views.Passed(ctx, base.tests, base.testsRun))
	c.log(c.views.Start(ctx))

	streamer := NewMutationStreamer(args.MutationNumber, args.ShardIndex, args.ShardCount)

	for _, target := range targets {
		if ctx.Err() != nil || streamer.Done() {
			break
		}

		if err := c.mutateTarget(ctx, args, target, base, streamer, &score); err != nil {
			return score, err
		}
	}

	if ctx.Err() != nil {
		slog.Info("Mutation interrupted", "mutants", score.All())
	}

	ended = true

	// The run context may be cancelled; views still get the partial score.
	if err := c.views.End(context.WithoutCancel(ctx), score, time.Since(start)); err != nil {
		slog.Error("Failed to report score", "error", err)
		return score, fmt.Errorf("failed to report score: %w", err)
	}

	return score, nil
}

// Mutants generates the mutants of the targets without running any test.
// Coverage is not collected, so every candidate is listed.
func (c *MutationController) Mutants(ctx context.Context, args RunArgs) ([]m.Mutant, error) {
	targets := c.loadTargets(ctx, args.Targets)
	if len(targets) == 0 {
		return nil, ErrNoTargets
	}

	streamer := NewMutationStreamer(args.MutationNumber, args.ShardIndex, args.ShardCount)

	var mutants []m.Mutant

	for _, target := range targets {
		if streamer.Done() {
			break
		}

		tree := astree.New(target.Fset, target.File, target.Src, target.Info, target.Types)
		opts := MutateOptions{Operators: args.Operators, Sampler: args.Sampler, Member: target.Target.Member}

		for numbered := range streamer.Stream(args.Mutator.Mutate(tree, opts)) {
			if err := ctx.Err(); err != nil {
				return mutants, err
			}

			src, err := numbered.Tree.Render()
			if err != nil {
				slog.Debug("Mutant does not render", "number", numbered.Number, "error", err)
				continue
			}

			mutants = append(mutants, m.Mutant{
				Number:    numbered.Number,
				Mutations: numbered.Mutations,
				File:      target.Target.File,
				Original:  target.Src,
				Source:    src,
			})
		}
	}

	return mutants, nil
}

func (c *MutationController) loadTests(ctx context.Context, names []string) ([]m.TestSuite, error) {
	var suites []m.TestSuite

	for _, name := range names {
		loaded, err := c.loader.LoadTests(ctx, name)
		if err != nil {
			c.log(c.views.CantLoad(ctx, name, err))
			return nil, asLoadError(name, err)
		}

		suites = append(suites, loaded...)
	}

	if len(suites) == 0 {
		return nil, ErrNoTests
	}

	return suites, nil
}

func (c *MutationController) loadTargets(ctx context.Context, names []string) []adapter.LoadedFile {
	var targets []adapter.LoadedFile

	for _, name := range names {
		loaded, err := c.loader.LoadTargets(ctx, name)
		if err != nil {
			slog.Error("Failed to load target", "name", name, "error", err)
			c.log(c.views.CantLoad(ctx, name, err))

			continue
		}

		targets = append(targets, loaded...)
	}

	return targets
}

func asLoadError(name string, err error) error {
	var loadErr *m.LoadError
	if errors.As(err, &loadErr) {
		return err
	}

	return &m.LoadError{Name: name, Err: err}
}

func (c *MutationController) runBaseline(ctx context.Context, suites []m.TestSuite) (baseline, error) {
	base := baseline{suites: suites}

	for _, suite := range suites {
		result, duration, err := c.runner.RunTest(ctx, suite)
		if err != nil {
			return base, err
		}

		passed := result.Survived && !result.Incompetent
		c.telemetry.recordBaseline(ctx, suite.Package, passed)

		if !passed {
			slog.Error("Tests fail on the original code", "package", suite.Package, "killer", result.Killer)
			c.log(c.views.OriginalTestsFail(ctx, result))

			return base, fmt.Errorf("%w: %s", ErrTestsFailAtOriginal, suite.Package)
		}

		base.tests = append(base.tests, result.Tests...)
		base.testsRun += result.TestsRun
		base.duration += duration
	}

	slog.Debug("Baseline passed", "suites", len(suites), "tests", base.testsRun, "duration", base.duration)

	return base, nil
}

func (c *MutationController) mutateTarget(
	ctx context.Context,
	args RunArgs,
	target adapter.LoadedFile,
	base baseline,
	streamer *MutationStreamer,
	score *m.MutationScore,
) error {
	tree := astree.New(target.Fset, target.File, target.Src, target.Info, target.Types)

	opts := MutateOptions{Operators: args.Operators, Sampler: args.Sampler, Member: target.Target.Member}

	var coverage *CoverageInjector

	if args.Coverage {
		covStart := time.Now()

		injector, _, err := c.runner.InjectCoverage(ctx, target.Target, tree, base.suites)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}

			slog.Error("Failed to collect coverage", "target", target.Target.File, "error", err)

			return fmt.Errorf("failed to collect coverage of %s: %w", target.Target.File, err)
		}

		c.telemetry.recordCoverage(ctx, target.Target, time.Since(covStart))
		score.UpdateCoverage(injector.CoveredNodes(), injector.AllNodes())

		coverage = injector
		opts.Coverage = injector
	}

	for mutant := range streamer.Stream(args.Mutator.Mutate(tree, opts)) {
		if ctx.Err() != nil {
			return nil
		}

		if err := c.testMutant(ctx, target, mutant, base, coverage, score); err != nil {
			return err
		}
	}

	return nil
}

func (c *MutationController) testMutant(
	ctx context.Context,
	target adapter.LoadedFile,
	numbered NumberedMutant,
	base baseline,
	coverage *CoverageInjector,
	score *m.MutationScore,
) error {
	src, renderErr := numbered.Tree.Render()

	mutant := m.Mutant{
		Number:    numbered.Number,
		Mutations: numbered.Mutations,
		File:      target.Target.File,
		Original:  target.Src,
		Source:    src,
	}

	ctx, span := c.telemetry.startMutantSpan(ctx, mutant)
	defer span.End()

	c.log(c.views.Mutation(ctx, mutant))

	var (
		result   *m.TestRunResult
		duration time.Duration
	)

	if renderErr != nil {
		slog.Debug("Mutant does not render", "number", mutant.Number, "error", renderErr)
		result = &m.TestRunResult{Incompetent: true, Exception: renderErr.Error(), ExceptionTraceback: renderErr.Error()}
	} else {
		var err error

		result, duration, err = c.runner.RunTestsWithMutant(ctx, base.duration, target.Target, src, mutant.Mutations, coverage, base.suites)
		if err != nil {
			if ctx.Err() != nil {
				span.SetStatus(codes.Error, "interrupted")
				return nil
			}

			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			slog.Error("Failed to test mutant", "number", mutant.Number, "file", mutant.File, "error", err)

			return fmt.Errorf("failed to test mutant %d: %w", mutant.Number, err)
		}
	}

	status, err := recordOutcome(ctx, c.views, score, result, duration)
	c.telemetry.recordMutant(ctx, status, duration)
	c.log(err)

	testsRun := 0
	if result != nil {
		testsRun = result.TestsRun
	}

	setMutantSpanResult(span, status, testsRun)
	slog.Debug("Tested mutant", "number", mutant.Number, "mutations", mutant.Describe(), "status", status, "duration", duration)

	return nil
}

// log records view errors. Views never stop a run.
func (c *MutationController) log(err error) {
	if err != nil {
		slog.Error("View failed", "error", err)
	}
}
