package domain_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"go/parser"
	"go/token"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"muton.dev/pkg/muton/internal/adapter"
	adaptermocks "muton.dev/pkg/muton/internal/adapter/mocks"
	"muton.dev/pkg/muton/internal/domain"
	"muton.dev/pkg/muton/internal/domain/astree"
	domainmocks "muton.dev/pkg/muton/internal/domain/mocks"
	m "muton.dev/pkg/muton/internal/model"
)

const mulSource = `package mul

func Mul(x int) int {
	return x * x
}
`

var mulSuite = m.TestSuite{Name: ".", Package: "example.com/mul", Dir: "/src/mul", ModuleRoot: "/src/mul"}

func loadedFile(t *testing.T, path, src string) adapter.LoadedFile {
	t.Helper()

	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, path, src, parser.ParseComments|parser.SkipObjectResolution)
	require.NoError(t, err)

	return adapter.LoadedFile{
		Target: m.Target{Name: ".", Package: "example.com/mul", File: m.Path(path), Dir: "/src/mul"},
		Fset:   fset,
		File:   file,
		Src:    []byte(src),
	}
}

// recorder is a view implementing every reporter.
type recorder struct {
	events  []string
	mutants []m.Mutant
	score   m.MutationScore
	failed  *m.TestRunResult
	err     error
}

func (r *recorder) add(event string) error {
	r.events = append(r.events, event)
	return r.err
}

func (r *recorder) Initialize(context.Context, []string, []string) error { return r.add("initialize") }
func (r *recorder) Start(context.Context) error                         { return r.add("start") }

func (r *recorder) Passed(_ context.Context, _ []m.TestResult, n int) error {
	return r.add(fmt.Sprintf("passed %d", n))
}

func (r *recorder) OriginalTestsFail(_ context.Context, result m.TestRunResult) error {
	r.failed = &result
	return r.add("original fail")
}

func (r *recorder) Mutation(_ context.Context, mutant m.Mutant) error {
	r.mutants = append(r.mutants, mutant)
	return r.add(fmt.Sprintf("mutation %d", mutant.Number))
}

func (r *recorder) Killed(_ context.Context, _ time.Duration, killer, _ string, _ int) error {
	return r.add("killed by " + killer)
}

func (r *recorder) Survived(context.Context, time.Duration, int) error { return r.add("survived") }
func (r *recorder) Timeout(context.Context, time.Duration) error       { return r.add("timeout") }

func (r *recorder) Incompetent(_ context.Context, _ time.Duration, exception string, _ int) error {
	return r.add("incompetent: " + exception)
}

func (r *recorder) CantLoad(_ context.Context, name string, _ error) error {
	return r.add("cant load " + name)
}

func (r *recorder) Abort(context.Context, error) error { return r.add("abort") }

func (r *recorder) End(_ context.Context, score m.MutationScore, _ time.Duration) error {
	r.score = score
	return r.add("end")
}

type controllerFixture struct {
	loader *adaptermocks.MockPackageLoader
	runner *domainmocks.MockTestRunner
	view   *recorder
	ctrl   *domain.MutationController
}

func newControllerFixture(t *testing.T) *controllerFixture {
	t.Helper()

	f := &controllerFixture{
		loader: new(adaptermocks.MockPackageLoader),
		runner: new(domainmocks.MockTestRunner),
		view:   &recorder{},
	}

	f.loader.On("LoadTests", mock.Anything, "./...").Return([]m.TestSuite{mulSuite}, nil).Maybe()
	f.loader.On("LoadTargets", mock.Anything, "./mul").Return([]adapter.LoadedFile{loadedFile(t, "/src/mul/mul.go", mulSource)}, nil).Maybe()

	f.ctrl = domain.NewMutationController(f.loader, f.runner, f.view)

	return f
}

func (f *controllerFixture) passingBaseline() {
	f.runner.On("RunTest", mock.Anything, mulSuite).
		Return(m.TestRunResult{Survived: true, TestsRun: 1}, 2*time.Second, nil).Once()
}

func runArgs(t *testing.T) domain.RunArgs {
	return domain.RunArgs{
		Targets:         []string{"./mul"},
		Tests:           []string{"./..."},
		Operators:       operators(t, "AOR"),
		Mutator:         domain.NewFirstOrderMutator(),
		TimeoutAsKilled: true,
	}
}

// killUnlessAdd kills every mutant except the one turning x * x into x + x.
func killUnlessAdd(src []byte) *m.TestRunResult {
	if bytes.Contains(src, []byte("x + x")) {
		return &m.TestRunResult{Survived: true, TestsRun: 1}
	}

	return &m.TestRunResult{Killer: "example.com/mul.TestMul", Exception: "Mul(2) = 1, want 4", TestsRun: 1}
}

func TestMutationController_EndToEnd(t *testing.T) {
	f := newControllerFixture(t)
	f.passingBaseline()
	f.runner.On("RunTestsWithMutant", mock.Anything, 2*time.Second, mock.Anything, mock.Anything, mock.Anything, (*domain.CoverageInjector)(nil), []m.TestSuite{mulSuite}).
		Return(killUnlessAdd, time.Millisecond, nil).Times(3)

	score, err := f.ctrl.Run(context.Background(), runArgs(t))
	require.NoError(t, err)

	assert.Equal(t, 3, score.All())
	assert.Equal(t, 2, score.Killed)
	assert.Equal(t, 1, score.Survived)
	assert.Equal(t, score, f.view.score)

	assert.Equal(t, []string{
		"initialize", "passed 1", "start",
		"mutation 1", "killed by example.com/mul.TestMul",
		"mutation 2", "killed by example.com/mul.TestMul",
		"mutation 3", "survived",
		"end",
	}, f.view.events)

	require.Len(t, f.view.mutants, 3)
	assert.Equal(t, m.Path("/src/mul/mul.go"), f.view.mutants[0].File)
	assert.Equal(t, []byte(mulSource), f.view.mutants[0].Original)
	assert.Contains(t, string(f.view.mutants[0].Source), "x / x")
	assert.Equal(t, "AOR", f.view.mutants[0].Mutations[0].Operator)
	f.runner.AssertExpectations(t)
}

func TestMutationController_BaselineFailureStopsRun(t *testing.T) {
	f := newControllerFixture(t)
	f.runner.On("RunTest", mock.Anything, mulSuite).
		Return(m.TestRunResult{Killer: "example.com/mul.TestMul", TestsRun: 1}, time.Second, nil).Once()

	_, err := f.ctrl.Run(context.Background(), runArgs(t))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrTestsFailAtOriginal)

	assert.Equal(t, []string{"initialize", "original fail", "abort"}, f.view.events)
	require.NotNil(t, f.view.failed)
	assert.Equal(t, "example.com/mul.TestMul", f.view.failed.Killer)
	f.runner.AssertNotCalled(t, "RunTestsWithMutant", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestMutationController_BaselineBuildFailureStopsRun(t *testing.T) {
	f := newControllerFixture(t)
	f.runner.On("RunTest", mock.Anything, mulSuite).
		Return(m.TestRunResult{Incompetent: true, Exception: "undefined: y"}, time.Duration(0), nil).Once()

	_, err := f.ctrl.Run(context.Background(), runArgs(t))
	assert.ErrorIs(t, err, domain.ErrTestsFailAtOriginal)
	assert.Empty(t, f.view.mutants)
}

func TestMutationController_TimeoutIsClassified(t *testing.T) {
	f := newControllerFixture(t)
	f.passingBaseline()
	f.runner.On("RunTestsWithMutant", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, 10*time.Second, nil).Times(3)

	args := runArgs(t)

	score, err := f.ctrl.Run(context.Background(), args)
	require.NoError(t, err)
	assert.Equal(t, 3, score.Timeout)
	assert.InDelta(t, 100.0, score.Count(), 1e-9)
	assert.Contains(t, f.view.events, "timeout")

	f = newControllerFixture(t)
	f.passingBaseline()
	f.runner.On("RunTestsWithMutant", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, 10*time.Second, nil).Times(3)

	args.TimeoutAsKilled = false

	score, err = f.ctrl.Run(context.Background(), args)
	require.NoError(t, err)
	assert.Equal(t, 3, score.Timeout)
	assert.Zero(t, score.Count())
}

func TestMutationController_IncompetentMutant(t *testing.T) {
	f := newControllerFixture(t)
	f.passingBaseline()
	f.runner.On("RunTestsWithMutant", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&m.TestRunResult{Incompetent: true, Exception: "./mul.go:4:9: invalid operation"}, time.Millisecond, nil).Times(3)

	score, err := f.ctrl.Run(context.Background(), runArgs(t))
	require.NoError(t, err)
	assert.Equal(t, 3, score.Incompetent)
	assert.Zero(t, score.Count())
	assert.Contains(t, f.view.events, "incompetent: ./mul.go:4:9: invalid operation")
}

func TestMutationController_TargetLoadFailureIsSkipped(t *testing.T) {
	f := newControllerFixture(t)
	f.loader.On("LoadTargets", mock.Anything, "./missing").
		Return(nil, &m.LoadError{Name: "./missing", Err: adapter.ErrNoPackages}).Once()
	f.passingBaseline()
	f.runner.On("RunTestsWithMutant", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(killUnlessAdd, time.Millisecond, nil).Times(3)

	args := runArgs(t)
	args.Targets = []string{"./missing", "./mul"}

	score, err := f.ctrl.Run(context.Background(), args)
	require.NoError(t, err)
	assert.Equal(t, 3, score.All())
	assert.Contains(t, f.view.events, "cant load ./missing")
}

func TestMutationController_NoTargets(t *testing.T) {
	f := newControllerFixture(t)
	f.loader.On("LoadTargets", mock.Anything, "./missing").
		Return(nil, &m.LoadError{Name: "./missing", Err: adapter.ErrNoPackages}).Once()

	args := runArgs(t)
	args.Targets = []string{"./missing"}

	_, err := f.ctrl.Run(context.Background(), args)
	assert.ErrorIs(t, err, domain.ErrNoTargets)
	assert.Equal(t, "abort", f.view.events[len(f.view.events)-1])
	f.runner.AssertNotCalled(t, "RunTest", mock.Anything, mock.Anything)
}

func TestMutationController_TestLoadFailureAborts(t *testing.T) {
	f := newControllerFixture(t)
	f.loader.On("LoadTests", mock.Anything, "./nope").Return(nil, errors.New("no such package")).Once()

	args := runArgs(t)
	args.Tests = []string{"./nope"}

	_, err := f.ctrl.Run(context.Background(), args)
	require.Error(t, err)

	var loadErr *m.LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, "./nope", loadErr.Name)
	assert.Equal(t, []string{"initialize", "cant load ./nope", "abort"}, f.view.events)
}

func TestMutationController_CoverageSkipsUnexecutedCode(t *testing.T) {
	f := newControllerFixture(t)
	f.passingBaseline()
	f.runner.On("InjectCoverage", mock.Anything, mock.Anything, mock.Anything, []m.TestSuite{mulSuite}).
		Return(func(*astree.Tree) *domain.CoverageResult { return nil }, nil, nil).Once()

	args := runArgs(t)
	args.Coverage = true

	score, err := f.ctrl.Run(context.Background(), args)
	require.NoError(t, err)
	assert.Zero(t, score.All(), "Mul is never executed")
	assert.Positive(t, score.AllNodes)
	assert.Less(t, score.CoveredNodes, score.AllNodes)
	f.runner.AssertNotCalled(t, "RunTestsWithMutant", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestMutationController_MutationNumber(t *testing.T) {
	f := newControllerFixture(t)
	f.passingBaseline()
	f.runner.On("RunTestsWithMutant", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(killUnlessAdd, time.Millisecond, nil).Once()

	args := runArgs(t)
	args.MutationNumber = 2

	score, err := f.ctrl.Run(context.Background(), args)
	require.NoError(t, err)
	assert.Equal(t, 1, score.All())
	require.Len(t, f.view.mutants, 1)
	assert.Equal(t, 2, f.view.mutants[0].Number)
	assert.Contains(t, string(f.view.mutants[0].Source), "x % x")
}

func TestMutationController_CancellationReportsPartialScore(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	f := newControllerFixture(t)
	f.passingBaseline()
	f.runner.On("RunTestsWithMutant", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(killUnlessAdd, time.Millisecond, nil).Once()
	f.runner.On("RunTestsWithMutant", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { cancel() }).
		Return(nil, time.Duration(0), context.Canceled).Once()

	score, err := f.ctrl.Run(ctx, runArgs(t))
	require.NoError(t, err)
	assert.Equal(t, 1, score.All())
	assert.Equal(t, "end", f.view.events[len(f.view.events)-1])
	assert.Equal(t, score, f.view.score)
}

func TestMutationController_RunnerErrorAborts(t *testing.T) {
	f := newControllerFixture(t)
	f.passingBaseline()
	f.runner.On("RunTestsWithMutant", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, time.Duration(0), errors.New("disk full")).Once()

	_, err := f.ctrl.Run(context.Background(), runArgs(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.NotContains(t, f.view.events, "end")
	assert.Equal(t, "abort", f.view.events[len(f.view.events)-1])
}

func TestMutationController_BaselineFailureRemovesReportSpill(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("TMPDIR", tmp)

	dir := t.TempDir()
	store := adapter.NewReportStore(m.Path(filepath.Join(dir, "report.yaml")), m.Path(dir), adapter.NewLocalSourceFSAdapter())

	f := newControllerFixture(t)
	f.ctrl = domain.NewMutationController(f.loader, f.runner, f.view, store)
	f.runner.On("RunTest", mock.Anything, mulSuite).
		Return(m.TestRunResult{Killer: "example.com/mul.TestMul", TestsRun: 1}, time.Second, nil).Once()

	_, err := f.ctrl.Run(context.Background(), runArgs(t))
	require.ErrorIs(t, err, domain.ErrTestsFailAtOriginal)

	spills, err := filepath.Glob(filepath.Join(tmp, "muton-spill", "*.gob"))
	require.NoError(t, err)
	assert.Empty(t, spills)
	assert.NoFileExists(t, filepath.Join(dir, "report.yaml"))
}

func TestMutationController_ViewErrorsDoNotStopRun(t *testing.T) {
	f := newControllerFixture(t)
	f.passingBaseline()
	f.runner.On("RunTestsWithMutant", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(killUnlessAdd, time.Millisecond, nil).Times(3)

	failing := &recorder{err: errors.New("terminal gone")}
	ctrl := domain.NewMutationController(f.loader, f.runner, failing, f.view)

	_, err := ctrl.Run(context.Background(), runArgs(t))
	require.Error(t, err, "End errors are returned")
	assert.Equal(t, 3, f.view.score.All(), "later views still receive every event")
	assert.Len(t, failing.mutants, 3)
}

func TestNotifier_DispatchesToImplementersInOrder(t *testing.T) {
	var order []string

	first := &recorder{}
	second := &recorder{}

	n := domain.NewNotifier(first, struct{}{}, second)
	n.Add(&startOnly{log: &order})

	require.NoError(t, n.Start(context.Background()))
	require.NoError(t, n.Timeout(context.Background(), time.Second))

	assert.Equal(t, []string{"start", "timeout"}, first.events)
	assert.Equal(t, []string{"start", "timeout"}, second.events)
	assert.Equal(t, []string{"start"}, order)
}

type startOnly struct {
	log *[]string
}

func (s *startOnly) Start(context.Context) error {
	*s.log = append(*s.log, "start")
	return nil
}

func TestMutationController_Mutants(t *testing.T) {
	f := newControllerFixture(t)

	mutants, err := f.ctrl.Mutants(context.Background(), runArgs(t))
	require.NoError(t, err)
	require.Len(t, mutants, 3)

	for i, mutant := range mutants {
		assert.Equal(t, i+1, mutant.Number)
		assert.Equal(t, []byte(mulSource), mutant.Original)
	}

	assert.Contains(t, string(mutants[2].Source), "x + x")
	f.runner.AssertNotCalled(t, "RunTest", mock.Anything, mock.Anything)
	assert.Empty(t, f.view.events, "listing notifies no view")
}

func TestMutationController_MutantsShard(t *testing.T) {
	f := newControllerFixture(t)

	args := runArgs(t)
	args.ShardIndex, args.ShardCount = 1, 2

	mutants, err := f.ctrl.Mutants(context.Background(), args)
	require.NoError(t, err)
	require.Len(t, mutants, 1)
	assert.Equal(t, 2, mutants[0].Number)
}
