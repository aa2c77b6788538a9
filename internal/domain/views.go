package domain

import (
	"context"
	"errors"
	"time"

	m "muton.dev/pkg/muton/internal/model"
)

// Initializer is told the targets and tests of a run before anything loads.
type Initializer interface {
	Initialize(ctx context.Context, targets, tests []string) error
}

// Starter is told when mutation starts.
type Starter interface {
	Start(ctx context.Context) error
}

// PassReporter receives the baseline results once every original test passed.
type PassReporter interface {
	Passed(ctx context.Context, tests []m.TestResult, numberOfTests int) error
}

// OriginalFailReporter receives the baseline result that failed.
type OriginalFailReporter interface {
	OriginalTestsFail(ctx context.Context, result m.TestRunResult) error
}

// MutationReporter is told about each mutant before its tests run.
type MutationReporter interface {
	Mutation(ctx context.Context, mutant m.Mutant) error
}

// KillReporter receives killed mutants.
type KillReporter interface {
	Killed(ctx context.Context, duration time.Duration, killer, traceback string, testsRun int) error
}

// SurviveReporter receives survived mutants.
type SurviveReporter interface {
	Survived(ctx context.Context, duration time.Duration, testsRun int) error
}

// TimeoutReporter receives mutants whose tests ran out of time.
type TimeoutReporter interface {
	Timeout(ctx context.Context, duration time.Duration) error
}

// IncompetentReporter receives mutants that could not be built or initialised.
type IncompetentReporter interface {
	Incompetent(ctx context.Context, duration time.Duration, exception string, testsRun int) error
}

// LoadFailReporter receives target or test names that failed to load.
type LoadFailReporter interface {
	CantLoad(ctx context.Context, name string, err error) error
}

// EndReporter receives the final score.
type EndReporter interface {
	End(ctx context.Context, score m.MutationScore, duration time.Duration) error
}

// Aborter is told when a run stops with an error before End.
type Aborter interface {
	Abort(ctx context.Context, err error) error
}

// Notifier dispatches every event to the views implementing it, in
// registration order. Errors of all views are joined.
type Notifier struct {
	views []any
}

// NewNotifier creates a notifier for views. Each view implements any subset
// of the reporter interfaces.
func NewNotifier(views ...any) *Notifier {
	return &Notifier{views: views}
}

// Add registers another view.
func (n *Notifier) Add(view any) {
	n.views = append(n.views, view)
}

func notify[V any](n *Notifier, call func(V) error) error {
	var errs []error

	for _, view := range n.views {
		if v, ok := view.(V); ok {
			if err := call(v); err != nil {
				errs = append(errs, err)
			}
		}
	}

	return errors.Join(errs...)
}

// Initialize implements Initializer.
func (n *Notifier) Initialize(ctx context.Context, targets, tests []string) error {
	return notify(n, func(v Initializer) error { return v.Initialize(ctx, targets, tests) })
}

// Start implements Starter.
func (n *Notifier) Start(ctx context.Context) error {
	return notify(n, func(v Starter) error { return v.Start(ctx) })
}

// Passed implements PassReporter.
func (n *Notifier) Passed(ctx context.Context, tests []m.TestResult, numberOfTests int) error {
	return notify(n, func(v PassReporter) error { return v.Passed(ctx, tests, numberOfTests) })
}

// OriginalTestsFail implements OriginalFailReporter.
func (n *Notifier) OriginalTestsFail(ctx context.Context, result m.TestRunResult) error {
	return notify(n, func(v OriginalFailReporter) error { return v.OriginalTestsFail(ctx, result) })
}

// Mutation implements MutationReporter.
func (n *Notifier) Mutation(ctx context.Context, mutant m.Mutant) error {
	return notify(n, func(v MutationReporter) error { return v.Mutation(ctx, mutant) })
}

// Killed implements KillReporter.
func (n *Notifier) Killed(ctx context.Context, duration time.Duration, killer, traceback string, testsRun int) error {
	return notify(n, func(v KillReporter) error { return v.Killed(ctx, duration, killer, traceback, testsRun) })
}

// Survived implements SurviveReporter.
func (n *Notifier) Survived(ctx context.Context, duration time.Duration, testsRun int) error {
	return notify(n, func(v SurviveReporter) error { return v.Survived(ctx, duration, testsRun) })
}

// Timeout implements TimeoutReporter.
func (n *Notifier) Timeout(ctx context.Context, duration time.Duration) error {
	return notify(n, func(v TimeoutReporter) error { return v.Timeout(ctx, duration) })
}

// Incompetent implements IncompetentReporter.
func (n *Notifier) Incompetent(ctx context.Context, duration time.Duration, exception string, testsRun int) error {
	return notify(n, func(v IncompetentReporter) error { return v.Incompetent(ctx, duration, exception, testsRun) })
}

// CantLoad implements LoadFailReporter.
func (n *Notifier) CantLoad(ctx context.Context, name string, err error) error {
	return notify(n, func(v LoadFailReporter) error { return v.CantLoad(ctx, name, err) })
}

// End implements EndReporter.
func (n *Notifier) End(ctx context.Context, score m.MutationScore, duration time.Duration) error {
	return notify(n, func(v EndReporter) error { return v.End(ctx, score, duration) })
}

// Abort implements Aborter.
func (n *Notifier) Abort(ctx context.Context, err error) error {
	return notify(n, func(v Aborter) error { return v.Abort(ctx, err) })
}
