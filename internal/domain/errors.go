package domain

import "errors"

var (
	// ErrTestsFailAtOriginal is returned when the unmodified tests fail.
	ErrTestsFailAtOriginal = errors.New("tests failed on the original code")
	// ErrNoTargets is returned when no target could be loaded.
	ErrNoTargets = errors.New("no targets to mutate")
	// ErrNoTests is returned when no test suite was given.
	ErrNoTests = errors.New("no tests to run")
	// ErrMutationInconsistency signals that re-applying a recorded mutation
	// produced a different result. It is only ever raised as a panic.
	ErrMutationInconsistency = errors.New("mutation could not be re-applied")
)
