// Package mocks holds testify doubles of the domain interfaces.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"muton.dev/pkg/muton/internal/domain"
	"muton.dev/pkg/muton/internal/domain/astree"
	m "muton.dev/pkg/muton/internal/model"
)

// MockTestRunner is a mock of domain.TestRunner.
type MockTestRunner struct {
	mock.Mock
}

var _ domain.TestRunner = (*MockTestRunner)(nil)

// RunTest implements domain.TestRunner.
func (_m *MockTestRunner) RunTest(ctx context.Context, suite m.TestSuite) (m.TestRunResult, time.Duration, error) {
	ret := _m.Called(ctx, suite)

	result, _ := ret.Get(0).(m.TestRunResult)
	duration, _ := ret.Get(1).(time.Duration)

	return result, duration, ret.Error(2)
}

// InjectCoverage implements domain.TestRunner.
func (_m *MockTestRunner) InjectCoverage(
	ctx context.Context,
	target m.Target,
	tree *astree.Tree,
	suites []m.TestSuite,
) (*domain.CoverageInjector, *domain.CoverageResult, error) {
	ret := _m.Called(ctx, target, tree, suites)

	if fn, ok := ret.Get(0).(func(*astree.Tree) *domain.CoverageResult); ok {
		result := fn(tree)
		return domain.NewCoverageInjector(tree, result), result, ret.Error(2)
	}

	injector, _ := ret.Get(0).(*domain.CoverageInjector)
	result, _ := ret.Get(1).(*domain.CoverageResult)

	return injector, result, ret.Error(2)
}

// RunTestsWithMutant implements domain.TestRunner. A Return value of type
// func([]byte) *m.TestRunResult computes the verdict from the mutant source.
func (_m *MockTestRunner) RunTestsWithMutant(
	ctx context.Context,
	baseline time.Duration,
	target m.Target,
	mutant []byte,
	mutations []m.Mutation,
	coverage *domain.CoverageInjector,
	suites []m.TestSuite,
) (*m.TestRunResult, time.Duration, error) {
	ret := _m.Called(ctx, baseline, target, mutant, mutations, coverage, suites)

	duration, _ := ret.Get(1).(time.Duration)

	if fn, ok := ret.Get(0).(func([]byte) *m.TestRunResult); ok {
		return fn(mutant), duration, ret.Error(2)
	}

	result, _ := ret.Get(0).(*m.TestRunResult)

	return result, duration, ret.Error(2)
}
