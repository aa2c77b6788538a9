// Package mocks holds testify doubles of the adapter interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"muton.dev/pkg/muton/internal/adapter"
	m "muton.dev/pkg/muton/internal/model"
)

// MockTestRunnerAdapter is a mock of adapter.TestRunnerAdapter.
type MockTestRunnerAdapter struct {
	mock.Mock
}

var _ adapter.TestRunnerAdapter = (*MockTestRunnerAdapter)(nil)

// BuildTestBinary implements adapter.TestRunnerAdapter.
func (_m *MockTestRunnerAdapter) BuildTestBinary(ctx context.Context, suite m.TestSuite, overlay, output m.Path) error {
	ret := _m.Called(ctx, suite, overlay, output)
	return ret.Error(0)
}

// ListTests implements adapter.TestRunnerAdapter.
func (_m *MockTestRunnerAdapter) ListTests(ctx context.Context, binary, dir m.Path) ([]string, error) {
	ret := _m.Called(ctx, binary, dir)

	tests, _ := ret.Get(0).([]string)

	return tests, ret.Error(1)
}

// RunTestBinary implements adapter.TestRunnerAdapter.
func (_m *MockTestRunnerAdapter) RunTestBinary(ctx context.Context, run adapter.TestRun) (m.TestRunResult, error) {
	ret := _m.Called(ctx, run)

	if fn, ok := ret.Get(0).(func(context.Context, adapter.TestRun) (m.TestRunResult, error)); ok {
		return fn(ctx, run)
	}

	result, _ := ret.Get(0).(m.TestRunResult)

	return result, ret.Error(1)
}
