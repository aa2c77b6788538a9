package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"muton.dev/pkg/muton/internal/domain"
	m "muton.dev/pkg/muton/internal/model"
)

// MockRunner is a mock of domain.Runner.
type MockRunner struct {
	mock.Mock
}

var _ domain.Runner = (*MockRunner)(nil)

// Run implements domain.Runner.
func (_m *MockRunner) Run(ctx context.Context, args domain.RunArgs) (m.MutationScore, error) {
	ret := _m.Called(ctx, args)

	score, _ := ret.Get(0).(m.MutationScore)

	return score, ret.Error(1)
}

// Mutants implements domain.Runner.
func (_m *MockRunner) Mutants(ctx context.Context, args domain.RunArgs) ([]m.Mutant, error) {
	ret := _m.Called(ctx, args)

	mutants, _ := ret.Get(0).([]m.Mutant)

	return mutants, ret.Error(1)
}
