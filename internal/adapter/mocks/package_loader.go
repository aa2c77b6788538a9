package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"muton.dev/pkg/muton/internal/adapter"
	m "muton.dev/pkg/muton/internal/model"
)

// MockPackageLoader is a mock of adapter.PackageLoader.
type MockPackageLoader struct {
	mock.Mock
}

var _ adapter.PackageLoader = (*MockPackageLoader)(nil)

// LoadTargets implements adapter.PackageLoader.
func (_m *MockPackageLoader) LoadTargets(ctx context.Context, name string) ([]adapter.LoadedFile, error) {
	ret := _m.Called(ctx, name)

	files, _ := ret.Get(0).([]adapter.LoadedFile)

	return files, ret.Error(1)
}

// LoadTests implements adapter.PackageLoader.
func (_m *MockPackageLoader) LoadTests(ctx context.Context, name string) ([]m.TestSuite, error) {
	ret := _m.Called(ctx, name)

	suites, _ := ret.Get(0).([]m.TestSuite)

	return suites, ret.Error(1)
}
