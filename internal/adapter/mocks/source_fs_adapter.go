package mocks

import (
	"os"

	"github.com/stretchr/testify/mock"

	"muton.dev/pkg/muton/internal/adapter"
	m "muton.dev/pkg/muton/internal/model"
)

// MockSourceFSAdapter is a mock of adapter.SourceFSAdapter.
type MockSourceFSAdapter struct {
	mock.Mock
}

var _ adapter.SourceFSAdapter = (*MockSourceFSAdapter)(nil)

// ReadFile implements adapter.SourceFSAdapter.
func (_m *MockSourceFSAdapter) ReadFile(path m.Path) ([]byte, error) {
	ret := _m.Called(path)

	data, _ := ret.Get(0).([]byte)

	return data, ret.Error(1)
}

// FileInfo implements adapter.SourceFSAdapter.
func (_m *MockSourceFSAdapter) FileInfo(path m.Path) (os.FileInfo, error) {
	ret := _m.Called(path)

	info, _ := ret.Get(0).(os.FileInfo)

	return info, ret.Error(1)
}

// FindProjectRoot implements adapter.SourceFSAdapter.
func (_m *MockSourceFSAdapter) FindProjectRoot(startPath m.Path) (m.Path, error) {
	ret := _m.Called(startPath)
	return ret.Get(0).(m.Path), ret.Error(1)
}

// ModulePath implements adapter.SourceFSAdapter.
func (_m *MockSourceFSAdapter) ModulePath(root m.Path) (string, error) {
	ret := _m.Called(root)
	return ret.String(0), ret.Error(1)
}

// CreateTempDir implements adapter.SourceFSAdapter.
func (_m *MockSourceFSAdapter) CreateTempDir(pattern string) (m.Path, error) {
	ret := _m.Called(pattern)
	return ret.Get(0).(m.Path), ret.Error(1)
}

// RemoveAll implements adapter.SourceFSAdapter.
func (_m *MockSourceFSAdapter) RemoveAll(path m.Path) error {
	return _m.Called(path).Error(0)
}

// WriteFile implements adapter.SourceFSAdapter.
func (_m *MockSourceFSAdapter) WriteFile(path m.Path, content []byte, perm os.FileMode) error {
	return _m.Called(path, content, perm).Error(0)
}

// WriteOverlay implements adapter.SourceFSAdapter.
func (_m *MockSourceFSAdapter) WriteOverlay(dir m.Path, replace map[m.Path]m.Path) (m.Path, error) {
	ret := _m.Called(dir, replace)
	return ret.Get(0).(m.Path), ret.Error(1)
}

// RelPath implements adapter.SourceFSAdapter.
func (_m *MockSourceFSAdapter) RelPath(base, target m.Path) (m.Path, error) {
	ret := _m.Called(base, target)
	return ret.Get(0).(m.Path), ret.Error(1)
}

// JoinPath implements adapter.SourceFSAdapter.
func (_m *MockSourceFSAdapter) JoinPath(elem ...string) m.Path {
	args := make([]any, len(elem))
	for i, e := range elem {
		args[i] = e
	}

	return _m.Called(args...).Get(0).(m.Path)
}
