package adapter

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	m "muton.dev/pkg/muton/internal/model"
)

func TestLocalSourceFSAdapter_ReadFile(t *testing.T) {
	adapter := NewLocalSourceFSAdapter()

	root := t.TempDir()
	path := filepath.Join(root, "main.go")
	content := "package main\n" + "func main() {}\n"
	writeTestFile(t, path, content)

	got, err := adapter.ReadFile(m.Path(path))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}

	if string(got) != content {
		t.Fatalf("ReadFile() = %q, want %q", string(got), content)
	}
}

func TestLocalSourceFSAdapter_FileInfo(t *testing.T) {
	adapter := NewLocalSourceFSAdapter()

	root := t.TempDir()
	path := filepath.Join(root, "main.go")
	writeTestFile(t, path, "package main\n")

	info, err := adapter.FileInfo(m.Path(path))
	if err != nil {
		t.Fatalf("FileInfo() error = %v", err)
	}

	if info.IsDir() {
		t.Fatalf("FileInfo() reported file as directory")
	}

	dirInfo, err := adapter.FileInfo(m.Path(root))
	if err != nil {
		t.Fatalf("FileInfo() error = %v", err)
	}

	if !dirInfo.IsDir() {
		t.Fatalf("FileInfo() reported directory as file")
	}
}

func TestLocalSourceFSAdapter_FindProjectRoot(t *testing.T) {
	adapter := NewLocalSourceFSAdapter()

	root := t.TempDir()
	goModDir := filepath.Join(root, "project")
	mustMkdir(t, goModDir)
	writeTestFile(t, filepath.Join(goModDir, "go.mod"), "module example.com/project\n")

	subDir := filepath.Join(goModDir, "sub", "pkg")
	if err := os.MkdirAll(subDir, 0o755); err != nil {
		t.Fatalf("failed to create nested dir: %v", err)
	}

	t.Run("from a file", func(t *testing.T) {
		got, err := adapter.FindProjectRoot(m.Path(filepath.Join(subDir, "file.go")))
		if err != nil {
			t.Fatalf("FindProjectRoot() error = %v", err)
		}

		if got != m.Path(goModDir) {
			t.Fatalf("FindProjectRoot() = %s, want %s", got, goModDir)
		}
	})

	t.Run("from the module directory itself", func(t *testing.T) {
		got, err := adapter.FindProjectRoot(m.Path(goModDir))
		if err != nil {
			t.Fatalf("FindProjectRoot() error = %v", err)
		}

		if got != m.Path(goModDir) {
			t.Fatalf("FindProjectRoot() = %s, want %s", got, goModDir)
		}
	})

	t.Run("outside any module", func(t *testing.T) {
		_, err := adapter.FindProjectRoot(m.Path(filepath.Join(root, "file.go")))
		if !errors.Is(err, ErrNoModule) {
			t.Fatalf("FindProjectRoot() error = %v, want ErrNoModule", err)
		}
	})
}

func TestLocalSourceFSAdapter_ModulePath(t *testing.T) {
	adapter := NewLocalSourceFSAdapter()

	root := t.TempDir()
	writeTestFile(t, filepath.Join(root, "go.mod"), "// comment\nmodule example.com/project\n\ngo 1.22\n")

	got, err := adapter.ModulePath(m.Path(root))
	if err != nil {
		t.Fatalf("ModulePath() error = %v", err)
	}

	if got != "example.com/project" {
		t.Fatalf("ModulePath() = %q, want example.com/project", got)
	}

	empty := t.TempDir()
	writeTestFile(t, filepath.Join(empty, "go.mod"), "go 1.22\n")

	if _, err := adapter.ModulePath(m.Path(empty)); err == nil {
		t.Fatalf("ModulePath() expected error for go.mod without module directive")
	}
}

func TestLocalSourceFSAdapter_CreateTempDirAndRemoveAll(t *testing.T) {
	adapter := NewLocalSourceFSAdapter()

	tmp, err := adapter.CreateTempDir("muton-test-*")
	if err != nil {
		t.Fatalf("CreateTempDir() error = %v", err)
	}

	if fi, err := os.Stat(string(tmp)); err != nil || !fi.IsDir() {
		t.Fatalf("CreateTempDir() did not create directory, stat err=%v, isDir=%v", err, err == nil && fi.IsDir())
	}

	filePath := filepath.Join(string(tmp), "file.go")
	if err := adapter.WriteFile(m.Path(filePath), []byte("package main\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	if err := adapter.RemoveAll(tmp); err != nil {
		t.Fatalf("RemoveAll() error = %v", err)
	}

	if _, err := os.Stat(string(tmp)); !os.IsNotExist(err) {
		t.Fatalf("RemoveAll() did not remove directory, stat err=%v", err)
	}
}

func TestLocalSourceFSAdapter_WriteOverlay(t *testing.T) {
	adapter := NewLocalSourceFSAdapter()

	dir := t.TempDir()

	path, err := adapter.WriteOverlay(m.Path(dir), map[m.Path]m.Path{
		"/src/calc.go": m.Path(filepath.Join(dir, "calc.go")),
	})
	if err != nil {
		t.Fatalf("WriteOverlay() error = %v", err)
	}

	data, err := os.ReadFile(string(path))
	if err != nil {
		t.Fatalf("failed to read overlay: %v", err)
	}

	var got struct {
		Replace map[string]string
	}

	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("overlay is not valid JSON: %v", err)
	}

	if got.Replace["/src/calc.go"] != filepath.Join(dir, "calc.go") {
		t.Fatalf("overlay Replace = %v", got.Replace)
	}
}

func TestLocalSourceFSAdapter_PathHelpers(t *testing.T) {
	adapter := NewLocalSourceFSAdapter()

	base := m.Path("/tmp/project")
	target := m.Path("/tmp/project/sub/dir/file.go")

	rel, err := adapter.RelPath(base, target)
	if err != nil {
		t.Fatalf("RelPath() error = %v", err)
	}

	if string(rel) != filepath.Join("sub", "dir", "file.go") {
		t.Fatalf("RelPath() = %s, want %s", rel, filepath.Join("sub", "dir", "file.go"))
	}

	joined := adapter.JoinPath("/tmp", "project", "sub", "file.go")
	if string(joined) != filepath.Join("/tmp", "project", "sub", "file.go") {
		t.Fatalf("JoinPath() = %s, want %s", joined, filepath.Join("/tmp", "project", "sub", "file.go"))
	}
}

func writeTestFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func mustMkdir(t *testing.T, path string) {
	t.Helper()
	if err := os.Mkdir(path, 0o755); err != nil {
		t.Fatalf("failed to create dir %s: %v", path, err)
	}
}
