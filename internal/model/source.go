package model

import "fmt"

// Path represents a file system path.
type Path string

// Target is a single Go file selected for mutation.
type Target struct {
	Name        string // loader name the target was resolved from
	Package     string // import path
	PackageName string
	Dir         Path
	ModuleRoot  Path
	File        Path // absolute path of the file to mutate
	Member      string
}

// TestSuite is the test binary of one package.
type TestSuite struct {
	Name       string
	Package    string
	Dir        Path
	ModuleRoot Path
}

// TestID identifies one top-level test function.
type TestID struct {
	Package string
	Name    string
}

func (id TestID) String() string {
	if id.Package == "" {
		return id.Name
	}

	return id.Package + "." + id.Name
}

// LoadError reports a target or test name the loader could not resolve.
type LoadError struct {
	Name string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("can't load %s: %v", e.Name, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
