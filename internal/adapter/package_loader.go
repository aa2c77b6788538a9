package adapter

import (
	"context"
	"errors"
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/tools/go/packages"

	m "muton.dev/pkg/muton/internal/model"
)

// Loader errors, always wrapped in *model.LoadError.
var (
	ErrNoPackages     = errors.New("no packages matched")
	ErrNoTestFiles    = errors.New("no test files")
	ErrMemberNotFound = errors.New("member not found")
)

var memberPattern = regexp.MustCompile(`^[A-Za-z_]\w*(\.[A-Za-z_]\w*)?$`)

// LoadedFile is one target file parsed and type-checked by the loader.
type LoadedFile struct {
	Target m.Target
	Fset   *token.FileSet
	File   *ast.File
	Src    []byte
	Info   *types.Info
	Types  *types.Package
}

// PackageLoader resolves target and test names into files and test suites.
type PackageLoader interface {
	// LoadTargets resolves "pattern" or "pattern:Member". A pattern ending in
	// .go selects a single file.
	LoadTargets(ctx context.Context, name string) ([]LoadedFile, error)

	// LoadTests resolves a package pattern into the test suites it contains.
	LoadTests(ctx context.Context, name string) ([]m.TestSuite, error)
}

// GoPackagesLoader is the PackageLoader backed by golang.org/x/tools/go/packages.
type GoPackagesLoader struct {
	dir string
	fs  SourceFSAdapter
}

// NewGoPackagesLoader creates a loader resolving patterns relative to dir.
func NewGoPackagesLoader(dir m.Path, fs SourceFSAdapter) *GoPackagesLoader {
	return &GoPackagesLoader{dir: string(dir), fs: fs}
}

// SplitName separates an optional ":Member" suffix from a target name.
func SplitName(name string) (string, string) {
	i := strings.LastIndex(name, ":")
	if i <= 0 || !memberPattern.MatchString(name[i+1:]) {
		return name, ""
	}

	return name[:i], name[i+1:]
}

// LoadTargets loads the non-test, non-generated files matched by name.
func (l *GoPackagesLoader) LoadTargets(ctx context.Context, name string) ([]LoadedFile, error) {
	pattern, member := SplitName(name)

	query := pattern

	var single string

	if strings.HasSuffix(pattern, ".go") {
		path := pattern
		if !filepath.IsAbs(path) {
			path = filepath.Join(l.dir, path)
		}

		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, &m.LoadError{Name: name, Err: err}
		}

		single = abs
		query = "file=" + abs
	}

	pkgs, err := l.load(ctx, false, query)
	if err != nil {
		return nil, &m.LoadError{Name: name, Err: err}
	}

	var files []LoadedFile

	for _, pkg := range pkgs {
		root := l.moduleRoot(pkg)

		for _, file := range pkg.Syntax {
			path := pkg.Fset.Position(file.Package).Filename
			if strings.HasSuffix(path, "_test.go") || ast.IsGenerated(file) {
				continue
			}

			if single != "" && filepath.Clean(path) != single {
				continue
			}

			if member != "" && !declares(file, member) {
				continue
			}

			src, err := l.fs.ReadFile(m.Path(path))
			if err != nil {
				return nil, &m.LoadError{Name: name, Err: err}
			}

			files = append(files, LoadedFile{
				Target: m.Target{
					Name:        name,
					Package:     pkg.PkgPath,
					PackageName: pkg.Name,
					Dir:         m.Path(filepath.Dir(path)),
					ModuleRoot:  root,
					File:        m.Path(path),
					Member:      member,
				},
				Fset:  pkg.Fset,
				File:  file,
				Src:   src,
				Info:  pkg.TypesInfo,
				Types: pkg.Types,
			})
		}
	}

	if len(files) == 0 {
		if member != "" {
			return nil, &m.LoadError{Name: name, Err: fmt.Errorf("%w: %s", ErrMemberNotFound, member)}
		}

		return nil, &m.LoadError{Name: name, Err: ErrNoPackages}
	}

	slog.Debug("Loaded targets", "name", name, "files", len(files))

	return files, nil
}

// LoadTests loads the packages matched by name that carry test files.
func (l *GoPackagesLoader) LoadTests(ctx context.Context, name string) ([]m.TestSuite, error) {
	pkgs, err := l.load(ctx, true, name)
	if err != nil {
		return nil, &m.LoadError{Name: name, Err: err}
	}

	var (
		suites []m.TestSuite
		seen   = make(map[string]struct{})
	)

	for _, pkg := range pkgs {
		if pkg.ForTest == "" || strings.HasSuffix(pkg.PkgPath, ".test") {
			continue
		}

		if _, ok := seen[pkg.ForTest]; ok {
			continue
		}

		seen[pkg.ForTest] = struct{}{}

		dir := ""
		if len(pkg.GoFiles) > 0 {
			dir = filepath.Dir(pkg.GoFiles[0])
		}

		suites = append(suites, m.TestSuite{
			Name:       name,
			Package:    pkg.ForTest,
			Dir:        m.Path(dir),
			ModuleRoot: l.moduleRoot(pkg),
		})
	}

	if len(suites) == 0 {
		return nil, &m.LoadError{Name: name, Err: ErrNoTestFiles}
	}

	slog.Debug("Loaded test suites", "name", name, "suites", len(suites))

	return suites, nil
}

func (l *GoPackagesLoader) load(ctx context.Context, tests bool, pattern string) ([]*packages.Package, error) {
	mode := packages.NeedName | packages.NeedFiles | packages.NeedModule
	if tests {
		mode |= packages.NeedForTest
	} else {
		mode |= packages.NeedCompiledGoFiles | packages.NeedSyntax | packages.NeedTypes |
			packages.NeedTypesInfo | packages.NeedImports
	}

	cfg := &packages.Config{
		Context: ctx,
		Mode:    mode,
		Dir:     l.dir,
		Tests:   tests,
	}

	pkgs, err := packages.Load(cfg, pattern)
	if err != nil {
		return nil, err
	}

	if len(pkgs) == 0 {
		return nil, ErrNoPackages
	}

	for _, pkg := range pkgs {
		if len(pkg.Errors) > 0 {
			return nil, pkg.Errors[0]
		}
	}

	return pkgs, nil
}

func (l *GoPackagesLoader) moduleRoot(pkg *packages.Package) m.Path {
	if pkg.Module != nil && pkg.Module.Dir != "" {
		return m.Path(pkg.Module.Dir)
	}

	if len(pkg.GoFiles) == 0 {
		return ""
	}

	root, err := l.fs.FindProjectRoot(m.Path(pkg.GoFiles[0]))
	if err != nil {
		return ""
	}

	return root
}

// declares reports whether file declares the function or method member
// ("F" or "T.M").
func declares(file *ast.File, member string) bool {
	typ, method, isMethod := strings.Cut(member, ".")

	for _, decl := range file.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if !ok {
			continue
		}

		if !isMethod {
			if fn.Recv == nil && fn.Name.Name == member {
				return true
			}

			continue
		}

		if fn.Recv == nil || len(fn.Recv.List) == 0 || fn.Name.Name != method {
			continue
		}

		if receiverName(fn.Recv.List[0].Type) == typ {
			return true
		}
	}

	return false
}

func receiverName(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.StarExpr:
		return receiverName(t.X)
	case *ast.IndexExpr:
		return receiverName(t.X)
	case *ast.IndexListExpr:
		return receiverName(t.X)
	case *ast.ParenExpr:
		return receiverName(t.X)
	case *ast.Ident:
		return t.Name
	default:
		return ""
	}
}
