package astree

import (
	"fmt"
	"go/ast"
	"go/token"
	"strconv"

	"golang.org/x/tools/go/ast/astutil"
)

// CoverageEnv names the file instrumented binaries append probe markers to.
const CoverageEnv = "MUTON_COVERAGE_FILE"

const probeFunc = "mutonCoverageHit"

// Probe helpers appended to an instrumented file. Imports are added under
// private names so they cannot clash with the file's own.
const probeHelper = `
var (
	mutonCoverageMu   mutoncoveragesync.Mutex
	mutonCoverageSeen = map[int]bool{}
)

func ` + probeFunc + `(marker int) {
	mutonCoverageMu.Lock()
	defer mutonCoverageMu.Unlock()

	if mutonCoverageSeen[marker] {
		return
	}

	mutonCoverageSeen[marker] = true

	path := mutoncoverageos.Getenv("` + CoverageEnv + `")
	if path == "" {
		return
	}

	f, err := mutoncoverageos.OpenFile(path, mutoncoverageos.O_APPEND|mutoncoverageos.O_CREATE|mutoncoverageos.O_WRONLY, 0o600)
	if err != nil {
		return
	}

	_, _ = f.WriteString(mutoncoveragestrconv.Itoa(marker) + "\n")
	_ = f.Close()
}
`

// assignProbes marks the nodes that receive a coverage probe and computes
// the owning probe of every node. Statements of a statement list get a probe
// in front of them; case clauses and function bodies get one inside.
func (t *Tree) assignProbes() {
	probe := make([]bool, len(t.nodes))

	markList := func(list []ast.Stmt) {
		for _, stmt := range list {
			switch stmt.(type) {
			case *ast.CaseClause, *ast.CommClause:
				continue
			}

			if id, ok := t.ids[stmt]; ok {
				probe[id] = true
			}
		}
	}

	for i := range t.nodes {
		switch n := t.nodes[i].AST.(type) {
		case *ast.BlockStmt:
			markList(n.List)
		case *ast.CaseClause:
			probe[i] = true
			markList(n.Body)
		case *ast.CommClause:
			probe[i] = true
			markList(n.Body)
		case *ast.FuncDecl:
			probe[i] = n.Body != nil
		}
	}

	for i := range t.nodes {
		switch {
		case probe[i]:
			t.nodes[i].Probe = i
		case t.nodes[i].Parent >= 0:
			t.nodes[i].Probe = t.nodes[t.nodes[i].Parent].Probe
		}
	}
}

// Probes returns the markers of every probe in the file.
func (t *Tree) Probes() []int {
	var probes []int

	for i := range t.nodes {
		if t.nodes[i].Probe == i {
			probes = append(probes, i)
		}
	}

	return probes
}

// Coverable reports whether id is owned by a probe. Nodes outside any
// function body (package-level declarations) run on package initialisation
// and are treated as always covered.
func (t *Tree) Coverable(id int) bool {
	return t.nodes[id].Probe >= 0
}

// Instrument renders a copy of the file with a probe call in front of every
// probed statement. Running the instrumented package appends each hit marker
// once to the file named by CoverageEnv.
func (t *Tree) Instrument() ([]byte, error) {
	clone := t.Clone()

	ast.Inspect(clone.File, func(n ast.Node) bool {
		switch x := n.(type) {
		case *ast.FuncDecl:
			if id, ok := clone.ids[x]; ok && x.Body != nil {
				x.Body.List = append([]ast.Stmt{probeStmt(id)}, x.Body.List...)
			}
		case *ast.BlockStmt:
			x.List = clone.probeList(x.List)
		case *ast.CaseClause:
			x.Body = clone.probeList(x.Body)
			if id, ok := clone.ids[x]; ok {
				x.Body = append([]ast.Stmt{probeStmt(id)}, x.Body...)
			}
		case *ast.CommClause:
			x.Body = clone.probeList(x.Body)
			if id, ok := clone.ids[x]; ok {
				x.Body = append([]ast.Stmt{probeStmt(id)}, x.Body...)
			}
		}

		return true
	})

	astutil.AddNamedImport(clone.Fset, clone.File, "mutoncoverageos", "os")
	astutil.AddNamedImport(clone.Fset, clone.File, "mutoncoveragestrconv", "strconv")
	astutil.AddNamedImport(clone.Fset, clone.File, "mutoncoveragesync", "sync")

	src, err := clone.Render()
	if err != nil {
		return nil, fmt.Errorf("failed to render instrumented file: %w", err)
	}

	return append(src, probeHelper...), nil
}

func (t *Tree) probeList(list []ast.Stmt) []ast.Stmt {
	out := make([]ast.Stmt, 0, len(list)*2)

	for _, stmt := range list {
		switch stmt.(type) {
		case *ast.CaseClause, *ast.CommClause:
			out = append(out, stmt)
			continue
		}

		if id, ok := t.ids[stmt]; ok && t.nodes[id].Probe == id {
			out = append(out, probeStmt(id))
		}

		out = append(out, stmt)
	}

	return out
}

func probeStmt(marker int) ast.Stmt {
	return &ast.ExprStmt{X: &ast.CallExpr{
		Fun:  ast.NewIdent(probeFunc),
		Args: []ast.Expr{&ast.BasicLit{Kind: token.INT, Value: strconv.Itoa(marker)}},
	}}
}
