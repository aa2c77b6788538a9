// Package astree decorates a parsed Go file with an arena of node metadata:
// stable pre-order IDs, parent and child indices, positions and coverage
// probe ownership. Nodes are addressed by ID so that deep copies of the file
// keep their identity.
package astree

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/format"
	"go/parser"
	"go/token"
	"go/types"
)

// Node is the arena entry of one go/ast node.
type Node struct {
	ID       int
	Parent   int
	Children []int
	// End is the first ID after this node's subtree.
	End    int
	Kind   Kind
	AST    ast.Node
	Line   int
	Column int
	// Probe is the marker of the coverage probe owning this node, -1 if none.
	Probe int
}

// Tree is a parsed Go file plus its node arena.
//
// The arena, source and type information are shared by clones; only File and
// the node to ID mapping are per-copy.
type Tree struct {
	Fset  *token.FileSet
	File  *ast.File
	Path  string
	Src   []byte
	Info  *types.Info
	Types *types.Package

	nodes      []Node
	ids        map[ast.Node]int
	directives *directiveIndex
}

// Parse parses src into a Tree without type information.
func Parse(filename string, src []byte) (*Tree, error) {
	fset := token.NewFileSet()

	file, err := parser.ParseFile(fset, filename, src, parser.ParseComments|parser.SkipObjectResolution)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filename, err)
	}

	return New(fset, file, src, nil, nil), nil
}

// New builds the arena for an already parsed file. info and pkg may be nil.
func New(fset *token.FileSet, file *ast.File, src []byte, info *types.Info, pkg *types.Package) *Tree {
	t := &Tree{
		Fset:  fset,
		File:  file,
		Path:  fset.Position(file.Package).Filename,
		Src:   src,
		Info:  info,
		Types: pkg,
		ids:   make(map[ast.Node]int),
	}

	var stack []int

	ast.Inspect(file, func(n ast.Node) bool {
		if n == nil {
			last := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			t.nodes[last].End = len(t.nodes)

			return false
		}

		id := len(t.nodes)
		parent := -1

		if len(stack) > 0 {
			parent = stack[len(stack)-1]
			t.nodes[parent].Children = append(t.nodes[parent].Children, id)
		}

		pos := fset.Position(n.Pos())
		t.nodes = append(t.nodes, Node{
			ID:     id,
			Parent: parent,
			Kind:   KindOf(n),
			AST:    n,
			Line:   pos.Line,
			Column: pos.Column,
			Probe:  -1,
		})
		t.ids[n] = id
		stack = append(stack, id)

		return true
	})

	t.assignProbes()
	t.directives = buildDirectiveIndex(t)

	return t
}

// Len returns the number of nodes in the arena.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Node returns the arena entry for id.
func (t *Tree) Node(id int) Node {
	return t.nodes[id]
}

// ID returns the arena ID of a node of this copy. Nodes created by mutations
// have no ID.
func (t *Tree) ID(n ast.Node) (int, bool) {
	id, ok := t.ids[n]
	return id, ok
}

// Original returns the node with the given ID in the originally parsed file.
func (t *Tree) Original(id int) ast.Node {
	return t.nodes[id].AST
}

// Contains reports whether descendant lies strictly inside ancestor's subtree.
func (t *Tree) Contains(ancestor, descendant int) bool {
	return ancestor < descendant && descendant < t.nodes[ancestor].End
}

// ParentKind returns the kind of id's parent, KindOther for the root.
func (t *Tree) ParentKind(id int) Kind {
	parent := t.nodes[id].Parent
	if parent < 0 {
		return KindOther
	}

	return t.nodes[parent].Kind
}

// Render prints the file of this copy as gofmt-formatted source.
func (t *Tree) Render() ([]byte, error) {
	var buf bytes.Buffer

	if err := format.Node(&buf, t.Fset, t.File); err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", t.Path, err)
	}

	return buf.Bytes(), nil
}
