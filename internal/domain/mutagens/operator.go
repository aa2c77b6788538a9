// Package mutagens provides the mutation operators and the incremental
// traversal that turns one operator into a lazy stream of mutants.
package mutagens

import (
	"go/ast"
	"iter"
	"strconv"

	"golang.org/x/tools/go/ast/astutil"

	"muton.dev/pkg/muton/internal/domain/astree"
	m "muton.dev/pkg/muton/internal/model"
	"muton.dev/pkg/muton/pkg"
)

type outcomeKind int

const (
	resigned outcomeKind = iota
	applied
	replaced
	removed
)

// Outcome is the result of a handler: the node was edited in place,
// replaced, removed from its list, or the handler resigned.
type Outcome struct {
	kind outcomeKind
	node ast.Node
}

// Resigned means the mutation does not make sense for this node.
func Resigned() Outcome { return Outcome{kind: resigned} }

// Applied means the handler edited the node in place.
func Applied() Outcome { return Outcome{kind: applied} }

// Replaced substitutes n for the visited node.
func Replaced(n ast.Node) Outcome { return Outcome{kind: replaced, node: n} }

// Removed deletes the visited node from the list holding it.
func Removed() Outcome { return Outcome{kind: removed} }

// Site is the node a handler is asked to mutate.
type Site struct {
	Tree *astree.Tree
	ID   int
	// Node belongs to the copy being mutated and may be edited.
	Node   ast.Node
	Parent ast.Node
	// Original is the same node in the parsed file; type information is
	// keyed by original nodes.
	Original ast.Node
}

// Handler produces one kind of mutant for one kind of node.
type Handler struct {
	Name string
	Fn   func(Site) Outcome
}

// Sampler decides whether a candidate mutation is realised.
type Sampler interface {
	IsMutationTime() bool
}

// Coverage reports whether the baseline tests executed a node.
type Coverage interface {
	IsCovered(marker int) bool
}

// Options restrict what a traversal may mutate.
type Options struct {
	Sampler  Sampler
	Coverage Coverage
	// Only restricts the traversal to re-applying one known mutation.
	Only *m.Mutation
	// Member restricts mutation to one function or method ("F", "T.M").
	Member string
}

// Operator is one mutation family: a registry of handlers keyed by node
// kind and token.
type Operator struct {
	Name     string
	Long     string
	handlers map[astree.Key][]Handler
}

func newOperator(name, long string, handlers map[astree.Key][]Handler) *Operator {
	return &Operator{Name: name, Long: long, handlers: handlers}
}

// Handlers returns the number of handlers registered for a key.
func (o *Operator) Handlers(key astree.Key) int {
	return len(o.handlers[key])
}

type cursor struct {
	node   int
	method int
}

// Mutate lazily yields one mutant per atomic change. Every mutant is a fresh
// copy of tree; tree itself is never modified.
//
// Eligible nodes are numbered in visit order. A pass skips the nodes
// consumed by earlier passes, tries the remaining handlers of the current
// node, and applies at most one of them. The sequence ends with the first
// pass that applies nothing.
func (o *Operator) Mutate(tree *astree.Tree, opts Options) iter.Seq2[m.Mutation, *astree.Tree] {
	return func(yield func(m.Mutation, *astree.Tree) bool) {
		var cur cursor

		for {
			clone := tree.Clone()

			mutation, ok := o.pass(clone, opts, &cur)
			if !ok {
				return
			}

			if !yield(mutation, clone) {
				return
			}
		}
	}
}

func (o *Operator) pass(tree *astree.Tree, opts Options, cur *cursor) (m.Mutation, bool) {
	var (
		mutation m.Mutation
		done     bool
		eligible int
	)

	astutil.Apply(tree.File, func(c *astutil.Cursor) bool {
		if done {
			return false
		}

		id, ok := tree.ID(c.Node())
		if !ok {
			return true
		}

		if o.opaque(tree, id, c, opts) {
			return false
		}

		handlers := o.handlers[astree.KeyOf(c.Node())]
		if len(handlers) == 0 {
			return true
		}

		if eligible < cur.node {
			eligible++
			return true
		}

		for cur.method < len(handlers) {
			handler := handlers[cur.method]
			cur.method++

			if !o.apply(tree, id, c, handler, opts) {
				continue
			}

			if cur.method == len(handlers) {
				cur.node++
				cur.method = 0
			}

			mutation = o.mutation(tree, id, handler.Name)
			done = true

			return false
		}

		cur.node++
		cur.method = 0
		eligible++

		return true
	}, nil)

	return mutation, done
}

func (o *Operator) opaque(tree *astree.Tree, id int, c *astutil.Cursor, opts Options) bool {
	if tree.Ignored(id, o.Name) {
		return true
	}

	if opts.Member != "" && tree.ParentKind(id) == astree.KindFile {
		if decl, ok := c.Node().(ast.Decl); ok && memberName(decl) != opts.Member {
			return true
		}
	}

	if opts.Coverage != nil && !opts.Coverage.IsCovered(id) {
		return true
	}

	if opts.Only != nil && id != opts.Only.Node && !tree.Contains(id, opts.Only.Node) {
		return true
	}

	return false
}

func (o *Operator) apply(tree *astree.Tree, id int, c *astutil.Cursor, handler Handler, opts Options) bool {
	if opts.Only != nil && (id != opts.Only.Node || handler.Name != opts.Only.Visitor) {
		return false
	}

	if opts.Sampler != nil && !opts.Sampler.IsMutationTime() {
		return false
	}

	out := handler.Fn(Site{
		Tree:     tree,
		ID:       id,
		Node:     c.Node(),
		Parent:   c.Parent(),
		Original: tree.Original(id),
	})

	switch out.kind {
	case applied:
	case replaced:
		if !out.node.Pos().IsValid() {
			astree.CopyPosition(out.node, c.Node())
		}

		c.Replace(out.node)
	case removed:
		if c.Index() < 0 {
			return false
		}

		c.Delete()
	default:
		return false
	}

	return true
}

func (o *Operator) mutation(tree *astree.Tree, id int, visitor string) m.Mutation {
	node := tree.Node(id)

	return m.Mutation{
		ID:       pkg.Fingerprint(tree.Path, o.Name, visitor, strconv.Itoa(id)),
		Operator: o.Name,
		Visitor:  visitor,
		Node:     id,
		End:      node.End,
		Line:     node.Line,
		Column:   node.Column,
	}
}

// memberName names a top-level declaration the way targets refer to it.
func memberName(decl ast.Decl) string {
	fn, ok := decl.(*ast.FuncDecl)
	if !ok {
		return ""
	}

	if fn.Recv == nil || len(fn.Recv.List) == 0 {
		return fn.Name.Name
	}

	return receiverTypeName(fn.Recv.List[0].Type) + "." + fn.Name.Name
}

func receiverTypeName(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.StarExpr:
		return receiverTypeName(t.X)
	case *ast.IndexExpr:
		return receiverTypeName(t.X)
	case *ast.IndexListExpr:
		return receiverTypeName(t.X)
	case *ast.ParenExpr:
		return receiverTypeName(t.X)
	case *ast.Ident:
		return t.Name
	default:
		return ""
	}
}
