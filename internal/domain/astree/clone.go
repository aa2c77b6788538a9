package astree

import (
	"go/ast"
	"go/token"
	"reflect"
)

var (
	objectType = reflect.TypeFor[*ast.Object]()
	scopeType  = reflect.TypeFor[*ast.Scope]()
)

// Clone deep-copies the file. Every node of the copy keeps the ID of the node
// it was copied from; the original file is never shared with the copy.
func (t *Tree) Clone() *Tree {
	c := copier{memo: make(map[any]reflect.Value)}

	file, _ := c.copy(reflect.ValueOf(t.File)).Interface().(*ast.File)

	ids := make(map[ast.Node]int, len(t.ids))

	for node, id := range t.ids {
		dup, ok := c.memo[node]
		if !ok {
			continue
		}

		if n, ok := dup.Interface().(ast.Node); ok {
			ids[n] = id
		}
	}

	clone := *t
	clone.File = file
	clone.ids = ids

	return &clone
}

// copier copies go/ast values reflectively. Shared pointers (comment groups
// referenced from both File.Comments and Doc fields, import specs) stay
// shared in the copy. Object resolution data is dropped.
type copier struct {
	memo map[any]reflect.Value
}

func (c *copier) copy(v reflect.Value) reflect.Value {
	switch v.Kind() {
	case reflect.Pointer:
		if v.IsNil() || v.Type() == objectType || v.Type() == scopeType {
			return reflect.Zero(v.Type())
		}

		if dup, ok := c.memo[v.Interface()]; ok {
			return dup
		}

		dup := reflect.New(v.Type().Elem())
		c.memo[v.Interface()] = dup
		dup.Elem().Set(c.copy(v.Elem()))

		return dup

	case reflect.Interface:
		if v.IsNil() {
			return reflect.Zero(v.Type())
		}

		dup := reflect.New(v.Type()).Elem()
		dup.Set(c.copy(v.Elem()))

		return dup

	case reflect.Struct:
		dup := reflect.New(v.Type()).Elem()

		for i := range v.NumField() {
			if !v.Type().Field(i).IsExported() {
				continue
			}

			dup.Field(i).Set(c.copy(v.Field(i)))
		}

		return dup

	case reflect.Slice:
		if v.IsNil() {
			return reflect.Zero(v.Type())
		}

		dup := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		for i := range v.Len() {
			dup.Index(i).Set(c.copy(v.Index(i)))
		}

		return dup

	default:
		return v
	}
}

// CopyPosition moves the leading position of dst onto src's position, so a
// replacement node reports the line of the node it replaced.
func CopyPosition(dst, src ast.Node) {
	pos := src.Pos()

	switch n := dst.(type) {
	case *ast.Ident:
		n.NamePos = pos
	case *ast.BasicLit:
		n.ValuePos = pos
	case *ast.UnaryExpr:
		n.OpPos = pos
	case *ast.ParenExpr:
		n.Lparen = pos
	case *ast.EmptyStmt:
		n.Semicolon = pos
		n.Implicit = true
	case *ast.BranchStmt:
		n.TokPos = pos
	case *ast.BlockStmt:
		n.Lbrace = pos
		if end := src.End(); end.IsValid() {
			n.Rbrace = end - 1
		}
	case *ast.ExprStmt:
		CopyPosition(n.X, src)
	case *ast.CallExpr:
		CopyPosition(n.Fun, src)
	}
}

// Position returns the file position of id in the original source.
func (t *Tree) Position(id int) token.Position {
	return t.Fset.Position(t.nodes[id].AST.Pos())
}
