package mutagens

import (
	"go/ast"
	"go/token"
	"go/types"

	"muton.dev/pkg/muton/internal/domain/astree"
)

// OverridingMethodDeletion deletes a method that shadows a method promoted
// from an embedded field, so the promoted one takes over. It needs type
// information and resigns without it.
func OverridingMethodDeletion() *Operator {
	return newOperator("OMD", "OverridingMethodDeletion", map[astree.Key][]Handler{
		astree.KeyFor(astree.KindFuncDecl, token.ILLEGAL): {{Name: "mutate_FuncDecl_override", Fn: deleteOverride}},
	})
}

// SuperCallingDeletion deletes the call an overriding method makes to the
// method it shadows.
func SuperCallingDeletion() *Operator {
	return newOperator("SCD", "SuperCallingDeletion", map[astree.Key][]Handler{
		astree.KeyFor(astree.KindExprStmt, token.ILLEGAL): {{Name: "mutate_ExprStmt_embedded_call", Fn: deleteEmbeddedCall}},
	})
}

func deleteOverride(s Site) Outcome {
	fn, ok := s.Original.(*ast.FuncDecl)
	if !ok {
		return Resigned()
	}

	if _, _, ok := overridden(s.Tree, fn); !ok {
		return Resigned()
	}

	return Removed()
}

func deleteEmbeddedCall(s Site) Outcome {
	stmt, ok := s.Original.(*ast.ExprStmt)
	if !ok {
		return Resigned()
	}

	fn, ok := enclosingFunc(s.Tree, s.ID)
	if !ok {
		return Resigned()
	}

	field, method, ok := overridden(s.Tree, fn)
	if !ok || !callsEmbedded(s.Tree.Info, stmt, field, method) {
		return Resigned()
	}

	return Replaced(emptyStmt())
}

// overridden finds the embedded field whose promoted method fn shadows.
func overridden(tree *astree.Tree, fn *ast.FuncDecl) (*types.Var, *types.Func, bool) {
	if tree.Info == nil || fn.Recv == nil {
		return nil, nil, false
	}

	obj, ok := tree.Info.Defs[fn.Name].(*types.Func)
	if !ok {
		return nil, nil, false
	}

	sig, ok := obj.Type().(*types.Signature)
	if !ok || sig.Recv() == nil {
		return nil, nil, false
	}

	recv := sig.Recv().Type()
	if ptr, ok := recv.(*types.Pointer); ok {
		recv = ptr.Elem()
	}

	st, ok := recv.Underlying().(*types.Struct)
	if !ok {
		return nil, nil, false
	}

	for i := range st.NumFields() {
		field := st.Field(i)
		if !field.Embedded() {
			continue
		}

		found, _, _ := types.LookupFieldOrMethod(field.Type(), true, obj.Pkg(), obj.Name())
		if method, ok := found.(*types.Func); ok {
			return field, method, true
		}
	}

	return nil, nil, false
}

// callsEmbedded matches the statement `r.Field.Method(...)`.
func callsEmbedded(info *types.Info, stmt *ast.ExprStmt, field *types.Var, method *types.Func) bool {
	call, ok := stmt.X.(*ast.CallExpr)
	if !ok {
		return false
	}

	sel, ok := call.Fun.(*ast.SelectorExpr)
	if !ok || sel.Sel.Name != method.Name() {
		return false
	}

	inner, ok := sel.X.(*ast.SelectorExpr)
	if !ok || inner.Sel.Name != field.Name() {
		return false
	}

	selection, ok := info.Selections[sel]
	if !ok {
		return false
	}

	called, ok := selection.Obj().(*types.Func)

	return ok && called.Origin() == method.Origin()
}

func enclosingFunc(tree *astree.Tree, id int) (*ast.FuncDecl, bool) {
	for parent := tree.Node(id).Parent; parent >= 0; parent = tree.Node(parent).Parent {
		if fn, ok := tree.Node(parent).AST.(*ast.FuncDecl); ok {
			return fn, true
		}
	}

	return nil, false
}
