package mutagens

import (
	"go/ast"
	"go/token"

	"muton.dev/pkg/muton/internal/domain/astree"
)

// PointerReceiverDeletion turns a pointer receiver into a value receiver.
func PointerReceiverDeletion() *Operator {
	return newOperator("PRD", "PointerReceiverDeletion", map[astree.Key][]Handler{
		astree.KeyFor(astree.KindFuncDecl, token.ILLEGAL): {{Name: "mutate_Receiver_value", Fn: valueReceiver}},
	})
}

// PointerReceiverInsertion turns a value receiver into a pointer receiver.
func PointerReceiverInsertion() *Operator {
	return newOperator("PRI", "PointerReceiverInsertion", map[astree.Key][]Handler{
		astree.KeyFor(astree.KindFuncDecl, token.ILLEGAL): {{Name: "mutate_Receiver_pointer", Fn: pointerReceiver}},
	})
}

func receiver(n ast.Node) *ast.Field {
	fn, ok := n.(*ast.FuncDecl)
	if !ok || fn.Recv == nil || len(fn.Recv.List) != 1 {
		return nil
	}

	return fn.Recv.List[0]
}

func valueReceiver(s Site) Outcome {
	field := receiver(s.Node)
	if field == nil {
		return Resigned()
	}

	star, ok := ast.Unparen(field.Type).(*ast.StarExpr)
	if !ok {
		return Resigned()
	}

	field.Type = star.X

	return Applied()
}

func pointerReceiver(s Site) Outcome {
	field := receiver(s.Node)
	if field == nil {
		return Resigned()
	}

	if _, ok := ast.Unparen(field.Type).(*ast.StarExpr); ok {
		return Resigned()
	}

	field.Type = &ast.StarExpr{Star: field.Type.Pos(), X: field.Type}

	return Applied()
}
