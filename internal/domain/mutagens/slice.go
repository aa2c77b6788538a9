package mutagens

import (
	"go/ast"
	"go/token"

	"muton.dev/pkg/muton/internal/domain/astree"
)

// SliceIndexRemove drops one index of a slice expression.
func SliceIndexRemove() *Operator {
	return newOperator("SIR", "SliceIndexRemove", map[astree.Key][]Handler{
		astree.KeyFor(astree.KindSliceExpr, token.ILLEGAL): {
			{Name: "mutate_Slice_remove_lower", Fn: removeLow},
			{Name: "mutate_Slice_remove_upper", Fn: removeHigh},
			{Name: "mutate_Slice_remove_max", Fn: removeMax},
		},
	})
}

func removeLow(s Site) Outcome {
	expr, ok := s.Node.(*ast.SliceExpr)
	if !ok || expr.Low == nil {
		return Resigned()
	}

	expr.Low = nil

	return Applied()
}

func removeHigh(s Site) Outcome {
	expr, ok := s.Node.(*ast.SliceExpr)
	if !ok || expr.High == nil || expr.Slice3 {
		return Resigned()
	}

	expr.High = nil

	return Applied()
}

func removeMax(s Site) Outcome {
	expr, ok := s.Node.(*ast.SliceExpr)
	if !ok || !expr.Slice3 || expr.Max == nil {
		return Resigned()
	}

	expr.Max = nil
	expr.Slice3 = false

	return Applied()
}
