package mutagens

import (
	"go/ast"
	"go/constant"
	"go/token"
	"math"
	"strconv"
	"strings"

	"muton.dev/pkg/muton/internal/domain/astree"
)

const (
	replacementString = "muton"
	fallbackString    = "python"
)

// ConstantReplacement changes number and string literals.
func ConstantReplacement() *Operator {
	return newOperator("CRP", "ConstantReplacement", map[astree.Key][]Handler{
		astree.KeyFor(astree.KindBasicLit, token.INT):   {{Name: "mutate_Num", Fn: incrementNumber}},
		astree.KeyFor(astree.KindBasicLit, token.FLOAT): {{Name: "mutate_Num", Fn: incrementNumber}},
		astree.KeyFor(astree.KindBasicLit, token.STRING): {
			{Name: "mutate_Str", Fn: replaceString},
			{Name: "mutate_Str_empty", Fn: emptyString},
		},
	})
}

func incrementNumber(s Site) Outcome {
	lit, ok := s.Node.(*ast.BasicLit)
	if !ok {
		return Resigned()
	}

	value, ok := increment(lit)
	if !ok {
		return Resigned()
	}

	lit.Value = value

	return Applied()
}

func increment(lit *ast.BasicLit) (string, bool) {
	switch lit.Kind {
	case token.INT:
		v := constant.MakeFromLiteral(lit.Value, token.INT, 0)
		if v.Kind() == constant.Unknown {
			return "", false
		}

		return constant.BinaryOp(v, token.ADD, constant.MakeInt64(1)).ExactString(), true
	case token.FLOAT:
		f, err := strconv.ParseFloat(strings.ReplaceAll(lit.Value, "_", ""), 64)
		if err != nil || math.IsInf(f+1, 0) {
			return "", false
		}

		// keep the literal untyped float
		out := strconv.FormatFloat(f+1, 'g', -1, 64)
		if !strings.ContainsAny(out, ".e") {
			out += ".0"
		}

		return out, true
	default:
		return "", false
	}
}

func replaceString(s Site) Outcome {
	lit, value, ok := stringLiteral(s)
	if !ok {
		return Resigned()
	}

	replacement := replacementString
	if value == replacementString {
		replacement = fallbackString
	}

	lit.Value = strconv.Quote(replacement)

	return Applied()
}

func emptyString(s Site) Outcome {
	lit, value, ok := stringLiteral(s)
	if !ok || value == "" {
		return Resigned()
	}

	lit.Value = `""`

	return Applied()
}

// stringLiteral returns a mutable string literal. Import paths and struct
// tags are not values.
func stringLiteral(s Site) (*ast.BasicLit, string, bool) {
	lit, ok := s.Node.(*ast.BasicLit)
	if !ok || lit.Kind != token.STRING {
		return nil, "", false
	}

	switch parent := s.Parent.(type) {
	case *ast.ImportSpec:
		return nil, "", false
	case *ast.Field:
		if parent.Tag == lit {
			return nil, "", false
		}
	}

	value, err := strconv.Unquote(lit.Value)
	if err != nil {
		return nil, "", false
	}

	return lit, value, true
}
