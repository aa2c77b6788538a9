package mutagens

import (
	"go/ast"
	"go/token"
	"go/types"
	"strings"

	"muton.dev/pkg/muton/internal/domain/astree"
)

var errorInterface, _ = types.Universe.Lookup("error").Type().Underlying().(*types.Interface)

// ConditionalOperatorInsertion negates the condition of if statements and
// for loops.
func ConditionalOperatorInsertion() *Operator {
	return newOperator("COI", "ConditionalOperatorInsertion", map[astree.Key][]Handler{
		astree.KeyFor(astree.KindIfStmt, token.ILLEGAL):  {{Name: "mutate_IfStmt", Fn: negateCondition}},
		astree.KeyFor(astree.KindForStmt, token.ILLEGAL): {{Name: "mutate_ForStmt", Fn: negateCondition}},
	})
}

// ErrorHandlerDeletion turns the body of an error check into a panic.
func ErrorHandlerDeletion() *Operator {
	return newOperator("EHD", "ErrorHandlerDeletion", map[astree.Key][]Handler{
		astree.KeyFor(astree.KindIfStmt, token.ILLEGAL): {{Name: "mutate_ErrorCheck_panic", Fn: panicOnError}},
	})
}

// ErrorSwallowing empties the body of an error check.
func ErrorSwallowing() *Operator {
	return newOperator("EXS", "ErrorSwallowing", map[astree.Key][]Handler{
		astree.KeyFor(astree.KindIfStmt, token.ILLEGAL): {{Name: "mutate_ErrorCheck_swallow", Fn: swallowError}},
	})
}

func negateCondition(s Site) Outcome {
	switch n := s.Node.(type) {
	case *ast.IfStmt:
		n.Cond = negate(n.Cond)
	case *ast.ForStmt:
		if n.Cond == nil {
			return Resigned()
		}

		n.Cond = negate(n.Cond)
	default:
		return Resigned()
	}

	return Applied()
}

func negate(cond ast.Expr) ast.Expr {
	if u, ok := cond.(*ast.UnaryExpr); ok && u.Op == token.NOT {
		if p, ok := u.X.(*ast.ParenExpr); ok {
			return p.X
		}

		return u.X
	}

	switch cond.(type) {
	case *ast.Ident, *ast.CallExpr, *ast.ParenExpr, *ast.SelectorExpr, *ast.IndexExpr:
		return &ast.UnaryExpr{OpPos: cond.Pos(), Op: token.NOT, X: cond}
	}

	return &ast.UnaryExpr{
		OpPos: cond.Pos(),
		Op:    token.NOT,
		X:     &ast.ParenExpr{Lparen: cond.Pos(), X: cond, Rparen: cond.End()},
	}
}

func panicOnError(s Site) Outcome {
	stmt, name, ok := errorCheck(s)
	if !ok {
		return Resigned()
	}

	if len(stmt.Body.List) == 1 && isPanic(stmt.Body.List[0]) {
		return Resigned()
	}

	stmt.Body.List = []ast.Stmt{&ast.ExprStmt{X: &ast.CallExpr{
		Fun:  ast.NewIdent("panic"),
		Args: []ast.Expr{ast.NewIdent(name)},
	}}}

	return Applied()
}

func swallowError(s Site) Outcome {
	stmt, _, ok := errorCheck(s)
	if !ok || len(stmt.Body.List) == 0 {
		return Resigned()
	}

	stmt.Body.List = nil

	return Applied()
}

// errorCheck matches `if err != nil { ... }`. With type information the
// checked identifier must implement error; without it the name decides.
func errorCheck(s Site) (*ast.IfStmt, string, bool) {
	stmt, ok := s.Node.(*ast.IfStmt)
	if !ok {
		return nil, "", false
	}

	ident, ok := nilComparison(stmt.Cond)
	if !ok {
		return nil, "", false
	}

	if orig, ok := s.Original.(*ast.IfStmt); ok {
		if origIdent, ok := nilComparison(orig.Cond); ok {
			if t := typeOf(s, origIdent); t != nil {
				return stmt, ident.Name, errorInterface != nil && types.Implements(t, errorInterface)
			}
		}
	}

	name := ident.Name

	return stmt, name, name == "err" || strings.HasSuffix(name, "Err") || strings.HasSuffix(name, "err")
}

func nilComparison(cond ast.Expr) (*ast.Ident, bool) {
	bin, ok := cond.(*ast.BinaryExpr)
	if !ok || bin.Op != token.NEQ {
		return nil, false
	}

	ident, ok := bin.X.(*ast.Ident)
	if !ok {
		return nil, false
	}

	if y, ok := bin.Y.(*ast.Ident); !ok || y.Name != "nil" {
		return nil, false
	}

	return ident, true
}

func isPanic(stmt ast.Stmt) bool {
	expr, ok := stmt.(*ast.ExprStmt)
	if !ok {
		return false
	}

	call, ok := expr.X.(*ast.CallExpr)
	if !ok {
		return false
	}

	fun, ok := call.Fun.(*ast.Ident)

	return ok && fun.Name == "panic"
}
