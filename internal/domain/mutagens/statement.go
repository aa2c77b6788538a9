package mutagens

import (
	"go/ast"
	"go/token"

	"muton.dev/pkg/muton/internal/domain/astree"
)

var deletableAssignments = []token.Token{
	token.ASSIGN,
	token.ADD_ASSIGN,
	token.SUB_ASSIGN,
	token.MUL_ASSIGN,
	token.QUO_ASSIGN,
	token.REM_ASSIGN,
	token.AND_ASSIGN,
	token.OR_ASSIGN,
	token.XOR_ASSIGN,
	token.SHL_ASSIGN,
	token.SHR_ASSIGN,
	token.AND_NOT_ASSIGN,
}

// StatementDeletion replaces simple statements with an empty statement.
// Short variable declarations and returns with results are kept since
// deleting them cannot compile.
func StatementDeletion() *Operator {
	handlers := map[astree.Key][]Handler{
		astree.KeyFor(astree.KindExprStmt, token.ILLEGAL):   {deleteHandler(astree.KindExprStmt)},
		astree.KeyFor(astree.KindIncDecStmt, token.INC):     {deleteHandler(astree.KindIncDecStmt)},
		astree.KeyFor(astree.KindIncDecStmt, token.DEC):     {deleteHandler(astree.KindIncDecStmt)},
		astree.KeyFor(astree.KindReturnStmt, token.ILLEGAL): {deleteHandler(astree.KindReturnStmt)},
		astree.KeyFor(astree.KindDeferStmt, token.ILLEGAL):  {deleteHandler(astree.KindDeferStmt)},
		astree.KeyFor(astree.KindGoStmt, token.ILLEGAL):     {deleteHandler(astree.KindGoStmt)},
		astree.KeyFor(astree.KindSendStmt, token.ILLEGAL):   {deleteHandler(astree.KindSendStmt)},
	}

	for _, tok := range deletableAssignments {
		handlers[astree.KeyFor(astree.KindAssignStmt, tok)] = []Handler{deleteHandler(astree.KindAssignStmt)}
	}

	return newOperator("SDL", "StatementDeletion", handlers)
}

func deleteHandler(kind astree.Kind) Handler {
	return Handler{Name: "mutate_" + kind.String(), Fn: deleteStatement}
}

func deleteStatement(s Site) Outcome {
	switch n := s.Node.(type) {
	case *ast.ReturnStmt:
		if len(n.Results) > 0 {
			return Resigned()
		}
	case *ast.AssignStmt:
		if n.Tok == token.DEFINE {
			return Resigned()
		}
	case *ast.ExprStmt, *ast.IncDecStmt, *ast.DeferStmt, *ast.GoStmt, *ast.SendStmt:
	default:
		return Resigned()
	}

	return Replaced(emptyStmt())
}
