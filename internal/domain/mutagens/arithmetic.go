package mutagens

import (
	"go/ast"
	"go/token"

	"muton.dev/pkg/muton/internal/domain/astree"
)

var arithmeticTable = []replacement{
	{token.ADD, []token.Token{token.SUB}},
	{token.SUB, []token.Token{token.ADD}},
	{token.MUL, []token.Token{token.QUO, token.REM, token.ADD}},
	{token.QUO, []token.Token{token.MUL, token.REM}},
	{token.REM, []token.Token{token.MUL}},
}

var assignmentTable = []replacement{
	{token.ADD_ASSIGN, []token.Token{token.SUB_ASSIGN}},
	{token.SUB_ASSIGN, []token.Token{token.ADD_ASSIGN}},
	{token.MUL_ASSIGN, []token.Token{token.QUO_ASSIGN}},
	{token.QUO_ASSIGN, []token.Token{token.MUL_ASSIGN}},
	{token.REM_ASSIGN, []token.Token{token.MUL_ASSIGN}},
}

var incDecTable = []replacement{
	{token.INC, []token.Token{token.DEC}},
	{token.DEC, []token.Token{token.INC}},
}

// ArithmeticOperatorReplacement swaps binary arithmetic operators. String
// concatenation is left alone when type information is available.
func ArithmeticOperatorReplacement() *Operator {
	return newOperator("AOR", "ArithmeticOperatorReplacement",
		tokenHandlers(astree.KindBinaryExpr, arithmeticTable, notConcatenation))
}

// ArithmeticOperatorDeletion drops unary plus and minus.
func ArithmeticOperatorDeletion() *Operator {
	return newOperator("AOD", "ArithmeticOperatorDeletion", unwrapHandlers(token.SUB, token.ADD))
}

// AssignmentOperatorReplacement swaps compound assignments and ++/--.
func AssignmentOperatorReplacement() *Operator {
	return newOperator("ASR", "AssignmentOperatorReplacement", merge(
		tokenHandlers(astree.KindAssignStmt, assignmentTable, notConcatenation),
		tokenHandlers(astree.KindIncDecStmt, incDecTable, nil),
	))
}

func notConcatenation(s Site) bool {
	switch n := s.Original.(type) {
	case *ast.BinaryExpr:
		return !isString(typeOf(s, n))
	case *ast.AssignStmt:
		return len(n.Lhs) != 1 || !isString(typeOf(s, n.Lhs[0]))
	}

	return true
}
