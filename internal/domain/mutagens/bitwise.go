package mutagens

import (
	"go/token"

	"muton.dev/pkg/muton/internal/domain/astree"
)

var bitwiseTable = []replacement{
	{token.AND, []token.Token{token.OR}},
	{token.OR, []token.Token{token.AND}},
	{token.XOR, []token.Token{token.AND}},
	{token.SHL, []token.Token{token.SHR}},
	{token.SHR, []token.Token{token.SHL}},
	{token.AND_NOT, []token.Token{token.AND}},
}

// BitwiseOperatorReplacement swaps binary bitwise operators and shifts.
func BitwiseOperatorReplacement() *Operator {
	return newOperator("BOR", "BitwiseOperatorReplacement", tokenHandlers(astree.KindBinaryExpr, bitwiseTable, nil))
}

// BitwiseOperatorDeletion drops the unary bitwise complement.
func BitwiseOperatorDeletion() *Operator {
	return newOperator("BOD", "BitwiseOperatorDeletion", unwrapHandlers(token.XOR))
}
