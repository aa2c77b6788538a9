package mutagens

import (
	"go/token"

	"muton.dev/pkg/muton/internal/domain/astree"
)

var relationalTable = []replacement{
	{token.LSS, []token.Token{token.GTR, token.LEQ}},
	{token.GTR, []token.Token{token.LSS, token.GEQ}},
	{token.LEQ, []token.Token{token.GEQ, token.LSS}},
	{token.GEQ, []token.Token{token.LEQ, token.GTR}},
	{token.EQL, []token.Token{token.NEQ}},
	{token.NEQ, []token.Token{token.EQL}},
}

// RelationalOperatorReplacement swaps comparison operators, including the
// boundary variants of each ordering.
func RelationalOperatorReplacement() *Operator {
	return newOperator("ROR", "RelationalOperatorReplacement", tokenHandlers(astree.KindBinaryExpr, relationalTable, nil))
}
