package mutagens

import (
	"go/token"

	"muton.dev/pkg/muton/internal/domain/astree"
)

var logicalTable = []replacement{
	{token.LAND, []token.Token{token.LOR}},
	{token.LOR, []token.Token{token.LAND}},
}

// LogicalOperatorReplacement swaps && and ||.
func LogicalOperatorReplacement() *Operator {
	return newOperator("LOR", "LogicalOperatorReplacement", tokenHandlers(astree.KindBinaryExpr, logicalTable, nil))
}

// LogicalOperatorDeletion drops logical negation.
func LogicalOperatorDeletion() *Operator {
	return newOperator("LOD", "LogicalOperatorDeletion", unwrapHandlers(token.NOT))
}
