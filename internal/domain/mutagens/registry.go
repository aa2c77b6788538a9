package mutagens

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrUnknownOperator is returned for operator codes that are not registered.
var ErrUnknownOperator = errors.New("unknown mutation operator")

// All returns every operator, sorted by code.
func All() []*Operator {
	ops := []*Operator{
		ArithmeticOperatorReplacement(),
		ArithmeticOperatorDeletion(),
		AssignmentOperatorReplacement(),
		BitwiseOperatorReplacement(),
		BitwiseOperatorDeletion(),
		LogicalOperatorReplacement(),
		LogicalOperatorDeletion(),
		RelationalOperatorReplacement(),
		ConditionalOperatorInsertion(),
		ConstantReplacement(),
		StatementDeletion(),
		SliceIndexRemove(),
		ZeroIterationLoop(),
		OneIterationLoop(),
		ReverseIterationLoop(),
		ErrorHandlerDeletion(),
		ErrorSwallowing(),
		PointerReceiverDeletion(),
		PointerReceiverInsertion(),
		OverridingMethodDeletion(),
		SuperCallingDeletion(),
	}

	Sort(ops)

	return ops
}

// Sort orders operators by code.
func Sort(ops []*Operator) {
	slices.SortStableFunc(ops, func(a, b *Operator) int {
		return cmp.Compare(a.Name, b.Name)
	})
}

// ByName resolves operator codes case-insensitively. No codes selects every
// operator. Duplicates are collapsed.
func ByName(names ...string) ([]*Operator, error) {
	all := All()
	if len(names) == 0 {
		return all, nil
	}

	index := make(map[string]*Operator, len(all))
	for _, op := range all {
		index[op.Name] = op
	}

	var (
		ops  []*Operator
		seen = make(map[string]bool, len(names))
	)

	for _, name := range names {
		code := strings.ToUpper(strings.TrimSpace(name))
		if code == "" || seen[code] {
			continue
		}

		op, ok := index[code]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownOperator, name)
		}

		seen[code] = true
		ops = append(ops, op)
	}

	Sort(ops)

	return ops, nil
}
