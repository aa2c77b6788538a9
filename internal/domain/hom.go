package domain

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"

	m "muton.dev/pkg/muton/internal/model"
)

// HOM strategy names accepted by NewHOMStrategy.
const (
	FirstToLast      = "FIRST_TO_LAST"
	EachChoice       = "EACH_CHOICE"
	BetweenOperators = "BETWEEN_OPERATORS"
	Random           = "RANDOM"
)

// HOMStrategies lists the strategy names.
var HOMStrategies = []string{FirstToLast, EachChoice, BetweenOperators, Random}

// HOMStrategy partitions candidate mutations into groups applied together.
// A group never holds two conflicting mutations.
type HOMStrategy interface {
	Generate(mutations []m.Mutation) [][]m.Mutation
}

// NewHOMStrategy builds a strategy by name. order must be at least 1.
func NewHOMStrategy(name string, order int) (HOMStrategy, error) {
	if order < 1 {
		return nil, fmt.Errorf("invalid mutation order %d", order)
	}

	switch strings.ToUpper(name) {
	case FirstToLast:
		return &FirstToLastStrategy{Order: order}, nil
	case EachChoice:
		return &EachChoiceStrategy{Order: order}, nil
	case BetweenOperators:
		return &BetweenOperatorsStrategy{Order: order}, nil
	case Random:
		return &RandomStrategy{Order: order}, nil
	default:
		return nil, fmt.Errorf("unknown HOM strategy %q (want one of %s)", name, strings.Join(HOMStrategies, ", "))
	}
}

// FirstToLastStrategy picks alternately from the front and the back.
type FirstToLastStrategy struct {
	Order int
}

// Generate implements HOMStrategy.
func (s *FirstToLastStrategy) Generate(mutations []m.Mutation) [][]m.Mutation {
	return alternating(mutations, s.Order, true)
}

// EachChoiceStrategy groups mutations in order.
type EachChoiceStrategy struct {
	Order int
}

// Generate implements HOMStrategy.
func (s *EachChoiceStrategy) Generate(mutations []m.Mutation) [][]m.Mutation {
	return alternating(mutations, s.Order, false)
}

// RandomStrategy shuffles the candidates, then groups them in order.
type RandomStrategy struct {
	Order   int
	Shuffle func([]m.Mutation)
}

// Generate implements HOMStrategy.
func (s *RandomStrategy) Generate(mutations []m.Mutation) [][]m.Mutation {
	shuffled := slices.Clone(mutations)

	shuffle := s.Shuffle
	if shuffle == nil {
		shuffle = func(ms []m.Mutation) {
			rand.Shuffle(len(ms), func(i, j int) { ms[i], ms[j] = ms[j], ms[i] })
		}
	}

	shuffle(shuffled)

	return alternating(shuffled, s.Order, false)
}

// BetweenOperatorsStrategy combines mutations of different operators,
// preferring the least used candidates. A candidate may join several groups;
// generation stops once every candidate joined one.
type BetweenOperatorsStrategy struct {
	Order int
}

// Generate implements HOMStrategy.
func (s *BetweenOperatorsStrategy) Generate(mutations []m.Mutation) [][]m.Mutation {
	usage := make(map[m.Mutation]int, len(mutations))
	unused := len(mutations)

	var groups [][]m.Mutation

	for unused > 0 {
		available := slices.Clone(mutations)
		slices.SortStableFunc(available, func(a, b m.Mutation) int {
			return usage[a] - usage[b]
		})

		var group []m.Mutation

		for len(group) < s.Order && len(available) > 0 {
			mutation := available[0]
			available = available[1:]
			group = append(group, mutation)

			if usage[mutation] == 0 {
				unused--
			}

			usage[mutation]++
			available = removeConflicting(group, available, false)
		}

		groups = append(groups, group)
	}

	return groups
}

// alternating consumes the pool into groups of at most order mutations. With
// fromBothEnds it picks the first, then the last, then the first candidate.
func alternating(mutations []m.Mutation, order int, fromBothEnds bool) [][]m.Mutation {
	pool := slices.Clone(mutations)

	var groups [][]m.Mutation

	for len(pool) > 0 {
		available := slices.Clone(pool)
		front := true

		var group []m.Mutation

		for len(group) < order && len(available) > 0 {
			index := 0
			if !front {
				index = len(available) - 1
			}

			mutation := available[index]
			available = slices.Delete(available, index, index+1)
			group = append(group, mutation)
			pool = slices.DeleteFunc(pool, func(candidate m.Mutation) bool { return candidate == mutation })

			if fromBothEnds {
				front = !front
			}

			available = removeConflicting(group, available, true)
		}

		groups = append(groups, group)
	}

	return groups
}

// removeConflicting drops from pool every mutation conflicting with the
// group, and with allowSameOperator unset every mutation sharing an operator.
func removeConflicting(group, pool []m.Mutation, allowSameOperator bool) []m.Mutation {
	return slices.DeleteFunc(pool, func(candidate m.Mutation) bool {
		for _, chosen := range group {
			if chosen.ConflictsWith(candidate) {
				return true
			}

			if !allowSameOperator && chosen.Operator == candidate.Operator {
				return true
			}
		}

		return false
	})
}
