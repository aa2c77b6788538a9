package domain_test

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"muton.dev/pkg/muton/internal/domain"
	m "muton.dev/pkg/muton/internal/model"
)

// siblings are three mutations on unrelated nodes.
var siblings = []m.Mutation{
	{ID: "m0", Operator: "AOR", Node: 2, End: 3},
	{ID: "m1", Operator: "AOR", Node: 5, End: 6},
	{ID: "m2", Operator: "ROR", Node: 8, End: 9},
}

func ids(groups [][]m.Mutation) [][]string {
	out := make([][]string, 0, len(groups))

	for _, group := range groups {
		names := make([]string, 0, len(group))
		for _, mutation := range group {
			names = append(names, mutation.ID)
		}

		out = append(out, names)
	}

	return out
}

func strategy(t *testing.T, name string, order int) domain.HOMStrategy {
	t.Helper()

	s, err := domain.NewHOMStrategy(name, order)
	require.NoError(t, err)

	return s
}

func TestHOMStrategies_Groups(t *testing.T) {
	tests := []struct {
		name     string
		strategy domain.HOMStrategy
		input    []m.Mutation
		want     [][]string
	}{
		{
			name:     "first to last",
			strategy: strategy(t, domain.FirstToLast, 2),
			input:    siblings,
			want:     [][]string{{"m0", "m2"}, {"m1"}},
		},
		{
			name:     "each choice",
			strategy: strategy(t, domain.EachChoice, 2),
			input:    siblings,
			want:     [][]string{{"m0", "m1"}, {"m2"}},
		},
		{
			name:     "between operators reuses candidates",
			strategy: strategy(t, domain.BetweenOperators, 2),
			input: []m.Mutation{
				{ID: "A1", Operator: "AOR", Node: 2, End: 3},
				{ID: "A2", Operator: "AOR", Node: 5, End: 6},
				{ID: "S", Operator: "SDL", Node: 8, End: 9},
			},
			want: [][]string{{"A1", "S"}, {"A2", "S"}},
		},
		{
			name: "random with injected shuffle",
			strategy: &domain.RandomStrategy{Order: 2, Shuffle: func(ms []m.Mutation) {
				slices.Reverse(ms)
			}},
			input: siblings,
			want:  [][]string{{"m2", "m1"}, {"m0"}},
		},
		{
			name:     "order one",
			strategy: strategy(t, domain.FirstToLast, 1),
			input:    siblings,
			want:     [][]string{{"m0"}, {"m1"}, {"m2"}},
		},
		{
			name:     "empty",
			strategy: strategy(t, domain.EachChoice, 3),
			input:    nil,
			want:     [][]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(tt.strategy.Generate(tt.input)))
		})
	}
}

func TestHOMStrategies_NeverGroupConflicts(t *testing.T) {
	// m0 contains m1; m2 shares m0's node.
	conflicting := []m.Mutation{
		{ID: "m0", Operator: "AOR", Node: 2, End: 7},
		{ID: "m1", Operator: "CRP", Node: 4, End: 5},
		{ID: "m2", Operator: "ROR", Node: 2, End: 7},
		{ID: "m3", Operator: "LOR", Node: 9, End: 10},
	}

	for _, name := range domain.HOMStrategies {
		t.Run(name, func(t *testing.T) {
			groups := strategy(t, name, 3).Generate(conflicting)

			used := make(map[string]bool)

			for _, group := range groups {
				require.NotEmpty(t, group)

				for i, a := range group {
					used[a.ID] = true

					for _, b := range group[i+1:] {
						assert.False(t, a.ConflictsWith(b), "%s and %s share a group", a.ID, b.ID)
					}
				}
			}

			assert.Len(t, used, len(conflicting), "every candidate joins a group")
		})
	}
}

func TestHOMStrategies_EachCandidateOnce(t *testing.T) {
	for _, name := range []string{domain.FirstToLast, domain.EachChoice, domain.Random} {
		t.Run(name, func(t *testing.T) {
			groups := strategy(t, name, 2).Generate(siblings)

			var all []string
			for _, group := range ids(groups) {
				all = append(all, group...)
			}

			assert.ElementsMatch(t, []string{"m0", "m1", "m2"}, all)
		})
	}
}

func TestNewHOMStrategy_Errors(t *testing.T) {
	_, err := domain.NewHOMStrategy(domain.EachChoice, 0)
	require.Error(t, err)

	_, err = domain.NewHOMStrategy("SIDEWAYS", 2)
	require.Error(t, err)

	s, err := domain.NewHOMStrategy("each_choice", 2)
	require.NoError(t, err)
	assert.IsType(t, &domain.EachChoiceStrategy{}, s)
}
