// Package domain holds the mutation testing workflow: mutant generation,
// test orchestration and score bookkeeping.
package domain

import (
	"fmt"
	"iter"
	"log/slog"
	"slices"

	"muton.dev/pkg/muton/internal/domain/astree"
	"muton.dev/pkg/muton/internal/domain/mutagens"
	m "muton.dev/pkg/muton/internal/model"
)

// MutateOptions selects what a mutator may change.
type MutateOptions struct {
	Operators []*mutagens.Operator
	Sampler   mutagens.Sampler
	Coverage  mutagens.Coverage
	Member    string
}

func (o MutateOptions) operatorOptions() mutagens.Options {
	return mutagens.Options{Sampler: o.Sampler, Coverage: o.Coverage, Member: o.Member}
}

func (o MutateOptions) sortedOperators() []*mutagens.Operator {
	ops := slices.Clone(o.Operators)
	mutagens.Sort(ops)

	return ops
}

// Mutator yields mutants of a tree. Each mutant is a copy of the tree with
// exactly the listed mutations applied; the tree itself is left untouched.
type Mutator interface {
	Mutate(tree *astree.Tree, opts MutateOptions) iter.Seq2[[]m.Mutation, *astree.Tree]
}

// FirstOrderMutator yields one mutant per atomic mutation, operator by
// operator.
type FirstOrderMutator struct{}

// NewFirstOrderMutator creates a FirstOrderMutator.
func NewFirstOrderMutator() *FirstOrderMutator {
	return &FirstOrderMutator{}
}

// Mutate implements Mutator.
func (*FirstOrderMutator) Mutate(tree *astree.Tree, opts MutateOptions) iter.Seq2[[]m.Mutation, *astree.Tree] {
	return func(yield func([]m.Mutation, *astree.Tree) bool) {
		for _, op := range opts.sortedOperators() {
			for mutation, mutant := range op.Mutate(tree, opts.operatorOptions()) {
				if !yield([]m.Mutation{mutation}, mutant) {
					return
				}
			}
		}
	}
}

// HighOrderMutator combines several atomic mutations into one mutant as
// decided by a HOM strategy.
type HighOrderMutator struct {
	Strategy HOMStrategy
}

// NewHighOrderMutator creates a HighOrderMutator.
func NewHighOrderMutator(strategy HOMStrategy) *HighOrderMutator {
	return &HighOrderMutator{Strategy: strategy}
}

type puller struct {
	next func() (m.Mutation, *astree.Tree, bool)
	stop func()
}

// Mutate implements Mutator. Candidates are enumerated once, then every
// group is applied by re-running each owning operator on the running mutant
// restricted to the recorded mutation.
func (h *HighOrderMutator) Mutate(tree *astree.Tree, opts MutateOptions) iter.Seq2[[]m.Mutation, *astree.Tree] {
	return func(yield func([]m.Mutation, *astree.Tree) bool) {
		ops := opts.sortedOperators()
		byName := make(map[string]*mutagens.Operator, len(ops))

		var candidates []m.Mutation

		for _, op := range ops {
			byName[op.Name] = op

			for mutation := range op.Mutate(tree, opts.operatorOptions()) {
				candidates = append(candidates, mutation)
			}
		}

		groups := h.Strategy.Generate(candidates)
		slog.Debug("generated mutation groups", "file", tree.Path, "candidates", len(candidates), "groups", len(groups))

		for _, group := range groups {
			if !h.apply(tree, group, byName, yield) {
				return
			}
		}
	}
}

func (h *HighOrderMutator) apply(
	tree *astree.Tree,
	group []m.Mutation,
	byName map[string]*mutagens.Operator,
	yield func([]m.Mutation, *astree.Tree) bool,
) bool {
	pullers := make([]puller, 0, len(group))

	defer func() {
		for _, p := range pullers {
			p.stop()
		}
	}()

	current := tree

	for _, mutation := range group {
		op, ok := byName[mutation.Operator]
		if !ok {
			panic(fmt.Errorf("%w: unknown operator %s", ErrMutationInconsistency, mutation.Operator))
		}

		only := mutation
		next, stop := iter.Pull2(op.Mutate(current, mutagens.Options{Only: &only}))
		pullers = append(pullers, puller{next: next, stop: stop})

		got, mutant, ok := next()
		if !ok || got.ID != mutation.ID {
			panic(fmt.Errorf("%w: %s (%s)", ErrMutationInconsistency, mutation, mutation.Visitor))
		}

		current = mutant
	}

	if !yield(group, current) {
		return false
	}

	for i := len(pullers) - 1; i >= 0; i-- {
		if extra, _, ok := pullers[i].next(); ok {
			panic(fmt.Errorf("%w: unexpected %s (%s)", ErrMutationInconsistency, extra, extra.Visitor))
		}
	}

	return true
}
