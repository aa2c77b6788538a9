package domain

import (
	"iter"
	"log/slog"

	"muton.dev/pkg/muton/internal/domain/astree"
	m "muton.dev/pkg/muton/internal/model"
)

// NumberedMutant is a generated mutant together with its ordinal in the run.
type NumberedMutant struct {
	Number    int
	Mutations []m.Mutation
	Tree      *astree.Tree
}

// MutationStreamer numbers the mutants of a run across targets and passes on
// the ones this run tests. Mutants that are filtered out still take a number,
// so numbering is identical for every shard and every filter.
type MutationStreamer struct {
	only       int
	shardIndex int
	shardCount int
	seen       int
}

// NewMutationStreamer creates a streamer. A positive only keeps just that
// mutant. With shardCount above one, mutants are assigned round-robin and
// only those of shardIndex are kept.
func NewMutationStreamer(only, shardIndex, shardCount int) *MutationStreamer {
	if shardCount <= 1 || shardIndex < 0 || shardIndex >= shardCount {
		shardIndex, shardCount = 0, 1
	}

	return &MutationStreamer{only: max(only, 0), shardIndex: shardIndex, shardCount: shardCount}
}

// Seen returns how many mutants were numbered so far.
func (s *MutationStreamer) Seen() int {
	return s.seen
}

// Done reports whether no further mutant can be kept.
func (s *MutationStreamer) Done() bool {
	return s.only > 0 && s.seen >= s.only
}

// Keep reports whether the mutant with the given number is tested.
func (s *MutationStreamer) Keep(number int) bool {
	if s.only > 0 {
		return number == s.only
	}

	return (number-1)%s.shardCount == s.shardIndex
}

// Stream numbers the mutants of mutants and yields the kept ones. It stops
// pulling from mutants once Done.
func (s *MutationStreamer) Stream(mutants iter.Seq2[[]m.Mutation, *astree.Tree]) iter.Seq[NumberedMutant] {
	return func(yield func(NumberedMutant) bool) {
		if s.Done() {
			return
		}

		for mutations, tree := range mutants {
			s.seen++

			if !s.Keep(s.seen) {
				slog.Debug("Skipping mutant", "number", s.seen)
			} else if !yield(NumberedMutant{Number: s.seen, Mutations: mutations, Tree: tree}) {
				return
			}

			if s.Done() {
				return
			}
		}
	}
}
