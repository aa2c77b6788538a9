package domain

import (
	"math/rand/v2"
)

// RandomSampler realises each candidate mutation with a fixed probability.
type RandomSampler struct {
	percentage int
	rng        *rand.Rand
}

// NewRandomSampler returns a sampler keeping percentage percent of the
// candidates. Values outside (0, 100) keep everything. rng may be nil.
func NewRandomSampler(percentage int, rng *rand.Rand) *RandomSampler {
	if percentage <= 0 || percentage >= 100 {
		percentage = 100
	}

	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())) //nolint:gosec // sampling, not security
	}

	return &RandomSampler{percentage: percentage, rng: rng}
}

// Percentage returns the effective sampling percentage.
func (s *RandomSampler) Percentage() int {
	return s.percentage
}

// IsMutationTime implements mutagens.Sampler.
func (s *RandomSampler) IsMutationTime() bool {
	return s.rng.IntN(100) < s.percentage
}
