package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMutationScore_CountWithoutMeaningfulMutants(t *testing.T) {
	score := NewMutationScore(true)
	assert.Zero(t, score.Count())

	score.IncIncompetent()
	score.IncIncompetent()
	assert.Equal(t, 2, score.All())
	assert.Zero(t, score.Count())
}

func TestMutationScore_AllSumsEveryBucket(t *testing.T) {
	score := NewMutationScore(true)
	score.IncKilled()
	score.IncKilled()
	score.IncSurvived()
	score.IncTimeout()
	score.IncIncompetent()

	assert.Equal(t, 5, score.All())
	assert.Equal(t, score.Killed+score.Survived+score.Timeout+score.Incompetent, score.All())
}

func TestMutationScore_TimeoutCountsAsKilled(t *testing.T) {
	score := NewMutationScore(true)
	score.IncKilled()
	score.IncTimeout()
	score.IncSurvived()
	score.IncSurvived()
	score.IncIncompetent()

	// (1 killed + 1 timeout) / (5 all - 1 incompetent)
	assert.InDelta(t, 50.0, score.Count(), 1e-9)
}

func TestMutationScore_TimeoutExcluded(t *testing.T) {
	score := NewMutationScore(false)
	score.IncKilled()
	score.IncTimeout()
	score.IncSurvived()
	score.IncIncompetent()

	// 1 killed / (4 all - 1 incompetent - 1 timeout)
	assert.InDelta(t, 50.0, score.Count(), 1e-9)
}

func TestMutationScore_OnlyTimeoutsWhenExcluded(t *testing.T) {
	score := NewMutationScore(false)
	score.IncTimeout()

	assert.Zero(t, score.Count())

	score.TimeoutAsKilled = true
	assert.InDelta(t, 100.0, score.Count(), 1e-9)
}

func TestMutationScore_Record(t *testing.T) {
	score := NewMutationScore(true)

	for _, status := range []Status{Killed, Survived, Timeout, Incompetent, Killed} {
		score.Record(status)
	}

	assert.Equal(t, 2, score.Killed)
	assert.Equal(t, 1, score.Survived)
	assert.Equal(t, 1, score.Timeout)
	assert.Equal(t, 1, score.Incompetent)
}

func TestMutationScore_Coverage(t *testing.T) {
	score := NewMutationScore(true)
	assert.Zero(t, score.Coverage())

	score.UpdateCoverage(3, 4)
	score.UpdateCoverage(1, 4)
	assert.InDelta(t, 50.0, score.Coverage(), 1e-9)
}

func TestMutation_ConflictsWith(t *testing.T) {
	parent := Mutation{Operator: "AOR", Node: 3, End: 8}
	child := Mutation{Operator: "CRP", Node: 5, End: 6}
	sibling := Mutation{Operator: "AOR", Node: 8, End: 9}
	same := Mutation{Operator: "ROR", Node: 3, End: 8}

	assert.True(t, parent.ConflictsWith(child))
	assert.True(t, child.ConflictsWith(parent))
	assert.True(t, parent.ConflictsWith(same))
	assert.False(t, parent.ConflictsWith(sibling))
	assert.False(t, child.ConflictsWith(sibling))
}

func TestTestRunResult_MergeKeepsFirstKiller(t *testing.T) {
	result := TestRunResult{Survived: true}
	result.Merge(TestRunResult{Survived: true, TestsRun: 2})
	result.Merge(TestRunResult{Killer: "pkg.TestA", Exception: "boom", TestsRun: 1})
	result.Merge(TestRunResult{Killer: "pkg.TestB", TestsRun: 3})

	assert.Equal(t, Killed, result.Status())
	assert.Equal(t, "pkg.TestA", result.Killer)
	assert.Equal(t, "boom", result.Exception)
	assert.Equal(t, 6, result.TestsRun)
}

func TestMutant_Describe(t *testing.T) {
	mutant := Mutant{Mutations: []Mutation{
		{Operator: "AOR", Line: 3},
		{Operator: "ASR", Line: 3},
		{Operator: "AOR", Line: 7},
	}}

	assert.Equal(t, "AOR:3, ASR:3, AOR:7", mutant.Describe())
	assert.Equal(t, []string{"AOR", "ASR"}, mutant.Operators())
}
