package controller

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"muton.dev/pkg/muton/internal/domain/mutagens"
	m "muton.dev/pkg/muton/internal/model"
)

const mulOriginal = "package mul\n\nfunc Mul(x int) int {\n\treturn x * x\n}\n"

func mulMutant(number int, op string) m.Mutant {
	return m.Mutant{
		Number:    number,
		Mutations: []m.Mutation{{Operator: "AOR", Visitor: "mutate_Mul_to_" + op, Line: 4}},
		File:      "mul.go",
		Original:  []byte(mulOriginal),
		Source:    []byte("package mul\n\nfunc Mul(x int) int {\n\treturn x " + map[string]string{"Quo": "/", "Add": "+"}[op] + " x\n}\n"),
	}
}

func newTestSimpleUI(showMutants bool) (*SimpleUI, *bytes.Buffer) {
	var out bytes.Buffer

	cmd := &cobra.Command{}
	cmd.SetOut(&out)

	return NewSimpleUI(cmd, showMutants), &out
}

func TestSimpleUI_Run(t *testing.T) {
	ui, out := newTestSimpleUI(true)
	ctx := context.Background()

	score := m.NewMutationScore(true)
	score.IncKilled()
	score.IncSurvived()

	require.NoError(t, ui.Initialize(ctx, []string{"./mul"}, []string{"./..."}))
	require.NoError(t, ui.Passed(ctx, []m.TestResult{{ID: m.TestID{Package: "example.com/mul", Name: "TestMul"}, Duration: time.Millisecond}}, 1))
	require.NoError(t, ui.Start(ctx))
	require.NoError(t, ui.Mutation(ctx, mulMutant(1, "Quo")))
	require.NoError(t, ui.Killed(ctx, time.Second, "example.com/mul.TestMul", "", 1))
	require.NoError(t, ui.Mutation(ctx, mulMutant(2, "Add")))
	require.NoError(t, ui.Survived(ctx, time.Second, 1))
	require.NoError(t, ui.End(ctx, score, 3*time.Second))

	text := out.String()
	assert.Contains(t, text, "[*] Start mutation process:")
	assert.Contains(t, text, "   - targets: ./mul")
	assert.Contains(t, text, "[*] 1 tests passed:")
	assert.Contains(t, text, "   - example.com/mul.TestMul [0.00100 s]")
	assert.Contains(t, text, "   - [#   1] AOR mul.go:4: [1.00000 s] killed by example.com/mul.TestMul")
	assert.Contains(t, text, "   - [#   2] AOR mul.go:4: [1.00000 s] survived")
	assert.Contains(t, text, "+\treturn x + x", "survivor diff is shown")
	assert.NotContains(t, text, "+\treturn x / x", "killed mutants show no diff")
	assert.Contains(t, text, "Mutation score [3.00000 s]: 50.0%")
}

func TestSimpleUI_HidesDiffsByDefault(t *testing.T) {
	ui, out := newTestSimpleUI(false)
	ctx := context.Background()

	require.NoError(t, ui.Mutation(ctx, mulMutant(1, "Add")))
	require.NoError(t, ui.Survived(ctx, time.Second, 1))

	assert.Contains(t, out.String(), "survived")
	assert.NotContains(t, out.String(), "return x + x")
}

func TestSimpleUI_OtherOutcomes(t *testing.T) {
	ui, out := newTestSimpleUI(false)
	ctx := context.Background()

	require.NoError(t, ui.Mutation(ctx, mulMutant(1, "Quo")))
	require.NoError(t, ui.Timeout(ctx, 5*time.Second))
	require.NoError(t, ui.Mutation(ctx, mulMutant(2, "Quo")))
	require.NoError(t, ui.Incompetent(ctx, 0, "./mul.go:4:9: invalid operation\nmore", 0))
	require.NoError(t, ui.CantLoad(ctx, "./missing", errors.New("no packages matched")))
	require.NoError(t, ui.OriginalTestsFail(ctx, m.TestRunResult{Killer: "example.com/mul.TestMul", Exception: "boom"}))

	text := out.String()
	assert.Contains(t, text, "[5.00000 s] timeout")
	assert.Contains(t, text, "incompetent: ./mul.go:4:9: invalid operation\n")
	assert.NotContains(t, text, "more")
	assert.Contains(t, text, "[!] can't load ./missing: no packages matched")
	assert.Contains(t, text, "   - fail in example.com/mul.TestMul - boom")
}

func TestSimpleUI_OutcomeWithoutMutationIsIgnored(t *testing.T) {
	ui, out := newTestSimpleUI(false)

	require.NoError(t, ui.Survived(context.Background(), time.Second, 1))
	assert.Empty(t, out.String())
}

func TestSimpleUI_DisplayOperators(t *testing.T) {
	ui, out := newTestSimpleUI(false)

	require.NoError(t, ui.DisplayOperators(context.Background(), mutagens.All()))

	text := out.String()
	for _, op := range mutagens.All() {
		assert.Contains(t, text, op.Name)
	}
}

func TestSimpleUI_DisplayMutants(t *testing.T) {
	ui, out := newTestSimpleUI(true)

	require.NoError(t, ui.DisplayMutants(context.Background(), []m.Mutant{mulMutant(1, "Quo"), mulMutant(2, "Add")}))

	text := out.String()
	assert.Contains(t, text, "mul.go:4")
	assert.Contains(t, text, "return x / x")
	assert.Contains(t, text, "+\treturn x + x")
}

func TestSimpleUI_DisplayReport(t *testing.T) {
	ui, out := newTestSimpleUI(true)

	doc := m.ReportDocument{
		RunID:   "run-1",
		Module:  "example.com/mul",
		Started: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Score:   m.MutationScore{Killed: 1, Survived: 1, TimeoutAsKilled: true},
		Mutants: []m.Report{
			{Number: 1, File: "mul.go", Status: "killed", Killer: "example.com/mul.TestMul", Mutations: []m.Mutation{{Operator: "AOR", Line: 4}}},
			{Number: 2, File: "mul.go", Status: "survived", Diff: "-\treturn x * x\n+\treturn x + x", Mutations: []m.Mutation{{Operator: "AOR", Line: 4}}},
		},
	}

	require.NoError(t, ui.DisplayReport(context.Background(), doc))

	text := out.String()
	assert.Contains(t, text, "Run run-1 of example.com/mul started 2024-05-01T12:00:00Z")
	assert.Contains(t, text, "example.com/mul.TestMul")
	assert.Contains(t, text, "+\treturn x + x")
	assert.Contains(t, text, "50.0%")
}

func TestRenderScoreTable_Coverage(t *testing.T) {
	score := m.MutationScore{Killed: 3, Survived: 1, CoveredNodes: 8, AllNodes: 10, TimeoutAsKilled: true}

	text := renderScoreTable(score, time.Second)
	assert.Contains(t, text, "75.0%")
	assert.Contains(t, text, "Coverage: 8 of 10 AST nodes (80.0%)")

	assert.NotContains(t, renderScoreTable(m.MutationScore{}, 0), "Coverage")
}

func TestFirstChange(t *testing.T) {
	diff := "--- original/mul.go\n+++ mutant/mul.go\n@@ -3,3 +3,3 @@\n-\treturn x * x\n+\treturn x / x\n"
	assert.Equal(t, "return x / x", firstChange(diff))
	assert.Empty(t, firstChange(""))
}
