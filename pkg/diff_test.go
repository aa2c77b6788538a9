package pkg

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnifiedDiff(t *testing.T) {
	original := []byte("package mul\n\nfunc Mul(x int) int {\n\treturn x * x\n}\n")
	mutated := []byte("package mul\n\nfunc Mul(x int) int {\n\treturn x / x\n}\n")

	diff := UnifiedDiff("mul.go", original, mutated)

	assert.Contains(t, diff, "--- original/mul.go")
	assert.Contains(t, diff, "+++ mutant/mul.go")
	assert.Equal(t, []string{"-\treturn x * x", "+\treturn x / x"}, ChangedLines(diff))
}

func TestUnifiedDiff_Equal(t *testing.T) {
	src := []byte("package p\n")

	assert.Empty(t, UnifiedDiff("p.go", src, src))
	assert.Empty(t, ChangedLines(""))
}
