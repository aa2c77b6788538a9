package mutagens

import (
	"go/ast"
	"go/importer"
	"go/parser"
	"go/token"
	"go/types"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const loopSource = `func sum(s []int) int {
	total := 0
	for _, v := range s {
		total += v
	}
	return total
}
`

func TestZeroIterationLoop(t *testing.T) {
	mutants := collect(t, ZeroIterationLoop(), parse(t, loopSource), Options{})
	require.Len(t, mutants, 1)

	assert.Contains(t, mutants[0].src, "for _, v := range s {\n\t\tbreak\n\t\ttotal += v\n")

	resigned := collect(t, ZeroIterationLoop(), parse(t, "func f() {\n\tfor {\n\t\tbreak\n\t}\n}\n"), Options{})
	assert.Empty(t, resigned)
}

// typeCheck reports the first type error of a rendered mutant.
func typeCheck(src string) error {
	fset := token.NewFileSet()

	file, err := parser.ParseFile(fset, "sample.go", src, parser.SkipObjectResolution)
	if err != nil {
		return err
	}

	conf := types.Config{Importer: importer.ForCompiler(fset, "source", nil)}
	_, err = conf.Check("sample", fset, []*ast.File{file}, nil)

	return err
}

const bodyOnlySource = `import "strings"

func count(s []string) int {
	n := 0
	prefix := "x"
outer:
	for i := 0; i < len(s); i++ {
		for _, r := range s[i] {
			if r == ' ' {
				continue outer
			}
		}
		if strings.HasPrefix(s[i], prefix) {
			n++
		}
	}
	return n
}

func serve(next func() bool) {
	for {
		next()
	}
}

func drain(next func() (int, bool)) int {
	total := 0
	for {
		v, ok := next()
		if !ok {
			break
		}
		total += v
	}
	return total
}
`

func TestLoopMutants_TypeCheck(t *testing.T) {
	for _, op := range []*Operator{ZeroIterationLoop(), OneIterationLoop()} {
		t.Run(op.Name, func(t *testing.T) {
			for _, src := range []string{loopSource, bodyOnlySource} {
				mutants := collect(t, op, parse(t, src), Options{})
				require.NotEmpty(t, mutants)

				for _, mt := range mutants {
					assert.NoError(t, typeCheck(mt.src), mt.src)
				}
			}
		})
	}
}

func TestLoopMutants_ResignOnTerminatingLoop(t *testing.T) {
	src := `func next(ch chan int) int {
	for {
		if v, ok := <-ch; ok {
			return v
		}
	}
}

func wait(ch chan int) int {
	for {
		select {
		case <-ch:
			break
		default:
			return 0
		}
	}
}
`
	require.NoError(t, typeCheck("package sample\n\n"+src))

	assert.Empty(t, collect(t, ZeroIterationLoop(), parse(t, src), Options{}))
	assert.Empty(t, collect(t, OneIterationLoop(), parse(t, src), Options{}))
}

func TestOneIterationLoop(t *testing.T) {
	mutants := collect(t, OneIterationLoop(), parse(t, loopSource), Options{})
	require.Len(t, mutants, 1)

	assert.Contains(t, mutants[0].src, "total += v\n\t\tbreak\n")

	resigned := collect(t, OneIterationLoop(), parse(t, "func f(n int) {\n\tfor n > 0 {\n\t\tn--\n\t\tbreak\n\t}\n}\n"), Options{})
	assert.Empty(t, resigned)
}

func TestReverseIterationLoop(t *testing.T) {
	t.Run("adds import", func(t *testing.T) {
		mutants := collect(t, ReverseIterationLoop(), parse(t, loopSource), Options{})
		require.Len(t, mutants, 1)

		assert.Contains(t, mutants[0].src, `import "slices"`)
		assert.Contains(t, mutants[0].src, "for _, v := range slices.Backward(s) {")
	})

	t.Run("reuses named import", func(t *testing.T) {
		src := "import sl \"slices\"\n\nvar _ = sl.Max[[]int]\n\n" + loopSource
		mutants := collect(t, ReverseIterationLoop(), parse(t, src), Options{})
		require.Len(t, mutants, 1)

		assert.Contains(t, mutants[0].src, "range sl.Backward(s)")
	})

	t.Run("already reversed", func(t *testing.T) {
		src := "import \"slices\"\n\nfunc f(s []int) {\n\tfor range slices.Backward(s) {\n\t}\n}\n"
		assert.Empty(t, collect(t, ReverseIterationLoop(), parse(t, src), Options{}))
	})

	t.Run("map range with types", func(t *testing.T) {
		src := "func f(m map[string]int) int {\n\tn := 0\n\tfor range m {\n\t\tn++\n\t}\n\treturn n\n}\n"
		assert.Len(t, collect(t, ReverseIterationLoop(), parse(t, src), Options{}), 1)
		assert.Empty(t, collect(t, ReverseIterationLoop(), typed(t, src), Options{}))
	})
}
