package mutagens

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAll(t *testing.T) {
	ops := All()
	require.Len(t, ops, 21)

	seen := make(map[string]bool)
	for i, op := range ops {
		assert.Len(t, op.Name, 3)
		assert.NotEmpty(t, op.Long)
		assert.False(t, seen[op.Name], "duplicate code %s", op.Name)
		seen[op.Name] = true

		if i > 0 {
			assert.Less(t, ops[i-1].Name, op.Name)
		}
	}
}

func TestByName(t *testing.T) {
	ops, err := ByName("ror", " AOR", "ROR")
	require.NoError(t, err)
	require.Len(t, ops, 2)
	assert.Equal(t, "AOR", ops[0].Name)
	assert.Equal(t, "ROR", ops[1].Name)

	all, err := ByName()
	require.NoError(t, err)
	assert.Len(t, all, len(All()))

	_, err = ByName("AOR", "XYZ")
	require.ErrorIs(t, err, ErrUnknownOperator)
	assert.Contains(t, err.Error(), "XYZ")
}
