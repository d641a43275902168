package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcile(t *testing.T) {
	t.Run("as expected", func(t *testing.T) {
		v := Reconcile(8388608, []Candidate{{SOURCE_PRIMARY_VOLUME_DESCRIPTOR, 8388608}})
		assert.Equal(t, int64(8388608), v.Expected)
		assert.Equal(t, int64(0), v.Difference)
		assert.Equal(t, 0.0, v.DifferenceSectors)
		assert.True(t, v.AsExpected)
		assert.False(t, v.SmallerThanExpected)
		assert.False(t, v.LargerThanExpected)
		assert.False(t, v.Indeterminate)
	})

	t.Run("truncated", func(t *testing.T) {
		v := Reconcile(8388608-1024, []Candidate{{SOURCE_PRIMARY_VOLUME_DESCRIPTOR, 8388608}})
		assert.Equal(t, int64(-1024), v.Difference)
		assert.Equal(t, -0.5, v.DifferenceSectors)
		assert.False(t, v.AsExpected)
		assert.True(t, v.SmallerThanExpected)
	})

	t.Run("padded", func(t *testing.T) {
		v := Reconcile(8388608+4096, []Candidate{{SOURCE_PRIMARY_VOLUME_DESCRIPTOR, 8388608}})
		assert.Equal(t, 2.0, v.DifferenceSectors)
		assert.False(t, v.AsExpected)
		assert.False(t, v.SmallerThanExpected)
		assert.True(t, v.LargerThanExpected)
	})

	t.Run("largest candidate wins", func(t *testing.T) {
		v := Reconcile(1000, []Candidate{
			{SOURCE_PRIMARY_VOLUME_DESCRIPTOR, 600},
			{SOURCE_UDF, 1000},
			{SOURCE_ZERO_BLOCK, 0},
			{SOURCE_MASTER_DIRECTORY_BLOCK, -20},
		})
		assert.Equal(t, int64(1000), v.Expected)
		assert.True(t, v.AsExpected)
		require.Len(t, v.Candidates, 2)
	})

	t.Run("indeterminate", func(t *testing.T) {
		for _, candidates := range [][]Candidate{nil, {{SOURCE_HFS_PLUS_VOLUME_HEADER, 0}}} {
			v := Reconcile(0, candidates)
			assert.Equal(t, int64(0), v.Expected)
			assert.True(t, v.Indeterminate)
			assert.False(t, v.AsExpected, "zero expected size is never as expected")
		}
	})
}

func TestExpectedMonotonic(t *testing.T) {
	base := []Candidate{
		{SOURCE_PRIMARY_VOLUME_DESCRIPTOR, 4096},
		{SOURCE_ZERO_BLOCK, 8192},
		{SOURCE_UDF, 2048},
	}
	previous := Expected(base)
	for i := range base {
		for _, step := range []int64{1, 2048, 10000} {
			grown := append([]Candidate{}, base...)
			grown[i].Size += step
			got := Expected(grown)
			assert.GreaterOrEqual(t, got, previous)
		}
	}
}
