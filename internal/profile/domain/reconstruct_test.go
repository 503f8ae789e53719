package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconstructorCumulativeDeltas(t *testing.T) {
	rec := NewReconstructor(true, NegativeFilter)

	// First reading only seeds state.
	_, _, keep := rec.Apply("", 100)
	assert.False(t, keep)

	v, neg, keep := rec.Apply("", 140)
	require.True(t, keep)
	assert.False(t, neg)
	assert.InDelta(t, 40, v, 1e-9)

	v, _, keep = rec.Apply("", 185)
	require.True(t, keep)
	assert.InDelta(t, 45, v, 1e-9)

	// Decrease reads as a rollover: the new reading becomes the delta.
	v, _, keep = rec.Apply("", 30)
	require.True(t, keep)
	assert.InDelta(t, 30, v, 1e-9)

	v, _, keep = rec.Apply("", 70)
	require.True(t, keep)
	assert.InDelta(t, 40, v, 1e-9)
}

func TestReconstructorCumulativePerMeterState(t *testing.T) {
	rec := NewReconstructor(true, NegativeFilter)

	_, _, keep := rec.Apply("m1", 100)
	assert.False(t, keep)
	_, _, keep = rec.Apply("m2", 500)
	assert.False(t, keep)

	v, _, keep := rec.Apply("m1", 110)
	require.True(t, keep)
	assert.InDelta(t, 10, v, 1e-9)

	v, _, keep = rec.Apply("m2", 525)
	require.True(t, keep)
	assert.InDelta(t, 25, v, 1e-9)
}

func TestReconstructorNegativePolicies(t *testing.T) {
	input := []float64{-5, 10, -3}

	t.Run("filter", func(t *testing.T) {
		rec := NewReconstructor(false, NegativeFilter)
		var kept []float64
		negatives := 0
		for _, in := range input {
			v, neg, keep := rec.Apply("", in)
			if neg {
				negatives++
			}
			if keep {
				kept = append(kept, v)
			}
		}
		assert.Equal(t, []float64{10}, kept)
		assert.Equal(t, 2, negatives)
	})

	t.Run("absolute", func(t *testing.T) {
		rec := NewReconstructor(false, NegativeAbsolute)
		var kept []float64
		for _, in := range input {
			v, _, keep := rec.Apply("", in)
			require.True(t, keep)
			kept = append(kept, v)
		}
		assert.Equal(t, []float64{5, 10, 3}, kept)
	})

	t.Run("keep", func(t *testing.T) {
		rec := NewReconstructor(false, NegativeKeep)
		var kept []float64
		for _, in := range input {
			v, _, keep := rec.Apply("", in)
			require.True(t, keep)
			kept = append(kept, v)
		}
		assert.Equal(t, []float64{-5, 10, -3}, kept)
	})
}

func TestReconstructorDefaultPolicyIsFilter(t *testing.T) {
	rec := NewReconstructor(false, "")
	_, neg, keep := rec.Apply("", -1)
	assert.True(t, neg)
	assert.False(t, keep)
}
