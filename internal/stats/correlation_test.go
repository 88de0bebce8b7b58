package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPearson(t *testing.T) {
	r, p, err := Pearson([]float64{1, 2, 3, 4, 5}, []float64{2, 4, 5, 4, 5})
	require.NoError(t, err)
	assert.InDelta(t, 0.7745967, r, 1e-6)
	assert.InDelta(t, 0.1240, p, 0.002)
}

func TestPearsonPerfect(t *testing.T) {
	r, p, err := Pearson([]float64{1, 2, 3, 4}, []float64{10, 20, 30, 40})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, r, 1e-12)
	assert.InDelta(t, 0.0, p, 1e-9)

	r, _, err = Pearson([]float64{1, 2, 3, 4}, []float64{4, 3, 2, 1})
	require.NoError(t, err)
	assert.InDelta(t, -1.0, r, 1e-12)
}

func TestPearsonUndefined(t *testing.T) {
	_, _, err := Pearson([]float64{1, 2}, []float64{1, 2})
	assert.ErrorIs(t, err, ErrUndefined)
	_, _, err = Pearson([]float64{1, 2, 3}, []float64{1, 2})
	assert.ErrorIs(t, err, ErrUndefined)
	_, _, err = Pearson([]float64{5, 5, 5, 5}, []float64{1, 2, 3, 4})
	assert.ErrorIs(t, err, ErrUndefined)
}

func TestSpearman(t *testing.T) {
	rho, p, err := Spearman([]float64{1, 2, 3, 4, 5}, []float64{5, 6, 7, 8, 7})
	require.NoError(t, err)
	assert.InDelta(t, 0.8207827, rho, 1e-6)
	assert.True(t, p > 0 && p < 1)

	rho, _, err = Spearman([]float64{1, 2, 3, 4, 5}, []float64{1, 4, 9, 16, 25})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, rho, 1e-12, "monotonic but non-linear is still perfect rank correlation")
}

func TestRanks(t *testing.T) {
	assert.Equal(t, []float64{1, 2, 3.5, 5, 3.5}, Ranks([]float64{5, 6, 7, 8, 7}))
	assert.Equal(t, []float64{2, 2, 2}, Ranks([]float64{1, 1, 1}))
	assert.Empty(t, Ranks(nil))
}

func TestStudentTTwoSided(t *testing.T) {
	assert.InDelta(t, 0.05, StudentTTwoSided(2.228, 10), 1e-3)
	assert.InDelta(t, 0.05, StudentTTwoSided(-2.228, 10), 1e-3)
	assert.InDelta(t, 1.0, StudentTTwoSided(0, 10), 1e-12)
	assert.Equal(t, 0.0, StudentTTwoSided(math.Inf(1), 5))
}

func TestCorrelationPValue(t *testing.T) {
	// 0.6319 is the two-sided 5% critical value of r for 10 pairs.
	assert.InDelta(t, 0.05, correlationPValue(0.6319, 10), 1e-3)
	assert.InDelta(t, 1.0, correlationPValue(0, 10), 1e-12)
	assert.Equal(t, 0.0, correlationPValue(-1, 10))
}
