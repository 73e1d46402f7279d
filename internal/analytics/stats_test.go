package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistribution(t *testing.T) {
	stats := Distribution([]float64{0.8, 0.9, 1.0})

	assert.InDelta(t, 0.8, stats.Min, 1e-9)
	assert.InDelta(t, 1.0, stats.Max, 1e-9)
	assert.InDelta(t, 0.9, stats.Avg, 1e-9)
	assert.InDelta(t, 0.0816496580927726, stats.StdDev, 1e-9)
}

func TestDistributionEmpty(t *testing.T) {
	assert.Equal(t, DistStats{}, Distribution(nil))
}

func TestDistributionSingleValue(t *testing.T) {
	stats := Distribution([]float64{0.5})
	assert.Equal(t, 0.5, stats.Min)
	assert.Equal(t, 0.5, stats.Max)
	assert.Equal(t, 0.5, stats.Avg)
	assert.Zero(t, stats.StdDev)
}

func TestPearsonCorrelation(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5}

	// Perfect positive and negative correlation.
	assert.InDelta(t, 1.0, PearsonCorrelation(x, []float64{2, 4, 6, 8, 10}), 1e-9)
	assert.InDelta(t, -1.0, PearsonCorrelation(x, []float64{10, 8, 6, 4, 2}), 1e-9)
}

func TestPearsonCorrelationDegenerate(t *testing.T) {
	// Too few points.
	assert.Zero(t, PearsonCorrelation([]float64{1, 2}, []float64{1, 2}))

	// Mismatched lengths.
	assert.Zero(t, PearsonCorrelation([]float64{1, 2, 3}, []float64{1, 2}))

	// Constant series has no variance.
	assert.Zero(t, PearsonCorrelation([]float64{1, 2, 3}, []float64{5, 5, 5}))
}
