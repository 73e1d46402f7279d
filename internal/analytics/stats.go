package analytics

import (
	"math"
)

// DistStats summarizes the spread of a rate across groups.
type DistStats struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Avg    float64 `json:"avg"`
	StdDev float64 `json:"std_dev"`
}

// Distribution computes min/max/mean/population-stddev over values.
// Empty input yields the zero DistStats.
func Distribution(values []float64) DistStats {
	if len(values) == 0 {
		return DistStats{}
	}

	min, max, sum := values[0], values[0], 0.0
	for _, v := range values {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
		sum += v
	}
	mean := sum / float64(len(values))

	sumSquares := 0.0
	for _, v := range values {
		sumSquares += (v - mean) * (v - mean)
	}
	stdDev := math.Sqrt(sumSquares / float64(len(values)))

	return DistStats{Min: min, Max: max, Avg: mean, StdDev: stdDev}
}

// PearsonCorrelation computes the correlation coefficient between two aligned
// series. Mismatched lengths, fewer than 3 points, or zero variance on either
// side yield 0.
func PearsonCorrelation(x, y []float64) float64 {
	if len(x) != len(y) || len(x) < 3 {
		return 0
	}

	meanX, meanY := 0.0, 0.0
	for i := range x {
		meanX += x[i]
		meanY += y[i]
	}
	meanX /= float64(len(x))
	meanY /= float64(len(y))

	numerator := 0.0
	denomX, denomY := 0.0, 0.0
	for i := range x {
		dx := x[i] - meanX
		dy := y[i] - meanY
		numerator += dx * dy
		denomX += dx * dx
		denomY += dy * dy
	}

	if denomX == 0 || denomY == 0 {
		return 0
	}
	return numerator / (math.Sqrt(denomX) * math.Sqrt(denomY))
}
