// Package formulas holds the numeric building blocks used by the performance metrics.
package formulas

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Mean calculates the arithmetic mean of a slice of float64 values
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.Mean(data, nil)
}

// StdDev calculates the sample standard deviation (n-1 denominator).
// Returns 0 for fewer than two values.
func StdDev(data []float64) float64 {
	if len(data) < 2 {
		return 0
	}
	return stat.StdDev(data, nil)
}

// PopStdDev calculates the population standard deviation (n denominator).
func PopStdDev(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.PopStdDev(data, nil)
}

// DownsideDeviation is the root mean square of the values that fall below target,
// measured against target. Values at or above target do not contribute.
// Returns nil when no value falls below target.
func DownsideDeviation(data []float64, target float64) *float64 {
	var sumSquares float64
	count := 0
	for _, v := range data {
		if v < target {
			d := v - target
			sumSquares += d * d
			count++
		}
	}
	if count == 0 {
		return nil
	}

	dev := math.Sqrt(sumSquares / float64(count))
	return &dev
}

// RatioOrZero divides numerator by denominator, returning 0 instead of NaN or Inf
// when the denominator is zero or not finite.
func RatioOrZero(numerator, denominator float64) float64 {
	if denominator == 0 || math.IsNaN(denominator) || math.IsInf(denominator, 0) {
		return 0
	}
	r := numerator / denominator
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	return r
}
