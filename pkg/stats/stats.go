// Package stats provides statistical utility functions for analyzers.
package stats

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary holds central-tendency and spread figures for a sample.
type Summary struct {
	Count  int
	Mean   float64
	Median float64
	Min    float64
	Max    float64
	P90    float64
}

// Summarize computes a Summary of values. It returns false for an empty
// sample instead of reporting zeros. values is not modified.
func Summarize(values []float64) (Summary, bool) {
	if len(values) == 0 {
		return Summary{}, false
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	return Summary{
		Count:  len(sorted),
		Mean:   stat.Mean(sorted, nil),
		Median: Median(sorted),
		Min:    floats.Min(sorted),
		Max:    floats.Max(sorted),
		P90:    Percentile(sorted, 90),
	}, true
}

// Median returns the middle value of a sorted slice, averaging the two
// middle values when the length is even. Returns 0 if the slice is empty.
func Median(sorted []float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// Percentile calculates the p-th percentile of a sorted slice.
// The slice must already be sorted in ascending order.
// Returns 0 if the slice is empty.
func Percentile(sorted []float64, p int) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := (p * len(sorted)) / 100
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// Ratio returns num/den as a percentage, or false when den is zero.
func Ratio(num, den int) (float64, bool) {
	if den == 0 {
		return 0, false
	}
	return float64(num) / float64(den) * 100, true
}
