// Package mathutil provides generic math helper functions.
package mathutil

import "cmp"

// Min calculates the minimum of two ordered values.
func Min[T cmp.Ordered](a, b T) T {
	if a < b {
		return a
	}

	return b
}

// Max calculates the maximum of two ordered values.
func Max[T cmp.Ordered](a, b T) T {
	if a < b {
		return b
	}

	return a
}

// Mean calculates the arithmetic mean of values.
// An empty slice yields 0.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	var sum float64
	for _, v := range values {
		sum += v
	}

	return sum / float64(len(values))
}
