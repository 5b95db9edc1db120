// Package calc implements the physically-motivated metrics reported alongside
// hazard risk scores. Every function is pure and total: each result is clamped
// to its documented range and a NaN result resolves to the lower bound.
package calc

import "math"

// Clamp bounds v to [lo, hi]. NaN maps to lo.
func Clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}

// Clip100 bounds a sub-score to [0, 100].
func Clip100(v float64) float64 {
	return Clamp(v, 0, 100)
}
