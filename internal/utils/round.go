package utils

import "math"

// Round2 rounds to two decimal places. Metrics are kept at full precision
// internally and rounded only at the reporting boundary.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
