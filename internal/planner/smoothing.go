package planner

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Smooth applies a centered moving average of the given half-width, clipped
// at the array edges, then zeroes values whose magnitude is under deadband.
// It suppresses discretization chatter in a raw acceleration profile.
func Smooth(raw []float64, halfWidth int, deadband float64) []float64 {
	out := make([]float64, len(raw))
	for k := range raw {
		lo := max(0, k-halfWidth)
		hi := min(len(raw)-1, k+halfWidth)
		v := floats.Sum(raw[lo:hi+1]) / float64(hi-lo+1)
		if math.Abs(v) < deadband {
			v = 0
		}
		out[k] = v
	}
	return out
}
