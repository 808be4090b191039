package analysis

import "math"

// ChatterReport summarizes high-frequency content in an acceleration profile.
type ChatterReport struct {
	// SignChanges counts flips between consecutive nonzero values.
	SignChanges int
	// HighBandRatio is the share of non-DC spectral energy in the upper
	// half of the spectrum.
	HighBandRatio float64
	DominantBin   int
	Peak          float64
}

func Chatter(accel []float64) ChatterReport {
	r := ChatterReport{}

	prev := 0.0
	for _, a := range accel {
		r.Peak = math.Max(r.Peak, math.Abs(a))
		if a == 0 {
			continue
		}
		if prev != 0 && math.Signbit(a) != math.Signbit(prev) {
			r.SignChanges++
		}
		prev = a
	}

	ps := PowerSpectrum(accel)
	if len(ps) < 2 {
		return r
	}
	r.DominantBin = DominantBin(ps)

	var low, high float64
	half := len(ps) / 2
	for i := 1; i < len(ps); i++ {
		e := ps[i] * ps[i]
		if i >= half {
			high += e
		} else {
			low += e
		}
	}
	if total := low + high; total > 0 {
		r.HighBandRatio = high / total
	}
	return r
}
