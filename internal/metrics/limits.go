package metrics

import (
	"math"

	"github.com/san-kum/armsim/internal/dynamo"
)

// PeakTorqueRatio is max |τ_i| / limit_i over every joint and sample. Values
// above 1 mean a limit was exceeded.
type PeakTorqueRatio struct {
	limits []float64
	peak   float64
}

func NewPeakTorqueRatio(limits []float64) *PeakTorqueRatio {
	return &PeakTorqueRatio{limits: limits}
}

func (p *PeakTorqueRatio) Name() string { return "peak_torque_ratio" }

func (p *PeakTorqueRatio) Observe(s dynamo.Sample) {
	for i, j := range s.State {
		if i < len(p.limits) && p.limits[i] > 0 {
			p.peak = math.Max(p.peak, math.Abs(j.Torque)/p.limits[i])
		}
	}
}

func (p *PeakTorqueRatio) Value() float64 { return p.peak }

func (p *PeakTorqueRatio) Reset() { p.peak = 0 }

// LimitCompliance is the fraction of samples whose torques all stay within
// the limits widened by tolerance.
type LimitCompliance struct {
	name       string
	limits     []float64
	tolerance  float64
	violations int
	samples    int
}

func NewLimitCompliance(limits []float64, tolerance float64) *LimitCompliance {
	return &LimitCompliance{
		name:      "limit_compliance",
		limits:    limits,
		tolerance: tolerance,
	}
}

func (l *LimitCompliance) Name() string {
	return l.name
}

func (l *LimitCompliance) Observe(s dynamo.Sample) {
	l.samples++
	for i, j := range s.State {
		if i < len(l.limits) && math.Abs(j.Torque) > l.limits[i]*(1+l.tolerance) {
			l.violations++
			break
		}
	}
}

func (l *LimitCompliance) Value() float64 {
	if l.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(l.violations)/float64(l.samples)
}

func (l *LimitCompliance) Reset() {
	l.violations = 0
	l.samples = 0
}
