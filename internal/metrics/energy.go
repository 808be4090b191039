package metrics

import (
	"math"

	"github.com/san-kum/armsim/internal/dynamo"
)

// Work integrates actuator power Σ|τ·v| over time with the trapezoid rule,
// in joules. Regenerated energy is not credited back.
type Work struct {
	name      string
	total     float64
	lastPower float64
	lastTime  float64
	samples   int
}

func NewWork() *Work {
	return &Work{name: "work"}
}

func (w *Work) Name() string { return w.name }

func (w *Work) Observe(s dynamo.Sample) {
	power := 0.0
	for _, j := range s.State {
		power += math.Abs(j.Torque * j.Velocity)
	}
	if w.samples > 0 {
		w.total += 0.5 * (power + w.lastPower) * (s.Timestamp - w.lastTime)
	}
	w.lastPower = power
	w.lastTime = s.Timestamp
	w.samples++
}

func (w *Work) Value() float64 { return w.total }

func (w *Work) Reset() {
	w.total = 0
	w.lastPower = 0
	w.lastTime = 0
	w.samples = 0
}
