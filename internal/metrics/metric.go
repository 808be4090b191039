// Package metrics scores executed or planned trajectories.
package metrics

import (
	"github.com/san-kum/armsim/internal/dynamo"
)

// Metric accumulates one figure over a stream of samples. Samples are
// expected in time order with torques filled in.
type Metric interface {
	Name() string
	Observe(s dynamo.Sample)
	Value() float64
	Reset()
}

type Dynamics interface {
	InverseDynamics(state dynamo.RobotState) []float64
}

type FrictionModel interface {
	Friction(joint int, velocity float64) float64
}

// FillTorques returns a copy of traj whose samples carry the torque the
// arm needs to follow them, friction included.
func FillTorques(traj dynamo.Trajectory, dyn Dynamics, fric FrictionModel) dynamo.Trajectory {
	out := dynamo.Trajectory{Samples: make([]dynamo.Sample, len(traj.Samples)), Duration: traj.Duration}
	for k, s := range traj.Samples {
		state := s.State.Clone()
		tau := dyn.InverseDynamics(state)
		for i := range state {
			state[i].Torque = tau[i] + fric.Friction(i, state[i].Velocity)
		}
		out.Samples[k] = dynamo.Sample{State: state, Timestamp: s.Timestamp}
	}
	return out
}

// Standard returns the metric set reported for every plan.
func Standard(limits []float64) []Metric {
	return []Metric{
		NewPeakTorqueRatio(limits),
		NewLimitCompliance(limits, 0),
		NewControlEffort(),
		NewPeakVelocity(),
		NewWork(),
	}
}

// Evaluate runs every metric over the samples and returns the values by name.
func Evaluate(traj dynamo.Trajectory, ms ...Metric) map[string]float64 {
	for _, m := range ms {
		m.Reset()
	}
	for _, s := range traj.Samples {
		for _, m := range ms {
			m.Observe(s)
		}
	}
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		out[m.Name()] = m.Value()
	}
	return out
}
