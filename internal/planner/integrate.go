package planner

import (
	"math"

	"github.com/san-kum/armsim/internal/dynamo"
)

// integrate turns a path acceleration profile into time-stamped joint
// samples. The path end is pinned to rest.
func integrate(q0, delta, accel []float64) dynamo.Trajectory {
	n := len(accel)
	ds := 1 / float64(n)

	samples := make([]dynamo.Sample, 0, n+1)
	samples = append(samples, dynamo.Sample{State: dynamo.FromAngles(q0), Timestamp: 0})

	sd, t := 0.0, 0.0
	for k := 0; k < n; k++ {
		next := math.Sqrt(math.Max(sd*sd+2*accel[k]*ds, 0))
		sdd := 0.0
		if k+1 < n {
			sdd = accel[k+1]
		} else {
			next = 0
		}

		dt := stallStep
		if avg := (sd + next) / 2; avg > minAverageVelocity {
			dt = ds / avg
		}
		t += math.Max(dt, minStep)

		s := float64(k+1) / float64(n)
		state := make(dynamo.RobotState, len(q0))
		for i := range state {
			state[i] = dynamo.JointState{
				Angle:        q0[i] + s*delta[i],
				Velocity:     next * delta[i],
				Acceleration: sdd * delta[i],
			}
		}
		samples = append(samples, dynamo.Sample{State: state, Timestamp: t})
		sd = next
	}

	return dynamo.Trajectory{Samples: samples, Duration: t}
}
