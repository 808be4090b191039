package planner

import "github.com/san-kum/armsim/internal/dynamo"

// LinearFallback interpolates joint angles from start to end in
// FallbackSteps evenly timed steps over FallbackDuration seconds. Every
// sample is at rest.
func LinearFallback(start, end dynamo.RobotState) dynamo.Trajectory {
	q0 := start.Angles()
	q1 := end.Angles()

	samples := make([]dynamo.Sample, FallbackSteps+1)
	for i := range samples {
		frac := float64(i) / FallbackSteps
		angles := make([]float64, len(q0))
		for j := range q0 {
			angles[j] = q0[j] + frac*(q1[j]-q0[j])
		}
		samples[i] = dynamo.Sample{
			State:     dynamo.FromAngles(angles),
			Timestamp: frac * FallbackDuration,
		}
	}

	return dynamo.Trajectory{Samples: samples, Duration: FallbackDuration}
}
