package dynamo

import (
	"fmt"
	"math"
)

// JointState is the kinematic and dynamic state of a single joint.
type JointState struct {
	Angle        float64 `json:"angle"`        // rad
	Velocity     float64 `json:"velocity"`     // rad/s
	Acceleration float64 `json:"acceleration"` // rad/s²
	Torque       float64 `json:"torque"`       // Nm
}

// RobotState holds one JointState per joint in kinematic chain order.
type RobotState []JointState

// FromAngles builds a state at rest from a vector of joint angles.
func FromAngles(angles []float64) RobotState {
	s := make(RobotState, len(angles))
	for i, a := range angles {
		s[i].Angle = a
	}
	return s
}

func (s RobotState) Clone() RobotState {
	c := make(RobotState, len(s))
	copy(c, s)
	return c
}

func (s RobotState) Angles() []float64 {
	out := make([]float64, len(s))
	for i, j := range s {
		out[i] = j.Angle
	}
	return out
}

func (s RobotState) Velocities() []float64 {
	out := make([]float64, len(s))
	for i, j := range s {
		out[i] = j.Velocity
	}
	return out
}

func (s RobotState) Accelerations() []float64 {
	out := make([]float64, len(s))
	for i, j := range s {
		out[i] = j.Acceleration
	}
	return out
}

func (s RobotState) Torques() []float64 {
	out := make([]float64, len(s))
	for i, j := range s {
		out[i] = j.Torque
	}
	return out
}

// AtRest returns a copy with velocity, acceleration and torque cleared.
func (s RobotState) AtRest() RobotState {
	return FromAngles(s.Angles())
}

func (s RobotState) IsValid() bool {
	for _, j := range s {
		for _, v := range [...]float64{j.Angle, j.Velocity, j.Acceleration, j.Torque} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}
	return true
}

// Sample is a robot state stamped with seconds since the start of a move.
type Sample struct {
	State     RobotState `json:"state"`
	Timestamp float64    `json:"timestamp"`
}

// Trajectory is a time-ordered sequence of samples. Samples are never
// mutated after the trajectory is built.
type Trajectory struct {
	Samples  []Sample `json:"samples"`
	Duration float64  `json:"duration"`
}

func (t *Trajectory) Len() int { return len(t.Samples) }

func (t *Trajectory) First() Sample { return t.Samples[0] }

func (t *Trajectory) Last() Sample { return t.Samples[len(t.Samples)-1] }

// At returns the first sample whose timestamp is at or after elapsed, and
// false when elapsed lies beyond the final sample.
func (t *Trajectory) At(elapsed float64) (Sample, bool) {
	for _, s := range t.Samples {
		if s.Timestamp >= elapsed {
			return s, true
		}
	}
	return t.Last(), false
}

// Validate checks the ordering invariants every trajectory must satisfy.
func (t *Trajectory) Validate() error {
	_, err := t.FirstInvalid()
	return err
}

// FirstInvalid returns the index of the first sample that breaks an
// invariant along with the reason. The index is -1 for an empty trajectory
// and for a valid one.
func (t *Trajectory) FirstInvalid() (int, error) {
	if len(t.Samples) == 0 {
		return -1, ErrEmptyTrajectory
	}
	if t.Samples[0].Timestamp != 0 {
		return 0, fmt.Errorf("%w: first timestamp %g", ErrNonMonotonic, t.Samples[0].Timestamp)
	}
	joints := len(t.Samples[0].State)
	for i, s := range t.Samples {
		if len(s.State) != joints {
			return i, fmt.Errorf("%w: sample %d has %d joints, want %d", ErrDimensionMismatch, i, len(s.State), joints)
		}
		if !s.State.IsValid() || math.IsNaN(s.Timestamp) || math.IsInf(s.Timestamp, 0) {
			return i, fmt.Errorf("%w: sample %d", ErrInvalidState, i)
		}
		if i > 0 && s.Timestamp <= t.Samples[i-1].Timestamp {
			return i, fmt.Errorf("%w: sample %d at %g after %g", ErrNonMonotonic, i, s.Timestamp, t.Samples[i-1].Timestamp)
		}
	}
	return -1, nil
}
