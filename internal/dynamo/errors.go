package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for planning and playback.
var (
	// ErrInvalidState indicates a state containing NaN or Inf.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrDimensionMismatch indicates a joint count that disagrees with the robot.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch between state and robot")

	// ErrEmptyTrajectory indicates a trajectory without samples.
	ErrEmptyTrajectory = errors.New("dynamo: trajectory has no samples")

	// ErrNonMonotonic indicates timestamps that do not strictly increase from zero.
	ErrNonMonotonic = errors.New("dynamo: trajectory timestamps not strictly increasing")

	// ErrParameterBounds indicates a parameter value is outside valid range.
	ErrParameterBounds = errors.New("dynamo: parameter out of valid bounds")

	// ErrUnknownJoint indicates a joint index outside the configured robot.
	ErrUnknownJoint = errors.New("dynamo: joint index out of range")
)

// PlanError wraps an internal planner failure. Index is the grid point it
// was detected at, or -1 when it concerns the whole path.
type PlanError struct {
	Stage   string
	Index   int
	Wrapped error
}

func (e *PlanError) Error() string {
	if e.Index < 0 {
		return "plan " + e.Stage + ": " + e.Wrapped.Error()
	}
	return fmt.Sprintf("plan %s at grid point %d: %v", e.Stage, e.Index, e.Wrapped)
}

func (e *PlanError) Unwrap() error {
	return e.Wrapped
}
