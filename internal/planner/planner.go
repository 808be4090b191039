// Package planner computes time-optimal, torque-feasible trajectories along
// a straight joint-space path (TOPP-RA), with a linear fallback that makes
// planning total.
package planner

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/armsim/internal/dynamo"
)

var (
	// ErrShortPath marks a move too short to parameterize.
	ErrShortPath = errors.New("planner: path shorter than minimum length")

	// ErrPanic marks a recovered internal failure.
	ErrPanic = errors.New("planner: internal failure")
)

// Dynamics is the torque model the planner projects onto the path.
type Dynamics interface {
	Joints() int
	GravityTorques(state dynamo.RobotState) []float64
	InverseDynamics(state dynamo.RobotState) []float64
}

// FrictionModel estimates friction torque from joint velocity.
type FrictionModel interface {
	Friction(joint int, velocity float64) float64
}

type Kind int

const (
	Solved Kind = iota
	Fallback
)

func (k Kind) String() string {
	switch k {
	case Solved:
		return "solved"
	case Fallback:
		return "fallback"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Result is the outcome of one planning call. Curves is nil when the
// fallback was taken before the solver produced them.
type Result struct {
	Kind       Kind
	Trajectory dynamo.Trajectory
	Reason     error
	Curves     *Curves
}

// Curves is the scratch state of one solve, indexed by grid point
// (segments for the acceleration profiles).
type Curves struct {
	Start []float64
	Delta []float64

	// A, B and C linearize torque along the path:
	// τ(s) ≈ A(s)·s̈ + B(s)·ṡ² + C(s)
	A, B, C [][]float64

	VelocityLimit []float64
	Beta          []float64
	PathVelocity  []float64
	RawAccel      []float64
	SmoothAccel   []float64
}

// Planner is safe for concurrent use; every call owns its scratch state.
type Planner struct {
	dyn      Dynamics
	friction FrictionModel
	limits   []float64
	opts     Options
	log      *zap.Logger
}

func New(dyn Dynamics, friction FrictionModel, torqueLimits []float64, opts Options) *Planner {
	opts = opts.withDefaults()
	return &Planner{
		dyn:      dyn,
		friction: friction,
		limits:   append([]float64(nil), torqueLimits...),
		opts:     opts,
		log:      opts.Logger.Named("planner"),
	}
}

// PlanTrajectory plans with default options.
func PlanTrajectory(start, end dynamo.RobotState, dyn Dynamics, friction FrictionModel, torqueLimits []float64) dynamo.Trajectory {
	return New(dyn, friction, torqueLimits, DefaultOptions()).Plan(start, end)
}

func (p *Planner) Options() Options { return p.opts }

// Plan always returns a valid trajectory: the solved profile, or the linear
// fallback.
func (p *Planner) Plan(start, end dynamo.RobotState) dynamo.Trajectory {
	return p.Solve(start, end).Trajectory
}

// Solve plans the move and reports which path produced the trajectory.
func (p *Planner) Solve(start, end dynamo.RobotState) (res Result) {
	if len(end) != len(start) {
		// nothing sensible to interpolate toward; hold the start
		return p.fallback(start, start, fmt.Errorf("%w: start has %d joints, end has %d",
			dynamo.ErrDimensionMismatch, len(start), len(end)))
	}

	defer func() {
		if r := recover(); r != nil {
			res = p.fallback(start, end, fmt.Errorf("%w: %v", ErrPanic, r))
		}
	}()

	if err := p.checkDimensions(len(start)); err != nil {
		return p.fallback(start, end, err)
	}

	q0 := start.Angles()
	delta := make([]float64, len(q0))
	floats.SubTo(delta, end.Angles(), q0)
	if dist := floats.Norm(delta, 2); dist < MinPathLength {
		return p.fallback(start, end, fmt.Errorf("%w: %g rad", ErrShortPath, dist))
	}

	c := p.project(q0, delta)
	c.VelocityLimit = p.velocityLimits(c)
	c.Beta = p.backwardPass(c)
	c.PathVelocity, c.RawAccel = p.forwardPass(c)
	c.SmoothAccel = Smooth(c.RawAccel, p.opts.SmoothingHalfWidth, p.opts.Deadband)

	traj := integrate(q0, delta, c.SmoothAccel)
	if idx, err := traj.FirstInvalid(); err != nil {
		res = p.fallback(start, end, &dynamo.PlanError{Stage: "integrate", Index: idx, Wrapped: err})
		res.Curves = c
		return res
	}

	p.log.Debug("trajectory solved",
		zap.Int("grid_points", p.opts.GridPoints),
		zap.Int("samples", traj.Len()),
		zap.Float64("duration", traj.Duration))

	return Result{Kind: Solved, Trajectory: traj, Curves: c}
}

func (p *Planner) checkDimensions(joints int) error {
	if p.dyn.Joints() != joints {
		return fmt.Errorf("%w: robot has %d joints, state has %d", dynamo.ErrDimensionMismatch, p.dyn.Joints(), joints)
	}
	if len(p.limits) != joints {
		return fmt.Errorf("%w: %d torque limits for %d joints", dynamo.ErrDimensionMismatch, len(p.limits), joints)
	}
	return nil
}

func (p *Planner) fallback(start, end dynamo.RobotState, reason error) Result {
	if errors.Is(reason, ErrShortPath) {
		p.log.Debug("linear fallback", zap.Error(reason))
	} else {
		p.log.Warn("linear fallback", zap.Error(reason))
	}
	return Result{Kind: Fallback, Trajectory: LinearFallback(start, end), Reason: reason}
}
