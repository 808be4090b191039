// Package playback drives a robot through an endless sequence of planned
// point-to-point moves, one tick at a time.
package playback

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/armsim/internal/dynamo"
	"github.com/san-kum/armsim/internal/planner"
)

type Phase int

const (
	Idle Phase = iota
	Planning
	Moving
	Dwelling
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Planning:
		return "planning"
	case Moving:
		return "moving"
	case Dwelling:
		return "dwelling"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// Planner produces a trajectory between two configurations. It must
// always return a usable trajectory.
type Planner interface {
	Solve(start, end dynamo.RobotState) planner.Result
}

// Dynamics maps a joint state to the torque that realizes it.
type Dynamics interface {
	InverseDynamics(state dynamo.RobotState) []float64
}

type FrictionModel interface {
	Friction(joint int, velocity float64) float64
}

// Frame is what the controller emits on every tick.
type Frame struct {
	Phase   Phase
	State   dynamo.RobotState
	Elapsed time.Duration // since the current move or dwell began
}

// Controller is the playback state machine. It is not safe for concurrent
// use; a single tick loop owns it.
type Controller struct {
	cfg      Config
	planner  Planner
	dyn      Dynamics
	friction FrictionModel
	clock    clock.Clock
	rng      *rand.Rand
	log      *zap.Logger

	phase      Phase
	continuous bool
	current    dynamo.RobotState
	target     dynamo.RobotState
	traj       *dynamo.Trajectory
	kind       planner.Kind
	moveStart  time.Time
	dwellStart time.Time
	moves      int
}

type Option func(*Controller)

func WithClock(c clock.Clock) Option { return func(ctl *Controller) { ctl.clock = c } }

func WithRand(r *rand.Rand) Option { return func(ctl *Controller) { ctl.rng = r } }

func WithLogger(l *zap.Logger) Option { return func(ctl *Controller) { ctl.log = l } }

// New returns an idle controller holding the initial configuration.
func New(p Planner, dyn Dynamics, friction FrictionModel, initial dynamo.RobotState, cfg Config, opts ...Option) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(initial) != len(cfg.SafeIntervals) {
		return nil, fmt.Errorf("%w: %d joints, %d safe intervals",
			dynamo.ErrDimensionMismatch, len(initial), len(cfg.SafeIntervals))
	}

	c := &Controller{
		cfg:      cfg,
		planner:  p,
		dyn:      dyn,
		friction: friction,
		clock:    clock.New(),
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		log:      zap.NewNop(),
		phase:    Idle,
		current:  initial.AtRest(),
	}
	for _, o := range opts {
		o(c)
	}
	c.log = c.log.Named("playback")
	return c, nil
}

func (c *Controller) Phase() Phase { return c.phase }

func (c *Controller) Continuous() bool { return c.continuous }

// Trajectory returns the move in flight or the one just finished while
// dwelling, and nil when idle.
func (c *Controller) Trajectory() *dynamo.Trajectory { return c.traj }

// Target returns the goal of the current move, or nil when idle.
func (c *Controller) Target() dynamo.RobotState { return c.target }

// LastKind reports whether the most recent move was solved or fell back.
func (c *Controller) LastKind() planner.Kind { return c.kind }

// Moves counts the trajectories planned since construction.
func (c *Controller) Moves() int { return c.moves }

// Current returns the last emitted configuration.
func (c *Controller) Current() dynamo.RobotState { return c.current.Clone() }

// SetContinuous toggles autonomous random motion. Turning it off discards
// any move in flight and leaves the arm idle where it stands.
func (c *Controller) SetContinuous(on bool) {
	if on == c.continuous {
		return
	}
	c.continuous = on

	if !on {
		c.traj = nil
		c.target = nil
		c.phase = Idle
		c.current = c.current.AtRest()
		c.log.Info("continuous mode off", zap.Int("moves", c.moves))
		return
	}
	c.startMove()
}

// Tick advances the state machine to the clock's current reading and
// returns the commanded state with torques filled in.
func (c *Controller) Tick() Frame {
	now := c.clock.Now()

	if c.phase == Dwelling && now.Sub(c.dwellStart) >= c.cfg.Dwell {
		c.startMove()
	}

	var f Frame
	switch c.phase {
	case Moving:
		elapsed := now.Sub(c.moveStart)
		sample, ok := c.traj.At(elapsed.Seconds())
		if ok {
			c.current = sample.State.Clone()
			f = Frame{Phase: Moving, State: c.current.Clone(), Elapsed: elapsed}
			break
		}
		c.current = sample.State.AtRest()
		c.phase = Dwelling
		c.dwellStart = now
		f = Frame{Phase: Dwelling, State: c.current.Clone()}
	case Dwelling:
		f = Frame{Phase: Dwelling, State: c.current.AtRest(), Elapsed: now.Sub(c.dwellStart)}
	default:
		f = Frame{Phase: c.phase, State: c.current.AtRest()}
	}

	c.applyTorques(f.State)
	return f
}

func (c *Controller) applyTorques(state dynamo.RobotState) {
	tau := c.dyn.InverseDynamics(state)
	for i := range state {
		state[i].Torque = tau[i] + c.friction.Friction(i, state[i].Velocity)
	}
}

func (c *Controller) startMove() {
	c.phase = Planning
	start := c.current.AtRest()
	c.target = c.sampleTarget(start.Angles())

	res := c.planner.Solve(start, c.target)
	c.traj = &res.Trajectory
	c.kind = res.Kind
	c.moves++

	fields := []zap.Field{
		zap.Int("move", c.moves),
		zap.Stringer("kind", res.Kind),
		zap.Float64("duration", res.Trajectory.Duration),
	}
	if res.Reason != nil {
		fields = append(fields, zap.Error(res.Reason))
	}
	c.log.Info("move planned", fields...)

	c.phase = Moving
	c.moveStart = c.clock.Now()
}

// sampleTarget draws configurations uniformly inside the safe intervals
// until one lies farther than MinDistance from here. The last draw wins
// once attempts run out.
func (c *Controller) sampleTarget(from []float64) dynamo.RobotState {
	angles := make([]float64, len(from))
	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		for i, iv := range c.cfg.SafeIntervals {
			angles[i] = iv.Min + c.rng.Float64()*(iv.Max-iv.Min)
		}
		if dist := floats.Distance(angles, from, 2); dist > c.cfg.MinDistance {
			break
		} else if attempt == c.cfg.MaxAttempts {
			c.log.Debug("no distant target found", zap.Int("attempts", attempt), zap.Float64("distance", dist))
		}
	}
	return dynamo.FromAngles(angles)
}
