package config

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"os"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/armsim/internal/dynamo"
	"github.com/san-kum/armsim/internal/friction"
	"github.com/san-kum/armsim/internal/physics"
	"github.com/san-kum/armsim/internal/planner"
	"github.com/san-kum/armsim/internal/playback"
)

const (
	DefaultTickRate     = 60.0 // Hz
	DefaultGravity      = 9.81
	DefaultDrag         = 0.05
	DefaultBaseGyration = 0.30
	DefaultDwell        = 0.5 // s
)

var ErrInvalid = errors.New("invalid config")

type Config struct {
	Name     string         `yaml:"name"`
	Seed     int64          `yaml:"seed"`
	TickRate float64        `yaml:"tick_rate"`
	Start    []float64      `yaml:"start"`
	Goal     []float64      `yaml:"goal"`
	Arm      ArmConfig      `yaml:"arm"`
	Planner  PlannerConfig  `yaml:"planner"`
	Playback PlaybackConfig `yaml:"playback"`
}

type ArmConfig struct {
	Gravity      float64       `yaml:"gravity"`
	Drag         float64       `yaml:"drag"`
	BaseGyration float64       `yaml:"base_gyration"`
	Joints       []JointConfig `yaml:"joints"`
}

// JointConfig gathers everything known about one joint: link dynamics,
// actuator limit, safe range and friction.
type JointConfig struct {
	Name         string                `yaml:"name"`
	Mass         float64               `yaml:"mass"`
	Length       float64               `yaml:"length"`
	COMOffset    float64               `yaml:"com_offset"`
	Coupling     float64               `yaml:"coupling"`
	GravityLever bool                  `yaml:"gravity_lever"`
	TorqueLimit  float64               `yaml:"torque_limit"`
	Safe         playback.Interval     `yaml:"safe"`
	Friction     friction.Coefficients `yaml:"friction"`
}

type PlannerConfig struct {
	GridPoints         int     `yaml:"grid_points"`
	SmoothingHalfWidth int     `yaml:"smoothing_half_width"`
	Deadband           float64 `yaml:"deadband"`
}

type PlaybackConfig struct {
	MinDistance float64 `yaml:"min_distance"`
	MaxAttempts int     `yaml:"max_attempts"`
	Dwell       float64 `yaml:"dwell"` // s
}

func DefaultConfig() *Config {
	params := physics.ReferenceParams()
	limits := physics.ReferenceTorqueLimits()
	safe := playback.ReferenceIntervals()
	coeffs := friction.ReferenceCoefficients()

	joints := make([]JointConfig, len(params.Joints))
	for i, j := range params.Joints {
		joints[i] = JointConfig{
			Name:         j.Name,
			Mass:         j.Mass,
			Length:       j.Length,
			COMOffset:    j.COMOffset,
			Coupling:     j.Coupling,
			GravityLever: j.GravityLever,
			TorqueLimit:  limits[i],
			Safe:         safe[i],
			Friction:     coeffs[i],
		}
	}

	return &Config{
		Name:     "reference",
		Seed:     1,
		TickRate: DefaultTickRate,
		Start:    make([]float64, len(joints)),
		Goal:     []float64{1.5708, 0, 0, 0, 0, 0},
		Arm: ArmConfig{
			Gravity:      DefaultGravity,
			Drag:         DefaultDrag,
			BaseGyration: DefaultBaseGyration,
			Joints:       joints,
		},
		Planner: PlannerConfig{
			GridPoints:         planner.DefaultGridPoints,
			SmoothingHalfWidth: planner.DefaultSmoothingHalfWidth,
			Deadband:           planner.DefaultDeadband,
		},
		Playback: PlaybackConfig{
			MinDistance: playback.DefaultMinDistance,
			MaxAttempts: playback.DefaultMaxAttempts,
			Dwell:       DefaultDwell,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.Start = append([]float64(nil), c.Start...)
	out.Goal = append([]float64(nil), c.Goal...)
	out.Arm.Joints = append([]JointConfig(nil), c.Arm.Joints...)
	return &out
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var err error
	bad := func(format string, args ...any) {
		err = multierr.Append(err, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	n := len(c.Arm.Joints)
	if n == 0 {
		bad("arm has no joints")
	}
	if len(c.Start) != n {
		bad("start has %d angles for %d joints", len(c.Start), n)
	}
	if len(c.Goal) != n {
		bad("goal has %d angles for %d joints", len(c.Goal), n)
	}
	if c.TickRate <= 0 {
		bad("tick rate %g", c.TickRate)
	}
	if c.Arm.Gravity < 0 || c.Arm.Drag < 0 || c.Arm.BaseGyration <= 0 {
		bad("arm constants must be non-negative with a positive base gyration")
	}

	for i, j := range c.Arm.Joints {
		if j.Mass <= 0 || j.Length <= 0 || j.COMOffset < 0 || j.Coupling < 0 {
			bad("joint %d (%s): link parameters out of range", i, j.Name)
		}
		if j.TorqueLimit <= 0 {
			bad("joint %d (%s): torque limit %g", i, j.Name, j.TorqueLimit)
		}
		if j.Safe.Min > j.Safe.Max {
			bad("joint %d (%s): empty safe interval", i, j.Name)
		}
		if j.Friction.VelocityScale <= 0 || j.Friction.Coulomb < 0 || j.Friction.Viscous < 0 {
			bad("joint %d (%s): friction coefficients out of range", i, j.Name)
		}
	}

	if c.Planner.GridPoints < 2 {
		bad("grid points %d", c.Planner.GridPoints)
	}
	if c.Planner.SmoothingHalfWidth < 0 || c.Planner.Deadband < 0 {
		bad("smoothing parameters must be non-negative")
	}
	if c.Playback.MaxAttempts < 1 || c.Playback.MinDistance < 0 || c.Playback.Dwell < 0 {
		bad("playback parameters out of range")
	}
	for _, pose := range []struct {
		name   string
		angles []float64
	}{{"start", c.Start}, {"goal", c.Goal}} {
		for i, a := range pose.angles {
			if math.IsNaN(a) || math.IsInf(a, 0) {
				bad("%s angle %d is not finite", pose.name, i)
			}
		}
	}
	return err
}

func (c *Config) PhysicsParams() physics.Params {
	p := physics.Params{
		Gravity:      c.Arm.Gravity,
		Drag:         c.Arm.Drag,
		BaseGyration: c.Arm.BaseGyration,
		Joints:       make([]physics.JointParams, len(c.Arm.Joints)),
	}
	for i, j := range c.Arm.Joints {
		p.Joints[i] = physics.JointParams{
			Name:         j.Name,
			Mass:         j.Mass,
			Length:       j.Length,
			COMOffset:    j.COMOffset,
			Coupling:     j.Coupling,
			GravityLever: j.GravityLever,
		}
	}
	return p
}

func (c *Config) TorqueLimits() []float64 {
	out := make([]float64, len(c.Arm.Joints))
	for i, j := range c.Arm.Joints {
		out[i] = j.TorqueLimit
	}
	return out
}

func (c *Config) FrictionCoefficients() []friction.Coefficients {
	out := make([]friction.Coefficients, len(c.Arm.Joints))
	for i, j := range c.Arm.Joints {
		out[i] = j.Friction
	}
	return out
}

func (c *Config) PlannerOptions(log *zap.Logger) planner.Options {
	return planner.Options{
		GridPoints:         c.Planner.GridPoints,
		SmoothingHalfWidth: c.Planner.SmoothingHalfWidth,
		Deadband:           c.Planner.Deadband,
		Logger:             log,
	}
}

func (c *Config) PlaybackSettings() playback.Config {
	safe := make([]playback.Interval, len(c.Arm.Joints))
	for i, j := range c.Arm.Joints {
		safe[i] = j.Safe
	}
	return playback.Config{
		SafeIntervals: safe,
		MinDistance:   c.Playback.MinDistance,
		MaxAttempts:   c.Playback.MaxAttempts,
		Dwell:         time.Duration(c.Playback.Dwell * float64(time.Second)),
	}
}

func (c *Config) StartState() dynamo.RobotState { return dynamo.FromAngles(c.Start) }

func (c *Config) GoalState() dynamo.RobotState { return dynamo.FromAngles(c.Goal) }

// TickInterval is the playback period implied by TickRate.
func (c *Config) TickInterval() time.Duration {
	return time.Duration(float64(time.Second) / c.TickRate)
}

// System is the wired set of core components a config describes.
type System struct {
	Arm      *physics.Arm
	Friction *friction.Model
	Planner  *planner.Planner
	Limits   []float64
}

func (c *Config) Build(log *zap.Logger) (*System, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	fm, err := friction.NewFromCoefficients(c.FrictionCoefficients())
	if err != nil {
		return nil, fmt.Errorf("friction: %w", err)
	}
	arm := physics.NewArm(c.PhysicsParams())
	limits := c.TorqueLimits()
	return &System{
		Arm:      arm,
		Friction: fm,
		Planner:  planner.New(arm, fm, limits, c.PlannerOptions(log)),
		Limits:   limits,
	}, nil
}

// NewController builds a playback controller starting at the configured
// start pose. Its target sampler is seeded from the config unless opts
// override it.
func (s *System) NewController(c *Config, opts ...playback.Option) (*playback.Controller, error) {
	opts = append([]playback.Option{playback.WithRand(rand.New(rand.NewSource(c.Seed)))}, opts...)
	return playback.New(s.Planner, s.Arm, s.Friction, c.StartState(), c.PlaybackSettings(), opts...)
}
