package planner

import "go.uber.org/zap"

const (
	DefaultGridPoints         = 200
	DefaultSmoothingHalfWidth = 10
	DefaultDeadband           = 0.5 // rad/s²

	// MinPathLength is the joint-space distance below which a move is
	// treated as degenerate.
	MinPathLength = 1e-3

	// FallbackSteps and FallbackDuration shape the linear fallback.
	FallbackSteps    = 60
	FallbackDuration = 3.0

	// coefficients with smaller magnitude give a joint no leverage
	leverageEps = 1e-9

	minAverageVelocity = 1e-4
	stallStep          = 0.01
	minStep            = 1e-4
)

// Options tunes a Planner. The smoothing constants are empirical and need
// re-tuning for other joint counts or torque scales.
type Options struct {
	GridPoints         int
	SmoothingHalfWidth int
	Deadband           float64
	Logger             *zap.Logger
}

func DefaultOptions() Options {
	return Options{
		GridPoints:         DefaultGridPoints,
		SmoothingHalfWidth: DefaultSmoothingHalfWidth,
		Deadband:           DefaultDeadband,
	}
}

func (o Options) withDefaults() Options {
	if o.GridPoints <= 1 {
		o.GridPoints = DefaultGridPoints
	}
	if o.SmoothingHalfWidth < 0 {
		o.SmoothingHalfWidth = 0
	}
	if o.Deadband < 0 {
		o.Deadband = 0
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}
