package playback

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/multierr"
)

const (
	DefaultMinDistance = 2.0 // rad
	DefaultMaxAttempts = 15
	DefaultDwell       = 500 * time.Millisecond
)

var ErrInvalidConfig = errors.New("playback: invalid config")

// Interval bounds a joint angle, in radians.
type Interval struct {
	Min float64 `yaml:"min" json:"min"`
	Max float64 `yaml:"max" json:"max"`
}

func (iv Interval) Contains(a float64) bool { return a >= iv.Min && a <= iv.Max }

type Config struct {
	SafeIntervals []Interval
	MinDistance   float64
	MaxAttempts   int
	Dwell         time.Duration
}

// ReferenceIntervals keeps the reference arm clear of its own base and
// of the table.
func ReferenceIntervals() []Interval {
	return []Interval{
		{-2.5, 2.5},
		{-1.2, 1.2},
		{-1.5, 1.5},
		{-2.5, 2.5},
		{-1.5, 1.5},
		{-3.0, 3.0},
	}
}

func DefaultConfig() Config {
	return Config{
		SafeIntervals: ReferenceIntervals(),
		MinDistance:   DefaultMinDistance,
		MaxAttempts:   DefaultMaxAttempts,
		Dwell:         DefaultDwell,
	}
}

func (c Config) Validate() error {
	var err error
	if len(c.SafeIntervals) == 0 {
		err = multierr.Append(err, fmt.Errorf("%w: no safe intervals", ErrInvalidConfig))
	}
	for i, iv := range c.SafeIntervals {
		if iv.Min > iv.Max {
			err = multierr.Append(err, fmt.Errorf("%w: joint %d interval [%g, %g] is empty", ErrInvalidConfig, i, iv.Min, iv.Max))
		}
	}
	if c.MaxAttempts < 1 {
		err = multierr.Append(err, fmt.Errorf("%w: max attempts %d", ErrInvalidConfig, c.MaxAttempts))
	}
	if c.MinDistance < 0 {
		err = multierr.Append(err, fmt.Errorf("%w: negative min distance", ErrInvalidConfig))
	}
	if c.Dwell < 0 {
		err = multierr.Append(err, fmt.Errorf("%w: negative dwell", ErrInvalidConfig))
	}
	return err
}
