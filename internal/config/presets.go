package config

import (
	"maps"
	"slices"
)

// Presets are named variations of the reference arm.
var Presets = map[string]*Config{
	"reference": DefaultConfig(),
	"gentle": preset("gentle", func(c *Config) {
		for i := range c.Arm.Joints {
			c.Arm.Joints[i].TorqueLimit *= 0.5
		}
		c.Playback.Dwell = 1.0
	}),
	"payload": preset("payload", func(c *Config) {
		// 2 kg gripped at the flange
		c.Arm.Joints[5].Mass += 2.0
		c.Arm.Joints[5].COMOffset = 0.06
	}),
	"sticky": preset("sticky", func(c *Config) {
		for i := range c.Arm.Joints {
			c.Arm.Joints[i].Friction.Coulomb *= 3
			c.Arm.Joints[i].Friction.Viscous *= 2
		}
	}),
	"coarse": preset("coarse", func(c *Config) {
		c.Planner.GridPoints = 60
		c.Planner.SmoothingHalfWidth = 3
	}),
	"raw": preset("raw", func(c *Config) {
		c.Planner.SmoothingHalfWidth = 0
		c.Planner.Deadband = 0
	}),
	"reach": preset("reach", func(c *Config) {
		c.Start = []float64{-1.5, 0.9, -1.2, 0, 0.8, 0}
		c.Goal = []float64{1.5, -0.9, 1.2, 0.5, -0.8, 1.0}
		c.Playback.MinDistance = 3.0
	}),
}

func preset(name string, mutate func(*Config)) *Config {
	c := DefaultConfig()
	c.Name = name
	mutate(c)
	return c
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	return slices.Sorted(maps.Keys(Presets))
}
