package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/armsim/internal/dynamo"
	"github.com/san-kum/armsim/internal/friction"
	"github.com/san-kum/armsim/internal/physics"
	"github.com/san-kum/armsim/internal/planner"
)

func sample(t float64, joints ...dynamo.JointState) dynamo.Sample {
	return dynamo.Sample{State: dynamo.RobotState(joints), Timestamp: t}
}

func TestControlEffort(t *testing.T) {
	m := NewControlEffort()
	m.Observe(sample(0, dynamo.JointState{Torque: 2}, dynamo.JointState{Torque: -4}))
	m.Observe(sample(1, dynamo.JointState{Torque: 0}, dynamo.JointState{Torque: 0}))

	if got := m.Value(); got != 3 {
		t.Errorf("expected 3, got %g", got)
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero effort after reset")
	}
}

func TestWork(t *testing.T) {
	m := NewWork()
	// constant 2 W for 3 s
	for _, ts := range []float64{0, 1, 3} {
		m.Observe(sample(ts, dynamo.JointState{Torque: 4, Velocity: 0.5}))
	}
	if got := m.Value(); math.Abs(got-6) > 1e-12 {
		t.Errorf("expected 6 J, got %g", got)
	}
}

func TestLimits(t *testing.T) {
	limits := []float64{10, 20}
	ratio := NewPeakTorqueRatio(limits)
	comp := NewLimitCompliance(limits, 0.1)

	got := Evaluate(dynamo.Trajectory{Samples: []dynamo.Sample{
		sample(0, dynamo.JointState{Torque: 5}, dynamo.JointState{Torque: -10}),
		sample(1, dynamo.JointState{Torque: -10.5}, dynamo.JointState{Torque: 0}),
		sample(2, dynamo.JointState{Torque: 1}, dynamo.JointState{Torque: 23}),
	}}, ratio, comp)

	if r := got["peak_torque_ratio"]; math.Abs(r-1.15) > 1e-12 {
		t.Errorf("peak ratio = %g, want 1.15", r)
	}
	if c := got["limit_compliance"]; math.Abs(c-2.0/3) > 1e-12 {
		t.Errorf("compliance = %g, want 2/3", c)
	}
}

func TestEvaluatePlannedQuarterTurn(t *testing.T) {
	arm := physics.NewReferenceArm()
	fric, err := friction.NewFromCoefficients(friction.ReferenceCoefficients())
	if err != nil {
		t.Fatal(err)
	}
	limits := physics.ReferenceTorqueLimits()

	traj := planner.PlanTrajectory(
		dynamo.FromAngles([]float64{0, 0, 0, 0, 0, 0}),
		dynamo.FromAngles([]float64{math.Pi / 2, 0, 0, 0, 0, 0}),
		arm, fric, limits)
	filled := FillTorques(traj, arm, fric)

	if traj.Samples[1].State[0].Torque != 0 {
		t.Fatal("FillTorques must not modify its input")
	}

	got := Evaluate(filled, Standard(limits)...)
	if got["peak_torque_ratio"] > 1.15 {
		t.Errorf("peak torque ratio %g", got["peak_torque_ratio"])
	}
	if got["peak_velocity"] <= 0 || got["work"] <= 0 || got["control_effort"] <= 0 {
		t.Errorf("expected a moving arm, got %v", got)
	}
}
