package physics

import (
	"math"
	"testing"

	"github.com/san-kum/armsim/internal/dynamo"
)

func TestArmDimensions(t *testing.T) {
	a := NewReferenceArm()

	if a.Joints() != 6 {
		t.Errorf("expected 6 joints, got %d", a.Joints())
	}
	if math.Abs(a.TotalMass()-13.0) > 1e-12 {
		t.Errorf("expected total mass 13, got %f", a.TotalMass())
	}
}

func TestGravityTorquesHorizontal(t *testing.T) {
	a := NewReferenceArm()
	p := ReferenceParams()

	tau := a.GravityTorques(make(dynamo.RobotState, 6))

	// shoulder carries everything from itself outward
	expected := 9.0 * p.Gravity * p.Joints[1].COMOffset
	if math.Abs(tau[1]-expected) > 1e-9 {
		t.Errorf("expected shoulder torque %f, got %f", expected, tau[1])
	}

	for _, i := range []int{0, 3, 5} {
		if tau[i] != 0 {
			t.Errorf("joint %d has no gravity lever, got torque %f", i, tau[i])
		}
	}
}

func TestGravityTorquesCumulativeAngle(t *testing.T) {
	a := NewReferenceArm()
	p := ReferenceParams()

	state := dynamo.FromAngles([]float64{1.0, math.Pi / 4, math.Pi / 4, 0.7, 0, 0})
	tau := a.GravityTorques(state)

	// elbow lever angle is shoulder + elbow = 90°; the roll joint is skipped
	if math.Abs(tau[2]) > 1e-9 {
		t.Errorf("expected zero elbow torque at vertical, got %f", tau[2])
	}
	expected := 1.5 * p.Gravity * p.Joints[4].COMOffset * math.Cos(math.Pi/2)
	if math.Abs(tau[4]-expected) > 1e-9 {
		t.Errorf("expected wrist torque %f, got %f", expected, tau[4])
	}
}

func TestInverseDynamicsAtRestEqualsGravity(t *testing.T) {
	a := NewReferenceArm()
	state := dynamo.FromAngles([]float64{0.3, -0.2, 0.5, 0.1, 0.4, 0})

	g := a.GravityTorques(state)
	tau := a.InverseDynamics(state)

	for i := range g {
		if math.Abs(g[i]-tau[i]) > 1e-12 {
			t.Errorf("joint %d: expected %f, got %f", i, g[i], tau[i])
		}
	}
}

func TestInverseDynamicsBaseOverride(t *testing.T) {
	a := NewReferenceArm()
	p := ReferenceParams()

	state := make(dynamo.RobotState, 6)
	state[0].Acceleration = 2.0
	state[0].Velocity = 5.0

	tau := a.InverseDynamics(state)

	expected := a.TotalMass() * p.BaseGyration * p.BaseGyration * 2.0
	if math.Abs(tau[0]-expected) > 1e-12 {
		t.Errorf("expected base torque %f, got %f", expected, tau[0])
	}
}

func TestInverseDynamicsLinearInAccelerationAndSquaredVelocity(t *testing.T) {
	a := NewReferenceArm()
	q := dynamo.FromAngles([]float64{0, 0.2, -0.4, 0, 0.3, 0})
	dir := []float64{0.5, -1.0, 0.8, 0.2, -0.6, 1.0}

	c := a.GravityTorques(q)
	torqueAt := func(sdd, sd float64) []float64 {
		s := q.Clone()
		for i := range s {
			s[i].Acceleration = sdd * dir[i]
			s[i].Velocity = sd * dir[i]
		}
		return a.InverseDynamics(s)
	}
	unitA := torqueAt(1, 0)
	unitB := torqueAt(0, 1)

	got := torqueAt(3.0, 2.0)
	for i := range got {
		want := (unitA[i]-c[i])*3.0 + (unitB[i]-c[i])*4.0 + c[i]
		if math.Abs(got[i]-want) > 1e-9 {
			t.Errorf("joint %d: expected %f, got %f", i, want, got[i])
		}
	}
}

func TestInverseDynamicsPropagatesNaN(t *testing.T) {
	a := NewReferenceArm()
	state := make(dynamo.RobotState, 6)
	state[1].Acceleration = math.NaN()

	tau := a.InverseDynamics(state)
	if !math.IsNaN(tau[1]) {
		t.Errorf("expected NaN torque, got %f", tau[1])
	}
}

func TestNewArmCopiesParams(t *testing.T) {
	p := ReferenceParams()
	a := NewArm(p)
	p.Joints[1].Mass = 100

	if a.Params().Joints[1].Mass == 100 {
		t.Error("arm shares joint slice with caller")
	}
}
