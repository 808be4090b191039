package friction

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/armsim/internal/dynamo"
)

func referenceModel(t *testing.T) *Model {
	t.Helper()
	m, err := NewFromCoefficients(ReferenceCoefficients())
	if err != nil {
		t.Fatalf("build model: %v", err)
	}
	return m
}

func TestFrictionZeroAtRest(t *testing.T) {
	m := referenceModel(t)
	for j := 0; j < m.Joints(); j++ {
		if f := m.Friction(j, 0); math.Abs(f) > 1e-12 {
			t.Errorf("joint %d: expected zero friction at rest, got %g", j, f)
		}
	}
}

func TestFrictionOddSymmetry(t *testing.T) {
	m := referenceModel(t)
	for _, v := range []float64{0.01, 0.3, 1.0, 2.5, 10.0} {
		pos := m.Friction(1, v)
		neg := m.Friction(1, -v)
		if math.Abs(pos+neg) > 1e-9 {
			t.Errorf("v=%g: expected f(v) = -f(-v), got %g and %g", v, pos, neg)
		}
		if pos <= 0 {
			t.Errorf("v=%g: friction should oppose motion, got %g", v, pos)
		}
	}
}

func TestFrictionCoulombPlateau(t *testing.T) {
	m := referenceModel(t)
	c := ReferenceCoefficients()[0]

	// input saturates beyond the velocity scale
	f1 := m.Friction(0, c.VelocityScale)
	f2 := m.Friction(0, 10*c.VelocityScale)
	if f1 != f2 {
		t.Errorf("expected bounded input to saturate, got %g and %g", f1, f2)
	}

	// coulomb units saturate well inside the range
	low := m.Friction(0, 0.5*c.VelocityScale)
	if low < 0.9*c.Coulomb {
		t.Errorf("expected friction above %g, got %g", 0.9*c.Coulomb, low)
	}
	if f1 > c.Coulomb+c.Viscous*c.VelocityScale*1.2 {
		t.Errorf("friction %g exceeds coulomb plus viscous envelope", f1)
	}
}

func TestFrictionMonotonic(t *testing.T) {
	m := referenceModel(t)
	prev := m.Friction(2, 0)
	for v := 0.05; v <= 3.0; v += 0.05 {
		f := m.Friction(2, v)
		if f < prev {
			t.Fatalf("friction decreased at v=%g: %g < %g", v, f, prev)
		}
		prev = f
	}
}

func TestDebugStateMatchesFriction(t *testing.T) {
	m := referenceModel(t)
	for _, v := range []float64{-2, -0.1, 0, 0.4, 1.7} {
		ds := m.DebugState(3, v)
		f := m.Friction(3, v)
		if math.Abs(ds.Output-f) > 1e-12 {
			t.Errorf("v=%g: debug output %g, friction %g", v, ds.Output, f)
		}
		if len(ds.Hidden) != HiddenUnits || len(ds.WeightsIn) != HiddenUnits ||
			len(ds.WeightsOut) != HiddenUnits || len(ds.Biases) != HiddenUnits {
			t.Errorf("unexpected debug vector lengths: %d %d %d %d",
				len(ds.Hidden), len(ds.WeightsIn), len(ds.WeightsOut), len(ds.Biases))
		}
		if ds.NormalizedInput < -1 || ds.NormalizedInput > 1 {
			t.Errorf("normalized input %g out of range", ds.NormalizedInput)
		}
	}
}

func TestDebugStateReturnsCopies(t *testing.T) {
	m := referenceModel(t)
	before := m.Friction(0, 1.0)

	ds := m.DebugState(0, 1.0)
	ds.WeightsOut[0] = 1e6
	ds.Biases[0] = 1e6

	if after := m.Friction(0, 1.0); after != before {
		t.Errorf("mutating debug state changed the model: %g != %g", after, before)
	}
}

func TestTorques(t *testing.T) {
	m := referenceModel(t)
	state := make(dynamo.RobotState, 6)
	state[2].Velocity = 1.0

	tau := m.Torques(state)
	if tau[2] != m.Friction(2, 1.0) {
		t.Errorf("expected %g, got %g", m.Friction(2, 1.0), tau[2])
	}
	if tau[0] != m.Friction(0, 0) {
		t.Errorf("expected rest friction on joint 0, got %g", tau[0])
	}
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name string
		net  Network
		want error
	}{
		{"zero scale", Network{VelocityScale: 0}, dynamo.ErrParameterBounds},
		{"short layer", Network{
			VelocityScale: 1,
			WeightsIn:     make([]float64, 3),
			Biases:        make([]float64, HiddenUnits),
			WeightsOut:    make([]float64, HiddenUnits),
		}, dynamo.ErrDimensionMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New([]Network{tt.net})
			if !errors.Is(err, tt.want) {
				t.Errorf("New() error = %v, want %v", err, tt.want)
			}
		})
	}
}
