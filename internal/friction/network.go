// Package friction estimates joint friction torque with a small per-joint
// feed-forward network.
package friction

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/armsim/internal/dynamo"
)

// HiddenUnits is the width of the single hidden layer.
const HiddenUnits = 15

// Network is the parameter set of one joint's estimator.
type Network struct {
	// VelocityScale maps joint velocity onto the [-1, 1] input range.
	VelocityScale float64   `yaml:"velocity_scale" json:"velocity_scale"`
	WeightsIn     []float64 `yaml:"weights_in" json:"weights_in"`
	Biases        []float64 `yaml:"biases" json:"biases"`
	WeightsOut    []float64 `yaml:"weights_out" json:"weights_out"`
	OutputBias    float64   `yaml:"output_bias" json:"output_bias"`
}

func (n Network) validate() error {
	if n.VelocityScale <= 0 {
		return fmt.Errorf("%w: velocity scale %g", dynamo.ErrParameterBounds, n.VelocityScale)
	}
	for name, v := range map[string][]float64{"weights_in": n.WeightsIn, "biases": n.Biases, "weights_out": n.WeightsOut} {
		if len(v) != HiddenUnits {
			return fmt.Errorf("%w: %s has %d entries, want %d", dynamo.ErrDimensionMismatch, name, len(v), HiddenUnits)
		}
	}
	return nil
}

// Coefficients describe a joint's friction in classical terms; see
// NewFromCoefficients.
type Coefficients struct {
	Coulomb       float64 `yaml:"coulomb" json:"coulomb"` // Nm
	Viscous       float64 `yaml:"viscous" json:"viscous"` // Nm·s/rad
	VelocityScale float64 `yaml:"velocity_scale" json:"velocity_scale"`
}

// DebugState is every intermediate value of one forward pass.
type DebugState struct {
	NormalizedInput float64
	Hidden          []float64
	WeightsIn       []float64
	WeightsOut      []float64
	Biases          []float64
	OutputBias      float64
	Output          float64
}

// Model holds one network per joint. It is immutable after construction and
// safe for concurrent use.
type Model struct {
	nets []Network
}

func New(nets []Network) (*Model, error) {
	m := &Model{nets: make([]Network, len(nets))}
	for i, n := range nets {
		if err := n.validate(); err != nil {
			return nil, fmt.Errorf("joint %d: %w", i, err)
		}
		m.nets[i] = Network{
			VelocityScale: n.VelocityScale,
			WeightsIn:     append([]float64(nil), n.WeightsIn...),
			Biases:        append([]float64(nil), n.Biases...),
			WeightsOut:    append([]float64(nil), n.WeightsOut...),
			OutputBias:    n.OutputBias,
		}
	}
	return m, nil
}

const viscousUnits = 5

// NewFromCoefficients builds networks that reproduce a Coulomb plus viscous
// friction curve. Low-gain units stay in the sigmoid's linear region and carry
// the viscous slope; high-gain units saturate and sum to the Coulomb level.
// The output bias cancels the sigmoid midpoint so zero velocity gives zero
// friction.
func NewFromCoefficients(coeffs []Coefficients) (*Model, error) {
	nets := make([]Network, len(coeffs))
	for j, c := range coeffs {
		n := Network{
			VelocityScale: c.VelocityScale,
			WeightsIn:     make([]float64, HiddenUnits),
			Biases:        make([]float64, HiddenUnits),
			WeightsOut:    make([]float64, HiddenUnits),
		}
		viscousNorm := c.Viscous * c.VelocityScale
		for h := 0; h < HiddenUnits; h++ {
			if h < viscousUnits {
				gain := 0.5 + 0.25*float64(h)
				n.WeightsIn[h] = gain
				// sigmoid(g·x) - 0.5 ≈ g·x/4 near zero
				n.WeightsOut[h] = 4 * viscousNorm / (gain * viscousUnits)
			} else {
				k := float64(h - viscousUnits)
				n.WeightsIn[h] = 10 + 4*k
				n.WeightsOut[h] = 2 * c.Coulomb / (HiddenUnits - viscousUnits)
			}
		}
		n.OutputBias = -0.5 * floats.Sum(n.WeightsOut)
		nets[j] = n
	}
	return New(nets)
}

func (m *Model) Joints() int { return len(m.nets) }

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

func normalize(v, scale float64) float64 {
	return math.Max(-1, math.Min(1, v/scale))
}

// Friction returns the estimated friction torque at the joint velocity.
func (m *Model) Friction(joint int, velocity float64) float64 {
	n := &m.nets[joint]
	x := normalize(velocity, n.VelocityScale)
	out := n.OutputBias
	for h := range n.WeightsIn {
		out += n.WeightsOut[h] * sigmoid(n.WeightsIn[h]*x+n.Biases[h])
	}
	return out
}

// DebugState runs the same forward pass as Friction and returns copies of
// every intermediate value.
func (m *Model) DebugState(joint int, velocity float64) DebugState {
	n := &m.nets[joint]
	x := normalize(velocity, n.VelocityScale)

	hidden := make([]float64, HiddenUnits)
	floats.ScaleTo(hidden, x, n.WeightsIn)
	floats.Add(hidden, n.Biases)
	for h := range hidden {
		hidden[h] = sigmoid(hidden[h])
	}

	return DebugState{
		NormalizedInput: x,
		Hidden:          hidden,
		WeightsIn:       append([]float64(nil), n.WeightsIn...),
		WeightsOut:      append([]float64(nil), n.WeightsOut...),
		Biases:          append([]float64(nil), n.Biases...),
		OutputBias:      n.OutputBias,
		Output:          floats.Dot(n.WeightsOut, hidden) + n.OutputBias,
	}
}

// Torques returns the friction torque of every joint for the state's velocities.
func (m *Model) Torques(state dynamo.RobotState) []float64 {
	out := make([]float64, len(state))
	for i, j := range state {
		out[i] = m.Friction(i, j.Velocity)
	}
	return out
}

// ReferenceCoefficients returns friction coefficients for the reference arm.
func ReferenceCoefficients() []Coefficients {
	return []Coefficients{
		{Coulomb: 2.0, Viscous: 1.5, VelocityScale: 3.0},
		{Coulomb: 2.5, Viscous: 2.0, VelocityScale: 3.0},
		{Coulomb: 1.5, Viscous: 1.2, VelocityScale: 3.0},
		{Coulomb: 0.5, Viscous: 0.4, VelocityScale: 4.0},
		{Coulomb: 0.4, Viscous: 0.3, VelocityScale: 4.0},
		{Coulomb: 0.2, Viscous: 0.1, VelocityScale: 5.0},
	}
}
