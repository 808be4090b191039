package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/armsim/internal/dynamo"
)

// JointParams describes one link of the arm.
type JointParams struct {
	Name      string
	Mass      float64 // kg
	Length    float64 // m
	COMOffset float64 // m, distance from the joint axis to the link's center of mass
	Coupling  float64 // kg·m², inertia added on top of m·l² for downstream links
	// GravityLever is false for axes parallel to gravity (base yaw) and roll
	// axes, which carry no gravity torque in this model.
	GravityLever bool
}

// Params is the immutable dynamics configuration of an arm.
type Params struct {
	Joints       []JointParams
	Gravity      float64 // m/s²
	Drag         float64 // Nm·s²/rad², velocity coupling coefficient
	BaseGyration float64 // m, radius of gyration of the whole arm about the base axis
}

// ReferenceParams returns the 6-joint reference arm.
func ReferenceParams() Params {
	return Params{
		Joints: []JointParams{
			{Name: "base", Mass: 4.0, Length: 0.10, COMOffset: 0.05, Coupling: 0.0, GravityLever: false},
			{Name: "shoulder", Mass: 3.5, Length: 0.45, COMOffset: 0.225, Coupling: 0.50, GravityLever: true},
			{Name: "elbow", Mass: 2.5, Length: 0.40, COMOffset: 0.20, Coupling: 0.25, GravityLever: true},
			{Name: "wrist_roll", Mass: 1.5, Length: 0.10, COMOffset: 0.05, Coupling: 0.05, GravityLever: false},
			{Name: "wrist_pitch", Mass: 1.0, Length: 0.10, COMOffset: 0.05, Coupling: 0.03, GravityLever: true},
			{Name: "flange", Mass: 0.5, Length: 0.08, COMOffset: 0.04, Coupling: 0.01, GravityLever: false},
		},
		Gravity:      9.81,
		Drag:         0.05,
		BaseGyration: 0.30,
	}
}

// ReferenceTorqueLimits returns the symmetric torque box of the reference arm, in Nm.
func ReferenceTorqueLimits() []float64 {
	return []float64{40, 80, 50, 15, 15, 8}
}

// Arm is a deliberately simplified rigid-body surrogate. Along a straight
// joint-space path its inverse dynamics are linear in path acceleration and
// in squared path velocity.
type Arm struct {
	params Params
	// downstream[i] is the mass carried by joint i, its own link included.
	downstream []float64
	totalMass  float64
}

func NewArm(params Params) *Arm {
	n := len(params.Joints)
	joints := make([]JointParams, n)
	copy(joints, params.Joints)
	params.Joints = joints

	a := &Arm{params: params, downstream: make([]float64, n)}
	acc := 0.0
	for i := n - 1; i >= 0; i-- {
		acc += joints[i].Mass
		a.downstream[i] = acc
	}
	a.totalMass = acc
	return a
}

func NewReferenceArm() *Arm {
	return NewArm(ReferenceParams())
}

func (a *Arm) Joints() int { return len(a.params.Joints) }

func (a *Arm) Params() Params {
	p := a.params
	p.Joints = make([]JointParams, len(a.params.Joints))
	copy(p.Joints, a.params.Joints)
	return p
}

func (a *Arm) TotalMass() float64 { return a.totalMass }

// GravityTorques returns the holding torque per joint for the given angles.
// Velocity and acceleration are ignored.
func (a *Arm) GravityTorques(state dynamo.RobotState) []float64 {
	tau := make([]float64, len(a.params.Joints))
	pitch := 0.0
	for i, j := range a.params.Joints {
		if !j.GravityLever {
			continue
		}
		pitch += state[i].Angle
		tau[i] = a.downstream[i] * a.params.Gravity * j.COMOffset * math.Cos(pitch)
	}
	return tau
}

// InverseDynamics returns the joint torques required to realise the state's
// velocities and accelerations.
func (a *Arm) InverseDynamics(state dynamo.RobotState) []float64 {
	tau := a.GravityTorques(state)
	for i, j := range a.params.Joints {
		v := state[i].Velocity
		inertia := j.Mass*j.Length*j.Length + j.Coupling
		tau[i] += inertia*state[i].Acceleration + a.params.Drag*v*math.Abs(v)
	}
	if len(tau) > 0 {
		// vertical axis: whole-arm inertia only, no gravity or drag
		r := a.params.BaseGyration
		tau[0] = a.totalMass * r * r * state[0].Acceleration
	}
	return tau
}

// GetParams returns tunable scalar parameters keyed by name.
func (a *Arm) GetParams() map[string]float64 {
	params := map[string]float64{
		"gravity":       a.params.Gravity,
		"drag":          a.params.Drag,
		"base_gyration": a.params.BaseGyration,
		"total_mass":    a.totalMass,
	}
	for i, j := range a.params.Joints {
		params[fmt.Sprintf("mass_%d", i)] = j.Mass
		params[fmt.Sprintf("length_%d", i)] = j.Length
		params[fmt.Sprintf("com_%d", i)] = j.COMOffset
	}
	return params
}
