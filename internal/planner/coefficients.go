package planner

import (
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/armsim/internal/dynamo"
)

// project samples the dynamics at every grid point along q(s) = q0 + s·Δq.
// Gravity gives C; evaluations with acceleration Δq and with velocity Δq isolate
// the inertia (A) and velocity coupling (B) coefficients.
func (p *Planner) project(q0, delta []float64) *Curves {
	n := p.opts.GridPoints
	c := &Curves{
		Start: q0,
		Delta: delta,
		A:     make([][]float64, n+1),
		B:     make([][]float64, n+1),
		C:     make([][]float64, n+1),
	}

	angles := make([]float64, len(q0))
	for k := 0; k <= n; k++ {
		s := float64(k) / float64(n)
		floats.AddScaledTo(angles, q0, s, delta)
		q := dynamo.FromAngles(angles)

		c.C[k] = p.dyn.GravityTorques(q)

		excited := q.Clone()
		for i := range excited {
			excited[i].Acceleration = delta[i]
		}
		c.A[k] = floats.SubTo(make([]float64, len(q)), p.dyn.InverseDynamics(excited), c.C[k])

		excited = q.Clone()
		for i := range excited {
			excited[i].Velocity = delta[i]
		}
		c.B[k] = floats.SubTo(make([]float64, len(q)), p.dyn.InverseDynamics(excited), c.C[k])
	}
	return c
}
