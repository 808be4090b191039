package planner

import "math"

// backwardPass builds β, the largest path velocity at each grid point from
// which the arm can still brake to rest at the path end.
func (p *Planner) backwardPass(c *Curves) []float64 {
	n := p.opts.GridPoints
	ds := 1 / float64(n)
	beta := make([]float64, n+1)

	for k := n - 1; k >= 0; k-- {
		next := math.Min(beta[k+1], c.VelocityLimit[k+1])
		lo, _, ok := p.accelBounds(c, k+1, next)
		if !ok {
			beta[k] = 0
			continue
		}
		v2 := next*next - 2*lo*ds
		beta[k] = math.Min(math.Sqrt(math.Max(v2, 0)), c.VelocityLimit[k])
	}
	return beta
}

// forwardPass takes the largest admissible acceleration at every step,
// clipped so the next velocity stays under β. It returns the path velocity
// per grid point and the raw acceleration per segment.
func (p *Planner) forwardPass(c *Curves) (velocity, accel []float64) {
	n := p.opts.GridPoints
	ds := 1 / float64(n)
	velocity = make([]float64, n+1)
	accel = make([]float64, n)

	sd := 0.0
	for k := 0; k < n; k++ {
		velocity[k] = sd

		a := 0.0
		if _, hi, ok := p.accelBounds(c, k, sd); ok {
			a = hi
		}

		ceiling := c.Beta[k+1] * c.Beta[k+1]
		next := sd*sd + 2*a*ds
		if next > ceiling {
			a = (ceiling - sd*sd) / (2 * ds)
			next = ceiling
		}

		accel[k] = a
		sd = math.Sqrt(math.Max(next, 0))
	}
	velocity[n] = sd
	return velocity, accel
}
