package planner

import "math"

// velocityLimits solves the static box -T ≤ B·ṡ² + C ≤ T per joint for the
// largest admissible ṡ². Path endpoints are pinned to rest.
func (p *Planner) velocityLimits(c *Curves) []float64 {
	n := p.opts.GridPoints
	mvc := make([]float64, n+1)

	for k := 0; k <= n; k++ {
		limit := math.Inf(1)
		for i, T := range p.limits {
			limit = math.Min(limit, maxSquaredVelocity(c.B[k][i], c.C[k][i], T))
		}
		mvc[k] = math.Sqrt(math.Max(limit, 0))
	}

	mvc[0] = 0
	mvc[n] = 0
	return mvc
}

func maxSquaredVelocity(b, c, T float64) float64 {
	var lo, hi float64
	switch {
	case math.Abs(b) < leverageEps:
		if math.Abs(c) > T {
			return 0
		}
		return math.Inf(1)
	case b > 0:
		lo, hi = (-T-c)/b, (T-c)/b
	default:
		lo, hi = (T-c)/b, (-T-c)/b
	}
	if hi < math.Max(lo, 0) {
		return 0
	}
	return hi
}

// accelBounds intersects every joint's torque box, with friction and the
// rigid-body bias evaluated at path velocity sd, into an interval of
// admissible path accelerations at grid point k. ok is false when no
// acceleration satisfies all joints.
func (p *Planner) accelBounds(c *Curves, k int, sd float64) (lo, hi float64, ok bool) {
	lo, hi = math.Inf(-1), math.Inf(1)
	sd2 := sd * sd

	for i, T := range p.limits {
		bias := c.B[k][i]*sd2 + c.C[k][i] + p.friction.Friction(i, sd*c.Delta[i])
		a := c.A[k][i]

		if math.Abs(a) < leverageEps {
			if math.Abs(bias) > T {
				return 0, 0, false
			}
			continue
		}

		l, h := (-T-bias)/a, (T-bias)/a
		if a < 0 {
			l, h = h, l
		}
		lo = math.Max(lo, l)
		hi = math.Min(hi, h)
	}

	if lo > hi {
		return 0, 0, false
	}
	return lo, hi, true
}
