package planner

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/armsim/internal/dynamo"
	"github.com/san-kum/armsim/internal/friction"
	"github.com/san-kum/armsim/internal/physics"
)

type panickingDynamics struct{ *physics.Arm }

func (panickingDynamics) InverseDynamics(dynamo.RobotState) []float64 {
	panic("dynamics exploded")
}

type nanDynamics struct{ *physics.Arm }

func (d nanDynamics) GravityTorques(s dynamo.RobotState) []float64 {
	tau := d.Arm.GravityTorques(s)
	tau[1] = math.NaN()
	return tau
}

func expectWellFormed(traj dynamo.Trajectory, start, end dynamo.RobotState) {
	GinkgoHelper()
	Expect(traj.Samples).NotTo(BeEmpty())
	Expect(traj.Validate()).To(Succeed())
	Expect(traj.First().Timestamp).To(Equal(0.0))
	Expect(traj.First().State.Angles()).To(Equal(start.Angles()))
	Expect(traj.Duration).To(Equal(traj.Last().Timestamp))

	last := traj.Last().State
	for i := range last {
		Expect(last[i].Angle).To(BeNumerically("~", end[i].Angle, 1e-3))
		Expect(last[i].Velocity).To(BeNumerically("~", 0, 1e-9))
	}
}

// torqueSlack bounds how far smoothing and re-integration may push torque
// past the limits the passes enforced exactly.
const torqueSlack = 1.06

// worstTorqueRatio rebuilds each interior sample's torque from the projected
// coefficients and returns the largest |τ|/limit over every joint.
func worstTorqueRatio(c *Curves, traj dynamo.Trajectory, fric FrictionModel, limits []float64) float64 {
	lead := 0
	for i, d := range c.Delta {
		if math.Abs(d) > math.Abs(c.Delta[lead]) {
			lead = i
		}
	}

	worst := 0.0
	for k := 1; k < traj.Len()-1; k++ {
		js := traj.Samples[k].State[lead]
		sd, sdd := js.Velocity/c.Delta[lead], js.Acceleration/c.Delta[lead]
		for i, T := range limits {
			tau := c.A[k][i]*sdd + c.B[k][i]*sd*sd + c.C[k][i] + fric.Friction(i, sd*c.Delta[i])
			worst = math.Max(worst, math.Abs(tau)/T)
		}
	}
	return worst
}

var _ = Describe("Planner", func() {
	var (
		arm    *physics.Arm
		fric   *friction.Model
		limits []float64
		p      *Planner
	)

	BeforeEach(func() {
		var err error
		arm = physics.NewReferenceArm()
		fric, err = friction.NewFromCoefficients(friction.ReferenceCoefficients())
		Expect(err).NotTo(HaveOccurred())
		limits = physics.ReferenceTorqueLimits()
		p = New(arm, fric, limits, DefaultOptions())
	})

	Describe("a quarter turn of the base", func() {
		var (
			start = dynamo.FromAngles([]float64{0, 0, 0, 0, 0, 0})
			end   = dynamo.FromAngles([]float64{1.5708, 0, 0, 0, 0, 0})
			res   Result
		)

		BeforeEach(func() {
			res = p.Solve(start, end)
		})

		It("is solved rather than falling back", func() {
			Expect(res.Kind).To(Equal(Solved))
			Expect(res.Reason).NotTo(HaveOccurred())
			Expect(res.Curves).NotTo(BeNil())
		})

		It("produces a well-formed trajectory", func() {
			expectWellFormed(res.Trajectory, start, end)
			Expect(res.Trajectory.Duration).To(BeNumerically(">", 0))
			Expect(res.Trajectory.Len()).To(Equal(DefaultGridPoints + 1))
		})

		It("ends at the target angle", func() {
			Expect(res.Trajectory.Last().State[0].Angle).To(BeNumerically("~", 1.5708, 1e-9))
		})

		It("leaves the other joints untouched", func() {
			for _, s := range res.Trajectory.Samples {
				for i := 1; i < 6; i++ {
					Expect(s.State[i].Angle).To(Equal(0.0))
					Expect(s.State[i].Velocity).To(Equal(0.0))
				}
			}
		})

		It("leaves torque for the consumer to fill in", func() {
			for _, s := range res.Trajectory.Samples {
				Expect(s.State.Torques()).To(HaveEach(0.0))
			}
		})

		It("stays within the torque limits", func() {
			samples := res.Trajectory.Samples
			for _, s := range samples[1 : len(samples)-1] {
				tau := arm.InverseDynamics(s.State)
				f := fric.Torques(s.State)
				for i := range tau {
					Expect(math.Abs(tau[i]+f[i])).To(BeNumerically("<=", limits[i]*torqueSlack),
						"joint %d at t=%.3f", i, s.Timestamp)
				}
			}
			Expect(worstTorqueRatio(res.Curves, res.Trajectory, fric, limits)).To(BeNumerically("<=", torqueSlack))
		})

		It("moves faster than the linear fallback", func() {
			Expect(res.Trajectory.Duration).To(BeNumerically("<", FallbackDuration))
		})
	})

	Describe("solver curves", func() {
		var c *Curves

		BeforeEach(func() {
			res := p.Solve(
				dynamo.FromAngles([]float64{0.2, -0.3, 0.4, 0, 0.1, 0}),
				dynamo.FromAngles([]float64{-0.6, 0.5, -0.4, 0.8, -0.5, 1.2}),
			)
			Expect(res.Kind).To(Equal(Solved))
			c = res.Curves
		})

		It("pins the velocity limit curve to rest at both ends", func() {
			Expect(c.VelocityLimit).To(HaveLen(DefaultGridPoints + 1))
			Expect(c.VelocityLimit[0]).To(Equal(0.0))
			Expect(c.VelocityLimit[DefaultGridPoints]).To(Equal(0.0))
		})

		It("keeps β under the velocity limit curve and ends at rest", func() {
			Expect(c.Beta[DefaultGridPoints]).To(Equal(0.0))
			for k := range c.Beta {
				Expect(c.Beta[k]).To(BeNumerically("<=", c.VelocityLimit[k]))
				Expect(c.Beta[k]).To(BeNumerically(">=", 0))
			}
		})

		It("keeps the forward pass under β", func() {
			for k := range c.PathVelocity {
				Expect(c.PathVelocity[k]).To(BeNumerically("<=", c.Beta[k]+1e-9))
			}
		})

		It("respects the deadband in the smoothed profile", func() {
			Expect(c.SmoothAccel).To(HaveLen(len(c.RawAccel)))
			for _, a := range c.SmoothAccel {
				if a != 0 {
					Expect(math.Abs(a)).To(BeNumerically(">=", DefaultDeadband))
				}
			}
		})

		It("never smooths past the raw extremum", func() {
			peak := 0.0
			for _, a := range c.RawAccel {
				peak = math.Max(peak, math.Abs(a))
			}
			for _, a := range c.SmoothAccel {
				Expect(math.Abs(a)).To(BeNumerically("<=", peak+1e-9))
			}
		})

		It("reproduces the dynamics from the projected coefficients", func() {
			k := DefaultGridPoints / 3
			s := float64(k) / DefaultGridPoints
			state := make(dynamo.RobotState, 6)
			for i := range state {
				state[i] = dynamo.JointState{
					Angle:        c.Start[i] + s*c.Delta[i],
					Velocity:     1.3 * c.Delta[i],
					Acceleration: -2.1 * c.Delta[i],
				}
			}
			tau := arm.InverseDynamics(state)
			for i := range tau {
				projected := c.A[k][i]*-2.1 + c.B[k][i]*1.3*1.3 + c.C[k][i]
				Expect(tau[i]).To(BeNumerically("~", projected, 1e-9))
			}
		})
	})

	Describe("degenerate moves", func() {
		DescribeTable("fall back to linear interpolation",
			func(offset float64) {
				start := dynamo.FromAngles([]float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6})
				angles := start.Angles()
				angles[2] += offset
				end := dynamo.FromAngles(angles)

				res := p.Solve(start, end)
				Expect(res.Kind).To(Equal(Fallback))
				Expect(res.Reason).To(MatchError(ErrShortPath))

				traj := res.Trajectory
				Expect(traj.Samples).To(HaveLen(FallbackSteps + 1))
				Expect(traj.Duration).To(Equal(FallbackDuration))
				Expect(traj.Validate()).To(Succeed())
				for _, s := range traj.Samples {
					Expect(s.State.Velocities()).To(HaveEach(0.0))
					Expect(s.State.Accelerations()).To(HaveEach(0.0))
					Expect(s.State.Torques()).To(HaveEach(0.0))
				}
				Expect(traj.Last().State[2].Angle).To(BeNumerically("~", end[2].Angle, 1e-12))
			},
			Entry("identical configurations", 0.0),
			Entry("sub-millimetre offset", 0.0005),
		)
	})

	Describe("internal failures", func() {
		start := dynamo.FromAngles([]float64{0, 0, 0, 0, 0, 0})
		end := dynamo.FromAngles([]float64{1, 1, 0, 0, 0, 0})

		It("recovers from a panic in the dynamics", func() {
			res := New(panickingDynamics{arm}, fric, limits, DefaultOptions()).Solve(start, end)
			Expect(res.Kind).To(Equal(Fallback))
			Expect(res.Reason).To(MatchError(ErrPanic))
			expectWellFormed(res.Trajectory, start, end)
		})

		It("falls back when the solution is not finite", func() {
			res := New(nanDynamics{arm}, fric, limits, DefaultOptions()).Solve(start, end)
			Expect(res.Kind).To(Equal(Fallback))
			Expect(res.Reason).To(MatchError(dynamo.ErrInvalidState))
			var perr *dynamo.PlanError
			Expect(errors.As(res.Reason, &perr)).To(BeTrue())
			Expect(perr.Stage).To(Equal("integrate"))
			Expect(perr.Index).To(BeNumerically(">=", 0))
			Expect(perr.Index).To(BeNumerically("<=", DefaultOptions().GridPoints))
			Expect(perr.Error()).To(ContainSubstring(fmt.Sprintf("at grid point %d", perr.Index)))
			expectWellFormed(res.Trajectory, start, end)
		})

		It("falls back on a torque limit count mismatch", func() {
			res := New(arm, fric, limits[:3], DefaultOptions()).Solve(start, end)
			Expect(res.Kind).To(Equal(Fallback))
			Expect(res.Reason).To(MatchError(dynamo.ErrDimensionMismatch))
			expectWellFormed(res.Trajectory, start, end)
		})

		It("holds the start when the end has a different joint count", func() {
			res := p.Solve(start, dynamo.FromAngles([]float64{1, 1}))
			Expect(res.Kind).To(Equal(Fallback))
			Expect(res.Reason).To(MatchError(dynamo.ErrDimensionMismatch))
			expectWellFormed(res.Trajectory, start, start)
		})
	})

	Describe("an unsupportable load", func() {
		It("propagates a zero velocity ceiling instead of failing", func() {
			weak := append([]float64(nil), limits...)
			weak[1] = 5 // below the shoulder's holding torque when horizontal

			res := New(arm, fric, weak, DefaultOptions()).Solve(
				dynamo.FromAngles([]float64{0, 0, 0, 0, 0, 0}),
				dynamo.FromAngles([]float64{1, 0, 0, 0, 0, 0}),
			)
			Expect(res.Kind).To(Equal(Solved))
			Expect(res.Curves.Beta).To(HaveEach(0.0))
			Expect(res.Trajectory.Duration).To(BeNumerically("~", DefaultGridPoints*stallStep, 1e-9))
			Expect(res.Trajectory.Validate()).To(Succeed())
		})
	})

	Describe("determinism", func() {
		It("returns identical output for identical input", func() {
			start := dynamo.FromAngles([]float64{0.3, -0.2, 0.9, 0.1, -0.4, 0.2})
			end := dynamo.FromAngles([]float64{-1.1, 0.6, -0.3, 0.5, 0.7, -1.0})

			first := p.Plan(start, end)
			second := New(arm, fric, limits, DefaultOptions()).Plan(start, end)
			Expect(second).To(Equal(first))
			Expect(PlanTrajectory(start, end, arm, fric, limits)).To(Equal(first))
		})
	})

	Describe("random moves", func() {
		It("always produce well-formed solved trajectories within the torque limits", func() {
			rng := rand.New(rand.NewSource(7))
			draw := func() dynamo.RobotState {
				angles := make([]float64, 6)
				for i := range angles {
					angles[i] = rng.Float64()*3 - 1.5
				}
				return dynamo.FromAngles(angles)
			}

			for n := 0; n < 20; n++ {
				start, end := draw(), draw()
				res := p.Solve(start, end)
				Expect(res.Kind).To(Equal(Solved), "move %d: %v", n, res.Reason)
				expectWellFormed(res.Trajectory, start, end)
				Expect(worstTorqueRatio(res.Curves, res.Trajectory, fric, limits)).To(BeNumerically("<=", torqueSlack),
					"move %d: %v -> %v", n, start.Angles(), end.Angles())
			}
		})
	})

	Describe("options", func() {
		It("honours a coarser grid", func() {
			opts := DefaultOptions()
			opts.GridPoints = 50
			traj := New(arm, fric, limits, opts).Plan(
				dynamo.FromAngles([]float64{0, 0, 0, 0, 0, 0}),
				dynamo.FromAngles([]float64{0.5, 0.5, 0, 0, 0, 0}),
			)
			Expect(traj.Samples).To(HaveLen(51))
		})

		It("fills in defaults for unset fields", func() {
			o := New(arm, fric, limits, Options{}).Options()
			Expect(o.GridPoints).To(Equal(DefaultGridPoints))
			Expect(o.Logger).NotTo(BeNil())
		})
	})
})
