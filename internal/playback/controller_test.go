package playback

import (
	"math"
	"math/rand"
	"time"

	"github.com/benbjohnson/clock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap/zaptest"
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/armsim/internal/dynamo"
	"github.com/san-kum/armsim/internal/friction"
	"github.com/san-kum/armsim/internal/physics"
	"github.com/san-kum/armsim/internal/planner"
)

func secs(d float64) time.Duration { return time.Duration(d * float64(time.Second)) }

var _ = Describe("Controller", func() {
	var (
		arm     *physics.Arm
		fric    *friction.Model
		mock    *clock.Mock
		ctl     *Controller
		initial dynamo.RobotState
	)

	newController := func(seed int64) *Controller {
		p := planner.New(arm, fric, physics.ReferenceTorqueLimits(), planner.DefaultOptions())
		c, err := New(p, arm, fric, initial, DefaultConfig(),
			WithClock(mock),
			WithRand(rand.New(rand.NewSource(seed))),
			WithLogger(zaptest.NewLogger(GinkgoT())),
		)
		Expect(err).NotTo(HaveOccurred())
		return c
	}

	expectTorques := func(s dynamo.RobotState) {
		GinkgoHelper()
		tau := arm.InverseDynamics(s)
		f := fric.Torques(s)
		for i := range s {
			Expect(s[i].Torque).To(BeNumerically("~", tau[i]+f[i], 1e-9))
		}
	}

	BeforeEach(func() {
		var err error
		arm = physics.NewReferenceArm()
		fric, err = friction.NewFromCoefficients(friction.ReferenceCoefficients())
		Expect(err).NotTo(HaveOccurred())
		mock = clock.NewMock()
		initial = dynamo.FromAngles([]float64{0, 0.3, -0.4, 0, 0.2, 0})
		ctl = newController(42)
	})

	Context("when idle", func() {
		It("holds the initial configuration against gravity", func() {
			Expect(ctl.Phase()).To(Equal(Idle))
			Expect(ctl.Trajectory()).To(BeNil())

			mock.Add(time.Second)
			f := ctl.Tick()
			Expect(f.Phase).To(Equal(Idle))
			Expect(f.State.Angles()).To(Equal(initial.Angles()))
			Expect(f.State.Velocities()).To(HaveEach(0.0))

			g := arm.GravityTorques(f.State)
			for i := range g {
				Expect(f.State[i].Torque).To(BeNumerically("~", g[i], 1e-9))
			}
		})
	})

	Context("in continuous mode", func() {
		BeforeEach(func() {
			ctl.SetContinuous(true)
		})

		It("plans a distant target and starts moving", func() {
			Expect(ctl.Phase()).To(Equal(Moving))
			Expect(ctl.Moves()).To(Equal(1))
			Expect(ctl.LastKind()).To(Equal(planner.Solved))
			Expect(floats.Distance(ctl.Target().Angles(), initial.Angles(), 2)).To(BeNumerically(">", DefaultMinDistance))

			for i, iv := range ReferenceIntervals() {
				Expect(iv.Contains(ctl.Target()[i].Angle)).To(BeTrue())
			}
		})

		It("starts the move from the current configuration", func() {
			f := ctl.Tick()
			Expect(f.Phase).To(Equal(Moving))
			Expect(f.State.Angles()).To(Equal(initial.Angles()))
			expectTorques(f.State)
		})

		It("follows the trajectory as the clock advances", func() {
			traj := ctl.Trajectory()
			Expect(traj).NotTo(BeNil())

			mock.Add(secs(traj.Duration / 2))
			f := ctl.Tick()
			Expect(f.Phase).To(Equal(Moving))

			want, ok := traj.At(f.Elapsed.Seconds())
			Expect(ok).To(BeTrue())
			Expect(f.State.Angles()).To(Equal(want.State.Angles()))
			Expect(f.State.Velocities()).To(Equal(want.State.Velocities()))
			expectTorques(f.State)
		})

		It("dwells at the target at rest once the trajectory ends", func() {
			traj := ctl.Trajectory()
			mock.Add(secs(traj.Duration + 0.05))

			f := ctl.Tick()
			Expect(f.Phase).To(Equal(Dwelling))
			Expect(ctl.Phase()).To(Equal(Dwelling))
			for i, a := range f.State.Angles() {
				Expect(a).To(BeNumerically("~", ctl.Target()[i].Angle, 1e-3))
			}
			Expect(f.State.Velocities()).To(HaveEach(0.0))
			expectTorques(f.State)

			mock.Add(DefaultDwell / 2)
			f = ctl.Tick()
			Expect(f.Phase).To(Equal(Dwelling))
			Expect(f.Elapsed).To(Equal(DefaultDwell / 2))
		})

		It("replans from the reached target after the dwell", func() {
			mock.Add(secs(ctl.Trajectory().Duration + 0.05))
			reached := ctl.Tick().State.Angles()

			mock.Add(DefaultDwell)
			f := ctl.Tick()
			Expect(f.Phase).To(Equal(Moving))
			Expect(ctl.Moves()).To(Equal(2))
			Expect(f.State.Angles()).To(Equal(reached))
			Expect(ctl.Trajectory().First().State.Angles()).To(Equal(reached))
			Expect(floats.Distance(ctl.Target().Angles(), reached, 2)).To(BeNumerically(">", DefaultMinDistance))
		})

		It("discards the move when switched off", func() {
			mock.Add(secs(ctl.Trajectory().Duration / 3))
			mid := ctl.Tick().State.Angles()

			ctl.SetContinuous(false)
			Expect(ctl.Phase()).To(Equal(Idle))
			Expect(ctl.Trajectory()).To(BeNil())
			Expect(ctl.Target()).To(BeNil())

			mock.Add(10 * time.Second)
			f := ctl.Tick()
			Expect(f.Phase).To(Equal(Idle))
			Expect(f.State.Angles()).To(Equal(mid))
			Expect(f.State.Velocities()).To(HaveEach(0.0))
		})

		It("ignores a repeated request", func() {
			target := ctl.Target()
			ctl.SetContinuous(true)
			Expect(ctl.Moves()).To(Equal(1))
			Expect(ctl.Target()).To(Equal(target))
		})

		It("keeps every emitted state finite over several moves", func() {
			for i := 0; i < 600; i++ {
				mock.Add(time.Second / 60)
				f := ctl.Tick()
				Expect(f.State.IsValid()).To(BeTrue())
				expectTorques(f.State)
			}
			Expect(ctl.Moves()).To(BeNumerically(">", 1))
		})
	})

	It("draws the same targets for the same seed", func() {
		other := newController(42)
		ctl.SetContinuous(true)
		other.SetContinuous(true)
		Expect(other.Target()).To(Equal(ctl.Target()))
	})

	It("keeps the last draw when no target is far enough", func() {
		cfg := DefaultConfig()
		cfg.MinDistance = math.Inf(1)
		cfg.MaxAttempts = 3
		c, err := New(planner.New(arm, fric, physics.ReferenceTorqueLimits(), planner.DefaultOptions()),
			arm, fric, initial, cfg, WithClock(mock), WithRand(rand.New(rand.NewSource(1))))
		Expect(err).NotTo(HaveOccurred())

		c.SetContinuous(true)
		Expect(c.Phase()).To(Equal(Moving))

		replay := rand.New(rand.NewSource(1))
		var want []float64
		for range cfg.MaxAttempts {
			want = make([]float64, len(cfg.SafeIntervals))
			for i, iv := range cfg.SafeIntervals {
				want[i] = iv.Min + replay.Float64()*(iv.Max-iv.Min)
			}
		}
		Expect(c.Target().Angles()).To(Equal(want))
	})

	DescribeTable("rejects invalid setups",
		func(mutate func(*Config, *dynamo.RobotState)) {
			cfg := DefaultConfig()
			state := initial.Clone()
			mutate(&cfg, &state)
			_, err := New(nil, arm, fric, state, cfg)
			Expect(err).To(HaveOccurred())
		},
		Entry("joint count mismatch", func(_ *Config, s *dynamo.RobotState) { *s = (*s)[:3] }),
		Entry("empty interval", func(c *Config, _ *dynamo.RobotState) { c.SafeIntervals[1] = Interval{1, -1} }),
		Entry("no attempts", func(c *Config, _ *dynamo.RobotState) { c.MaxAttempts = 0 }),
		Entry("negative dwell", func(c *Config, _ *dynamo.RobotState) { c.Dwell = -time.Second }),
	)
})
