package main

import (
	"fmt"
	"maps"
	"math"
	"math/rand"
	"os"
	"slices"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/armsim/internal/config"
	"github.com/san-kum/armsim/internal/dynamo"
	"github.com/san-kum/armsim/internal/metrics"
	"github.com/san-kum/armsim/internal/planner"
	"github.com/san-kum/armsim/internal/storage"
)

func planMove(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	sys, err := cfg.Build(log)
	if err != nil {
		return err
	}

	started := time.Now()
	res := sys.Planner.Solve(cfg.StartState(), cfg.GoalState())
	elapsed := time.Since(started)

	traj := metrics.FillTorques(res.Trajectory, sys.Arm, sys.Friction)
	values := metrics.Evaluate(traj, metrics.Standard(sys.Limits)...)

	fmt.Printf("plan: %s (%v)\n", res.Kind, elapsed)
	if res.Reason != nil {
		fmt.Printf("reason: %v\n", res.Reason)
	}
	fmt.Printf("duration: %.3fs  samples: %d\n\n", traj.Duration, traj.Len())
	for _, name := range slices.Sorted(maps.Keys(values)) {
		fmt.Printf("  %-18s %.4f\n", name, values[name])
	}

	if dryRun {
		return nil
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	meta := storage.RunMetadata{
		Config:     cfg.Name,
		Seed:       cfg.Seed,
		Kind:       res.Kind.String(),
		GridPoints: sys.Planner.Options().GridPoints,
		Joints:     jointNames(cfg),
		Start:      cfg.Start,
		Goal:       cfg.Goal,
		Metrics:    values,
	}
	if res.Reason != nil {
		meta.Reason = res.Reason.Error()
	}
	runID, err := st.Save(meta, traj)
	if err != nil {
		return err
	}
	fmt.Printf("\nrun saved: %s\n", runID)
	return nil
}

// randomMoves draws n seeded start/end pairs inside the safe intervals.
func randomMoves(cfg *config.Config, n int) (starts, ends []dynamo.RobotState) {
	safe := cfg.PlaybackSettings().SafeIntervals
	rng := rand.New(rand.NewSource(cfg.Seed))
	pose := func() dynamo.RobotState {
		q := make([]float64, len(safe))
		for i, iv := range safe {
			q[i] = iv.Min + rng.Float64()*(iv.Max-iv.Min)
		}
		return dynamo.FromAngles(q)
	}
	starts = make([]dynamo.RobotState, n)
	ends = make([]dynamo.RobotState, n)
	for i := range starts {
		starts[i], ends[i] = pose(), pose()
	}
	return starts, ends
}

type benchMove struct {
	start, end dynamo.RobotState
	kind       planner.Kind
	duration   float64
	elapsed    time.Duration
}

// benchPlanner plans seeded random moves across workers. Each worker owns
// its planner; the arm and friction model are shared read-only.
func benchPlanner(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if moves <= 0 {
		return fmt.Errorf("moves must be positive, got %d", moves)
	}
	sys, err := cfg.Build(zap.NewNop())
	if err != nil {
		return err
	}

	starts, ends := randomMoves(cfg, moves)
	work := make([]benchMove, moves)
	for i := range work {
		work[i].start, work[i].end = starts[i], ends[i]
	}

	opts := cfg.PlannerOptions(zap.NewNop())
	started := time.Now()
	dynamo.ParallelFor(len(work), 4, func(lo, hi int) {
		p := planner.New(sys.Arm, sys.Friction, sys.Limits, opts)
		for i := lo; i < hi; i++ {
			t0 := time.Now()
			res := p.Solve(work[i].start, work[i].end)
			work[i].elapsed = time.Since(t0)
			work[i].kind = res.Kind
			work[i].duration = res.Trajectory.Duration
		}
	})
	wall := time.Since(started)

	durations := make([]float64, 0, len(work))
	latencies := make([]float64, len(work))
	fallbacks := 0
	for i, m := range work {
		latencies[i] = m.elapsed.Seconds()
		if m.kind == planner.Fallback {
			fallbacks++
			continue
		}
		durations = append(durations, m.duration)
	}

	fmt.Printf("benchmarking %d moves (grid %d)\n\n", moves, opts.GridPoints)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SOLVED\tFALLBACK\tWALL\tPLANS/SEC\tMEAN LATENCY\tMAX LATENCY")
	fmt.Fprintf(w, "%d\t%d\t%v\t%.0f\t%.2fms\t%.2fms\n",
		len(work)-fallbacks, fallbacks, wall.Round(time.Millisecond),
		float64(len(work))/wall.Seconds(),
		1000*floats.Sum(latencies)/float64(len(latencies)),
		1000*floats.Max(latencies))
	if err := w.Flush(); err != nil {
		return err
	}

	if len(durations) > 0 {
		fmt.Printf("\ntrajectory duration: min %.3fs  mean %.3fs  max %.3fs\n",
			floats.Min(durations), floats.Sum(durations)/float64(len(durations)), floats.Max(durations))
	}
	return nil
}

// showFriction plots a joint's friction torque across its velocity range
// and, with --velocity, dumps every intermediate value of one evaluation.
func showFriction(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	idx, err := jointIndex(jointNames(cfg), args[0])
	if err != nil {
		return err
	}
	sys, err := cfg.Build(zap.NewNop())
	if err != nil {
		return err
	}

	coeff := cfg.Arm.Joints[idx].Friction
	span := 1.5 * coeff.VelocityScale
	const points = 81
	curve := make([]float64, points)
	vs := make([]float64, points)
	floats.Span(vs, -span, span)
	for i, v := range vs {
		curve[i] = sys.Friction.Friction(idx, v)
	}

	fmt.Printf("joint %d (%s): coulomb %.3f Nm  viscous %.3f Nm·s/rad  scale %.2f rad/s\n\n",
		idx, cfg.Arm.Joints[idx].Name, coeff.Coulomb, coeff.Viscous, coeff.VelocityScale)
	fmt.Println(asciigraph.Plot(curve,
		asciigraph.Height(12),
		asciigraph.Width(points),
		asciigraph.Caption(fmt.Sprintf("friction (Nm) over ±%.2f rad/s", span)),
	))

	if !cmd.Flags().Changed("velocity") {
		return nil
	}

	ds := sys.Friction.DebugState(idx, velocity)
	fmt.Printf("\nvelocity %.3f rad/s -> input %.4f -> output %.4f Nm\n\n", velocity, ds.NormalizedInput, ds.Output)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "UNIT\tW_IN\tBIAS\tHIDDEN\tW_OUT\tCONTRIB")
	for i := range ds.Hidden {
		fmt.Fprintf(w, "%d\t%+.3f\t%+.3f\t%.4f\t%+.4f\t%+.4f\n",
			i, ds.WeightsIn[i], ds.Biases[i], ds.Hidden[i], ds.WeightsOut[i], ds.WeightsOut[i]*ds.Hidden[i])
	}
	fmt.Fprintf(w, "out\t\t%+.4f\t\t\t\n", ds.OutputBias)
	if err := w.Flush(); err != nil {
		return err
	}
	if math.IsNaN(ds.Output) {
		return fmt.Errorf("friction network produced NaN")
	}
	return nil
}
