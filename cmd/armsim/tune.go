package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/armsim/internal/analysis"
	"github.com/san-kum/armsim/internal/config"
	"github.com/san-kum/armsim/internal/dynamo"
	"github.com/san-kum/armsim/internal/optim"
	"github.com/san-kum/armsim/internal/planner"
)

var (
	halfWidths []float64
	deadbands  []float64
	saveTuned  string
)

func newTuneCmd() *cobra.Command {
	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "grid search smoothing settings over random moves",
		Args:  cobra.NoArgs,
		RunE:  tuneSmoothing,
	}
	tuneCmd.Flags().Int64Var(&seed, "seed", 1, "random seed")
	tuneCmd.Flags().IntVar(&gridPoints, "grid", 200, "path grid intervals")
	tuneCmd.Flags().IntVar(&moves, "moves", 40, "number of moves per combination")
	tuneCmd.Flags().Float64SliceVar(&halfWidths, "half-widths", []float64{0, 3, 5, 10, 15}, "smoothing half-widths to try")
	tuneCmd.Flags().Float64SliceVar(&deadbands, "deadbands", []float64{0, 0.25, 0.5, 1}, "deadbands to try (rad/s²)")
	tuneCmd.Flags().StringVar(&saveTuned, "save", "", "write the config with the best settings to this file")
	return tuneCmd
}

// moveScore penalizes slow moves and high-frequency acceleration content.
// A fallback counts as a full fallback-duration move with maximal chatter.
func moveScore(res planner.Result) float64 {
	if res.Kind == planner.Fallback {
		return 2 * planner.FallbackDuration
	}
	chatter := 0.0
	for i := range res.Trajectory.First().State {
		accel := make([]float64, res.Trajectory.Len())
		for k, s := range res.Trajectory.Samples {
			accel[k] = s.State[i].Acceleration
		}
		chatter = max(chatter, analysis.Chatter(accel).HighBandRatio)
	}
	return res.Trajectory.Duration * (1 + chatter)
}

func tuneSmoothing(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if moves <= 0 {
		return fmt.Errorf("moves must be positive, got %d", moves)
	}
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	sys, err := cfg.Build(zap.NewNop())
	if err != nil {
		return err
	}
	starts, ends := randomMoves(cfg, moves)

	search, err := optim.NewGridSearch(
		[]string{"smoothing_half_width", "deadband"},
		[][]float64{halfWidths, deadbands},
	)
	if err != nil {
		return err
	}

	objective := func(params map[string]float64) (float64, error) {
		opts := cfg.PlannerOptions(zap.NewNop())
		opts.SmoothingHalfWidth = int(params["smoothing_half_width"])
		opts.Deadband = params["deadband"]
		scores := make([]float64, len(starts))
		dynamo.ParallelFor(len(starts), 4, func(lo, hi int) {
			p := planner.New(sys.Arm, sys.Friction, sys.Limits, opts)
			for i := lo; i < hi; i++ {
				scores[i] = moveScore(p.Solve(starts[i], ends[i]))
			}
		})
		score := floats.Sum(scores) / float64(len(scores))
		log.Debug("scored combination", zap.Any("params", params), zap.Float64("score", score))
		return score, nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("tuning over %d combinations x %d moves\n\n", search.Size(), moves)
	best, score, trials, err := search.Search(ctx, objective)
	if err != nil {
		return err
	}

	slices.SortStableFunc(trials, func(a, b optim.Trial) int {
		switch {
		case a.Score < b.Score:
			return -1
		case a.Score > b.Score:
			return 1
		}
		return 0
	})
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "HALF WIDTH\tDEADBAND\tSCORE")
	for _, t := range trials {
		fmt.Fprintf(w, "%.0f\t%.2f\t%.4f\n", t.Params["smoothing_half_width"], t.Params["deadband"], t.Score)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\nbest: half width %.0f, deadband %.2f (score %.4f)\n",
		best["smoothing_half_width"], best["deadband"], score)

	if saveTuned == "" {
		return nil
	}
	tuned := cfg.Clone()
	tuned.Planner.SmoothingHalfWidth = int(best["smoothing_half_width"])
	tuned.Planner.Deadband = best["deadband"]
	if err := config.Save(saveTuned, tuned); err != nil {
		return err
	}
	fmt.Printf("config saved: %s\n", saveTuned)
	return nil
}
