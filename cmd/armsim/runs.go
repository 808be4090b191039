package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/armsim/internal/analysis"
	"github.com/san-kum/armsim/internal/config"
	"github.com/san-kum/armsim/internal/dynamo"
	"github.com/san-kum/armsim/internal/export"
	"github.com/san-kum/armsim/internal/storage"
	"github.com/san-kum/armsim/internal/viz"
)

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCONFIG\tTIME\tKIND\tDURATION\tSAMPLES\tPEAK TORQUE")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.3fs\t%d\t%.0f%%\n",
			run.ID,
			run.Config,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Kind,
			run.Duration,
			run.Samples,
			100*run.Metrics["peak_torque_ratio"],
		)
	}

	return w.Flush()
}

// loadRun returns a run's metadata and trajectory.
func loadRun(runID string) (*storage.RunMetadata, dynamo.Trajectory, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, dynamo.Trajectory{}, err
	}
	traj, err := st.LoadTrajectory(runID)
	if err != nil {
		return nil, dynamo.Trajectory{}, err
	}
	return meta, traj, nil
}

func jointLabel(meta *storage.RunMetadata, i int) string {
	if i < len(meta.Joints) && meta.Joints[i] != "" {
		return meta.Joints[i]
	}
	return fmt.Sprintf("q%d", i)
}

// runJoints labels every joint of a run, falling back to indices.
func runJoints(meta *storage.RunMetadata, n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = jointLabel(meta, i)
	}
	return names
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, traj, err := loadRun(args[0])
	if err != nil {
		return err
	}

	var column func(dynamo.RobotState) []float64
	unit := ""
	switch variable {
	case "angle":
		column, unit = dynamo.RobotState.Angles, "rad"
	case "velocity":
		column, unit = dynamo.RobotState.Velocities, "rad/s"
	case "acceleration":
		column, unit = dynamo.RobotState.Accelerations, "rad/s²"
	case "torque":
		column, unit = dynamo.RobotState.Torques, "Nm"
	default:
		return fmt.Errorf("unknown variable: %s (angle, velocity, acceleration, torque)", variable)
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("kind: %s\n", meta.Kind)
	fmt.Printf("samples: %d over %.3fs\n\n", traj.Len(), traj.Duration)

	joints := len(traj.First().State)
	series := make([][]float64, joints)
	for _, s := range traj.Samples {
		for i, v := range column(s.State) {
			series[i] = append(series[i], v)
		}
	}

	for i, data := range series {
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("%s %s (%s)", jointLabel(meta, i), variable, unit)),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, traj, err := loadRun(args[0])
	if err != nil {
		return err
	}

	joints := len(traj.First().State)
	idx, err := jointIndex(runJoints(meta, joints), joint)
	if err != nil {
		return err
	}

	fmt.Printf("chatter analysis: %s\n", meta.ID)
	fmt.Printf("kind: %s\n\n", meta.Kind)

	accel := make([][]float64, joints)
	for _, s := range traj.Samples {
		for i, a := range s.State.Accelerations() {
			accel[i] = append(accel[i], a)
		}
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "JOINT\tPEAK\tSIGN CHANGES\tHIGH BAND\tDOMINANT BIN")
	for i, a := range accel {
		r := analysis.Chatter(a)
		fmt.Fprintf(w, "%s\t%.3f\t%d\t%.1f%%\t%d\n", jointLabel(meta, i), r.Peak, r.SignChanges, 100*r.HighBandRatio, r.DominantBin)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Println()

	ps := analysis.PowerSpectrum(accel[idx])
	if len(ps) < 2 {
		return fmt.Errorf("no data")
	}
	graph := asciigraph.Plot(ps,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("power spectrum (%s acceleration)", jointLabel(meta, idx))),
	)
	fmt.Println(graph)
	fmt.Println()

	// Samples are not evenly spaced in time, so this is the mean-rate estimate.
	bin := analysis.DominantBin(ps)
	if meta.Duration > 0 && bin > 0 {
		freq := float64(bin) / meta.Duration
		fmt.Printf("dominant frequency: %.3f hz\n", freq)
		fmt.Printf("period: %.3f s\n", 1.0/freq)
	}
	return nil
}

func phasePlot(cmd *cobra.Command, args []string) error {
	meta, traj, err := loadRun(args[0])
	if err != nil {
		return err
	}
	idx, err := jointIndex(runJoints(meta, len(traj.First().State)), joint)
	if err != nil {
		return err
	}
	p := analysis.NewPhasePortrait(traj, idx)

	fmt.Printf("phase portrait: %s\n", meta.ID)
	fmt.Printf("x: %s angle (rad)  y: velocity (rad/s)\n\n", jointLabel(meta, idx))
	fmt.Print(p.ASCII(70, 22))
	return nil
}

// openOutput returns stdout when path is empty.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func exportCSV(cmd *cobra.Command, args []string) error {
	_, traj, err := loadRun(args[0])
	if err != nil {
		return err
	}
	out, err := openOutput(output)
	if err != nil {
		return err
	}
	defer out.Close()
	return storage.WriteCSV(out, traj)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	meta, traj, err := loadRun(args[0])
	if err != nil {
		return err
	}
	out, err := openOutput(output)
	if err != nil {
		return err
	}
	defer out.Close()
	return storage.ExportJSON(out, meta, traj)
}

func exportSVG(cmd *cobra.Command, args []string) error {
	meta, traj, err := loadRun(args[0])
	if err != nil {
		return err
	}

	var svg string
	if snapshot {
		cfg := config.GetPreset(meta.Config)
		if cfg == nil {
			cfg = config.DefaultConfig()
		}
		wf := viz.ArmWireframe(cfg.PhysicsParams(), traj.Last().State.Angles())
		svg = export.ArmSnapshotSVG(wf, 80, 40, 4)
	} else {
		svg = export.TrajectorySVG(traj, 800, 400, meta.Joints)
	}
	if svg == "" {
		return fmt.Errorf("nothing to draw for %s", meta.ID)
	}

	path := output
	if path == "" {
		path = meta.ID + ".svg"
	}
	if err := os.WriteFile(path, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("exported to %s\n", path)
	return nil
}
