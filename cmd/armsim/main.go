package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/armsim/internal/config"
	"github.com/san-kum/armsim/internal/dynamo"
	"github.com/san-kum/armsim/internal/logging"
	"github.com/san-kum/armsim/internal/playback"
	"github.com/san-kum/armsim/internal/viz"
)

var (
	dataDir    string
	configFile string
	presetName string
	debug      bool
	logFile    string
	seed       int64
	gridPoints int
	startPose  []float64
	goalPose   []float64
	dryRun     bool
	moves      int
	variable   string
	joint      string
	velocity   float64
	output     string
	snapshot   bool
	continuous bool
)

// main loads an optional .env, registers commands and runs the preset
// picker when no subcommand is given.
func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "warning: .env: %v\n", err)
	}

	rootCmd := &cobra.Command{
		Use:   "armsim",
		Short: "time-optimal arm trajectory planner",
		RunE:  runPicker,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", envOr("ARMSIM_DATA", ".armsim"), "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", os.Getenv("ARMSIM_CONFIG"), "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&presetName, "preset", "", "use preset configuration")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "debug logging")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "armsim.log", "log file for full-screen views")

	planCmd := &cobra.Command{
		Use:   "plan",
		Short: "plan a move and save it as a run",
		Args:  cobra.NoArgs,
		RunE:  planMove,
	}
	planCmd.Flags().Int64Var(&seed, "seed", 1, "random seed")
	planCmd.Flags().IntVar(&gridPoints, "grid", 200, "path grid intervals")
	planCmd.Flags().Float64SliceVar(&startPose, "start", nil, "start joint angles (rad)")
	planCmd.Flags().Float64SliceVar(&goalPose, "goal", nil, "goal joint angles (rad)")
	planCmd.Flags().BoolVar(&dryRun, "dry-run", false, "print metrics without saving")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run results",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&variable, "var", "angle", "angle, velocity, acceleration or torque")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "chatter and frequency analysis of joint accelerations",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().StringVar(&joint, "joint", "0", "joint name or index for the spectrum plot")

	phaseCmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "angle/velocity phase plot of one joint",
		Args:  cobra.ExactArgs(1),
		RunE:  phasePlot,
	}
	phaseCmd.Flags().StringVar(&joint, "joint", "0", "joint name or index")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run samples to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export joint angle curves to SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&output, "output", "o", "", "output file (default <run_id>.svg)")
	exportSVGCmd.Flags().BoolVar(&snapshot, "snapshot", false, "draw the arm at the goal pose instead")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "play random moves in the terminal",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	liveCmd.Flags().Int64Var(&seed, "seed", 1, "random seed")
	liveCmd.Flags().IntVar(&gridPoints, "grid", 200, "path grid intervals")
	liveCmd.Flags().BoolVar(&continuous, "continuous", false, "start in continuous mode")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "plan random moves in parallel and report throughput",
		Args:  cobra.NoArgs,
		RunE:  benchPlanner,
	}
	benchCmd.Flags().Int64Var(&seed, "seed", 1, "random seed")
	benchCmd.Flags().IntVar(&gridPoints, "grid", 200, "path grid intervals")
	benchCmd.Flags().IntVar(&moves, "moves", 200, "number of moves")

	frictionCmd := &cobra.Command{
		Use:   "friction [joint]",
		Short: "show a joint's friction curve",
		Args:  cobra.ExactArgs(1),
		RunE:  showFriction,
	}
	frictionCmd.Flags().Float64Var(&velocity, "velocity", 0, "dump the network state at this velocity (rad/s)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE:  listPresets,
	}

	rootCmd.AddCommand(planCmd, listCmd, plotCmd, analyzeCmd, phaseCmd, exportCSVCmd, exportJSONCmd, exportSVGCmd, liveCmd, benchCmd, frictionCmd, presetsCmd, newTuneCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// loadConfig resolves the preset, then the config file (which replaces the
// preset), then any flags the user set explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if presetName != "" {
		cfg = config.GetPreset(presetName)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", presetName, config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("grid") {
		cfg.Planner.GridPoints = gridPoints
	}
	if flags.Changed("start") {
		cfg.Start = startPose
	}
	if flags.Changed("goal") {
		cfg.Goal = goalPose
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger() (*zap.Logger, error) {
	return logging.New("armsim", debug)
}

// newFileLogger keeps log lines off the screen while a full-screen view runs.
func newFileLogger() (*zap.Logger, error) {
	return logging.NewToFile("armsim", debug, logFile)
}

// jointIndex accepts a joint name or a numeric index.
func jointIndex(names []string, arg string) (int, error) {
	for i, name := range names {
		if strings.EqualFold(name, arg) {
			return i, nil
		}
	}
	i, err := strconv.Atoi(arg)
	if err != nil || i < 0 || i >= len(names) {
		return 0, fmt.Errorf("%w: %q", dynamo.ErrUnknownJoint, arg)
	}
	return i, nil
}

func jointNames(cfg *config.Config) []string {
	names := make([]string, len(cfg.Arm.Joints))
	for i, j := range cfg.Arm.Joints {
		names[i] = j.Name
	}
	return names
}

func runPicker(cmd *cobra.Command, args []string) error {
	log, err := newFileLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	names := config.ListPresets()
	info := make(map[string]string, len(names))
	for _, name := range names {
		cfg := config.Presets[name]
		info[name] = fmt.Sprintf("grid %d, smoothing %d, dwell %.1fs, min distance %.1f",
			cfg.Planner.GridPoints, cfg.Planner.SmoothingHalfWidth, cfg.Playback.Dwell, cfg.Playback.MinDistance)
	}

	launch := func(name string) (viz.Model, error) {
		cfg := config.GetPreset(name)
		if cfg == nil {
			return viz.Model{}, fmt.Errorf("unknown preset: %s", name)
		}
		return newLiveModel(cfg, log)
	}
	return viz.Run(viz.NewPicker(names, info, launch))
}

func newLiveModel(cfg *config.Config, log *zap.Logger) (viz.Model, error) {
	sys, err := cfg.Build(log)
	if err != nil {
		return viz.Model{}, err
	}
	ctl, err := sys.NewController(cfg, playback.WithLogger(log.Named("playback")))
	if err != nil {
		return viz.Model{}, err
	}
	return viz.NewModel(ctl, sys.Arm, sys.Limits, cfg.TickInterval()), nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log, err := newFileLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	m, err := newLiveModel(cfg, log)
	if err != nil {
		return err
	}
	if continuous {
		m.SetContinuous(true)
	}
	return viz.Run(m)
}

func listPresets(cmd *cobra.Command, args []string) error {
	fmt.Println("presets:")
	for _, name := range config.ListPresets() {
		fmt.Printf("  %s\n", name)
	}
	return nil
}
