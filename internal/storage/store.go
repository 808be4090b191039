package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/multierr"

	"github.com/san-kum/armsim/internal/dynamo"
)

var ErrRunNotFound = errors.New("storage: run not found")

const (
	metadataFile = "metadata.json"
	samplesFile  = "samples.csv"
)

// Store keeps one directory per saved plan under baseDir.
type Store struct {
	baseDir string
	clock   clock.Clock
}

func New(baseDir string) *Store {
	return NewWithClock(baseDir, clock.New())
}

func NewWithClock(baseDir string, c clock.Clock) *Store {
	return &Store{baseDir: baseDir, clock: c}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

type RunMetadata struct {
	ID         string             `json:"id"`
	Config     string             `json:"config"`
	Timestamp  time.Time          `json:"timestamp"`
	Seed       int64              `json:"seed"`
	Kind       string             `json:"kind"`
	Reason     string             `json:"reason,omitempty"`
	GridPoints int                `json:"grid_points"`
	Joints     []string           `json:"joints"`
	Start      []float64          `json:"start"`
	Goal       []float64          `json:"goal"`
	Duration   float64            `json:"duration"`
	Samples    int                `json:"samples"`
	Metrics    map[string]float64 `json:"metrics"`
}

// Save writes the trajectory samples and then the metadata, and returns the
// new run ID. ID, Timestamp, Duration and Samples are filled in from the
// store and the trajectory. On any error the run directory is removed, so
// List never sees a partial run.
func (s *Store) Save(meta RunMetadata, traj dynamo.Trajectory) (runID string, err error) {
	now := s.clock.Now()
	name := meta.Config
	if name == "" {
		name = "run"
	}
	runID = fmt.Sprintf("%s_%d", name, now.UnixMilli())
	for i := 1; s.exists(runID); i++ {
		runID = fmt.Sprintf("%s_%d_%d", name, now.UnixMilli(), i)
	}
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}
	defer func() {
		if err != nil {
			err = multierr.Append(err, os.RemoveAll(runDir))
			runID = ""
		}
	}()

	meta.ID = runID
	meta.Timestamp = now
	meta.Duration = traj.Duration
	meta.Samples = traj.Len()

	err = writeFile(filepath.Join(runDir, samplesFile), func(f *os.File) error {
		if err := WriteCSV(f, traj); err != nil {
			return fmt.Errorf("write samples: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	err = writeFile(filepath.Join(runDir, metadataFile), func(f *os.File) error {
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		if err := enc.Encode(meta); err != nil {
			return fmt.Errorf("write metadata: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return runID, nil
}

// writeFile creates path, fills it and reports the close error too, since a
// failed flush truncates the file.
func writeFile(path string, fill func(*os.File) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, f.Close()) }()
	return fill(f)
}

func (s *Store) exists(runID string) bool {
	_, err := os.Stat(filepath.Join(s.baseDir, runID))
	return err == nil
}

// List returns every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	slices.SortFunc(runs, func(a, b RunMetadata) int { return a.Timestamp.Compare(b.Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("%s: %w", runID, err)
	}
	return &meta, nil
}

func (s *Store) LoadTrajectory(runID string) (dynamo.Trajectory, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, samplesFile))
	if err != nil {
		if os.IsNotExist(err) {
			return dynamo.Trajectory{}, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return dynamo.Trajectory{}, err
	}
	defer file.Close()

	return ReadCSV(file)
}
