package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/san-kum/armsim/internal/dynamo"
)

// columns per joint in the CSV layout, after the leading time column
var jointColumns = []string{"q", "qd", "qdd", "tau"}

// WriteCSV writes one row per sample: time, then every joint's angle,
// velocity, acceleration and torque grouped by quantity.
func WriteCSV(w io.Writer, traj dynamo.Trajectory) error {
	cw := csv.NewWriter(w)
	if len(traj.Samples) == 0 {
		cw.Flush()
		return cw.Error()
	}

	joints := len(traj.Samples[0].State)
	header := []string{"time"}
	for _, col := range jointColumns {
		for i := 0; i < joints; i++ {
			header = append(header, fmt.Sprintf("%s%d", col, i))
		}
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	format := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	for _, s := range traj.Samples {
		row := make([]string, 0, len(header))
		row = append(row, format(s.Timestamp))
		for _, vals := range [][]float64{s.State.Angles(), s.State.Velocities(), s.State.Accelerations(), s.State.Torques()} {
			for _, v := range vals {
				row = append(row, format(v))
			}
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadCSV parses the layout written by WriteCSV.
func ReadCSV(r io.Reader) (dynamo.Trajectory, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return dynamo.Trajectory{}, err
	}
	if len(records) < 2 {
		return dynamo.Trajectory{}, dynamo.ErrEmptyTrajectory
	}

	width := len(records[0]) - 1
	if width <= 0 || width%len(jointColumns) != 0 {
		return dynamo.Trajectory{}, fmt.Errorf("%w: %d data columns", dynamo.ErrDimensionMismatch, width)
	}
	joints := width / len(jointColumns)

	traj := dynamo.Trajectory{Samples: make([]dynamo.Sample, 0, len(records)-1)}
	for line, record := range records[1:] {
		vals := make([]float64, len(record))
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return dynamo.Trajectory{}, fmt.Errorf("line %d column %d: %w", line+2, j+1, err)
			}
			vals[j] = v
		}

		state := make(dynamo.RobotState, joints)
		for i := range state {
			state[i] = dynamo.JointState{
				Angle:        vals[1+i],
				Velocity:     vals[1+joints+i],
				Acceleration: vals[1+2*joints+i],
				Torque:       vals[1+3*joints+i],
			}
		}
		traj.Samples = append(traj.Samples, dynamo.Sample{State: state, Timestamp: vals[0]})
	}
	traj.Duration = traj.Last().Timestamp
	return traj, traj.Validate()
}

// ExportData is the JSON document written by ExportJSON.
type ExportData struct {
	Run      *RunMetadata        `json:"run,omitempty"`
	Duration float64             `json:"duration"`
	Steps    int                 `json:"steps"`
	Times    []float64           `json:"times"`
	Samples  []dynamo.RobotState `json:"samples"`
}

func ExportJSON(w io.Writer, meta *RunMetadata, traj dynamo.Trajectory) error {
	data := ExportData{
		Run:      meta,
		Duration: traj.Duration,
		Steps:    traj.Len(),
		Times:    make([]float64, traj.Len()),
		Samples:  make([]dynamo.RobotState, traj.Len()),
	}
	for i, s := range traj.Samples {
		data.Times[i] = s.Timestamp
		data.Samples[i] = s.State
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
