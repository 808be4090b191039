package analysis

import (
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/armsim/internal/dynamo"
)

type Point struct{ X, Y float64 }

// PhasePortrait traces one joint's angle (X) against its velocity (Y).
type PhasePortrait struct {
	Joint  int
	Points []Point
}

// NewPhasePortrait returns nil when the joint is out of range.
func NewPhasePortrait(traj dynamo.Trajectory, joint int) *PhasePortrait {
	if len(traj.Samples) == 0 || joint < 0 || joint >= len(traj.Samples[0].State) {
		return nil
	}
	p := &PhasePortrait{Joint: joint, Points: make([]Point, len(traj.Samples))}
	for k, s := range traj.Samples {
		p.Points[k] = Point{X: s.State[joint].Angle, Y: s.State[joint].Velocity}
	}
	return p
}

func (p *PhasePortrait) bounds() (minX, maxX, minY, maxY float64) {
	xs := make([]float64, len(p.Points))
	ys := make([]float64, len(p.Points))
	for i, pt := range p.Points {
		xs[i], ys[i] = pt.X, pt.Y
	}
	return floats.Min(xs), floats.Max(xs), floats.Min(ys), floats.Max(ys)
}

// ASCII renders the portrait on a width×height character grid with axes
// drawn where they cross the plot.
func (p *PhasePortrait) ASCII(width, height int) string {
	if p == nil || len(p.Points) == 0 || width < 2 || height < 2 {
		return ""
	}

	minX, maxX, minY, maxY := p.bounds()
	pad := func(lo, hi float64) (float64, float64) {
		r := hi - lo
		if r == 0 {
			r = 1
		}
		return lo - 0.1*r, hi + 0.1*r
	}
	minX, maxX = pad(minX, maxX)
	minY, maxY = pad(minY, maxY)

	col := func(x float64) int { return int((x - minX) / (maxX - minX) * float64(width-1)) }
	row := func(y float64) int { return height - 1 - int((y-minY)/(maxY-minY)*float64(height-1)) }

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", width))
	}
	if minX <= 0 && maxX >= 0 {
		c := col(0)
		for r := range grid {
			grid[r][c] = '│'
		}
	}
	if minY <= 0 && maxY >= 0 {
		r := row(0)
		for c := range grid[r] {
			if grid[r][c] == '│' {
				grid[r][c] = '┼'
			} else {
				grid[r][c] = '─'
			}
		}
	}
	for _, pt := range p.Points {
		grid[row(pt.Y)][col(pt.X)] = '•'
	}

	var sb strings.Builder
	for _, r := range grid {
		sb.WriteString(string(r))
		sb.WriteByte('\n')
	}
	return sb.String()
}
