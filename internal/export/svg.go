package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/armsim/internal/dynamo"
	"github.com/san-kum/armsim/internal/viz"
)

// Palette cycles per joint in TrajectorySVG.
var Palette = []string{"#ff6b35", "#00d4aa", "#4dabf7", "#ffd43b", "#cc5de8", "#ff8787"}

const svgBackground = "#0a0a0a"

// CanvasToSVG converts a Braille canvas to SVG format, one circle per lit dot.
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}

	pw, ph := canvas.PixelSize()
	width := float64(pw) * scale
	height := float64(ph) * scale

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
<g fill="#00ff00">
`, width, height, width, height, svgBackground)

	dotRadius := scale * 0.4
	for y := 0; y < ph; y++ {
		for x := 0; x < pw; x++ {
			if !canvas.IsSet(x, y) {
				continue
			}
			cx := float64(x)*scale + scale/2
			cy := float64(y)*scale + scale/2
			fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n", cx, cy, dotRadius)
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// ArmSnapshotSVG renders the arm at the given angles through the default camera.
func ArmSnapshotSVG(w *viz.Wireframe, cols, rows int, scale float64) string {
	canvas := viz.NewCanvas(cols, rows)
	viz.Render3D(canvas, w, viz.NewCamera())
	return CanvasToSVG(canvas, scale)
}

// TrajectorySVG plots every joint angle against time, one path per joint.
// names labels the legend and may be shorter than the joint count.
func TrajectorySVG(traj dynamo.Trajectory, width, height int, names []string) string {
	if traj.Len() < 2 {
		return ""
	}
	joints := len(traj.First().State)

	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, s := range traj.Samples {
		for _, j := range s.State {
			minY = math.Min(minY, j.Angle)
			maxY = math.Max(maxY, j.Angle)
		}
	}

	// Add padding
	rangeY := maxY - minY
	if rangeY == 0 {
		rangeY = 1
	}
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeY = maxY - minY
	rangeX := traj.Last().Timestamp
	if rangeX <= 0 {
		rangeX = 1
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, svgBackground)

	if minY < 0 && maxY > 0 {
		zero := float64(height) - (0-minY)/rangeY*float64(height)
		fmt.Fprintf(&sb, "<line x1=\"0\" y1=\"%.1f\" x2=\"%d\" y2=\"%.1f\" stroke=\"#333333\" stroke-dasharray=\"4 4\"/>\n", zero, width, zero)
	}

	for i := 0; i < joints; i++ {
		color := Palette[i%len(Palette)]
		fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="M`, color)
		for k, s := range traj.Samples {
			x := s.Timestamp / rangeX * float64(width)
			y := float64(height) - (s.State[i].Angle-minY)/rangeY*float64(height)
			if k == 0 {
				fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
			} else {
				fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
			}
		}
		sb.WriteString("\"/>\n")

		label := fmt.Sprintf("q%d", i)
		if i < len(names) && names[i] != "" {
			label = names[i]
		}
		fmt.Fprintf(&sb, "<text x=\"8\" y=\"%d\" fill=\"%s\" font-family=\"monospace\" font-size=\"11\">%s</text>\n", 16+14*i, color, label)
	}

	sb.WriteString("</svg>")
	return sb.String()
}
