package export

import (
	"strings"
	"testing"

	"github.com/san-kum/armsim/internal/dynamo"
	"github.com/san-kum/armsim/internal/physics"
	"github.com/san-kum/armsim/internal/planner"
	"github.com/san-kum/armsim/internal/viz"
)

func TestCanvasToSVG(t *testing.T) {
	if CanvasToSVG(nil, 2) != "" {
		t.Error("nil canvas should give empty output")
	}

	c := viz.NewCanvas(4, 2)
	c.Set(0, 0)
	c.Set(7, 7)
	svg := CanvasToSVG(c, 2)

	if !strings.HasPrefix(svg, "<?xml") || !strings.HasSuffix(svg, "</svg>") {
		t.Fatalf("malformed document:\n%s", svg)
	}
	if n := strings.Count(svg, "<circle"); n != 2 {
		t.Errorf("expected 2 dots, got %d", n)
	}
	if !strings.Contains(svg, `width="16" height="16"`) {
		t.Errorf("unexpected size in %q", svg[:120])
	}
}

func TestArmSnapshotSVG(t *testing.T) {
	params := physics.ReferenceParams()
	w := viz.ArmWireframe(params, make([]float64, len(params.Joints)))
	svg := ArmSnapshotSVG(w, 60, 30, 2)
	if strings.Count(svg, "<circle") == 0 {
		t.Error("arm snapshot drew nothing")
	}
}

func TestTrajectorySVG(t *testing.T) {
	start := dynamo.FromAngles([]float64{0, 0, 0, 0, 0, 0})
	end := dynamo.FromAngles([]float64{1, -0.5, 0, 0, 0, 0})
	traj := planner.LinearFallback(start, end)

	svg := TrajectorySVG(traj, 400, 200, []string{"base", "shoulder"})
	if n := strings.Count(svg, "<path"); n != 6 {
		t.Errorf("expected one path per joint, got %d", n)
	}
	if !strings.Contains(svg, ">base<") || !strings.Contains(svg, ">q5<") {
		t.Error("legend should use names and fall back to indices")
	}
	if !strings.Contains(svg, "stroke-dasharray") {
		t.Error("zero line missing for a range spanning zero")
	}

	if TrajectorySVG(dynamo.Trajectory{}, 400, 200, nil) != "" {
		t.Error("empty trajectory should give empty output")
	}
}
