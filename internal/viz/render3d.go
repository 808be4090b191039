package viz

import (
	"math"
	"sort"

	"github.com/san-kum/armsim/internal/physics"
)

type Vec3 struct {
	X, Y, Z float64
}

func (v Vec3) Add(o Vec3) Vec3      { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3      { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }
func (v Vec3) Length() float64      { return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z) }

// Camera orbits the origin and projects with a simple perspective divide.
// Y is up.
type Camera struct {
	Distance   float64
	RotX, RotY float64
	Zoom       float64
	// Lift shifts the scene down so a base at the origin sits low in view.
	Lift float64
}

func NewCamera() *Camera {
	return &Camera{Distance: 50, RotX: -0.35, RotY: 0.6, Zoom: 1.8, Lift: 0.45}
}

func (c *Camera) RotateX(a float64) { c.RotX += a }
func (c *Camera) RotateY(a float64) { c.RotY += a }
func (c *Camera) ZoomIn()           { c.Zoom = math.Min(10, c.Zoom*1.2) }
func (c *Camera) ZoomOut()          { c.Zoom = math.Max(0.1, c.Zoom/1.2) }

func (c *Camera) rotate(p Vec3) Vec3 {
	cy, sy := math.Cos(c.RotY), math.Sin(c.RotY)
	p.X, p.Z = p.X*cy+p.Z*sy, -p.X*sy+p.Z*cy
	cx, sx := math.Cos(c.RotX), math.Sin(c.RotX)
	p.Y, p.Z = p.Y*cx-p.Z*sx, p.Y*sx+p.Z*cx
	return p
}

// Project maps a world point to sub-pixel coordinates on a sw×sh screen.
// It returns the depth and whether the point is in front of the camera and
// on screen.
func (c *Camera) Project(p Vec3, sw, sh int) (int, int, float64, bool) {
	p.Y -= c.Lift
	rot := c.rotate(p).Scale(c.Zoom)
	if rot.Z >= c.Distance-0.1 {
		return 0, 0, 0, false
	}
	persp := c.Distance / (c.Distance - rot.Z)
	unit := float64(min(sw, sh)) / 3
	sx := int(rot.X*persp*unit) + sw/2
	sy := int(-rot.Y*persp*unit) + sh/2
	return sx, sy, rot.Z, sx >= 0 && sx < sw && sy >= 0 && sy < sh
}

type Edge struct {
	Start, End Vec3
}

type Wireframe struct {
	Edges  []Edge
	Joints []Vec3
}

func (w *Wireframe) AddEdge(s, e Vec3) { w.Edges = append(w.Edges, Edge{s, e}) }

// Render3D draws the wireframe far to near, then marks the joints.
func Render3D(c *Canvas, w *Wireframe, cam *Camera) {
	if c == nil || w == nil || cam == nil {
		return
	}
	pw, ph := c.PixelSize()

	type projected struct {
		x1, y1, x2, y2 int
		depth          float64
	}
	proj := make([]projected, 0, len(w.Edges))
	for _, e := range w.Edges {
		x1, y1, d1, v1 := cam.Project(e.Start, pw, ph)
		x2, y2, d2, v2 := cam.Project(e.End, pw, ph)
		if v1 || v2 {
			proj = append(proj, projected{x1, y1, x2, y2, (d1 + d2) / 2})
		}
	}
	sort.Slice(proj, func(i, j int) bool { return proj[i].depth < proj[j].depth })
	for _, e := range proj {
		c.DrawLine(e.x1, e.y1, e.x2, e.y2)
	}
	for _, j := range w.Joints {
		if x, y, _, ok := cam.Project(j, pw, ph); ok {
			c.DrawDot(x, y, 1)
		}
	}
}

// ArmPoints runs forward kinematics for drawing: the base link stands
// vertical and yaws with joint 0, lever joints pitch the chain in the yawed
// vertical plane, and roll joints extend it without bending. The result
// holds the base origin followed by the far end of every link.
func ArmPoints(params physics.Params, angles []float64) []Vec3 {
	pts := make([]Vec3, 0, len(params.Joints)+1)
	pts = append(pts, Vec3{})
	if len(params.Joints) == 0 || len(angles) < len(params.Joints) {
		return pts
	}

	yaw := angles[0]
	p := Vec3{Y: params.Joints[0].Length}
	pts = append(pts, p)

	pitch := 0.0
	for i := 1; i < len(params.Joints); i++ {
		j := params.Joints[i]
		if j.GravityLever {
			pitch += angles[i]
		}
		radial, up := j.Length*math.Cos(pitch), j.Length*math.Sin(pitch)
		p = p.Add(Vec3{X: radial * math.Cos(yaw), Y: up, Z: radial * math.Sin(yaw)})
		pts = append(pts, p)
	}
	return pts
}

// ArmWireframe connects ArmPoints and adds a floor cross for reference.
func ArmWireframe(params physics.Params, angles []float64) *Wireframe {
	pts := ArmPoints(params, angles)
	w := &Wireframe{Joints: pts}
	for i := 1; i < len(pts); i++ {
		w.AddEdge(pts[i-1], pts[i])
	}
	const floor = 0.6
	w.AddEdge(Vec3{X: -floor}, Vec3{X: floor})
	w.AddEdge(Vec3{Z: -floor}, Vec3{Z: floor})
	return w
}
