// Package zoom keeps the scale and translation of the graph view and maps
// pointer positions back into simulation space.
package zoom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/Dicklesworthstone/coauthor_viewer/pkg/graph"
	"github.com/Dicklesworthstone/coauthor_viewer/pkg/layout"
)

// MaxScale is the largest zoom factor the view allows.
const MaxScale = 10

// Transform scales canvas coordinates by K and then translates them by X, Y.
type Transform struct {
	K float64
	X float64
	Y float64
}

// Identity is the transform that leaves coordinates untouched.
var Identity = Transform{K: 1}

// Apply maps a canvas point to a screen point.
func (t Transform) Apply(p r2.Vec) r2.Vec {
	return r2.Vec{X: p.X*t.K + t.X, Y: p.Y*t.K + t.Y}
}

// Invert maps a screen point back to a canvas point.
func (t Transform) Invert(p r2.Vec) r2.Vec {
	return r2.Vec{X: (p.X - t.X) / t.K, Y: (p.Y - t.Y) / t.K}
}

// Extent bounds the scale of a Transform.
type Extent struct {
	Min float64
	Max float64
}

// DefaultExtent is used when the graph gives nothing to frame.
var DefaultExtent = Extent{Min: 1, Max: MaxScale}

// Clamp returns k limited to the extent.
func (e Extent) Clamp(k float64) float64 {
	return math.Max(e.Min, math.Min(e.Max, k))
}

// Viewport is the size of the drawing surface in pixels.
type Viewport struct {
	Width  float64
	Height float64
}

// Offset is the translation that centers the logical layout canvas in the
// viewport.
func (v Viewport) Offset() r2.Vec {
	return r2.Vec{
		X: (v.Width - layout.GraphWidth) / 2,
		Y: (v.Height - layout.GraphHeight) / 2,
	}
}

// Center is the middle of the viewport.
func (v Viewport) Center() r2.Vec {
	return r2.Vec{X: v.Width / 2, Y: v.Height / 2}
}

// ToCanvas maps a simulation point to an untransformed canvas point.
func (v Viewport) ToCanvas(p r2.Vec) r2.Vec { return r2.Add(p, v.Offset()) }

// ToSim maps an untransformed canvas point to a simulation point.
func (v Viewport) ToSim(p r2.Vec) r2.Vec { return r2.Sub(p, v.Offset()) }

// LayoutCenter is the point the simulation pulls the graph toward.
var LayoutCenter = r2.Vec{X: layout.GraphWidth / 2, Y: layout.GraphHeight / 2}

// ComputeExtent returns the scale range for a laid out graph. The minimum is
// the largest scale, never above 1, at which the box spanning twice the
// farthest deviation of any node from center fits the viewport. Graphs with
// no nodes or no spread fall back to DefaultExtent.
func ComputeExtent(nodes []*graph.Node, center r2.Vec, vp Viewport) Extent {
	var dx, dy float64
	seen := false
	for _, n := range nodes {
		if math.IsNaN(n.X) || math.IsNaN(n.Y) {
			continue
		}
		seen = true
		dx = math.Max(dx, math.Abs(n.X-center.X))
		dy = math.Max(dy, math.Abs(n.Y-center.Y))
	}
	if !seen || (dx == 0 && dy == 0) {
		return DefaultExtent
	}

	lo := 1.0
	if dx > 0 {
		lo = math.Min(lo, vp.Width/(2*dx))
	}
	if dy > 0 {
		lo = math.Min(lo, vp.Height/(2*dy))
	}
	if !(lo > 0) || math.IsInf(lo, 0) {
		return DefaultExtent
	}
	return Extent{Min: lo, Max: MaxScale}
}
