package zoom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/Dicklesworthstone/coauthor_viewer/pkg/graph"
)

// WheelStep converts one unit of wheel delta into a power-of-two zoom step.
const WheelStep = 0.002

// Options tune the controller.
type Options struct {
	// PreserveOnRelayout keeps the user's zoom and pan when a new layout
	// lands, clamping it into the new extent. When false every completed
	// layout re-fits the view at the minimum scale.
	PreserveOnRelayout bool `yaml:"preserve_on_relayout"`
}

// Controller owns the view transform. Every change goes through the extent,
// so the scale is always within [Min, Max].
type Controller struct {
	vp     Viewport
	opts   Options
	extent Extent
	t      Transform
}

// NewController returns a controller for vp at identity scale.
func NewController(vp Viewport, opts Options) *Controller {
	return &Controller{vp: vp, opts: opts, extent: DefaultExtent, t: Identity}
}

// Transform returns the current transform.
func (c *Controller) Transform() Transform { return c.t }

// Extent returns the current scale range.
func (c *Controller) Extent() Extent { return c.extent }

// Viewport returns the viewport the controller frames.
func (c *Controller) Viewport() Viewport { return c.vp }

// Resize changes the viewport and keeps the view centered on the same point.
func (c *Controller) Resize(vp Viewport) {
	focus := c.t.Invert(c.vp.Center())
	c.vp = vp
	c.centerOn(focus, c.t.K)
}

// ZoomTo sets the transform, clamping its scale.
func (c *Controller) ZoomTo(t Transform) {
	if !(t.K > 0) {
		t.K = c.extent.Min
	}
	t.K = c.extent.Clamp(t.K)
	c.t = t
}

// Fit zooms to the minimum scale with the layout centered in the viewport.
func (c *Controller) Fit() {
	c.centerOn(c.vp.ToCanvas(LayoutCenter), c.extent.Min)
}

// ScaleBy multiplies the scale by factor, keeping the screen point at fixed.
func (c *Controller) ScaleBy(factor float64, at r2.Vec) {
	if !(factor > 0) {
		return
	}
	p := c.t.Invert(at)
	k := c.extent.Clamp(c.t.K * factor)
	c.t = Transform{K: k, X: at.X - p.X*k, Y: at.Y - p.Y*k}
}

// Wheel zooms around at; positive delta zooms out.
func (c *Controller) Wheel(delta float64, at r2.Vec) {
	c.ScaleBy(math.Pow(2, -delta*WheelStep), at)
}

// Drag pans the view by a screen-space offset.
func (c *Controller) Drag(dx, dy float64) {
	c.t.X += dx
	c.t.Y += dy
}

// SetExtent replaces the scale range and re-clamps the current scale around
// the viewport center.
func (c *Controller) SetExtent(e Extent) {
	if !(e.Min > 0) || e.Max < e.Min {
		e = DefaultExtent
	}
	c.extent = e
	if k := e.Clamp(c.t.K); k != c.t.K {
		c.ScaleBy(k/c.t.K, c.vp.Center())
	}
}

// OnLayout recomputes the extent from freshly laid out nodes and updates the
// view per Options.PreserveOnRelayout.
func (c *Controller) OnLayout(nodes []*graph.Node) Extent {
	c.SetExtent(ComputeExtent(nodes, LayoutCenter, c.vp))
	if !c.opts.PreserveOnRelayout {
		c.Fit()
	}
	return c.extent
}

// Invert maps a screen point to simulation space.
func (c *Controller) Invert(p r2.Vec) r2.Vec {
	return c.vp.ToSim(c.t.Invert(p))
}

// Apply maps a simulation point to screen space.
func (c *Controller) Apply(p r2.Vec) r2.Vec {
	return c.t.Apply(c.vp.ToCanvas(p))
}

// centerOn sets scale k with canvas point p at the viewport center.
func (c *Controller) centerOn(p r2.Vec, k float64) {
	k = c.extent.Clamp(k)
	mid := c.vp.Center()
	c.t = Transform{K: k, X: mid.X - p.X*k, Y: mid.Y - p.Y*k}
}
