// Package interact resolves pointer events against the laid out graph and
// keeps the selection and hover state of one graph view.
package interact

import (
	"log/slog"
	"math"
	"strconv"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/Dicklesworthstone/coauthor_viewer/pkg/graph"
	"github.com/Dicklesworthstone/coauthor_viewer/pkg/model"
	"github.com/Dicklesworthstone/coauthor_viewer/pkg/render"
	"github.com/Dicklesworthstone/coauthor_viewer/pkg/spatial"
	"github.com/Dicklesworthstone/coauthor_viewer/pkg/zoom"
)

// MinHitPixels is the smallest on-screen radius around a node that counts as
// touching it.
const MinHitPixels = 6

// labelOffset places the link weight label next to the cursor.
var labelOffset = r2.Vec{X: 10, Y: -10}

// Mode is the selection state.
type Mode int

// Selection states. Hover is tracked separately and never changes the mode.
const (
	Idle Mode = iota
	Selected
)

func (m Mode) String() string {
	if m == Selected {
		return "selected"
	}
	return "idle"
}

// Handlers receive the events a view emits. Nil handlers are skipped.
type Handlers struct {
	OnNodeClick func(id model.PersonID)
	OnNodeHover func(id model.PersonID, hovered bool)
	OnBack      func()
}

// Label is the transient link weight shown near the cursor, in screen pixels.
type Label struct {
	Text string
	X, Y float64
}

// Coordinator turns pointer events into selection and hover changes on a
// graph.State. Like the rest of the view it is owned by the host goroutine.
type Coordinator struct {
	state    *graph.State
	zoom     *zoom.Controller
	handlers Handlers
	logger   *slog.Logger

	index   *spatial.Index
	overlay graph.Overlay

	label   Label
	hasLink bool
}

// New returns a coordinator for s viewed through z.
func New(s *graph.State, z *zoom.Controller, h Handlers, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{state: s, zoom: z, handlers: h, logger: logger}
}

// SetIndex installs the nearest-node index built after a layout run. A nil
// index matches nothing.
func (c *Coordinator) SetIndex(ix *spatial.Index) { c.index = ix }

// SetOverlay installs the overlay that link hit-testing honours.
func (c *Coordinator) SetOverlay(o graph.Overlay) { c.overlay = o }

// Mode returns Selected while an author is selected.
func (c *Coordinator) Mode() Mode {
	if c.state.SelectedAuthorID != "" {
		return Selected
	}
	return Idle
}

// EdgeLabel returns the hovered link label, if one is showing.
func (c *Coordinator) EdgeLabel() (Label, bool) { return c.label, c.hasLink }

// PointerMove updates hover state for a pointer at screen x, y. It reports
// whether anything visible changed.
func (c *Coordinator) PointerMove(x, y float64) bool {
	screen := r2.Vec{X: x, Y: y}
	p := c.zoom.Invert(screen)

	if n := c.index.FindNearestNode(p, c.hitRadius()); n != nil {
		changed := c.clearLink()
		return c.hover(n.ID()) || changed
	}

	changed := c.hover("")
	l := spatial.FindLink(p, c.state, c.overlay)
	if l == nil || !c.state.Options.ShowLinkWeightOnHover {
		return c.clearLink() || changed
	}
	weight := c.overlay.Link(l.Index).Weight
	if weight == 0 {
		weight = l.PublicationsCount
	}
	at := r2.Add(screen, labelOffset)
	next := Label{Text: strconv.Itoa(weight), X: at.X, Y: at.Y}
	if c.hasLink && c.label == next {
		return changed
	}
	c.label, c.hasLink = next, true
	return true
}

// Click selects the node under screen x, y. Clicking empty space keeps the
// current selection; Back clears it. Hover state is left alone.
func (c *Coordinator) Click(x, y float64) bool {
	p := c.zoom.Invert(r2.Vec{X: x, Y: y})
	n := c.index.FindNearestNode(p, c.hitRadius())
	if n == nil {
		return false
	}
	id := n.ID()
	c.state.SelectedAuthorID = id
	c.logger.Debug("author selected", "id", id)
	if c.handlers.OnNodeClick != nil {
		c.handlers.OnNodeClick(id)
	}
	return true
}

// PointerLeave clears any hovered node and link label.
func (c *Coordinator) PointerLeave() bool {
	changed := c.hover("")
	return c.clearLink() || changed
}

// Back returns to Idle.
func (c *Coordinator) Back() bool {
	if c.state.SelectedAuthorID == "" {
		return false
	}
	c.logger.Debug("selection cleared", "id", c.state.SelectedAuthorID)
	c.state.SelectedAuthorID = ""
	if c.handlers.OnBack != nil {
		c.handlers.OnBack()
	}
	return true
}

// hover moves the hovered author to id, emitting hover-out for the previous
// one first. An empty id clears the hover.
func (c *Coordinator) hover(id model.PersonID) bool {
	prev := c.state.HoveredAuthorID
	if prev == id {
		return false
	}
	c.state.HoveredAuthorID = id
	if c.handlers.OnNodeHover != nil {
		if prev != "" {
			c.handlers.OnNodeHover(prev, false)
		}
		if id != "" {
			c.handlers.OnNodeHover(id, true)
		}
	}
	return true
}

func (c *Coordinator) clearLink() bool {
	if !c.hasLink {
		return false
	}
	c.label, c.hasLink = Label{}, false
	return true
}

// hitRadius is the node pick radius in simulation units at the current zoom.
func (c *Coordinator) hitRadius() float64 {
	k := c.zoom.Transform().K
	return math.Max(render.DefaultRadius, MinHitPixels/k)
}
