package zoom

import (
	"math"
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/Dicklesworthstone/coauthor_viewer/pkg/graph"
)

func nodesAt(pts ...r2.Vec) []*graph.Node {
	nodes := make([]*graph.Node, len(pts))
	for i, p := range pts {
		nodes[i] = &graph.Node{Index: graph.NodeRef(i), X: p.X, Y: p.Y}
	}
	return nodes
}

func TestTransformInvertRoundTrip(t *testing.T) {
	tr := Transform{K: 2.5, X: -40, Y: 12}
	p := r2.Vec{X: 13, Y: -7}
	got := tr.Invert(tr.Apply(p))
	assert.InDelta(t, p.X, got.X, 1e-12)
	assert.InDelta(t, p.Y, got.Y, 1e-12)
}

func TestComputeExtent(t *testing.T) {
	vp := Viewport{Width: 800, Height: 600}

	tests := []struct {
		name  string
		nodes []*graph.Node
		want  Extent
	}{
		{"no nodes", nil, DefaultExtent},
		{"all at center", nodesAt(LayoutCenter, LayoutCenter), DefaultExtent},
		{"small graph never zooms past 1", nodesAt(r2.Vec{X: 190, Y: 150}, r2.Vec{X: 210, Y: 150}), Extent{Min: 1, Max: MaxScale}},
		{"wide graph", nodesAt(r2.Vec{X: -600, Y: 150}, r2.Vec{X: 1000, Y: 150}), Extent{Min: 0.5, Max: MaxScale}},
		{"tall graph", nodesAt(r2.Vec{X: 200, Y: -1050}, r2.Vec{X: 200, Y: 160}), Extent{Min: 0.25, Max: MaxScale}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeExtent(tt.nodes, LayoutCenter, vp)
			assert.InDelta(t, tt.want.Min, got.Min, 1e-12)
			assert.Equal(t, tt.want.Max, got.Max)
		})
	}
}

func TestExtentProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)
	coord := gen.Float64Range(-5000, 5000)
	pts := gen.SliceOfN(8, gen.Struct(reflect.TypeOf(r2.Vec{}), map[string]gopter.Gen{"X": coord, "Y": coord}))

	properties.Property("minimum scale never exceeds 1", prop.ForAll(
		func(ps []r2.Vec) bool {
			e := ComputeExtent(nodesAt(ps...), LayoutCenter, Viewport{Width: 640, Height: 480})
			return e.Min > 0 && e.Min <= 1 && e.Max == MaxScale
		},
		pts,
	))

	properties.Property("fit at minimum scale shows every node", prop.ForAll(
		func(ps []r2.Vec) bool {
			vp := Viewport{Width: 640, Height: 480}
			c := NewController(vp, Options{})
			c.OnLayout(nodesAt(ps...))
			if c.Transform().K != c.Extent().Min {
				return false
			}
			for _, p := range ps {
				s := c.Apply(p)
				if s.X < -1 || s.X > vp.Width+1 || s.Y < -1 || s.Y > vp.Height+1 {
					return false
				}
			}
			return true
		},
		pts,
	))

	properties.TestingRun(t)
}

func TestControllerClampsScale(t *testing.T) {
	c := NewController(Viewport{Width: 400, Height: 300}, Options{})
	c.SetExtent(Extent{Min: 0.5, Max: MaxScale})

	c.ZoomTo(Transform{K: 50})
	assert.Equal(t, float64(MaxScale), c.Transform().K)

	c.ZoomTo(Transform{K: 0.01})
	assert.Equal(t, 0.5, c.Transform().K)

	c.ZoomTo(Transform{K: -3})
	assert.Equal(t, 0.5, c.Transform().K)

	for i := 0; i < 50; i++ {
		c.Wheel(-500, r2.Vec{X: 10, Y: 10})
	}
	assert.Equal(t, float64(MaxScale), c.Transform().K)
	for i := 0; i < 50; i++ {
		c.Wheel(500, r2.Vec{X: 10, Y: 10})
	}
	assert.Equal(t, 0.5, c.Transform().K)
}

func TestWheelKeepsPointUnderCursor(t *testing.T) {
	c := NewController(Viewport{Width: 800, Height: 600}, Options{})
	at := r2.Vec{X: 321, Y: 123}
	before := c.Invert(at)

	c.Wheel(-300, at)
	require.Greater(t, c.Transform().K, 1.0)

	after := c.Invert(at)
	assert.InDelta(t, before.X, after.X, 1e-9)
	assert.InDelta(t, before.Y, after.Y, 1e-9)
}

func TestDragAndInvert(t *testing.T) {
	vp := Viewport{Width: 600, Height: 400}
	c := NewController(vp, Options{})

	sim := c.Invert(vp.Center())
	assert.InDelta(t, LayoutCenter.X, sim.X, 1e-12)
	assert.InDelta(t, LayoutCenter.Y, sim.Y, 1e-12)

	c.Drag(30, -20)
	sim = c.Invert(r2.Vec{X: 330, Y: 180})
	assert.InDelta(t, LayoutCenter.X, sim.X, 1e-12)
	assert.InDelta(t, LayoutCenter.Y, sim.Y, 1e-12)
}

func TestOnLayoutRefitsByDefault(t *testing.T) {
	vp := Viewport{Width: 400, Height: 300}
	c := NewController(vp, Options{})
	c.ZoomTo(Transform{K: 4, X: -300, Y: -100})

	nodes := nodesAt(r2.Vec{X: -200, Y: 150}, r2.Vec{X: 600, Y: 150})
	e := c.OnLayout(nodes)
	assert.InDelta(t, 0.5, e.Min, 1e-12)
	assert.InDelta(t, 0.5, c.Transform().K, 1e-12)

	mid := c.Apply(LayoutCenter)
	assert.InDelta(t, vp.Width/2, mid.X, 1e-9)
	assert.InDelta(t, vp.Height/2, mid.Y, 1e-9)
}

func TestOnLayoutPreservesUserZoom(t *testing.T) {
	c := NewController(Viewport{Width: 400, Height: 300}, Options{PreserveOnRelayout: true})
	user := Transform{K: 4, X: -300, Y: -100}
	c.ZoomTo(user)

	c.OnLayout(nodesAt(r2.Vec{X: -200, Y: 150}, r2.Vec{X: 600, Y: 150}))
	assert.Equal(t, user, c.Transform())

	c.ZoomTo(Transform{K: 0.5})
	c.OnLayout(nodesAt(r2.Vec{X: 190, Y: 150}, r2.Vec{X: 210, Y: 150}))
	assert.Equal(t, 1.0, c.Transform().K, "scale is re-clamped into the new extent")
}

func TestComputeExtentIgnoresUnplacedNodes(t *testing.T) {
	nodes := nodesAt(r2.Vec{X: math.NaN(), Y: 0})
	assert.Equal(t, DefaultExtent, ComputeExtent(nodes, LayoutCenter, Viewport{Width: 10, Height: 10}))
}
