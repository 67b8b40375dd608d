package interact

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dicklesworthstone/coauthor_viewer/pkg/graph"
	"github.com/Dicklesworthstone/coauthor_viewer/pkg/model"
	"github.com/Dicklesworthstone/coauthor_viewer/pkg/spatial"
	"github.com/Dicklesworthstone/coauthor_viewer/pkg/zoom"
)

type recorder struct {
	events []string
}

func (r *recorder) handlers() Handlers {
	return Handlers{
		OnNodeClick: func(id model.PersonID) { r.events = append(r.events, "click "+string(id)) },
		OnNodeHover: func(id model.PersonID, on bool) {
			r.events = append(r.events, fmt.Sprintf("hover %s %v", id, on))
		},
		OnBack: func() { r.events = append(r.events, "back") },
	}
}

// fixture lays out A(100,150) B(300,150) C(200,50) on a 400x300 viewport at
// identity zoom, so screen and simulation coordinates coincide.
func fixture(t *testing.T) (*graph.State, *Coordinator, *recorder) {
	t.Helper()
	pubs := []model.Publication{
		{ID: "1", AuthorIDs: []model.PersonID{"A", "B"}},
		{ID: "2", AuthorIDs: []model.PersonID{"A", "B"}},
		{ID: "3", AuthorIDs: []model.PersonID{"A", "C"}},
	}
	s, _ := graph.Build([]model.PersonID{"A"}, pubs, nil)
	for id, p := range map[model.PersonID][2]float64{"A": {100, 150}, "B": {300, 150}, "C": {200, 50}} {
		n, ok := s.NodeByID(id)
		require.True(t, ok)
		n.X, n.Y = p[0], p[1]
	}
	require.Zero(t, s.Bind())

	o := graph.ComputeOverlay(s, graph.Filters{})
	rec := &recorder{}
	c := New(s, zoom.NewController(zoom.Viewport{Width: 400, Height: 300}, zoom.Options{}), rec.handlers(), nil)
	c.SetOverlay(o)
	c.SetIndex(spatial.NewDrawnIndex(s, o))
	return s, c, rec
}

func TestHoverEmitsOutThenIn(t *testing.T) {
	s, c, rec := fixture(t)

	assert.True(t, c.PointerMove(101, 151))
	assert.Equal(t, model.PersonID("A"), s.HoveredAuthorID)
	assert.False(t, c.PointerMove(100, 150), "same node again is not a change")

	assert.True(t, c.PointerMove(299, 150))
	assert.Equal(t, model.PersonID("B"), s.HoveredAuthorID)

	assert.True(t, c.PointerLeave())
	assert.Empty(t, s.HoveredAuthorID)

	assert.Equal(t, []string{"hover A true", "hover A false", "hover B true", "hover B false"}, rec.events)
}

func TestHoverOutOnEmptySpace(t *testing.T) {
	s, c, rec := fixture(t)
	c.PointerMove(200, 50)
	require.Equal(t, model.PersonID("C"), s.HoveredAuthorID)

	assert.True(t, c.PointerMove(380, 280))
	assert.Empty(t, s.HoveredAuthorID)
	assert.Equal(t, []string{"hover C true", "hover C false"}, rec.events)
}

func TestSelectionDoesNotClearHover(t *testing.T) {
	s, c, rec := fixture(t)
	c.PointerMove(300, 150)
	require.Equal(t, model.PersonID("B"), s.HoveredAuthorID)

	// Click A with no pointer move in between, so B stays hovered.
	assert.True(t, c.Click(100, 150))
	assert.Equal(t, Selected, c.Mode())
	assert.Equal(t, model.PersonID("A"), s.SelectedAuthorID)
	assert.Equal(t, model.PersonID("B"), s.HoveredAuthorID)

	o := graph.ComputeOverlay(s, graph.Filters{})
	b, _ := s.NodeByID("B")
	assert.True(t, o.Node(b.Index).Highlighted)
	assert.Equal(t, []string{"hover B true", "click A"}, rec.events)
}

func TestClickOnEmptySpaceKeepsSelection(t *testing.T) {
	s, c, _ := fixture(t)
	require.True(t, c.Click(200, 50))
	assert.False(t, c.Click(10, 10))
	assert.Equal(t, model.PersonID("C"), s.SelectedAuthorID)
}

func TestBackReturnsToIdle(t *testing.T) {
	s, c, rec := fixture(t)
	assert.False(t, c.Back(), "back from idle is a no-op")

	c.Click(300, 150)
	require.Equal(t, Selected, c.Mode())
	assert.True(t, c.Back())
	assert.Equal(t, Idle, c.Mode())
	assert.Empty(t, s.SelectedAuthorID)
	assert.Equal(t, []string{"click B", "back"}, rec.events)
}

func TestLinkWeightLabel(t *testing.T) {
	s, c, _ := fixture(t)

	assert.True(t, c.PointerMove(200, 150.5))
	l, ok := c.EdgeLabel()
	require.True(t, ok)
	assert.Equal(t, "2", l.Text)
	assert.Equal(t, 210.0, l.X)
	assert.Equal(t, 140.5, l.Y)
	assert.Empty(t, s.HoveredAuthorID)

	assert.False(t, c.PointerMove(200, 150.5))

	assert.True(t, c.PointerMove(100, 150), "moving onto a node clears the label")
	_, ok = c.EdgeLabel()
	assert.False(t, ok)

	s.Options.ShowLinkWeightOnHover = false
	c.PointerLeave()
	c.PointerMove(200, 150.5)
	_, ok = c.EdgeLabel()
	assert.False(t, ok)
}

func TestNoMatchesBeforeLayout(t *testing.T) {
	s, c, rec := fixture(t)
	s.Unbind()
	c.SetIndex(nil)

	assert.False(t, c.PointerMove(100, 150))
	assert.False(t, c.PointerMove(200, 150))
	assert.False(t, c.Click(100, 150))
	_, ok := c.EdgeLabel()
	assert.False(t, ok)
	assert.Empty(t, rec.events)
}

func TestHitRadiusGrowsWhenZoomedOut(t *testing.T) {
	s, c, _ := fixture(t)
	c.zoom.SetExtent(zoom.Extent{Min: 0.1, Max: zoom.MaxScale})
	c.zoom.ZoomTo(zoom.Transform{K: 0.5})

	// A sits at screen (50, 75); 8 simulation units away is 4 px on screen,
	// outside the default radius but inside the pixel floor.
	assert.True(t, c.PointerMove(54, 75))
	assert.Equal(t, model.PersonID("A"), s.HoveredAuthorID)
}
