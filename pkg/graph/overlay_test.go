package graph

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dicklesworthstone/coauthor_viewer/pkg/model"
)

func overlayFixture() *State {
	pubs := []model.Publication{
		{ID: "1", Type: model.TypeArticle, Year: 2015, AuthorIDs: []model.PersonID{"A", "B"}},
		{ID: "2", Type: model.TypeInproceedings, Year: 2021, AuthorIDs: []model.PersonID{"A", "C"}, VenueID: "conf/x"},
		{ID: "3", Type: model.TypeArticle, Year: 2022, AuthorIDs: []model.PersonID{"B", "C"}},
		{ID: "4", Type: model.TypeArticle, Year: 2022, AuthorIDs: []model.PersonID{"A", "B"}},
	}
	s, _ := Build([]model.PersonID{"A"}, pubs, nil)
	return s
}

func linkVisual(t *testing.T, s *State, o Overlay, a, b model.PersonID) LinkVisual {
	t.Helper()
	l, ok := s.LinkBetween(a, b)
	require.True(t, ok)
	return o.Links[l.Index]
}

func TestFiltersAccepts(t *testing.T) {
	p := model.Publication{Type: model.TypeArticle, Year: 2020, VenueID: "journals/x"}

	tests := []struct {
		name string
		f    Filters
		want bool
	}{
		{"no filters", Filters{}, true},
		{"type match", Filters{Types: []model.PublicationType{model.TypeArticle}}, true},
		{"type mismatch", Filters{Types: []model.PublicationType{model.TypeBook}}, false},
		{"year inside", Filters{FromYear: 2019, ToYear: 2020}, true},
		{"year before", Filters{FromYear: 2021}, false},
		{"year after", Filters{ToYear: 2019}, false},
		{"venue match", Filters{Venues: []string{"journals/x"}}, true},
		{"venue mismatch", Filters{Venues: []string{"conf/y"}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.f.Accepts(p))
		})
	}
}

func TestComputeOverlayFiltersByYear(t *testing.T) {
	s := overlayFixture()
	o := ComputeOverlay(s, Filters{FromYear: 2021})

	a, _ := s.NodeByID("A")
	b, _ := s.NodeByID("B")
	c, _ := s.NodeByID("C")
	assert.Equal(t, 2, o.Nodes[a.Index].Count)
	assert.Equal(t, 2, o.Nodes[b.Index].Count)
	assert.Equal(t, 2, o.Nodes[c.Index].Count)

	ab := linkVisual(t, s, o, "A", "B")
	assert.Equal(t, 1, ab.Weight)
	assert.True(t, ab.Visible)
	assert.InDelta(t, 1.0, ab.Intensity, 1e-9)
}

func TestComputeOverlayHidesFilteredOutNodes(t *testing.T) {
	s := overlayFixture()
	o := ComputeOverlay(s, Filters{Types: []model.PublicationType{model.TypeInproceedings}})

	b, _ := s.NodeByID("B")
	a, _ := s.NodeByID("A")
	assert.False(t, o.Nodes[b.Index].Visible)
	assert.True(t, o.Nodes[a.Index].Visible)
	assert.False(t, linkVisual(t, s, o, "A", "B").Visible)
	assert.False(t, o.Nodes[b.Index].Drawn(false))
	assert.True(t, o.Nodes[b.Index].Drawn(true))
}

func TestComputeOverlayOriginalAuthorAlwaysVisibleAndColored(t *testing.T) {
	s := overlayFixture()
	o := ComputeOverlay(s, Filters{FromYear: 3000})

	a, _ := s.NodeByID("A")
	v := o.Nodes[a.Index]
	assert.True(t, v.Visible)
	assert.True(t, v.HasColor)
	assert.Equal(t, AuthorPalette[0], v.Color)
	assert.True(t, v.LabelVisible)
}

func TestComputeOverlayColorOverride(t *testing.T) {
	s := overlayFixture()
	red := color.RGBA{0xff, 0, 0, 0xff}
	o := ComputeOverlay(s, Filters{Colors: map[model.PersonID]color.RGBA{"C": red}})

	c, _ := s.NodeByID("C")
	assert.True(t, o.Nodes[c.Index].HasColor)
	assert.Equal(t, red, o.Nodes[c.Index].Color)
}

func TestComputeOverlayIgnoresLinksBetweenCoauthors(t *testing.T) {
	s := overlayFixture()
	s.Options.OriginalLinksDisplayed = false
	o := ComputeOverlay(s, Filters{})

	assert.True(t, linkVisual(t, s, o, "B", "C").Ignored)
	assert.False(t, linkVisual(t, s, o, "A", "B").Ignored)
	assert.False(t, linkVisual(t, s, o, "B", "C").Drawn(true))
}

func TestComputeOverlayMinLinkWeight(t *testing.T) {
	s := overlayFixture()
	o := ComputeOverlay(s, Filters{MinLinkWeight: 2})

	assert.False(t, linkVisual(t, s, o, "A", "B").Ignored)
	assert.True(t, linkVisual(t, s, o, "A", "C").Ignored)
}

func TestComputeOverlaySelection(t *testing.T) {
	s := overlayFixture()
	s.SelectedAuthorID = "B"
	s.Options.OriginalLinksDisplayed = true
	o := ComputeOverlay(s, Filters{Types: []model.PublicationType{model.TypeArticle}})

	a, _ := s.NodeByID("A")
	b, _ := s.NodeByID("B")
	c, _ := s.NodeByID("C")

	assert.True(t, o.Nodes[b.Index].Highlighted)
	assert.True(t, o.Nodes[a.Index].Highlighted)
	assert.True(t, o.Nodes[c.Index].Highlighted)
	assert.False(t, o.Nodes[b.Index].Dim)

	assert.True(t, linkVisual(t, s, o, "A", "B").Highlighted)
	ac := linkVisual(t, s, o, "A", "C")
	assert.True(t, ac.Dim)
	assert.False(t, ac.Highlighted)
}

func TestComputeOverlayHoverIsIndependentOfSelection(t *testing.T) {
	s := overlayFixture()
	s.SelectedAuthorID = "A"
	s.HoveredAuthorID = "C"
	s.Options.OriginalLinksDisplayed = true

	o := ComputeOverlay(s, Filters{Types: []model.PublicationType{model.TypeArticle}})

	a, _ := s.NodeByID("A")
	c, _ := s.NodeByID("C")
	assert.True(t, o.Nodes[a.Index].Highlighted)
	assert.True(t, o.Nodes[c.Index].Highlighted)
	assert.False(t, o.Nodes[c.Index].Dim)
	assert.True(t, linkVisual(t, s, o, "B", "C").Highlighted)

	// The state itself is untouched: selection survives the hover.
	assert.Equal(t, model.PersonID("A"), s.SelectedAuthorID)
}

func TestComputeOverlayDoesNotMutateState(t *testing.T) {
	s := overlayFixture()
	before := make([]int, len(s.Links))
	for i, l := range s.Links {
		before[i] = l.PublicationsCount
	}
	ComputeOverlay(s, Filters{FromYear: 2022})
	for i, l := range s.Links {
		assert.Equal(t, before[i], l.PublicationsCount)
	}
}
