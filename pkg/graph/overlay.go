package graph

import (
	"image/color"

	"github.com/Dicklesworthstone/coauthor_viewer/pkg/model"
)

// Filters narrow the publication set the overlay is computed from.
type Filters struct {
	// Types keeps only these publication types; empty keeps all.
	Types []model.PublicationType
	// FromYear and ToYear bound the publication year inclusively; 0 is open.
	FromYear int
	ToYear   int
	// Venues keeps only these venue ids; empty keeps all.
	Venues []string
	// MinLinkWeight ignores links sharing fewer filtered publications.
	MinLinkWeight int
	// Colors overrides the color of individual authors.
	Colors map[model.PersonID]color.RGBA
}

// Accepts reports whether a publication passes the filters.
func (f Filters) Accepts(p model.Publication) bool {
	if len(f.Types) > 0 {
		ok := false
		for _, t := range f.Types {
			if t == p.Type {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	if f.FromYear != 0 && p.Year < f.FromYear {
		return false
	}
	if f.ToYear != 0 && p.Year > f.ToYear {
		return false
	}
	if len(f.Venues) > 0 {
		ok := false
		for _, v := range f.Venues {
			if v == p.VenueID {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	return true
}

// NodeVisual is the per-frame classification of one node.
type NodeVisual struct {
	Visible      bool
	Dim          bool
	Highlighted  bool
	LabelVisible bool
	HasColor     bool
	Color        color.RGBA
	// Count is the number of filtered publications the person appears on.
	Count int
}

// LinkVisual is the per-frame classification of one link.
type LinkVisual struct {
	Visible     bool
	Dim         bool
	Highlighted bool
	Ignored     bool
	// Weight is the number of filtered shared publications.
	Weight    int
	Intensity float64
}

// Overlay is the visual state of a graph for one set of filters, selection
// and hover. Nodes is indexed by NodeRef and Links by Link.Index.
type Overlay struct {
	Nodes   []NodeVisual
	Links   []LinkVisual
	JustDim bool
}

// Node returns the visual of ref, or the zero value when out of range.
func (o Overlay) Node(ref NodeRef) NodeVisual {
	if ref < 0 || int(ref) >= len(o.Nodes) {
		return NodeVisual{}
	}
	return o.Nodes[ref]
}

// Link returns the visual of link i, or the zero value when out of range.
func (o Overlay) Link(i int) LinkVisual {
	if i < 0 || i >= len(o.Links) {
		return LinkVisual{}
	}
	return o.Links[i]
}

// Drawn reports whether the link takes part in rendering and hit-testing.
func (v LinkVisual) Drawn(justDim bool) bool {
	if v.Ignored {
		return false
	}
	return v.Visible || justDim
}

// Drawn reports whether the node takes part in rendering.
func (v NodeVisual) Drawn(justDim bool) bool {
	return v.Visible || justDim
}

// AuthorPalette colors original authors in the order they were requested.
var AuthorPalette = []color.RGBA{
	{0xff, 0x79, 0xc6, 0xff}, // pink
	{0x50, 0xfa, 0x7b, 0xff}, // green
	{0xff, 0xb8, 0x6c, 0xff}, // orange
	{0x8b, 0xe9, 0xfd, 0xff}, // cyan
	{0xbd, 0x93, 0xf9, 0xff}, // purple
	{0xf1, 0xfa, 0x8c, 0xff}, // yellow
	{0xff, 0x55, 0x55, 0xff}, // red
}

// ComputeOverlay derives the visual state of every node and link from the
// state's publications, options, selection and hover. It does not modify s.
func ComputeOverlay(s *State, f Filters) Overlay {
	o := Overlay{
		Nodes:   make([]NodeVisual, len(s.Nodes)),
		Links:   make([]LinkVisual, len(s.Links)),
		JustDim: s.Options.JustDimInvisibleNodes,
	}

	authors := make([]model.PersonID, 0, 16)
	for _, pub := range s.Publications {
		if !f.Accepts(pub) {
			continue
		}
		authors = uniqueAuthors(authors[:0], pub.AuthorIDs)
		for _, id := range authors {
			if ref, ok := s.AuthorsMap[id]; ok {
				o.Nodes[ref].Count++
			}
		}
		for i := 0; i < len(authors); i++ {
			for j := i + 1; j < len(authors); j++ {
				if li, ok := s.linkIndex[newPairKey(authors[i], authors[j])]; ok {
					o.Links[li].Weight++
				}
			}
		}
	}

	for i, n := range s.Nodes {
		v := &o.Nodes[i]
		v.Visible = v.Count > 0 || s.IsOriginal(n.ID())
	}
	for i, id := range s.OriginalAuthorIDs {
		if ref, ok := s.AuthorsMap[id]; ok {
			o.Nodes[ref].HasColor = true
			o.Nodes[ref].Color = AuthorPalette[i%len(AuthorPalette)]
		}
	}
	for id, c := range f.Colors {
		if ref, ok := s.AuthorsMap[id]; ok {
			o.Nodes[ref].HasColor = true
			o.Nodes[ref].Color = c
		}
	}

	maxWeight := 0
	for i, l := range s.Links {
		v := &o.Links[i]
		src, dst := s.EndpointID(l.Source), s.EndpointID(l.Target)
		v.Visible = v.Weight > 0 && o.nodeVisible(s, src) && o.nodeVisible(s, dst)
		if !s.Options.OriginalLinksDisplayed && !s.IsOriginal(src) && !s.IsOriginal(dst) {
			v.Ignored = true
		}
		if f.MinLinkWeight > 0 && v.Weight > 0 && v.Weight < f.MinLinkWeight {
			v.Ignored = true
		}
		if v.Visible && !v.Ignored && v.Weight > maxWeight {
			maxWeight = v.Weight
		}
	}
	for i := range o.Links {
		o.Links[i].Intensity = normalize(o.Links[i].Weight, maxWeight)
	}

	if _, ok := s.AuthorsMap[s.SelectedAuthorID]; ok {
		o.applySelection(s, s.SelectedAuthorID)
	}
	if _, ok := s.AuthorsMap[s.HoveredAuthorID]; ok {
		o.applyHover(s, s.HoveredAuthorID)
	}

	for i, n := range s.Nodes {
		v := &o.Nodes[i]
		v.LabelVisible = v.Visible && (v.Highlighted || s.IsOriginal(n.ID()))
	}
	return o
}

func (o *Overlay) nodeVisible(s *State, id model.PersonID) bool {
	ref, ok := s.AuthorsMap[id]
	return ok && o.Nodes[ref].Visible
}

func (o *Overlay) applySelection(s *State, selected model.PersonID) {
	for i := range o.Nodes {
		o.Nodes[i].Dim = true
	}
	for i := range o.Links {
		o.Links[i].Dim = true
	}

	sel := s.AuthorsMap[selected]
	o.Nodes[sel].Dim = false
	o.Nodes[sel].Highlighted = true

	s.Neighbors(selected, func(l *Link, other model.PersonID) {
		lv := &o.Links[l.Index]
		if !lv.Visible || lv.Ignored {
			return
		}
		lv.Dim = false
		lv.Highlighted = true
		ref := s.AuthorsMap[other]
		o.Nodes[ref].Dim = false
		o.Nodes[ref].Highlighted = true
	})
}

func (o *Overlay) applyHover(s *State, hovered model.PersonID) {
	ref := s.AuthorsMap[hovered]
	o.Nodes[ref].Dim = false
	o.Nodes[ref].Highlighted = true

	s.Neighbors(hovered, func(l *Link, _ model.PersonID) {
		lv := &o.Links[l.Index]
		if !lv.Visible || lv.Ignored {
			return
		}
		lv.Dim = false
		lv.Highlighted = true
	})
}
