// Package graph builds the coauthor graph from publication records and derives
// per-frame visual state from filters and selection.
package graph

import (
	"github.com/Dicklesworthstone/coauthor_viewer/pkg/model"
)

// NodeRef is a node's slot in State.Nodes.
type NodeRef int

// Node is one author in the coauthor graph.
//
// X and Y belong to the layout engine while a run is live. CanvasX, CanvasY and
// CanvasRadius are screen caches rewritten by every render pass.
type Node struct {
	Person model.Person
	Index  NodeRef

	X, Y float64

	CanvasX, CanvasY, CanvasRadius float64

	// CoauthorIDs maps a coauthor's id to the number of shared publications.
	CoauthorIDs     map[model.PersonID]int
	OccurrenceCount int
}

// ID returns the person id of the node.
func (n *Node) ID() model.PersonID { return n.Person.ID }

// Endpoint is one end of a link: either Unbound (a raw person id, before
// layout binds it) or Bound (a reference into the node arena).
type Endpoint interface {
	endpoint()
}

// Unbound is an endpoint that has not been resolved to a node yet.
type Unbound struct {
	ID model.PersonID
}

// Bound is an endpoint resolved to a node in the arena.
type Bound struct {
	Ref NodeRef
}

func (Unbound) endpoint() {}
func (Bound) endpoint()   {}

// Link is a coauthorship edge.
type Link struct {
	Index  int
	Source Endpoint
	Target Endpoint

	PublicationsCount int
	// Intensity is PublicationsCount normalized by the heaviest link, in [0,1].
	Intensity float64
}

// Options are the user-facing toggles that shape the visual overlay.
type Options struct {
	OriginalLinksDisplayed bool `yaml:"original_links_displayed"`
	JustDimInvisibleNodes  bool `yaml:"just_dim_invisible_nodes"`
	ShowLinkWeightOnHover  bool `yaml:"show_link_weight_on_hover"`
}

// DefaultOptions returns the options a fresh view starts with.
func DefaultOptions() Options {
	return Options{
		OriginalLinksDisplayed: true,
		JustDimInvisibleNodes:  false,
		ShowLinkWeightOnHover:  true,
	}
}

// State is the aggregate root shared by layout, rendering and interaction.
type State struct {
	Nodes      []*Node
	Links      []*Link
	AuthorsMap map[model.PersonID]NodeRef

	OriginalAuthorIDs []model.PersonID
	SelectedAuthorID  model.PersonID
	HoveredAuthorID   model.PersonID

	Options Options

	// Publications is the record set the graph was built from. Read-only.
	Publications []model.Publication

	original  map[model.PersonID]bool
	linkIndex map[pairKey]int
}

type pairKey struct {
	a, b model.PersonID
}

func newPairKey(a, b model.PersonID) pairKey {
	if b < a {
		a, b = b, a
	}
	return pairKey{a: a, b: b}
}

// Node returns the node in slot ref, or nil when out of range.
func (s *State) Node(ref NodeRef) *Node {
	if ref < 0 || int(ref) >= len(s.Nodes) {
		return nil
	}
	return s.Nodes[ref]
}

// NodeByID looks a node up by person id.
func (s *State) NodeByID(id model.PersonID) (*Node, bool) {
	ref, ok := s.AuthorsMap[id]
	if !ok {
		return nil, false
	}
	return s.Nodes[ref], true
}

// IsOriginal reports whether id is one of the authors the graph was requested for.
func (s *State) IsOriginal(id model.PersonID) bool {
	return s.original[id]
}

// LinkBetween returns the link joining a and b, in either direction.
func (s *State) LinkBetween(a, b model.PersonID) (*Link, bool) {
	i, ok := s.linkIndex[newPairKey(a, b)]
	if !ok {
		return nil, false
	}
	return s.Links[i], true
}

// EndpointID returns the person id behind an endpoint, bound or not.
func (s *State) EndpointID(ep Endpoint) model.PersonID {
	switch e := ep.(type) {
	case Unbound:
		return e.ID
	case Bound:
		if n := s.Node(e.Ref); n != nil {
			return n.ID()
		}
	}
	return ""
}

// Ends returns the two nodes of a link. ok is false while either endpoint is
// still unbound, which is the normal state during a layout run.
func (s *State) Ends(l *Link) (src, dst *Node, ok bool) {
	sb, ok1 := l.Source.(Bound)
	tb, ok2 := l.Target.(Bound)
	if !ok1 || !ok2 {
		return nil, nil, false
	}
	src, dst = s.Node(sb.Ref), s.Node(tb.Ref)
	if src == nil || dst == nil {
		return nil, nil, false
	}
	return src, dst, true
}

// Bind resolves every unbound endpoint through AuthorsMap. Endpoints whose id
// is unknown stay unbound; the count of those is returned.
func (s *State) Bind() int {
	unresolved := 0
	bind := func(ep Endpoint) Endpoint {
		u, ok := ep.(Unbound)
		if !ok {
			return ep
		}
		ref, ok := s.AuthorsMap[u.ID]
		if !ok {
			unresolved++
			return ep
		}
		return Bound{Ref: ref}
	}
	for _, l := range s.Links {
		l.Source = bind(l.Source)
		l.Target = bind(l.Target)
	}
	return unresolved
}

// Unbind turns every endpoint back into a raw id.
func (s *State) Unbind() {
	for _, l := range s.Links {
		l.Source = Unbound{ID: s.EndpointID(l.Source)}
		l.Target = Unbound{ID: s.EndpointID(l.Target)}
	}
}

// Neighbors calls fn for every link incident to id together with the node on
// the other side.
func (s *State) Neighbors(id model.PersonID, fn func(l *Link, other model.PersonID)) {
	n, ok := s.NodeByID(id)
	if !ok {
		return
	}
	for coauthor := range n.CoauthorIDs {
		if l, ok := s.LinkBetween(id, coauthor); ok {
			fn(l, coauthor)
		}
	}
}
