package layout

import (
	"fmt"

	"github.com/Dicklesworthstone/coauthor_viewer/pkg/graph"
)

// Logical canvas the simulation is centered in. Renderers offset it to the
// real canvas size, so the simulation never needs to know the viewport.
const (
	GraphWidth  = 400
	GraphHeight = 300
)

// NewRequest builds a layout request from the nodes and links the overlay
// draws. Links are included only when both of their nodes are.
func NewRequest(s *graph.State, o graph.Overlay, width, height float64) Request {
	req := Request{
		Nodes:       make([]NodeData, 0, len(s.Nodes)),
		Links:       make([]LinkData, 0, len(s.Links)),
		GraphWidth:  width,
		GraphHeight: height,
	}
	included := make(map[graph.NodeRef]bool, len(s.Nodes))
	for _, n := range s.Nodes {
		if !o.Node(n.Index).Drawn(o.JustDim) {
			continue
		}
		included[n.Index] = true
		req.Nodes = append(req.Nodes, NodeData{ID: n.ID()})
	}
	for _, l := range s.Links {
		v := o.Link(l.Index)
		if !v.Drawn(o.JustDim) {
			continue
		}
		src, dst := s.EndpointID(l.Source), s.EndpointID(l.Target)
		if !included[s.AuthorsMap[src]] || !included[s.AuthorsMap[dst]] {
			continue
		}
		req.Links = append(req.Links, LinkData{Source: src, Target: dst, Weight: v.Weight})
	}
	return req
}

// Apply writes a finished run into the caller's graph: node positions are
// copied onto the caller's nodes and every link endpoint is bound to the
// caller's arena, never to the worker's copies. It must run on the goroutine
// that owns s.
func Apply(s *graph.State, done Done) error {
	unknown := 0
	for _, n := range done.Nodes {
		node, ok := s.NodeByID(n.ID)
		if !ok {
			unknown++
			continue
		}
		node.X, node.Y = n.X, n.Y
	}
	for _, l := range done.Links {
		if _, ok := s.LinkBetween(l.Source, l.Target); !ok {
			unknown++
		}
	}
	unknown += s.Bind()

	if unknown > 0 {
		return fmt.Errorf("%w: %d unresolved ids", ErrUnknownNode, unknown)
	}
	return nil
}
