// Package spatial answers point queries against a laid-out graph: nearest
// node within a radius, and which link passes under a point.
package spatial

import (
	"math"

	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/Dicklesworthstone/coauthor_viewer/pkg/graph"
)

// point is a node position in the kd-tree.
type point struct {
	r2.Vec
	node *graph.Node
}

// Compare implements kdtree.Comparable.
func (p point) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(point)
	if d == 0 {
		return p.X - q.X
	}
	return p.Y - q.Y
}

// Dims implements kdtree.Comparable.
func (p point) Dims() int { return 2 }

// Distance implements kdtree.Comparable. It is the squared Euclidean distance.
func (p point) Distance(c kdtree.Comparable) float64 {
	q := c.(point)
	dx, dy := p.X-q.X, p.Y-q.Y
	return dx*dx + dy*dy
}

type points []point

func (p points) Index(i int) kdtree.Comparable         { return p[i] }
func (p points) Len() int                              { return len(p) }
func (p points) Pivot(d kdtree.Dim) int                { return plane{points: p, Dim: d}.Pivot() }
func (p points) Slice(start, end int) kdtree.Interface { return p[start:end] }

// plane sorts points along one dimension for median selection.
type plane struct {
	kdtree.Dim
	points
}

func (p plane) Less(i, j int) bool {
	if p.Dim == 0 {
		return p.points[i].X < p.points[j].X
	}
	return p.points[i].Y < p.points[j].Y
}
func (p plane) Pivot() int { return kdtree.Partition(p, kdtree.MedianOfMedians(p)) }
func (p plane) Slice(start, end int) kdtree.SortSlicer {
	p.points = p.points[start:end]
	return p
}
func (p plane) Swap(i, j int) { p.points[i], p.points[j] = p.points[j], p.points[i] }

// Index is a nearest-node index over node positions at the time it was
// built. Rebuild it after every completed layout run. A nil *Index is empty.
type Index struct {
	tree *kdtree.Tree
	size int
}

// NewIndex indexes the given nodes at their current X, Y.
func NewIndex(nodes []*graph.Node) *Index {
	pts := make(points, 0, len(nodes))
	for _, n := range nodes {
		if math.IsNaN(n.X) || math.IsNaN(n.Y) {
			continue
		}
		pts = append(pts, point{Vec: r2.Vec{X: n.X, Y: n.Y}, node: n})
	}
	if len(pts) == 0 {
		return &Index{}
	}
	return &Index{tree: kdtree.New(pts, false), size: len(pts)}
}

// NewDrawnIndex indexes only the nodes the overlay draws.
func NewDrawnIndex(s *graph.State, o graph.Overlay) *Index {
	nodes := make([]*graph.Node, 0, len(s.Nodes))
	for _, n := range s.Nodes {
		if o.Node(n.Index).Drawn(o.JustDim) {
			nodes = append(nodes, n)
		}
	}
	return NewIndex(nodes)
}

// Len returns the number of indexed nodes.
func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return ix.size
}

// FindNearestNode returns the node nearest to p if it lies within maxRadius,
// and nil otherwise. p is in simulation coordinates.
func (ix *Index) FindNearestNode(p r2.Vec, maxRadius float64) *graph.Node {
	if ix == nil || ix.tree == nil || maxRadius < 0 {
		return nil
	}
	c, d2 := ix.tree.Nearest(point{Vec: p})
	if c == nil || d2 > maxRadius*maxRadius {
		return nil
	}
	return c.(point).node
}
