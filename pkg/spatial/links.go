package spatial

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/Dicklesworthstone/coauthor_viewer/pkg/graph"
)

// LinkHitWidth is the width, in simulation units, of the band around a link
// that counts as touching it.
const LinkHitWidth = 2

// FindLink returns the first link whose hit band contains p. Ignored links
// are skipped, as are invisible and dimmed ones unless the overlay is in
// just-dim mode. Links not yet bound to nodes never match.
func FindLink(p r2.Vec, s *graph.State, o graph.Overlay) *graph.Link {
	for _, l := range s.Links {
		v := o.Link(l.Index)
		if !v.Drawn(o.JustDim) || (v.Dim && !o.JustDim) {
			continue
		}
		src, dst, ok := s.Ends(l)
		if !ok {
			continue
		}
		a := r2.Vec{X: src.X, Y: src.Y}
		b := r2.Vec{X: dst.X, Y: dst.Y}
		if OnSegment(p, a, b, LinkHitWidth) {
			return l
		}
	}
	return nil
}

// OnSegment reports whether p lies in the rectangle of the given width swept
// along the segment a-b. The four triangles formed by p and consecutive
// rectangle corners cover exactly the rectangle's area when p is inside and
// more when it is outside.
func OnSegment(p, a, b r2.Vec, width float64) bool {
	d := r2.Sub(b, a)
	length := r2.Norm(d)
	if length == 0 || width <= 0 {
		return false
	}
	n := r2.Scale(width/2/length, r2.Vec{X: -d.Y, Y: d.X})

	c1 := r2.Add(a, n)
	c2 := r2.Add(b, n)
	c3 := r2.Sub(b, n)
	c4 := r2.Sub(a, n)

	rect := length * width
	sum := triangleArea(p, c1, c2) +
		triangleArea(p, c2, c3) +
		triangleArea(p, c3, c4) +
		triangleArea(p, c4, c1)
	return sum <= rect*(1+1e-9)+1e-12
}

func triangleArea(a, b, c r2.Vec) float64 {
	return math.Abs((b.X-a.X)*(c.Y-a.Y)-(c.X-a.X)*(b.Y-a.Y)) / 2
}
