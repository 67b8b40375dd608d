package export

import (
	"bufio"
	"fmt"
	"image/color"
	"io"
	"math"
	"sort"

	"github.com/Dicklesworthstone/coauthor_viewer/pkg/graph"
)

// WriteDOT writes an undirected GraphViz graph. Edge weight is the number of
// shared publications; penwidth grows with it. With opts.Positions, nodes get
// pinned pos attributes in points (y flipped) so neato -n keeps the layout.
func WriteDOT(w io.Writer, s *graph.State, o graph.Overlay, opts Options) error {
	b := bufio.NewWriter(w)

	fmt.Fprintln(b, "graph coauthors {")
	fmt.Fprintln(b, "  overlap=false;")
	fmt.Fprintln(b, "  node [shape=circle, style=filled, fillcolor=\"#8be9fd\", fontname=\"Helvetica\", fontsize=10];")
	fmt.Fprintln(b, "  edge [color=\"#6272a4\"];")
	fmt.Fprintln(b)

	nodes := visibleNodes(s, o)
	sort.SliceStable(nodes, func(i, j int) bool { return nodes[i].ID() < nodes[j].ID() })
	for _, n := range nodes {
		v := o.Node(n.Index)
		fmt.Fprintf(b, "  %q [label=%q, publications=%d", string(n.ID()), n.Person.DisplayName(), v.Count)
		if v.HasColor {
			fmt.Fprintf(b, ", fillcolor=%q", hexColor(v.Color))
		}
		if s.IsOriginal(n.ID()) {
			fmt.Fprint(b, ", penwidth=2")
		}
		if opts.Positions && finite(n.X) && finite(n.Y) {
			fmt.Fprintf(b, ", pos=\"%.2f,%.2f!\"", n.X, -n.Y)
		}
		fmt.Fprintln(b, "];")
	}

	fmt.Fprintln(b)
	for _, e := range visibleEdges(s, o) {
		fmt.Fprintf(b, "  %q -- %q [weight=%d, penwidth=%.2f];\n",
			string(e.src.ID()), string(e.dst.ID()), e.weight, penWidth(e.weight))
	}
	fmt.Fprintln(b, "}")
	return b.Flush()
}

// penWidth maps a shared-publication count to a GraphViz pen width,
// logarithmic so prolific pairs stay legible.
func penWidth(weight int) float64 {
	if weight < 1 {
		weight = 1
	}
	return 1 + math.Log2(float64(weight))
}

func hexColor(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
