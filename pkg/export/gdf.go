package export

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/Dicklesworthstone/coauthor_viewer/pkg/graph"
)

// WriteGDF writes the GUESS GDF format read by Gephi:
//
//	nodedef>name VARCHAR,label VARCHAR,publications INTEGER,original BOOLEAN,color VARCHAR
//	knuth,Donald Knuth,12,true,'255,121,198'
//	edgedef>node1 VARCHAR,node2 VARCHAR,weight DOUBLE
//	graham,knuth,3
func WriteGDF(w io.Writer, s *graph.State, o graph.Overlay, opts Options) error {
	b := bufio.NewWriter(w)

	header := "nodedef>name VARCHAR,label VARCHAR,publications INTEGER,original BOOLEAN,color VARCHAR"
	if opts.Positions {
		header += ",x DOUBLE,y DOUBLE"
	}
	fmt.Fprintln(b, header)

	nodes := visibleNodes(s, o)
	sort.SliceStable(nodes, func(i, j int) bool { return nodes[i].ID() < nodes[j].ID() })
	for _, n := range nodes {
		v := o.Node(n.Index)
		col := ""
		if v.HasColor {
			col = fmt.Sprintf("%d,%d,%d", v.Color.R, v.Color.G, v.Color.B)
		}
		fmt.Fprintf(b, "%s,%s,%d,%t,%s",
			gdfValue(string(n.ID())), gdfValue(n.Person.DisplayName()), v.Count, s.IsOriginal(n.ID()), gdfValue(col))
		if opts.Positions {
			x, y := n.X, n.Y
			if !finite(x) || !finite(y) {
				x, y = 0, 0
			}
			fmt.Fprintf(b, ",%.2f,%.2f", x, y)
		}
		fmt.Fprintln(b)
	}

	fmt.Fprintln(b, "edgedef>node1 VARCHAR,node2 VARCHAR,weight DOUBLE")
	for _, e := range visibleEdges(s, o) {
		fmt.Fprintf(b, "%s,%s,%d\n", gdfValue(string(e.src.ID())), gdfValue(string(e.dst.ID())), e.weight)
	}
	return b.Flush()
}

// gdfValue quotes a value in single quotes when it contains a separator or
// a quote. Embedded quotes are doubled.
func gdfValue(v string) string {
	if v == "" {
		return ""
	}
	if !strings.ContainsAny(v, ",'\"\n\r") {
		return v
	}
	v = strings.NewReplacer("\n", " ", "\r", "").Replace(v)
	return "'" + strings.ReplaceAll(v, "'", "''") + "'"
}
