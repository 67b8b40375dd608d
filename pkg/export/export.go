// Package export writes the coauthor graph as GraphViz DOT, GDF or a markdown
// report. Only what the overlay shows is exported: visible nodes, and links
// that are visible and not ignored.
package export

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Dicklesworthstone/coauthor_viewer/pkg/graph"
)

// ErrUnsupportedFormat is returned for formats this package cannot write.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// Options tune the exporters.
type Options struct {
	// Positions adds laid-out coordinates to DOT and GDF output.
	Positions bool
	// Title heads the markdown report.
	Title string
	// TopCollaborations caps the report's collaboration table.
	TopCollaborations int
	// Filters are the filters the overlay was computed with; the report
	// counts publications through them.
	Filters graph.Filters
	// Generated stamps the report; zero means now.
	Generated time.Time
}

// DefaultOptions returns the options the CLI starts with.
func DefaultOptions() Options {
	return Options{Title: "Coauthor Report", TopCollaborations: 20}
}

// FormatFor returns format lowercased, or the format implied by the
// extension of path when format is empty.
func FormatFor(path, format string) string {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	}
	switch format {
	case "gv":
		return "dot"
	case "markdown":
		return "md"
	}
	return format
}

// Write exports s in format ("dot", "gdf" or "md").
func Write(w io.Writer, format string, s *graph.State, o graph.Overlay, opts Options) error {
	switch FormatFor("", format) {
	case "dot":
		return WriteDOT(w, s, o, opts)
	case "gdf":
		return WriteGDF(w, s, o, opts)
	case "md":
		report, err := GenerateReport(s, o, opts)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, report)
		return err
	}
	return fmt.Errorf("%w %q", ErrUnsupportedFormat, format)
}

// SaveFile exports s to path, creating parent directories. An empty format
// is taken from the extension.
func SaveFile(path, format string, s *graph.State, o graph.Overlay, opts Options) (err error) {
	format = FormatFor(path, format)
	switch format {
	case "dot", "gdf", "md":
	default:
		return fmt.Errorf("%w %q", ErrUnsupportedFormat, format)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); err == nil {
			err = cerr
		}
	}()
	return Write(file, format, s, o, opts)
}

// edge is an exported link with its filtered weight.
type edge struct {
	src, dst *graph.Node
	weight   int
}

func visibleNodes(s *graph.State, o graph.Overlay) []*graph.Node {
	var out []*graph.Node
	for _, n := range s.Nodes {
		if o.Node(n.Index).Visible {
			out = append(out, n)
		}
	}
	return out
}

// visibleEdges returns the exported links, heaviest first, ties by ids.
func visibleEdges(s *graph.State, o graph.Overlay) []edge {
	var out []edge
	for _, l := range s.Links {
		v := o.Link(l.Index)
		if !v.Visible || v.Ignored {
			continue
		}
		src, ok1 := s.NodeByID(s.EndpointID(l.Source))
		dst, ok2 := s.NodeByID(s.EndpointID(l.Target))
		if !ok1 || !ok2 {
			continue
		}
		if dst.ID() < src.ID() {
			src, dst = dst, src
		}
		out = append(out, edge{src: src, dst: dst, weight: v.Weight})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].weight != out[j].weight {
			return out[i].weight > out[j].weight
		}
		if out[i].src.ID() != out[j].src.ID() {
			return out[i].src.ID() < out[j].src.ID()
		}
		return out[i].dst.ID() < out[j].dst.ID()
	})
	return out
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
