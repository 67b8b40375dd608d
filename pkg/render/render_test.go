package render

import (
	"bytes"
	"errors"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Dicklesworthstone/coauthor_viewer/pkg/graph"
	"github.com/Dicklesworthstone/coauthor_viewer/pkg/model"
	"github.com/Dicklesworthstone/coauthor_viewer/pkg/zoom"
)

var testViewport = zoom.Viewport{Width: 400, Height: 300}

// triangle builds A-B, A-B, A-C with A original, laid out on a triangle.
func triangle(t *testing.T) *graph.State {
	t.Helper()
	pubs := []model.Publication{
		{ID: "1", Type: model.TypeArticle, Year: 2020, AuthorIDs: []model.PersonID{"A", "B"}},
		{ID: "2", Type: model.TypeArticle, Year: 2021, AuthorIDs: []model.PersonID{"A", "B"}},
		{ID: "3", Type: model.TypeBook, Year: 2022, AuthorIDs: []model.PersonID{"A", "C"}},
	}
	people := map[model.PersonID]model.Person{
		"A": {ID: "A", Name: "Ada Lovelace"},
		"B": {ID: "B", Name: "Charles Babbage"},
	}
	s, _ := graph.Build([]model.PersonID{"A"}, pubs, people)
	pos := map[model.PersonID][2]float64{"A": {200, 150}, "B": {250, 150}, "C": {200, 100}}
	for id, p := range pos {
		n, ok := s.NodeByID(id)
		if !ok {
			t.Fatalf("missing node %s", id)
		}
		n.X, n.Y = p[0], p[1]
	}
	if unresolved := s.Bind(); unresolved != 0 {
		t.Fatalf("Bind left %d endpoints unresolved", unresolved)
	}
	return s
}

func group(f Frame, kind NodeKind) *NodeGroup {
	for i := range f.Nodes {
		if f.Nodes[i].Kind == kind {
			return &f.Nodes[i]
		}
	}
	return nil
}

func TestPlanWritesCanvasCaches(t *testing.T) {
	s := triangle(t)
	o := graph.ComputeOverlay(s, graph.Filters{})
	tr := zoom.Transform{K: 2, X: -10, Y: 5}

	Plan(s, o, tr, zoom.Viewport{Width: 600, Height: 500}, DefaultOptions())

	b, _ := s.NodeByID("B")
	// (250 + 100) * 2 - 10, (150 + 100) * 2 + 5
	if b.CanvasX != 690 || b.CanvasY != 505 {
		t.Errorf("B canvas position = (%v, %v), want (690, 505)", b.CanvasX, b.CanvasY)
	}
	if b.CanvasRadius != DefaultRadius*2 {
		t.Errorf("B canvas radius = %v, want %v", b.CanvasRadius, DefaultRadius*2)
	}
}

func TestPlanGroupsNodes(t *testing.T) {
	s := triangle(t)
	o := graph.ComputeOverlay(s, graph.Filters{})
	f := Plan(s, o, zoom.Identity, testViewport, DefaultOptions())

	var kinds []NodeKind
	for _, g := range f.Nodes {
		kinds = append(kinds, g.Kind)
	}
	want := []NodeKind{KindShadow, KindNormal, KindColored}
	if len(kinds) != len(want) {
		t.Fatalf("groups = %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("groups = %v, want %v", kinds, want)
		}
	}

	if got := len(group(f, KindShadow).Circles); got != 3 {
		t.Errorf("shadow pass has %d circles, want 3", got)
	}
	if got := len(group(f, KindNormal).Circles); got != 2 {
		t.Errorf("normal pass has %d circles, want 2", got)
	}
	colored := group(f, KindColored)
	if colored.Color != graph.AuthorPalette[0] {
		t.Errorf("original author color = %v, want %v", colored.Color, graph.AuthorPalette[0])
	}
}

func TestPlanNodeRadiusFloor(t *testing.T) {
	s := triangle(t)
	o := graph.ComputeOverlay(s, graph.Filters{})
	f := Plan(s, o, zoom.Transform{K: 0.1}, testViewport, DefaultOptions())

	for _, c := range group(f, KindNormal).Circles {
		if math.Abs(c.R-1.2) > 1e-9 {
			t.Errorf("zoomed-out node radius = %v px, want the 1.2 px floor", c.R)
		}
	}
}

func TestNodeRadius(t *testing.T) {
	tests := []struct {
		name string
		v    graph.NodeVisual
		k    float64
		want float64
	}{
		{"default", graph.NodeVisual{Visible: true}, 1, DefaultRadius},
		{"highlighted", graph.NodeVisual{Visible: true, Highlighted: true}, 1, HighlightedRadius},
		{"dim", graph.NodeVisual{Visible: true, Dim: true}, 1, DimRadius},
		{"highlight wins over dim", graph.NodeVisual{Dim: true, Highlighted: true}, 1, HighlightedRadius},
		{"floored", graph.NodeVisual{Visible: true, Dim: true}, 0.5, 2.4},
		{"zoomed in", graph.NodeVisual{Visible: true}, 10, DefaultRadius},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NodeRadius(tt.v, tt.k, 1.2); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("NodeRadius = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLinkStyle(t *testing.T) {
	tests := []struct {
		name  string
		v     graph.LinkVisual
		alpha float64
	}{
		{"dim", graph.LinkVisual{Visible: true, Dim: true, Intensity: 1}, DimLinkAlpha},
		{"hidden in just-dim mode", graph.LinkVisual{Intensity: 1}, DimLinkAlpha},
		{"weak", graph.LinkVisual{Visible: true}, 0.3},
		{"strong", graph.LinkVisual{Visible: true, Intensity: 1}, 1},
		{"highlighted weak", graph.LinkVisual{Visible: true, Highlighted: true}, 0.8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LinkAlpha(tt.v); math.Abs(got-tt.alpha) > 1e-9 {
				t.Errorf("LinkAlpha = %v, want %v", got, tt.alpha)
			}
		})
	}

	weak := graph.LinkVisual{Visible: true}
	if got := LinkWidth(weak, 1, 0.35); math.Abs(got-0.35) > 1e-9 {
		t.Errorf("weak link width = %v, want the 0.35 floor", got)
	}
	strong := graph.LinkVisual{Visible: true, Intensity: 1}
	if got := LinkWidth(strong, 4, 0.35) * 4; math.Abs(got-1.5) > 1e-9 {
		t.Errorf("strong link screen width = %v, want 1.5", got)
	}
}

func TestPlanSelectionDrawsHighlightsLast(t *testing.T) {
	s := triangle(t)
	s.SelectedAuthorID = "B"
	o := graph.ComputeOverlay(s, graph.Filters{})
	f := Plan(s, o, zoom.Identity, testViewport, DefaultOptions())

	last := f.Nodes[len(f.Nodes)-1]
	if last.Kind != KindHighlighted {
		t.Fatalf("last node pass = %v, want highlighted", last.Kind)
	}
	faded := group(f, KindFaded)
	if faded == nil || len(faded.Circles) != 1 {
		t.Fatalf("want C alone in the faded pass, got %+v", faded)
	}
	if faded.Circles[0].R != DimRadius {
		t.Errorf("dim radius = %v, want %v", faded.Circles[0].R, DimRadius)
	}

	lastLink := f.Links[len(f.Links)-1]
	if lastLink.Color != edgeHighlighted || len(lastLink.Segments) != 1 {
		t.Errorf("last link pass = %+v, want the highlighted A-B link", lastLink)
	}

	if len(f.Labels) != 2 {
		t.Fatalf("labels = %+v, want A and B", f.Labels)
	}
	for _, l := range f.Labels {
		if !l.Bold {
			t.Errorf("label %q should be bold", l.Text)
		}
	}
}

func TestPlanLabelsHighlightedLast(t *testing.T) {
	s := triangle(t)
	s.HoveredAuthorID = "C"
	o := graph.ComputeOverlay(s, graph.Filters{})
	f := Plan(s, o, zoom.Identity, testViewport, DefaultOptions())

	if len(f.Labels) != 2 {
		t.Fatalf("labels = %+v, want A and C", f.Labels)
	}
	if f.Labels[0].Text != "Ada Lovelace" || f.Labels[0].Bold {
		t.Errorf("first label = %+v, want plain original author", f.Labels[0])
	}
	if f.Labels[1].Text != "C" || !f.Labels[1].Bold {
		t.Errorf("last label = %+v, want bold hovered author", f.Labels[1])
	}
}

func TestPlanJustDim(t *testing.T) {
	s := triangle(t)
	filters := graph.Filters{Types: []model.PublicationType{model.TypeArticle}}

	f := Plan(s, graph.ComputeOverlay(s, filters), zoom.Identity, testViewport, DefaultOptions())
	if g := group(f, KindFaded); g != nil {
		t.Fatalf("hidden nodes should not be drawn, got %+v", g)
	}

	s.Options.JustDimInvisibleNodes = true
	f = Plan(s, graph.ComputeOverlay(s, filters), zoom.Identity, testViewport, DefaultOptions())
	faded := group(f, KindFaded)
	if faded == nil || len(faded.Circles) != 1 || faded.Alpha != FadedNodeAlpha {
		t.Fatalf("want C in the faded pass, got %+v", faded)
	}
	if f.Links[0].Alpha != DimLinkAlpha {
		t.Errorf("filtered-out link alpha = %v, want %v", f.Links[0].Alpha, DimLinkAlpha)
	}
}

func TestPlanSkipsUnplacedNodesAndUnboundLinks(t *testing.T) {
	s := triangle(t)
	c, _ := s.NodeByID("C")
	c.X = math.NaN()
	s.Unbind()
	f := Plan(s, graph.ComputeOverlay(s, graph.Filters{}), zoom.Identity, testViewport, DefaultOptions())

	if len(f.Links) != 0 {
		t.Errorf("unbound links should not be planned, got %d groups", len(f.Links))
	}
	if got := len(group(f, KindShadow).Circles); got != 2 {
		t.Errorf("planned %d nodes, want 2", got)
	}
}

func TestPlanHeaderAndLegend(t *testing.T) {
	s := triangle(t)
	opts := DefaultOptions()
	opts.Title = "Coauthors of Ada"
	f := Plan(s, graph.ComputeOverlay(s, graph.Filters{}), zoom.Identity, testViewport, opts)

	if f.Header == nil || !strings.Contains(f.Header.Subtitle, "3 authors · 2 links · 3 publications") {
		t.Errorf("header = %+v", f.Header)
	}
	if len(f.Legend) != 1 || f.Legend[0].Label != "Ada Lovelace" {
		t.Errorf("legend = %+v", f.Legend)
	}
}

func TestRenderSVG(t *testing.T) {
	s := triangle(t)
	f := Plan(s, graph.ComputeOverlay(s, graph.Filters{}), zoom.Identity, testViewport, DefaultOptions())
	f.AddLabel("2", 225, 140)

	var buf bytes.Buffer
	if err := RenderSVG(&buf, f); err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "<svg") || !strings.Contains(out, "</svg>") {
		t.Fatalf("not an svg document:\n%s", out)
	}
	// One path per link group and per node group.
	wantPaths := len(f.Links) + len(f.Nodes)
	if got := strings.Count(out, "<path"); got != wantPaths {
		t.Errorf("svg has %d paths, want %d", got, wantPaths)
	}
	if !strings.Contains(out, "Ada Lovelace") || !strings.Contains(out, "paint-order:stroke") {
		t.Errorf("labels missing from svg")
	}
}

func TestRenderPNG(t *testing.T) {
	s := triangle(t)
	opts := DefaultOptions()
	opts.Title = "Coauthors"
	f := Plan(s, graph.ComputeOverlay(s, graph.Filters{}), zoom.Identity, testViewport, opts)

	var buf bytes.Buffer
	if err := RenderPNG(&buf, f); err != nil {
		t.Fatalf("RenderPNG: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 400 || b.Dy() != 300 {
		t.Errorf("image size = %v, want 400x300", b)
	}
}

func TestSaveFile(t *testing.T) {
	s := triangle(t)
	f := Plan(s, graph.ComputeOverlay(s, graph.Filters{}), zoom.Identity, testViewport, DefaultOptions())
	dir := t.TempDir()

	path := filepath.Join(dir, "nested", "graph.svg")
	if err := SaveFile(path, "", f); err != nil {
		t.Fatalf("SaveFile: %v", err)
	}
	if info, err := os.Stat(path); err != nil || info.Size() == 0 {
		t.Fatalf("expected non-empty %s: %v", path, err)
	}

	err := SaveFile(filepath.Join(dir, "graph.gif"), "gif", f)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("SaveFile(gif) error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestFormatFor(t *testing.T) {
	tests := []struct{ path, format, want string }{
		{"out.png", "", "png"},
		{"out.PNG", "", "png"},
		{"out.svg", "", "svg"},
		{"out", "", "svg"},
		{"out.png", "SVG", "svg"},
	}
	for _, tt := range tests {
		if got := FormatFor(tt.path, tt.format); got != tt.want {
			t.Errorf("FormatFor(%q, %q) = %q, want %q", tt.path, tt.format, got, tt.want)
		}
	}
}

func TestParseHexColor(t *testing.T) {
	c, err := ParseHexColor("#ff79c6")
	if err != nil || c.R != 0xff || c.G != 0x79 || c.B != 0xc6 || c.A != 0xff {
		t.Errorf("ParseHexColor(#ff79c6) = %v, %v", c, err)
	}
	c, err = ParseHexColor("fff")
	if err != nil || c.R != 0xff || c.B != 0xff {
		t.Errorf("ParseHexColor(fff) = %v, %v", c, err)
	}
	if _, err := ParseHexColor("#12"); err == nil {
		t.Error("expected error for short color")
	}
}
