// Package render turns a laid out coauthor graph into a frame of batched
// draw groups and paints frames with gg (PNG) or svgo (SVG).
package render

import (
	"fmt"
	"image/color"
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/Dicklesworthstone/coauthor_viewer/pkg/graph"
	"github.com/Dicklesworthstone/coauthor_viewer/pkg/zoom"
)

// Node radii in simulation units, before the screen floor is applied.
const (
	HighlightedRadius = 10
	DimRadius         = 1.8
	DefaultRadius     = 4
)

// Link styling. Widths are screen pixels at any zoom.
const (
	LinkBaseWidth   = 0.3
	LinkWeightWidth = 1.2
	DimLinkAlpha    = 0.09
	FadedNodeAlpha  = 0.3
	ShadowAlpha     = 0.25
	LabelFontSize   = 12
)

// Options control planning.
type Options struct {
	// MinNodeRadius is the smallest on-screen node radius in pixels.
	MinNodeRadius float64 `yaml:"min_node_radius"`
	// MinLinkWidth is the thinnest on-screen link in pixels.
	MinLinkWidth float64    `yaml:"min_link_width"`
	Background   color.RGBA `yaml:"-"`
	Shadows      bool       `yaml:"shadows"`
	Labels       bool       `yaml:"labels"`
	Legend       bool       `yaml:"legend"`
	// Title, when set, adds a header card with graph counts.
	Title string `yaml:"-"`
}

// DefaultOptions returns the options the viewer and exporters start with.
func DefaultOptions() Options {
	return Options{
		MinNodeRadius: 1.2,
		MinLinkWidth:  0.35,
		Background:    DefaultBackground,
		Shadows:       true,
		Labels:        true,
		Legend:        true,
	}
}

// NodeKind is the visual treatment shared by a batch of nodes.
type NodeKind int

// Node batches, in paint order.
const (
	KindShadow NodeKind = iota
	KindNormal
	KindFaded
	KindColored
	KindHighlighted
)

func (k NodeKind) String() string {
	switch k {
	case KindShadow:
		return "shadow"
	case KindNormal:
		return "normal"
	case KindFaded:
		return "faded"
	case KindColored:
		return "colored"
	case KindHighlighted:
		return "highlighted"
	default:
		return fmt.Sprintf("NodeKind(%d)", int(k))
	}
}

// Circle is a node disc in screen pixels.
type Circle struct {
	X, Y, R float64
}

// NodeGroup is one fill pass.
type NodeGroup struct {
	Kind    NodeKind
	Color   color.RGBA
	Alpha   float64
	Circles []Circle
}

// Segment is a link in screen pixels.
type Segment struct {
	X1, Y1, X2, Y2 float64
}

// LinkGroup is one stroke pass.
type LinkGroup struct {
	Color    color.RGBA
	Alpha    float64
	Width    float64
	Segments []Segment
}

// Label is text anchored at X, Y in screen pixels. AnchorX is 0 for
// left-aligned and 0.5 for centered text; text is vertically centered.
type Label struct {
	Text    string
	X, Y    float64
	AnchorX float64
	Size    float64
	Bold    bool
	Color   color.RGBA
}

// Header is the title card drawn over the top of the frame.
type Header struct {
	Title    string
	Subtitle string
}

// LegendItem names the color of one original author.
type LegendItem struct {
	Color color.RGBA
	Label string
}

// Frame is everything needed to paint one image, in paint order.
type Frame struct {
	Width, Height int
	Background    color.RGBA

	Links  []LinkGroup
	Nodes  []NodeGroup
	Labels []Label

	Header *Header
	Legend []LegendItem
}

// AddLabel appends a label on top of the planned ones.
func (f *Frame) AddLabel(text string, x, y float64) {
	f.Labels = append(f.Labels, Label{
		Text: text, X: x, Y: y, AnchorX: 0.5,
		Size: LabelFontSize, Bold: true, Color: textPrimary,
	})
}

// Plan computes a frame for the graph under the view transform t. It reads s
// and o and writes only the CanvasX, CanvasY and CanvasRadius caches of the
// nodes it places.
func Plan(s *graph.State, o graph.Overlay, t zoom.Transform, vp zoom.Viewport, opts Options) Frame {
	opts = opts.withDefaults()
	k := t.K
	if !(k > 0) {
		k = 1
	}
	toScreen := func(n *graph.Node) r2.Vec {
		return t.Apply(vp.ToCanvas(r2.Vec{X: n.X, Y: n.Y}))
	}

	f := Frame{
		Width:      int(math.Round(vp.Width)),
		Height:     int(math.Round(vp.Height)),
		Background: opts.Background,
	}
	f.Links = planLinks(s, o, k, toScreen, opts)
	f.Nodes = planNodes(s, o, k, toScreen, opts)
	if opts.Labels {
		f.Labels = planLabels(s, o)
	}
	if opts.Title != "" {
		f.Header = planHeader(s, o, opts.Title)
	}
	if opts.Legend {
		f.Legend = planLegend(s, o)
	}
	return f
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.MinNodeRadius <= 0 {
		o.MinNodeRadius = d.MinNodeRadius
	}
	if o.MinLinkWidth <= 0 {
		o.MinLinkWidth = d.MinLinkWidth
	}
	if o.Background == (color.RGBA{}) {
		o.Background = d.Background
	}
	return o
}

// NodeRadius returns the radius of a node in simulation units at scale k,
// inflated so it never paints smaller than minScreen pixels.
func NodeRadius(v graph.NodeVisual, k, minScreen float64) float64 {
	var r float64 = DefaultRadius
	switch {
	case v.Highlighted:
		r = HighlightedRadius
	case v.Dim:
		r = DimRadius
	}
	if r*k < minScreen {
		r = minScreen / k
	}
	return r
}

// LinkAlpha returns the stroke opacity of a link.
func LinkAlpha(v graph.LinkVisual) float64 {
	switch {
	case v.Highlighted:
		return 0.8 + 0.2*v.Intensity
	case v.Dim || !v.Visible:
		return DimLinkAlpha
	default:
		return 0.3 + 0.7*v.Intensity
	}
}

// LinkWidth returns the stroke width of a link in simulation units at scale
// k, inflated so it never paints thinner than minScreen pixels.
func LinkWidth(v graph.LinkVisual, k, minScreen float64) float64 {
	w := (LinkBaseWidth + LinkWeightWidth*v.Intensity) / k
	if w*k < minScreen {
		w = minScreen / k
	}
	return w
}

type linkKey struct {
	rank  int
	alpha float64
	width float64
}

func planLinks(s *graph.State, o graph.Overlay, k float64, toScreen func(*graph.Node) r2.Vec, opts Options) []LinkGroup {
	var groups []LinkGroup
	var ranks []int
	index := make(map[linkKey]int)

	for _, l := range s.Links {
		v := o.Link(l.Index)
		if !v.Drawn(o.JustDim) {
			continue
		}
		src, dst, ok := s.Ends(l)
		if !ok || !placed(src) || !placed(dst) {
			continue
		}
		rank, c := 1, edgeNormal
		switch {
		case v.Highlighted:
			rank, c = 2, edgeHighlighted
		case v.Dim || !v.Visible:
			rank = 0
		}
		key := linkKey{
			rank:  rank,
			alpha: quantize(LinkAlpha(v), 0.01),
			width: quantize(LinkWidth(v, k, opts.MinLinkWidth)*k, 0.05),
		}
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, LinkGroup{Color: c, Alpha: key.alpha, Width: key.width})
			ranks = append(ranks, rank)
		}
		a, b := toScreen(src), toScreen(dst)
		groups[i].Segments = append(groups[i].Segments, Segment{X1: a.X, Y1: a.Y, X2: b.X, Y2: b.Y})
	}

	order := make([]int, len(groups))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return ranks[order[a]] < ranks[order[b]] })
	sorted := make([]LinkGroup, len(groups))
	for i, j := range order {
		sorted[i] = groups[j]
	}
	return sorted
}

type nodeKey struct {
	kind  NodeKind
	color color.RGBA
}

func planNodes(s *graph.State, o graph.Overlay, k float64, toScreen func(*graph.Node) r2.Vec, opts Options) []NodeGroup {
	var shadow []Circle
	var groups []NodeGroup
	index := make(map[nodeKey]int)
	add := func(key nodeKey, alpha float64, c Circle) {
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, NodeGroup{Kind: key.kind, Color: key.color, Alpha: alpha})
		}
		groups[i].Circles = append(groups[i].Circles, c)
	}

	for _, n := range s.Nodes {
		v := o.Node(n.Index)
		if !v.Drawn(o.JustDim) || !placed(n) {
			continue
		}
		p := toScreen(n)
		r := NodeRadius(v, k, opts.MinNodeRadius) * k
		n.CanvasX, n.CanvasY, n.CanvasRadius = p.X, p.Y, r
		c := Circle{X: p.X, Y: p.Y, R: r}

		if opts.Shadows {
			shadow = append(shadow, Circle{X: p.X + 1, Y: p.Y + 1, R: r + 1})
		}
		switch {
		case v.Highlighted:
			col := nodeHighlighted
			if v.HasColor {
				col = v.Color
			}
			add(nodeKey{KindHighlighted, col}, 1, c)
		case v.Dim || !v.Visible:
			add(nodeKey{KindFaded, nodeFaded}, FadedNodeAlpha, c)
		case v.HasColor:
			add(nodeKey{KindColored, v.Color}, 1, c)
		default:
			add(nodeKey{KindNormal, nodeDefault}, 1, c)
		}
	}

	sort.SliceStable(groups, func(a, b int) bool { return groups[a].Kind < groups[b].Kind })
	if len(shadow) > 0 {
		groups = append([]NodeGroup{{Kind: KindShadow, Color: nodeShadow, Alpha: ShadowAlpha, Circles: shadow}}, groups...)
	}
	return groups
}

// planLabels must run after planNodes so the canvas caches are current.
func planLabels(s *graph.State, o graph.Overlay) []Label {
	var normal, bold []Label
	for _, n := range s.Nodes {
		v := o.Node(n.Index)
		if !v.LabelVisible || !v.Drawn(o.JustDim) || !placed(n) {
			continue
		}
		l := Label{
			Text: n.Person.DisplayName(),
			X:    n.CanvasX + n.CanvasRadius + 3,
			Y:    n.CanvasY,
			Size: LabelFontSize,
		}
		if v.Highlighted {
			l.Bold, l.Color = true, textPrimary
			bold = append(bold, l)
			continue
		}
		l.Color = textSecondary
		normal = append(normal, l)
	}
	return append(normal, bold...)
}

func planHeader(s *graph.State, o graph.Overlay, title string) *Header {
	nodes, links := 0, 0
	for _, v := range o.Nodes {
		if v.Visible {
			nodes++
		}
	}
	for _, v := range o.Links {
		if v.Visible && !v.Ignored {
			links++
		}
	}
	return &Header{
		Title:    title,
		Subtitle: fmt.Sprintf("%d authors · %d links · %d publications", nodes, links, len(s.Publications)),
	}
}

func planLegend(s *graph.State, o graph.Overlay) []LegendItem {
	var items []LegendItem
	for _, id := range s.OriginalAuthorIDs {
		n, ok := s.NodeByID(id)
		if !ok {
			continue
		}
		if v := o.Node(n.Index); v.HasColor {
			items = append(items, LegendItem{Color: v.Color, Label: n.Person.DisplayName()})
		}
	}
	return items
}

func placed(n *graph.Node) bool {
	return !math.IsNaN(n.X) && !math.IsNaN(n.Y) && !math.IsInf(n.X, 0) && !math.IsInf(n.Y, 0)
}

func quantize(v, step float64) float64 {
	return math.Round(v/step) * step
}
