package render

import (
	"fmt"
	"math"
	"strings"

	"github.com/ajstarks/svgo"
)

// PaintSVG paints a planned frame into an SVG canvas that has already been
// started. Each group becomes a single path element.
func PaintSVG(canvas *svg.SVG, f Frame) {
	canvas.Rect(0, 0, f.Width, f.Height, "fill:"+cssRGBA(f.Background))

	for _, g := range f.Links {
		if len(g.Segments) == 0 {
			continue
		}
		var d strings.Builder
		for _, s := range g.Segments {
			fmt.Fprintf(&d, "M%.2f %.2fL%.2f %.2f", s.X1, s.Y1, s.X2, s.Y2)
		}
		canvas.Path(d.String(), fmt.Sprintf("fill:none;stroke:%s;stroke-opacity:%.2f;stroke-width:%.2f;stroke-linecap:round",
			cssRGBA(g.Color), g.Alpha, g.Width))
	}

	for _, g := range f.Nodes {
		if len(g.Circles) == 0 {
			continue
		}
		var d strings.Builder
		for _, c := range g.Circles {
			circlePath(&d, c)
		}
		canvas.Path(d.String(), fmt.Sprintf("fill:%s;fill-opacity:%.2f;stroke:none", cssRGBA(g.Color), g.Alpha))
	}

	for _, l := range f.Labels {
		anchor := "start"
		if l.AnchorX >= 0.5 {
			anchor = "middle"
		}
		weight := "normal"
		if l.Bold {
			weight = "bold"
		}
		canvas.Text(int(math.Round(l.X)), int(math.Round(l.Y)), l.Text,
			fmt.Sprintf("fill:%s;stroke:%s;stroke-width:3px;paint-order:stroke;stroke-linejoin:round;"+
				"font-size:%.1fpx;font-family:system-ui,sans-serif;font-weight:%s;text-anchor:%s;dominant-baseline:middle",
				cssRGBA(l.Color), cssRGBA(f.Background), l.Size, weight, anchor))
	}

	if f.Header != nil {
		drawHeaderCardSVG(canvas, f)
	}
	if len(f.Legend) > 0 {
		drawLegendSVG(canvas, f)
	}
}

// circlePath appends a full circle as two arcs.
func circlePath(d *strings.Builder, c Circle) {
	fmt.Fprintf(d, "M%.2f %.2fa%.2f %.2f 0 1 0 %.2f 0a%.2f %.2f 0 1 0 %.2f 0",
		c.X-c.R, c.Y, c.R, c.R, 2*c.R, c.R, c.R, -2*c.R)
}

func drawHeaderCardSVG(canvas *svg.SVG, f Frame) {
	canvas.Roundrect(12, 8, f.Width-24, 48, 10, 10,
		fmt.Sprintf("fill:%s;fill-opacity:0.88;stroke:%s;stroke-opacity:0.4", cssRGBA(bgHeader), cssRGBA(textAccent)))
	canvas.Text(24, 29, f.Header.Title,
		fmt.Sprintf("fill:%s;font-size:16px;font-family:system-ui,sans-serif;font-weight:600", cssRGBA(textPrimary)))
	canvas.Text(24, 48, f.Header.Subtitle,
		fmt.Sprintf("fill:%s;font-size:11px;font-family:system-ui,sans-serif", cssRGBA(textSecondary)))
}

func drawLegendSVG(canvas *svg.SVG, f Frame) {
	longest := 0
	for _, it := range f.Legend {
		if n := len([]rune(it.Label)); n > longest {
			longest = n
		}
	}
	boxW := 40 + longest*7
	boxH := 16 + len(f.Legend)*18
	x := f.Width - boxW - 12
	y := f.Height - boxH - 12

	canvas.Roundrect(x, y, boxW, boxH, 8, 8,
		fmt.Sprintf("fill:%s;fill-opacity:0.88;stroke:%s;stroke-opacity:0.4", cssRGBA(bgHeader), cssRGBA(nodeFaded)))
	for i, it := range f.Legend {
		iy := y + 17 + i*18
		canvas.Circle(x+16, iy, 5, "fill:"+cssRGBA(it.Color))
		canvas.Text(x+28, iy+4, it.Label,
			fmt.Sprintf("fill:%s;font-size:11px;font-family:system-ui,sans-serif", cssRGBA(textSecondary)))
	}
}
