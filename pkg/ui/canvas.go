package ui

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/Dicklesworthstone/coauthor_viewer/pkg/render"
)

// Pixels per terminal cell. Each cell shows two vertically stacked samples
// with an upper half block, so the sampling grid is CellWidth x CellHeight/2.
const (
	CellWidth  = 4
	CellHeight = 8
)

// upperHalf draws the top sample as foreground and the bottom as background.
const upperHalf = '▀'

type cell struct {
	ch     rune
	fg, bg color.RGBA
	// cont marks the right half of a wide rune; it prints nothing.
	cont bool
}

// Canvas is a grid of terminal cells rasterized from a render.Frame.
type Canvas struct {
	Cols, Rows int
	cells      []cell
}

// PixelSize is the frame size that maps one-to-one onto cols x rows cells.
func PixelSize(cols, rows int) (width, height int) {
	return cols * CellWidth, rows * CellHeight
}

// CellToPixel returns the pixel at the center of cell (col, row).
func CellToPixel(col, row int) (x, y float64) {
	return (float64(col) + 0.5) * CellWidth, (float64(row) + 0.5) * CellHeight
}

// Rasterize paints f without its labels and samples it into cells, then
// writes the labels as text at their anchor cells.
func Rasterize(f render.Frame, cols, rows int) (*Canvas, error) {
	if cols <= 0 || rows <= 0 {
		return nil, fmt.Errorf("invalid canvas size %dx%d", cols, rows)
	}
	labels := f.Labels
	f.Labels = nil
	f.Width, f.Height = PixelSize(cols, rows)

	dc, err := render.NewPNGContext(f)
	if err != nil {
		return nil, err
	}
	if err := render.PaintPNG(dc, f); err != nil {
		return nil, err
	}
	img := dc.Image()

	c := &Canvas{Cols: cols, Rows: rows, cells: make([]cell, cols*rows)}
	half := CellHeight / 2
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			x0, y0 := col*CellWidth, row*CellHeight
			c.cells[row*cols+col] = cell{
				ch: upperHalf,
				fg: average(img, image.Rect(x0, y0, x0+CellWidth, y0+half)),
				bg: average(img, image.Rect(x0, y0+half, x0+CellWidth, y0+CellHeight)),
			}
		}
	}
	for _, l := range labels {
		c.writeLabel(l)
	}
	return c, nil
}

// average is the mean color of r in img.
func average(img image.Image, r image.Rectangle) color.RGBA {
	r = r.Intersect(img.Bounds())
	if r.Empty() {
		return color.RGBA{A: 0xff}
	}
	var sr, sg, sb, n uint32
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			cr, cg, cb, _ := img.At(x, y).RGBA()
			sr += cr >> 8
			sg += cg >> 8
			sb += cb >> 8
			n++
		}
	}
	return color.RGBA{R: uint8(sr / n), G: uint8(sg / n), B: uint8(sb / n), A: 0xff}
}

// writeLabel places l's text on the row holding its pixel y, anchored
// horizontally the way the image renderers anchor it.
func (c *Canvas) writeLabel(l render.Label) {
	row := int(math.Floor(l.Y / CellHeight))
	if row < 0 || row >= c.Rows || l.Text == "" {
		return
	}
	width := runewidth.StringWidth(l.Text)
	col := int(math.Round(l.X/CellWidth - l.AnchorX*float64(width)))
	for _, r := range l.Text {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		if col >= 0 && col+w <= c.Cols {
			i := row*c.Cols + col
			under := c.cells[i]
			c.cells[i] = cell{ch: r, fg: l.Color, bg: under.bg}
			if w == 2 {
				c.cells[i+1] = cell{cont: true, bg: under.bg}
			}
		}
		col += w
	}
}

// At returns the rune and colors of cell (col, row).
func (c *Canvas) At(col, row int) (ch rune, fg, bg color.RGBA) {
	cl := c.cells[row*c.Cols+col]
	return cl.ch, cl.fg, cl.bg
}

// Render returns the canvas as styled lines. Runs of cells with the same
// colors share one style.
func (c *Canvas) Render(r *lipgloss.Renderer) string {
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	var out strings.Builder
	var run strings.Builder
	for row := 0; row < c.Rows; row++ {
		if row > 0 {
			out.WriteByte('\n')
		}
		var cur cell
		flush := func() {
			if run.Len() == 0 {
				return
			}
			out.WriteString(r.NewStyle().
				Foreground(lipgloss.Color(hex(cur.fg))).
				Background(lipgloss.Color(hex(cur.bg))).
				Render(run.String()))
			run.Reset()
		}
		for col := 0; col < c.Cols; col++ {
			cl := c.cells[row*c.Cols+col]
			if cl.cont {
				continue
			}
			if run.Len() > 0 && (cl.fg != cur.fg || cl.bg != cur.bg) {
				flush()
			}
			cur = cl
			run.WriteRune(cl.ch)
		}
		flush()
	}
	return out.String()
}

func hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
