package render

import (
	"fmt"
	"image/color"

	"git.sr.ht/~sbinet/gg"
)

// labelHalo offsets the background-colored copies drawn under each label.
var labelHalo = [][2]float64{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}

// PaintPNG paints a planned frame onto dc.
func PaintPNG(dc *gg.Context, f Frame) error {
	dc.SetColor(f.Background)
	dc.Clear()

	for _, g := range f.Links {
		if len(g.Segments) == 0 {
			continue
		}
		dc.SetColor(withAlpha(g.Color, g.Alpha))
		dc.SetLineWidth(g.Width)
		for _, s := range g.Segments {
			dc.MoveTo(s.X1, s.Y1)
			dc.LineTo(s.X2, s.Y2)
		}
		dc.Stroke()
	}

	for _, g := range f.Nodes {
		if len(g.Circles) == 0 {
			continue
		}
		dc.SetColor(withAlpha(g.Color, g.Alpha))
		for _, c := range g.Circles {
			dc.DrawCircle(c.X, c.Y, c.R)
		}
		dc.Fill()
	}

	fs, err := newFaces()
	if err != nil {
		return err
	}
	defer fs.Close()

	for _, l := range f.Labels {
		face, err := fs.get(l.Size, l.Bold)
		if err != nil {
			return err
		}
		dc.SetFontFace(face)
		dc.SetColor(f.Background)
		for _, d := range labelHalo {
			dc.DrawStringAnchored(l.Text, l.X+d[0], l.Y+d[1], l.AnchorX, 0.5)
		}
		dc.SetColor(l.Color)
		dc.DrawStringAnchored(l.Text, l.X, l.Y, l.AnchorX, 0.5)
	}

	if f.Header != nil {
		if err := drawHeaderCard(dc, fs, f); err != nil {
			return err
		}
	}
	if len(f.Legend) > 0 {
		if err := drawLegend(dc, fs, f); err != nil {
			return err
		}
	}
	return nil
}

func drawHeaderCard(dc *gg.Context, fs *faces, f Frame) error {
	w := float64(f.Width)
	dc.SetColor(color.RGBA{bgHeader.R, bgHeader.G, bgHeader.B, 0xe0})
	dc.DrawRoundedRectangle(12, 8, w-24, 48, 10)
	dc.Fill()

	dc.SetLineWidth(1)
	dc.SetColor(color.RGBA{0xbd, 0x93, 0xf9, 0x60})
	dc.DrawRoundedRectangle(12, 8, w-24, 48, 10)
	dc.Stroke()

	title, err := fs.get(16, true)
	if err != nil {
		return err
	}
	dc.SetFontFace(title)
	dc.SetColor(textPrimary)
	dc.DrawStringAnchored(f.Header.Title, 24, 24, 0, 0.5)

	sub, err := fs.get(11, false)
	if err != nil {
		return err
	}
	dc.SetFontFace(sub)
	dc.SetColor(textSecondary)
	dc.DrawStringAnchored(f.Header.Subtitle, 24, 44, 0, 0.5)
	return nil
}

func drawLegend(dc *gg.Context, fs *faces, f Frame) error {
	face, err := fs.get(11, false)
	if err != nil {
		return err
	}
	dc.SetFontFace(face)

	boxW := 12.0
	for _, it := range f.Legend {
		tw, _ := dc.MeasureString(it.Label)
		if tw+40 > boxW {
			boxW = tw + 40
		}
	}
	boxH := 16 + float64(len(f.Legend))*18
	x := float64(f.Width) - boxW - 12
	y := float64(f.Height) - boxH - 12

	dc.SetColor(color.RGBA{bgHeader.R, bgHeader.G, bgHeader.B, 0xe0})
	dc.DrawRoundedRectangle(x, y, boxW, boxH, 8)
	dc.Fill()
	dc.SetLineWidth(1)
	dc.SetColor(color.RGBA{nodeFaded.R, nodeFaded.G, nodeFaded.B, 0x60})
	dc.DrawRoundedRectangle(x, y, boxW, boxH, 8)
	dc.Stroke()

	for i, it := range f.Legend {
		iy := y + 17 + float64(i)*18
		dc.SetColor(it.Color)
		dc.DrawCircle(x+16, iy, 5)
		dc.Fill()
		dc.SetColor(textSecondary)
		dc.DrawStringAnchored(it.Label, x+28, iy, 0, 0.5)
	}
	return nil
}

// NewPNGContext returns a context sized for f.
func NewPNGContext(f Frame) (*gg.Context, error) {
	if f.Width <= 0 || f.Height <= 0 {
		return nil, fmt.Errorf("invalid frame size %dx%d", f.Width, f.Height)
	}
	return gg.NewContext(f.Width, f.Height), nil
}
