package render

import (
	"fmt"
	"image/color"
	"strings"
)

// Dracula-inspired dark theme.
var (
	bgDark   = color.RGBA{0x1e, 0x1e, 0x2e, 0xff} // Deep dark blue-gray
	bgHeader = color.RGBA{0x24, 0x24, 0x34, 0xff}

	nodeDefault     = color.RGBA{0x8b, 0xe9, 0xfd, 0xff} // Cyan
	nodeFaded       = color.RGBA{0x62, 0x72, 0xa4, 0xff} // Muted purple-gray
	nodeHighlighted = color.RGBA{0xf1, 0xfa, 0x8c, 0xff} // Yellow
	nodeShadow      = color.RGBA{0x00, 0x00, 0x00, 0xff}

	edgeNormal      = color.RGBA{0x6b, 0x80, 0xbf, 0xff} // Blue
	edgeHighlighted = color.RGBA{0xbd, 0x93, 0xf9, 0xff} // Purple

	textPrimary   = color.RGBA{0xf8, 0xf8, 0xf2, 0xff} // Off-white
	textSecondary = color.RGBA{0xa0, 0xa0, 0xb0, 0xff} // Muted
	textAccent    = color.RGBA{0xbd, 0x93, 0xf9, 0xff} // Purple accent
)

// DefaultBackground is the canvas fill when none is configured.
var DefaultBackground = bgDark

// ParseHexColor parses "#rrggbb", "#rrggbbaa" or "#rgb".
func ParseHexColor(s string) (color.RGBA, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	c := color.RGBA{A: 0xff}
	var err error
	switch len(h) {
	case 3:
		_, err = fmt.Sscanf(h, "%1x%1x%1x", &c.R, &c.G, &c.B)
		c.R, c.G, c.B = c.R*17, c.G*17, c.B*17
	case 6:
		_, err = fmt.Sscanf(h, "%02x%02x%02x", &c.R, &c.G, &c.B)
	case 8:
		_, err = fmt.Sscanf(h, "%02x%02x%02x%02x", &c.R, &c.G, &c.B, &c.A)
	default:
		err = fmt.Errorf("want 3, 6 or 8 hex digits")
	}
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return c, nil
}

// withAlpha returns c with its alpha replaced by a in [0,1].
func withAlpha(c color.RGBA, a float64) color.NRGBA {
	if a < 0 {
		a = 0
	} else if a > 1 {
		a = 1
	}
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: uint8(a*255 + 0.5)}
}

func cssRGBA(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
