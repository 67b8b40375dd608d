package render

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ajstarks/svgo"
)

// ErrUnsupportedFormat is returned for image formats other than png and svg.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// RenderPNG paints f and writes it to w as PNG.
func RenderPNG(w io.Writer, f Frame) error {
	dc, err := NewPNGContext(f)
	if err != nil {
		return err
	}
	if err := PaintPNG(dc, f); err != nil {
		return err
	}
	return dc.EncodePNG(w)
}

// RenderSVG paints f and writes it to w as a standalone SVG document.
func RenderSVG(w io.Writer, f Frame) error {
	if f.Width <= 0 || f.Height <= 0 {
		return fmt.Errorf("invalid frame size %dx%d", f.Width, f.Height)
	}
	canvas := svg.New(w)
	canvas.Start(f.Width, f.Height)
	PaintSVG(canvas, f)
	canvas.End()
	return nil
}

// FormatFor returns format lowercased, or the format implied by the
// extension of path when format is empty. It defaults to svg.
func FormatFor(path, format string) string {
	format = strings.ToLower(format)
	if format != "" {
		return format
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if ext == "png" || ext == "svg" {
		return ext
	}
	return "svg"
}

// SaveFile writes f to path as png or svg, creating parent directories.
func SaveFile(path, format string, f Frame) (err error) {
	format = FormatFor(path, format)
	if format != "png" && format != "svg" {
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

	if format == "png" {
		return RenderPNG(file, f)
	}
	return RenderSVG(file, f)
}
