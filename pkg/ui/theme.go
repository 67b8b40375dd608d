package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme holds the viewer's colors and the renderer that styles are built on.
type Theme struct {
	Renderer *lipgloss.Renderer

	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor
	Highlight lipgloss.AdaptiveColor
	Accent    lipgloss.AdaptiveColor
	Subtext   lipgloss.AdaptiveColor
	Border    lipgloss.AdaptiveColor
	Error     lipgloss.AdaptiveColor
}

// DefaultTheme returns the Dracula-based theme. A nil renderer uses
// lipgloss.DefaultRenderer.
func DefaultTheme(r *lipgloss.Renderer) Theme {
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	return Theme{
		Renderer:  r,
		Primary:   lipgloss.AdaptiveColor{Light: "#7D56F4", Dark: "#BD93F9"},
		Secondary: lipgloss.AdaptiveColor{Light: "#555555", Dark: "#6272A4"},
		Highlight: lipgloss.AdaptiveColor{Light: "#E0E0F8", Dark: "#44475A"},
		Accent:    lipgloss.AdaptiveColor{Light: "#0A8A5B", Dark: "#50FA7B"},
		Subtext:   lipgloss.AdaptiveColor{Light: "#888888", Dark: "#BFBFBF"},
		Border:    lipgloss.AdaptiveColor{Light: "#CCCCCC", Dark: "#44475A"},
		Error:     lipgloss.AdaptiveColor{Light: "#D70000", Dark: "#FF5555"},
	}
}
