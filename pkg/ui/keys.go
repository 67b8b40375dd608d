package ui

import (
	"github.com/charmbracelet/bubbles/key"
)

// keyMap is the viewer's key bindings.
type keyMap struct {
	Quit       key.Binding
	Back       key.Binding
	ZoomIn     key.Binding
	ZoomOut    key.Binding
	Fit        key.Binding
	PanLeft    key.Binding
	PanRight   key.Binding
	PanUp      key.Binding
	PanDown    key.Binding
	Up         key.Binding
	Down       key.Binding
	Open       key.Binding
	Copy       key.Binding
	Recipe     key.Binding
	Dim        key.Binding
	Originals  key.Binding
	Weights    key.Binding
	Relayout   key.Binding
	ToggleHelp key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Back:       key.NewBinding(key.WithKeys("esc", "backspace"), key.WithHelp("esc", "back")),
		ZoomIn:     key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+/-", "zoom")),
		ZoomOut:    key.NewBinding(key.WithKeys("-", "_")),
		Fit:        key.NewBinding(key.WithKeys("0", "f"), key.WithHelp("f", "fit")),
		PanLeft:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←↑↓→", "pan")),
		PanRight:   key.NewBinding(key.WithKeys("right", "l")),
		PanUp:      key.NewBinding(key.WithKeys("up")),
		PanDown:    key.NewBinding(key.WithKeys("down")),
		Up:         key.NewBinding(key.WithKeys("k"), key.WithHelp("j/k", "coauthors")),
		Down:       key.NewBinding(key.WithKeys("j")),
		Open:       key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		Copy:       key.NewBinding(key.WithKeys("c", "y"), key.WithHelp("c", "copy id")),
		Recipe:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "recipe")),
		Dim:        key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "dim/hide")),
		Originals:  key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "original links")),
		Weights:    key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "weights")),
		Relayout:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "relayout")),
		ToggleHelp: key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Quit, k.Back, k.ZoomIn, k.PanLeft, k.Recipe, k.Copy, k.ToggleHelp}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.ZoomIn, k.Fit, k.PanLeft},
		{k.Up, k.Open, k.Copy, k.Back},
		{k.Recipe, k.Dim, k.Originals, k.Weights},
		{k.Relayout, k.ToggleHelp, k.Quit},
	}
}
