// Package ui is the terminal host for the coauthor graph: it runs layouts
// through a layout.Coordinator, paints frames into terminal cells and feeds
// mouse events to the interaction coordinator.
package ui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/Dicklesworthstone/coauthor_viewer/pkg/graph"
	"github.com/Dicklesworthstone/coauthor_viewer/pkg/interact"
	"github.com/Dicklesworthstone/coauthor_viewer/pkg/layout"
	"github.com/Dicklesworthstone/coauthor_viewer/pkg/model"
	"github.com/Dicklesworthstone/coauthor_viewer/pkg/recipe"
	"github.com/Dicklesworthstone/coauthor_viewer/pkg/render"
	"github.com/Dicklesworthstone/coauthor_viewer/pkg/spatial"
	"github.com/Dicklesworthstone/coauthor_viewer/pkg/zoom"
)

const (
	headerHeight = 1
	footerHeight = 1
	// wheelNotch is the wheel delta of one scroll step.
	wheelNotch = 100
	zoomStep   = 1.25
	// panFraction is the share of the viewport one pan key moves.
	panFraction = 0.1
	maxDetails  = 40
)

// Config wires a Model.
type Config struct {
	State *graph.State
	// Recipes are cycled with tab; the first is active at start. Empty means
	// recipe.DefaultRecipe.
	Recipes []recipe.Recipe
	Worker  layout.Worker
	Zoom    zoom.Options
	Render  render.Options
	Theme   *Theme
	Logger  *slog.Logger
	// Copy writes text to the clipboard; nil uses the system clipboard.
	Copy func(string) error
	// Now anchors relative recipe years; nil uses time.Now.
	Now func() time.Time
}

// layoutMsg carries one update of a layout run into Update.
type layoutMsg struct {
	update layout.Update
	ch     <-chan layout.Update
}

// layoutClosedMsg reports that a run's channel closed.
type layoutClosedMsg struct{}

func waitForLayout(ch <-chan layout.Update) tea.Cmd {
	return func() tea.Msg {
		u, ok := <-ch
		if !ok {
			return layoutClosedMsg{}
		}
		return layoutMsg{update: u, ch: ch}
	}
}

// press tracks a left button held down on the canvas.
type press struct {
	col, row         int
	lastCol, lastRow int
	dragged          bool
}

// Model is the bubbletea model of the viewer. It owns the graph state; every
// mutation happens inside Update.
type Model struct {
	ctx    context.Context
	logger *slog.Logger
	theme  Theme
	keys   keyMap
	help   help.Model
	bar    progress.Model
	copy   func(string) error
	now    func() time.Time

	state    *graph.State
	recipes  []recipe.Recipe
	recipeAt int
	filters  graph.Filters
	overlay  graph.Overlay

	layout   *layout.Coordinator
	zoom     *zoom.Controller
	interact *interact.Coordinator
	details  DetailsModel
	renderer render.Options

	running  bool
	laidOut  bool
	progress float64
	status   string
	showHelp bool
	press    *press

	width, height          int
	canvasCols, canvasRows int
	canvas                 string
	dirty                  bool
}

// New returns a viewer for cfg.State. The first layout starts in Init.
func New(ctx context.Context, cfg Config) (*Model, error) {
	if cfg.State == nil {
		return nil, fmt.Errorf("ui: nil graph state")
	}
	if cfg.Worker == nil {
		return nil, fmt.Errorf("ui: nil layout worker")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	theme := DefaultTheme(nil)
	if cfg.Theme != nil {
		theme = *cfg.Theme
	}
	recipes := cfg.Recipes
	if len(recipes) == 0 {
		recipes = []recipe.Recipe{recipe.DefaultRecipe()}
	}
	copyFn := cfg.Copy
	if copyFn == nil {
		copyFn = clipboard.WriteAll
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	m := &Model{
		ctx:      ctx,
		logger:   logger,
		theme:    theme,
		keys:     defaultKeyMap(),
		help:     help.New(),
		bar:      progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		copy:     copyFn,
		now:      now,
		state:    cfg.State,
		recipes:  recipes,
		layout:   layout.NewCoordinator(cfg.Worker, logger),
		details:  NewDetailsModel(theme),
		renderer: cfg.Render,
		dirty:    true,
	}
	m.renderer.Labels = true
	m.renderer.Legend = false
	m.renderer.Title = ""

	cols, rows := 80, 22
	w, h := PixelSize(cols, rows)
	m.zoom = zoom.NewController(zoom.Viewport{Width: float64(w), Height: float64(h)}, cfg.Zoom)
	m.canvasCols, m.canvasRows = cols, rows
	m.interact = interact.New(m.state, m.zoom, interact.Handlers{
		OnNodeClick: func(id model.PersonID) {
			m.status = "selected " + m.displayName(id)
		},
		OnBack: func() { m.status = "" },
	}, logger)

	if err := m.applyRecipe(0); err != nil {
		return nil, err
	}
	return m, nil
}

// Init starts the first layout run.
func (m *Model) Init() tea.Cmd {
	return m.relayout()
}

// Running reports whether a layout run is in flight.
func (m *Model) Running() bool { return m.running }

// Overlay returns the current visual overlay.
func (m *Model) Overlay() graph.Overlay { return m.overlay }

// Zoom returns the view's zoom controller.
func (m *Model) Zoom() *zoom.Controller { return m.zoom }

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case layoutMsg:
		return m, m.onLayout(msg)

	case layoutClosedMsg:
		return m, nil

	case tea.MouseMsg:
		m.onMouse(msg)
		return m, nil

	case tea.KeyMsg:
		return m, m.onKey(msg)
	}
	return m, nil
}

func (m *Model) onLayout(msg layoutMsg) tea.Cmd {
	if !m.layout.Current(msg.update) {
		return nil
	}
	next := waitForLayout(msg.ch)

	switch u := msg.update.Message.(type) {
	case layout.Progress:
		m.progress = u.Value
		return next
	case layout.Done:
		m.running, m.laidOut, m.progress = false, true, 1
		if err := layout.Apply(m.state, u); err != nil {
			m.logger.Warn("layout result did not match graph", "error", err)
		}
		m.zoom.OnLayout(m.drawnNodes())
		m.interact.SetIndex(spatial.NewDrawnIndex(m.state, m.overlay))
		m.status = fmt.Sprintf("laid out %d authors", len(u.Nodes))
		m.dirty = true
	case layout.Failed:
		m.running = false
		m.status = "layout failed: " + u.Err.Error()
		m.logger.Error("layout failed", "error", u.Err)
		m.dirty = true
	}
	return nil
}

// relayout starts a new run for the nodes the overlay draws. Until it
// finishes the old positions stay on screen but nothing can be hit.
func (m *Model) relayout() tea.Cmd {
	req := layout.NewRequest(m.state, m.overlay, layout.GraphWidth, layout.GraphHeight)
	m.state.Unbind()
	m.interact.SetIndex(nil)
	m.running, m.progress = true, 0
	m.dirty = true
	return waitForLayout(m.layout.Start(m.ctx, req))
}

// refresh recomputes the overlay after a selection, hover, filter or option
// change.
func (m *Model) refresh() {
	m.overlay = graph.ComputeOverlay(m.state, m.filters)
	m.interact.SetOverlay(m.overlay)
	focus := m.state.SelectedAuthorID
	if focus == "" {
		focus = m.state.HoveredAuthorID
	}
	m.details.Focus(m.state, m.overlay, focus)
	m.dirty = true
}

func (m *Model) applyRecipe(i int) error {
	r := m.recipes[i]
	f, err := r.Compile(m.now())
	if err != nil {
		return err
	}
	m.recipeAt = i
	m.filters = f
	m.state.Options = r.View.Apply(graph.DefaultOptions())
	m.refresh()
	return nil
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	detailsWidth := width / 3
	if detailsWidth > maxDetails {
		detailsWidth = maxDetails
	}
	cols := width - detailsWidth
	rows := height - headerHeight - footerHeight
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	m.canvasCols, m.canvasRows = cols, rows
	m.details.SetSize(detailsWidth, rows)
	m.bar.Width = width / 2
	m.help.Width = width

	w, h := PixelSize(cols, rows)
	m.zoom.Resize(zoom.Viewport{Width: float64(w), Height: float64(h)})
	if m.laidOut {
		m.zoom.OnLayout(m.drawnNodes())
	}
	m.dirty = true
}

// canvasPoint maps a terminal cell to canvas pixels; ok is false outside
// the canvas.
func (m *Model) canvasPoint(x, y int) (px, py float64, ok bool) {
	col, row := x, y-headerHeight
	if col < 0 || col >= m.canvasCols || row < 0 || row >= m.canvasRows {
		return 0, 0, false
	}
	px, py = CellToPixel(col, row)
	return px, py, true
}

func (m *Model) onMouse(msg tea.MouseMsg) {
	px, py, inCanvas := m.canvasPoint(msg.X, msg.Y)

	switch {
	case msg.Button == tea.MouseButtonWheelUp || msg.Button == tea.MouseButtonWheelDown:
		if !inCanvas {
			return
		}
		delta := float64(wheelNotch)
		if msg.Button == tea.MouseButtonWheelUp {
			delta = -delta
		}
		m.zoom.Wheel(delta, r2.Vec{X: px, Y: py})
		m.dirty = true

	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		if inCanvas {
			m.press = &press{col: msg.X, row: msg.Y, lastCol: msg.X, lastRow: msg.Y}
		}

	case msg.Action == tea.MouseActionMotion && msg.Button == tea.MouseButtonLeft && m.press != nil:
		dx := float64(msg.X-m.press.lastCol) * CellWidth
		dy := float64(msg.Y-m.press.lastRow) * CellHeight
		if dx != 0 || dy != 0 {
			m.zoom.Drag(dx, dy)
			m.press.lastCol, m.press.lastRow = msg.X, msg.Y
			m.press.dragged = true
			m.dirty = true
		}

	case msg.Action == tea.MouseActionRelease:
		p := m.press
		m.press = nil
		if p != nil && !p.dragged && inCanvas && m.interact.Click(px, py) {
			m.refresh()
		}

	case msg.Action == tea.MouseActionMotion:
		changed := false
		if inCanvas {
			changed = m.interact.PointerMove(px, py)
		} else {
			changed = m.interact.PointerLeave()
		}
		if changed {
			m.refresh()
		}
	}
}

func (m *Model) onKey(msg tea.KeyMsg) tea.Cmd {
	vp := m.zoom.Viewport()
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.layout.Stop()
		return tea.Quit
	case key.Matches(msg, m.keys.Back):
		if m.showHelp {
			m.showHelp = false
			m.dirty = true
		} else if m.interact.Back() {
			m.refresh()
		}
	case key.Matches(msg, m.keys.ZoomIn):
		m.zoom.ScaleBy(zoomStep, vp.Center())
		m.dirty = true
	case key.Matches(msg, m.keys.ZoomOut):
		m.zoom.ScaleBy(1/zoomStep, vp.Center())
		m.dirty = true
	case key.Matches(msg, m.keys.Fit):
		m.zoom.Fit()
		m.dirty = true
	case key.Matches(msg, m.keys.PanLeft):
		m.zoom.Drag(vp.Width*panFraction, 0)
		m.dirty = true
	case key.Matches(msg, m.keys.PanRight):
		m.zoom.Drag(-vp.Width*panFraction, 0)
		m.dirty = true
	case key.Matches(msg, m.keys.PanUp):
		m.zoom.Drag(0, vp.Height*panFraction)
		m.dirty = true
	case key.Matches(msg, m.keys.PanDown):
		m.zoom.Drag(0, -vp.Height*panFraction)
		m.dirty = true
	case key.Matches(msg, m.keys.Up):
		m.details.MoveUp()
	case key.Matches(msg, m.keys.Down):
		m.details.MoveDown()
	case key.Matches(msg, m.keys.Open):
		if id := m.details.SelectedCoauthorID(); id != "" {
			m.state.SelectedAuthorID = id
			m.status = "selected " + m.displayName(id)
			m.refresh()
		}
	case key.Matches(msg, m.keys.Copy):
		m.copyFocus()
	case key.Matches(msg, m.keys.Recipe):
		next := (m.recipeAt + 1) % len(m.recipes)
		if err := m.applyRecipe(next); err != nil {
			m.status = err.Error()
			return nil
		}
		m.status = "recipe " + m.recipes[next].Name
		return m.relayout()
	case key.Matches(msg, m.keys.Dim):
		m.state.Options.JustDimInvisibleNodes = !m.state.Options.JustDimInvisibleNodes
		m.refresh()
		return m.relayout()
	case key.Matches(msg, m.keys.Originals):
		m.state.Options.OriginalLinksDisplayed = !m.state.Options.OriginalLinksDisplayed
		m.refresh()
		return m.relayout()
	case key.Matches(msg, m.keys.Weights):
		m.state.Options.ShowLinkWeightOnHover = !m.state.Options.ShowLinkWeightOnHover
		m.interact.PointerLeave()
		m.refresh()
	case key.Matches(msg, m.keys.Relayout):
		return m.relayout()
	case key.Matches(msg, m.keys.ToggleHelp):
		m.showHelp = !m.showHelp
	}
	return nil
}

func (m *Model) copyFocus() {
	id := m.details.FocusID()
	if id == "" {
		m.status = "nothing to copy"
		return
	}
	if err := m.copy(string(id)); err != nil {
		m.status = "copy failed: " + err.Error()
		m.logger.Warn("clipboard write failed", "error", err)
		return
	}
	m.status = "copied " + string(id)
}

func (m *Model) displayName(id model.PersonID) string {
	if n, ok := m.state.NodeByID(id); ok {
		return n.Person.DisplayName()
	}
	return string(id)
}

func (m *Model) drawnNodes() []*graph.Node {
	var out []*graph.Node
	for _, n := range m.state.Nodes {
		if m.overlay.Node(n.Index).Drawn(m.overlay.JustDim) {
			out = append(out, n)
		}
	}
	return out
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading coauthor graph…"
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.headerView(),
		lipgloss.JoinHorizontal(lipgloss.Top, m.canvasView(), m.sideView()),
		m.footerView(),
	)
}

func (m *Model) headerView() string {
	nodes, links := 0, 0
	for _, v := range m.overlay.Nodes {
		if v.Visible {
			nodes++
		}
	}
	for _, v := range m.overlay.Links {
		if v.Visible && !v.Ignored {
			links++
		}
	}
	text := fmt.Sprintf(" coauthors · %s · %d authors · %d links · %.1fx",
		m.recipes[m.recipeAt].Name, nodes, links, m.zoom.Transform().K)
	return m.theme.Renderer.NewStyle().
		Bold(true).
		Foreground(m.theme.Primary).
		Background(m.theme.Highlight).
		Width(m.width).
		Render(truncateRunesHelper(text, m.width, "…"))
}

func (m *Model) canvasView() string {
	if !m.dirty && m.canvas != "" {
		return m.canvas
	}
	w, h := PixelSize(m.canvasCols, m.canvasRows)
	f := render.Plan(m.state, m.overlay, m.zoom.Transform(),
		zoom.Viewport{Width: float64(w), Height: float64(h)}, m.renderer)
	if l, ok := m.interact.EdgeLabel(); ok {
		f.AddLabel(l.Text, l.X, l.Y)
	}
	c, err := Rasterize(f, m.canvasCols, m.canvasRows)
	if err != nil {
		m.logger.Error("rasterize failed", "error", err)
		return strings.Repeat("\n", m.canvasRows-1)
	}
	m.canvas = c.Render(m.theme.Renderer)
	m.dirty = false
	return m.canvas
}

func (m *Model) sideView() string {
	if !m.showHelp {
		return m.details.Render()
	}
	var lines []string
	keyStyle := m.theme.Renderer.NewStyle().Bold(true).Foreground(m.theme.Accent)
	descStyle := m.theme.Renderer.NewStyle().Foreground(m.theme.Subtext)
	lines = append(lines, m.theme.Renderer.NewStyle().Bold(true).Foreground(m.theme.Primary).Padding(0, 1).Render("KEYS"), "")
	for _, group := range m.keys.FullHelp() {
		for _, b := range group {
			h := b.Help()
			if h.Key == "" {
				continue
			}
			lines = append(lines, " "+keyStyle.Render(padRight(h.Key, 8))+descStyle.Render(h.Desc))
		}
		lines = append(lines, "")
	}
	return m.theme.Renderer.NewStyle().
		Width(m.details.width).
		Height(m.canvasRows).
		MaxHeight(m.canvasRows).
		Render(strings.Join(lines, "\n"))
}

func (m *Model) footerView() string {
	if m.running {
		return m.bar.ViewAs(m.progress) + m.theme.Renderer.NewStyle().
			Foreground(m.theme.Subtext).
			Render(fmt.Sprintf(" laying out… %3.0f%%", m.progress*100))
	}
	if m.status != "" {
		style := m.theme.Renderer.NewStyle().Foreground(m.theme.Subtext)
		if strings.HasPrefix(m.status, "layout failed") || strings.HasPrefix(m.status, "copy failed") {
			style = style.Foreground(m.theme.Error)
		}
		return style.Render(truncateRunesHelper(" "+m.status, m.width, "…"))
	}
	return m.help.View(m.keys)
}
