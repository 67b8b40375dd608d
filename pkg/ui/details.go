package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Dicklesworthstone/coauthor_viewer/pkg/graph"
	"github.com/Dicklesworthstone/coauthor_viewer/pkg/model"
)

// frequentShared is the shared-publication count from which a coauthor is
// listed as frequent.
const frequentShared = 3

// coauthorItem is one row of the details pane.
type coauthorItem struct {
	ID     model.PersonID
	Name   string
	Shared int
}

// coauthorGroup is a titled block of rows.
type coauthorGroup struct {
	Title string
	Items []coauthorItem
}

// DetailsModel lists the coauthors of the focused author, grouped into
// original authors, frequent and occasional collaborators.
type DetailsModel struct {
	focus         *graph.Node
	publications  int
	groups        []coauthorGroup
	selectedGroup int
	selectedItem  int
	scrollOffset  int
	width         int
	height        int
	theme         Theme
}

// NewDetailsModel returns an empty details pane.
func NewDetailsModel(theme Theme) DetailsModel {
	return DetailsModel{theme: theme}
}

// SetSize updates the view dimensions
func (m *DetailsModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Focus shows the coauthors of id as the overlay counts them. An unknown id
// clears the pane. The cursor is kept when the focus does not change.
func (m *DetailsModel) Focus(s *graph.State, o graph.Overlay, id model.PersonID) {
	n, ok := s.NodeByID(id)
	if !ok {
		m.focus, m.groups, m.publications = nil, nil, 0
		m.selectedGroup, m.selectedItem, m.scrollOffset = 0, 0, 0
		return
	}
	same := m.focus != nil && m.focus.ID() == id
	m.focus = n
	m.publications = o.Node(n.Index).Count

	var originals, frequent, occasional []coauthorItem
	s.Neighbors(id, func(l *graph.Link, other model.PersonID) {
		v := o.Link(l.Index)
		if !v.Visible || v.Ignored {
			return
		}
		on, ok := s.NodeByID(other)
		if !ok {
			return
		}
		it := coauthorItem{ID: other, Name: on.Person.DisplayName(), Shared: v.Weight}
		switch {
		case s.IsOriginal(other):
			originals = append(originals, it)
		case v.Weight >= frequentShared:
			frequent = append(frequent, it)
		default:
			occasional = append(occasional, it)
		}
	})

	m.groups = m.groups[:0]
	for _, g := range []coauthorGroup{
		{Title: "Original authors", Items: originals},
		{Title: "Frequent", Items: frequent},
		{Title: "Occasional", Items: occasional},
	} {
		if len(g.Items) == 0 {
			continue
		}
		sortItems(g.Items)
		m.groups = append(m.groups, g)
	}

	if !same || m.selectedGroup >= len(m.groups) ||
		(len(m.groups) > 0 && m.selectedItem >= len(m.groups[m.selectedGroup].Items)) {
		m.selectedGroup, m.selectedItem, m.scrollOffset = 0, 0, 0
	}
}

func sortItems(items []coauthorItem) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].Shared != items[j].Shared {
			return items[i].Shared > items[j].Shared
		}
		return items[i].ID < items[j].ID
	})
}

// FocusID returns the author the pane shows, or "".
func (m *DetailsModel) FocusID() model.PersonID {
	if m.focus == nil {
		return ""
	}
	return m.focus.ID()
}

// MoveUp moves selection up
func (m *DetailsModel) MoveUp() {
	if len(m.groups) == 0 {
		return
	}

	if m.selectedItem > 0 {
		m.selectedItem--
	} else if m.selectedGroup > 0 {
		m.selectedGroup--
		m.selectedItem = len(m.groups[m.selectedGroup].Items) - 1
	}
	m.ensureVisible()
}

// MoveDown moves selection down
func (m *DetailsModel) MoveDown() {
	if len(m.groups) == 0 {
		return
	}

	group := m.groups[m.selectedGroup]
	if m.selectedItem < len(group.Items)-1 {
		m.selectedItem++
	} else if m.selectedGroup < len(m.groups)-1 {
		m.selectedGroup++
		m.selectedItem = 0
	}
	m.ensureVisible()
}

// SelectedCoauthorID returns the ID of the coauthor under the cursor
func (m *DetailsModel) SelectedCoauthorID() model.PersonID {
	if len(m.groups) == 0 || m.selectedGroup >= len(m.groups) {
		return ""
	}
	group := m.groups[m.selectedGroup]
	if m.selectedItem >= len(group.Items) {
		return ""
	}
	return group.Items[m.selectedItem].ID
}

// headerLines is the number of lines above the first group.
func (m *DetailsModel) headerLines() int {
	if m.focus == nil {
		return 2
	}
	n := 4 // name, id + publications, blank, coauthor count
	if len(m.focus.Person.Affiliations) > 0 {
		n++
	}
	return n + 1
}

// ensureVisible adjusts scroll to keep selection visible
func (m *DetailsModel) ensureVisible() {
	lineNum := m.headerLines()
	for i := 0; i < m.selectedGroup; i++ {
		lineNum += 1 + len(m.groups[i].Items) + 1 // header + items + blank
	}
	lineNum += 1 + m.selectedItem

	visibleLines := m.height
	if visibleLines < 5 {
		visibleLines = 5
	}

	if lineNum < m.scrollOffset {
		m.scrollOffset = lineNum
	} else if lineNum >= m.scrollOffset+visibleLines {
		m.scrollOffset = lineNum - visibleLines + 1
	}
}

// Render renders the details pane
func (m *DetailsModel) Render() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	t := m.theme
	var lines []string
	inner := m.width - 2
	if inner < 4 {
		inner = 4
	}

	headerStyle := t.Renderer.NewStyle().
		Bold(true).
		Foreground(t.Primary).
		Padding(0, 1)

	if m.focus == nil {
		lines = append(lines, headerStyle.Render("DETAILS"))
		emptyStyle := t.Renderer.NewStyle().
			Foreground(t.Secondary).
			Italic(true).
			Padding(1, 1)
		lines = append(lines, emptyStyle.Render(truncateRunesHelper("Hover or click an author.", inner, "…")))
		return m.frame(lines)
	}

	p := m.focus.Person
	lines = append(lines, headerStyle.Render(truncateRunesHelper(p.DisplayName(), inner, "…")))
	metaStyle := t.Renderer.NewStyle().Foreground(t.Subtext).Padding(0, 1)
	lines = append(lines, metaStyle.Render(truncateRunesHelper(
		fmt.Sprintf("%s · %d publications", p.ID, m.publications), inner, "…")))
	if len(p.Affiliations) > 0 {
		lines = append(lines, metaStyle.Render(truncateRunesHelper(strings.Join(p.Affiliations, ", "), inner, "…")))
	}
	lines = append(lines, "")

	total := 0
	for _, g := range m.groups {
		total += len(g.Items)
	}
	countStyle := t.Renderer.NewStyle().Bold(true).Foreground(t.Accent).Padding(0, 1)
	lines = append(lines, countStyle.Render(fmt.Sprintf("COAUTHORS (%d)", total)))
	lines = append(lines, "")

	if total == 0 {
		emptyStyle := t.Renderer.NewStyle().
			Foreground(t.Secondary).
			Italic(true).
			Padding(0, 1)
		lines = append(lines, emptyStyle.Render("No coauthors under the current filters."))
	}

	for groupIdx, group := range m.groups {
		groupHeaderStyle := t.Renderer.NewStyle().
			Bold(true).
			Foreground(t.Secondary)
		lines = append(lines, groupHeaderStyle.Render(fmt.Sprintf("%s (%d)", group.Title, len(group.Items))))

		for itemIdx, item := range group.Items {
			isSelected := groupIdx == m.selectedGroup && itemIdx == m.selectedItem

			var itemLine strings.Builder
			if isSelected {
				itemLine.WriteString("▸ ")
			} else {
				itemLine.WriteString("  ")
			}
			if itemIdx < len(group.Items)-1 {
				itemLine.WriteString("├─ ")
			} else {
				itemLine.WriteString("└─ ")
			}

			count := fmt.Sprintf(" %d", item.Shared)
			maxNameLen := inner - lipgloss.Width(itemLine.String()) - len(count)
			if maxNameLen < 4 {
				maxNameLen = 4
			}
			itemLine.WriteString(padRight(truncateRunesHelper(item.Name, maxNameLen, "…"), maxNameLen))
			itemLine.WriteString(count)

			lineStyle := t.Renderer.NewStyle()
			if isSelected {
				lineStyle = lineStyle.Background(t.Highlight).Bold(true)
			}
			lines = append(lines, lineStyle.Render(itemLine.String()))
		}

		lines = append(lines, "") // Blank line between groups
	}

	// Apply scroll offset
	visibleLines := m.height
	if visibleLines < 1 {
		visibleLines = 1
	}

	startLine := m.scrollOffset
	if startLine > len(lines)-visibleLines {
		startLine = len(lines) - visibleLines
	}
	if startLine < 0 {
		startLine = 0
	}

	endLine := startLine + visibleLines
	if endLine > len(lines) {
		endLine = len(lines)
	}

	return m.frame(lines[startLine:endLine])
}

// frame sizes the pane to exactly width x height.
func (m *DetailsModel) frame(lines []string) string {
	return m.theme.Renderer.NewStyle().
		Width(m.width).
		Height(m.height).
		MaxHeight(m.height).
		Render(strings.Join(lines, "\n"))
}
