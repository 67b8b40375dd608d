package export

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/Dicklesworthstone/coauthor_viewer/pkg/graph"
	"github.com/Dicklesworthstone/coauthor_viewer/pkg/model"
)

// mermaidEdgeLimit caps the collaboration diagram so large graphs stay readable.
const mermaidEdgeLimit = 40

// sanitizeMermaidID ensures an ID is valid for Mermaid diagrams.
// Mermaid node IDs must be alphanumeric with hyphens/underscores.
func sanitizeMermaidID(id string) string {
	var sb strings.Builder
	for _, r := range id {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' {
			sb.WriteRune(r)
		}
	}
	result := sb.String()
	if result == "" {
		return "node"
	}
	return result
}

// sanitizeMermaidText prepares text for use in Mermaid node labels.
func sanitizeMermaidText(text string) string {
	replacer := strings.NewReplacer(
		"\"", "'",
		"[", "(",
		"]", ")",
		"{", "(",
		"}", ")",
		"<", "&lt;",
		">", "&gt;",
		"|", "/",
		"#", "",
		"`", "'",
		"\n", " ",
		"\r", "",
	)
	result := replacer.Replace(text)

	result = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, result)

	result = strings.TrimSpace(result)

	// UTF-8 safe truncation.
	runes := []rune(result)
	if len(runes) > 40 {
		result = string(runes[:37]) + "..."
	}
	return result
}

// sanitizeTableCell keeps text from breaking a markdown table row.
func sanitizeTableCell(text string) string {
	return strings.NewReplacer("|", "\\|", "\n", " ", "\r", "").Replace(text)
}

// GenerateReport creates a markdown report of the graph as the overlay shows
// it: summary counts, publications by type, a collaboration diagram, the
// strongest collaborations and one section per original author.
func GenerateReport(s *graph.State, o graph.Overlay, opts Options) (string, error) {
	var sb strings.Builder

	title := opts.Title
	if title == "" {
		title = DefaultOptions().Title
	}
	generated := opts.Generated
	if generated.IsZero() {
		generated = time.Now()
	}

	sb.WriteString(fmt.Sprintf("# %s\n\n", title))
	sb.WriteString(fmt.Sprintf("*Generated: %s*\n\n", generated.Format(time.RFC1123)))

	nodes := visibleNodes(s, o)
	edges := visibleEdges(s, o)

	byType := make(map[model.PublicationType]int)
	pubs := 0
	for _, p := range s.Publications {
		if !p.HasAuthors() || !opts.Filters.Accepts(p) {
			continue
		}
		pubs++
		byType[p.Type]++
	}

	// Summary
	sb.WriteString("## Summary\n\n")
	sb.WriteString("| Metric | Count |\n|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| **Authors** | %d |\n", len(nodes)))
	sb.WriteString(fmt.Sprintf("| Original authors | %d |\n", len(s.OriginalAuthorIDs)))
	sb.WriteString(fmt.Sprintf("| Collaborations | %d |\n", len(edges)))
	sb.WriteString(fmt.Sprintf("| Publications | %d |\n", pubs))
	if len(edges) > 0 {
		e := edges[0]
		sb.WriteString(fmt.Sprintf("| Strongest tie | %s & %s (%d) |\n",
			sanitizeTableCell(e.src.Person.DisplayName()), sanitizeTableCell(e.dst.Person.DisplayName()), e.weight))
	}
	sb.WriteString("\n")

	if pubs > 0 {
		sb.WriteString("## Publications by Type\n\n")
		sb.WriteString("| Type | Count |\n|------|-------|\n")
		for _, t := range model.AllPublicationTypes {
			if n := byType[t]; n > 0 {
				sb.WriteString(fmt.Sprintf("| %s %s | %d |\n", getTypeEmoji(t), t, n))
			}
		}
		sb.WriteString("\n")
	}

	// Table of Contents
	if len(s.OriginalAuthorIDs) > 0 {
		sb.WriteString("## Table of Contents\n\n")
		for _, id := range s.OriginalAuthorIDs {
			n, ok := s.NodeByID(id)
			if !ok {
				continue
			}
			sb.WriteString(fmt.Sprintf("- [%s](#%s)\n", n.Person.DisplayName(), createSlug(n.Person.DisplayName())))
		}
		sb.WriteString("\n---\n\n")
	}

	writeCollaborationDiagram(&sb, s, edges)

	// Top collaborations
	if len(edges) > 0 {
		limit := opts.TopCollaborations
		if limit <= 0 || limit > len(edges) {
			limit = len(edges)
		}
		sb.WriteString("## Top Collaborations\n\n")
		sb.WriteString("| # | Author | Coauthor | Shared |\n|---|--------|----------|--------|\n")
		for i, e := range edges[:limit] {
			sb.WriteString(fmt.Sprintf("| %d | %s | %s | %d |\n", i+1,
				sanitizeTableCell(e.src.Person.DisplayName()), sanitizeTableCell(e.dst.Person.DisplayName()), e.weight))
		}
		sb.WriteString("\n---\n\n")
	}

	// Individual original authors
	for _, id := range s.OriginalAuthorIDs {
		n, ok := s.NodeByID(id)
		if !ok {
			continue
		}
		v := o.Node(n.Index)
		coauthors := coauthorsOf(s, o, id)

		sb.WriteString(fmt.Sprintf("## %s\n\n", n.Person.DisplayName()))
		sb.WriteString("| Property | Value |\n|----------|-------|\n")
		sb.WriteString(fmt.Sprintf("| **ID** | `%s` |\n", id))
		sb.WriteString(fmt.Sprintf("| **Publications** | %d |\n", v.Count))
		sb.WriteString(fmt.Sprintf("| **Coauthors** | %d |\n", len(coauthors)))
		if len(n.Person.Affiliations) > 0 {
			sb.WriteString(fmt.Sprintf("| **Affiliations** | %s |\n", sanitizeTableCell(strings.Join(n.Person.Affiliations, ", "))))
		}
		sb.WriteString("\n")

		if len(coauthors) > 0 {
			sb.WriteString("### Coauthors\n\n")
			sb.WriteString("| Coauthor | Shared | |\n|----------|--------|---|\n")
			for _, c := range coauthors {
				marker := ""
				if s.IsOriginal(c.node.ID()) {
					marker = "★"
				}
				sb.WriteString(fmt.Sprintf("| %s | %d | %s |\n", sanitizeTableCell(c.node.Person.DisplayName()), c.weight, marker))
			}
			sb.WriteString("\n")
		}
		sb.WriteString("---\n\n")
	}

	return sb.String(), nil
}

func writeCollaborationDiagram(sb *strings.Builder, s *graph.State, edges []edge) {
	sb.WriteString("## Collaboration Graph\n\n")
	sb.WriteString("```mermaid\ngraph LR\n")

	sb.WriteString("    classDef original fill:#FF79C6,stroke:#333,color:#000\n")
	sb.WriteString("    classDef coauthor fill:#8BE9FD,stroke:#333,color:#000\n")
	sb.WriteString("\n")

	if len(edges) > mermaidEdgeLimit {
		edges = edges[:mermaidEdgeLimit]
	}

	declared := make(map[model.PersonID]bool)
	declare := func(n *graph.Node) {
		if declared[n.ID()] {
			return
		}
		declared[n.ID()] = true
		safeID := sanitizeMermaidID(string(n.ID()))
		sb.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", safeID, sanitizeMermaidText(n.Person.DisplayName())))
		class := "coauthor"
		if s.IsOriginal(n.ID()) {
			class = "original"
		}
		sb.WriteString(fmt.Sprintf("    class %s %s\n", safeID, class))
	}

	for _, id := range s.OriginalAuthorIDs {
		if n, ok := s.NodeByID(id); ok {
			declare(n)
		}
	}
	for _, e := range edges {
		declare(e.src)
		declare(e.dst)
		linkStyle := "---"
		if e.weight > 1 {
			linkStyle = "==="
		}
		sb.WriteString(fmt.Sprintf("    %s %s|%d| %s\n",
			sanitizeMermaidID(string(e.src.ID())), linkStyle, e.weight, sanitizeMermaidID(string(e.dst.ID()))))
	}

	if len(edges) == 0 && len(declared) > 0 {
		sb.WriteString("    NoLinks[\"No Collaborations\"]\n")
	}
	sb.WriteString("```\n\n")
	sb.WriteString("---\n\n")
}

type coauthor struct {
	node   *graph.Node
	weight int
}

// coauthorsOf returns id's exported coauthors, most shared publications first.
func coauthorsOf(s *graph.State, o graph.Overlay, id model.PersonID) []coauthor {
	var out []coauthor
	s.Neighbors(id, func(l *graph.Link, other model.PersonID) {
		v := o.Link(l.Index)
		if !v.Visible || v.Ignored {
			return
		}
		if n, ok := s.NodeByID(other); ok {
			out = append(out, coauthor{node: n, weight: v.Weight})
		}
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].weight != out[j].weight {
			return out[i].weight > out[j].weight
		}
		return out[i].node.ID() < out[j].node.ID()
	})
	return out
}

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// createSlug creates a URL-friendly slug from a heading.
func createSlug(text string) string {
	slug := strings.ToLower(text)
	slug = slugPattern.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

func getTypeEmoji(t model.PublicationType) string {
	switch t {
	case model.TypeArticle:
		return "📰"
	case model.TypeInproceedings, model.TypeProceedings:
		return "🎤"
	case model.TypeBook, model.TypeIncollection:
		return "📚"
	case model.TypePhDThesis, model.TypeMastersThesis:
		return "🎓"
	case model.TypeInformal:
		return "📝"
	case model.TypeEditorship:
		return "✏️"
	case model.TypeReference:
		return "🔖"
	case model.TypeData:
		return "💾"
	default:
		return "•"
	}
}
