// Package recipe provides named filter presets for the coauthor graph.
package recipe

import (
	"fmt"
	"image/color"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Dicklesworthstone/coauthor_viewer/pkg/graph"
	"github.com/Dicklesworthstone/coauthor_viewer/pkg/model"
	"github.com/Dicklesworthstone/coauthor_viewer/pkg/render"
)

// Recipe is a named set of filters and view toggles.
type Recipe struct {
	Name        string       `yaml:"name" json:"name"`
	Description string       `yaml:"description,omitempty" json:"description,omitempty"`
	Filters     FilterConfig `yaml:"filters,omitempty" json:"filters,omitempty"`
	View        ViewConfig   `yaml:"view,omitempty" json:"view,omitempty"`
}

// FilterConfig is the serialized form of graph.Filters.
type FilterConfig struct {
	// Types are publication type names such as "article".
	Types []string `yaml:"types,omitempty" json:"types,omitempty"`
	// From and To bound the publication year. Each is either a year ("2019")
	// or a span back from now ("5y").
	From          string            `yaml:"from,omitempty" json:"from,omitempty"`
	To            string            `yaml:"to,omitempty" json:"to,omitempty"`
	Venues        []string          `yaml:"venues,omitempty" json:"venues,omitempty"`
	MinLinkWeight int               `yaml:"min_link_weight,omitempty" json:"min_link_weight,omitempty"`
	Colors        map[string]string `yaml:"colors,omitempty" json:"colors,omitempty"` // person id -> #rrggbb
}

// ViewConfig overrides graph.Options; nil fields keep the current value.
type ViewConfig struct {
	OriginalLinksDisplayed *bool `yaml:"original_links_displayed,omitempty" json:"original_links_displayed,omitempty"`
	JustDimInvisibleNodes  *bool `yaml:"just_dim_invisible_nodes,omitempty" json:"just_dim_invisible_nodes,omitempty"`
	ShowLinkWeightOnHover  *bool `yaml:"show_link_weight_on_hover,omitempty" json:"show_link_weight_on_hover,omitempty"`
}

// Apply returns o with the configured overrides applied.
func (v ViewConfig) Apply(o graph.Options) graph.Options {
	if v.OriginalLinksDisplayed != nil {
		o.OriginalLinksDisplayed = *v.OriginalLinksDisplayed
	}
	if v.JustDimInvisibleNodes != nil {
		o.JustDimInvisibleNodes = *v.JustDimInvisibleNodes
	}
	if v.ShowLinkWeightOnHover != nil {
		o.ShowLinkWeightOnHover = *v.ShowLinkWeightOnHover
	}
	return o
}

// Compile resolves the recipe's filters against now.
func (r Recipe) Compile(now time.Time) (graph.Filters, error) {
	var f graph.Filters
	for _, name := range r.Filters.Types {
		t, err := model.ParsePublicationType(name)
		if err != nil {
			return graph.Filters{}, fmt.Errorf("recipe %s: %w", r.Name, err)
		}
		f.Types = append(f.Types, t)
	}

	var err error
	if f.FromYear, err = ParseRelativeYear(r.Filters.From, now); err != nil {
		return graph.Filters{}, fmt.Errorf("recipe %s: from: %w", r.Name, err)
	}
	if f.ToYear, err = ParseRelativeYear(r.Filters.To, now); err != nil {
		return graph.Filters{}, fmt.Errorf("recipe %s: to: %w", r.Name, err)
	}
	if f.FromYear != 0 && f.ToYear != 0 && f.FromYear > f.ToYear {
		return graph.Filters{}, fmt.Errorf("recipe %s: from year %d is after to year %d", r.Name, f.FromYear, f.ToYear)
	}

	f.Venues = append(f.Venues, r.Filters.Venues...)
	if r.Filters.MinLinkWeight < 0 {
		return graph.Filters{}, fmt.Errorf("recipe %s: negative min_link_weight", r.Name)
	}
	f.MinLinkWeight = r.Filters.MinLinkWeight

	if len(r.Filters.Colors) > 0 {
		f.Colors = make(map[model.PersonID]color.RGBA, len(r.Filters.Colors))
		for id, hex := range r.Filters.Colors {
			c, err := render.ParseHexColor(hex)
			if err != nil {
				return graph.Filters{}, fmt.Errorf("recipe %s: color for %s: %w", r.Name, id, err)
			}
			f.Colors[model.PersonID(id)] = c
		}
	}
	return f, nil
}

// YearParseError reports a year bound that is neither a year nor a span.
type YearParseError struct {
	Input string
}

func (e *YearParseError) Error() string {
	return fmt.Sprintf("invalid year bound %q: want a year like 2019 or a span like 5y", e.Input)
}

var spanPattern = regexp.MustCompile(`^(\d+)y$`)

// ParseRelativeYear parses a year bound. "" means open and yields 0; "5y"
// is five years before now's year; "2019" is taken as is.
func ParseRelativeYear(s string, now time.Time) (int, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0, nil
	}
	if m := spanPattern.FindStringSubmatch(s); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return 0, &YearParseError{Input: s}
		}
		return now.Year() - n, nil
	}
	if len(s) == 4 {
		if y, err := strconv.Atoi(s); err == nil && y > 0 {
			return y, nil
		}
	}
	return 0, &YearParseError{Input: s}
}

func boolPtr(b bool) *bool { return &b }

// DefaultRecipe shows every publication.
func DefaultRecipe() Recipe {
	return Recipe{
		Name:        "all",
		Description: "Every publication and coauthor",
	}
}

// RecentRecipe keeps the last five years.
func RecentRecipe() Recipe {
	return Recipe{
		Name:        "recent",
		Description: "Publications from the last five years",
		Filters:     FilterConfig{From: "5y"},
	}
}

// JournalsRecipe keeps journal articles.
func JournalsRecipe() Recipe {
	return Recipe{
		Name:        "journals",
		Description: "Journal articles only",
		Filters:     FilterConfig{Types: []string{string(model.TypeArticle)}},
	}
}

// ConferencesRecipe keeps conference papers and proceedings.
func ConferencesRecipe() Recipe {
	return Recipe{
		Name:        "conferences",
		Description: "Conference papers and proceedings",
		Filters: FilterConfig{Types: []string{
			string(model.TypeInproceedings),
			string(model.TypeProceedings),
		}},
	}
}

// StrongTiesRecipe hides one-off collaborations and dims instead of hiding.
func StrongTiesRecipe() Recipe {
	return Recipe{
		Name:        "strong-ties",
		Description: "Coauthors sharing at least three publications",
		Filters:     FilterConfig{MinLinkWeight: 3},
		View:        ViewConfig{JustDimInvisibleNodes: boolPtr(true)},
	}
}

// BuiltinRecipes returns the recipes that are always available.
func BuiltinRecipes() []Recipe {
	return []Recipe{
		DefaultRecipe(),
		RecentRecipe(),
		JournalsRecipe(),
		ConferencesRecipe(),
		StrongTiesRecipe(),
	}
}
