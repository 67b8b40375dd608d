package recipe

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned by Loader.Get for unknown recipe names.
var ErrNotFound = errors.New("recipe not found")

// file is the on-disk layout of a recipe file.
type file struct {
	Recipes []Recipe `yaml:"recipes"`
}

// Loader holds the builtin recipes plus any loaded from disk. Later loads
// replace recipes of the same name.
type Loader struct {
	recipes map[string]Recipe
	order   []string
}

// NewLoader returns a loader seeded with BuiltinRecipes.
func NewLoader() *Loader {
	l := &Loader{recipes: make(map[string]Recipe)}
	for _, r := range BuiltinRecipes() {
		l.add(r)
	}
	return l
}

func (l *Loader) add(r Recipe) {
	if _, ok := l.recipes[r.Name]; !ok {
		l.order = append(l.order, r.Name)
	}
	l.recipes[r.Name] = r
}

// Parse adds the recipes in a YAML document of the form
//
//	recipes:
//	  - name: ...
func (l *Loader) Parse(data []byte) error {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("parsing recipes: %w", err)
	}
	for i, r := range f.Recipes {
		r.Name = strings.TrimSpace(r.Name)
		if r.Name == "" {
			return fmt.Errorf("recipe %d has no name", i)
		}
		l.add(r)
	}
	return nil
}

// LoadFile adds the recipes in path.
func (l *Loader) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading recipes: %w", err)
	}
	if err := l.Parse(data); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// LoadDir adds every *.yml and *.yaml file in dir, in name order. A missing
// directory is not an error.
func (l *Loader) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading recipe dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if !e.IsDir() && (ext == ".yml" || ext == ".yaml") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	for _, name := range names {
		if err := l.LoadFile(filepath.Join(dir, name)); err != nil {
			return err
		}
	}
	return nil
}

// Get returns the named recipe.
func (l *Loader) Get(name string) (Recipe, error) {
	r, ok := l.recipes[name]
	if !ok {
		return Recipe{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return r, nil
}

// List returns all recipes, builtins first, then in load order.
func (l *Loader) List() []Recipe {
	out := make([]Recipe, 0, len(l.order))
	for _, name := range l.order {
		out = append(out, l.recipes[name])
	}
	return out
}

// Names returns the recipe names in List order.
func (l *Loader) Names() []string {
	return append([]string(nil), l.order...)
}
