// Package source loads people and publications for the coauthor graph from
// JSON, YAML, JSONL or SQLite files.
package source

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Dicklesworthstone/coauthor_viewer/pkg/model"
)

// ErrUnknownFormat is returned when a file's format cannot be determined or
// is not supported.
var ErrUnknownFormat = errors.New("unknown source format")

// Format names an input encoding.
type Format string

const (
	FormatJSON   Format = "json"
	FormatYAML   Format = "yaml"
	FormatJSONL  Format = "jsonl"
	FormatSQLite Format = "sqlite"
)

// Dataset is everything a graph is built from.
type Dataset struct {
	Persons         []model.Person      `json:"persons" yaml:"persons"`
	Publications    []model.Publication `json:"publications" yaml:"publications"`
	OriginalAuthors []model.PersonID    `json:"original_authors,omitempty" yaml:"original_authors,omitempty"`
}

// People indexes Persons by id. Later duplicates win.
func (d Dataset) People() map[model.PersonID]model.Person {
	m := make(map[model.PersonID]model.Person, len(d.Persons))
	for _, p := range d.Persons {
		m[p.ID] = p
	}
	return m
}

// normalize maps unknown publication types to "other" and drops empty
// person records. It returns the number of publication types rewritten.
func (d *Dataset) normalize() int {
	rewritten := 0
	for i := range d.Publications {
		p := &d.Publications[i]
		t, err := model.ParsePublicationType(string(p.Type))
		if err != nil {
			t = model.TypeOther
			rewritten++
		}
		p.Type = t
	}
	persons := d.Persons[:0]
	for _, p := range d.Persons {
		if p.ID != "" {
			persons = append(persons, p)
		}
	}
	d.Persons = persons
	return rewritten
}

// ParseFormat parses a format name.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "jsonl", "ndjson":
		return FormatJSONL, nil
	case "sqlite", "sqlite3", "db":
		return FormatSQLite, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// DetectFormat infers the format from a file extension.
func DetectFormat(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", fmt.Errorf("%w: %s has no extension", ErrUnknownFormat, path)
	}
	return ParseFormat(ext)
}

// Load reads a dataset from path. An empty format is detected from the
// extension.
func Load(ctx context.Context, path string, format Format) (Dataset, error) {
	if format == "" {
		var err error
		if format, err = DetectFormat(path); err != nil {
			return Dataset{}, err
		}
	}

	if format == FormatSQLite {
		db, err := OpenDB(path)
		if err != nil {
			return Dataset{}, err
		}
		defer db.Close()
		return db.Load(ctx)
	}

	f, err := os.Open(path)
	if err != nil {
		return Dataset{}, fmt.Errorf("opening source: %w", err)
	}
	defer f.Close()

	var d Dataset
	switch format {
	case FormatJSON:
		d, err = ReadJSON(f)
	case FormatYAML:
		d, err = ReadYAML(f)
	case FormatJSONL:
		d, err = ReadJSONL(f)
	default:
		return Dataset{}, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if err != nil {
		return Dataset{}, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}
