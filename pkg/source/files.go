package source

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/Dicklesworthstone/coauthor_viewer/pkg/model"
)

// MaxJSONLLineCapacity is the longest JSONL record accepted (1MB per line).
const MaxJSONLLineCapacity = 1024 * 1024

// ReadJSON decodes a single dataset document.
func ReadJSON(r io.Reader) (Dataset, error) {
	var d Dataset
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return Dataset{}, fmt.Errorf("decoding json: %w", err)
	}
	d.normalize()
	return d, nil
}

// ReadYAML decodes a single dataset document.
func ReadYAML(r io.Reader) (Dataset, error) {
	var d Dataset
	if err := yaml.NewDecoder(r).Decode(&d); err != nil && err != io.EOF {
		return Dataset{}, fmt.Errorf("decoding yaml: %w", err)
	}
	d.normalize()
	return d, nil
}

// jsonlRecord is one line of a JSONL dataset. Kind selects which of the
// embedded shapes the line carries.
type jsonlRecord struct {
	Kind string `json:"kind"`
	model.Person
	model.Publication
	Original bool `json:"original,omitempty"`
}

// UnmarshalJSON decodes the line into the shape its kind names, since
// Person and Publication share the id field.
func (rec *jsonlRecord) UnmarshalJSON(data []byte) error {
	var head struct {
		Kind     string `json:"kind"`
		Original bool   `json:"original"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}
	rec.Kind, rec.Original = head.Kind, head.Original
	switch head.Kind {
	case "person":
		return json.Unmarshal(data, &rec.Person)
	case "publication":
		return json.Unmarshal(data, &rec.Publication)
	default:
		return fmt.Errorf("unknown record kind %q", head.Kind)
	}
}

// ReadJSONL reads one record per line:
//
//	{"kind":"person","id":"knuth","name":"Donald Knuth","original":true}
//	{"kind":"publication","id":"p1","type":"article","year":1974,"authors":["knuth"]}
//
// Blank lines are skipped.
func ReadJSONL(r io.Reader) (Dataset, error) {
	var d Dataset
	scanner := bufio.NewScanner(r)
	buf := make([]byte, 64*1024)
	scanner.Buffer(buf, MaxJSONLLineCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec jsonlRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			return Dataset{}, fmt.Errorf("parsing line %d: %w", lineNum, err)
		}
		switch rec.Kind {
		case "person":
			d.Persons = append(d.Persons, rec.Person)
			if rec.Original {
				d.OriginalAuthors = append(d.OriginalAuthors, rec.Person.ID)
			}
		case "publication":
			d.Publications = append(d.Publications, rec.Publication)
		}
	}
	if err := scanner.Err(); err != nil {
		return Dataset{}, fmt.Errorf("reading jsonl: %w", err)
	}
	d.normalize()
	return d, nil
}

// WriteJSONL writes d in the format ReadJSONL reads.
func WriteJSONL(w io.Writer, d Dataset) error {
	original := make(map[model.PersonID]bool, len(d.OriginalAuthors))
	for _, id := range d.OriginalAuthors {
		original[id] = true
	}
	enc := json.NewEncoder(w)
	for i, p := range d.Persons {
		line := struct {
			Kind string `json:"kind"`
			model.Person
			Original bool `json:"original,omitempty"`
		}{"person", p, original[p.ID]}
		if err := enc.Encode(line); err != nil {
			return fmt.Errorf("encoding person %d: %w", i, err)
		}
	}
	for i, p := range d.Publications {
		line := struct {
			Kind string `json:"kind"`
			model.Publication
		}{"publication", p}
		if err := enc.Encode(line); err != nil {
			return fmt.Errorf("encoding publication %d: %w", i, err)
		}
	}
	return nil
}
