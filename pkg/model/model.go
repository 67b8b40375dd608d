// Package model holds the bibliographic records the coauthor graph is built from.
package model

import (
	"fmt"
	"strings"
)

// PersonID identifies an author across publications.
type PersonID string

// Person is an author as supplied by the data source. Immutable once loaded.
type Person struct {
	ID           PersonID `json:"id" yaml:"id"`
	Name         string   `json:"name" yaml:"name"`
	Affiliations []string `json:"affiliations,omitempty" yaml:"affiliations,omitempty"`
}

// DisplayName returns the name, falling back to the id.
func (p Person) DisplayName() string {
	if strings.TrimSpace(p.Name) == "" {
		return string(p.ID)
	}
	return p.Name
}

// PublicationType is the enumerated category of a publication
type PublicationType string

const (
	TypeArticle       PublicationType = "article"
	TypeInproceedings PublicationType = "inproceedings"
	TypeBook          PublicationType = "book"
	TypeIncollection  PublicationType = "incollection"
	TypePhDThesis     PublicationType = "phdthesis"
	TypeMastersThesis PublicationType = "mastersthesis"
	TypeProceedings   PublicationType = "proceedings"
	TypeInformal      PublicationType = "informal"
	TypeEditorship    PublicationType = "editorship"
	TypeReference     PublicationType = "reference"
	TypeData          PublicationType = "data"
	TypeOther         PublicationType = "other"
)

// AllPublicationTypes lists every known type in display order.
var AllPublicationTypes = []PublicationType{
	TypeArticle, TypeInproceedings, TypeBook, TypeIncollection,
	TypePhDThesis, TypeMastersThesis, TypeProceedings, TypeInformal,
	TypeEditorship, TypeReference, TypeData, TypeOther,
}

// ParsePublicationType parses a type name case-insensitively.
func ParsePublicationType(s string) (PublicationType, error) {
	t := PublicationType(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AllPublicationTypes {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown publication type %q", s)
}

// IsValid reports whether t is one of the known types.
func (t PublicationType) IsValid() bool {
	_, err := ParsePublicationType(string(t))
	return err == nil
}

// Publication is one bibliographic record. AuthorIDs drive edge weights.
type Publication struct {
	ID        string          `json:"id" yaml:"id"`
	Title     string          `json:"title,omitempty" yaml:"title,omitempty"`
	Type      PublicationType `json:"type" yaml:"type"`
	Year      int             `json:"year" yaml:"year"`
	AuthorIDs []PersonID      `json:"authors" yaml:"authors"`
	VenueID   string          `json:"venue,omitempty" yaml:"venue,omitempty"`
}

// HasAuthors reports whether the record lists at least one author id.
func (p Publication) HasAuthors() bool {
	for _, id := range p.AuthorIDs {
		if id != "" {
			return true
		}
	}
	return false
}
