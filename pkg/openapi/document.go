package openapi

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
)

// SourceKind enumerates where a document can be loaded from.
type SourceKind string

const (
	SourceKindFile SourceKind = "file"
	SourceKindFS   SourceKind = "fs"
	SourceKindURL  SourceKind = "url"
)

// Source identifies where an OpenAPI document lives.
type Source interface {
	Kind() SourceKind
	Location() string
}

type source struct {
	kind     SourceKind
	location string
}

func (s source) Kind() SourceKind { return s.kind }

func (s source) Location() string { return s.location }

// SourceFromFile points at a document on disk.
func SourceFromFile(path string) Source {
	return source{kind: SourceKindFile, location: filepath.Clean(path)}
}

// SourceFromFS points at a document inside the loader's fs.FS.
func SourceFromFS(name string) Source {
	return source{kind: SourceKindFS, location: name}
}

// ParseURLSource validates raw and returns a URL source.
func ParseURLSource(raw string) (Source, error) {
	if raw == "" {
		return nil, errors.New("openapi: empty URL source")
	}
	if _, err := url.ParseRequestURI(raw); err != nil {
		return nil, fmt.Errorf("openapi: invalid URL %q: %w", raw, err)
	}
	return source{kind: SourceKindURL, location: raw}, nil
}

// Document is a raw OpenAPI payload together with its origin.
type Document struct {
	source Source
	raw    []byte
}

// NewDocument wraps raw, keeping its own copy.
func NewDocument(src Source, raw []byte) (Document, error) {
	if src == nil {
		return Document{}, errors.New("openapi: source is required")
	}
	if len(raw) == 0 {
		return Document{}, errors.New("openapi: raw document is empty")
	}
	return Document{source: src, raw: append([]byte(nil), raw...)}, nil
}

// Source returns the document origin.
func (d Document) Source() Source {
	return d.source
}

// Raw returns a copy of the payload.
func (d Document) Raw() []byte {
	return append([]byte(nil), d.raw...)
}

// Location returns the origin identifier.
func (d Document) Location() string {
	if d.source == nil {
		return ""
	}
	return d.source.Location()
}

// Operation is the subset of an OpenAPI operation needed to build a form.
type Operation struct {
	ID          string
	Method      string
	Path        string
	Summary     string
	RequestBody Schema
}

// Schema mirrors the JSON Schema keywords that map onto form rules.
type Schema struct {
	Ref        string
	Type       string
	Format     string
	Required   []string
	Properties map[string]Schema
	Items      *Schema
	Enum       []any
	Default    any
	Pattern    string
	MinLength  int
	MaxLength  *int
	MinItems   int
}

// IsObject reports whether the schema describes an object with properties.
func (s Schema) IsObject() bool {
	return s.Type == "object" || (s.Type == "" && len(s.Properties) > 0)
}

func (s Schema) requires(name string) bool {
	for _, candidate := range s.Required {
		if candidate == name {
			return true
		}
	}
	return false
}
