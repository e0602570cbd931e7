package extract

import (
	"encoding/json"
	"strings"
)

const (
	// PrimaryField is the key every artifact document is guaranteed to carry.
	PrimaryField = "summary"
	// RawResponseField holds unparseable model output.
	RawResponseField = "raw_response"
)

// Document is a schema-agnostic JSON object produced by extraction.
type Document map[string]any

// ParseDocument parses text as a JSON object. Arrays, scalars and null are
// not documents.
func ParseDocument(text string) (Document, bool) {
	var doc Document
	if err := json.Unmarshal([]byte(text), &doc); err != nil || doc == nil {
		return nil, false
	}
	return doc, true
}

// HasPrimary reports whether the summary field is present and non-empty.
func (d Document) HasPrimary() bool {
	v, ok := d[PrimaryField]
	if !ok || v == nil {
		return false
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t) != ""
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	}
	return true
}

// Primary returns the summary when it is a string.
func (d Document) Primary() string {
	s, _ := d[PrimaryField].(string)
	return s
}

// String renders the document as indented JSON for prompts and logs.
func (d Document) String() string {
	if d == nil {
		return "{}"
	}
	b, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(b)
}

// Clone returns a deep copy so callers can mutate without touching the source.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, inner := range t {
			m[k] = cloneValue(inner)
		}
		return m
	case Document:
		return t.Clone()
	case []any:
		s := make([]any, len(t))
		for i, inner := range t {
			s[i] = cloneValue(inner)
		}
		return s
	default:
		return v
	}
}
