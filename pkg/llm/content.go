package llm

import (
	"fmt"
	"strings"
)

// Part is one element of list-shaped message content.
type Part struct {
	Type string `json:"type,omitempty"`
	Text string `json:"text,omitempty"`
}

// FlattenContent turns provider content into a single string. Strings pass
// through, list-shaped content keeps its textual parts in order joined by a
// newline and drops everything else.
func FlattenContent(content any) string {
	switch v := content.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case Part:
		return v.Text
	case *Part:
		if v == nil {
			return ""
		}
		return v.Text
	case []Part:
		texts := make([]string, 0, len(v))
		for _, p := range v {
			if isTextPart(p.Type) && p.Text != "" {
				texts = append(texts, p.Text)
			}
		}
		return strings.Join(texts, "\n")
	case []*Part:
		texts := make([]string, 0, len(v))
		for _, p := range v {
			if p != nil && isTextPart(p.Type) && p.Text != "" {
				texts = append(texts, p.Text)
			}
		}
		return strings.Join(texts, "\n")
	case []string:
		return strings.Join(v, "\n")
	case []any:
		texts := make([]string, 0, len(v))
		for _, item := range v {
			if text, ok := partText(item); ok {
				texts = append(texts, text)
			}
		}
		return strings.Join(texts, "\n")
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

func partText(item any) (string, bool) {
	switch p := item.(type) {
	case string:
		return p, true
	case Part:
		return p.Text, isTextPart(p.Type)
	case *Part:
		if p == nil {
			return "", false
		}
		return p.Text, isTextPart(p.Type)
	case map[string]any:
		text, ok := p["text"].(string)
		if !ok {
			return "", false
		}
		if t, hasType := p["type"].(string); hasType && !isTextPart(t) {
			return "", false
		}
		return text, true
	case map[string]string:
		text, ok := p["text"]
		if !ok {
			return "", false
		}
		if t, hasType := p["type"]; hasType && !isTextPart(t) {
			return "", false
		}
		return text, true
	}
	return "", false
}

func isTextPart(t string) bool {
	return t == "" || t == "text"
}
