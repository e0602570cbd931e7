package extract

import (
	"regexp"
	"strings"

	"fitai-planner-be/internal/pkg/logger"
	"fitai-planner-be/pkg/llm"
)

// Strategy names the cascade step that produced a document.
type Strategy string

const (
	StrategyDirect    Strategy = "direct"
	StrategyJSONFence Strategy = "json_fence"
	StrategyFence     Strategy = "fence"
	StrategyObject    Strategy = "object"
	StrategyFallback  Strategy = "fallback"
)

// EmptyResponsePlaceholder fills the summary when the model returned nothing.
const EmptyResponsePlaceholder = "(empty response)"

var (
	jsonFencePattern    = regexp.MustCompile("```json\\s*([\\s\\S]*?)\\s*```")
	genericFencePattern = regexp.MustCompile("```\\s*([\\s\\S]*?)\\s*```")
	objectPattern       = regexp.MustCompile(`\{[\s\S]*\}`)
)

type Extractor struct {
	logger logger.ILogger
}

func NewExtractor(log logger.ILogger) *Extractor {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Extractor{logger: log}
}

// Extract turns raw model output into a document with a populated summary.
// It never fails: unparseable text degrades to {"raw_response": text}.
func (e *Extractor) Extract(raw any, label string) Document {
	text := llm.FlattenContent(raw)

	doc, strategy := e.Parse(text, label)
	if !doc.HasPrimary() {
		switch {
		case strings.TrimSpace(text) != "":
			doc[PrimaryField] = text
		case rawResponse(doc) != "":
			doc[PrimaryField] = rawResponse(doc)
		default:
			doc[PrimaryField] = EmptyResponsePlaceholder
		}
	}

	e.logger.Debug("EXTRACT", "Document extracted", map[string]interface{}{
		"label":    label,
		"strategy": string(strategy),
		"keys":     len(doc),
	})
	return doc
}

// Parse runs the cascade without summary post-processing. The first
// strategy that yields a JSON object wins.
func (e *Extractor) Parse(text, label string) (Document, Strategy) {
	if doc, ok := ParseDocument(text); ok {
		return doc, StrategyDirect
	}

	if doc, ok := firstParsedBlock(jsonFencePattern, text); ok {
		return doc, StrategyJSONFence
	}

	if doc, ok := firstParsedBlock(genericFencePattern, text); ok {
		return doc, StrategyFence
	}

	if match := objectPattern.FindString(text); match != "" {
		if doc, ok := ParseDocument(match); ok {
			return doc, StrategyObject
		}
	}

	e.logger.Warn("EXTRACT", "No valid JSON found, returning raw_response", map[string]interface{}{
		"label":  label,
		"length": len(text),
	})
	return Document{RawResponseField: text}, StrategyFallback
}

func firstParsedBlock(pattern *regexp.Regexp, text string) (Document, bool) {
	for _, match := range pattern.FindAllStringSubmatch(text, -1) {
		if doc, ok := ParseDocument(match[1]); ok {
			return doc, true
		}
	}
	return nil, false
}

func rawResponse(doc Document) string {
	s, _ := doc[RawResponseField].(string)
	return strings.TrimSpace(s)
}
