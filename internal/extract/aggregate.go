package extract

import (
	"github.com/JamesPrial/text2graph/internal/parser"
	"github.com/JamesPrial/text2graph/pkg/schema"
)

// Aggregate groups spans by label. Every span is counted; examples keep the
// first distinct surface forms up to schema.MaxExamples. explain is asked
// once per label, and an empty answer falls back to the label itself.
func Aggregate(spans []parser.Span, explain func(label string) string) map[string]*schema.EntityTypeSummary {
	entities := make(map[string]*schema.EntityTypeSummary)

	for _, span := range spans {
		summary, ok := entities[span.Label]
		if !ok {
			description := ""
			if explain != nil {
				description = explain(span.Label)
			}
			if description == "" {
				description = span.Label
			}
			summary = schema.NewEntityTypeSummary(description)
			entities[span.Label] = summary
		}
		summary.Add(span.Text)
	}

	return entities
}
