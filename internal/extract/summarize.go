package extract

import (
	"unicode/utf8"

	"github.com/JamesPrial/text2graph/pkg/schema"
)

// Summarize assembles the success envelope. text_length counts characters.
func Summarize(text string, entities map[string]*schema.EntityTypeSummary, relationships []schema.Relationship, method string) *schema.ExtractionResult {
	if entities == nil {
		entities = make(map[string]*schema.EntityTypeSummary)
	}
	if relationships == nil {
		relationships = make([]schema.Relationship, 0)
	}

	total := 0
	for _, summary := range entities {
		total += summary.Count
	}

	return &schema.ExtractionResult{
		Entities:      entities,
		Relationships: relationships,
		Summary: schema.Summary{
			TextLength:         utf8.RuneCountInString(text),
			TotalEntities:      total,
			UniqueEntityTypes:  len(entities),
			TotalRelationships: len(relationships),
			ExtractionMethod:   method,
		},
		Status: schema.StatusSuccess,
	}
}
