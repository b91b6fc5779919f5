package extract

import (
	"context"
	"log/slog"

	"github.com/JamesPrial/text2graph/internal/parser"
	"github.com/JamesPrial/text2graph/pkg/logging"
	"github.com/JamesPrial/text2graph/pkg/schema"
)

// Extractor turns text into entity summaries and relationships.
type Extractor interface {
	Extract(ctx context.Context, text string) (map[string]*schema.EntityTypeSummary, []schema.Relationship, error)
	// Method names the extraction method reported in summaries.
	Method() string
}

// Parsed extracts from a single parse: spans feed the aggregator and the
// same document feeds the relationship deriver.
type Parsed struct {
	parser parser.Parser
}

func NewParsed(p parser.Parser) *Parsed {
	return &Parsed{parser: p}
}

func (e *Parsed) Extract(ctx context.Context, text string) (map[string]*schema.EntityTypeSummary, []schema.Relationship, error) {
	doc, err := e.parser.Parse(ctx, text)
	if err != nil {
		return nil, nil, err
	}

	entities := Aggregate(doc.Ents, e.parser.Explain)
	relationships := Derive(doc, NewSpanIndex(doc.Ents))
	return entities, relationships, nil
}

func (e *Parsed) Method() string {
	return schema.MethodDependencyParsing
}

// Fallback is the entity-only heuristic used without a parser. It never
// produces relationships.
type Fallback struct{}

func (Fallback) Extract(_ context.Context, text string) (map[string]*schema.EntityTypeSummary, []schema.Relationship, error) {
	return FallbackEntities(text), make([]schema.Relationship, 0), nil
}

func (Fallback) Method() string {
	return schema.MethodCapitalization
}

// Select picks Parsed when p is reachable and Fallback otherwise.
// It is called once at startup.
func Select(ctx context.Context, p parser.Parser) Extractor {
	logger := logging.GetGlobalLogger("extract")

	if p != nil && p.Available(ctx) {
		logger.InfoContext(ctx, "Using dependency parsing extractor")
		return NewParsed(p)
	}

	logger.WarnContext(ctx, "Parser unavailable, using capitalization heuristic",
		slog.String("extraction_method", schema.MethodCapitalization),
	)
	return Fallback{}
}
