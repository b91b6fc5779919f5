// Package schema holds the JSON shapes returned by text extraction.
package schema

import (
	"github.com/JamesPrial/text2graph/pkg/errors"
)

const (
	// MaxExamples caps the distinct surface forms kept per entity type.
	MaxExamples = 5

	// RelationshipConfidence is assigned to every dependency-derived relationship.
	RelationshipConfidence = 0.9

	MethodDependencyParsing = "dependency_parsing"
	MethodCapitalization    = "capitalization_heuristic"

	StatusSuccess = "success"
	StatusError   = "error"
)

// Error kinds reported in ErrorResult.Kind.
const (
	KindEmptyInput        = "EmptyInput"
	KindParserUnavailable = "ParserUnavailable"
	KindExtractionFailure = "ExtractionFailure"
)

// EntityTypeSummary aggregates every occurrence of one entity type.
type EntityTypeSummary struct {
	Count       int      `json:"count"`
	Examples    []string `json:"examples"`
	Description string   `json:"description"`
}

// NewEntityTypeSummary returns an empty summary with a non-nil example list.
func NewEntityTypeSummary(description string) *EntityTypeSummary {
	return &EntityTypeSummary{
		Examples:    make([]string, 0, MaxExamples),
		Description: description,
	}
}

// Add counts one occurrence of text. The text becomes an example if it is
// new and the example list is not full.
func (s *EntityTypeSummary) Add(text string) {
	s.Count++
	if len(s.Examples) >= MaxExamples {
		return
	}
	for _, ex := range s.Examples {
		if ex == text {
			return
		}
	}
	s.Examples = append(s.Examples, text)
}

// Relationship is a directed subject-verb-object edge between two entity spans.
type Relationship struct {
	FromEntity   string  `json:"from_entity"`
	FromType     string  `json:"from_type"`
	Relationship string  `json:"relationship"`
	ToEntity     string  `json:"to_entity"`
	ToType       string  `json:"to_type"`
	Confidence   float64 `json:"confidence"`
	Source       string  `json:"source"`
}

type Summary struct {
	TextLength         int    `json:"text_length"`
	TotalEntities      int    `json:"total_entities"`
	UniqueEntityTypes  int    `json:"unique_entity_types"`
	TotalRelationships int    `json:"total_relationships"`
	ExtractionMethod   string `json:"extraction_method"`
}

// ExtractionResult is the success envelope.
type ExtractionResult struct {
	Entities      map[string]*EntityTypeSummary `json:"entities"`
	Relationships []Relationship                `json:"relationships"`
	Summary       Summary                       `json:"summary"`
	Status        string                        `json:"status"`
}

// ErrorResult is the failure envelope. It carries no entity or relationship keys.
type ErrorResult struct {
	Error  string `json:"error"`
	Kind   string `json:"kind"`
	Status string `json:"status"`
}

// NewErrorResult converts an extraction error into its envelope.
func NewErrorResult(err error) *ErrorResult {
	return &ErrorResult{
		Error:  errors.GetMessage(err),
		Kind:   KindFor(err),
		Status: StatusError,
	}
}

// KindFor maps an error code to the reported error kind.
func KindFor(err error) string {
	switch errors.GetCode(err) {
	case errors.ErrCodeEmptyInput:
		return KindEmptyInput
	case errors.ErrCodeParserUnavailable:
		return KindParserUnavailable
	default:
		return KindExtractionFailure
	}
}

// Envelope returns the value to serialize for a pipeline outcome.
func Envelope(result *ExtractionResult, err error) interface{} {
	if err != nil {
		return NewErrorResult(err)
	}
	return result
}
