package schema

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JamesPrial/text2graph/pkg/errors"
)

func TestEntityTypeSummary_Add(t *testing.T) {
	s := NewEntityTypeSummary("Companies, agencies, institutions, etc.")

	s.Add("Acme Corp")
	s.Add("Acme Corp")

	assert.Equal(t, 2, s.Count)
	assert.Equal(t, []string{"Acme Corp"}, s.Examples)
}

func TestEntityTypeSummary_CapsExamples(t *testing.T) {
	s := NewEntityTypeSummary("")
	for i := 0; i < 8; i++ {
		s.Add(fmt.Sprintf("name-%d", i))
	}
	s.Add("name-0")

	assert.Equal(t, 9, s.Count)
	assert.Equal(t, []string{"name-0", "name-1", "name-2", "name-3", "name-4"}, s.Examples)
}

func TestEntityTypeSummary_EmptyExamplesMarshalAsArray(t *testing.T) {
	data, err := json.Marshal(NewEntityTypeSummary("Organizations"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"count":0,"examples":[],"description":"Organizations"}`, string(data))
}

func TestExtractionResult_JSONShape(t *testing.T) {
	result := &ExtractionResult{
		Entities: map[string]*EntityTypeSummary{
			"PERSON": {Count: 1, Examples: []string{"Alice"}, Description: "People, including fictional"},
		},
		Relationships: []Relationship{{
			FromEntity:   "Alice",
			FromType:     "PERSON",
			Relationship: "MANAGE",
			ToEntity:     "Budget",
			ToType:       "PRODUCT",
			Confidence:   RelationshipConfidence,
			Source:       MethodDependencyParsing,
		}},
		Summary: Summary{
			TextLength:         26,
			TotalEntities:      1,
			UniqueEntityTypes:  1,
			TotalRelationships: 1,
			ExtractionMethod:   MethodDependencyParsing,
		},
		Status: StatusSuccess,
	}

	data, err := json.Marshal(result)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"entities": {"PERSON": {"count": 1, "examples": ["Alice"], "description": "People, including fictional"}},
		"relationships": [{"from_entity": "Alice", "from_type": "PERSON", "relationship": "MANAGE",
			"to_entity": "Budget", "to_type": "PRODUCT", "confidence": 0.9, "source": "dependency_parsing"}],
		"summary": {"text_length": 26, "total_entities": 1, "unique_entity_types": 1,
			"total_relationships": 1, "extraction_method": "dependency_parsing"},
		"status": "success"
	}`, string(data))
}

func TestNewErrorResult(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantKind string
		wantMsg  string
	}{
		{
			name:     "empty input",
			err:      errors.New(errors.ErrCodeEmptyInput, "Empty text provided"),
			wantKind: KindEmptyInput,
			wantMsg:  "Empty text provided",
		},
		{
			name:     "extraction failure",
			err:      errors.New(errors.ErrCodeExtractionFailure, "Analysis failed: parser timeout"),
			wantKind: KindExtractionFailure,
			wantMsg:  "Analysis failed: parser timeout",
		},
		{
			name:     "parser unavailable",
			err:      errors.New(errors.ErrCodeParserUnavailable, "no parser"),
			wantKind: KindParserUnavailable,
			wantMsg:  "no parser",
		},
		{
			name:     "plain error is a failure with a safe message",
			err:      fmt.Errorf("boom"),
			wantKind: KindExtractionFailure,
			wantMsg:  "An internal error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := NewErrorResult(tt.err)
			assert.Equal(t, tt.wantKind, res.Kind)
			assert.Equal(t, tt.wantMsg, res.Error)
			assert.Equal(t, StatusError, res.Status)
		})
	}
}

func TestEnvelope(t *testing.T) {
	ok := &ExtractionResult{Status: StatusSuccess}
	assert.Same(t, ok, Envelope(ok, nil))

	env := Envelope(nil, errors.New(errors.ErrCodeEmptyInput, "Empty text provided"))
	data, err := json.Marshal(env)
	require.NoError(t, err)
	assert.JSONEq(t, `{"error":"Empty text provided","kind":"EmptyInput","status":"error"}`, string(data))
	assert.NotContains(t, string(data), "entities")
	assert.NotContains(t, string(data), "relationships")
}
