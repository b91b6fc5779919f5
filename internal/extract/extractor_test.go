package extract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/JamesPrial/text2graph/internal/parser"
	"github.com/JamesPrial/text2graph/pkg/errors"
	"github.com/JamesPrial/text2graph/pkg/schema"
)

func TestParsed_UsesSingleParse(t *testing.T) {
	mockParser := new(parser.MockParser)
	mockParser.On("Parse", mock.Anything, "Alice manages the Budget").Return(aliceDoc(), nil).Once()
	mockParser.On("Explain", "PERSON").Return("People, including fictional")
	mockParser.On("Explain", "PRODUCT").Return("")

	entities, rels, err := NewParsed(mockParser).Extract(context.Background(), "Alice manages the Budget")

	require.NoError(t, err)
	assert.Equal(t, "People, including fictional", entities["PERSON"].Description)
	assert.Equal(t, "PRODUCT", entities["PRODUCT"].Description)
	require.Len(t, rels, 1)
	assert.Equal(t, "MANAGE", rels[0].Relationship)
	mockParser.AssertNumberOfCalls(t, "Parse", 1)
	mockParser.AssertExpectations(t)
}

func TestParsed_PropagatesParseError(t *testing.T) {
	mockParser := new(parser.MockParser)
	parseErr := errors.New(errors.ErrCodeParserRequest, "parser request failed")
	mockParser.On("Parse", mock.Anything, "text").Return(nil, parseErr)

	entities, rels, err := NewParsed(mockParser).Extract(context.Background(), "text")

	assert.Nil(t, entities)
	assert.Nil(t, rels)
	assert.Equal(t, parseErr, err)
}

func TestSelect(t *testing.T) {
	t.Run("available parser", func(t *testing.T) {
		mockParser := new(parser.MockParser)
		mockParser.On("Available", mock.Anything).Return(true).Once()

		extractor := Select(context.Background(), mockParser)

		assert.IsType(t, &Parsed{}, extractor)
		assert.Equal(t, schema.MethodDependencyParsing, extractor.Method())
		mockParser.AssertExpectations(t)
	})

	t.Run("unavailable parser", func(t *testing.T) {
		mockParser := new(parser.MockParser)
		mockParser.On("Available", mock.Anything).Return(false).Once()

		extractor := Select(context.Background(), mockParser)

		assert.IsType(t, Fallback{}, extractor)
		assert.Equal(t, schema.MethodCapitalization, extractor.Method())
		mockParser.AssertNotCalled(t, "Parse", mock.Anything, mock.Anything)
	})

	t.Run("nil parser", func(t *testing.T) {
		assert.IsType(t, Fallback{}, Select(context.Background(), nil))
	})
}
