package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/JamesPrial/text2graph/pkg/errors"
)

func TestDocumentValidate(t *testing.T) {
	valid := func() *Document {
		return &Document{
			Tokens: []Token{
				{Index: 0, Text: "Alice", Dep: "nsubj", Head: 1},
				{Index: 1, Text: "runs", Pos: "VERB", Dep: "ROOT", Head: 1},
			},
			Ents: []Span{{Start: 0, End: 1, Label: "PERSON", Text: "Alice"}},
		}
	}

	tests := []struct {
		name    string
		mutate  func(d *Document)
		wantErr bool
	}{
		{name: "valid", mutate: func(d *Document) {}},
		{name: "empty document", mutate: func(d *Document) { d.Tokens, d.Ents = nil, nil }},
		{name: "index out of sequence", mutate: func(d *Document) { d.Tokens[1].Index = 5 }, wantErr: true},
		{name: "negative head", mutate: func(d *Document) { d.Tokens[0].Head = -1 }, wantErr: true},
		{name: "head past end", mutate: func(d *Document) { d.Tokens[0].Head = 2 }, wantErr: true},
		{name: "span past end", mutate: func(d *Document) { d.Ents[0].End = 3 }, wantErr: true},
		{name: "empty span", mutate: func(d *Document) { d.Ents[0].End = 0 }, wantErr: true},
		{name: "negative start", mutate: func(d *Document) { d.Ents[0].Start = -1 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := valid()
			tt.mutate(doc)
			err := doc.Validate()

			if tt.wantErr {
				assert.True(t, errors.Is(err, errors.ErrCodeParserResponse), "got %v", err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestExplainLabel(t *testing.T) {
	assert.Equal(t, "Countries, cities, states", ExplainLabel("GPE"))
	assert.Empty(t, ExplainLabel("gpe"))
	assert.Empty(t, ExplainLabel(""))
}
