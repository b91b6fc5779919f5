// Package parser provides access to the external annotation service that
// tags tokens and entity spans for one document.
package parser

import (
	"context"

	"github.com/JamesPrial/text2graph/pkg/errors"
)

// Token is one annotated word of a parsed document. Head is the position
// of the syntactic head; the root token is its own head.
type Token struct {
	Index int    `json:"i"`
	Text  string `json:"text"`
	Lemma string `json:"lemma"`
	Pos   string `json:"pos"`
	Dep   string `json:"dep"`
	Head  int    `json:"head"`
}

// Span is a labeled entity covering tokens [Start, End).
type Span struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Label string `json:"label"`
	Text  string `json:"text"`
}

// Document holds both annotation layers of one parse.
type Document struct {
	Tokens []Token `json:"tokens"`
	Ents   []Span  `json:"ents"`
}

// Parser produces a Document for a text and explains entity labels.
type Parser interface {
	Parse(ctx context.Context, text string) (*Document, error)
	// Explain returns a human-readable description of an entity label,
	// or "" when the label is unknown.
	Explain(label string) string
	// Available reports whether Parse can be expected to succeed.
	Available(ctx context.Context) bool
}

// Validate checks that token positions are sequential and that every head
// and span refers to tokens inside the document.
func (d *Document) Validate() error {
	n := len(d.Tokens)
	for i, tok := range d.Tokens {
		if tok.Index != i {
			return errors.Newf(errors.ErrCodeParserResponse,
				"token %d has index %d", i, tok.Index)
		}
		if tok.Head < 0 || tok.Head >= n {
			return errors.Newf(errors.ErrCodeParserResponse,
				"token %d has head %d outside document of %d tokens", i, tok.Head, n)
		}
	}

	for i, span := range d.Ents {
		if span.Start < 0 || span.End > n || span.Start >= span.End {
			return errors.Newf(errors.ErrCodeParserResponse,
				"entity %d has invalid range [%d, %d) for %d tokens", i, span.Start, span.End, n)
		}
	}

	return nil
}
