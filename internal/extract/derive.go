package extract

import (
	"strings"

	"github.com/JamesPrial/text2graph/internal/parser"
	"github.com/JamesPrial/text2graph/pkg/schema"
)

var (
	subjectDeps = map[string]bool{"nsubj": true, "nsubjpass": true}
	objectDeps  = map[string]bool{"dobj": true, "attr": true, "pobj": true}
)

// Derive emits one relationship per VERB token that has a subject child and
// an object child, both inside entity spans. Records follow verb order.
//
// When a verb has several subject (or object) children, the last one in
// token order is used.
func Derive(doc *parser.Document, index *SpanIndex) []schema.Relationship {
	relationships := make([]schema.Relationship, 0)
	if doc == nil || len(doc.Tokens) == 0 {
		return relationships
	}
	if index == nil {
		index = NewSpanIndex(doc.Ents)
	}

	children := childIndex(doc.Tokens)

	for i, tok := range doc.Tokens {
		if tok.Pos != "VERB" {
			continue
		}

		subject, object := -1, -1
		for _, c := range children[i] {
			dep := doc.Tokens[c].Dep
			if subjectDeps[dep] {
				subject = c
			} else if objectDeps[dep] {
				object = c
			}
		}
		if subject < 0 || object < 0 {
			continue
		}

		from, ok := index.Lookup(subject)
		if !ok {
			continue
		}
		to, ok := index.Lookup(object)
		if !ok {
			continue
		}

		relationships = append(relationships, schema.Relationship{
			FromEntity:   from.Text,
			FromType:     from.Label,
			Relationship: strings.ToUpper(tok.Lemma),
			ToEntity:     to.Text,
			ToType:       to.Label,
			Confidence:   schema.RelationshipConfidence,
			Source:       schema.MethodDependencyParsing,
		})
	}

	return relationships
}

// childIndex lists the direct children of every token in token order.
// Heads outside the document are ignored.
func childIndex(tokens []parser.Token) [][]int {
	children := make([][]int, len(tokens))
	for i, tok := range tokens {
		if tok.Head == i || tok.Head < 0 || tok.Head >= len(tokens) {
			continue
		}
		children[tok.Head] = append(children[tok.Head], i)
	}
	return children
}
