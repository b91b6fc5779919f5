package extract

import (
	"github.com/JamesPrial/text2graph/internal/parser"
)

func tok(i int, text, lemma, pos, dep string, head int) parser.Token {
	return parser.Token{Index: i, Text: text, Lemma: lemma, Pos: pos, Dep: dep, Head: head}
}

func span(start, end int, label, text string) parser.Span {
	return parser.Span{Start: start, End: end, Label: label, Text: text}
}

// aliceDoc is "Alice manages the Budget" with Alice as PERSON and Budget as PRODUCT.
func aliceDoc() *parser.Document {
	return &parser.Document{
		Tokens: []parser.Token{
			tok(0, "Alice", "Alice", "PROPN", "nsubj", 1),
			tok(1, "manages", "manage", "VERB", "ROOT", 1),
			tok(2, "the", "the", "DET", "det", 3),
			tok(3, "Budget", "Budget", "PROPN", "dobj", 1),
		},
		Ents: []parser.Span{
			span(0, 1, "PERSON", "Alice"),
			span(3, 4, "PRODUCT", "Budget"),
		},
	}
}
