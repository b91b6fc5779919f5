package extract

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/JamesPrial/text2graph/pkg/schema"
)

const (
	fallbackPersonDescription = "Person names"
	fallbackOrgDescription    = "Organizations"
	fallbackMinLength         = 3
)

// FallbackEntities marks every whitespace-separated word that is title-cased
// and at least three characters long as a PERSON. ORG is always present and
// always empty.
func FallbackEntities(text string) map[string]*schema.EntityTypeSummary {
	person := schema.NewEntityTypeSummary(fallbackPersonDescription)
	org := schema.NewEntityTypeSummary(fallbackOrgDescription)

	for _, word := range strings.Fields(text) {
		if utf8.RuneCountInString(word) >= fallbackMinLength && isTitle(word) {
			person.Add(word)
		}
	}

	return map[string]*schema.EntityTypeSummary{
		"PERSON": person,
		"ORG":    org,
	}
}

// isTitle reports whether s has at least one cased letter, every uppercase
// letter follows an uncased rune, and every lowercase letter follows a cased
// one. "Alice", "O'Neil" and "Jean-Luc" qualify; "ALICE", "alice" and
// "McDonald" do not.
func isTitle(s string) bool {
	cased, prevCased := false, false
	for _, r := range s {
		switch {
		case unicode.IsUpper(r) || unicode.IsTitle(r):
			if prevCased {
				return false
			}
			prevCased = true
			cased = true
		case unicode.IsLower(r):
			if !prevCased {
				return false
			}
			prevCased = true
			cased = true
		default:
			prevCased = false
		}
	}
	return cased
}
