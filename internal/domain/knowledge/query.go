package knowledge

import (
	"strings"
	"unicode/utf8"
)

// MinTokenLength is the shortest query word that takes part in direct matching.
// Shorter words ("is", "a", "my") are too noisy to match on.
const MinTokenLength = 3

// Query is a normalized free-text question.
type Query struct {
	// Text is the whole query, lower-cased. Thesaurus categories match against it.
	Text string
	// Tokens are the significant lower-cased words in query order.
	Tokens []string
}

// Normalize lower-cases the raw query and splits it into significant words.
func Normalize(raw string) Query {
	text := strings.ToLower(raw)
	words := strings.Fields(text)
	tokens := make([]string, 0, len(words))
	for _, w := range words {
		if utf8.RuneCountInString(w) >= MinTokenLength {
			tokens = append(tokens, w)
		}
	}
	return Query{Text: text, Tokens: tokens}
}

// IsEmpty reports whether the query has no significant words.
func (q Query) IsEmpty() bool { return len(q.Tokens) == 0 }
