package chat

import "strings"

// Sentiment is a coarse mood label for a user message.
type Sentiment string

// Sentiment labels.
const (
	Positive Sentiment = "positive"
	Negative Sentiment = "negative"
	Neutral  Sentiment = "neutral"
)

// Sentiments lists every label in display order.
var Sentiments = []Sentiment{Positive, Negative, Neutral}

var (
	positiveWords = []string{"good", "great", "excellent", "happy", "thank"}
	negativeWords = []string{"bad", "terrible", "angry", "frustrated", "problem"}
)

// AnalyzeSentiment labels text by counting which word list has more substring hits.
func AnalyzeSentiment(text string) Sentiment {
	lower := strings.ToLower(text)
	pos := countHits(lower, positiveWords)
	neg := countHits(lower, negativeWords)

	switch {
	case pos > neg:
		return Positive
	case neg > pos:
		return Negative
	default:
		return Neutral
	}
}

func countHits(text string, words []string) int {
	n := 0
	for _, w := range words {
		if strings.Contains(text, w) {
			n++
		}
	}
	return n
}
