package knowledge

import (
	"sort"
	"strings"
)

// Weights are the points a field earns per signal.
type Weights struct {
	// Direct is added for every query token found in the field key or value.
	Direct int
	// Category is added for every thesaurus category shared by query and field.
	Category int
}

// DefaultWeights returns the standard weighting: thesaurus hits outrank literal overlap.
func DefaultWeights() Weights {
	return Weights{Direct: 2, Category: 3}
}

// Limits bound the selected result set.
type Limits struct {
	MaxTopics          int
	MaxMatchesPerTopic int
	MaxResults         int
}

// DefaultLimits returns 2 topics x 2 fields, at most 3 snippets.
func DefaultLimits() Limits {
	return Limits{MaxTopics: 2, MaxMatchesPerTopic: 2, MaxResults: 3}
}

// Match is a field selected for a query.
type Match struct {
	// Key is the composite "topic.field" identifier.
	Key string
	// Display is "topic.field: flattened value".
	Display string
}

// TopicScore is the aggregated relevance of one topic.
type TopicScore struct {
	Topic   string
	Score   int
	Matches []Match
}

// Engine scores and selects knowledge fields for a query.
// It holds no per-query state and is safe for concurrent use.
type Engine struct {
	thesaurus Thesaurus
	weights   Weights
	limits    Limits
}

// Option configures an Engine.
type Option func(*Engine)

// WithWeights overrides the scoring weights.
func WithWeights(w Weights) Option {
	return func(e *Engine) { e.weights = w }
}

// WithLimits overrides the selection limits. Non-positive limits keep their default.
func WithLimits(l Limits) Option {
	return func(e *Engine) {
		if l.MaxTopics > 0 {
			e.limits.MaxTopics = l.MaxTopics
		}
		if l.MaxMatchesPerTopic > 0 {
			e.limits.MaxMatchesPerTopic = l.MaxMatchesPerTopic
		}
		if l.MaxResults > 0 {
			e.limits.MaxResults = l.MaxResults
		}
	}
}

// NewEngine creates an engine over the given thesaurus.
func NewEngine(th Thesaurus, opts ...Option) *Engine {
	e := &Engine{
		thesaurus: th,
		weights:   DefaultWeights(),
		limits:    DefaultLimits(),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Limits returns the effective selection limits.
func (e *Engine) Limits() Limits { return e.limits }

// Search returns at most Limits.MaxResults display strings relevant to the query.
// It never fails: insufficient data yields an empty slice.
func (e *Engine) Search(query string, doc Document) []string {
	return e.Select(e.Score(Normalize(query), doc))
}

// Score computes per-topic relevance. Topics that are not mappings or score zero
// are omitted; the rest keep document order.
func (e *Engine) Score(q Query, doc Document) []TopicScore {
	active := e.thesaurus.activeFor(q.Text)

	var scores []TopicScore
	for _, t := range doc.Topics() {
		if !t.Searchable() {
			continue
		}

		ts := TopicScore{Topic: t.Name}
		seen := make(map[string]struct{})

		for _, f := range t.Body.Entries() {
			flat := Flatten(f.Value)
			key := strings.ToLower(f.Key)
			value := strings.ToLower(flat)
			m := Match{
				Key:     t.Name + "." + f.Key,
				Display: t.Name + "." + f.Key + ": " + flat,
			}

			for _, tok := range q.Tokens {
				if strings.Contains(key, tok) || strings.Contains(value, tok) {
					ts.Score += e.weights.Direct
					ts.record(m, seen)
				}
			}

			for _, c := range active {
				if c.mentionedIn(key) || c.mentionedIn(value) {
					ts.Score += e.weights.Category
					ts.record(m, seen)
				}
			}
		}

		if ts.Score > 0 {
			scores = append(scores, ts)
		}
	}
	return scores
}

func (ts *TopicScore) record(m Match, seen map[string]struct{}) {
	if _, ok := seen[m.Key]; ok {
		return
	}
	seen[m.Key] = struct{}{}
	ts.Matches = append(ts.Matches, m)
}

// Select ranks topics by descending score (ties keep document order) and
// returns the first matches of the best topics, bounded by Limits.
func (e *Engine) Select(scores []TopicScore) []string {
	ranked := make([]TopicScore, len(scores))
	copy(ranked, scores)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	results := make([]string, 0, e.limits.MaxResults)
	for i, ts := range ranked {
		if i >= e.limits.MaxTopics {
			break
		}
		for j, m := range ts.Matches {
			if j >= e.limits.MaxMatchesPerTopic {
				break
			}
			results = append(results, m.Display)
		}
	}

	if len(results) > e.limits.MaxResults {
		results = results[:e.limits.MaxResults]
	}
	return results
}

// StripKey removes the "topic.field: " prefix from a display string.
func StripKey(display string) string {
	if _, value, ok := strings.Cut(display, ": "); ok {
		return value
	}
	return display
}
