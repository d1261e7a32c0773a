package knowledge

import (
	"sort"
	"strings"
)

// Category is a topical group of synonym tokens.
type Category struct {
	Name     string
	Synonyms []string
}

// Thesaurus is an immutable set of keyword categories used to catch paraphrases.
type Thesaurus struct {
	categories []Category
}

// NewThesaurus builds a thesaurus. Synonyms are lower-cased and trimmed,
// empty synonyms are dropped (they would match every text), and categories
// left without synonyms are skipped.
func NewThesaurus(categories ...Category) Thesaurus {
	out := make([]Category, 0, len(categories))
	for _, c := range categories {
		syns := make([]string, 0, len(c.Synonyms))
		for _, s := range c.Synonyms {
			s = strings.ToLower(strings.TrimSpace(s))
			if s != "" {
				syns = append(syns, s)
			}
		}
		if len(syns) == 0 {
			continue
		}
		out = append(out, Category{Name: c.Name, Synonyms: syns})
	}
	return Thesaurus{categories: out}
}

// ThesaurusFromMap builds a thesaurus from a name -> synonyms map, ordered by name.
func ThesaurusFromMap(m map[string][]string) Thesaurus {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	categories := make([]Category, len(names))
	for i, name := range names {
		categories[i] = Category{Name: name, Synonyms: m[name]}
	}
	return NewThesaurus(categories...)
}

// DefaultThesaurus returns the built-in support categories.
func DefaultThesaurus() Thesaurus {
	return NewThesaurus(
		Category{Name: "dashboard", Synonyms: []string{"dashboard", "score", "sync", "darey", "different"}},
		Category{Name: "course", Synonyms: []string{"course", "track", "change", "switch", "program"}},
		Category{Name: "assessment", Synonyms: []string{"assessment", "test", "exam", "evaluation", "entry"}},
		Category{Name: "financial", Synonyms: []string{"financial", "cost", "fee", "money", "payment", "support"}},
		Category{Name: "timeline", Synonyms: []string{"end", "finish", "when", "date", "timeline", "cohort"}},
		Category{Name: "community", Synonyms: []string{"community", "learning", "group", "assigned"}},
		Category{Name: "support", Synonyms: []string{"support", "help", "contact", "assistance", "hours"}},
		Category{Name: "onboarding", Synonyms: []string{"onboard", "wait", "waiting", "start"}},
		Category{Name: "platform", Synonyms: []string{"platform", "portal", "login", "access"}},
	)
}

// Categories returns a copy of the categories.
func (t Thesaurus) Categories() []Category {
	out := make([]Category, len(t.categories))
	for i, c := range t.categories {
		out[i] = Category{Name: c.Name, Synonyms: append([]string(nil), c.Synonyms...)}
	}
	return out
}

// Len returns the number of categories.
func (t Thesaurus) Len() int { return len(t.categories) }

// activeFor returns the categories with at least one synonym inside text.
func (t Thesaurus) activeFor(text string) []Category {
	if text == "" {
		return nil
	}
	var active []Category
	for _, c := range t.categories {
		if c.mentionedIn(text) {
			active = append(active, c)
		}
	}
	return active
}

func (c Category) mentionedIn(text string) bool {
	for _, s := range c.Synonyms {
		if strings.Contains(text, s) {
			return true
		}
	}
	return false
}
