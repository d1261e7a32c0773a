package chat

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Rule maps any of its keywords to a fixed reply.
type Rule struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
	Response string   `yaml:"response"`
}

// Responder picks a canned reply for a message. Rules are tried in order;
// the first rule with a keyword inside the lower-cased message wins.
type Responder struct {
	rules    []Rule
	fallback string
}

// NewResponder builds a responder. Keywords are lower-cased; empty keywords are dropped.
func NewResponder(rules []Rule, fallback string) (*Responder, error) {
	if strings.TrimSpace(fallback) == "" {
		return nil, fmt.Errorf("default response is required")
	}
	out := make([]Rule, 0, len(rules))
	for i, r := range rules {
		if r.Response == "" {
			return nil, fmt.Errorf("rule %d (%s): response is required", i, r.Name)
		}
		kws := make([]string, 0, len(r.Keywords))
		for _, k := range r.Keywords {
			if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
				kws = append(kws, k)
			}
		}
		if len(kws) == 0 {
			return nil, fmt.Errorf("rule %d (%s): at least one keyword is required", i, r.Name)
		}
		out = append(out, Rule{Name: r.Name, Keywords: kws, Response: r.Response})
	}
	return &Responder{rules: out, fallback: fallback}, nil
}

type responderFile struct {
	Rules   []Rule `yaml:"rules"`
	Default string `yaml:"default"`
}

// ParseResponder reads a responder from YAML:
//
//	rules:
//	  - name: dashboard_scores
//	    keywords: [dashboard, score]
//	    response: ...
//	default: ...
func ParseResponder(data []byte) (*Responder, error) {
	var f responderFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode responses: %w", err)
	}
	return NewResponder(f.Rules, f.Default)
}

// Reply returns the canned reply for message and the name of the rule that produced it
// ("default" when nothing matched).
func (r *Responder) Reply(message string) (string, string) {
	lower := strings.ToLower(message)
	for _, rule := range r.rules {
		for _, k := range rule.Keywords {
			if strings.Contains(lower, k) {
				return rule.Response, rule.Name
			}
		}
	}
	return r.fallback, "default"
}

// Default returns the greeting used when no rule matches.
func (r *Responder) Default() string { return r.fallback }

// DefaultResponder returns the built-in 3MTT support replies.
func DefaultResponder() *Responder {
	r, err := NewResponder([]Rule{
		{
			Name:     "dashboard_scores",
			Keywords: []string{"dashboard", "score", "darey"},
			Response: "This is because your dashboard gradually syncs with your Darey.io and it may take " +
				"some time for your Darey.io score to tally with that of your dashboard.",
		},
		{
			Name:     "change_course",
			Keywords: []string{"change", "course", "location"},
			Response: "Yes, you can change your course before you get admitted into the Learning Management " +
				"System. Once you have been admitted, you won't be able to change your course. " +
				"You can change your location at any given during cohort 3.",
		},
		{
			Name:     "onboarding_wait",
			Keywords: []string{"onboard", "waiting"},
			Response: "You will be added to communities where you will get access to free resources, " +
				"collaborative self paced learning and physical meetup with your peers.",
		},
		{
			Name:     "entry_assessment",
			Keywords: []string{"assessment", "test"},
			Response: "Yes, there will be an entry assessment to determine the skill benchmark for each " +
				"applicant. This will also be used in selecting the most applicable course for fellows.",
		},
		{
			Name:     "financial_support",
			Keywords: []string{"financial", "money"},
			Response: "The only financial support for this phase of the programme will be the cost of " +
				"training. Participants will be responsible for transportation, meals and other costs.",
		},
		{
			Name:     "physical_attendance",
			Keywords: []string{"physical", "attendance"},
			Response: "The training is hybrid, meaning that it combines online and in-person components. " +
				"While the majority of the training can be done remotely, there are aspects that will " +
				"require in-person training.",
		},
		{
			Name:     "learning_community",
			Keywords: []string{"community", "learning"},
			Response: "When you are assigned to a learning community in your location, the information " +
				"will be displayed on your community page with the 3mtt portal when you log in.",
		},
		{
			Name:     "program_end",
			Keywords: []string{"end", "finish", "cohort"},
			Response: "Cohort 3 ends July 20th.",
		},
	}, "Hello! Welcome to 3MTT support. How can I help you today?")
	if err != nil {
		panic(err)
	}
	return r
}
