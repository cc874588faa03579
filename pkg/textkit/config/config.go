package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/textkit/pkg/textkit/intent"
	"github.com/cognicore/textkit/pkg/textkit/internalerr"
)

// Lexicon represents the sentiment keyword configuration
type Lexicon struct {
	Positive []string `yaml:"positive"`
	Negative []string `yaml:"negative"`
}

// LoadLexicon loads sentiment keywords from a YAML file
func LoadLexicon(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var lex Lexicon
	if err := yaml.Unmarshal(data, &lex); err != nil {
		return nil, err
	}

	lex.Positive = cleanTerms(lex.Positive)
	lex.Negative = cleanTerms(lex.Negative)
	return &lex, nil
}

// IntentRule is one entry of the intents file. Rules are tried in file order.
type IntentRule struct {
	Intent   string   `yaml:"intent"`
	Triggers []string `yaml:"triggers"`
}

// Intents represents the intent trigger configuration
type Intents struct {
	Rules []IntentRule `yaml:"rules"`
}

// LoadIntents loads intent rules from a YAML file
func LoadIntents(path string) (*Intents, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var in Intents
	if err := yaml.Unmarshal(data, &in); err != nil {
		return nil, err
	}

	for i := range in.Rules {
		in.Rules[i].Intent = strings.TrimSpace(in.Rules[i].Intent)
		in.Rules[i].Triggers = cleanTerms(in.Rules[i].Triggers)
	}
	return &in, nil
}

// ToRules converts the file entries into classifier rules. Labels outside the
// closed intent set are rejected.
func (in *Intents) ToRules() ([]intent.Rule, error) {
	rules := make([]intent.Rule, 0, len(in.Rules))
	for i, r := range in.Rules {
		label, ok := intent.Parse(r.Intent)
		if !ok || label == intent.None {
			return nil, fmt.Errorf("rule %d: unknown intent %q: %w", i, r.Intent, internalerr.ErrInvalidConfig)
		}
		if len(r.Triggers) == 0 {
			return nil, fmt.Errorf("rule %d (%s): no triggers: %w", i, r.Intent, internalerr.ErrInvalidConfig)
		}
		rules = append(rules, intent.Rule{Intent: label, Triggers: r.Triggers})
	}
	return rules, nil
}

// cleanTerms trims entries and drops empty ones, keeping order
func cleanTerms(terms []string) []string {
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		out = append(out, t)
	}
	return out
}
