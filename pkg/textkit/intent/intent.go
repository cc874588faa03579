package intent

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Intent is a closed set of conversational intents. None means absent.
type Intent int

const (
	None Intent = iota
	Greeting
	RequestHelp
	Gratitude
	Farewell
)

var intentLabels = [...]string{
	None:        "",
	Greeting:    "greeting",
	RequestHelp: "request_help",
	Gratitude:   "gratitude",
	Farewell:    "farewell",
}

// String returns the label, or "" for None.
func (i Intent) String() string {
	if int(i) >= 0 && int(i) < len(intentLabels) {
		return intentLabels[i]
	}
	return fmt.Sprintf("Intent(%d)", int(i))
}

// Present reports whether an intent was detected.
func (i Intent) Present() bool { return i != None }

// Parse maps a label back to its Intent. The empty label is None.
func Parse(label string) (Intent, bool) {
	for i, l := range intentLabels {
		if l == label {
			return Intent(i), true
		}
	}
	return None, false
}

// MarshalJSON encodes the label, or null for None.
func (i Intent) MarshalJSON() ([]byte, error) {
	if i == None {
		return []byte("null"), nil
	}
	return json.Marshal(i.String())
}

// UnmarshalJSON accepts a label or null.
func (i *Intent) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*i = None
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, ok := Parse(s)
	if !ok {
		return fmt.Errorf("intent: unknown intent: %q", s)
	}
	*i = v
	return nil
}

// Rule maps trigger phrases to an intent
type Rule struct {
	Intent   Intent
	Triggers []string
}

// DefaultRules returns the built-in rules in priority order.
func DefaultRules() []Rule {
	return []Rule{
		{Intent: Greeting, Triggers: []string{"hello", "hi", "hey"}},
		{Intent: RequestHelp, Triggers: []string{"help", "assist"}},
		{Intent: Gratitude, Triggers: []string{"thank"}},
		{Intent: Farewell, Triggers: []string{"bye", "goodbye"}},
	}
}

// Classifier returns the first rule whose trigger occurs in the text
type Classifier struct {
	rules []Rule
}

// NewClassifier copies and lowercases rules, keeping their order
func NewClassifier(rules []Rule) *Classifier {
	cp := make([]Rule, len(rules))
	for i, r := range rules {
		triggers := make([]string, len(r.Triggers))
		for j, tr := range r.Triggers {
			triggers[j] = strings.ToLower(tr)
		}
		cp[i] = Rule{Intent: r.Intent, Triggers: triggers}
	}
	return &Classifier{rules: cp}
}

// Classify lowercases text and tests the rules in priority order. Triggers
// are substrings, so "this" fires the "hi" greeting trigger.
func (c *Classifier) Classify(text string) Intent {
	lower := strings.ToLower(text)
	for _, r := range c.rules {
		for _, tr := range r.Triggers {
			if tr != "" && strings.Contains(lower, tr) {
				return r.Intent
			}
		}
	}
	return None
}
