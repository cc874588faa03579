package sentiment

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Sentiment is the coarse polarity of a text
type Sentiment int

const (
	Neutral Sentiment = iota
	Positive
	Negative
)

var sentimentNames = map[Sentiment]string{
	Neutral:  "Neutral",
	Positive: "Positive",
	Negative: "Negative",
}

// String returns the display name of the sentiment.
func (s Sentiment) String() string {
	if name, ok := sentimentNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Sentiment(%d)", int(s))
}

// Parse maps a display name back to its Sentiment.
func Parse(name string) (Sentiment, bool) {
	for s, n := range sentimentNames {
		if n == name {
			return s, true
		}
	}
	return Neutral, false
}

// MarshalJSON encodes the sentiment as its display name.
func (s Sentiment) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a display name into a Sentiment.
func (s *Sentiment) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	v, ok := Parse(str)
	if !ok {
		return fmt.Errorf("sentiment: unknown sentiment: %q", str)
	}
	*s = v
	return nil
}

// Lexicon holds the keyword lists. Entries are matched as lowercase
// substrings.
type Lexicon struct {
	Positive []string
	Negative []string
}

// DefaultLexicon returns the built-in keyword lists.
func DefaultLexicon() Lexicon {
	return Lexicon{
		Positive: []string{"good", "great", "excellent", "amazing", "wonderful", "fantastic", "love", "like", "happy", "joy"},
		Negative: []string{"bad", "terrible", "awful", "horrible", "hate", "dislike", "sad", "angry", "disappointed", "frustrated"},
	}
}

// Result carries the label and the keyword hits behind it
type Result struct {
	Sentiment Sentiment
	Positive  int
	Negative  int
}

// Scorer counts lexicon hits
type Scorer struct {
	positive []string
	negative []string
}

// NewScorer creates a scorer with its own lowercase copy of the lexicon
func NewScorer(lex Lexicon) *Scorer {
	return &Scorer{
		positive: lowerAll(lex.Positive),
		negative: lowerAll(lex.Negative),
	}
}

// Score lowercases text and counts the lexicon entries it contains. Matching
// is substring containment, so "dislike" also counts as "like"; each entry
// counts at most once.
func (s *Scorer) Score(text string) Result {
	lower := strings.ToLower(text)
	pos := countContained(lower, s.positive)
	neg := countContained(lower, s.negative)

	res := Result{Sentiment: Neutral, Positive: pos, Negative: neg}
	switch {
	case pos > neg:
		res.Sentiment = Positive
	case neg > pos:
		res.Sentiment = Negative
	}
	return res
}

// Classify returns only the label.
func (s *Scorer) Classify(text string) Sentiment {
	return s.Score(text).Sentiment
}

func countContained(text string, words []string) int {
	n := 0
	for _, w := range words {
		if w != "" && strings.Contains(text, w) {
			n++
		}
	}
	return n
}

func lowerAll(words []string) []string {
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = strings.ToLower(w)
	}
	return out
}
