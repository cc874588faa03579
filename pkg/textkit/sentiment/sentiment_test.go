package sentiment

import (
	"encoding/json"
	"testing"
)

func TestScorePositive(t *testing.T) {
	s := NewScorer(DefaultLexicon())

	res := s.Score("I love this, it is amazing and wonderful!")
	if res.Sentiment != Positive {
		t.Errorf("Expected Positive, got %s", res.Sentiment)
	}
	if res.Positive != 3 || res.Negative != 0 {
		t.Errorf("Expected 3/0 hits, got %d/%d", res.Positive, res.Negative)
	}
}

func TestScoreNegative(t *testing.T) {
	s := NewScorer(DefaultLexicon())

	if got := s.Classify("This is terrible and I hate it, so sad."); got != Negative {
		t.Errorf("Expected Negative, got %s", got)
	}
}

func TestScoreNeutral(t *testing.T) {
	s := NewScorer(DefaultLexicon())

	cases := []string{
		"",
		"The meeting is at noon.",
		"good but bad",
	}
	for _, in := range cases {
		if got := s.Classify(in); got != Neutral {
			t.Errorf("Classify(%q) = %s, want Neutral", in, got)
		}
	}
}

func TestScoreCaseInsensitive(t *testing.T) {
	s := NewScorer(DefaultLexicon())

	if got := s.Classify("GREAT JOB"); got != Positive {
		t.Errorf("Expected Positive, got %s", got)
	}
}

func TestScoreSubstringMatching(t *testing.T) {
	s := NewScorer(DefaultLexicon())

	// "dislike" contains "like": one hit on each side
	res := s.Score("I dislike it")
	if res.Positive != 1 || res.Negative != 1 {
		t.Errorf("Expected 1/1 hits, got %d/%d", res.Positive, res.Negative)
	}
	if res.Sentiment != Neutral {
		t.Errorf("Expected Neutral, got %s", res.Sentiment)
	}
}

func TestScoreEntryCountsOnce(t *testing.T) {
	s := NewScorer(DefaultLexicon())

	res := s.Score("bad bad bad, but good")
	if res.Positive != 1 || res.Negative != 1 {
		t.Errorf("Expected 1/1 hits, got %d/%d", res.Positive, res.Negative)
	}
}

func TestCustomLexicon(t *testing.T) {
	s := NewScorer(Lexicon{Positive: []string{"Stellar"}, Negative: []string{"meh"}})

	if got := s.Classify("a stellar release"); got != Positive {
		t.Errorf("Expected Positive, got %s", got)
	}
	if got := s.Classify("I love it"); got != Neutral {
		t.Errorf("Custom lexicon should replace defaults, got %s", got)
	}
}

func TestSentimentJSON(t *testing.T) {
	data, err := json.Marshal(Negative)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `"Negative"` {
		t.Errorf("Unexpected encoding %s", data)
	}

	var s Sentiment
	if err := json.Unmarshal([]byte(`"Positive"`), &s); err != nil {
		t.Fatal(err)
	}
	if s != Positive {
		t.Errorf("Expected Positive, got %s", s)
	}
	if err := json.Unmarshal([]byte(`"Mixed"`), &s); err == nil {
		t.Error("Expected error for unknown sentiment")
	}
}
