package store

import (
	"context"
	"time"

	"github.com/cognicore/textkit/pkg/textkit"
	"github.com/cognicore/textkit/pkg/textkit/intent"
	"github.com/cognicore/textkit/pkg/textkit/patterns"
	"github.com/cognicore/textkit/pkg/textkit/sentiment"
)

// Store persists analysis records for the embedding host. The analyzer
// itself keeps no state between calls; the archive lives outside it.
type Store interface {
	Close() error

	Put(ctx context.Context, r Record) error
	Get(ctx context.Context, id string) (Record, error)
	// List returns up to limit records, newest first.
	List(ctx context.Context, limit int) ([]Record, error)
	Stats(ctx context.Context) (Stats, error)
}

// Record is one archived analysis
type Record struct {
	ID         string         `json:"id"`               // ULID
	Source     string         `json:"source,omitempty"` // file path, conversation id, etc.
	Text       string         `json:"text"`
	AnalyzedAt time.Time      `json:"analyzed_at"`
	Result     textkit.Result `json:"result"`
}

// Stats aggregates every stored record
type Stats struct {
	Analyses   int64
	Words      int64
	Sentences  int64
	Sentiments map[sentiment.Sentiment]int64
	Intents    map[intent.Intent]int64 // intent.None counts analyses without one
	Entities   map[patterns.EntityType]int64
}

// NewStats returns zeroed stats with initialized maps.
func NewStats() Stats {
	return Stats{
		Sentiments: make(map[sentiment.Sentiment]int64),
		Intents:    make(map[intent.Intent]int64),
		Entities:   make(map[patterns.EntityType]int64),
	}
}

// Add folds one result into the stats.
func (s *Stats) Add(res textkit.Result) {
	s.Analyses++
	s.Words += int64(res.WordCount)
	s.Sentences += int64(res.SentenceCount)
	s.Sentiments[res.Sentiment]++
	s.Intents[res.Intent]++
	for _, e := range res.Entities {
		s.Entities[e.Type]++
	}
}

// DefaultListLimit applies when List is called with limit <= 0.
const DefaultListLimit = 20

// Report is Stats keyed by display names, for JSON output.
type Report struct {
	Analyses   int64            `json:"analyses"`
	Words      int64            `json:"words"`
	Sentences  int64            `json:"sentences"`
	Sentiments map[string]int64 `json:"sentiments"`
	Intents    map[string]int64 `json:"intents"`
	Entities   map[string]int64 `json:"entities"`
}

// Report converts the stats. Analyses without an intent are counted under
// "none".
func (s Stats) Report() Report {
	r := Report{
		Analyses:   s.Analyses,
		Words:      s.Words,
		Sentences:  s.Sentences,
		Sentiments: make(map[string]int64, len(s.Sentiments)),
		Intents:    make(map[string]int64, len(s.Intents)),
		Entities:   make(map[string]int64, len(s.Entities)),
	}
	for k, n := range s.Sentiments {
		r.Sentiments[k.String()] = n
	}
	for k, n := range s.Intents {
		name := k.String()
		if !k.Present() {
			name = "none"
		}
		r.Intents[name] = n
	}
	for k, n := range s.Entities {
		r.Entities[k.String()] = n
	}
	return r
}
