package store

import (
	"context"
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/textkit/pkg/textkit"
)

// IDSource hands out monotonic ULIDs. Safe for concurrent use.
type IDSource struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// NewIDSource creates an ID source seeded from crypto/rand
func NewIDSource() *IDSource {
	return &IDSource{entropy: ulid.Monotonic(rand.Reader, 0)}
}

// New returns a ULID for t. IDs from one source sort in creation order.
func (s *IDSource) New(t time.Time) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), s.entropy).String()
}

// Recorder analyzes text and archives the result
type Recorder struct {
	analyzer *textkit.Analyzer
	store    Store
	ids      *IDSource
	now      func() time.Time
}

// NewRecorder wires an analyzer to a store
func NewRecorder(analyzer *textkit.Analyzer, st Store) *Recorder {
	return &Recorder{
		analyzer: analyzer,
		store:    st,
		ids:      NewIDSource(),
		now:      time.Now,
	}
}

// Analyzer returns the analyzer used for new records.
func (r *Recorder) Analyzer() *textkit.Analyzer {
	return r.analyzer
}

// Record analyzes text and stores the result under a fresh ID.
func (r *Recorder) Record(ctx context.Context, source, text string) (Record, error) {
	return r.RecordWith(ctx, r.analyzer, source, text)
}

// RecordWith is Record using a specific analyzer.
func (r *Recorder) RecordWith(ctx context.Context, analyzer *textkit.Analyzer, source, text string) (Record, error) {
	now := r.now().UTC()
	rec := Record{
		ID:         r.ids.New(now),
		Source:     source,
		Text:       text,
		AnalyzedAt: now,
		Result:     analyzer.Analyze(text),
	}
	if err := r.store.Put(ctx, rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}
