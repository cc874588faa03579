package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/cognicore/textkit/pkg/textkit/entities"
	"github.com/cognicore/textkit/pkg/textkit/internalerr"
	"github.com/cognicore/textkit/pkg/textkit/store"
	"github.com/cognicore/textkit/pkg/textkit/tokenize"
)

// Store is an in-memory implementation of store.Store for tests.
type Store struct {
	mu      sync.RWMutex
	records map[string]store.Record
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{records: make(map[string]store.Record)}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// Put inserts or replaces a record, keyed by ID.
func (s *Store) Put(ctx context.Context, r store.Record) error {
	if r.ID == "" {
		return fmt.Errorf("put analysis: empty id: %w", internalerr.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[r.ID] = copyRecord(r)
	return nil
}

// Get returns a record by ID.
func (s *Store) Get(ctx context.Context, id string) (store.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if rec, ok := s.records[id]; ok {
		return copyRecord(rec), nil
	}
	return store.Record{}, fmt.Errorf("analysis %s: %w", id, internalerr.ErrNotFound)
}

// List returns records ordered by descending ID.
func (s *Store) List(ctx context.Context, limit int) ([]store.Record, error) {
	if limit <= 0 {
		limit = store.DefaultListLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.records))
	for id := range s.records {
		ids = append(ids, id)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(ids)))
	if len(ids) > limit {
		ids = ids[:limit]
	}

	out := make([]store.Record, 0, len(ids))
	for _, id := range ids {
		out = append(out, copyRecord(s.records[id]))
	}
	return out, nil
}

// Stats aggregates every stored record.
func (s *Store) Stats(ctx context.Context) (store.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := store.NewStats()
	for _, rec := range s.records {
		stats.Add(rec.Result)
	}
	return stats, nil
}

func copyRecord(r store.Record) store.Record {
	r.Result.Tokens = append([]tokenize.Token{}, r.Result.Tokens...)
	r.Result.Entities = append([]entities.Entity{}, r.Result.Entities...)
	return r
}

var _ store.Store = (*Store)(nil)
