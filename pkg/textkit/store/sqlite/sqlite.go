package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/textkit/pkg/textkit/entities"
	"github.com/cognicore/textkit/pkg/textkit/intent"
	"github.com/cognicore/textkit/pkg/textkit/internalerr"
	"github.com/cognicore/textkit/pkg/textkit/patterns"
	"github.com/cognicore/textkit/pkg/textkit/sentiment"
	"github.com/cognicore/textkit/pkg/textkit/store"
	"github.com/cognicore/textkit/pkg/textkit/tokenize"
)

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens a SQLite database with WAL mode enabled.
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, unavailable(path, err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, unavailable(path, err)
	}

	// Enable foreign keys
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, unavailable(path, err)
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db}, nil
}

func unavailable(path string, err error) error {
	return fmt.Errorf("open %s: %w: %w", path, internalerr.ErrStoreUnavailable, err)
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS analyses (
	id TEXT PRIMARY KEY,
	source TEXT,
	text TEXT NOT NULL,
	analyzed_at TEXT NOT NULL,
	word_count INTEGER NOT NULL,
	sentence_count INTEGER NOT NULL,
	sentiment TEXT NOT NULL,
	intent TEXT NOT NULL DEFAULT '',
	tokens TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS analysis_entities (
	analysis_id TEXT NOT NULL,
	seq INTEGER NOT NULL,
	type TEXT NOT NULL,
	text TEXT NOT NULL,
	confidence REAL NOT NULL,
	PRIMARY KEY(analysis_id, seq),
	FOREIGN KEY(analysis_id) REFERENCES analyses(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_analysis_entities_type ON analysis_entities(type);
`

	_, err := db.ExecContext(ctx, schema)
	return err
}

// Put inserts or replaces a record
func (s *sqliteStore) Put(ctx context.Context, r store.Record) error {
	if r.ID == "" {
		return fmt.Errorf("put analysis: empty id: %w", internalerr.ErrInvalidInput)
	}

	tokens, err := json.Marshal(r.Result.Tokens)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const stmt = `
INSERT INTO analyses (id, source, text, analyzed_at, word_count, sentence_count, sentiment, intent, tokens)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	source=excluded.source,
	text=excluded.text,
	analyzed_at=excluded.analyzed_at,
	word_count=excluded.word_count,
	sentence_count=excluded.sentence_count,
	sentiment=excluded.sentiment,
	intent=excluded.intent,
	tokens=excluded.tokens;
`
	_, err = tx.ExecContext(ctx, stmt,
		r.ID,
		r.Source,
		r.Text,
		r.AnalyzedAt.UTC().Format(time.RFC3339Nano),
		r.Result.WordCount,
		r.Result.SentenceCount,
		r.Result.Sentiment.String(),
		r.Result.Intent.String(),
		string(tokens),
	)
	if err != nil {
		return err
	}

	if err := replaceEntities(ctx, tx, r.ID, r.Result.Entities); err != nil {
		return err
	}

	return tx.Commit()
}

func replaceEntities(ctx context.Context, tx *sql.Tx, id string, ents []entities.Entity) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM analysis_entities WHERE analysis_id=?`, id); err != nil {
		return err
	}
	if len(ents) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO analysis_entities (analysis_id, seq, type, text, confidence) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i, e := range ents {
		if _, err := stmt.ExecContext(ctx, id, i, e.Type.String(), e.Text, e.Confidence); err != nil {
			return err
		}
	}
	return nil
}

// Get retrieves a record by ID
func (s *sqliteStore) Get(ctx context.Context, id string) (store.Record, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, source, text, analyzed_at, word_count, sentence_count, sentiment, intent, tokens
FROM analyses WHERE id = ?`, id)

	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return store.Record{}, fmt.Errorf("analysis %s: %w", id, internalerr.ErrNotFound)
	}
	if err != nil {
		return store.Record{}, err
	}

	ents, err := s.loadEntities(ctx, id)
	if err != nil {
		return store.Record{}, err
	}
	rec.Result.Entities = ents
	return rec, nil
}

// List returns the newest records first. ULIDs sort by creation time.
func (s *sqliteStore) List(ctx context.Context, limit int) ([]store.Record, error) {
	if limit <= 0 {
		limit = store.DefaultListLimit
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT id, source, text, analyzed_at, word_count, sentence_count, sentiment, intent, tokens
FROM analyses ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}

	var results []store.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		results = append(results, rec)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	for i := range results {
		ents, err := s.loadEntities(ctx, results[i].ID)
		if err != nil {
			return nil, err
		}
		results[i].Result.Entities = ents
	}
	return results, nil
}

// Stats aggregates over every stored record
func (s *sqliteStore) Stats(ctx context.Context) (store.Stats, error) {
	stats := store.NewStats()

	err := s.db.QueryRowContext(ctx, `
SELECT COUNT(*), COALESCE(SUM(word_count), 0), COALESCE(SUM(sentence_count), 0) FROM analyses`).
		Scan(&stats.Analyses, &stats.Words, &stats.Sentences)
	if err != nil {
		return stats, err
	}

	err = s.groupCount(ctx, `SELECT sentiment, COUNT(*) FROM analyses GROUP BY sentiment`, func(name string, n int64) error {
		v, ok := sentiment.Parse(name)
		if !ok {
			return fmt.Errorf("stored sentiment %q: %w", name, internalerr.ErrInvalidInput)
		}
		stats.Sentiments[v] = n
		return nil
	})
	if err != nil {
		return stats, err
	}

	err = s.groupCount(ctx, `SELECT intent, COUNT(*) FROM analyses GROUP BY intent`, func(label string, n int64) error {
		v, ok := intent.Parse(label)
		if !ok {
			return fmt.Errorf("stored intent %q: %w", label, internalerr.ErrInvalidInput)
		}
		stats.Intents[v] = n
		return nil
	})
	if err != nil {
		return stats, err
	}

	err = s.groupCount(ctx, `SELECT type, COUNT(*) FROM analysis_entities GROUP BY type`, func(name string, n int64) error {
		v, ok := patterns.ParseEntityType(name)
		if !ok {
			return fmt.Errorf("stored entity type %q: %w", name, internalerr.ErrInvalidInput)
		}
		stats.Entities[v] = n
		return nil
	})
	return stats, err
}

func (s *sqliteStore) groupCount(ctx context.Context, query string, fn func(string, int64) error) error {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var n int64
		if err := rows.Scan(&key, &n); err != nil {
			return err
		}
		if err := fn(key, n); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (s *sqliteStore) loadEntities(ctx context.Context, id string) ([]entities.Entity, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT type, text, confidence FROM analysis_entities WHERE analysis_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ents := []entities.Entity{}
	for rows.Next() {
		var typ, text string
		var conf float64
		if err := rows.Scan(&typ, &text, &conf); err != nil {
			return nil, err
		}
		et, ok := patterns.ParseEntityType(typ)
		if !ok {
			return nil, fmt.Errorf("stored entity type %q: %w", typ, internalerr.ErrInvalidInput)
		}
		ents = append(ents, entities.Entity{Text: text, Type: et, Confidence: conf})
	}
	return ents, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (store.Record, error) {
	var (
		rec        store.Record
		source     sql.NullString
		analyzedAt string
		sentName   string
		intentName string
		tokensJSON string
	)
	err := row.Scan(
		&rec.ID,
		&source,
		&rec.Text,
		&analyzedAt,
		&rec.Result.WordCount,
		&rec.Result.SentenceCount,
		&sentName,
		&intentName,
		&tokensJSON,
	)
	if err != nil {
		return store.Record{}, err
	}

	rec.Source = source.String
	rec.AnalyzedAt, err = time.Parse(time.RFC3339Nano, analyzedAt)
	if err != nil {
		return store.Record{}, fmt.Errorf("analysis %s: parse time: %w", rec.ID, err)
	}

	var ok bool
	if rec.Result.Sentiment, ok = sentiment.Parse(sentName); !ok {
		return store.Record{}, fmt.Errorf("analysis %s: sentiment %q: %w", rec.ID, sentName, internalerr.ErrInvalidInput)
	}
	if rec.Result.Intent, ok = intent.Parse(intentName); !ok {
		return store.Record{}, fmt.Errorf("analysis %s: intent %q: %w", rec.ID, intentName, internalerr.ErrInvalidInput)
	}

	tokens := []tokenize.Token{}
	if err := json.Unmarshal([]byte(tokensJSON), &tokens); err != nil {
		return store.Record{}, fmt.Errorf("analysis %s: decode tokens: %w", rec.ID, err)
	}
	rec.Result.Tokens = tokens

	return rec, nil
}

var _ store.Store = (*sqliteStore)(nil)
