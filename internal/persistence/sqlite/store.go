// Package sqlite provides the durable workout store, an embedded database
// file holding one row per uniquely-started workout.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"example.com/workoutcal/internal/domain"
	"example.com/workoutcal/internal/observability"
)

// No UNIQUE constraint on start_key: the coordinator checks existence before
// inserting, and the rare duplicate produced by racing batches is tolerated.
const schema = `
CREATE TABLE IF NOT EXISTS workouts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	start_key TEXT NOT NULL,
	payload TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_workouts_start_key ON workouts(start_key);
`

// Option configures optional behaviour for the Store.
type Option func(*Store)

// WithLogger overrides the logger used to report skipped rows on load.
func WithLogger(logger *log.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// Store persists verbatim workout records keyed by their literal start
// string. It is the sole source of truth for which workouts have been seen.
type Store struct {
	db     *sql.DB
	logger *log.Logger
}

// Open opens or creates the database file at path and ensures the schema.
// An open failure is fatal to the caller; there is no degraded mode without
// persistence.
func Open(path string, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", path))
	if err != nil {
		return nil, fmt.Errorf("open workout store: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure workout schema: %w", err)
	}
	s := &Store{
		db:     db,
		logger: log.New(log.Writer(), "[store] ", log.LstdFlags),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Exists reports whether a row with exactly this start string is already
// persisted. Matching is literal string equality, not timestamp equality.
func (s *Store) Exists(ctx context.Context, startKey string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM workouts WHERE start_key = ? LIMIT 1`, startKey).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Insert appends a row holding the verbatim record. The caller has already
// confirmed non-existence.
func (s *Store) Insert(ctx context.Context, rec domain.RawRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO workouts (start_key, payload) VALUES (?, ?)`,
		rec.StartKey, string(rec.Payload))
	if err != nil {
		return fmt.Errorf("insert workout (start=%s): %w", rec.StartKey, err)
	}
	observability.RecordWorkoutPersisted(time.Now().UTC())
	return nil
}

// LoadAll replays every persisted row through decode and classification and
// returns the events that survive. Rows that fail validation or whose type
// is off the allow-list are skipped and logged, never deleted; they are
// re-evaluated on every load, so a later allow-list change can revive them.
func (s *Store) LoadAll(ctx context.Context) ([]domain.Event, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT start_key, payload FROM workouts ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("load workouts: %w", err)
	}
	defer rows.Close()

	events := make([]domain.Event, 0)
	for rows.Next() {
		var startKey, payload string
		if err := rows.Scan(&startKey, &payload); err != nil {
			return nil, err
		}
		workout, err := domain.DecodeWorkout(json.RawMessage(payload))
		if err != nil {
			s.logger.Printf("skipping stored row (start=%s): %v", startKey, err)
			continue
		}
		event, ok := domain.NewEvent(workout)
		if !ok {
			s.logger.Printf("skipping stored row (start=%s): workout type %q not recognized", startKey, workout.Name)
			continue
		}
		events = append(events, *event)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
