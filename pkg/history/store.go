package history

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// ErrRunNotFound is returned when a run ID is not in the database.
var ErrRunNotFound = errors.New("run not found")

// DefaultListLimit is used by List when limit is not positive.
const DefaultListLimit = 100

// Record is a stored countdown run.
type Record struct {
	ID         string        `json:"id"`
	StartedAt  time.Time     `json:"started_at"`
	StoppedAt  *time.Time    `json:"stopped_at,omitempty"`
	Reason     string        `json:"reason,omitempty"`
	StartValue int           `json:"start_value"`
	FinalValue int           `json:"final_value"`
	Ticks      int           `json:"ticks"`
	Interval   time.Duration `json:"interval"`
}

// Running reports whether the run had not stopped when last recorded.
func (r *Record) Running() bool {
	return r.StoppedAt == nil
}

// Duration returns the run's elapsed time, or zero if it has not stopped.
func (r *Record) Duration() time.Duration {
	if r.StoppedAt == nil {
		return 0
	}
	return r.StoppedAt.Sub(r.StartedAt)
}

// Stats summarises the stored runs.
type Stats struct {
	Total     int `json:"total"`
	Expired   int `json:"expired"`
	Cancelled int `json:"cancelled"`
	Open      int `json:"open"`
}

// Store provides SQLite persistence for countdown runs.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewStore creates a new store with the given database path.
// Use ":memory:" for an in-memory database.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// An in-memory database exists per connection.
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	_, err = db.Exec(`PRAGMA journal_mode = WAL;`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to configure database: %w", err)
	}

	s := &Store{db: db}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return s, nil
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		started_at DATETIME NOT NULL,
		stopped_at DATETIME,
		reason TEXT,
		start_value INTEGER NOT NULL,
		final_value INTEGER NOT NULL,
		ticks INTEGER NOT NULL DEFAULT 0,
		interval_ns INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
	CREATE INDEX IF NOT EXISTS idx_runs_reason ON runs(reason);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordStart inserts a run that has just started.
func (s *Store) RecordStart(id string, startedAt time.Time, startValue int, interval time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO runs (id, started_at, start_value, final_value, interval_ns)
		VALUES (?, ?, ?, ?, ?)
	`, id, startedAt.UTC(), startValue, startValue, int64(interval))

	return err
}

// RecordStop completes a run. It returns ErrRunNotFound if the run was never
// started in this store.
func (s *Store) RecordStop(id string, stoppedAt time.Time, reason string, finalValue, ticks int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`
		UPDATE runs
		SET stopped_at = ?, reason = ?, final_value = ?, ticks = ?
		WHERE id = ?
	`, stoppedAt.UTC(), reason, finalValue, ticks, id)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return nil
}

// Get retrieves a run by ID.
func (s *Store) Get(id string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(`
		SELECT id, started_at, stopped_at, reason, start_value, final_value, ticks, interval_ns
		FROM runs WHERE id = ?
	`, id)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// List retrieves runs, most recent first.
func (s *Store) List(limit int) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := s.db.Query(`
		SELECT id, started_at, stopped_at, reason, start_value, final_value, ticks, interval_ns
		FROM runs
		ORDER BY started_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}

	return records, rows.Err()
}

// Count returns the total number of runs.
func (s *Store) Count() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM runs").Scan(&count)
	return count, err
}

// Stats counts runs by outcome.
func (s *Store) Stats() (Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var st Stats
	err := s.db.QueryRow(`
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN reason = 'EXPIRED' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN reason = 'CANCELLED' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN stopped_at IS NULL THEN 1 ELSE 0 END), 0)
		FROM runs
	`).Scan(&st.Total, &st.Expired, &st.Cancelled, &st.Open)
	return st, err
}

// Prune deletes stopped runs that started before cutoff.
// It returns the number of deleted runs.
func (s *Store) Prune(cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`
		DELETE FROM runs WHERE started_at < ? AND stopped_at IS NOT NULL
	`, cutoff.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (*Record, error) {
	var (
		rec       Record
		stoppedAt sql.NullTime
		reason    sql.NullString
		interval  int64
	)

	if err := sc.Scan(
		&rec.ID, &rec.StartedAt, &stoppedAt, &reason,
		&rec.StartValue, &rec.FinalValue, &rec.Ticks, &interval,
	); err != nil {
		return nil, err
	}

	if stoppedAt.Valid {
		t := stoppedAt.Time
		rec.StoppedAt = &t
	}
	if reason.Valid {
		rec.Reason = reason.String
	}
	rec.Interval = time.Duration(interval)

	return &rec, nil
}
