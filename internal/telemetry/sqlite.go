package telemetry

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id     TEXT PRIMARY KEY,
	ts_unix    REAL NOT NULL,
	query      TEXT NOT NULL,
	strategy   TEXT NOT NULL,
	score      REAL NOT NULL,
	latency_ms INTEGER NOT NULL,
	meta_json  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS router_state (
	key        TEXT PRIMARY KEY,
	value_json TEXT NOT NULL
);
`

// SQLiteStore is the default local Store backend.
type SQLiteStore struct {
	mu     sync.Mutex
	db     *sql.DB
	closed bool
}

// OpenSQLite opens (or creates) a SQLite-backed store at path.
// Parent directories are created as needed.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create telemetry dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open telemetry db: %w", err)
	}

	// WAL must be set via PRAGMA for modernc.org/sqlite; DSN params are
	// ignored by the driver.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set pragma: %w", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create telemetry schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// AppendRun implements Store.
func (s *SQLiteStore) AppendRun(ctx context.Context, rec RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	meta := rec.Meta
	if meta == nil {
		meta = map[string]any{}
	}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshal run meta: %w", err)
	}

	ts := rec.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs (run_id, ts_unix, query, strategy, score, latency_ms, meta_json)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, rec.RunID, float64(ts.UnixNano())/1e9, rec.Query, rec.Strategy, rec.Score, rec.LatencyMS, string(metaJSON))
	if err != nil {
		return fmt.Errorf("append run: %w", err)
	}
	return nil
}

// GetState implements Store.
func (s *SQLiteStore) GetState(ctx context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, false, ErrClosed
	}

	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value_json FROM router_state WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get state %q: %w", key, err)
	}
	return []byte(value), true, nil
}

// SetState implements Store.
func (s *SQLiteStore) SetState(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO router_state (key, value_json) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value_json = excluded.value_json
	`, key, string(value))
	if err != nil {
		return fmt.Errorf("set state %q: %w", key, err)
	}
	return nil
}

// RecentRuns returns the most recent run records, newest first.
func (s *SQLiteStore) RecentRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, ts_unix, query, strategy, score, latency_ms, meta_json
		FROM runs ORDER BY ts_unix DESC, run_id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []RunRecord
	for rows.Next() {
		var rec RunRecord
		var tsUnix float64
		var metaJSON string
		if err := rows.Scan(&rec.RunID, &tsUnix, &rec.Query, &rec.Strategy, &rec.Score, &rec.LatencyMS, &metaJSON); err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		rec.Timestamp = time.Unix(0, int64(tsUnix*1e9))
		if err := json.Unmarshal([]byte(metaJSON), &rec.Meta); err != nil {
			return nil, fmt.Errorf("parse run meta: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

var _ Store = (*SQLiteStore)(nil)
