// Package telemetry persists run records and router state. All data stays
// local. The core only depends on the Store contract, never on the backing
// storage technology, so backends are swappable.
package telemetry

import (
	"context"
	"errors"
	"time"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("telemetry store is closed")

// RunRecord is one append-only telemetry row. Records are write-once and
// owned by the store.
type RunRecord struct {
	// RunID uniquely identifies the record.
	RunID string `json:"run_id"`

	// Timestamp is when the run completed.
	Timestamp time.Time `json:"timestamp"`

	// Query is the raw query text.
	Query string `json:"query"`

	// Strategy is the strategy the router chose for this query.
	Strategy string `json:"chosen_strategy"`

	// Score is the chosen strategy's evaluation total (0 for unlabeled runs).
	Score float64 `json:"score"`

	// LatencyMS is the end-to-end retrieval latency in milliseconds.
	LatencyMS int64 `json:"latency_ms"`

	// Meta holds structured context: query features, per-strategy scores,
	// route heuristics, and warnings. Stored as a JSON blob.
	Meta map[string]any `json:"meta"`
}

// Store is the persistence contract used by the router and the evaluator:
// append-only run records plus a keyed read/write of serialized state blobs.
type Store interface {
	// AppendRun writes one run record.
	AppendRun(ctx context.Context, rec RunRecord) error

	// GetState returns the serialized state stored under key.
	// The second return value is false when the key is absent.
	GetState(ctx context.Context, key string) ([]byte, bool, error)

	// SetState stores a serialized state blob under key, replacing any
	// previous value. Last successful write wins.
	SetState(ctx context.Context, key string, value []byte) error

	// Close releases backend resources.
	Close() error
}
