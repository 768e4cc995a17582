package telemetry

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store for tests and ephemeral runs.
type MemoryStore struct {
	mu     sync.Mutex
	runs   []RunRecord
	state  map[string][]byte
	closed bool

	// FailWrites makes every write return an error, for exercising
	// sink-unavailable handling.
	FailWrites error
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: make(map[string][]byte)}
}

// AppendRun implements Store.
func (s *MemoryStore) AppendRun(_ context.Context, rec RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if s.FailWrites != nil {
		return s.FailWrites
	}
	s.runs = append(s.runs, rec)
	return nil
}

// GetState implements Store.
func (s *MemoryStore) GetState(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, false, ErrClosed
	}
	value, ok := s.state[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, true, nil
}

// SetState implements Store.
func (s *MemoryStore) SetState(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if s.FailWrites != nil {
		return s.FailWrites
	}
	stored := make([]byte, len(value))
	copy(stored, value)
	s.state[key] = stored
	return nil
}

// Runs returns a copy of all appended run records in order.
func (s *MemoryStore) Runs() []RunRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]RunRecord, len(s.runs))
	copy(out, s.runs)
	return out
}

// Close implements Store.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

var _ Store = (*MemoryStore)(nil)
