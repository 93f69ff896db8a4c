// Package runlog keeps the diagnostic record of every flow request.
package runlog

import (
	"context"
	"sync"

	"kisanmitra/internal/action"
)

// Store is the run ledger exposed on /debug/flow-runs.
type Store interface {
	action.Ledger
	// List returns up to limit records, newest first. limit <= 0 means all.
	List(ctx context.Context, limit int) ([]action.Record, error)
}

const DefaultCapacity = 500

// MemoryStore is a fixed-size ring of the most recent records.
type MemoryStore struct {
	mu   sync.Mutex
	buf  []action.Record
	next int
	full bool
}

func NewMemoryStore(capacity int) *MemoryStore {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &MemoryStore{buf: make([]action.Record, capacity)}
}

func (s *MemoryStore) Append(_ context.Context, r action.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r.Trail = append([]action.State(nil), r.Trail...)
	s.buf[s.next] = r
	s.next = (s.next + 1) % len(s.buf)
	if s.next == 0 {
		s.full = true
	}
	return nil
}

func (s *MemoryStore) List(_ context.Context, limit int) ([]action.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.next
	if s.full {
		n = len(s.buf)
	}
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]action.Record, 0, limit)
	for i := 0; i < limit; i++ {
		idx := (s.next - 1 - i + len(s.buf)) % len(s.buf)
		out = append(out, s.buf[idx])
	}
	return out, nil
}
