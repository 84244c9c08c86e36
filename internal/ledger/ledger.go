// Package ledger persists the set of processed message ids across restarts.
// The format is one JSON array of ids stored as a single object.
package ledger

import (
	"context"
	"sync"
)

// Store loads and saves the processed-message set. Load must treat a
// missing or unreadable object as "no history" and return an empty set
// rather than an error; the ledger is best-effort and must never block
// message processing. Save overwrites the whole object; callers merge
// before saving.
type Store interface {
	Load(ctx context.Context) (map[string]struct{}, error)
	Save(ctx context.Context, ids map[string]struct{}) error
}

// MemoryStore keeps the set in process memory. It stands in for the blob
// store when no bucket is configured, and in tests.
type MemoryStore struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{ids: make(map[string]struct{})}
}

// Load returns a copy of the stored set.
func (s *MemoryStore) Load(ctx context.Context) (map[string]struct{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]struct{}, len(s.ids))
	for id := range s.ids {
		out[id] = struct{}{}
	}
	return out, nil
}

// Save replaces the stored set with a copy of ids.
func (s *MemoryStore) Save(ctx context.Context, ids map[string]struct{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ids = make(map[string]struct{}, len(ids))
	for id := range ids {
		s.ids[id] = struct{}{}
	}
	return nil
}
