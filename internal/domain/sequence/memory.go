package sequence

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store guarded by a mutex.
// It satisfies the full Store contract (atomic create-if-absent plus
// increment) and is used by unit tests and single-process hosts.
type MemoryStore struct {
	mu       sync.Mutex
	counters map[Key]int64
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		counters: make(map[Key]int64),
	}
}

// Next implements Store.
func (s *MemoryStore) Next(ctx context.Context, key Key) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.counters[key]++
	return s.counters[key], nil
}

// Current implements Store.
func (s *MemoryStore) Current(ctx context.Context, key Key) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counters[key], nil
}

// Set implements Store.
func (s *MemoryStore) Set(ctx context.Context, key Key, value int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters[key] = value
	return nil
}

// Ensure compile-time interface compliance.
var _ Store = (*MemoryStore)(nil)
