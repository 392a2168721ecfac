package store

import (
	"context"
	"slices"
	"sync"
)

// DefaultMemoryRecords bounds a MemoryStore created with size <= 0.
const DefaultMemoryRecords = 500

// MemoryStore keeps the most recent records in memory. The oldest record is
// dropped once the store is full.
type MemoryStore struct {
	mu      sync.RWMutex
	size    int
	records []Record
}

// NewMemoryStore creates a store holding at most size records.
func NewMemoryStore(size int) *MemoryStore {
	if size <= 0 {
		size = DefaultMemoryRecords
	}
	return &MemoryStore{size: size}
}

func (s *MemoryStore) Add(_ context.Context, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, *rec)
	if over := len(s.records) - s.size; over > 0 {
		s.records = slices.Delete(s.records, 0, over)
	}
	return nil
}

func (s *MemoryStore) Recent(_ context.Context, limit int) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := min(normalizeLimit(limit), len(s.records))
	out := make([]Record, 0, n)
	for i := len(s.records) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, s.records[i])
	}
	return out, nil
}

// Len returns the number of stored records.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func (s *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)

// NullStore discards every record.
type NullStore struct{}

func (NullStore) Add(context.Context, *Record) error { return nil }

func (NullStore) Recent(context.Context, int) ([]Record, error) { return []Record{}, nil }

func (NullStore) Close() error { return nil }

var _ Store = NullStore{}
