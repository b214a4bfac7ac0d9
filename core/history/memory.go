package history

import (
	"context"
	"sync"
)

// MemoryStore keeps records in memory. It backs dry runs and tests.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]Record
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]Record)}
}

func key(r Record) string { return r.Location + "|" + r.Date }

// Add implements Store.
func (m *MemoryStore) Add(_ context.Context, r Record) error {
	m.mu.Lock()
	m.data[key(r)] = r
	m.mu.Unlock()
	return nil
}

// Query implements Store.
func (m *MemoryStore) Query(_ context.Context, q Query) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Record
	for _, r := range m.data {
		if q.Match(r) {
			out = append(out, r)
		}
	}
	Sort(out)
	return out, nil
}

// Close implements Store.
func (m *MemoryStore) Close() error { return nil }
