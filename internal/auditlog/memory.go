package auditlog

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-process Store. Used in tests and when the engine runs
// without a data directory; entries are lost on restart.
type MemoryStore struct {
	mu      sync.Mutex
	entries []Entry
	nextID  int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Insert(_ context.Context, e Entry) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	e.ID = fmt.Sprintf("mem-%d", m.nextID)
	if e.Timestamp == "" {
		e.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}
	m.entries = append(m.entries, e)
	return e.ID, nil
}

func (m *MemoryStore) Recent(_ context.Context, limit int) ([]Entry, error) {
	if limit <= 0 || limit > maxRecent {
		limit = maxRecent
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp > out[j].Timestamp })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryStore) ByID(_ context.Context, id string) (*Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.entries {
		if m.entries[i].ID == id {
			e := m.entries[i]
			return &e, nil
		}
	}
	return nil, nil
}

// Len reports how many entries have been written. Test helper.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
