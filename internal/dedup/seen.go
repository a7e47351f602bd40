// Package dedup records which message ids were already processed so IMAP
// reconnects and duplicate notifications don't re-run the claim pipeline.
package dedup

import (
	"context"
	"sync"
)

const DefaultMaxSize = 10_000

// Store is a check-and-insert set of message ids. Add reports whether the id
// was newly inserted; false means it was seen before and must be skipped.
type Store interface {
	Add(ctx context.Context, id string) (added bool, err error)
}

// SeenSet is the in-memory Store: bounded, FIFO-evicting, safe for concurrent
// use. History is per-process only — a restart forgets everything.
type SeenSet struct {
	mu      sync.Mutex
	maxSize int
	ids     map[string]struct{}
	order   []string
}

func NewSeenSet(maxSize int) *SeenSet {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &SeenSet{
		maxSize: maxSize,
		ids:     make(map[string]struct{}),
	}
}

func (s *SeenSet) Add(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.ids[id]; ok {
		return false, nil
	}
	if len(s.order) >= s.maxSize {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.ids, oldest)
	}
	s.ids[id] = struct{}{}
	s.order = append(s.order, id)
	return true, nil
}

// Has reports membership without inserting.
func (s *SeenSet) Has(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.ids[id]
	return ok
}

func (s *SeenSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ids)
}
