package dedup

import (
	"context"
	"fmt"
	"testing"
)

func TestSeenSet_AddIsIdempotent(t *testing.T) {
	t.Parallel()

	s := NewSeenSet(5)
	ctx := context.Background()

	added, err := s.Add(ctx, "a")
	if err != nil || !added {
		t.Fatalf("first Add = (%v, %v), want (true, nil)", added, err)
	}
	added, err = s.Add(ctx, "a")
	if err != nil || added {
		t.Fatalf("second Add = (%v, %v), want (false, nil)", added, err)
	}
	if s.Len() != 1 {
		t.Fatalf("Len = %d, want 1", s.Len())
	}
}

// TestSeenSet_ReAddDoesNotEvict: re-inserting a present id must not push out
// any other member even when the set is full.
func TestSeenSet_ReAddDoesNotEvict(t *testing.T) {
	t.Parallel()

	s := NewSeenSet(3)
	ctx := context.Background()
	for _, id := range []string{"a", "b", "c"} {
		_, _ = s.Add(ctx, id)
	}

	_, _ = s.Add(ctx, "b")

	for _, id := range []string{"a", "b", "c"} {
		if !s.Has(id) {
			t.Fatalf("%q evicted by a duplicate insert", id)
		}
	}
	if s.Len() != 3 {
		t.Fatalf("Len = %d, want 3", s.Len())
	}
}

// TestSeenSet_FIFOEviction: capacity+k distinct inserts leave exactly capacity
// members, with the k oldest gone in insertion order.
func TestSeenSet_FIFOEviction(t *testing.T) {
	t.Parallel()

	const capacity, extra = 4, 3
	s := NewSeenSet(capacity)
	ctx := context.Background()

	for i := 0; i < capacity+extra; i++ {
		_, _ = s.Add(ctx, fmt.Sprintf("id-%d", i))
	}

	if s.Len() != capacity {
		t.Fatalf("Len = %d, want %d", s.Len(), capacity)
	}
	for i := 0; i < extra; i++ {
		if s.Has(fmt.Sprintf("id-%d", i)) {
			t.Fatalf("id-%d should have been evicted", i)
		}
	}
	for i := extra; i < capacity+extra; i++ {
		if !s.Has(fmt.Sprintf("id-%d", i)) {
			t.Fatalf("id-%d should still be present", i)
		}
	}
}

func TestNewSeenSet_DefaultCapacity(t *testing.T) {
	t.Parallel()

	s := NewSeenSet(0)
	if s.maxSize != DefaultMaxSize {
		t.Fatalf("maxSize = %d, want %d", s.maxSize, DefaultMaxSize)
	}
}
