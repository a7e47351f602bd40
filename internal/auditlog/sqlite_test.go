package auditlog

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "audit.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStore_InsertAndByID(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.Insert(ctx, Entry{
		Type:       TypeError,
		URL:        "https://login.theappliancerepairmen.com/job/accept/eyX",
		PageTitle:  "Oops",
		Reason:     "Job already taken or expired",
		RawHTML:    "<html><body>already taken</body></html>",
		JobAddress: "1611 lacey ave",
	})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if id == "" {
		t.Fatal("Insert returned empty id")
	}

	got, err := s.ByID(ctx, id)
	if err != nil {
		t.Fatalf("ByID: %v", err)
	}
	if got == nil {
		t.Fatal("ByID returned nil for a just-inserted entry")
	}
	if got.Reason != "Job already taken or expired" || got.JobAddress != "1611 lacey ave" {
		t.Fatalf("unexpected entry: %+v", got)
	}
	if got.Timestamp == "" {
		t.Fatal("Insert should stamp entries missing a timestamp")
	}
}

func TestSQLiteStore_ByIDMissing(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	got, err := s.ByID(context.Background(), "nope")
	if err != nil {
		t.Fatalf("ByID: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for unknown id, got %+v", got)
	}
}

func TestSQLiteStore_RecentOrderAndCap(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 60; i++ {
		_, err := s.Insert(ctx, Entry{
			Type:      TypeSuccess,
			Timestamp: "2026-08-01T00:00:" + twoDigit(i) + "Z",
			URL:       "https://x.example",
		})
		if err != nil {
			t.Fatalf("Insert #%d: %v", i, err)
		}
	}

	got, err := s.Recent(ctx, 0)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 50 {
		t.Fatalf("Recent cap: got %d entries, want 50", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i-1].Timestamp < got[i].Timestamp {
			t.Fatalf("Recent not sorted newest first at %d: %q < %q", i, got[i-1].Timestamp, got[i].Timestamp)
		}
	}

	got, err = s.Recent(ctx, 3)
	if err != nil {
		t.Fatalf("Recent(3): %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("Recent(3): got %d entries", len(got))
	}
}

func twoDigit(i int) string {
	const d = "0123456789"
	return string([]byte{d[(i/10)%10], d[i%10]})
}
