package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/decisionlog/internal/decision"
	"github.com/roach88/decisionlog/internal/testutil"
)

// testEpoch is the first timestamp handed out by createTestStore's clock.
var testEpoch = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

// createTestStore creates a new store in a temp dir whose clock starts at
// testEpoch and advances one hour per record.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	clock := testutil.NewStepClock(testEpoch, time.Hour)
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, WithClock(clock.Now))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestFields creates decision fields with the given area and status.
func createTestFields(area string, status decision.Status) decision.Fields {
	return decision.Fields{
		Area:          area,
		DecisionMaker: "Ana",
		Decision:      "Decide " + area,
		Reasoning:     "Because " + area,
		Status:        status,
		DueDate:       "2024-06-30",
	}
}

func mustCreate(t *testing.T, s *Store, f decision.Fields) int64 {
	t.Helper()
	id, err := s.Create(context.Background(), f)
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	return id
}

func mustRetrieve(t *testing.T, s *Store, f decision.Filter) []decision.Record {
	t.Helper()
	records, err := s.Retrieve(context.Background(), f)
	if err != nil {
		t.Fatalf("Retrieve(%+v) failed: %v", f, err)
	}
	return records
}

func ids(records []decision.Record) []int64 {
	out := make([]int64, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

func equalIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
