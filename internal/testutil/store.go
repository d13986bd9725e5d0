package testutil

import (
	"testing"
	"time"

	"github.com/MackanT/WorkTimer/internal/database"
	"github.com/MackanT/WorkTimer/internal/timer"
)

// NewTestStore creates an in-memory SQLite store with the schema applied
// and a date dimension covering late 2023 through early 2025, enough for
// any test anchored around FixedClock. The store is closed automatically
// when the test completes.
func NewTestStore(t *testing.T) *database.SQLiteStore {
	t.Helper()

	start := time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)

	store, err := database.New(":memory:", start, end)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}

	t.Cleanup(func() {
		store.Close()
	})

	return store
}

// NewTestService wires a Service around an in-memory store with a
// dispatcher, stub clock and stub IDs. The dispatcher is drained and
// everything is closed when the test completes.
func NewTestService(t *testing.T) (*timer.Service, *database.SQLiteStore, *StubClock) {
	t.Helper()

	store := NewTestStore(t)
	clock := FixedClock()
	disp := timer.NewDispatcher(timer.NopLogger{}, NewStubIDGenerator())
	t.Cleanup(disp.Close)

	svc := timer.NewService(store, disp, clock, timer.NopLogger{}, nil)
	return svc, store, clock
}
