package engine

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tallyhq/tally/internal/habit"
	"github.com/tallyhq/tally/internal/store"
	"github.com/tallyhq/tally/internal/testutil"
)

// newTestTracker builds a tracker over a temp-dir database with fully
// deterministic clock, time, and event IDs.
func newTestTracker(t *testing.T, opts ...TrackerOption) (*Tracker, *store.Store) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "tally.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	base := []TrackerOption{
		WithClock(testutil.NewDeterministicClock()),
		WithTimeSource(testutil.NewFixedTime(time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC))),
		WithEventIDs(testutil.NewSequentialEventIDs("evt")),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}
	tr := New(st, append(base, opts...)...)
	return tr, st
}

// readingConfig is an unaccepted formation config: 5 pages a day.
func readingConfig(id string) habit.Config {
	return habit.Config{
		ID:       id,
		Name:     "Read",
		Kind:     habit.KindFormation,
		Goal:     5,
		Schedule: "daily",
	}
}

// smokingConfig is an unaccepted breaking config: from 20 down to 5.
func smokingConfig(id string) habit.Config {
	return habit.Config{
		ID:       id,
		Name:     "Fewer cigarettes",
		Kind:     habit.KindBreaking,
		Baseline: 20,
		Target:   5,
		Schedule: "daily",
	}
}
