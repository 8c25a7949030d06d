package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/tallyhq/tally/internal/habit"
)

// openTestStore creates a store backed by a temp-dir database.
func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// formationConfig returns an accepted-looking formation config.
func formationConfig(id string) habit.Config {
	cfg := habit.Config{
		ID:       id,
		UserID:   "user-1",
		Name:     "Read",
		Kind:     habit.KindFormation,
		Goal:     5,
		Schedule: "daily",
	}
	cfg.VersionHash = habit.MustConfigVersionHash(cfg)
	return cfg
}

// breakingConfig returns an accepted-looking breaking config.
func breakingConfig(id string) habit.Config {
	cfg := habit.Config{
		ID:       id,
		UserID:   "user-1",
		Name:     "Fewer cigarettes",
		Kind:     habit.KindBreaking,
		Baseline: 20,
		Target:   5,
		Schedule: "daily",
	}
	cfg.VersionHash = habit.MustConfigVersionHash(cfg)
	return cfg
}

// mustCreateHabit seeds a habit row for write/read tests.
func mustCreateHabit(t *testing.T, s *Store, cfg habit.Config) {
	t.Helper()
	if err := s.CreateHabit(context.Background(), cfg, 1); err != nil {
		t.Fatalf("CreateHabit(%s) failed: %v", cfg.ID, err)
	}
}

var testEventCounter int

// nextWrite builds a ProgressWrite with a fresh event ID and seq.
func nextWrite(habitID string, date habit.DateKey, delta int64, seq int64) ProgressWrite {
	testEventCounter++
	return ProgressWrite{
		EventID:    fmt.Sprintf("evt-%04d", testEventCounter),
		UserID:     "user-1",
		HabitID:    habitID,
		Date:       date,
		Delta:      delta,
		Seq:        seq,
		RecordedAt: time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC).Add(time.Duration(seq) * time.Minute),
	}
}
