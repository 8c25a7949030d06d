package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/tallyhq/tally/internal/habit"
)

func TestCreateHabit_AndGet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	cfg := breakingConfig("smoke")
	mustCreateHabit(t, s, cfg)

	got, err := s.GetHabit(ctx, "smoke")
	if err != nil {
		t.Fatalf("GetHabit() failed: %v", err)
	}
	if got.Kind != habit.KindBreaking || got.Baseline != 20 || got.Target != 5 {
		t.Errorf("GetHabit() = %+v", got)
	}
	if got.VersionHash != cfg.VersionHash {
		t.Errorf("version hash = %q, want %q", got.VersionHash, cfg.VersionHash)
	}
}

func TestCreateHabit_RejectsUnhashedConfig(t *testing.T) {
	s := openTestStore(t)
	cfg := formationConfig("read")
	cfg.VersionHash = ""
	if err := s.CreateHabit(context.Background(), cfg, 1); err == nil {
		t.Error("configs without a version hash must be rejected by the store")
	}
}

func TestCreateHabit_DuplicateID(t *testing.T) {
	s := openTestStore(t)
	mustCreateHabit(t, s, formationConfig("read"))
	if err := s.CreateHabit(context.Background(), formationConfig("read"), 2); err == nil {
		t.Error("duplicate habit id must fail")
	}
}

func TestGetHabit_NotFound(t *testing.T) {
	s := openTestStore(t)
	_, err := s.GetHabit(context.Background(), "ghost")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("GetHabit(ghost) error = %v, want sql.ErrNoRows", err)
	}
}

func TestUpdateHabitConfig_AppendsVersion(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	cfg := formationConfig("read")
	mustCreateHabit(t, s, cfg)

	edited := cfg
	edited.Goal = 10
	edited.VersionHash = habit.MustConfigVersionHash(edited)
	if err := s.UpdateHabitConfig(ctx, edited, 2); err != nil {
		t.Fatalf("UpdateHabitConfig() failed: %v", err)
	}

	got, err := s.GetHabit(ctx, "read")
	if err != nil {
		t.Fatalf("GetHabit() failed: %v", err)
	}
	if got.Goal != 10 {
		t.Errorf("goal = %d, want 10 after edit", got.Goal)
	}

	versions, err := s.ListHabitVersions(ctx, "read")
	if err != nil {
		t.Fatalf("ListHabitVersions() failed: %v", err)
	}
	if len(versions) != 2 {
		t.Fatalf("versions = %d, want 2", len(versions))
	}
	if versions[0].Goal != 5 || versions[1].Goal != 10 {
		t.Errorf("version history out of order: %+v", versions)
	}
}

func TestUpdateHabitConfig_IdenticalVersionIsNoOpOnHistory(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	cfg := formationConfig("read")
	mustCreateHabit(t, s, cfg)

	if err := s.UpdateHabitConfig(ctx, cfg, 2); err != nil {
		t.Fatalf("UpdateHabitConfig() failed: %v", err)
	}

	versions, err := s.ListHabitVersions(ctx, "read")
	if err != nil {
		t.Fatalf("ListHabitVersions() failed: %v", err)
	}
	if len(versions) != 1 {
		t.Errorf("versions = %d, want 1 (identical re-save deduplicated)", len(versions))
	}
}

func TestUpdateHabitConfig_UnknownHabit(t *testing.T) {
	s := openTestStore(t)
	cfg := formationConfig("ghost")
	err := s.UpdateHabitConfig(context.Background(), cfg, 2)
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("error = %v, want sql.ErrNoRows", err)
	}
}

func TestListHabits_DeterministicOrder(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	mustCreateHabit(t, s, formationConfig("zebra"))
	mustCreateHabit(t, s, formationConfig("alpha"))

	habits, err := s.ListHabits(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListHabits() failed: %v", err)
	}
	if len(habits) != 2 || habits[0].ID != "alpha" || habits[1].ID != "zebra" {
		t.Errorf("ListHabits() order = %+v", habits)
	}

	// Unknown user gets an empty slice, not nil.
	none, err := s.ListHabits(ctx, "nobody")
	if err != nil {
		t.Fatalf("ListHabits() failed: %v", err)
	}
	if none == nil || len(none) != 0 {
		t.Errorf("ListHabits(nobody) = %v, want empty slice", none)
	}
}

// Habit deletion cascades to the ledger, audit trail, version history,
// and completion records.
func TestDeleteHabit_Cascades(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	cfg := formationConfig("read")
	mustCreateHabit(t, s, cfg)

	eval := func(amount int64) bool { return habit.Evaluate(cfg.Kind, cfg, amount) }
	if _, _, err := s.ApplyProgress(ctx, nextWrite("read", "2025-06-01", 5, 2), eval); err != nil {
		t.Fatalf("ApplyProgress() failed: %v", err)
	}

	if err := s.DeleteHabit(ctx, "read"); err != nil {
		t.Fatalf("DeleteHabit() failed: %v", err)
	}

	for _, table := range []string{"habits", "habit_versions", "progress_entries", "progress_events", "completion_records"} {
		var count int
		if err := s.db.QueryRow(`SELECT COUNT(*) FROM ` + table).Scan(&count); err != nil {
			t.Fatalf("count %s: %v", table, err)
		}
		if count != 0 {
			t.Errorf("%s has %d rows after delete, want 0", table, count)
		}
	}
}

func TestDeleteHabit_Unknown(t *testing.T) {
	s := openTestStore(t)
	err := s.DeleteHabit(context.Background(), "ghost")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("error = %v, want sql.ErrNoRows", err)
	}
}
