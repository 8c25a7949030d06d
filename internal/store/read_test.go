package store

import (
	"context"
	"testing"

	"github.com/tallyhq/tally/internal/habit"
)

func TestGetEntry_MissingKey(t *testing.T) {
	s := openTestStore(t)
	_, ok, err := s.GetEntry(context.Background(), "read", "2025-06-01")
	if err != nil {
		t.Fatalf("GetEntry() failed: %v", err)
	}
	if ok {
		t.Error("GetEntry() ok = true for a key with no progress")
	}
}

func TestGetEntry_WithTimestamps(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	cfg := formationConfig("read")
	mustCreateHabit(t, s, cfg)
	eval := func(amount int64) bool { return habit.Evaluate(cfg.Kind, cfg, amount) }

	for i := int64(0); i < 3; i++ {
		if _, _, err := s.ApplyProgress(ctx, nextWrite("read", "2025-06-01", 1, 2+i), eval); err != nil {
			t.Fatalf("ApplyProgress() failed: %v", err)
		}
	}

	entry, ok, err := s.GetEntry(ctx, "read", "2025-06-01")
	if err != nil || !ok {
		t.Fatalf("GetEntry() = %v, %v", ok, err)
	}
	if entry.Amount != 3 {
		t.Errorf("amount = %d, want 3", entry.Amount)
	}
	if len(entry.Timestamps) != 3 {
		t.Fatalf("timestamps = %d, want 3 (one per write)", len(entry.Timestamps))
	}
	for i := 1; i < len(entry.Timestamps); i++ {
		if entry.Timestamps[i].Before(entry.Timestamps[i-1]) {
			t.Error("timestamps must be in write order")
		}
	}
}

func TestListEvents_Order(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	cfg := formationConfig("read")
	mustCreateHabit(t, s, cfg)
	eval := func(amount int64) bool { return habit.Evaluate(cfg.Kind, cfg, amount) }

	if _, _, err := s.ApplyProgress(ctx, nextWrite("read", "2025-06-01", 2, 5), eval); err != nil {
		t.Fatalf("ApplyProgress() failed: %v", err)
	}
	w := nextWrite("read", "2025-06-01", 7, 6)
	w.Absolute = true
	if _, _, err := s.ApplyProgress(ctx, w, eval); err != nil {
		t.Fatalf("ApplyProgress() failed: %v", err)
	}

	events, err := s.ListEvents(ctx, "read", "2025-06-01")
	if err != nil {
		t.Fatalf("ListEvents() failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("events = %d, want 2", len(events))
	}
	if events[0].Seq != 5 || events[1].Seq != 6 {
		t.Errorf("events out of seq order: %+v", events)
	}
	if events[0].Absolute || !events[1].Absolute {
		t.Errorf("absolute flags wrong: %+v", events)
	}
	if events[1].Amount != 7 {
		t.Errorf("second event resulting amount = %d, want 7", events[1].Amount)
	}
}

func TestCompletionsInRange(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	cfg := formationConfig("read")
	mustCreateHabit(t, s, cfg)
	eval := func(amount int64) bool { return habit.Evaluate(cfg.Kind, cfg, amount) }

	for _, day := range []habit.DateKey{"2025-06-01", "2025-06-02", "2025-06-04"} {
		w := nextWrite("read", day, 5, 2)
		if _, _, err := s.ApplyProgress(ctx, w, eval); err != nil {
			t.Fatalf("ApplyProgress(%s) failed: %v", day, err)
		}
	}

	records, err := s.CompletionsInRange(ctx, "user-1", habit.DateRange{From: "2025-06-01", To: "2025-06-03"})
	if err != nil {
		t.Fatalf("CompletionsInRange() failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records in range = %d, want 2", len(records))
	}
	if records[0].Date != "2025-06-01" || records[1].Date != "2025-06-02" {
		t.Errorf("range order wrong: %+v", records)
	}

	// Empty range returns an empty slice, not nil.
	none, err := s.CompletionsInRange(ctx, "user-1", habit.DateRange{From: "2030-01-01", To: "2030-01-31"})
	if err != nil {
		t.Fatalf("CompletionsInRange() failed: %v", err)
	}
	if none == nil || len(none) != 0 {
		t.Errorf("empty range = %v, want empty slice", none)
	}
}

func TestGetCompletion_Missing(t *testing.T) {
	s := openTestStore(t)
	_, ok, err := s.GetCompletion(context.Background(), "user-1", "read", "2025-06-01")
	if err != nil {
		t.Fatalf("GetCompletion() failed: %v", err)
	}
	if ok {
		t.Error("missing record must report ok = false, never a default verdict")
	}
}
