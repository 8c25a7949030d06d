package schedule

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tallyhq/tally/internal/habit"
)

func TestParseWeekdaySet(t *testing.T) {
	tests := []struct {
		ref     string
		days    []time.Weekday
		wantErr bool
	}{
		{"daily", []time.Weekday{time.Sunday, time.Monday, time.Saturday}, false},
		{"", []time.Weekday{time.Wednesday}, false},
		{"mon,wed,fri", []time.Weekday{time.Monday, time.Wednesday, time.Friday}, false},
		{"MON, WED", []time.Weekday{time.Monday, time.Wednesday}, false},
		{"monday", nil, true},
		{"mon,xyz", nil, true},
	}

	for _, tt := range tests {
		set, err := ParseWeekdaySet(tt.ref)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseWeekdaySet(%q) error = %v, wantErr %v", tt.ref, err, tt.wantErr)
			continue
		}
		for _, day := range tt.days {
			if !set.Contains(day) {
				t.Errorf("ParseWeekdaySet(%q) missing %v", tt.ref, day)
			}
		}
	}

	// Days not in the mask are excluded.
	set, err := ParseWeekdaySet("mon,wed,fri")
	if err != nil {
		t.Fatalf("ParseWeekdaySet() failed: %v", err)
	}
	if set.Contains(time.Tuesday) || set.Contains(time.Sunday) {
		t.Error("mon,wed,fri must not contain Tuesday or Sunday")
	}
}

func TestWeekly_Due(t *testing.T) {
	configs := []habit.Config{
		{ID: "read", UserID: "user-1", Schedule: "daily"},
		{ID: "run", UserID: "user-1", Schedule: "mon,wed,fri"},
	}
	w, err := NewWeekly("user-1", configs)
	if err != nil {
		t.Fatalf("NewWeekly() failed: %v", err)
	}
	ctx := context.Background()

	// 2025-06-02 is a Monday: both habits due.
	due, err := w.Due(ctx, "user-1", "2025-06-02")
	if err != nil {
		t.Fatalf("Due() failed: %v", err)
	}
	if len(due) != 2 || due[0] != "read" || due[1] != "run" {
		t.Errorf("Monday due = %v, want [read run]", due)
	}

	// 2025-06-03 is a Tuesday: only the daily habit.
	due, err = w.Due(ctx, "user-1", "2025-06-03")
	if err != nil {
		t.Fatalf("Due() failed: %v", err)
	}
	if len(due) != 1 || due[0] != "read" {
		t.Errorf("Tuesday due = %v, want [read]", due)
	}
}

func TestWeekly_WrongUserUnavailable(t *testing.T) {
	w, err := NewWeekly("user-1", nil)
	if err != nil {
		t.Fatalf("NewWeekly() failed: %v", err)
	}
	_, err = w.Due(context.Background(), "someone-else", "2025-06-02")
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("error = %v, want ErrUnavailable", err)
	}
}

func TestWeekly_RejectsBadSchedule(t *testing.T) {
	_, err := NewWeekly("user-1", []habit.Config{{ID: "x", Schedule: "everyday"}})
	if err == nil {
		t.Error("invalid schedule reference must fail at construction")
	}
}

func TestStatic_Due(t *testing.T) {
	p := NewStatic("user-1", map[habit.DateKey][]string{
		"2025-06-01": {"read"},
		"2025-06-02": {},
	})
	ctx := context.Background()

	due, err := p.Due(ctx, "user-1", "2025-06-01")
	if err != nil || len(due) != 1 {
		t.Errorf("Due() = %v, %v", due, err)
	}

	// Known date with nothing due: empty, no error.
	due, err = p.Due(ctx, "user-1", "2025-06-02")
	if err != nil || len(due) != 0 {
		t.Errorf("Due() = %v, %v, want empty with no error", due, err)
	}

	// Unknown date: unavailable.
	_, err = p.Due(ctx, "user-1", "2025-06-03")
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("error = %v, want ErrUnavailable", err)
	}
}
