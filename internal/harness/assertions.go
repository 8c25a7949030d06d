package harness

import (
	"context"
	"fmt"
	"strings"

	"github.com/tallyhq/tally/internal/engine"
	"github.com/tallyhq/tally/internal/habit"
	"github.com/tallyhq/tally/internal/schedule"
	"github.com/tallyhq/tally/internal/store"
)

// AssertionError describes a failed final-state assertion with enough
// context to debug it from the test log alone.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Trace    []TraceEvent
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  actual: %s\n", e.Actual)
	fmt.Fprintf(&buf, "\ntrace:\n")
	for i, event := range e.Trace {
		fmt.Fprintf(&buf, "  [%d] %s %s@%s amount=%d completed=%v\n",
			i+1, event.Type, event.Habit, event.Date, event.Amount, event.Completed)
	}
	return buf.String()
}

// EvaluateAssertions checks every assertion against the final persisted
// state and returns all failures (does not fail-fast).
func EvaluateAssertions(ctx context.Context, tracker *engine.Tracker, st *store.Store, scenario *Scenario, trace []TraceEvent) []string {
	var failures []string
	for i, a := range scenario.Assertions {
		var err error
		switch a.Type {
		case AssertCompleted:
			err = assertCompleted(ctx, tracker, scenario.User, a, trace)
		case AssertEntry:
			err = assertEntry(ctx, tracker, a, trace)
		case AssertEvents:
			err = assertEvents(ctx, st, a, trace)
		case AssertStats:
			err = assertStats(ctx, tracker, scenario.User, a, trace)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			failures = append(failures, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return failures
}

func assertCompleted(ctx context.Context, tracker *engine.Tracker, userID string, a Assertion, trace []TraceEvent) error {
	done, err := tracker.IsCompleted(ctx, userID, a.Habit, habit.DateKey(a.Date))
	if err != nil {
		return fmt.Errorf("completed %s@%s: %w", a.Habit, a.Date, err)
	}
	if done != *a.Completed {
		return &AssertionError{
			Type:     AssertCompleted,
			Expected: fmt.Sprintf("%s@%s completed=%v", a.Habit, a.Date, *a.Completed),
			Actual:   fmt.Sprintf("completed=%v", done),
			Trace:    trace,
		}
	}
	return nil
}

func assertEntry(ctx context.Context, tracker *engine.Tracker, a Assertion, trace []TraceEvent) error {
	entry, ok, err := tracker.Progress(ctx, a.Habit, habit.DateKey(a.Date))
	if err != nil {
		return fmt.Errorf("entry %s@%s: %w", a.Habit, a.Date, err)
	}
	if !ok {
		return &AssertionError{
			Type:     AssertEntry,
			Expected: fmt.Sprintf("ledger entry for %s@%s", a.Habit, a.Date),
			Actual:   "no entry",
			Trace:    trace,
		}
	}
	if a.Amount != nil && entry.Amount != *a.Amount {
		return &AssertionError{
			Type:     AssertEntry,
			Expected: fmt.Sprintf("%s@%s amount=%d", a.Habit, a.Date, *a.Amount),
			Actual:   fmt.Sprintf("amount=%d", entry.Amount),
			Trace:    trace,
		}
	}
	if a.Timestamps > 0 && len(entry.Timestamps) != a.Timestamps {
		return &AssertionError{
			Type:     AssertEntry,
			Expected: fmt.Sprintf("%s@%s timestamps=%d", a.Habit, a.Date, a.Timestamps),
			Actual:   fmt.Sprintf("timestamps=%d", len(entry.Timestamps)),
			Trace:    trace,
		}
	}
	return nil
}

func assertEvents(ctx context.Context, st *store.Store, a Assertion, trace []TraceEvent) error {
	events, err := st.ListEvents(ctx, a.Habit, habit.DateKey(a.Date))
	if err != nil {
		return fmt.Errorf("events %s@%s: %w", a.Habit, a.Date, err)
	}
	if len(events) != a.Count {
		return &AssertionError{
			Type:     AssertEvents,
			Expected: fmt.Sprintf("%s@%s has %d audit events", a.Habit, a.Date, a.Count),
			Actual:   fmt.Sprintf("%d events", len(events)),
			Trace:    trace,
		}
	}
	return nil
}

func assertStats(ctx context.Context, tracker *engine.Tracker, userID string, a Assertion, trace []TraceEvent) error {
	asOf := habit.DateKey(a.AsOf)
	if asOf == "" {
		asOf = habit.DateKey(a.To)
	}
	r := habit.DateRange{From: habit.DateKey(a.From), To: habit.DateKey(a.To)}

	configs, err := tracker.Habits(ctx, userID)
	if err != nil {
		return fmt.Errorf("stats: list habits: %w", err)
	}
	provider, err := schedule.NewWeekly(userID, configs)
	if err != nil {
		return fmt.Errorf("stats: build schedule: %w", err)
	}

	stats, err := tracker.Stats(ctx, userID, r, asOf, provider)
	if err != nil {
		return fmt.Errorf("stats %s..%s: %w", a.From, a.To, err)
	}

	want := habit.DerivedStats{
		CompletedDayCount: a.Stats.CompletedDays,
		CurrentStreak:     a.Stats.CurrentStreak,
		LongestStreak:     a.Stats.LongestStreak,
		TotalXP:           a.Stats.TotalXP,
	}
	if stats != want {
		return &AssertionError{
			Type:     AssertStats,
			Expected: fmt.Sprintf("%+v", want),
			Actual:   fmt.Sprintf("%+v", stats),
			Trace:    trace,
		}
	}
	return nil
}
