package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/tallyhq/tally/internal/engine"
	"github.com/tallyhq/tally/internal/habit"
	"github.com/tallyhq/tally/internal/store"
	"github.com/tallyhq/tally/internal/testutil"
)

// Harness drives one scenario execution against a real tracker.
type Harness struct {
	store   *store.Store
	tracker *engine.Tracker
	clock   *testutil.DeterministicClock
	user    string
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database with a deterministic
// clock, sequential event IDs, and a frozen time source, so repeated runs
// produce byte-identical traces.
func Run(scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("create in-memory store: %w", err)
	}
	defer st.Close()

	clock := testutil.NewDeterministicClock()
	opts := []engine.TrackerOption{
		engine.WithClock(clock),
		engine.WithEventIDs(testutil.NewSequentialEventIDs("evt")),
		engine.WithTimeSource(testutil.NewFixedTime(time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC))),
		engine.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}
	if scenario.RewardPerDay > 0 {
		opts = append(opts, engine.WithRewardPerDay(scenario.RewardPerDay))
	}

	h := &Harness{
		store:   st,
		tracker: engine.New(st, opts...),
		clock:   clock,
		user:    scenario.User,
	}

	ctx := context.Background()
	result := NewResult()

	if err := h.createHabits(ctx, scenario.Habits, result); err != nil {
		return nil, err
	}
	if err := h.executeSteps(ctx, scenario.Steps, result); err != nil {
		return nil, err
	}

	errs := EvaluateAssertions(ctx, h.tracker, h.store, scenario, result.Trace)
	for _, msg := range errs {
		result.AddError("%s", msg)
	}
	return result, nil
}

// createHabits adds every declared habit. A rejected config is a scenario
// authoring error, not a test outcome, so it aborts the run.
func (h *Harness) createHabits(ctx context.Context, defs []HabitDef, result *Result) error {
	for _, def := range defs {
		accepted, err := h.tracker.AddHabit(ctx, h.user, def.Config())
		if err != nil {
			return fmt.Errorf("add habit %s: %w", def.ID, err)
		}
		result.AddTrace(TraceEvent{
			Type:  "add",
			Habit: accepted.ID,
			Seq:   h.clock.Current(),
		})
	}
	return nil
}

// executeSteps runs the flow in order, validating expect clauses as it goes.
func (h *Harness) executeSteps(ctx context.Context, steps []Step, result *Result) error {
	for i, step := range steps {
		switch {
		case step.Record != nil:
			if err := h.writeProgress(ctx, i, "record", *step.Record, step.Expect, result); err != nil {
				return err
			}
		case step.Set != nil:
			if err := h.writeProgress(ctx, i, "set", *step.Set, step.Expect, result); err != nil {
				return err
			}
		case step.Edit != nil:
			if _, err := h.tracker.EditHabit(ctx, h.user, step.Edit.Config()); err != nil {
				return fmt.Errorf("step %d: edit habit %s: %w", i, step.Edit.ID, err)
			}
			result.AddTrace(TraceEvent{
				Type:  "edit",
				Habit: step.Edit.ID,
				Seq:   h.clock.Current(),
			})
		case step.Delete != "":
			if err := h.tracker.DeleteHabit(ctx, h.user, step.Delete); err != nil {
				return fmt.Errorf("step %d: delete habit %s: %w", i, step.Delete, err)
			}
			result.AddTrace(TraceEvent{
				Type:  "delete",
				Habit: step.Delete,
				Seq:   h.clock.Current(),
			})
		}
	}
	return nil
}

func (h *Harness) writeProgress(ctx context.Context, index int, kind string, p ProgressStep, expect *ExpectClause, result *Result) error {
	date := habit.DateKey(p.Date)

	var entry habit.ProgressEntry
	var record habit.CompletionRecord
	var err error
	if kind == "record" {
		entry, record, err = h.tracker.RecordProgress(ctx, h.user, p.Habit, date, p.Amount)
	} else {
		entry, record, err = h.tracker.SetProgress(ctx, h.user, p.Habit, date, p.Amount)
	}
	if err != nil {
		return fmt.Errorf("step %d: %s %s@%s: %w", index, kind, p.Habit, p.Date, err)
	}

	event := TraceEvent{
		Type:      kind,
		Habit:     p.Habit,
		Date:      p.Date,
		Amount:    entry.Amount,
		Completed: record.IsCompleted,
		Seq:       record.Seq,
	}
	if kind == "record" {
		event.Delta = p.Amount
	}
	result.AddTrace(event)

	if expect != nil {
		if expect.Completed != nil && record.IsCompleted != *expect.Completed {
			result.AddError("step %d: %s %s@%s: expected completed=%v, got %v",
				index, kind, p.Habit, p.Date, *expect.Completed, record.IsCompleted)
		}
		if expect.Amount != nil && entry.Amount != *expect.Amount {
			result.AddError("step %d: %s %s@%s: expected amount=%d, got %d",
				index, kind, p.Habit, p.Date, *expect.Amount, entry.Amount)
		}
	}
	return nil
}
