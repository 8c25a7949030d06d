package engine

import (
	"context"
	"database/sql"
	"errors"

	"github.com/tallyhq/tally/internal/habit"
	"github.com/tallyhq/tally/internal/store"
)

// RecordProgress applies a relative progress increment (or decrement,
// for corrections) to a habit-date, re-evaluates completion, and upserts
// the completion record — all before returning. Callers never observe a
// ledger entry without its up-to-date completion record.
//
// Exactly one audit timestamp is appended per call, no matter how large
// delta is.
func (t *Tracker) RecordProgress(ctx context.Context, userID, habitID string, date habit.DateKey, delta int64) (habit.ProgressEntry, habit.CompletionRecord, error) {
	return t.writeProgress(ctx, userID, habitID, date, delta, false)
}

// SetProgress overwrites the cumulative amount for a habit-date with an
// absolute value. Used by corrective edits; evaluation and record upsert
// behave exactly as in RecordProgress.
func (t *Tracker) SetProgress(ctx context.Context, userID, habitID string, date habit.DateKey, amount int64) (habit.ProgressEntry, habit.CompletionRecord, error) {
	return t.writeProgress(ctx, userID, habitID, date, amount, true)
}

func (t *Tracker) writeProgress(ctx context.Context, userID, habitID string, date habit.DateKey, delta int64, absolute bool) (habit.ProgressEntry, habit.CompletionRecord, error) {
	if !date.Valid() {
		return habit.ProgressEntry{}, habit.CompletionRecord{}, &TrackerError{
			Code:    ErrCodeInvalidDate,
			Message: "date key must be YYYY-MM-DD",
			HabitID: habitID,
			Date:    string(date),
		}
	}

	unlock := t.lockKey(habitID, string(date))
	defer unlock()

	cfg, err := t.store.GetHabit(ctx, habitID)
	if errors.Is(err, sql.ErrNoRows) {
		return habit.ProgressEntry{}, habit.CompletionRecord{}, newUnknownHabitError(habitID)
	}
	if err != nil {
		return habit.ProgressEntry{}, habit.CompletionRecord{}, newStoreFailureError("load habit", err)
	}
	// A habit owned by a different user is indistinguishable from a
	// missing one to the caller.
	if cfg.UserID != userID {
		return habit.ProgressEntry{}, habit.CompletionRecord{}, newUnknownHabitError(habitID)
	}

	w := store.ProgressWrite{
		EventID:    t.ids.Generate(),
		UserID:     userID,
		HabitID:    habitID,
		Date:       date,
		Delta:      delta,
		Absolute:   absolute,
		Seq:        t.clock.Next(),
		RecordedAt: t.times.Now(),
	}

	// The verdict callback closes over the loaded config so the
	// persisted completion always corresponds to the amount that
	// triggered this write.
	entry, record, err := t.store.ApplyProgress(ctx, w, func(amount int64) bool {
		return habit.Evaluate(cfg.Kind, cfg, amount)
	})
	if err != nil {
		return habit.ProgressEntry{}, habit.CompletionRecord{}, newStoreFailureError("apply progress", err)
	}

	t.logger.Debug("progress recorded",
		"habit", habitID,
		"date", string(date),
		"delta", delta,
		"absolute", absolute,
		"amount", entry.Amount,
		"completed", record.IsCompleted,
		"seq", w.Seq,
	)

	return entry, record, nil
}

// IsCompleted returns the persisted completion verdict for a habit-date.
// A missing record is false — absence never counts as success.
func (t *Tracker) IsCompleted(ctx context.Context, userID, habitID string, date habit.DateKey) (bool, error) {
	record, ok, err := t.store.GetCompletion(ctx, userID, habitID, date)
	if err != nil {
		return false, newStoreFailureError("get completion", err)
	}
	if !ok {
		return false, nil
	}
	return record.IsCompleted, nil
}

// Progress returns the ledger entry for a habit-date, including audit
// timestamps. The second return is false when nothing has been recorded.
func (t *Tracker) Progress(ctx context.Context, habitID string, date habit.DateKey) (habit.ProgressEntry, bool, error) {
	entry, ok, err := t.store.GetEntry(ctx, habitID, date)
	if err != nil {
		return habit.ProgressEntry{}, false, newStoreFailureError("get entry", err)
	}
	return entry, ok, nil
}
