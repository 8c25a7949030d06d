package engine

import (
	"context"
	"database/sql"
	"errors"

	"github.com/tallyhq/tally/internal/compiler"
	"github.com/tallyhq/tally/internal/habit"
)

// AddHabit validates and persists a new habit configuration. Any
// structural invariant violation rejects the whole operation; nothing is
// persisted and the violations are returned on the error.
func (t *Tracker) AddHabit(ctx context.Context, userID string, cfg habit.Config) (habit.Config, error) {
	accepted, violations := compiler.Accept(userID, cfg)
	if len(violations) > 0 {
		return habit.Config{}, newConfigRejectedError(cfg.ID, violations)
	}

	if err := t.store.CreateHabit(ctx, accepted, t.clock.Next()); err != nil {
		return habit.Config{}, newStoreFailureError("create habit", err)
	}

	t.logger.Info("habit added",
		"habit", accepted.ID,
		"kind", string(accepted.Kind),
		"version", accepted.VersionHash,
	)
	return accepted, nil
}

// EditHabit validates an edited configuration, persists it as a new
// version, and re-evaluates every existing ledger entry of the habit
// against the new values so persisted verdicts never reflect a stale
// config.
//
// Only this habit's records change; other habits and other dates keep
// their verdicts (derivation recomputes aggregates from the records
// anyway).
func (t *Tracker) EditHabit(ctx context.Context, userID string, cfg habit.Config) (habit.Config, error) {
	accepted, violations := compiler.Accept(userID, cfg)
	if len(violations) > 0 {
		return habit.Config{}, newConfigRejectedError(cfg.ID, violations)
	}

	err := t.store.UpdateHabitConfig(ctx, accepted, t.clock.Next())
	if errors.Is(err, sql.ErrNoRows) {
		return habit.Config{}, newUnknownHabitError(cfg.ID)
	}
	if err != nil {
		return habit.Config{}, newStoreFailureError("update habit", err)
	}

	if err := t.reevaluateHabit(ctx, accepted); err != nil {
		return habit.Config{}, err
	}

	t.logger.Info("habit edited",
		"habit", accepted.ID,
		"version", accepted.VersionHash,
	)
	return accepted, nil
}

// reevaluateHabit rewrites the completion record of every ledger entry
// for the habit using the (new) config. Serialized per key like any
// other write.
func (t *Tracker) reevaluateHabit(ctx context.Context, cfg habit.Config) error {
	entries, err := t.store.ListEntriesForHabit(ctx, cfg.ID)
	if err != nil {
		return newStoreFailureError("list entries", err)
	}

	for _, entry := range entries {
		unlock := t.lockKey(cfg.ID, string(entry.Date))
		record := habit.CompletionRecord{
			UserID:      cfg.UserID,
			HabitID:     cfg.ID,
			Date:        entry.Date,
			IsCompleted: habit.Evaluate(cfg.Kind, cfg, entry.Amount),
			Amount:      entry.Amount,
			Seq:         t.clock.Next(),
		}
		err := t.store.UpsertCompletion(ctx, record)
		unlock()
		if err != nil {
			return newStoreFailureError("reevaluate entry", err)
		}
	}
	return nil
}

// DeleteHabit removes a habit together with its ledger, audit trail, and
// completion records. This is the only operation that deletes completion
// records.
func (t *Tracker) DeleteHabit(ctx context.Context, userID, habitID string) error {
	cfg, err := t.store.GetHabit(ctx, habitID)
	if errors.Is(err, sql.ErrNoRows) {
		return newUnknownHabitError(habitID)
	}
	if err != nil {
		return newStoreFailureError("load habit", err)
	}
	if cfg.UserID != userID {
		return newUnknownHabitError(habitID)
	}

	if err := t.store.DeleteHabit(ctx, habitID); err != nil {
		return newStoreFailureError("delete habit", err)
	}

	t.logger.Info("habit deleted", "habit", habitID)
	return nil
}

// Habits lists the user's current configurations in deterministic order.
func (t *Tracker) Habits(ctx context.Context, userID string) ([]habit.Config, error) {
	configs, err := t.store.ListHabits(ctx, userID)
	if err != nil {
		return nil, newStoreFailureError("list habits", err)
	}
	return configs, nil
}
