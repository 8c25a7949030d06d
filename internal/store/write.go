package store

import (
	"context"
	"fmt"
	"time"

	"github.com/tallyhq/tally/internal/habit"
)

// ProgressWrite describes one progress-recording operation.
type ProgressWrite struct {
	// EventID is the pre-assigned audit event ID (UUIDv7).
	EventID string

	UserID  string
	HabitID string
	Date    habit.DateKey

	// Delta is the amount change. For absolute writes it is the new
	// amount itself.
	Delta    int64
	Absolute bool

	// Seq is the logical clock stamp for this write.
	Seq int64

	// RecordedAt is the wall-clock audit timestamp.
	RecordedAt time.Time
}

// ApplyProgress applies one progress write atomically: it updates the
// ledger amount, appends exactly one audit event, and upserts the
// completion record for the same key — all in a single transaction. A
// failure at any step rolls the whole write back, so callers never
// observe a ledger entry whose completion record is stale or missing.
//
// The completion verdict comes from the completed callback, which the
// engine builds from the single evaluator. The callback sees the
// post-write amount, so the persisted verdict always corresponds to the
// amount that triggered the write.
//
// Returns the resulting ledger entry (with its full audit timestamp
// sequence) and the upserted completion record.
func (s *Store) ApplyProgress(ctx context.Context, w ProgressWrite, completed func(amount int64) bool) (habit.ProgressEntry, habit.CompletionRecord, error) {
	if completed == nil {
		return habit.ProgressEntry{}, habit.CompletionRecord{}, fmt.Errorf("apply progress: nil completion callback")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return habit.ProgressEntry{}, habit.CompletionRecord{}, fmt.Errorf("apply progress: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	// Current ledger amount for the key (0 if no entry yet).
	var current int64
	err = tx.QueryRowContext(ctx, `
		SELECT COALESCE(
			(SELECT amount FROM progress_entries WHERE habit_id = ? AND date_key = ?),
			0
		)
	`, w.HabitID, w.Date).Scan(&current)
	if err != nil {
		return habit.ProgressEntry{}, habit.CompletionRecord{}, fmt.Errorf("apply progress: read amount: %w", err)
	}

	newAmount := current + w.Delta
	if w.Absolute {
		newAmount = w.Delta
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO progress_entries (habit_id, date_key, amount)
		VALUES (?, ?, ?)
		ON CONFLICT(habit_id, date_key) DO UPDATE SET amount = excluded.amount
	`, w.HabitID, w.Date, newAmount)
	if err != nil {
		return habit.ProgressEntry{}, habit.CompletionRecord{}, fmt.Errorf("apply progress: upsert entry: %w", err)
	}

	// Exactly one audit event per call. The event ID is unique per
	// invocation, so a conflict here means a real bug upstream and is
	// surfaced, not swallowed.
	_, err = tx.ExecContext(ctx, `
		INSERT INTO progress_events
		(id, habit_id, date_key, delta, absolute, amount, seq, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		w.EventID, w.HabitID, w.Date, w.Delta, boolToInt(w.Absolute),
		newAmount, w.Seq, w.RecordedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return habit.ProgressEntry{}, habit.CompletionRecord{}, fmt.Errorf("apply progress: append event: %w", err)
	}

	record := habit.CompletionRecord{
		UserID:      w.UserID,
		HabitID:     w.HabitID,
		Date:        w.Date,
		IsCompleted: completed(newAmount),
		Amount:      newAmount,
		Seq:         w.Seq,
	}
	if err := upsertCompletionTx(ctx, tx, record); err != nil {
		return habit.ProgressEntry{}, habit.CompletionRecord{}, fmt.Errorf("apply progress: %w", err)
	}

	timestamps, err := readTimestampsTx(ctx, tx, w.HabitID, w.Date)
	if err != nil {
		return habit.ProgressEntry{}, habit.CompletionRecord{}, fmt.Errorf("apply progress: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return habit.ProgressEntry{}, habit.CompletionRecord{}, fmt.Errorf("apply progress: commit: %w", err)
	}

	entry := habit.ProgressEntry{
		HabitID:    w.HabitID,
		Date:       w.Date,
		Amount:     newAmount,
		Timestamps: timestamps,
	}
	return entry, record, nil
}

// UpsertCompletion writes a completion record directly, outside a
// progress write. Used by re-evaluation after a config edit, where the
// amount is unchanged but the verdict may flip.
//
// Idempotent: upserting the same (key, verdict) pair any number of times
// leaves exactly one row.
func (s *Store) UpsertCompletion(ctx context.Context, record habit.CompletionRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("upsert completion: begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := upsertCompletionTx(ctx, tx, record); err != nil {
		return fmt.Errorf("upsert completion: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("upsert completion: commit: %w", err)
	}
	return nil
}

// upsertCompletionTx enforces the one-record-per-key invariant: the
// primary key collision path updates the existing row in place.
func upsertCompletionTx(ctx context.Context, tx txExecer, record habit.CompletionRecord) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO completion_records
		(user_id, habit_id, date_key, is_completed, amount, seq)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, habit_id, date_key) DO UPDATE SET
			is_completed = excluded.is_completed,
			amount = excluded.amount,
			seq = excluded.seq
	`,
		record.UserID, record.HabitID, record.Date,
		boolToInt(record.IsCompleted), record.Amount, record.Seq,
	)
	if err != nil {
		return fmt.Errorf("upsert record: %w", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
