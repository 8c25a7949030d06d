package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tallyhq/tally/internal/habit"
)

// txExecer abstracts *sql.Tx and *sql.DB for shared write helpers.
type txExecer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// txQuerier abstracts *sql.Tx and *sql.DB for shared read helpers.
type txQuerier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// GetEntry returns the ledger entry for a habit-date, including the full
// audit timestamp sequence. The second return is false when no progress
// has ever been recorded for the key.
func (s *Store) GetEntry(ctx context.Context, habitID string, date habit.DateKey) (habit.ProgressEntry, bool, error) {
	var amount int64
	err := s.db.QueryRowContext(ctx, `
		SELECT amount FROM progress_entries
		WHERE habit_id = ? AND date_key = ?
	`, habitID, date).Scan(&amount)
	if err == sql.ErrNoRows {
		return habit.ProgressEntry{}, false, nil
	}
	if err != nil {
		return habit.ProgressEntry{}, false, fmt.Errorf("get entry: %w", err)
	}

	timestamps, err := readTimestampsTx(ctx, s.db, habitID, date)
	if err != nil {
		return habit.ProgressEntry{}, false, fmt.Errorf("get entry: %w", err)
	}

	return habit.ProgressEntry{
		HabitID:    habitID,
		Date:       date,
		Amount:     amount,
		Timestamps: timestamps,
	}, true, nil
}

// ListEvents returns the audit trail for a habit-date in deterministic
// order: seq ASC, id COLLATE BINARY ASC.
func (s *Store) ListEvents(ctx context.Context, habitID string, date habit.DateKey) ([]habit.ProgressEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, habit_id, date_key, delta, absolute, amount, seq, recorded_at
		FROM progress_events
		WHERE habit_id = ? AND date_key = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, habitID, date)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	events := []habit.ProgressEvent{}
	for rows.Next() {
		var ev habit.ProgressEvent
		var dateKey string
		var absolute int
		var recordedAt string
		if err := rows.Scan(&ev.ID, &ev.HabitID, &dateKey, &ev.Delta, &absolute, &ev.Amount, &ev.Seq, &recordedAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		ev.Date = habit.DateKey(dateKey)
		ev.Absolute = absolute != 0
		ts, err := time.Parse(time.RFC3339Nano, recordedAt)
		if err != nil {
			return nil, fmt.Errorf("parse event timestamp: %w", err)
		}
		ev.RecordedAt = ts
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

// GetCompletion returns the completion record for a key. The second
// return is false when no record exists — which downstream derivation
// treats as not completed, never as completed.
func (s *Store) GetCompletion(ctx context.Context, userID, habitID string, date habit.DateKey) (habit.CompletionRecord, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT user_id, habit_id, date_key, is_completed, amount, seq
		FROM completion_records
		WHERE user_id = ? AND habit_id = ? AND date_key = ?
	`, userID, habitID, date)

	record, err := scanCompletion(row)
	if err == sql.ErrNoRows {
		return habit.CompletionRecord{}, false, nil
	}
	if err != nil {
		return habit.CompletionRecord{}, false, fmt.Errorf("get completion: %w", err)
	}
	return record, true, nil
}

// CompletionsInRange returns all completion records for a user within an
// inclusive date range, ordered date_key ASC, habit_id COLLATE BINARY
// ASC. A single query gives the derivation engine a consistent snapshot
// even while writes proceed (WAL readers see a point-in-time view).
//
// Returns an empty slice (not nil) if no records exist in range.
func (s *Store) CompletionsInRange(ctx context.Context, userID string, r habit.DateRange) ([]habit.CompletionRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, habit_id, date_key, is_completed, amount, seq
		FROM completion_records
		WHERE user_id = ? AND date_key >= ? AND date_key <= ?
		ORDER BY date_key ASC, habit_id COLLATE BINARY ASC
	`, userID, r.From, r.To)
	if err != nil {
		return nil, fmt.Errorf("query completions: %w", err)
	}
	defer rows.Close()

	records := []habit.CompletionRecord{}
	for rows.Next() {
		record, err := scanCompletion(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate completions: %w", err)
	}
	return records, nil
}

// FirstCompletionDate returns the earliest date key with a completion
// record for the user. The second return is false when the user has no
// records at all.
func (s *Store) FirstCompletionDate(ctx context.Context, userID string) (habit.DateKey, bool, error) {
	var date sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT MIN(date_key) FROM completion_records WHERE user_id = ?
	`, userID).Scan(&date)
	if err != nil {
		return "", false, fmt.Errorf("first completion date: %w", err)
	}
	if !date.Valid || date.String == "" {
		return "", false, nil
	}
	return habit.DateKey(date.String), true, nil
}

// ListEntriesForHabit returns every ledger entry for a habit in date
// order, without audit timestamps. Used by re-evaluation after a config
// edit, where only the amounts matter.
func (s *Store) ListEntriesForHabit(ctx context.Context, habitID string) ([]habit.ProgressEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT habit_id, date_key, amount
		FROM progress_entries
		WHERE habit_id = ?
		ORDER BY date_key ASC
	`, habitID)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	entries := []habit.ProgressEntry{}
	for rows.Next() {
		var e habit.ProgressEntry
		var dateKey string
		if err := rows.Scan(&e.HabitID, &dateKey, &e.Amount); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		e.Date = habit.DateKey(dateKey)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	return entries, nil
}

// readTimestampsTx returns the ordered audit timestamps for a key.
// Shared between the write transaction and plain reads.
func readTimestampsTx(ctx context.Context, q txQuerier, habitID string, date habit.DateKey) ([]time.Time, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT recorded_at FROM progress_events
		WHERE habit_id = ? AND date_key = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, habitID, date)
	if err != nil {
		return nil, fmt.Errorf("read timestamps: %w", err)
	}
	defer rows.Close()

	var timestamps []time.Time
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan timestamp: %w", err)
		}
		ts, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return nil, fmt.Errorf("parse timestamp: %w", err)
		}
		timestamps = append(timestamps, ts)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate timestamps: %w", err)
	}
	return timestamps, nil
}

func scanCompletion(row rowScanner) (habit.CompletionRecord, error) {
	var record habit.CompletionRecord
	var date string
	var isCompleted int
	err := row.Scan(&record.UserID, &record.HabitID, &date, &isCompleted, &record.Amount, &record.Seq)
	if err != nil {
		return habit.CompletionRecord{}, err
	}
	record.Date = habit.DateKey(date)
	record.IsCompleted = isCompleted != 0
	return record, nil
}
