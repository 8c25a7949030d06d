package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tallyhq/tally/internal/habit"
)

// CreateHabit persists a newly accepted configuration and its first
// version row in one transaction. The config must already carry a
// version hash — the store never accepts unvalidated configurations.
//
// Returns an error if a habit with the same ID already exists.
func (s *Store) CreateHabit(ctx context.Context, cfg habit.Config, seq int64) error {
	if cfg.VersionHash == "" {
		return fmt.Errorf("create habit %s: config has no version hash (not accepted)", cfg.ID)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("create habit: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	_, err = tx.ExecContext(ctx, `
		INSERT INTO habits
		(id, user_id, name, kind, goal, baseline, target, schedule, version_hash, created_seq)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		cfg.ID, cfg.UserID, cfg.Name, string(cfg.Kind),
		cfg.Goal, cfg.Baseline, cfg.Target, cfg.Schedule,
		cfg.VersionHash, seq,
	)
	if err != nil {
		return fmt.Errorf("create habit: insert: %w", err)
	}

	if err := insertVersion(ctx, tx, cfg, seq); err != nil {
		return fmt.Errorf("create habit: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("create habit: commit: %w", err)
	}
	return nil
}

// UpdateHabitConfig replaces the current configuration of an existing
// habit and appends the new version to the edit history. Re-saving an
// identical version is a no-op on the history (same content hash).
func (s *Store) UpdateHabitConfig(ctx context.Context, cfg habit.Config, seq int64) error {
	if cfg.VersionHash == "" {
		return fmt.Errorf("update habit %s: config has no version hash (not accepted)", cfg.ID)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("update habit: begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE habits
		SET name = ?, kind = ?, goal = ?, baseline = ?, target = ?, schedule = ?, version_hash = ?
		WHERE id = ? AND user_id = ?
	`,
		cfg.Name, string(cfg.Kind), cfg.Goal, cfg.Baseline, cfg.Target,
		cfg.Schedule, cfg.VersionHash, cfg.ID, cfg.UserID,
	)
	if err != nil {
		return fmt.Errorf("update habit: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update habit: rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update habit %s: %w", cfg.ID, sql.ErrNoRows)
	}

	if err := insertVersion(ctx, tx, cfg, seq); err != nil {
		return fmt.Errorf("update habit: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("update habit: commit: %w", err)
	}
	return nil
}

// insertVersion appends a version row. ON CONFLICT DO NOTHING makes
// re-acceptance of identical values idempotent.
func insertVersion(ctx context.Context, tx *sql.Tx, cfg habit.Config, seq int64) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO habit_versions
		(habit_id, version_hash, name, kind, goal, baseline, target, schedule, seq)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(habit_id, version_hash) DO NOTHING
	`,
		cfg.ID, cfg.VersionHash, cfg.Name, string(cfg.Kind),
		cfg.Goal, cfg.Baseline, cfg.Target, cfg.Schedule, seq,
	)
	if err != nil {
		return fmt.Errorf("insert version: %w", err)
	}
	return nil
}

// GetHabit retrieves the current configuration of a habit.
// Returns sql.ErrNoRows if not found.
func (s *Store) GetHabit(ctx context.Context, habitID string) (habit.Config, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, kind, goal, baseline, target, schedule, version_hash
		FROM habits
		WHERE id = ?
	`, habitID)
	return scanConfig(row)
}

// ListHabits returns all habits for a user in deterministic order.
// Returns an empty slice (not nil) when the user has no habits.
func (s *Store) ListHabits(ctx context.Context, userID string) ([]habit.Config, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, name, kind, goal, baseline, target, schedule, version_hash
		FROM habits
		WHERE user_id = ?
		ORDER BY id COLLATE BINARY ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list habits: %w", err)
	}
	defer rows.Close()

	configs := []habit.Config{}
	for rows.Next() {
		cfg, err := scanConfig(rows)
		if err != nil {
			return nil, err
		}
		configs = append(configs, cfg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate habits: %w", err)
	}
	return configs, nil
}

// ListHabitVersions returns the full edit history of a habit in
// acceptance order.
func (s *Store) ListHabitVersions(ctx context.Context, habitID string) ([]habit.Config, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT v.habit_id, h.user_id, v.name, v.kind, v.goal, v.baseline, v.target, v.schedule, v.version_hash
		FROM habit_versions v
		JOIN habits h ON h.id = v.habit_id
		WHERE v.habit_id = ?
		ORDER BY v.seq ASC, v.version_hash COLLATE BINARY ASC
	`, habitID)
	if err != nil {
		return nil, fmt.Errorf("list habit versions: %w", err)
	}
	defer rows.Close()

	versions := []habit.Config{}
	for rows.Next() {
		cfg, err := scanConfig(rows)
		if err != nil {
			return nil, err
		}
		versions = append(versions, cfg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate habit versions: %w", err)
	}
	return versions, nil
}

// DeleteHabit removes a habit and, via foreign key cascade, its entire
// ledger, audit trail, version history, and completion records. This is
// the only path that deletes completion records.
func (s *Store) DeleteHabit(ctx context.Context, habitID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM habits WHERE id = ?`, habitID)
	if err != nil {
		return fmt.Errorf("delete habit: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete habit: rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("delete habit %s: %w", habitID, sql.ErrNoRows)
	}
	return nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for shared scan code.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanConfig(row rowScanner) (habit.Config, error) {
	var cfg habit.Config
	var kind string
	err := row.Scan(
		&cfg.ID, &cfg.UserID, &cfg.Name, &kind,
		&cfg.Goal, &cfg.Baseline, &cfg.Target, &cfg.Schedule,
		&cfg.VersionHash,
	)
	if err != nil {
		return habit.Config{}, err
	}
	cfg.Kind = habit.Kind(kind)
	return cfg, nil
}
