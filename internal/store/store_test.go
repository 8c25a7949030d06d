package store

import (
	"context"
	"path/filepath"
	"testing"
)

func TestOpen_CreatesDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tally.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	// All tables exist.
	for _, table := range []string{"habits", "habit_versions", "progress_entries", "progress_events", "completion_records"} {
		var name string
		err := s.db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		if err != nil {
			t.Errorf("table %s missing: %v", table, err)
		}
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tally.db")
	s1, err := Open(path)
	if err != nil {
		t.Fatalf("first Open() failed: %v", err)
	}
	s1.Close()

	s2, err := Open(path)
	if err != nil {
		t.Fatalf("second Open() failed: %v", err)
	}
	defer s2.Close()
}

func TestOpen_Pragmas(t *testing.T) {
	s := openTestStore(t)

	if err := s.verifyPragma("journal_mode", "wal"); err != nil {
		t.Error(err)
	}
	if err := s.verifyPragma("foreign_keys", "1"); err != nil {
		t.Error(err)
	}
}

func TestOpen_SchemaVersion(t *testing.T) {
	s := openTestStore(t)

	var version int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		t.Fatalf("query user_version: %v", err)
	}
	if version != currentSchemaVersion {
		t.Errorf("user_version = %d, want %d", version, currentSchemaVersion)
	}

	// The v1 migration index exists.
	var name string
	err := s.db.QueryRow(`
		SELECT name FROM sqlite_master WHERE type='index' AND name='idx_completion_records_user_date'
	`).Scan(&name)
	if err != nil {
		t.Errorf("v1 index missing: %v", err)
	}
}

func TestMaxSeq(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	max, err := s.MaxSeq(ctx)
	if err != nil {
		t.Fatalf("MaxSeq() failed: %v", err)
	}
	if max != 0 {
		t.Errorf("empty store MaxSeq = %d, want 0", max)
	}

	mustCreateHabit(t, s, formationConfig("read"))
	if _, _, err := s.ApplyProgress(ctx, nextWrite("read", "2025-06-01", 3, 7), func(int64) bool { return false }); err != nil {
		t.Fatalf("ApplyProgress() failed: %v", err)
	}

	max, err = s.MaxSeq(ctx)
	if err != nil {
		t.Fatalf("MaxSeq() failed: %v", err)
	}
	if max != 7 {
		t.Errorf("MaxSeq = %d, want 7", max)
	}
}
