package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validHabitsCUE = `
habits: {
	read: {
		name: "Read"
		kind: "formation"
		goal: 5
	}
	smoke: {
		name:     "Fewer cigarettes"
		kind:     "breaking"
		baseline: 20
		target:   5
	}
}
`

const invalidHabitsCUE = `
habits: {
	read: {
		name: "Read"
		kind: "formation"
		goal: 0
	}
}
`

func writeCUE(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "habits.cue")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func tempDB(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "tally.db")
}

func TestValidateCommand_Valid(t *testing.T) {
	out, _, err := execute(t, "validate", writeCUE(t, validHabitsCUE))
	require.NoError(t, err)
	assert.Contains(t, out, "2 habit definition(s) valid")
}

func TestValidateCommand_InvalidExitsWithFailure(t *testing.T) {
	out, _, err := execute(t, "validate", writeCUE(t, invalidHabitsCUE))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "E103")
}

func TestValidateCommand_JSONOutput(t *testing.T) {
	out, _, err := execute(t, "--format", "json", "validate", writeCUE(t, validHabitsCUE))
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestValidateCommand_MissingFile(t *testing.T) {
	_, _, err := execute(t, "validate", "no/such/file.cue")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestAddAndLogFlow(t *testing.T) {
	db := tempDB(t)
	cue := writeCUE(t, validHabitsCUE)

	out, _, err := execute(t, "--db", db, "add", cue)
	require.NoError(t, err)
	assert.Contains(t, out, "added read")
	assert.Contains(t, out, "added smoke")

	out, _, err = execute(t, "--db", db, "log", "read", "3", "--date", "2025-06-02")
	require.NoError(t, err)
	assert.Contains(t, out, "3 (not yet complete)")

	out, _, err = execute(t, "--db", db, "log", "read", "2", "--date", "2025-06-02")
	require.NoError(t, err)
	assert.Contains(t, out, "5 (complete)")

	// Corrective absolute write.
	out, _, err = execute(t, "--db", db, "log", "read", "4", "--set", "--date", "2025-06-02")
	require.NoError(t, err)
	assert.Contains(t, out, "4 (not yet complete)")
}

func TestAddCommand_RejectsInvalidDefinitions(t *testing.T) {
	db := tempDB(t)
	_, _, err := execute(t, "--db", db, "add", writeCUE(t, invalidHabitsCUE))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestAddCommand_DuplicateNeedsReplace(t *testing.T) {
	db := tempDB(t)
	cue := writeCUE(t, validHabitsCUE)

	_, _, err := execute(t, "--db", db, "add", cue)
	require.NoError(t, err)

	_, _, err = execute(t, "--db", db, "add", cue)
	require.Error(t, err)

	out, _, err := execute(t, "--db", db, "add", cue, "--replace")
	require.NoError(t, err)
	assert.Contains(t, out, "replaced read")
}

func TestLogCommand_UnknownHabit(t *testing.T) {
	db := tempDB(t)
	_, _, err := execute(t, "--db", db, "log", "ghost", "1", "--date", "2025-06-02")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestLogCommand_InvalidAmount(t *testing.T) {
	db := tempDB(t)
	_, _, err := execute(t, "--db", db, "log", "read", "lots", "--date", "2025-06-02")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTodayCommand(t *testing.T) {
	db := tempDB(t)
	cue := writeCUE(t, validHabitsCUE)
	_, _, err := execute(t, "--db", db, "add", cue)
	require.NoError(t, err)

	_, _, err = execute(t, "--db", db, "log", "read", "5", "--date", "2025-06-02")
	require.NoError(t, err)

	out, _, err := execute(t, "--db", db, "today", "--date", "2025-06-02")
	require.NoError(t, err)
	assert.Contains(t, out, "[x] Read: 5/5")
	assert.Contains(t, out, "Fewer cigarettes")
}

func TestStatsCommand_Window(t *testing.T) {
	db := tempDB(t)
	cue := writeCUE(t, `
habits: {
	read: {
		name: "Read"
		kind: "formation"
		goal: 5
	}
}
`)
	_, _, err := execute(t, "--db", db, "add", cue)
	require.NoError(t, err)

	for _, date := range []string{"2025-06-02", "2025-06-03", "2025-06-04"} {
		_, _, err = execute(t, "--db", db, "log", "read", "5", "--date", date)
		require.NoError(t, err)
	}

	out, _, err := execute(t, "--db", db, "--format", "json", "stats",
		"--from", "2025-06-02", "--to", "2025-06-04", "--as-of", "2025-06-04")
	require.NoError(t, err)

	var resp struct {
		Status string      `json:"status"`
		Data   StatsResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, int64(3), resp.Data.CompletedDays)
	assert.Equal(t, int64(3), resp.Data.CurrentStreak)
	assert.Equal(t, int64(30), resp.Data.TotalXP)
}

func TestVerifyCommand_Clean(t *testing.T) {
	db := tempDB(t)
	cue := writeCUE(t, validHabitsCUE)
	_, _, err := execute(t, "--db", db, "add", cue)
	require.NoError(t, err)
	_, _, err = execute(t, "--db", db, "log", "read", "5", "--date", "2025-06-02")
	require.NoError(t, err)

	out, _, err := execute(t, "--db", db, "verify")
	require.NoError(t, err)
	assert.Contains(t, out, "audit clean")
}
