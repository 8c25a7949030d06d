package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallyhq/tally/internal/compiler"
)

func TestAddHabit_StampsOwnerAndVersion(t *testing.T) {
	tr, st := newTestTracker(t)
	ctx := context.Background()

	accepted, err := tr.AddHabit(ctx, testUser, readingConfig("read"))
	require.NoError(t, err)
	assert.Equal(t, testUser, accepted.UserID)
	assert.NotEmpty(t, accepted.VersionHash)

	stored, err := st.GetHabit(ctx, "read")
	require.NoError(t, err)
	assert.Equal(t, accepted, stored)
}

func TestAddHabit_RejectsInvalidConfig(t *testing.T) {
	tr, _ := newTestTracker(t)
	ctx := context.Background()

	bad := readingConfig("read")
	bad.Goal = 0
	bad.Name = ""

	_, err := tr.AddHabit(ctx, testUser, bad)
	require.Error(t, err)
	assert.True(t, IsConfigRejected(err))

	var te *TrackerError
	require.ErrorAs(t, err, &te)
	codes := make([]string, 0, len(te.Violations))
	for _, v := range te.Violations {
		codes = append(codes, v.Code)
	}
	assert.Contains(t, codes, compiler.ErrGoalNotPositive)
	assert.Contains(t, codes, compiler.ErrNameEmpty)

	// Rejection persists nothing.
	habits, err := tr.Habits(ctx, testUser)
	require.NoError(t, err)
	assert.Empty(t, habits)
}

func TestEditHabit_ReevaluatesExistingLedger(t *testing.T) {
	tr, _ := newTestTracker(t)
	ctx := context.Background()
	_, err := tr.AddHabit(ctx, testUser, readingConfig("read"))
	require.NoError(t, err)

	_, record, err := tr.RecordProgress(ctx, testUser, "read", day, 6)
	require.NoError(t, err)
	require.True(t, record.IsCompleted)

	// Raising the goal above the recorded amount revokes the verdict.
	harder := readingConfig("read")
	harder.Goal = 10
	_, err = tr.EditHabit(ctx, testUser, harder)
	require.NoError(t, err)

	done, err := tr.IsCompleted(ctx, testUser, "read", day)
	require.NoError(t, err)
	assert.False(t, done)

	// Lowering it back under the amount restores it.
	easier := readingConfig("read")
	easier.Goal = 3
	_, err = tr.EditHabit(ctx, testUser, easier)
	require.NoError(t, err)

	done, err = tr.IsCompleted(ctx, testUser, "read", day)
	require.NoError(t, err)
	assert.True(t, done)
}

func TestEditHabit_UnknownHabit(t *testing.T) {
	tr, _ := newTestTracker(t)
	ctx := context.Background()

	_, err := tr.EditHabit(ctx, testUser, readingConfig("ghost"))
	require.Error(t, err)
	assert.True(t, IsUnknownHabit(err))
}

func TestEditHabit_RecordsVersionHistory(t *testing.T) {
	tr, st := newTestTracker(t)
	ctx := context.Background()
	first, err := tr.AddHabit(ctx, testUser, readingConfig("read"))
	require.NoError(t, err)

	edited := readingConfig("read")
	edited.Goal = 8
	second, err := tr.EditHabit(ctx, testUser, edited)
	require.NoError(t, err)
	assert.NotEqual(t, first.VersionHash, second.VersionHash)

	versions, err := st.ListHabitVersions(ctx, "read")
	require.NoError(t, err)
	assert.Len(t, versions, 2)
}

func TestDeleteHabit_RemovesLedgerAndRecords(t *testing.T) {
	tr, _ := newTestTracker(t)
	ctx := context.Background()
	_, err := tr.AddHabit(ctx, testUser, readingConfig("read"))
	require.NoError(t, err)
	_, _, err = tr.RecordProgress(ctx, testUser, "read", day, 5)
	require.NoError(t, err)

	require.NoError(t, tr.DeleteHabit(ctx, testUser, "read"))

	_, ok, err := tr.Progress(ctx, "read", day)
	require.NoError(t, err)
	assert.False(t, ok)

	done, err := tr.IsCompleted(ctx, testUser, "read", day)
	require.NoError(t, err)
	assert.False(t, done)

	_, _, err = tr.RecordProgress(ctx, testUser, "read", day, 1)
	assert.True(t, IsUnknownHabit(err))
}

func TestDeleteHabit_OwnershipEnforced(t *testing.T) {
	tr, _ := newTestTracker(t)
	ctx := context.Background()
	_, err := tr.AddHabit(ctx, testUser, readingConfig("read"))
	require.NoError(t, err)

	err = tr.DeleteHabit(ctx, "intruder", "read")
	require.Error(t, err)
	assert.True(t, IsUnknownHabit(err))

	// Still there for the owner.
	habits, err := tr.Habits(ctx, testUser)
	require.NoError(t, err)
	assert.Len(t, habits, 1)
}

func TestHabits_DeterministicOrder(t *testing.T) {
	tr, _ := newTestTracker(t)
	ctx := context.Background()
	for _, id := range []string{"zeta", "alpha", "mid"} {
		cfg := readingConfig(id)
		_, err := tr.AddHabit(ctx, testUser, cfg)
		require.NoError(t, err)
	}

	habits, err := tr.Habits(ctx, testUser)
	require.NoError(t, err)
	ids := make([]string, len(habits))
	for i, h := range habits {
		ids[i] = h.ID
	}
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, ids)
}
