package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/tallyhq/tally/internal/habit"
	"github.com/tallyhq/tally/internal/schedule"
)

// Derive computes streaks and reward totals from completion records alone.
// It never reads the progress ledger: two ledgers that produce the same
// records produce the same stats.
//
// days must be in ascending date order. A day is transparent to streaks when
// it has no entry in due (availability unknown) or an empty due set (rest
// day); such days neither extend nor break a run. A due day counts only when
// every due habit has a completion record with IsCompleted true.
func Derive(records []habit.CompletionRecord, due map[habit.DateKey][]string, days []habit.DateKey, asOf habit.DateKey, rewardPerDay int64) habit.DerivedStats {
	completedOn := make(map[habit.DateKey]map[string]bool)
	for _, rec := range records {
		byHabit := completedOn[rec.Date]
		if byHabit == nil {
			byHabit = make(map[string]bool)
			completedOn[rec.Date] = byHabit
		}
		byHabit[rec.HabitID] = rec.IsCompleted
	}

	var stats habit.DerivedStats
	var run int64
	for _, day := range days {
		if asOf.Before(day) {
			break
		}
		habits, ok := due[day]
		if !ok || len(habits) == 0 {
			continue
		}
		qualified := true
		for _, id := range habits {
			if !completedOn[day][id] {
				qualified = false
				break
			}
		}
		if !qualified {
			run = 0
			continue
		}
		stats.CompletedDayCount++
		run++
		if run > stats.LongestStreak {
			stats.LongestStreak = run
		}
	}
	stats.CurrentStreak = run
	stats.TotalXP = stats.CompletedDayCount * rewardPerDay
	return stats
}

// Stats derives stats for userID over r, consulting provider for which
// habits are due on each day. Dates the provider reports as unavailable are
// excluded from the day sequence entirely.
func (t *Tracker) Stats(ctx context.Context, userID string, r habit.DateRange, asOf habit.DateKey, provider schedule.DueProvider) (habit.DerivedStats, error) {
	if !r.From.Valid() || !r.To.Valid() || r.To.Before(r.From) {
		return habit.DerivedStats{}, newInvalidDateError(string(r.From))
	}
	if !asOf.Valid() {
		return habit.DerivedStats{}, newInvalidDateError(string(asOf))
	}

	due := make(map[habit.DateKey][]string)
	var days []habit.DateKey
	for day := r.From; !r.To.Before(day); day = day.Next() {
		habits, err := provider.Due(ctx, userID, day)
		if err != nil {
			if errors.Is(err, schedule.ErrUnavailable) {
				continue
			}
			return habit.DerivedStats{}, newStoreFailureError("due habits", fmt.Errorf("%s: %w", day, err))
		}
		due[day] = habits
		days = append(days, day)
	}

	records, err := t.store.CompletionsInRange(ctx, userID, r)
	if err != nil {
		return habit.DerivedStats{}, newStoreFailureError("completions in range", err)
	}
	return Derive(records, due, days, asOf, t.rewardPerDay), nil
}

// CurrentStats derives stats for userID from the first recorded completion
// through asOf, using the weekly schedules of the user's habits.
func (t *Tracker) CurrentStats(ctx context.Context, userID string, asOf habit.DateKey) (habit.DerivedStats, error) {
	if !asOf.Valid() {
		return habit.DerivedStats{}, newInvalidDateError(string(asOf))
	}
	first, ok, err := t.store.FirstCompletionDate(ctx, userID)
	if err != nil {
		return habit.DerivedStats{}, newStoreFailureError("first completion date", err)
	}
	if !ok || asOf.Before(first) {
		return habit.DerivedStats{}, nil
	}

	configs, err := t.store.ListHabits(ctx, userID)
	if err != nil {
		return habit.DerivedStats{}, newStoreFailureError("list habits", err)
	}
	provider, err := schedule.NewWeekly(userID, configs)
	if err != nil {
		return habit.DerivedStats{}, newStoreFailureError("build weekly schedule", err)
	}
	return t.Stats(ctx, userID, habit.DateRange{From: first, To: asOf}, asOf, provider)
}
