// Package schedule defines the due-habit boundary the derivation engine
// consumes. Expanding a habit's schedule into concrete due dates is a
// collaborator concern; the core only asks "which habits are due on D?"
// and treats an unavailable answer by excluding the date from derivation.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tallyhq/tally/internal/habit"
)

// ErrUnavailable is returned when due information for a date cannot be
// determined. The derivation engine excludes such dates entirely —
// neither assumed complete nor incomplete.
var ErrUnavailable = errors.New("schedule: due information unavailable")

// DueProvider answers which habits are due for a user on a date.
//
// An empty slice means no habits are due (the date cannot qualify as
// fully complete). An ErrUnavailable error means the answer is unknown
// and the date must be excluded from derivation.
type DueProvider interface {
	Due(ctx context.Context, userID string, date habit.DateKey) ([]string, error)
}

// WeekdaySet is a bitmask of due weekdays, bit 0 = Sunday.
type WeekdaySet uint8

// AllDays marks a habit due every day of the week.
const AllDays WeekdaySet = 0x7F

var weekdayNames = map[string]time.Weekday{
	"sun": time.Sunday,
	"mon": time.Monday,
	"tue": time.Tuesday,
	"wed": time.Wednesday,
	"thu": time.Thursday,
	"fri": time.Friday,
	"sat": time.Saturday,
}

// ParseWeekdaySet parses a schedule reference into a weekday mask.
// Accepted forms: "daily", "" (same as daily), or a comma-separated list
// of three-letter weekday names such as "mon,wed,fri".
func ParseWeekdaySet(ref string) (WeekdaySet, error) {
	ref = strings.TrimSpace(strings.ToLower(ref))
	if ref == "" || ref == "daily" {
		return AllDays, nil
	}

	var set WeekdaySet
	for _, token := range strings.Split(ref, ",") {
		token = strings.TrimSpace(token)
		day, ok := weekdayNames[token]
		if !ok {
			return 0, fmt.Errorf("invalid schedule reference %q: unknown weekday %q", ref, token)
		}
		set |= 1 << uint(day)
	}
	return set, nil
}

// Contains reports whether the weekday is in the set.
func (s WeekdaySet) Contains(day time.Weekday) bool {
	return s&(1<<uint(day)) != 0
}

// Weekly is a DueProvider that expands each habit's weekday mask.
type Weekly struct {
	userID string
	masks  map[string]WeekdaySet // habit ID -> due weekdays
	order  []string              // deterministic iteration order
}

// NewWeekly builds a Weekly provider from habit configurations, parsing
// each config's schedule reference. Configs are expected in deterministic
// order (the store lists them sorted); Due preserves that order.
func NewWeekly(userID string, configs []habit.Config) (*Weekly, error) {
	w := &Weekly{
		userID: userID,
		masks:  make(map[string]WeekdaySet, len(configs)),
	}
	for _, cfg := range configs {
		mask, err := ParseWeekdaySet(cfg.Schedule)
		if err != nil {
			return nil, fmt.Errorf("habit %s: %w", cfg.ID, err)
		}
		w.masks[cfg.ID] = mask
		w.order = append(w.order, cfg.ID)
	}
	return w, nil
}

// Due returns the habits due on date for the provider's user. Asking
// about a different user is a programming error surfaced as
// ErrUnavailable rather than a silent empty answer.
func (w *Weekly) Due(_ context.Context, userID string, date habit.DateKey) ([]string, error) {
	if userID != w.userID {
		return nil, fmt.Errorf("%w: provider built for user %s, asked about %s", ErrUnavailable, w.userID, userID)
	}
	if !date.Valid() {
		return nil, fmt.Errorf("%w: invalid date key %q", ErrUnavailable, date)
	}

	day := date.Weekday()
	due := []string{}
	for _, id := range w.order {
		if w.masks[id].Contains(day) {
			due = append(due, id)
		}
	}
	return due, nil
}

// Static is a DueProvider backed by a fixed table. Dates missing from
// the table are unavailable, which makes it convenient for exercising
// the derivation engine's exclusion behavior in tests.
type Static struct {
	userID string
	table  map[habit.DateKey][]string
}

// NewStatic creates a static provider for one user.
func NewStatic(userID string, table map[habit.DateKey][]string) *Static {
	return &Static{userID: userID, table: table}
}

// Due returns the configured due set, or ErrUnavailable for unknown dates.
func (s *Static) Due(_ context.Context, userID string, date habit.DateKey) ([]string, error) {
	if userID != s.userID {
		return nil, fmt.Errorf("%w: provider built for user %s, asked about %s", ErrUnavailable, s.userID, userID)
	}
	due, ok := s.table[date]
	if !ok {
		return nil, fmt.Errorf("%w: no due data for %s", ErrUnavailable, date)
	}
	return due, nil
}
