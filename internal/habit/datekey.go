package habit

import (
	"fmt"
	"time"
)

// DateKey identifies a calendar day as "YYYY-MM-DD".
//
// The format is chosen so that lexicographic order equals chronological
// order, which lets the store use plain ORDER BY and range predicates on
// the key column.
type DateKey string

const dateKeyLayout = "2006-01-02"

// NewDateKey returns the DateKey for t in t's location.
func NewDateKey(t time.Time) DateKey {
	return DateKey(t.Format(dateKeyLayout))
}

// ParseDateKey validates s and returns it as a DateKey.
func ParseDateKey(s string) (DateKey, error) {
	t, err := time.Parse(dateKeyLayout, s)
	if err != nil {
		return "", fmt.Errorf("invalid date key %q: %w", s, err)
	}
	// time.Parse accepts some non-canonical spellings; round-trip to
	// guarantee the canonical form.
	if got := t.Format(dateKeyLayout); got != s {
		return "", fmt.Errorf("invalid date key %q: canonical form is %q", s, got)
	}
	return DateKey(s), nil
}

// Valid reports whether d is a well-formed canonical date key.
func (d DateKey) Valid() bool {
	_, err := ParseDateKey(string(d))
	return err == nil
}

// Time returns the midnight UTC instant of the day.
func (d DateKey) Time() time.Time {
	t, err := time.Parse(dateKeyLayout, string(d))
	if err != nil {
		return time.Time{}
	}
	return t
}

// Weekday returns the day of week for the key.
func (d DateKey) Weekday() time.Weekday {
	return d.Time().Weekday()
}

// Next returns the key for the following day.
func (d DateKey) Next() DateKey {
	return NewDateKey(d.Time().AddDate(0, 0, 1))
}

// Prev returns the key for the preceding day.
func (d DateKey) Prev() DateKey {
	return NewDateKey(d.Time().AddDate(0, 0, -1))
}

// Before reports whether d is chronologically before other.
func (d DateKey) Before(other DateKey) bool {
	return d < other
}

// DateRange is an inclusive range of date keys.
type DateRange struct {
	From DateKey `json:"from"`
	To   DateKey `json:"to"`
}

// Contains reports whether d falls inside the range.
func (r DateRange) Contains(d DateKey) bool {
	return r.From <= d && d <= r.To
}

// Days returns every key in the range in chronological order.
// Returns nil if the range is empty or malformed.
func (r DateRange) Days() []DateKey {
	if !r.From.Valid() || !r.To.Valid() || r.To < r.From {
		return nil
	}
	var days []DateKey
	for d := r.From; d <= r.To; d = d.Next() {
		days = append(days, d)
	}
	return days
}
