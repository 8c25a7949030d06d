package testutil

import "time"

// FixedTime is a TimeSource pinned to one instant.
//
// Audit timestamps produced under FixedTime never vary between runs, so
// traces that include recorded_at values stay comparable byte-for-byte.
type FixedTime struct {
	at time.Time
}

// NewFixedTime creates a time source frozen at the given instant (stored as
// UTC).
func NewFixedTime(at time.Time) *FixedTime {
	return &FixedTime{at: at.UTC()}
}

// Now returns the frozen instant.
//
// Implements engine.TimeSource.
func (f *FixedTime) Now() time.Time {
	return f.at
}
