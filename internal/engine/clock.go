package engine

import (
	"sync/atomic"
	"time"
)

// SeqSource hands out the strictly increasing sequence numbers stamped
// on every persisted write. Implemented by Clock (production) and by
// testutil.DeterministicClock (resettable, for scenario replay).
type SeqSource interface {
	Next() int64
	Current() int64
}

// Clock is a monotonic logical clock stamping every persisted event.
//
// All writes carry a strictly increasing seq number from this clock,
// which gives the store deterministic ordering without wall-clock race
// conditions: replaying the event log always reproduces the same order.
//
// Thread-safety: safe for concurrent use (atomic operations).
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a clock starting at 0; the first Next() returns 1.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock starting at a specific sequence number.
// Used on startup to resume from the store's highest persisted seq.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next returns the next sequence number and advances the clock.
// Calls are linearizable - each call returns a unique, increasing value.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current sequence number without advancing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}

// TimeSource supplies wall-clock timestamps for audit records. Injected
// so tests can run with fixed time and golden traces stay stable.
type TimeSource interface {
	Now() time.Time
}

// SystemTime is the production TimeSource.
type SystemTime struct{}

// Now returns the current UTC time.
func (SystemTime) Now() time.Time {
	return time.Now().UTC()
}
