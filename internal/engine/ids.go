package engine

import "github.com/google/uuid"

// EventIDGenerator produces IDs for progress audit events.
// Implemented by UUIDv7Generator (production) and by a sequential
// generator in internal/testutil for deterministic tests.
type EventIDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 event IDs.
//
// UUIDv7 embeds a timestamp in the most significant bits, so audit
// event IDs sort roughly by creation time, which helps when reading
// raw audit rows.
//
// Thread-safety: stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 as a hyphenated string.
// Panics if UUID generation fails (should never happen in practice).
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}
