package testutil

import (
	"fmt"
	"sync"
)

// SequentialEventIDs generates predictable event IDs of the form
// "evt-000001", "evt-000002", ... in call order.
//
// Substituted for the production UUIDv7 generator so audit rows in golden
// traces are byte-identical across runs.
//
// Thread-safety: safe for concurrent use via internal mutex.
type SequentialEventIDs struct {
	mu     sync.Mutex
	prefix string
	n      int64
}

// NewSequentialEventIDs creates a generator with the given prefix.
// An empty prefix defaults to "evt".
func NewSequentialEventIDs(prefix string) *SequentialEventIDs {
	if prefix == "" {
		prefix = "evt"
	}
	return &SequentialEventIDs{prefix: prefix}
}

// Generate returns the next ID in the sequence.
//
// Implements engine.EventIDGenerator.
func (g *SequentialEventIDs) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%06d", g.prefix, g.n)
}

// Reset restarts the sequence. After Reset(), the next Generate()
// returns "<prefix>-000001" again.
func (g *SequentialEventIDs) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n = 0
}
