// Package harness provides conformance testing for the habit core.
//
// The harness loads YAML scenarios, executes them against a real tracker
// over an in-memory SQLite store, and validates the persisted outcome. A
// scenario describes habits to create, a flow of progress writes and config
// edits, and assertions over the resulting records and derived stats.
//
// # Scenario Format
//
//	name: breaking_relapse
//	description: "Verdict follows the amount across the target boundary"
//	user: user-1
//	habits:
//	  - id: smoke
//	    name: Fewer cigarettes
//	    kind: breaking
//	    baseline: 20
//	    target: 5
//	steps:
//	  - record: { habit: smoke, date: "2025-06-02", amount: 3 }
//	    expect: { completed: true, amount: 3 }
//	  - record: { habit: smoke, date: "2025-06-02", amount: 12 }
//	    expect: { completed: false, amount: 15 }
//	assertions:
//	  - type: completed
//	    habit: smoke
//	    date: "2025-06-02"
//	    completed: false
//
// # Assertion Types
//
//   - completed: the persisted verdict for a habit-date
//   - entry: the ledger amount and timestamp count for a habit-date
//   - events: the exact number of audit events for a habit-date
//   - stats: derived stats over a date range
//
// # Deterministic Execution
//
// Every scenario runs with a fresh in-memory database, a deterministic
// logical clock (testutil.DeterministicClock), sequential event IDs, and a
// frozen time source. Identical scenarios therefore produce byte-identical
// traces, which is what makes golden file comparison possible.
package harness
