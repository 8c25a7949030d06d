package habit

import "time"

// Kind distinguishes the two habit success models.
type Kind string

const (
	// KindFormation habits are "do more" habits: the day succeeds when
	// accumulated progress reaches or exceeds the goal amount.
	KindFormation Kind = "formation"

	// KindBreaking habits are "do less" habits: the day succeeds when
	// recorded usage stays at or under the target, measured against a
	// declared baseline of current behavior.
	KindBreaking Kind = "breaking"
)

// ValidKinds defines allowed habit kinds.
var ValidKinds = map[Kind]bool{
	KindFormation: true,
	KindBreaking:  true,
}

// Config is one immutable version of a habit's configuration.
//
// Edits never mutate a Config in place: the compiler validates the edited
// values and produces a new Config with a new VersionHash. Invalid
// configurations are rejected outright and never persisted.
//
// Amounts are integers in the habit's smallest unit (minutes, repetitions,
// cigarettes, ...). Floats are forbidden throughout the core so that
// boundary comparisons and content hashes stay exact.
type Config struct {
	// ID is the stable habit identifier, shared by all versions.
	ID string `json:"id"`

	// UserID is the owning user.
	UserID string `json:"user_id"`

	// Name is the user-facing label.
	Name string `json:"name"`

	// Kind selects the success model.
	Kind Kind `json:"kind"`

	// Goal is the formation target amount. Must be > 0 for formation
	// habits; ignored for breaking habits.
	Goal int64 `json:"goal,omitempty"`

	// Baseline is the user's declared current usage for breaking habits.
	// Must be > 0 for breaking habits; ignored for formation habits.
	Baseline int64 `json:"baseline,omitempty"`

	// Target is the desired usage ceiling for breaking habits.
	// Must be strictly less than Baseline; ignored for formation habits.
	Target int64 `json:"target,omitempty"`

	// Schedule is an opaque schedule reference (e.g. "daily",
	// "mon,wed,fri"). Expanding it into due dates is the schedule
	// collaborator's job, not the core's.
	Schedule string `json:"schedule"`

	// VersionHash is the content-addressed identity of this version.
	// Empty until the configuration has been accepted by the compiler.
	VersionHash string `json:"version_hash,omitempty"`
}

// ProgressEntry is the current ledger state for one (habit, date) key:
// the cumulative amount plus the audit timestamps of every write.
//
// Entries are owned by the store's ledger. They are only mutated through
// the single progress write path, which appends exactly one audit event
// per call.
type ProgressEntry struct {
	HabitID    string      `json:"habit_id"`
	Date       DateKey     `json:"date"`
	Amount     int64       `json:"amount"`
	Timestamps []time.Time `json:"timestamps"`
}

// ProgressEvent is one immutable audit record of a progress write.
// One event exists per recordProgress call, regardless of delta size.
type ProgressEvent struct {
	// ID is a UUIDv7 assigned by the engine.
	ID string `json:"id"`

	HabitID string  `json:"habit_id"`
	Date    DateKey `json:"date"`

	// Delta is the requested change. For absolute writes it is the
	// requested amount itself.
	Delta int64 `json:"delta"`

	// Absolute marks corrective "set" writes as opposed to increments.
	Absolute bool `json:"absolute"`

	// Amount is the ledger amount after this event was applied.
	Amount int64 `json:"amount"`

	// Seq is the logical clock stamp; orders events deterministically.
	Seq int64 `json:"seq"`

	// RecordedAt is the wall-clock audit timestamp.
	RecordedAt time.Time `json:"recorded_at"`
}

// CompletionRecord is the durable completion verdict for one
// (user, habit, date) key. At most one record exists per key; every write
// to the ledger upserts it with the evaluator's current output.
//
// IsCompleted is never set independently: it is always
// Evaluate(kind, config, amount) for the amount that triggered the write.
type CompletionRecord struct {
	UserID      string  `json:"user_id"`
	HabitID     string  `json:"habit_id"`
	Date        DateKey `json:"date"`
	IsCompleted bool    `json:"is_completed"`

	// Amount is the ledger amount the verdict was computed from.
	Amount int64 `json:"amount"`

	// Seq is the logical clock stamp of the last write.
	Seq int64 `json:"seq"`
}

// DerivedStats are aggregate statistics recomputed from the completion
// record history. They are never stored: any cached copy must agree with
// a fresh recomputation from the records.
type DerivedStats struct {
	// CompletedDayCount is the number of dates in range where every due
	// habit has a true completion record and the due set is non-empty.
	CompletedDayCount int64 `json:"completed_day_count"`

	// CurrentStreak is the trailing consecutive run of fully complete
	// days ending at the reference date (or the most recent date with
	// due habits).
	CurrentStreak int64 `json:"current_streak"`

	// LongestStreak is the maximum consecutive run over the whole range.
	LongestStreak int64 `json:"longest_streak"`

	// TotalXP is CompletedDayCount times the configured reward per day.
	TotalXP int64 `json:"total_xp"`
}
