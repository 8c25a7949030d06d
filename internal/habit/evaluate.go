package habit

// Evaluate decides whether a habit-day counts as complete.
//
// This is the ONLY place completion semantics may be expressed. Every
// other component either calls this function or reads its persisted
// output from the completion record store; none may approximate the
// check (the ancestor of this system had a second "any progress counts"
// path that disagreed with the real rule for breaking habits, making XP
// oscillate for unchanged data).
//
// Semantics, both boundaries inclusive:
//   - Formation: complete when amount >= cfg.Goal.
//   - Breaking:  complete when amount <= cfg.Target.
//
// Pure, deterministic, total: no I/O, no hidden state, safe to call from
// any context. Unknown kinds evaluate to false rather than guessing.
func Evaluate(kind Kind, cfg Config, amount int64) bool {
	switch kind {
	case KindFormation:
		return amount >= cfg.Goal
	case KindBreaking:
		return amount <= cfg.Target
	default:
		return false
	}
}
