package model

// Transition is an inert node holding its metadata and executable
// children; it is never mounted, only inspected by the selector and,
// when selected, has its Actions run (§4.1).
type Transition struct {
	// Event is the event descriptor. Empty means eventless. Matching
	// uses dotted-token prefix matching per §4.4.1 (e.g. "error"
	// matches "error.execution"); "*" matches any event.
	Event string
	// Cond is the guard expression; empty means unconditional.
	Cond string
	// Targets lists the transition's target state paths. Spec §3.2
	// notes "at most one target set per fire" — multiple entries here
	// describe one parallel-splitting target set, not alternatives.
	Targets []string
	Type    TransitionType
	Actions []Action
}

// HasTarget reports whether the transition changes configuration at
// all; a targetless transition only runs its actions (valid SCXML,
// used for internal-only side effects).
func (t *Transition) HasTarget() bool {
	return len(t.Targets) > 0
}
