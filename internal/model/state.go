package model

// Data declares one <data> element of a <datamodel>, evaluated in
// document order at startup or state entry (§3.3, §4.5.1).
type Data struct {
	ID   string
	Expr string
	// Content is inline literal text content, used when Expr is
	// empty (§4.2 "Content vs expression").
	Content string
	// Src is deliberately unimplemented; present so the parser can
	// detect it and the evaluator can raise
	// error.data.src-not-implemented (spec.md §9 Open Questions).
	Src string
}

// State is the single sum-type node for every kind in §3.2: atomic,
// compound, parallel, final, and the two history pseudo-state
// variants. Which fields are meaningful is determined by Kind; see
// validateState in chart.go for the per-kind invariants.
type State struct {
	ID   string // local id, e.g. "healthy"
	Kind StateKind

	Parent *State
	// Children holds substates in document order. Non-nil and
	// non-empty for Compound and Parallel; always empty for Atomic,
	// Final, and the history kinds.
	Children []*State

	// Initial is the id of the default child for Compound/Parallel,
	// resolved per §4.4.2's precedence (explicit attribute here takes
	// slot 1; an inner <initial> pseudo-state's target is folded into
	// this field by the parser, slot 2; slot 3, first child in
	// document order, is the fallback the resolver applies when
	// Initial is empty).
	Initial string

	Transitions []*Transition
	OnEntry     []Action
	OnExit      []Action
	Datamodel   []Data

	// HistoryDefault is the transition target used the first time a
	// history pseudo-state is entered with nothing recorded yet
	// (ShallowHistory/DeepHistory only).
	HistoryDefault string

	// Done is the optional <donedata> producer for a Final state.
	Done *DoneData
}

// Path returns the dotted path of this state: the concatenation of
// every ancestor's ID from the root's first named child down to this
// node, per §4.1 "Path identity". The chart root itself contributes
// no segment.
func (s *State) Path() string {
	if s.Parent == nil {
		return s.ID
	}
	parentPath := s.Parent.Path()
	if parentPath == "" {
		return s.ID
	}
	return parentPath + "." + s.ID
}

// IsAtomicLike reports whether a state is a configuration leaf kind
// (atomic or final) — neither has children to expand into.
func (s *State) IsAtomicLike() bool {
	return s.Kind == Atomic || s.Kind == Final
}

// IsHistory reports whether Kind is one of the two history variants.
func (s *State) IsHistory() bool {
	return s.Kind == ShallowHistory || s.Kind == DeepHistory
}

// Child looks up an immediate child by local id.
func (s *State) Child(id string) *State {
	for _, c := range s.Children {
		if c.ID == id {
			return c
		}
	}
	return nil
}
