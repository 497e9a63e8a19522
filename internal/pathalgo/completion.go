package pathalgo

import "github.com/scxml-go/scxml/internal/model"

// ResolveInitialChild picks the default child of a compound or
// parallel-region state per §4.4.2's precedence: the parser has
// already folded an explicit initial attribute and an inner <initial>
// pseudo-state's target into State.Initial (see model.State's Initial
// doc comment), so only two cases remain here: that field, then
// first-child-in-document-order as the final fallback.
func ResolveInitialChild(s *model.State) *model.State {
	if s.Initial != "" {
		if c := s.Child(s.Initial); c != nil {
			return c
		}
	}
	if len(s.Children) > 0 {
		return s.Children[0]
	}
	return nil
}

// ExpandCompletion returns the additional paths entered when default
// completion continues past s (§4.4.2, §4.4.5 "apply default
// completion after T"): recurses into a compound state's resolved
// initial child, or into every region of a parallel state
// simultaneously, document order preserved, until atomic/final states
// are reached. Returns nil for atomic, final, and history kinds —
// history resolution is handled by the transition selector
// (selector.resolveHistoryTargets) against the history store, not by
// static default completion.
func ExpandCompletion(s *model.State) []string {
	switch s.Kind {
	case model.Compound:
		child := ResolveInitialChild(s)
		if child == nil {
			return nil
		}
		return append([]string{child.Path()}, ExpandCompletion(child)...)
	case model.Parallel:
		var out []string
		for _, region := range s.Children {
			out = append(out, region.Path())
			out = append(out, ExpandCompletion(region)...)
		}
		return out
	default:
		return nil
	}
}
