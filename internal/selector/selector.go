// Package selector implements the transition selection algorithm of
// §4.4.1: per active leaf, find the first enabled transition in
// document order, then resolve conflicts between candidates whose
// exit sets intersect.
package selector

import (
	"sort"

	"github.com/scxml-go/scxml/internal/data"
	"github.com/scxml-go/scxml/internal/model"
	"github.com/scxml-go/scxml/internal/pathalgo"
)

// Guard evaluates a transition's condition expression. An empty Cond
// is treated as unconditionally true without calling the Guard; with
// a nil Guard, a transition that has a Cond is never enabled.
type Guard interface {
	Eval(expr string, env map[string]any) (any, error)
}

// Candidate is one selected transition paired with the state path it
// was sourced from, needed to resolve conflicts by source depth and
// to compute each candidate's exit set. ResolvedTargets is
// Transition.Targets with any history pseudostate already rewritten
// to the path(s) it actually denotes, so conflict resolution and the
// caller's own exit/entry-set computation agree on the same domain.
type Candidate struct {
	Source          *model.State
	Transition      *model.Transition
	ResolvedTargets []string
}

// Select walks the active configuration leaves-first (per §4.4.1
// "ordered leaves-first") and returns the pairwise non-conflicting set
// of transitions to fire for the given event. An empty/zero event
// selects only eventless transitions.
func Select(chart *model.Chart, rt *data.RuntimeState, active []string, ev data.Event, guard Guard, env map[string]any, hasEvent bool) ([]Candidate, error) {
	// Walk active leaves deepest-first, then up through each leaf's
	// ancestor chain — §4.4.1 says "for each active state, ordered
	// leaves-first": a leaf and its own ancestors are visited before
	// unrelated leaves are considered, since an inner transition wins
	// over an outer one for the same leaf.
	visited := make(map[string]bool)
	var candidates []Candidate

	orderedActive := make([]string, len(active))
	copy(orderedActive, active)
	sort.Slice(orderedActive, func(i, j int) bool {
		return pathalgo.Depth(orderedActive[i]) > pathalgo.Depth(orderedActive[j])
	})

	for _, leafPath := range orderedActive {
		for _, ancPath := range reverseAncestors(leafPath) {
			if visited[ancPath] {
				continue
			}
			visited[ancPath] = true
			state, err := chart.FindState(ancPath)
			if err != nil {
				continue
			}
			t, err := firstEnabled(rt, state, ev, guard, env, hasEvent)
			if err != nil {
				return nil, err
			}
			if t != nil {
				resolved := resolveHistoryTargets(chart, rt, t.Targets)
				candidates = append(candidates, Candidate{Source: state, Transition: t, ResolvedTargets: resolved})
				break // first enabled transition per active state wins; stop climbing this leaf's ancestry once found
			}
		}
	}

	return resolveConflicts(chart, active, candidates), nil
}

// resolveHistoryTargets rewrites any history pseudo-state among
// targets into the path(s) it actually denotes (§4.4.5 "history
// resolution"): the recorded configuration from the last time its
// region was exited, or its default transition's target the first
// time it is entered. Non-history targets pass through unchanged.
func resolveHistoryTargets(chart *model.Chart, rt *data.RuntimeState, targets []string) []string {
	var out []string
	for _, t := range targets {
		state, err := chart.FindState(t)
		if err != nil || !state.IsHistory() {
			out = append(out, t)
			continue
		}
		switch state.Kind {
		case model.ShallowHistory:
			if recorded, ok := rt.History.RestoreShallow(state.Path()); ok {
				out = append(out, recorded)
				continue
			}
		case model.DeepHistory:
			if recorded, ok := rt.History.RestoreDeep(state.Path()); ok {
				out = append(out, recorded...)
				continue
			}
		}
		switch {
		case state.HistoryDefault != "":
			out = append(out, resolveHistoryTargets(chart, rt, []string{state.HistoryDefault})...)
		case state.Parent != nil:
			out = append(out, state.Parent.Path())
		}
	}
	return out
}

// reverseAncestors returns leaf and its ancestors, innermost first —
// the opposite order of pathalgo.Ancestors.
func reverseAncestors(leaf string) []string {
	asc := pathalgo.Ancestors(leaf)
	out := make([]string, len(asc))
	for i, p := range asc {
		out[len(asc)-1-i] = p
	}
	return out
}

func firstEnabled(rt *data.RuntimeState, state *model.State, ev data.Event, guard Guard, env map[string]any, hasEvent bool) (*model.Transition, error) {
	for _, t := range state.Transitions {
		eventless := t.Event == ""
		if hasEvent {
			if eventless || !ev.MatchesDescriptor(t.Event) {
				continue
			}
		} else if !eventless {
			continue
		}
		if t.Cond == "" {
			return t, nil
		}
		if guard == nil {
			continue
		}
		v, err := guard.Eval(t.Cond, env)
		if err != nil {
			// A failing guard disables the transition and is trapped
			// into error.execution on the internal queue (§4.3).
			if rt != nil {
				rt.Internal.Push(data.NewPlatformError("execution", err))
			}
			continue
		}
		if truthy(v) {
			return t, nil
		}
	}
	return nil, nil
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case float64:
		return t != 0
	case int:
		return t != 0
	default:
		return true
	}
}

// resolveConflicts drops the candidate sourced from the shallower
// state whenever two candidates' exit sets intersect (§4.4.1 "the one
// sourced from the deeper state wins").
func resolveConflicts(chart *model.Chart, active []string, candidates []Candidate) []Candidate {
	exitSets := make([][]string, len(candidates))
	for i, c := range candidates {
		exitSets[i] = pathalgo.ExitSet(active, c.Source.Path(), c.ResolvedTargets, c.Transition.Type)
	}

	dropped := make([]bool, len(candidates))
	for i := range candidates {
		if dropped[i] {
			continue
		}
		for j := i + 1; j < len(candidates); j++ {
			if dropped[j] || !intersects(exitSets[i], exitSets[j]) {
				continue
			}
			if pathalgo.Depth(candidates[i].Source.Path()) >= pathalgo.Depth(candidates[j].Source.Path()) {
				dropped[j] = true
			} else {
				dropped[i] = true
				break
			}
		}
	}

	var out []Candidate
	for i, c := range candidates {
		if !dropped[i] {
			out = append(out, c)
		}
	}
	return out
}

func intersects(a, b []string) bool {
	set := make(map[string]bool, len(a))
	for _, p := range a {
		set[p] = true
	}
	for _, p := range b {
		if set[p] {
			return true
		}
	}
	return false
}
