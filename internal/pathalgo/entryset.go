package pathalgo

import (
	"fmt"

	"github.com/scxml-go/scxml/internal/model"
)

// EntrySet returns the ordered set of paths to enter for a transition
// from source to targets, shallowest-first, with default completion
// applied past each target (§4.4.5). active is the configuration as
// entry begins (the interpreter passes it after the exit phase has
// removed exited states), used only to skip already-active
// intermediates.
func EntrySet(chart *model.Chart, active []string, source string, targets []string, transType model.TransitionType) ([]string, error) {
	if len(targets) == 0 {
		return nil, nil
	}
	target := targets[0]
	l, selfInternal := domain(source, target, transType)
	for _, t := range targets[1:] {
		l = LCCA(l, t)
	}
	if selfInternal {
		return nil, nil
	}

	activeSet := make(map[string]bool, len(active))
	for _, p := range active {
		activeSet[p] = true
	}

	var out []string
	seen := make(map[string]bool)
	appendPath := func(p string) {
		if !activeSet[p] && !seen[p] {
			out = append(out, p)
			seen[p] = true
		}
	}

	for _, t := range targets {
		for _, anc := range Ancestors(t) {
			if HasStrictPrefix(anc, l) {
				appendPath(anc)
			}
		}
		state, err := chart.FindState(t)
		if err != nil {
			return nil, fmt.Errorf("entry set: %w", err)
		}
		for _, p := range ExpandCompletion(state) {
			appendPath(p)
		}
	}
	return out, nil
}
