package pathalgo

import "github.com/scxml-go/scxml/internal/model"

// domain computes the transition's domain path L used by both the
// exit and entry set algorithms (§4.4.3-4.4.5). For an ordinary
// transition this is LCCA(source, target). A self-targeting
// transition (source == target) is a boundary case the general
// formula doesn't cover on its own (the LCCA of a path with itself is
// the path, which would exclude it from its own exit set): per the
// external-loop boundary behaviour, a self-transition of type
// external must exit and re-enter the source, so its domain is
// widened to the source's parent; a self-transition of type internal
// must not exit the source at all.
func domain(source, target string, transType model.TransitionType) (path string, selfInternal bool) {
	if source == target {
		if transType == model.Internal {
			return "", true
		}
		return ParentPath(source), false
	}
	return LCCA(source, target), false
}

// ExitSet returns the subset of active that must be exited for a
// transition from source to the given targets, deepest-first with
// ties broken by reverse document order (§4.4.4). active is assumed to
// already be in document order (shallowest-first, invariant I3).
// Multiple targets (a parallel-splitting transition) widen the domain
// to the common ancestor of the source and every target.
func ExitSet(active []string, source string, targets []string, transType model.TransitionType) []string {
	if len(targets) == 0 {
		// Targetless transition: nothing changes in the configuration.
		return nil
	}
	target := targets[0]
	l, selfInternal := domain(source, target, transType)
	for _, t := range targets[1:] {
		l = LCCA(l, t)
	}
	if selfInternal {
		return nil
	}

	// A strict ancestor of a target survives the exit (it stays active
	// on the way back down to the target); the target itself, and the
	// source on a self-transition, must not be excluded here, or
	// domain's widening for self-transitions gets cancelled right back
	// out.
	isStrictAncestorOfAnyTarget := func(p string) bool {
		for _, t := range targets {
			if HasStrictPrefix(t, p) {
				return true
			}
		}
		return false
	}

	var filtered []string
	for _, p := range active {
		if HasStrictPrefix(p, l) && !isStrictAncestorOfAnyTarget(p) {
			filtered = append(filtered, p)
		}
	}

	// Reverse document order first, then a stable depth-descending
	// sort: this yields deepest-first with ties broken by reverse
	// document order, per §4.4.4.
	reversed := make([]string, len(filtered))
	for i, p := range filtered {
		reversed[len(filtered)-1-i] = p
	}
	stableSortByDepthDesc(reversed)
	return reversed
}

func stableSortByDepthDesc(paths []string) {
	for i := 1; i < len(paths); i++ {
		j := i
		for j > 0 && Depth(paths[j-1]) < Depth(paths[j]) {
			paths[j-1], paths[j] = paths[j], paths[j-1]
			j--
		}
	}
}
