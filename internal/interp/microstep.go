package interp

import (
	"fmt"
	"sort"

	"github.com/scxml-go/scxml/internal/data"
	"github.com/scxml-go/scxml/internal/model"
	"github.com/scxml-go/scxml/internal/pathalgo"
	"github.com/scxml-go/scxml/internal/selector"
)

// seedDatamodel evaluates a state's <data> declarations in document
// order and stores them (§4.2, §4.5.1). A <data src="..."> is
// unimplemented per the taxonomy's error.data.src-not-implemented.
func (i *Interpreter) seedDatamodel(decls []model.Data) {
	for _, d := range decls {
		if d.Src != "" {
			i.rt.Internal.Push(data.NewPlatformError("data.src-not-implemented", fmt.Errorf("data %q declares src, which is not implemented", d.ID)))
			continue
		}
		var value any
		switch {
		case d.Expr != "":
			v, err := i.expr.Eval(d.Expr, i.rt.Store.Env(nil))
			if err != nil {
				i.rt.Internal.Push(data.NewPlatformError("execution", err))
				continue
			}
			value = v
		case d.Content != "":
			value = d.Content
		}
		if err := i.rt.Store.Set(d.ID, value); err != nil {
			i.rt.Internal.Push(data.NewPlatformError("execution", err))
		}
	}
}

// runMicrostep executes one microstep for the given candidate
// transitions, per §4.5.2: combined exit set, unmount, transition
// actions, combined entry set, mount.
func (i *Interpreter) runMicrostep(candidates []selector.Candidate) error {
	if len(candidates) == 0 {
		return nil
	}

	active := i.rt.ConfigSnapshot()

	exitUnion := map[string]bool{}
	for _, c := range candidates {
		for _, p := range pathalgo.ExitSet(active, c.Source.Path(), c.ResolvedTargets, c.Transition.Type) {
			exitUnion[p] = true
		}
	}
	exitSet := sortDeepestFirst(exitUnion)

	snapshotHistoryBeforeExit(i.chart, i.rt, exitSet)

	for _, path := range exitSet {
		state, err := i.chart.FindState(path)
		if err != nil {
			continue
		}
		i.eval.Run(state.OnExit, i.rt)
	}
	i.rt.RemovePaths(exitSet)

	for _, c := range candidates {
		i.eval.Run(c.Transition.Actions, i.rt)
	}

	var entryUnion []string
	seen := map[string]bool{}
	for _, c := range candidates {
		entries, err := pathalgo.EntrySet(i.chart, i.rt.ConfigSnapshot(), c.Source.Path(), c.ResolvedTargets, c.Transition.Type)
		if err != nil {
			return err
		}
		for _, p := range entries {
			if !seen[p] {
				seen[p] = true
				entryUnion = append(entryUnion, p)
			}
		}
	}

	for _, path := range entryUnion {
		state, err := i.chart.FindState(path)
		if err != nil {
			continue
		}
		i.mountState(state)
	}

	return nil
}

// mountState seeds any datamodel declarations local to state, runs
// onentry, and, for a final state, raises its completion event (§4.1,
// §4.5.1, §6.4).
func (i *Interpreter) mountState(state *model.State) {
	i.seedDatamodel(state.Datamodel)
	i.eval.Run(state.OnEntry, i.rt)
	i.rt.AppendPaths([]string{state.Path()})

	if state.Kind != model.Final {
		return
	}
	// A final state whose parent is the chart root itself is top-level
	// (§4.5.4, glossary "Final state"): the whole run terminates and no
	// done.state.* event is raised. Any other final state's entry
	// completes its own (non-root) parent compound.
	if state.Parent == i.chart.Root {
		i.rt.Running = false
		return
	}
	donedata := i.eval.EvalDoneData(state.Done, i.rt)
	i.rt.Internal.Push(data.NewDoneEvent(state.Parent.Path(), donedata))
}

// snapshotHistoryBeforeExit records, for every history pseudo-state
// about to lose its parent region, what was active under that region
// right before any unmount runs (§4.5.2 step 1 "snapshot history
// before any unmount").
func snapshotHistoryBeforeExit(chart *model.Chart, rt *data.RuntimeState, exitSet []string) {
	for _, path := range exitSet {
		state, err := chart.FindState(path)
		if err != nil {
			continue
		}
		for _, child := range state.Children {
			switch child.Kind {
			case model.ShallowHistory:
				if active := activeDirectChild(rt.Config, state); active != "" {
					rt.History.RecordShallow(child.Path(), active)
				}
			case model.DeepHistory:
				leaves := activeLeavesUnder(rt.Config, state.Path())
				if len(leaves) > 0 {
					rt.History.RecordDeep(child.Path(), leaves)
				}
			}
		}
	}
}

func activeDirectChild(active []string, parent *model.State) string {
	for _, child := range parent.Children {
		if child.IsHistory() {
			continue
		}
		for _, p := range active {
			if p == child.Path() || pathalgo.HasStrictPrefix(p, child.Path()) {
				return child.Path()
			}
		}
	}
	return ""
}

func activeLeavesUnder(active []string, regionPath string) []string {
	var leaves []string
	for _, p := range active {
		if !pathalgo.HasStrictPrefix(p, regionPath) {
			continue
		}
		isLeaf := true
		for _, q := range active {
			if q != p && pathalgo.HasStrictPrefix(q, p) {
				isLeaf = false
				break
			}
		}
		if isLeaf {
			leaves = append(leaves, p)
		}
	}
	return leaves
}

func sortDeepestFirst(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	sort.Slice(out, func(a, b int) bool {
		da, db := pathalgo.Depth(out[a]), pathalgo.Depth(out[b])
		if da != db {
			return da > db
		}
		return out[a] > out[b]
	})
	return out
}
