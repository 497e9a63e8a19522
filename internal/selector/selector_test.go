package selector

import (
	"testing"

	"github.com/scxml-go/scxml/internal/data"
	"github.com/scxml-go/scxml/internal/model"
)

func buildTwoStateChart(t *testing.T) *model.Chart {
	t.Helper()
	active := &model.State{ID: "active", Kind: model.Atomic}
	idle := &model.State{ID: "idle", Kind: model.Atomic, Transitions: []*model.Transition{
		{Event: "activate", Targets: []string{"active"}},
		{Event: "*", Targets: []string{"active"}},
	}}
	root := &model.State{ID: "", Kind: model.Compound, Initial: "idle", Children: []*model.State{idle, active}}
	idle.Parent, active.Parent = root, root
	c, err := model.Build(root)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestSelectFirstEnabledWinsInDocumentOrder(t *testing.T) {
	chart := buildTwoStateChart(t)
	cands, err := Select(chart, nil, []string{"idle"}, data.Event{Name: "activate"}, nil, nil, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(cands) != 1 || cands[0].Transition.Event != "activate" {
		t.Fatalf("got %+v", cands)
	}
}

func TestSelectNoMatchReturnsEmpty(t *testing.T) {
	chart := buildTwoStateChart(t)
	cands, err := Select(chart, nil, []string{"active"}, data.Event{Name: "activate"}, nil, nil, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(cands) != 0 {
		t.Fatalf("got %+v", cands)
	}
}

func TestSelectEventlessOnlyWhenNoEvent(t *testing.T) {
	eventless := &model.State{ID: "a", Kind: model.Atomic, Transitions: []*model.Transition{
		{Targets: []string{"b"}},
	}}
	b := &model.State{ID: "b", Kind: model.Atomic}
	root := &model.State{ID: "", Kind: model.Compound, Initial: "a", Children: []*model.State{eventless, b}}
	eventless.Parent, b.Parent = root, root
	chart, err := model.Build(root)
	if err != nil {
		t.Fatal(err)
	}

	cands, err := Select(chart, nil, []string{"a"}, data.Event{}, nil, nil, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(cands) != 1 {
		t.Fatalf("expected eventless transition to fire, got %+v", cands)
	}

	cands, err = Select(chart, nil, []string{"a"}, data.Event{Name: "ignored"}, nil, nil, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(cands) != 0 {
		t.Fatalf("expected eventless transition not to fire while processing a named event, got %+v", cands)
	}
}

func TestSelectConflictResolvedByDeeperSource(t *testing.T) {
	inner := &model.State{ID: "inner", Kind: model.Atomic, Transitions: []*model.Transition{
		{Event: "go", Targets: []string{"sibling"}},
	}}
	mid := &model.State{ID: "mid", Kind: model.Compound, Initial: "inner", Children: []*model.State{inner}, Transitions: []*model.Transition{
		{Event: "go", Targets: []string{"sibling"}},
	}}
	inner.Parent = mid
	sibling := &model.State{ID: "sibling", Kind: model.Atomic}
	root := &model.State{ID: "", Kind: model.Compound, Initial: "mid", Children: []*model.State{mid, sibling}}
	mid.Parent, sibling.Parent = root, root
	chart, err := model.Build(root)
	if err != nil {
		t.Fatal(err)
	}

	active := []string{"mid", "mid.inner"}
	cands, err := Select(chart, nil, active, data.Event{Name: "go"}, nil, nil, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(cands) != 1 || cands[0].Source.Path() != "mid.inner" {
		t.Fatalf("expected deeper source to win, got %+v", cands)
	}
}

// TestSelectConflictResolvedAgainstResolvedHistoryTarget builds two
// parallel regions whose raw targets (one region's own compound child
// vs. the other region's history pseudostate) look non-conflicting,
// but whose history target resolves into the very same compound the
// first region's transition also touches. Conflict resolution must use
// the resolved path, or it would let both candidates through and try
// to fire two transitions into the same compound.
func TestSelectConflictResolvedAgainstResolvedHistoryTarget(t *testing.T) {
	hist := &model.State{ID: "hist", Kind: model.ShallowHistory, HistoryDefault: "par.region.a"}
	a := &model.State{ID: "a", Kind: model.Atomic}
	b := &model.State{ID: "b", Kind: model.Atomic}
	region := &model.State{ID: "region", Kind: model.Compound, Initial: "a", Children: []*model.State{hist, a, b}}
	hist.Parent, a.Parent, b.Parent = region, region, region
	region.Transitions = []*model.Transition{
		{Event: "go", Targets: []string{"par.region.b"}},
	}

	outer := &model.State{ID: "outer", Kind: model.Atomic, Transitions: []*model.Transition{
		{Event: "go", Targets: []string{"par.region.hist"}},
	}}

	par := &model.State{ID: "par", Kind: model.Parallel, Children: []*model.State{region, outer}}
	region.Parent, outer.Parent = par, par

	root := &model.State{ID: "", Kind: model.Compound, Initial: "par", Children: []*model.State{par}}
	par.Parent = root
	chart, err := model.Build(root)
	if err != nil {
		t.Fatal(err)
	}

	rt := data.NewRuntimeState()
	active := []string{"par", "par.region", "par.region.a", "par.outer"}
	cands, err := Select(chart, rt, active, data.Event{Name: "go"}, nil, nil, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(cands) != 1 {
		t.Fatalf("expected the conflicting pair to resolve to one candidate, got %+v", cands)
	}
	if cands[0].Source.Path() != "par.region" {
		t.Fatalf("expected the region transition (same depth, found first from the deepest active leaf) to win, got source %q", cands[0].Source.Path())
	}
}
