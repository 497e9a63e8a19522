package model

import "testing"

func TestBuildResolvesInitialFromExplicitAttribute(t *testing.T) {
	idle := &State{ID: "idle", Kind: Atomic}
	busy := &State{ID: "busy", Kind: Atomic}
	root := &State{ID: "", Kind: Compound, Initial: "busy", Children: []*State{idle, busy}}
	idle.Parent, busy.Parent = root, root

	chart, err := Build(root)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if chart.Initial != "busy" {
		t.Fatalf("expected initial %q, got %q", "busy", chart.Initial)
	}
}

func TestBuildFallsBackToFirstChildInDocumentOrder(t *testing.T) {
	first := &State{ID: "first", Kind: Atomic}
	second := &State{ID: "second", Kind: Atomic}
	root := &State{ID: "", Kind: Compound, Children: []*State{first, second}}
	first.Parent, second.Parent = root, root

	chart, err := Build(root)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if chart.Initial != "first" {
		t.Fatalf("expected fallback to first child, got %q", chart.Initial)
	}
}

func TestBuildRejectsCompoundWithNoChildren(t *testing.T) {
	root := &State{ID: "", Kind: Compound}
	if _, err := Build(root); err == nil {
		t.Fatal("expected an error for an empty compound root")
	}
}

func TestBuildRejectsDanglingInitialAttribute(t *testing.T) {
	idle := &State{ID: "idle", Kind: Atomic}
	root := &State{ID: "", Kind: Compound, Initial: "missing", Children: []*State{idle}}
	idle.Parent = root
	if _, err := Build(root); err == nil {
		t.Fatal("expected an error for an initial attribute with no matching child")
	}
}

func TestBuildRejectsTransitionTargetingUnknownState(t *testing.T) {
	idle := &State{ID: "idle", Kind: Atomic, Transitions: []*Transition{{Event: "go", Targets: []string{"nowhere"}}}}
	root := &State{ID: "", Kind: Compound, Children: []*State{idle}}
	idle.Parent = root
	if _, err := Build(root); err == nil {
		t.Fatal("expected an error for a transition targeting an unknown state")
	}
}

func TestBuildRejectsParallelWithNoRegions(t *testing.T) {
	root := &State{ID: "", Kind: Parallel}
	if _, err := Build(root); err == nil {
		t.Fatal("expected an error for a parallel state with no regions")
	}
}

func TestBuildRejectsFinalStateWithOutgoingTransitions(t *testing.T) {
	fin := &State{ID: "done", Kind: Final, Transitions: []*Transition{{Event: "go", Targets: []string{"done"}}}}
	root := &State{ID: "", Kind: Compound, Children: []*State{fin}}
	fin.Parent = root
	if _, err := Build(root); err == nil {
		t.Fatal("expected an error for a final state with an outgoing transition")
	}
}

func TestFindStateResolvesDottedPath(t *testing.T) {
	idle := &State{ID: "idle", Kind: Atomic}
	region := &State{ID: "region", Kind: Compound, Children: []*State{idle}}
	idle.Parent = region
	root := &State{ID: "", Kind: Compound, Children: []*State{region}}
	region.Parent = root

	chart, err := Build(root)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	got, err := chart.FindState("region.idle")
	if err != nil {
		t.Fatalf("FindState: %v", err)
	}
	if got != idle {
		t.Fatal("expected FindState to resolve to the idle node")
	}
	if _, err := chart.FindState("nowhere"); err == nil {
		t.Fatal("expected an error for an unknown path")
	}
}
