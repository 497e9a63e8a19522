package interp

import (
	"context"
	"testing"
	"time"

	"github.com/scxml-go/scxml/internal/data"
	"github.com/scxml-go/scxml/internal/model"
)

// buildChart wires parent pointers and calls model.Build, failing the
// test on any construction error.
func buildChart(t *testing.T, root *model.State) *model.Chart {
	t.Helper()
	chart, err := model.Build(root)
	if err != nil {
		t.Fatalf("model.Build: %v", err)
	}
	return chart
}

// TestRunSeedScenarioChart exercises spec.md §8 seed scenario 1: a
// wildcard transition from an atomic state to a final state, after
// which the run terminates.
func TestRunSeedScenarioChart(t *testing.T) {
	finalState := &model.State{ID: "send:channel", Kind: model.Final}
	main := &model.State{
		ID:   "main",
		Kind: model.Atomic,
		Transitions: []*model.Transition{
			{Event: "*", Targets: []string{"send:channel"}},
		},
	}
	root := &model.State{ID: "", Kind: model.Compound, Children: []*model.State{main, finalState}}
	main.Parent, finalState.Parent = root, root
	chart := buildChart(t, root)

	i := New(chart)
	done := make(chan struct {
		cfg []string
		err error
	}, 1)
	go func() {
		cfg, err := i.Run(context.Background(), RunOptions{})
		done <- struct {
			cfg []string
			err error
		}{cfg, err}
	}()

	// PostEvent is safe to call immediately: the external queue exists
	// as soon as New returns, independent of whether the Run goroutine
	// has reached its await point yet.
	i.PostEvent(data.Event{Name: "x"})

	select {
	case r := <-done:
		if r.err != nil {
			t.Fatalf("Run: %v", r.err)
		}
		if len(r.cfg) != 1 || r.cfg[0] != "send:channel" {
			t.Fatalf("expected final config [send:channel], got %v", r.cfg)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not terminate")
	}

	hist := i.History()
	if len(hist) != 2 {
		t.Fatalf("expected 2 history entries (startup, microstep), got %d: %+v", len(hist), hist)
	}
	if len(hist[0].Configuration) != 1 || hist[0].Configuration[0] != "main" {
		t.Fatalf("expected startup history to show [main], got %v", hist[0].Configuration)
	}
	if len(hist[1].Configuration) != 1 || hist[1].Configuration[0] != "send:channel" {
		t.Fatalf("expected microstep history to show [send:channel], got %v", hist[1].Configuration)
	}
}

// TestRunCancellationUnwindsActiveStates exercises §5's cancellation
// contract: ctx cancellation at a suspension point returns the active
// configuration reached so far alongside the context error.
func TestRunCancellationUnwindsActiveStates(t *testing.T) {
	idle := &model.State{ID: "idle", Kind: model.Atomic}
	root := &model.State{ID: "", Kind: model.Compound, Children: []*model.State{idle}}
	idle.Parent = root
	chart := buildChart(t, root)

	ctx, cancel := context.WithCancel(context.Background())
	i := New(chart)
	done := make(chan struct {
		cfg []string
		err error
	}, 1)
	go func() {
		cfg, err := i.Run(ctx, RunOptions{})
		done <- struct {
			cfg []string
			err error
		}{cfg, err}
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case r := <-done:
		if r.err == nil {
			t.Fatal("expected a cancellation error")
		}
		if len(r.cfg) != 1 || r.cfg[0] != "idle" {
			t.Fatalf("expected the reached configuration [idle], got %v", r.cfg)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}
