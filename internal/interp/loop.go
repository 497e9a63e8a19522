package interp

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/scxml-go/scxml/internal/data"
	"github.com/scxml-go/scxml/internal/model"
	"github.com/scxml-go/scxml/internal/pathalgo"
	"github.com/scxml-go/scxml/internal/production"
)

// RunOptions configures one Run call (§6.2 "options: cancel_handle,
// timeout, event_sink, io_processor").
type RunOptions struct {
	Timeout time.Duration
}

// Run drives the chart from startup to termination or cancellation
// (§4.5.1, §4.5.4, §4.5.5). It blocks the calling goroutine; external
// events arrive via PostEvent from another goroutine.
func (i *Interpreter) Run(ctx context.Context, opts RunOptions) ([]string, error) {
	if err := i.startup(); err != nil {
		return nil, err
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	for {
		if i.isTerminal() {
			break
		}
		if err := i.runMacrostep(); err != nil {
			i.unmountAll()
			return nil, err
		}
		i.snapshot(ctx)
		if i.isTerminal() {
			break
		}

		ev, err := i.awaitExternalEvent(ctx)
		if err != nil {
			final := i.rt.ConfigSnapshot()
			i.unmountAll()
			return final, err
		}
		if err := i.dispatch(ev, true); err != nil {
			i.unmountAll()
			return nil, err
		}
	}

	final := i.rt.ConfigSnapshot()
	i.unmountAll()
	return final, nil
}

// snapshot hands the current runtime state to the configured
// Persister, if any, after a macrostep reaches quiescence. Best
// effort: a failed snapshot is logged and does not affect the run.
func (i *Interpreter) snapshot(ctx context.Context) {
	if i.persister == nil {
		return
	}
	snap := production.BuildSnapshot(i.chartID, i.rt, time.Now())
	if err := i.persister.Save(ctx, snap); err != nil {
		i.logger.Warn("snapshot failed", slog.String("chart", i.chartID), slog.Any("error", err))
	}
}

// startup seeds the data store from the chart's root-level <data>
// declarations, then treats entry into the chart's initial descendant
// as a synthetic transition from nothing (§4.5.1).
func (i *Interpreter) startup() error {
	i.rt.Running = true
	i.seedDatamodel(i.chart.Root.Datamodel)

	entries, err := pathalgo.EntrySet(i.chart, nil, "", []string{i.chart.Initial}, model.External)
	if err != nil {
		return fmt.Errorf("startup entry set: %w", err)
	}
	for _, path := range entries {
		state, err := i.chart.FindState(path)
		if err != nil {
			continue
		}
		i.mountState(state)
	}
	i.recordHistory("startup", "")
	return nil
}

// isTerminal reports whether the active configuration is empty or
// contains only a top-level final child of the chart root (§4.5.4
// step 1).
func (i *Interpreter) isTerminal() bool {
	if !i.rt.Running {
		return true
	}
	if len(i.rt.ConfigSnapshot()) == 0 {
		return true
	}
	return false
}

// awaitExternalEvent blocks until an external event is queued or ctx
// is cancelled (§5 "suspension points... awaiting an external
// event"). The external queue is polled rather than channel-backed so
// PostEvent never has to reach into interpreter internals.
func (i *Interpreter) awaitExternalEvent(ctx context.Context) (data.Event, error) {
	ticker := time.NewTicker(time.Millisecond)
	defer ticker.Stop()
	for {
		if ev, ok := i.rt.External.Pop(); ok {
			return ev, nil
		}
		select {
		case <-ctx.Done():
			return data.Event{}, ctx.Err()
		case <-ticker.C:
		}
	}
}

// unmountAll runs onexit for every active state, deepest-first,
// before the loop returns (§4.5.5 "active states are unmounted in
// deepest-first order before the loop returns").
func (i *Interpreter) unmountAll() {
	active := i.rt.ConfigSnapshot()
	set := make(map[string]bool, len(active))
	for _, p := range active {
		set[p] = true
	}
	exitSet := sortDeepestFirst(set)
	for _, path := range exitSet {
		state, err := i.chart.FindState(path)
		if err != nil {
			continue
		}
		i.eval.Run(state.OnExit, i.rt)
	}
	i.rt.RemovePaths(exitSet)
}
