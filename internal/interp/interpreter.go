// Package interp drives one chart run: startup, microstep, macrostep,
// and the external event loop of §4.5, built on internal/pathalgo for
// set computation, internal/selector for transition selection, and
// internal/exec for executable content.
package interp

import (
	"log/slog"
	"sync"

	"github.com/scxml-go/scxml/internal/data"
	"github.com/scxml-go/scxml/internal/exec"
	"github.com/scxml-go/scxml/internal/extensibility"
	"github.com/scxml-go/scxml/internal/model"
	"github.com/scxml-go/scxml/internal/production"
	"github.com/scxml-go/scxml/internal/selector"
)

// HistoryEntry is one logged microstep, per §6.2's
// "chart.history() -> sequence of HistoryEntry".
type HistoryEntry struct {
	ID            int
	Kind          string // "startup", "microstep", "eventless"
	Configuration []string
	Event         string
}

// EventSink observes every event dequeued by the loop, regardless of
// whether a transition fired (§6.2 "event_sink for observing
// transitions").
type EventSink interface {
	Observe(ev data.Event, firedTransitions int)
}

// Option configures an Interpreter via the functional-options pattern.
type Option func(*Interpreter)

// WithExprEvaluator overrides the default expr-lang evaluator.
func WithExprEvaluator(e exec.ExprEvaluator) Option {
	return func(i *Interpreter) { i.expr = e }
}

// WithIOProcessor overrides the default <send>/<cancel> delivery
// target, the pluggable capability named in §9's "I/O processor" role.
func WithIOProcessor(s exec.Sender) Option {
	return func(i *Interpreter) { i.sender = s }
}

// WithIDGenerator overrides the default UUID-backed sendid minter.
func WithIDGenerator(g exec.IDGenerator) Option {
	return func(i *Interpreter) { i.idGen = g }
}

// WithLogger overrides the default slog.Logger.
func WithLogger(l *slog.Logger) Option {
	return func(i *Interpreter) { i.logger = l }
}

// WithInitialData seeds the run's extended state before the chart's
// own <datamodel> declarations are evaluated (§6.2 "chart.run(input_
// data, options)"). A declared <data> element with the same location
// overwrites whatever this provides.
func WithInitialData(initial map[string]any) Option {
	return func(i *Interpreter) { i.initialData = initial }
}

// WithEventSink registers an observer called for every dequeued event.
func WithEventSink(sink EventSink) Option {
	return func(i *Interpreter) { i.sink = sink }
}

// WithQueueSize bounds the external event queue's capacity; pushes
// past capacity are dropped rather than blocking the producer (§5).
// The internal queue, owned wholly by the loop, is never bounded.
func WithQueueSize(n int) Option {
	return func(i *Interpreter) { i.rt.External = data.NewBoundedEventQueue(n) }
}

// WithPersister registers a snapshot sink that receives the runtime
// state under chartID after every macrostep reaches quiescence.
// Snapshot failures are logged, not fatal to the run (SPEC_FULL §12's
// debugging/visualization tooling, not a resumability guarantee).
func WithPersister(chartID string, p production.Persister) Option {
	return func(i *Interpreter) {
		i.chartID = chartID
		i.persister = p
	}
}

// Interpreter runs one chart to termination or cancellation. Not safe
// for concurrent use except via PostEvent, which is the single
// thread-safe ingress point (§5 "external input is delivered via a
// thread-safe event ingress").
type Interpreter struct {
	chart  *model.Chart
	rt     *data.RuntimeState
	eval   *exec.Evaluator
	expr   exec.ExprEvaluator
	sender exec.Sender
	idGen  exec.IDGenerator
	logger *slog.Logger
	sink   EventSink

	chartID     string
	persister   production.Persister
	initialData map[string]any

	mu      sync.Mutex
	history []HistoryEntry
	nextID  int
}

// New builds an Interpreter for chart, ready to Run.
func New(chart *model.Chart, opts ...Option) *Interpreter {
	i := &Interpreter{
		chart: chart,
		rt:    data.NewRuntimeState(),
	}
	for _, opt := range opts {
		opt(i)
	}
	if i.logger == nil {
		i.logger = slog.Default()
	}
	if i.expr == nil {
		i.expr = exec.NewExprLangEvaluator()
	}
	if i.chart.Datamodel == model.NullDatamodel {
		i.expr = &exec.NullEvaluator{}
	}
	if i.sender == nil {
		i.sender = extensibility.NewIOProcessor(i.rt)
	}
	if i.idGen == nil {
		i.idGen = extensibility.UUIDGenerator{}
	}
	if i.initialData != nil {
		i.rt.Store.Restore(i.initialData)
	}
	i.eval = exec.New(i.expr, i.sender, i.idGen, i.logger)
	return i
}

// Runtime exposes the underlying runtime state for inspection (the
// production persister and visualizer read it read-only between
// suspension points).
func (i *Interpreter) Runtime() *data.RuntimeState {
	return i.rt
}

// History returns the ordered microstep log (§6.2).
func (i *Interpreter) History() []HistoryEntry {
	i.mu.Lock()
	defer i.mu.Unlock()
	out := make([]HistoryEntry, len(i.history))
	copy(out, i.history)
	return out
}

func (i *Interpreter) recordHistory(kind, eventName string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.nextID++
	i.history = append(i.history, HistoryEntry{
		ID:            i.nextID,
		Kind:          kind,
		Configuration: i.rt.ConfigSnapshot(),
		Event:         eventName,
	})
}

// PostEvent enqueues an external event — the one thread-safe entry
// point besides Run's own goroutine (§5, §6.2 "chart.post_event").
func (i *Interpreter) PostEvent(ev data.Event) {
	ev.Origin = data.OriginExternal
	i.rt.External.Push(ev)
}

func (i *Interpreter) guard() selector.Guard {
	return guardAdapter{i.expr}
}

type guardAdapter struct {
	expr exec.ExprEvaluator
}

func (g guardAdapter) Eval(expr string, env map[string]any) (any, error) {
	return g.expr.Eval(expr, env)
}
