// Package scxml is the public surface of the interpreter (§6.2):
// parse a chart document, run it to termination, post events into a
// running instance, and inspect its microstep history. Everything
// underneath internal/ is an implementation detail reachable only
// through this package's types.
package scxml

import (
	"fmt"
	"io"
	"sync"

	"github.com/scxml-go/scxml/internal/data"
	"github.com/scxml-go/scxml/internal/interp"
	"github.com/scxml-go/scxml/internal/model"
	"github.com/scxml-go/scxml/internal/parser"
)

// Option configures one Run call's pluggable capabilities — the
// expression evaluator, I/O processor, sendid generator, logger,
// event sink, persister, and external-queue bound (§6.2 "options",
// §10.3). It is interp.Option under the hood; callers never construct
// one by hand, only via the With* functions below.
type Option = interp.Option

// EventSink observes every event the loop dequeues (§6.2 "event_sink
// for observing transitions").
type EventSink = interp.EventSink

// HistoryEntry is one logged microstep (§6.2 "chart.history()").
type HistoryEntry = interp.HistoryEntry

// The With* functions are re-exported from internal/interp so callers
// configure a Run entirely through this package.
var (
	WithExprEvaluator = interp.WithExprEvaluator
	WithIOProcessor   = interp.WithIOProcessor
	WithIDGenerator   = interp.WithIDGenerator
	WithLogger        = interp.WithLogger
	WithEventSink     = interp.WithEventSink
	WithQueueSize     = interp.WithQueueSize
	WithPersister     = interp.WithPersister
	WithInitialData   = interp.WithInitialData
)

// Chart is a parsed, runnable statechart document (§6.2
// "StateChart.from_source"). The parsed tree is immutable and shared
// read-only across runs (§5); each Run starts a fresh interpreter
// instance over it.
type Chart struct {
	tree *model.Chart

	mu      sync.Mutex
	run     *interp.Interpreter
	running bool
}

// Parse reads an SCXML document and builds a Chart ready to Run. This
// is a construction-time operation (§7): a malformed document or an
// invalid chart (dangling initial, parallel with no regions, ...)
// returns an error and no Chart.
func Parse(r io.Reader) (*Chart, error) {
	tree, err := parser.Parse(r)
	if err != nil {
		return nil, err
	}
	return &Chart{tree: tree}, nil
}

// FromModel wraps an already-built model.Chart, the path used by tests
// and callers that construct a chart tree directly rather than through
// the XML parser.
func FromModel(tree *model.Chart) *Chart {
	return &Chart{tree: tree}
}

// Event is the public event shape accepted by PostEvent (§3.3).
// Name is matched against
// transition event descriptors by dotted-token prefix (§4.4.1).
type Event struct {
	Name string
	Data any
}

func (e Event) toInternal() data.Event {
	return data.Event{Name: e.Name, Data: e.Data, Origin: data.OriginExternal}
}

// PostEvent enqueues an external event into the active run (§6.2
// "chart.post_event"). It returns an error and enqueues nothing if no
// Run has been started on this Chart — callers racing PostEvent
// against Run's startup should retry or synchronize externally.
func (c *Chart) PostEvent(ev Event) error {
	c.mu.Lock()
	r := c.run
	c.mu.Unlock()
	if r == nil {
		return fmt.Errorf("scxml: chart is not running")
	}
	r.PostEvent(ev.toInternal())
	return nil
}

// History returns the ordered microstep log of the most recent or
// in-flight Run (§6.2 "chart.history()"). Empty if Run has never been
// called.
func (c *Chart) History() []HistoryEntry {
	c.mu.Lock()
	r := c.run
	c.mu.Unlock()
	if r == nil {
		return nil
	}
	return r.History()
}

// IsRunning reports whether a Run is currently in flight.
func (c *Chart) IsRunning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}
