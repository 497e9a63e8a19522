// Package extensibility provides the default, swappable implementations
// of the pluggable capabilities named in spec.md §9: the I/O processor
// that delivers <send>/<cancel> traffic, event ingress sources, and
// correlation-ID minting. The core (internal/exec, internal/interp)
// only depends on the narrow interfaces these types satisfy.
package extensibility

import (
	"fmt"
	"sync"
	"time"

	"github.com/scxml-go/scxml/internal/data"
)

// ErrUnroutable marks a send whose target/type names no IOProcessor
// route, which the evaluator folds into error.communication
// (SPEC_FULL §12) instead of the narrower error.send.* kinds required
// by §6.3.
var ErrUnroutable = fmt.Errorf("scxml: %w", data.ErrCommunication)

// Target scheme constants recognized by IOProcessor (§4.3's <send>
// target attribute; "#_internal" and "#_parent" are the two reserved
// forms this engine resolves itself rather than handing to a named
// external processor).
const (
	TargetInternal = "#_internal"
	TargetParent   = "#_parent"
)

// externalQueue is the narrow slice of data.RuntimeState an
// IOProcessor needs: somewhere to put an event once it's due.
type externalQueue interface {
	Push(ev data.Event)
}

// IOProcessor is the default Sender (internal/exec.Sender): it
// resolves the two reserved target schemes itself, dispatches anything
// else to a registered named processor, and schedules delayed
// deliveries via DelayedSendScheduler. A chart with one or more
// <invoke>d children would register a "#_parent" route per child id;
// this engine has no invoke support, so "#_parent" is delivered to
// this session's own external queue, the same as an omitted target.
// "#_internal" is delivered to the internal queue.
type IOProcessor struct {
	mu         sync.Mutex
	internal   externalQueue
	external   externalQueue
	processors map[string]NamedProcessor
	scheduler  *DelayedSendScheduler
}

// NamedProcessor delivers an event to one external transport, keyed by
// the <send> type attribute (e.g. "http", "websocket"). None are
// implemented by this package — §1 places outbound transport delivery
// outside the core's scope — but charts under test can register a fake
// one via RegisterProcessor.
type NamedProcessor interface {
	Deliver(target string, ev data.Event) error
}

// NewIOProcessor builds a default Sender that loops internal-targeted
// sends back onto internal, puts omitted and "#_parent" targets onto
// external, and hands any other target to the NamedProcessor
// registered for the send's type, following the teacher's ChannelEventSource pattern of routing all
// external input through one owned channel.
func NewIOProcessor(rt *data.RuntimeState) *IOProcessor {
	p := &IOProcessor{
		internal:   rt.Internal,
		external:   rt.External,
		processors: make(map[string]NamedProcessor),
	}
	p.scheduler = NewDelayedSendScheduler(p.deliverNow)
	return p
}

// RegisterProcessor wires a NamedProcessor for a <send type="..."> type
// string other than the two reserved targets.
func (p *IOProcessor) RegisterProcessor(typ string, proc NamedProcessor) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.processors[typ] = proc
}

// Send implements internal/exec.Sender. A zero delay delivers
// synchronously; a positive delay schedules through the
// DelayedSendScheduler and returns immediately, matching §4.3's "delay
// does not block the microstep that issued the send".
func (p *IOProcessor) Send(target, eventType string, ev data.Event, delay time.Duration) error {
	if delay <= 0 {
		return p.deliverNow(target, eventType, ev)
	}
	p.scheduler.Schedule(ev.SendID, delay, target, eventType, ev)
	return nil
}

// Cancel implements internal/exec.Sender, delegating to the scheduler.
func (p *IOProcessor) Cancel(sendID string) {
	p.scheduler.Cancel(sendID)
}

func (p *IOProcessor) deliverNow(target, eventType string, ev data.Event) error {
	switch target {
	case TargetInternal:
		p.internal.Push(ev)
		return nil
	case "", TargetParent:
		// An omitted target addresses this session's own external
		// queue (SCXML's default send target); "#_parent" would
		// address an invoking session's queue, which this engine has
		// no invoke support to distinguish from, so it resolves the
		// same way.
		p.external.Push(ev)
		return nil
	}

	p.mu.Lock()
	proc, ok := p.processors[eventType]
	p.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: no processor registered for type %q (target %q)", ErrUnroutable, eventType, target)
	}
	return proc.Deliver(target, ev)
}
