package extensibility

import (
	"time"

	"github.com/scxml-go/scxml/internal/data"
)

// ChannelEventSource exposes a channel of externally-produced events
// for the caller to forward into an Interpreter's PostEvent; it does
// no forwarding itself. It is the teacher's "events over a Go channel"
// idiom adapted to data.Event's field shape rather than
// primitives.Event.
type ChannelEventSource struct {
	ch chan data.Event
}

// NewChannelEventSource wraps ch; the caller owns writes to it and
// should close it when no more events will be posted.
func NewChannelEventSource(ch chan data.Event) *ChannelEventSource {
	return &ChannelEventSource{ch: ch}
}

// Events returns the receive-only channel for an interpreter loop to
// drain, e.g. a goroutine calling interp.PostEvent for each value.
func (s *ChannelEventSource) Events() <-chan data.Event {
	return s.ch
}

// TimerEventSource emits a named event on a fixed period, for
// heartbeat/timeout-driven charts (§4.3's <send> covers one-shot
// timers; this covers externally-driven periodic ones).
type TimerEventSource struct {
	ch     chan data.Event
	name   string
	ticker *time.Ticker
	stop   chan struct{}
}

// NewTimerEventSource starts emitting eventName every period
// immediately; call Stop to release the ticker.
func NewTimerEventSource(eventName string, period time.Duration) *TimerEventSource {
	ch := make(chan data.Event, 10)
	t := &TimerEventSource{
		ch:     ch,
		name:   eventName,
		ticker: time.NewTicker(period),
		stop:   make(chan struct{}),
	}
	go t.run()
	return t
}

func (t *TimerEventSource) run() {
	for {
		select {
		case <-t.ticker.C:
			select {
			case t.ch <- data.Event{Name: t.name, Origin: data.OriginExternal}:
			default:
				// drop if the interpreter loop is backed up
			}
		case <-t.stop:
			t.ticker.Stop()
			close(t.ch)
			return
		}
	}
}

// Events returns the event channel.
func (t *TimerEventSource) Events() <-chan data.Event {
	return t.ch
}

// Stop halts the ticker and closes the channel.
func (t *TimerEventSource) Stop() {
	close(t.stop)
}
