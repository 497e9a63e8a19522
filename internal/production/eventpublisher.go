package production

import (
	"context"

	"github.com/scxml-go/scxml/internal/data"
)

// PublishedEvent bundles a dequeued event with the chart id it was
// observed under and the number of transitions it fired, the same
// pairing the teacher's PublishedEvent does with MachineMetadata.
type PublishedEvent struct {
	ChartID string
	Event   data.Event
	// FiredTransitions is the count reported by interp.EventSink.Observe
	// for the step this event produced, 0 if none fired.
	FiredTransitions int
}

// EventPublisher forwards observed events to an external sink.
type EventPublisher interface {
	Publish(ctx context.Context, ev PublishedEvent) error
	Close() error
}

// ChannelPublisher is a stdlib-only EventPublisher that forwards to a
// Go channel, non-blocking: a full channel drops the event rather than
// stalling the interpreter loop, carried over from the teacher's
// ChannelPublisher verbatim in policy.
type ChannelPublisher struct {
	ch chan<- PublishedEvent
}

// NewChannelPublisher wraps ch; the caller owns reads from it.
func NewChannelPublisher(ch chan<- PublishedEvent) *ChannelPublisher {
	return &ChannelPublisher{ch: ch}
}

func (p *ChannelPublisher) Publish(ctx context.Context, ev PublishedEvent) error {
	select {
	case p.ch <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

func (p *ChannelPublisher) Close() error {
	close(p.ch)
	return nil
}

// PublisherSink adapts an EventPublisher into an interp.EventSink
// (structurally — Observe's signature matches interp.EventSink without
// this package importing interp, which itself imports production for
// its persister hook; importing interp here would form a cycle).
type PublisherSink struct {
	ChartID   string
	Publisher EventPublisher
	Ctx       context.Context
}

// Observe implements interp.EventSink by publishing every dequeued
// event, regardless of whether a transition fired.
func (s PublisherSink) Observe(ev data.Event, firedTransitions int) {
	ctx := s.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	s.Publisher.Publish(ctx, PublishedEvent{
		ChartID:          s.ChartID,
		Event:            ev,
		FiredTransitions: firedTransitions,
	})
}
