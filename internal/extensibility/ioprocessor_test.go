package extensibility

import (
	"errors"
	"testing"
	"time"

	"github.com/scxml-go/scxml/internal/data"
)

func TestIOProcessorDefaultTargetGoesExternal(t *testing.T) {
	rt := data.NewRuntimeState()
	p := NewIOProcessor(rt)

	if err := p.Send("", "", data.Event{Name: "ping"}, 0); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if rt.Internal.Len() != 0 {
		t.Fatalf("expected nothing on the internal queue, got %d", rt.Internal.Len())
	}
	ev, ok := rt.External.Pop()
	if !ok || ev.Name != "ping" {
		t.Fatalf("expected ping on external queue, got %+v, %v", ev, ok)
	}
}

func TestIOProcessorInternalTargetLoopsBack(t *testing.T) {
	rt := data.NewRuntimeState()
	p := NewIOProcessor(rt)

	if err := p.Send(TargetInternal, "", data.Event{Name: "loop"}, 0); err != nil {
		t.Fatalf("Send: %v", err)
	}
	ev, ok := rt.Internal.Pop()
	if !ok || ev.Name != "loop" {
		t.Fatalf("expected loop on internal queue, got %+v, %v", ev, ok)
	}
}

func TestIOProcessorUnknownTypeReturnsCommunicationError(t *testing.T) {
	rt := data.NewRuntimeState()
	p := NewIOProcessor(rt)

	err := p.Send("http://example.com", "http", data.Event{Name: "x"}, 0)
	if err == nil || !errors.Is(err, data.ErrCommunication) {
		t.Fatalf("expected a wrapped ErrCommunication, got %v", err)
	}
}

type recordingProcessor struct {
	delivered []string
}

func (r *recordingProcessor) Deliver(target string, ev data.Event) error {
	r.delivered = append(r.delivered, target+":"+ev.Name)
	return nil
}

func TestIOProcessorRegisteredTypeDelivers(t *testing.T) {
	rt := data.NewRuntimeState()
	p := NewIOProcessor(rt)
	rec := &recordingProcessor{}
	p.RegisterProcessor("http", rec)

	if err := p.Send("http://example.com/hook", "http", data.Event{Name: "notify"}, 0); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if len(rec.delivered) != 1 || rec.delivered[0] != "http://example.com/hook:notify" {
		t.Fatalf("got %v", rec.delivered)
	}
}

func TestIOProcessorDelayedSendArrivesLate(t *testing.T) {
	rt := data.NewRuntimeState()
	p := NewIOProcessor(rt)

	if err := p.Send("", "", data.Event{Name: "later"}, 20*time.Millisecond); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if _, ok := rt.External.Pop(); ok {
		t.Fatalf("delayed send delivered synchronously")
	}
	time.Sleep(60 * time.Millisecond)
	ev, ok := rt.External.Pop()
	if !ok || ev.Name != "later" {
		t.Fatalf("expected later to have arrived, got %+v, %v", ev, ok)
	}
}

func TestIOProcessorCancelStopsScheduledSend(t *testing.T) {
	rt := data.NewRuntimeState()
	p := NewIOProcessor(rt)

	if err := p.Send("", "", data.Event{Name: "cancel-me", SendID: "s1"}, 20*time.Millisecond); err != nil {
		t.Fatalf("Send: %v", err)
	}
	p.Cancel("s1")
	time.Sleep(60 * time.Millisecond)
	if _, ok := rt.External.Pop(); ok {
		t.Fatalf("cancelled send still delivered")
	}
}
