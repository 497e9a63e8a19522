package extensibility

import (
	"testing"
	"time"

	"github.com/scxml-go/scxml/internal/data"
)

func TestChannelEventSourceForwardsWrites(t *testing.T) {
	ch := make(chan data.Event, 1)
	src := NewChannelEventSource(ch)
	ch <- data.Event{Name: "tick"}

	select {
	case ev := <-src.Events():
		if ev.Name != "tick" {
			t.Fatalf("got %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestTimerEventSourceEmitsPeriodically(t *testing.T) {
	src := NewTimerEventSource("heartbeat", 10*time.Millisecond)
	defer src.Stop()

	select {
	case ev := <-src.Events():
		if ev.Name != "heartbeat" {
			t.Fatalf("got %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for heartbeat")
	}
}

func TestUUIDGeneratorProducesDistinctIDs(t *testing.T) {
	g := UUIDGenerator{}
	a, b := g.NewSendID(), g.NewSendID()
	if a == b {
		t.Fatalf("expected distinct send ids, got %q twice", a)
	}
	if g.NewInvokeID() == "" {
		t.Fatal("expected a non-empty invoke id")
	}
}
