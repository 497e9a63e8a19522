package extensibility

import (
	"testing"

	"github.com/scxml-go/scxml/internal/data"
)

func TestLoggingIOProcessorDelegatesSendAndCancel(t *testing.T) {
	rt := data.NewRuntimeState()
	inner := NewIOProcessor(rt)
	p := NewLoggingIOProcessor(inner, nil)

	if err := p.Send(TargetInternal, "", data.Event{Name: "wrapped"}, 0); err != nil {
		t.Fatalf("Send: %v", err)
	}
	ev, ok := rt.Internal.Pop()
	if !ok || ev.Name != "wrapped" {
		t.Fatalf("expected delegated delivery, got %+v, %v", ev, ok)
	}

	p.Cancel("nonexistent") // must not panic
}
