package extensibility

import (
	"sync"
	"time"

	"github.com/scxml-go/scxml/internal/data"
)

// deliverFunc is the synchronous delivery callback a scheduled send
// fires into once its delay elapses.
type deliverFunc func(target, eventType string, ev data.Event) error

// DelayedSendScheduler turns a <send delay="..."> into a one-shot
// time.AfterFunc timer, cancellable by sendid via <cancel> (§4.3,
// SPEC_FULL §12). It generalizes the pattern the teacher's own
// extensibility.TimerEventSource applies to periodic events
// (time.Ticker) to one-shot delayed delivery.
type DelayedSendScheduler struct {
	mu      sync.Mutex
	pending map[string]*time.Timer
	deliver deliverFunc
}

// NewDelayedSendScheduler builds a scheduler that calls deliver once a
// scheduled send's delay elapses.
func NewDelayedSendScheduler(deliver deliverFunc) *DelayedSendScheduler {
	return &DelayedSendScheduler{
		pending: make(map[string]*time.Timer),
		deliver: deliver,
	}
}

// Schedule arms a timer for ev, keyed by sendID if non-empty so a later
// <cancel> can find it. Anonymous sends (no sendid) cannot be
// cancelled, matching §4.3's "cancel requires sendid".
func (s *DelayedSendScheduler) Schedule(sendID string, delay time.Duration, target, eventType string, ev data.Event) {
	timer := time.AfterFunc(delay, func() {
		if sendID != "" {
			s.mu.Lock()
			delete(s.pending, sendID)
			s.mu.Unlock()
		}
		s.deliver(target, eventType, ev)
	})
	if sendID == "" {
		return
	}
	s.mu.Lock()
	if old, ok := s.pending[sendID]; ok {
		old.Stop()
	}
	s.pending[sendID] = timer
	s.mu.Unlock()
}

// Cancel stops a pending scheduled send if it hasn't already fired.
func (s *DelayedSendScheduler) Cancel(sendID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if timer, ok := s.pending[sendID]; ok {
		timer.Stop()
		delete(s.pending, sendID)
	}
}

// StopAll cancels every pending scheduled send, used when a run
// terminates so timers don't fire against a torn-down runtime state.
func (s *DelayedSendScheduler) StopAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, timer := range s.pending {
		timer.Stop()
		delete(s.pending, id)
	}
}
