package interp

import (
	"github.com/scxml-go/scxml/internal/data"
	"github.com/scxml-go/scxml/internal/selector"
)

// runMacrostep drains the internal queue, then fires eventless
// transitions until quiescent, per §4.5.3.
func (i *Interpreter) runMacrostep() error {
	for {
		for {
			ev, ok := i.rt.Internal.Pop()
			if !ok {
				break
			}
			if err := i.dispatch(ev, true); err != nil {
				return err
			}
		}

		fired, err := i.fireEventless()
		if err != nil {
			return err
		}
		if !fired {
			return nil
		}
		// An eventless microstep may have raised new internal events;
		// restart step 1 per §4.5.3.
	}
}

// dispatch sets _event, selects transitions for ev, and runs a
// microstep; an event with no enabled transitions is discarded
// (§4.5.3 step 1).
func (i *Interpreter) dispatch(ev data.Event, hasEvent bool) error {
	i.rt.CurrentEvent = ev
	candidates, err := selector.Select(i.chart, i.rt, i.rt.ConfigSnapshot(), ev, i.guard(), i.rt.Store.Env(eventEnv(ev)), hasEvent)
	if err != nil {
		return err
	}
	if i.sink != nil {
		i.sink.Observe(ev, len(candidates))
	}
	if err := i.runMicrostep(candidates); err != nil {
		return err
	}
	if len(candidates) > 0 {
		i.recordHistory("microstep", ev.Name)
	}
	return nil
}

func (i *Interpreter) fireEventless() (bool, error) {
	candidates, err := selector.Select(i.chart, i.rt, i.rt.ConfigSnapshot(), data.Event{}, i.guard(), i.rt.Store.Env(nil), false)
	if err != nil {
		return false, err
	}
	if len(candidates) == 0 {
		return false, nil
	}
	if err := i.runMicrostep(candidates); err != nil {
		return false, err
	}
	i.recordHistory("eventless", "")
	return true, nil
}

func eventEnv(ev data.Event) map[string]any {
	if ev.Name == "" {
		return nil
	}
	return map[string]any{"_event": map[string]any{"name": ev.Name, "data": ev.Data, "type": ev.Origin.String()}}
}
