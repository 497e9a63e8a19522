package data

// RuntimeState is everything one chart run owns that changes as events
// are processed: the active configuration, the data store, the two
// event queues, the history store, and the currently-bound _event
// (§3.3, §5 "runtime state is owned by the loop"). It is not safe for
// concurrent mutation from outside its owning interpreter loop.
type RuntimeState struct {
	// Config holds every currently active state's dotted path,
	// ancestors included, shallowest-first (§3.3): for every active
	// compound state exactly one child is also present, and for every
	// active parallel state every region is also present.
	Config []string

	Store    *Store
	Internal *EventQueue
	External *EventQueue
	History  *HistoryStore

	// CurrentEvent is bound to _event for the duration of processing
	// one event (§3.3). Zero-value Event before the first event.
	CurrentEvent Event

	// Running is false once the interpreter has reached a top-level
	// final configuration or been stopped (§4.5.4).
	Running bool
}

// NewRuntimeState allocates a fresh, empty runtime state.
func NewRuntimeState() *RuntimeState {
	return &RuntimeState{
		Store:    NewStore(),
		Internal: NewEventQueue(),
		External: NewEventQueue(),
		History:  NewHistoryStore(),
	}
}

// InConfiguration reports whether statePath is currently active.
func (r *RuntimeState) InConfiguration(statePath string) bool {
	for _, p := range r.Config {
		if p == statePath {
			return true
		}
	}
	return false
}

// RemovePaths drops every path in exited from the configuration,
// preserving the relative order of survivors (microstep §4.5.2 step
// 2).
func (r *RuntimeState) RemovePaths(exited []string) {
	remove := make(map[string]bool, len(exited))
	for _, p := range exited {
		remove[p] = true
	}
	kept := r.Config[:0:0]
	for _, p := range r.Config {
		if !remove[p] {
			kept = append(kept, p)
		}
	}
	r.Config = kept
}

// AppendPaths appends entered paths in the order given — already
// shallowest-first per pathalgo.EntrySet — to the end of the
// configuration (microstep §4.5.2 step 4).
func (r *RuntimeState) AppendPaths(entered []string) {
	r.Config = append(r.Config, entered...)
}

// ConfigSnapshot returns a defensive copy of the active configuration.
func (r *RuntimeState) ConfigSnapshot() []string {
	cp := make([]string, len(r.Config))
	copy(cp, r.Config)
	return cp
}
