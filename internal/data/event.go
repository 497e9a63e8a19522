package data

import "errors"

// ErrCommunication marks a delivery failure against an IOProcessor
// route (unknown target/type), as opposed to a malformed <send> itself
// (SPEC_FULL §12's error.communication, alongside the §6.3-required
// error.send.* family).
var ErrCommunication = errors.New("scxml: communication failure")

// EventOrigin distinguishes events raised internally by executable
// content from events delivered across the external interface (§3.3,
// §6.3 "origin").
type EventOrigin int

const (
	// OriginInternal marks a <raise> or a completion/error event the
	// interpreter itself generated — always drained before the next
	// external event is considered (§4.5.3).
	OriginInternal EventOrigin = iota
	// OriginExternal marks an event delivered via Send/PostEvent or a
	// <send> targeting the platform's own event queue.
	OriginExternal
	// OriginPlatform marks error.* and done.* events the interpreter
	// synthesizes (§6.3); these are internal for queueing purposes but
	// kept distinguishable for logging.
	OriginPlatform
)

func (o EventOrigin) String() string {
	switch o {
	case OriginInternal:
		return "internal"
	case OriginExternal:
		return "external"
	case OriginPlatform:
		return "platform"
	default:
		return "unknown"
	}
}

// Event is the value bound to _event during executable content
// evaluation (§3.3). Name uses dot-separated tokens; transitions match
// it by prefix (§4.4.1).
type Event struct {
	Name       string
	Data       any
	Origin     EventOrigin
	OriginType string // e.g. "scxml", or an IOProcessor's type URI
	SendID     string // the id of the <send> that produced this event, if any
	InvokeID   string
}

// NewPlatformError constructs a platform error event per §6.3: the
// name is "error.<label>" (label may itself carry further dotted
// segments, e.g. "assign.invalid-location"); the origin kind is
// always platform, which is what the taxonomy's "type = platform"
// refers to (§3.3's event origin-kind field), not an extra name
// segment.
func NewPlatformError(label string, cause error) Event {
	var data any
	if cause != nil {
		data = cause.Error()
	}
	return Event{
		Name:       "error." + label,
		Data:       data,
		Origin:     OriginPlatform,
		OriginType: "platform",
	}
}

// NewDoneEvent builds the done.state.<path> completion event emitted
// when a compound state's final child is reached (§4.5.1, §6.4).
func NewDoneEvent(statePath string, donedata any) Event {
	return Event{
		Name:       "done.state." + statePath,
		Data:       donedata,
		Origin:     OriginPlatform,
		OriginType: "platform",
	}
}

// MatchesDescriptor reports whether this event's name is matched by a
// transition's event descriptor, using dotted-token prefix matching:
// "error" matches "error.execution" but not "errors"; "*" matches any
// event; an empty descriptor never matches a named event (§4.4.1).
func (e Event) MatchesDescriptor(descriptor string) bool {
	if descriptor == "*" {
		return true
	}
	if descriptor == "" {
		return false
	}
	if descriptor == e.Name {
		return true
	}
	return len(e.Name) > len(descriptor) &&
		e.Name[:len(descriptor)] == descriptor &&
		e.Name[len(descriptor)] == '.'
}
