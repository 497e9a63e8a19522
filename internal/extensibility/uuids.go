package extensibility

import "github.com/google/uuid"

// IDGenerator mints correlation identifiers for <send>/<invoke>
// elements that omit an explicit id (§3.3's sendid/invokeid metadata).
type IDGenerator interface {
	NewSendID() string
	NewInvokeID() string
}

// UUIDGenerator mints RFC 4122 v4 identifiers, the idiomatic choice
// across the retrieval pack's own correlation-ID call sites rather than
// a hand-rolled counter.
type UUIDGenerator struct{}

// NewSendID returns a fresh "send-<uuid>" identifier.
func (UUIDGenerator) NewSendID() string {
	return "send-" + uuid.NewString()
}

// NewInvokeID returns a fresh "invoke-<uuid>" identifier.
func (UUIDGenerator) NewInvokeID() string {
	return "invoke-" + uuid.NewString()
}
