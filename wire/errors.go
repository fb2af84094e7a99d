package wire

import "errors"

// Error taxonomy for the serialization layer (spec taxonomy: Serialization).
var (
	// ErrEndOfStream is returned when a read would run past the end of the
	// underlying byte slice.
	ErrEndOfStream = errors.New("wire: end of stream")

	// ErrUnknownType is returned by ReadObject when the hash code on the wire
	// has no registered handler.
	ErrUnknownType = errors.New("wire: unknown type hash code")

	// ErrHandlerCollision is returned by Registry.Register when a hash code
	// is already bound to a different handler.
	ErrHandlerCollision = errors.New("wire: hash code already registered to a different handler")

	// ErrNoHandler is returned by WriteObject when a value's native type has
	// no registered handler.
	ErrNoHandler = errors.New("wire: no handler registered for type")
)
