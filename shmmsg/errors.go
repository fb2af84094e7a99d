package shmmsg

import "errors"

var (
	// ErrShortHeader is returned when a buffer is too small to contain a
	// full message header.
	ErrShortHeader = errors.New("shmmsg: buffer shorter than header")

	// ErrShortPayload is returned when a header declares a payload larger
	// than the remaining buffer.
	ErrShortPayload = errors.New("shmmsg: buffer shorter than declared payload")

	// ErrPayloadTooLarge is returned by SendMessage when payload exceeds
	// the manager's configured MaxMessageSize.
	ErrPayloadTooLarge = errors.New("shmmsg: payload exceeds max message size")

	// ErrNotStarted is returned when Send/Receive is called before
	// StartProducer/StartConsumer.
	ErrNotStarted = errors.New("shmmsg: manager not started")

	// ErrTimeout is returned by a blocking receive/heartbeat wait that
	// exceeds its deadline without a message arriving.
	ErrTimeout = errors.New("shmmsg: timed out waiting for message")

	// ErrUnknownInstance is returned by Registry.Get for a name that was
	// never registered.
	ErrUnknownInstance = errors.New("shmmsg: unknown instance")

	// ErrInstanceExists is returned by Registry.Register for a name already
	// in use.
	ErrInstanceExists = errors.New("shmmsg: instance already registered")
)
