// Package rpc holds the wire-level protocol shared by the TCP client and
// server: frame encoding, method-name parsing, and the error taxonomy both
// sides report through.
package rpc

import "errors"

// Error taxonomy (spec §7). Each category is a distinct sentinel so callers
// can classify failures with errors.Is without parsing strings.
var (
	// ErrConnectionClosed is returned when an I/O operation is attempted on
	// a connection that has already been torn down.
	ErrConnectionClosed = errors.New("rpc: connection closed")

	// ErrFrameTooLarge is returned when a frame's declared payload length
	// exceeds MaxFrameSize.
	ErrFrameTooLarge = errors.New("rpc: frame exceeds maximum size")

	// ErrMalformedFrame covers any frame that cannot be parsed as a valid
	// length-prefixed payload, including the legacy ASCII-prefix form.
	ErrMalformedFrame = errors.New("rpc: malformed frame")

	// ErrServiceNotFound is reported by service.Registry.Dispatch (in
	// Result.Err) when the service or method cannot be resolved; it is
	// never sent over the wire itself (spec §4.2: missing service/method
	// yields a silent empty frame, not a protocol error).
	ErrServiceNotFound = errors.New("rpc: service or method not found")

	// ErrStreamInProgress is returned by the client when Call or Stream is
	// invoked while a previous Stream on the same connection has not yet
	// finished draining.
	ErrStreamInProgress = errors.New("rpc: a stream is already in progress on this connection")

	// ErrNotConnected is returned when Call or Stream is invoked before
	// Connect or after Disconnect.
	ErrNotConnected = errors.New("rpc: client is not connected")

	// ErrTimeout is returned when a blocking operation exceeds its deadline.
	ErrTimeout = errors.New("rpc: operation timed out")
)
