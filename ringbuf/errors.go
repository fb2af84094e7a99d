// Package ringbuf implements the cross-process single-producer/single-consumer
// shared-memory ring buffer of spec §4.6: a fixed-size region with
// never-wrapping virtual write/read cursors, wrap-aware copies, and
// hint-only cross-process wake signaling.
package ringbuf

import "errors"

var (
	// ErrClosed is returned by Write/Read once the ring has been closed.
	ErrClosed = errors.New("ringbuf: closed")

	// ErrTooLarge is returned when a write is larger than the ring's total
	// capacity and could never fit even on an empty ring.
	ErrTooLarge = errors.New("ringbuf: data larger than ring capacity")

	// ErrWouldBlock is returned by the non-blocking Write/Read when the
	// operation cannot complete immediately.
	ErrWouldBlock = errors.New("ringbuf: would block")

	// ErrBadMagic is returned by Open when the shared-memory region does not
	// carry the expected magic number.
	ErrBadMagic = errors.New("ringbuf: bad magic number")

	// ErrBadVersion is returned by Open when the region's version does not
	// match this package's supported version.
	ErrBadVersion = errors.New("ringbuf: unsupported version")

	// ErrNotPowerOfTwo is returned when a requested buffer size is not a
	// power of two; capacity masking requires it.
	ErrNotPowerOfTwo = errors.New("ringbuf: buffer_size must be a power of two")

	// ErrAlreadyExists is returned by Create with mode CreateOnly when the
	// named region already exists.
	ErrAlreadyExists = errors.New("ringbuf: already exists")

	// ErrNotFound is returned by Open (and CreateMode OpenOnly) when the
	// named region does not exist.
	ErrNotFound = errors.New("ringbuf: not found")

	// ErrNotInitialized is returned by Open when the region exists (its
	// Magic/Version already match) but its creator has not yet finished
	// initializing it: a consumer attached mid-Create must not use the
	// buffer until it observes initialized == 1 (spec §4.6).
	ErrNotInitialized = errors.New("ringbuf: region not yet initialized")
)
