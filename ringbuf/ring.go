package ringbuf

import (
	"time"

	"go.uber.org/zap"
)

// CreateMode controls how Create resolves an existing region of the same
// name (spec supplement, grounded on the original's RingBufferFactory).
type CreateMode int

const (
	// CreateOrOpen attaches to an existing region if present, otherwise
	// creates one. This is what most long-running services want.
	CreateOrOpen CreateMode = iota
	// CreateOnly fails with ErrAlreadyExists if the region already exists.
	CreateOnly
	// OpenOnly fails with ErrNotFound if the region does not already exist.
	OpenOnly
)

// Config describes a ring buffer region to create or open.
type Config struct {
	Name string
	// BufferSize is the data area's capacity in bytes. Must be a power of
	// two; spec.md's default is 1 MiB (bitrpcconfig default).
	BufferSize uint64
	// EnableEvents toggles WaitForData/WaitForSpace blocking; when false
	// those calls still work but amount to pure polling.
	EnableEvents bool
}

// RingBuffer is one end (producer or consumer; the type is symmetric) of an
// SPSC shared-memory ring.
type RingBuffer struct {
	name string
	mem  []byte
	hdr  *RingBufferHeader
	data []byte

	cfg     Config
	creator bool
	log     *zap.Logger
}

// Create opens or creates the named ring buffer region per mode.
func Create(cfg Config, mode CreateMode, log *zap.Logger) (*RingBuffer, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if mode != OpenOnly && (cfg.BufferSize == 0 || cfg.BufferSize&(cfg.BufferSize-1) != 0) {
		return nil, ErrNotPowerOfTwo
	}

	mem, created, err := mapRegion(cfg.Name, HeaderSize+int(cfg.BufferSize), mode)
	if err != nil {
		return nil, err
	}

	hdr := headerAt(mem)
	if created {
		hdr.init(cfg.BufferSize)
		log.Info("ringbuf: created region", zap.String("name", cfg.Name), zap.Uint64("capacity", cfg.BufferSize))
	} else {
		if err := hdr.validate(cfg.BufferSize); err != nil {
			_ = unmapRegion(mem)
			return nil, err
		}
	}

	rb := &RingBuffer{
		name:    cfg.Name,
		mem:     mem,
		hdr:     hdr,
		data:    mem[HeaderSize:],
		cfg:     cfg,
		creator: created,
		log:     log,
	}
	return rb, nil
}

// Open attaches to an existing region, failing with ErrNotFound if it does
// not exist. enableEvents sets this handle's own Config.EnableEvents: the
// flag is a local, per-process behavior toggle rather than state recorded
// in the shared region, so each side of a ring chooses it independently.
func Open(name string, enableEvents bool, log *zap.Logger) (*RingBuffer, error) {
	return Create(Config{Name: name, EnableEvents: enableEvents}, OpenOnly, log)
}

// Remove unlinks the named shared-memory region regardless of whether any
// RingBuffer currently has it open (spec §6 supplement: an explicit admin
// path independent of Close).
func Remove(name string) error {
	return removeRegion(name)
}

// Name returns the region's name.
func (rb *RingBuffer) Name() string { return rb.name }

// Capacity returns the data area's total size in bytes.
func (rb *RingBuffer) Capacity() uint64 { return rb.hdr.Capacity }

// Used returns the number of bytes currently buffered and unread.
func (rb *RingBuffer) Used() uint64 {
	return rb.hdr.WritePos.Load() - rb.hdr.ReadPos.Load()
}

// Free returns the number of bytes available to write without blocking.
func (rb *RingBuffer) Free() uint64 {
	return rb.hdr.Capacity - rb.Used()
}

// IsEmpty reports whether there is no unread data.
func (rb *RingBuffer) IsEmpty() bool { return rb.Used() == 0 }

// IsFull reports whether the ring has no free space.
func (rb *RingBuffer) IsFull() bool { return rb.Free() == 0 }

// Close unmaps the region. If this RingBuffer created the region, it also
// unlinks the backing shared-memory object (spec §5 Ownership: "the creator
// side unlinks on Close").
func (rb *RingBuffer) Close() error {
	rb.hdr.Closed.Store(1)
	err := unmapRegion(rb.mem)
	if rb.creator {
		if rmErr := removeRegion(rb.name); rmErr != nil && err == nil {
			err = rmErr
		}
	}
	return err
}

func (rb *RingBuffer) closed() bool { return rb.hdr.Closed.Load() != 0 }

// Write copies all of data into the ring if there is currently enough free
// space, or returns ErrWouldBlock immediately, leaving both cursors
// unchanged, if there is not (spec §5 Testable Property 7: "when free <
// size, write returns false and both cursors are unchanged"). Write never
// blocks itself; a caller that wants to wait composes WaitForSpace and
// retries. It never partially writes: either all of data is written or
// none of it is.
func (rb *RingBuffer) Write(data []byte) (int, error) {
	if len(data) == 0 {
		return 0, nil
	}
	if uint64(len(data)) > rb.hdr.Capacity {
		return 0, ErrTooLarge
	}
	if rb.closed() {
		return 0, ErrClosed
	}
	if rb.Free() < uint64(len(data)) {
		return 0, ErrWouldBlock
	}
	rb.writeAt(rb.hdr.WritePos.Load(), data)
	rb.hdr.WritePos.Add(uint64(len(data)))
	rb.hdr.DataSeq.Add(1)
	return len(data), nil
}

// WriteAtomic is an alias for Write: every write through this package is
// already all-or-nothing with no tearing, matching the original's
// write_atomic operation, which exists there only to distinguish itself
// from a partial-write variant this package never offers.
func (rb *RingBuffer) WriteAtomic(data []byte) error {
	_, err := rb.Write(data)
	return err
}

func (rb *RingBuffer) writeAt(writePos uint64, data []byte) {
	capacity := rb.hdr.Capacity
	start := writePos % capacity
	n := uint64(len(data))
	if start+n <= capacity {
		copy(rb.data[start:start+n], data)
		return
	}
	first := capacity - start
	copy(rb.data[start:capacity], data[:first])
	copy(rb.data[0:n-first], data[first:])
}

// Read copies up to len(buf) unread bytes into buf and advances the read
// cursor by that amount, or returns ErrWouldBlock immediately, leaving the
// read cursor unchanged, if no data is currently available. Read never
// blocks itself; a caller that wants to wait composes WaitForData and
// retries.
func (rb *RingBuffer) Read(buf []byte) (int, error) {
	n, err := rb.Peek(buf)
	if err != nil {
		return 0, err
	}
	if err := rb.Skip(uint64(n)); err != nil {
		return 0, err
	}
	return n, nil
}

// Peek copies up to len(buf) unread bytes into buf without advancing the
// read cursor (spec §6 supplement), returning ErrWouldBlock immediately if
// no data is currently available (spec §5 Testable Property 7's read-side
// counterpart).
func (rb *RingBuffer) Peek(buf []byte) (int, error) {
	used := rb.Used()
	if used == 0 {
		if rb.closed() {
			return 0, ErrClosed
		}
		return 0, ErrWouldBlock
	}
	n := uint64(len(buf))
	if n > used {
		n = used
	}
	readPos := rb.hdr.ReadPos.Load()
	rb.readAt(readPos, buf[:n])
	return int(n), nil
}

// Skip advances the read cursor by n bytes without copying any data (spec §6
// supplement), used to drop a message already consumed via Peek.
func (rb *RingBuffer) Skip(n uint64) error {
	if n > rb.Used() {
		return ErrWouldBlock
	}
	rb.hdr.ReadPos.Add(n)
	rb.hdr.SpaceSeq.Add(1)
	return nil
}

func (rb *RingBuffer) readAt(readPos uint64, buf []byte) {
	capacity := rb.hdr.Capacity
	start := readPos % capacity
	n := uint64(len(buf))
	if start+n <= capacity {
		copy(buf, rb.data[start:start+n])
		return
	}
	first := capacity - start
	copy(buf[:first], rb.data[start:capacity])
	copy(buf[first:], rb.data[0:n-first])
}

// waitForData and waitForSpace are hint-only: they wait briefly for the
// corresponding sequence counter to move, then return unconditionally so
// the caller re-checks real state. Spurious wakeups (returning with no
// actual change) are expected and harmless (spec §4.6). When
// Config.EnableEvents is false they return immediately without sleeping at
// all, so WaitForData/WaitForSpace degenerate into a single immediate
// recheck and the caller's own retry loop does all the polling.

// negativeTimeoutSleep is how long each iteration of an infinite wait
// sleeps between rechecks, used when the caller asks to wait forever.
const negativeTimeoutSleep = time.Millisecond

func (rb *RingBuffer) waitForData(timeout time.Duration) {
	if !rb.cfg.EnableEvents {
		return
	}
	seq := rb.hdr.DataSeq.Load()
	if timeout < 0 {
		for rb.hdr.DataSeq.Load() == seq {
			time.Sleep(negativeTimeoutSleep)
		}
		return
	}
	deadline := time.Now().Add(timeout)
	for rb.hdr.DataSeq.Load() == seq && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
}

func (rb *RingBuffer) waitForSpace(timeout time.Duration) {
	if !rb.cfg.EnableEvents {
		return
	}
	seq := rb.hdr.SpaceSeq.Load()
	if timeout < 0 {
		for rb.hdr.SpaceSeq.Load() == seq {
			time.Sleep(negativeTimeoutSleep)
		}
		return
	}
	deadline := time.Now().Add(timeout)
	for rb.hdr.SpaceSeq.Load() == seq && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
}

// WaitForData blocks up to timeout for data to become available, returning
// ErrWouldBlock if none arrived. A negative timeout means wait forever
// (spec §5: "-1 = wait forever"). Write/Read never block themselves (spec
// §4.6/§5); a caller that wants blocking-with-timeout semantics calls
// WaitForData and retries Read/Peek itself.
func (rb *RingBuffer) WaitForData(timeout time.Duration) error {
	if !rb.IsEmpty() {
		return nil
	}
	rb.waitForData(timeout)
	if rb.IsEmpty() {
		return ErrWouldBlock
	}
	return nil
}

// WaitForSpace blocks up to timeout for at least need bytes of free space
// to become available, returning ErrWouldBlock if that much never
// appeared. A negative timeout means wait forever (spec §5: "-1 = wait
// forever"). Write/Read never block themselves (spec §4.6/§5); a caller
// that wants blocking-with-timeout semantics calls WaitForSpace and
// retries Write itself.
func (rb *RingBuffer) WaitForSpace(timeout time.Duration, need uint64) error {
	if rb.Free() >= need {
		return nil
	}
	rb.waitForSpace(timeout)
	if rb.Free() < need {
		return ErrWouldBlock
	}
	return nil
}

// NotifyDataReady bumps the data-ready hint counter, waking any waiter
// blocked in waitForData. Write already does so internally; this is for
// callers driving the ring's data area manually outside of Write.
func (rb *RingBuffer) NotifyDataReady() {
	rb.hdr.DataSeq.Add(1)
}
