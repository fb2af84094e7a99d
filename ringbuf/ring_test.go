package ringbuf

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestRing(t *testing.T, size uint64) *RingBuffer {
	t.Helper()
	name := "test-" + t.Name()
	_ = Remove(name)
	rb, err := Create(Config{Name: name, BufferSize: size}, CreateOnly, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rb.Close() })
	return rb
}

func TestRingFIFO(t *testing.T) {
	rb := newTestRing(t, 64)

	n, err := rb.Write([]byte("hello"))
	require.NoError(t, err)
	require.Equal(t, 5, n)

	buf := make([]byte, 5)
	n, err = rb.Read(buf)
	require.NoError(t, err)
	require.Equal(t, 5, n)
	require.Equal(t, "hello", string(buf))
	require.True(t, rb.IsEmpty())
}

func TestRingWrapAround(t *testing.T) {
	rb := newTestRing(t, 16)

	// Fill most of the ring, drain it, then write again so the second
	// write straddles the physical end of the buffer (spec §8 S5).
	first := []byte("0123456789AB") // 12 bytes of 16
	_, err := rb.Write(first)
	require.NoError(t, err)

	buf := make([]byte, 12)
	_, err = rb.Read(buf)
	require.NoError(t, err)
	require.Equal(t, string(first), string(buf))

	second := []byte("wraps-around!!!!") // 16 bytes, forces wrap on write
	_, err = rb.Write(second)
	require.NoError(t, err)

	got := make([]byte, len(second))
	_, err = rb.Read(got)
	require.NoError(t, err)
	require.Equal(t, string(second), string(got))
}

func TestRingFreeAndUsed(t *testing.T) {
	rb := newTestRing(t, 32)
	require.Equal(t, uint64(32), rb.Free())
	require.Equal(t, uint64(0), rb.Used())

	_, err := rb.Write([]byte("abcd"))
	require.NoError(t, err)
	require.Equal(t, uint64(4), rb.Used())
	require.Equal(t, uint64(28), rb.Free())
}

func TestRingWriteWouldBlockWhenFull(t *testing.T) {
	rb := newTestRing(t, 8)
	_, err := rb.Write([]byte("12345678"))
	require.NoError(t, err)

	writeBefore := rb.hdr.WritePos.Load()
	readBefore := rb.hdr.ReadPos.Load()

	_, err = rb.Write([]byte("x"))
	require.ErrorIs(t, err, ErrWouldBlock)

	// Property 7: a failed write leaves both cursors unchanged.
	require.Equal(t, writeBefore, rb.hdr.WritePos.Load())
	require.Equal(t, readBefore, rb.hdr.ReadPos.Load())
}

func TestRingReadWouldBlockWhenEmpty(t *testing.T) {
	rb := newTestRing(t, 16)

	buf := make([]byte, 4)
	_, err := rb.Read(buf)
	require.ErrorIs(t, err, ErrWouldBlock)
	require.True(t, rb.IsEmpty())
}

func TestRingWriteLargerThanCapacityFails(t *testing.T) {
	rb := newTestRing(t, 8)
	_, err := rb.Write(make([]byte, 9))
	require.ErrorIs(t, err, ErrTooLarge)
}

func TestRingPeekDoesNotAdvance(t *testing.T) {
	rb := newTestRing(t, 32)
	_, err := rb.Write([]byte("peekme"))
	require.NoError(t, err)

	buf := make([]byte, 6)
	n, err := rb.Peek(buf)
	require.NoError(t, err)
	require.Equal(t, 6, n)
	require.Equal(t, uint64(6), rb.Used())

	require.NoError(t, rb.Skip(6))
	require.True(t, rb.IsEmpty())
}

func TestRingCloseUnlinksWhenCreator(t *testing.T) {
	name := "test-close-unlink"
	_ = Remove(name)
	rb, err := Create(Config{Name: name, BufferSize: 16}, CreateOnly, nil)
	require.NoError(t, err)
	require.NoError(t, rb.Close())

	_, err = Open(name, false, nil)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestOpenRejectsUninitializedRegion(t *testing.T) {
	rb := newTestRing(t, 16)
	rb.hdr.Initialized = 0

	_, err := Open(rb.Name(), false, nil)
	require.ErrorIs(t, err, ErrNotInitialized)
}

func TestCreateRejectsNonPowerOfTwo(t *testing.T) {
	_, err := Create(Config{Name: "test-bad-size", BufferSize: 17}, CreateOnly, nil)
	require.ErrorIs(t, err, ErrNotPowerOfTwo)
}
