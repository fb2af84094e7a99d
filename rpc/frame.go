package rpc

import (
	"encoding/binary"
	"io"
)

// MaxFrameSize is the largest payload a frame may declare (spec §4.3). A
// declared length beyond this is treated as a protocol violation, not as an
// allocation to attempt.
const MaxFrameSize = 10 * 1024 * 1024

// StreamTerminator is the zero-length frame that ends a server-streaming
// response.
const StreamTerminator uint32 = 0

// WriteFrame writes a single u32 length-prefixed frame to w.
func WriteFrame(w io.Writer, payload []byte) error {
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(payload)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return err
	}
	if len(payload) == 0 {
		return nil
	}
	_, err := w.Write(payload)
	return err
}

// WriteStreamTerminator writes the zero-length frame that ends a
// server-streaming response.
func WriteStreamTerminator(w io.Writer) error {
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], StreamTerminator)
	_, err := w.Write(lenBuf[:])
	return err
}

// ReadFrame reads one u32 length-prefixed frame from r. It returns
// ErrFrameTooLarge if the declared length exceeds MaxFrameSize, and
// io.ErrUnexpectedEOF (unwrapped) if the stream ends mid-frame.
func ReadFrame(r io.Reader) ([]byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, err
	}
	n := binary.LittleEndian.Uint32(lenBuf[:])
	if n == 0 {
		return nil, nil
	}
	if n > MaxFrameSize {
		return nil, ErrFrameTooLarge
	}
	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, err
	}
	return payload, nil
}
