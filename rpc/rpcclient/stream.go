package rpcclient

import (
	"net"

	"bitrpc/rpc"
)

// StreamReader yields successive response frame bodies for a
// server-streaming call (spec §4.4). End-of-stream is the zero-length
// terminator frame; any I/O error latches an error state and HasMore
// reports false from then on (spec §4.3).
type StreamReader struct {
	conn   net.Conn
	client *Client

	done bool
	err  error
}

// Next blocks for the next frame. ok is false once the stream has ended,
// either cleanly or due to err being non-nil.
func (sr *StreamReader) Next() (frame []byte, ok bool, err error) {
	if sr.done {
		return nil, false, sr.err
	}

	payload, readErr := rpc.ReadFrame(sr.conn)
	if readErr != nil {
		sr.err = readErr
		sr.finish()
		return nil, false, readErr
	}
	if payload == nil {
		sr.finish()
		return nil, false, nil
	}
	return payload, true, nil
}

// HasMore reports whether a subsequent Next call could still yield a frame.
func (sr *StreamReader) HasMore() bool {
	return !sr.done
}

// Err returns the error that ended the stream, if any.
func (sr *StreamReader) Err() error {
	return sr.err
}

// Close abandons the stream early, releasing the connection for the next
// Call or Stream. It does not close the underlying socket.
func (sr *StreamReader) Close() error {
	sr.finish()
	return nil
}

func (sr *StreamReader) finish() {
	if sr.done {
		return
	}
	sr.done = true
	sr.client.streamFinished(sr)
}
