// Package rpcclient implements the TCP client state machine of spec §4.4:
// Connect/Disconnect, a mutex-serialized unary Call, and a Stream call whose
// reader exclusively owns the connection until drained.
package rpcclient

import (
	"context"
	"encoding/binary"
	"net"
	"sync"

	"go.uber.org/zap"

	"bitrpc/rpc"
)

// State is the client connection lifecycle (spec §3: "Disconnected →
// Connecting → Connected → Disconnected").
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "unknown"
	}
}

// Client is a single TCP connection to a BitRPC server. Exactly one caller
// may be mid-call at a time; Call and Stream serialize on an internal
// mutex, and while a Stream reader is live any further Call or Stream is
// rejected at once with rpc.ErrStreamInProgress until the reader is drained
// or closed (spec §9 Open Question: concurrent client
// calls are forbidden, enforced here rather than left undefined).
type Client struct {
	log *zap.Logger

	mu       sync.Mutex
	conn     net.Conn
	state    State
	streamer *StreamReader
}

// New returns an unconnected Client. A nil logger disables logging.
func New(log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{log: log, state: StateDisconnected}
}

// State reports the client's current lifecycle state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Connect dials addr and transitions the client to Connected. Connect on an
// already-connected client first closes the existing socket and then dials
// anew, matching spec §4.4 ("reconnect is an explicit new connect").
func (c *Client) Connect(ctx context.Context, addr string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
	c.state = StateConnecting

	dialer := net.Dialer{}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		c.state = StateDisconnected
		return err
	}
	c.conn = conn
	c.state = StateConnected
	c.log.Info("rpc client: connected", zap.String("addr", addr))
	return nil
}

// Disconnect closes the underlying socket and transitions to Disconnected.
// It is safe to call more than once.
func (c *Client) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		c.state = StateDisconnected
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	c.state = StateDisconnected
	c.streamer = nil
	return err
}

// Call performs one unary request/response exchange: it sends
// method+requestBytes as a single frame and returns the raw response
// payload (empty if the server reported an unknown method or a decode
// error). The caller decodes the response with the wire registry.
func (c *Client) Call(ctx context.Context, method string, requestBytes []byte) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.preflight(); err != nil {
		return nil, err
	}

	if err := writeRequestFrame(c.conn, method, requestBytes); err != nil {
		_ = c.teardownLocked()
		return nil, err
	}

	resp, err := rpc.ReadFrame(c.conn)
	if err != nil {
		_ = c.teardownLocked()
		return nil, err
	}
	return resp, nil
}

// Stream performs one server-streaming request: it sends
// method+requestBytes as a single frame and returns a StreamReader that
// owns the connection exclusively until Close is called on it or it is
// drained to end-of-stream.
func (c *Client) Stream(ctx context.Context, method string, requestBytes []byte) (*StreamReader, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.preflight(); err != nil {
		return nil, err
	}

	if err := writeRequestFrame(c.conn, method, requestBytes); err != nil {
		_ = c.teardownLocked()
		return nil, err
	}

	sr := &StreamReader{conn: c.conn, client: c}
	c.streamer = sr
	return sr, nil
}

func (c *Client) preflight() error {
	if c.state != StateConnected || c.conn == nil {
		return rpc.ErrNotConnected
	}
	if c.streamer != nil && !c.streamer.done {
		return rpc.ErrStreamInProgress
	}
	c.streamer = nil
	return nil
}

func (c *Client) teardownLocked() error {
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	c.state = StateDisconnected
	c.streamer = nil
	return err
}

// streamFinished is called by a StreamReader once it reaches end-of-stream
// or an error, releasing the connection for the next Call or Stream.
func (c *Client) streamFinished(sr *StreamReader) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.streamer == sr {
		c.streamer = nil
	}
}

// writeRequestFrame builds and sends the combined request frame: u32
// payload_len, then int32 name_len + name bytes + requestBytes (spec §4.3).
func writeRequestFrame(conn net.Conn, method string, requestBytes []byte) error {
	nameBytes := []byte(method)
	payload := make([]byte, 4+len(nameBytes)+len(requestBytes))
	binary.LittleEndian.PutUint32(payload[:4], uint32(len(nameBytes)))
	copy(payload[4:], nameBytes)
	copy(payload[4+len(nameBytes):], requestBytes)
	return rpc.WriteFrame(conn, payload)
}
