package shmmsg

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"bitrpc/ringbuf"
)

// MissedHeartbeatsUnresponsive is how many consecutive missed heartbeat
// intervals mark a peer unresponsive (spec §6 supplement; caller
// overridable via Config.UnresponsiveAfterMissed).
const MissedHeartbeatsUnresponsive = 3

// DefaultMaxMessageSize matches the original implementation's default.
const DefaultMaxMessageSize = 64 * 1024

// Handler processes one received message and optionally produces a
// response to send back (mirrors the original's
// function<bool(const Message&, Message&)>: the bool return says whether a
// response should be sent).
type Handler func(msg Message) (resp Message, send bool)

// Config configures a Manager's ring buffer and message-size limits.
type Config struct {
	RingBufferSize        uint64
	MaxMessageSize         uint32
	InstanceName           string
	AutoCleanup            bool
	EnableEvents           bool
	HeartbeatInterval       time.Duration
	UnresponsiveAfterMissed int
}

func (c Config) withDefaults() Config {
	if c.MaxMessageSize == 0 {
		c.MaxMessageSize = DefaultMaxMessageSize
	}
	if c.HeartbeatInterval == 0 {
		c.HeartbeatInterval = time.Second
	}
	if c.UnresponsiveAfterMissed == 0 {
		c.UnresponsiveAfterMissed = MissedHeartbeatsUnresponsive
	}
	return c
}

// Statistics are atomic counters safe to read concurrently with traffic.
type Statistics struct {
	MessagesSent     atomic.Uint64
	MessagesReceived atomic.Uint64
	BytesSent        atomic.Uint64
	BytesReceived    atomic.Uint64
	Errors           atomic.Uint64

	// payloadTotal and payloadCount back AvgPayloadSize: both sides'
	// traffic (sent and received) contributes to one running average,
	// matching spec §4.7's single "running average payload size" stat.
	payloadTotal atomic.Uint64
	payloadCount atomic.Uint64
}

func (s *Statistics) recordPayload(n int) {
	s.payloadTotal.Add(uint64(n))
	s.payloadCount.Add(1)
}

func (s *Statistics) avgPayloadSize() float64 {
	count := s.payloadCount.Load()
	if count == 0 {
		return 0
	}
	return float64(s.payloadTotal.Load()) / float64(count)
}

// Snapshot is a point-in-time copy of Statistics, safe to log or compare.
type Snapshot struct {
	MessagesSent, MessagesReceived uint64
	BytesSent, BytesReceived       uint64
	Errors                         uint64
	AvgPayloadSize                 float64
}

// Manager drives one side (producer or consumer) of a ring-buffer-backed
// message channel: framing, batching, handler dispatch, and heartbeats.
type Manager struct {
	cfg  Config
	log  *zap.Logger
	ring *ringbuf.RingBuffer

	nextID atomic.Uint32
	stats  Statistics

	mu       sync.RWMutex
	handlers map[uint32]Handler

	lastHeartbeatRecv atomic.Int64
	missedHeartbeats  atomic.Int32

	cancel context.CancelFunc
	group  *errgroup.Group
}

// NewManager returns a Manager that has not yet started a producer or
// consumer role.
func NewManager(cfg Config, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		cfg:      cfg.withDefaults(),
		log:      log,
		handlers: make(map[uint32]Handler),
	}
}

// StartProducer creates (or attaches to) the backing ring buffer in the
// producer role and starts a goroutine that sends a heartbeat every
// Config.HeartbeatInterval (spec §4.7: heartbeats "are produced
// periodically... by the producer half"). If Config.AutoCleanup is set and
// mode is not OpenOnly, any stale region left behind by a previous,
// uncleanly-stopped producer is removed before creating a fresh one.
func (m *Manager) StartProducer(mode ringbuf.CreateMode) error {
	if m.cfg.AutoCleanup && mode != ringbuf.OpenOnly {
		_ = ringbuf.Remove(m.cfg.InstanceName)
	}
	rb, err := ringbuf.Create(ringbuf.Config{
		Name:         m.cfg.InstanceName,
		BufferSize:   m.cfg.RingBufferSize,
		EnableEvents: m.cfg.EnableEvents,
	}, mode, m.log)
	if err != nil {
		return err
	}
	m.ring = rb

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	group, gctx := errgroup.WithContext(ctx)
	m.group = group
	group.Go(func() error {
		return m.heartbeatSender(gctx)
	})
	return nil
}

// StartConsumer attaches to an existing ring buffer and starts the
// heartbeat watchdog.
func (m *Manager) StartConsumer() error {
	rb, err := ringbuf.Open(m.cfg.InstanceName, m.cfg.EnableEvents, m.log)
	if err != nil {
		return err
	}
	m.ring = rb
	m.lastHeartbeatRecv.Store(time.Now().UnixMilli())

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	group, gctx := errgroup.WithContext(ctx)
	m.group = group
	group.Go(func() error {
		return m.heartbeatWatchdog(gctx)
	})
	return nil
}

// Stop tears down the ring buffer and stops the heartbeat watchdog, if
// running.
func (m *Manager) Stop() error {
	if m.cancel != nil {
		m.cancel()
	}
	if m.group != nil {
		_ = m.group.Wait()
	}
	if m.ring == nil {
		return nil
	}
	return m.ring.Close()
}

func (m *Manager) requireStarted() error {
	if m.ring == nil {
		return ErrNotStarted
	}
	return nil
}

// DefaultSendTimeout bounds how long SendMessage waits for the ring to free
// enough space before giving up. ringbuf.RingBuffer.Write never blocks
// itself (spec §4.6/§5); the bounded wait-and-retry lives here, one level
// up, composed from Write and WaitForSpace.
const DefaultSendTimeout = 5 * time.Second

// SendMessage frames and writes one message of the given type and flags,
// retrying against backpressure until the ring frees enough space or
// DefaultSendTimeout elapses.
func (m *Manager) SendMessage(msgType uint32, payload []byte, flags uint8) error {
	if err := m.requireStarted(); err != nil {
		return err
	}
	if uint32(len(payload)) > m.cfg.MaxMessageSize {
		return ErrPayloadTooLarge
	}
	msg := Message{
		Header: Header{
			MessageID:   m.nextID.Add(1),
			Type:        msgType,
			PayloadSize: uint32(len(payload)),
			TimestampMs: nowMillis(),
			Flags:       flags,
		},
		Payload: payload,
	}
	buf := Encode(msg)

	deadline := time.Now().Add(DefaultSendTimeout)
	for {
		_, err := m.ring.Write(buf)
		if err == nil {
			m.stats.MessagesSent.Add(1)
			m.stats.BytesSent.Add(uint64(len(buf)))
			m.stats.recordPayload(len(payload))
			return nil
		}
		if err != ringbuf.ErrWouldBlock {
			m.stats.Errors.Add(1)
			return err
		}
		if time.Now().After(deadline) {
			m.stats.Errors.Add(1)
			return ErrTimeout
		}
		_ = m.ring.WaitForSpace(50*time.Millisecond, uint64(len(buf)))
	}
}

// SendMessages writes msgs one at a time, stopping at the first write
// failure, and returns how many were actually sent before that happened
// (spec §4.7: "stopping at the first write failure; returns count sent").
func (m *Manager) SendMessages(msgs []Message) (int, error) {
	for i, msg := range msgs {
		if err := m.SendMessage(msg.Header.Type, msg.Payload, msg.Header.Flags); err != nil {
			return i, err
		}
	}
	return len(msgs), nil
}

// ReceiveMessage blocks up to timeout for one message, decoding its header
// via Peek before committing to Skip past header+payload as a single
// consumer step (spec §6 supplement).
func (m *Manager) ReceiveMessage(timeout time.Duration) (Message, error) {
	if err := m.requireStarted(); err != nil {
		return Message{}, err
	}

	headerBuf := make([]byte, HeaderSize)
	deadline := time.Now().Add(timeout)
	for {
		n, err := m.ring.Peek(headerBuf)
		if err == nil && n == HeaderSize {
			break
		}
		if time.Now().After(deadline) {
			return Message{}, ErrTimeout
		}
		_ = m.ring.WaitForData(50 * time.Millisecond)
	}

	h, err := DecodeHeader(headerBuf)
	if err != nil {
		m.stats.Errors.Add(1)
		return Message{}, err
	}

	full := make([]byte, HeaderSize+int(h.PayloadSize))
	for {
		n, err := m.ring.Peek(full)
		if err == nil && n == len(full) {
			break
		}
		if time.Now().After(deadline) {
			return Message{}, ErrTimeout
		}
		_ = m.ring.WaitForData(50 * time.Millisecond)
	}

	if err := m.ring.Skip(uint64(len(full))); err != nil {
		return Message{}, err
	}

	msg, err := Decode(full)
	if err != nil {
		m.stats.Errors.Add(1)
		return Message{}, err
	}
	m.stats.MessagesReceived.Add(1)
	m.stats.BytesReceived.Add(uint64(len(full)))
	m.stats.recordPayload(len(msg.Payload))
	if msg.Header.Type == TypeHeartbeat {
		// Always move the timestamp forward, even within the same
		// millisecond, so WaitForHeartbeat sees every heartbeat.
		now := time.Now().UnixMilli()
		if prev := m.lastHeartbeatRecv.Load(); now <= prev {
			now = prev + 1
		}
		m.lastHeartbeatRecv.Store(now)
		m.missedHeartbeats.Store(0)
	}
	return msg, nil
}

// ReceiveMessages receives up to max messages, the whole batch bounded by
// one shared timeout budget subdivided across the individual
// ReceiveMessage calls (spec §4.7), rather than each call getting its own
// full timeout.
func (m *Manager) ReceiveMessages(max int, timeout time.Duration) ([]Message, error) {
	deadline := time.Now().Add(timeout)
	var out []Message
	for i := 0; i < max; i++ {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			break
		}
		msg, err := m.ReceiveMessage(remaining)
		if err == ErrTimeout {
			break
		}
		if err != nil {
			return out, err
		}
		out = append(out, msg)
	}
	return out, nil
}

// RegisterHandler binds a Handler to a message type.
func (m *Manager) RegisterHandler(msgType uint32, h Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[msgType] = h
}

// UnregisterHandler removes any handler bound to msgType.
func (m *Manager) UnregisterHandler(msgType uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.handlers, msgType)
}

// DispatchOne receives one message and, if a handler is registered for its
// type, invokes it and sends the response it returns. It reports whether a
// message was processed.
func (m *Manager) DispatchOne(timeout time.Duration) (bool, error) {
	msg, err := m.ReceiveMessage(timeout)
	if err == ErrTimeout {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	m.mu.RLock()
	h, ok := m.handlers[msg.Header.Type]
	m.mu.RUnlock()
	if !ok {
		return true, nil
	}

	resp, send := h(msg)
	if !send {
		return true, nil
	}
	return true, m.SendMessage(resp.Header.Type, resp.Payload, resp.Header.Flags)
}

// SendHeartbeat writes a zero-payload TypeHeartbeat message.
func (m *Manager) SendHeartbeat() error {
	return m.SendMessage(TypeHeartbeat, nil, FlagNone)
}

func (m *Manager) heartbeatSender(ctx context.Context) error {
	ticker := time.NewTicker(m.cfg.HeartbeatInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := m.SendHeartbeat(); err != nil {
				m.log.Warn("shmmsg: failed to send heartbeat", zap.Error(err))
			}
		}
	}
}

func (m *Manager) heartbeatWatchdog(ctx context.Context) error {
	ticker := time.NewTicker(m.cfg.HeartbeatInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			last := m.lastHeartbeatRecv.Load()
			if time.Since(time.UnixMilli(last)) > m.cfg.HeartbeatInterval {
				m.missedHeartbeats.Add(1)
			}
		}
	}
}

// PeerUnresponsive reports whether the peer has missed
// Config.UnresponsiveAfterMissed consecutive heartbeat intervals.
func (m *Manager) PeerUnresponsive() bool {
	return int(m.missedHeartbeats.Load()) >= m.cfg.UnresponsiveAfterMissed
}

// WaitForHeartbeat blocks until the next heartbeat is received (i.e. until
// lastHeartbeatRecv advances past its value when this call started) or
// until timeout elapses, in which case it returns ErrTimeout. A negative
// timeout waits forever, matching ringbuf's "-1 = wait forever" convention
// (spec §4.7 Testable Property 10 / Scenario S6).
func (m *Manager) WaitForHeartbeat(timeout time.Duration) error {
	last := m.lastHeartbeatRecv.Load()
	var deadline time.Time
	if timeout >= 0 {
		deadline = time.Now().Add(timeout)
	}
	for m.lastHeartbeatRecv.Load() == last {
		if timeout >= 0 && time.Now().After(deadline) {
			return ErrTimeout
		}
		time.Sleep(time.Millisecond)
	}
	return nil
}

// Clear drains the ring without decoding or dispatching anything, useful to
// recover a consumer stuck behind a malformed message (spec §6 supplement,
// "ClearBuffer").
func (m *Manager) Clear() error {
	if err := m.requireStarted(); err != nil {
		return err
	}
	used := m.ring.Used()
	if used == 0 {
		return nil
	}
	return m.ring.Skip(used)
}

// FreeSpace and UsedSpace expose the backing ring's current capacity
// figures.
func (m *Manager) FreeSpace() uint64 {
	if m.ring == nil {
		return 0
	}
	return m.ring.Free()
}

func (m *Manager) UsedSpace() uint64 {
	if m.ring == nil {
		return 0
	}
	return m.ring.Used()
}

// Stats returns a point-in-time snapshot of the manager's counters.
func (m *Manager) Stats() Snapshot {
	return Snapshot{
		MessagesSent:     m.stats.MessagesSent.Load(),
		MessagesReceived: m.stats.MessagesReceived.Load(),
		BytesSent:        m.stats.BytesSent.Load(),
		BytesReceived:    m.stats.BytesReceived.Load(),
		Errors:           m.stats.Errors.Load(),
		AvgPayloadSize:   m.stats.avgPayloadSize(),
	}
}
