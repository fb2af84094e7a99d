// Package shmmsg implements the shared-memory message layer of spec §4.7:
// fixed 24-byte message headers carried over a ringbuf.RingBuffer, batch
// send/receive, heartbeats, and type-keyed handler dispatch.
package shmmsg

import (
	"encoding/binary"
	"time"
)

// Standard message types (spec §3); values 1000 and above are reserved for
// user-defined types.
const (
	TypeData      uint32 = 1
	TypeControl   uint32 = 2
	TypeHeartbeat uint32 = 3
	TypeError     uint32 = 4
	TypeUserMin   uint32 = 1000
)

// Flags bitfield values (spec §3). The ring buffer core never acts on
// these; it only carries them.
const (
	FlagNone         uint8 = 0
	FlagUrgent       uint8 = 0x01
	FlagCompressed   uint8 = 0x02
	FlagEncrypted    uint8 = 0x04
	FlagLastFragment uint8 = 0x08
)

// HeaderSize is the fixed, packed on-wire header size.
const HeaderSize = 24

// Header is the fixed 24-byte message header (spec §3):
// u32 message_id, u32 type, u32 payload_size, u64 timestamp_ms,
// u8 flags, 3 bytes reserved.
type Header struct {
	MessageID   uint32
	Type        uint32
	PayloadSize uint32
	TimestampMs uint64
	Flags       uint8
}

// Message pairs a Header with its payload bytes.
type Message struct {
	Header  Header
	Payload []byte
}

// HasFlag reports whether f is set on the message's header.
func (m Message) HasFlag(f uint8) bool { return m.Header.Flags&f != 0 }

// Encode writes the header followed by the payload into a single slice,
// ready to pass to RingBuffer.Write.
func Encode(msg Message) []byte {
	buf := make([]byte, HeaderSize+len(msg.Payload))
	binary.LittleEndian.PutUint32(buf[0:4], msg.Header.MessageID)
	binary.LittleEndian.PutUint32(buf[4:8], msg.Header.Type)
	binary.LittleEndian.PutUint32(buf[8:12], uint32(len(msg.Payload)))
	binary.LittleEndian.PutUint64(buf[12:20], msg.Header.TimestampMs)
	buf[20] = msg.Header.Flags
	// buf[21:24] reserved, left zero.
	copy(buf[HeaderSize:], msg.Payload)
	return buf
}

// DecodeHeader parses the fixed header from the front of buf.
func DecodeHeader(buf []byte) (Header, error) {
	if len(buf) < HeaderSize {
		return Header{}, ErrShortHeader
	}
	return Header{
		MessageID:   binary.LittleEndian.Uint32(buf[0:4]),
		Type:        binary.LittleEndian.Uint32(buf[4:8]),
		PayloadSize: binary.LittleEndian.Uint32(buf[8:12]),
		TimestampMs: binary.LittleEndian.Uint64(buf[12:20]),
		Flags:       buf[20],
	}, nil
}

// Decode parses a full header+payload message from buf.
func Decode(buf []byte) (Message, error) {
	h, err := DecodeHeader(buf)
	if err != nil {
		return Message{}, err
	}
	end := HeaderSize + int(h.PayloadSize)
	if end > len(buf) {
		return Message{}, ErrShortPayload
	}
	payload := make([]byte, h.PayloadSize)
	copy(payload, buf[HeaderSize:end])
	return Message{Header: h, Payload: payload}, nil
}

func nowMillis() uint64 {
	return uint64(time.Now().UnixMilli())
}
