package shmmsg

import "testing"

func TestEncodeDecodeRoundTrip(t *testing.T) {
	msg := Message{
		Header: Header{
			MessageID:   7,
			Type:        TypeData,
			TimestampMs: 1700000000000,
			Flags:       FlagUrgent,
		},
		Payload: []byte("payload bytes"),
	}
	buf := Encode(msg)

	got, err := Decode(buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.Header.MessageID != 7 || got.Header.Type != TypeData {
		t.Fatalf("header mismatch: %+v", got.Header)
	}
	if got.Header.TimestampMs != 1700000000000 {
		t.Fatalf("timestamp mismatch: %d", got.Header.TimestampMs)
	}
	if !got.HasFlag(FlagUrgent) {
		t.Fatal("expected FlagUrgent to survive round trip")
	}
	if string(got.Payload) != "payload bytes" {
		t.Fatalf("payload mismatch: %q", got.Payload)
	}
}

func TestDecodeHeaderShortBuffer(t *testing.T) {
	if _, err := DecodeHeader([]byte{1, 2, 3}); err != ErrShortHeader {
		t.Fatalf("expected ErrShortHeader, got %v", err)
	}
}

func TestDecodeShortPayload(t *testing.T) {
	msg := Message{Header: Header{Type: TypeData}, Payload: []byte("abcdef")}
	buf := Encode(msg)
	if _, err := Decode(buf[:len(buf)-2]); err != ErrShortPayload {
		t.Fatalf("expected ErrShortPayload, got %v", err)
	}
}
