package wire

import "testing"

func TestPrimitiveRoundTrip(t *testing.T) {
	w := NewWriter(0)
	w.WriteInt32(-42)
	w.WriteInt64(1234567890123)
	w.WriteUint32(0xdeadbeef)
	w.WriteFloat32(3.25)
	w.WriteFloat64(-6.5)
	w.WriteBool(true)
	w.WriteBool(false)
	w.WriteString("hello")
	w.WriteString("")
	w.WriteBytes([]byte{1, 2, 3})
	w.WriteTimestamp(42)
	w.WriteVec3(1, 2, 3)

	r := NewReader(w.Bytes())

	if v, err := r.ReadInt32(); err != nil || v != -42 {
		t.Fatalf("ReadInt32 = %d, %v", v, err)
	}
	if v, err := r.ReadInt64(); err != nil || v != 1234567890123 {
		t.Fatalf("ReadInt64 = %d, %v", v, err)
	}
	if v, err := r.ReadUint32(); err != nil || v != 0xdeadbeef {
		t.Fatalf("ReadUint32 = %x, %v", v, err)
	}
	if v, err := r.ReadFloat32(); err != nil || v != 3.25 {
		t.Fatalf("ReadFloat32 = %v, %v", v, err)
	}
	if v, err := r.ReadFloat64(); err != nil || v != -6.5 {
		t.Fatalf("ReadFloat64 = %v, %v", v, err)
	}
	if v, err := r.ReadBool(); err != nil || v != true {
		t.Fatalf("ReadBool = %v, %v", v, err)
	}
	if v, err := r.ReadBool(); err != nil || v != false {
		t.Fatalf("ReadBool = %v, %v", v, err)
	}
	if v, err := r.ReadString(); err != nil || v != "hello" {
		t.Fatalf("ReadString = %q, %v", v, err)
	}
	if v, err := r.ReadString(); err != nil || v != "" {
		t.Fatalf("ReadString (empty) = %q, %v", v, err)
	}
	if v, err := r.ReadBytes(); err != nil || string(v) != "\x01\x02\x03" {
		t.Fatalf("ReadBytes = %v, %v", v, err)
	}
	if v, err := r.ReadTimestamp(); err != nil || v != 42 {
		t.Fatalf("ReadTimestamp = %d, %v", v, err)
	}
	x, y, z, err := r.ReadVec3()
	if err != nil || x != 1 || y != 2 || z != 3 {
		t.Fatalf("ReadVec3 = (%v,%v,%v), %v", x, y, z, err)
	}
	if r.Remaining() != 0 {
		t.Fatalf("expected buffer fully consumed, %d bytes left", r.Remaining())
	}
}

func TestNullStringEncoding(t *testing.T) {
	// A length of −1 (the null sentinel) decodes to the empty string, just
	// as the length 0 that WriteString writes for "" does.
	w := NewWriter(0)
	w.WriteInt32(-1)
	r := NewReader(w.Bytes())
	s, err := r.ReadString()
	if err != nil {
		t.Fatalf("ReadString: %v", err)
	}
	if s != "" {
		t.Fatalf("expected empty string, got %q", s)
	}
}

func TestOptionalString(t *testing.T) {
	w := NewWriter(0)
	w.WriteOptionalString(nil)
	s := "present"
	w.WriteOptionalString(&s)

	r := NewReader(w.Bytes())
	got, err := r.ReadOptionalString()
	if err != nil || got != nil {
		t.Fatalf("expected nil, got %v, %v", got, err)
	}
	got, err = r.ReadOptionalString()
	if err != nil || got == nil || *got != "present" {
		t.Fatalf("expected \"present\", got %v, %v", got, err)
	}
}

func TestShortBufferIsEndOfStream(t *testing.T) {
	r := NewReader([]byte{1, 2, 3})
	if _, err := r.ReadInt64(); err != ErrEndOfStream {
		t.Fatalf("expected ErrEndOfStream, got %v", err)
	}
}

func TestReadStringValidatesRange(t *testing.T) {
	w := NewWriter(0)
	w.WriteInt32(100) // claim 100 bytes but write none
	r := NewReader(w.Bytes())
	if _, err := r.ReadString(); err != ErrEndOfStream {
		t.Fatalf("expected ErrEndOfStream, got %v", err)
	}
}

func TestSequenceRoundTrip(t *testing.T) {
	w := NewWriter(0)
	items := []any{int32(1), "two", int32(3)}
	if err := w.WriteSequence(Default, items); err != nil {
		t.Fatalf("WriteSequence: %v", err)
	}

	r := NewReader(w.Bytes())
	got, err := r.ReadSequence(Default)
	if err != nil {
		t.Fatalf("ReadSequence: %v", err)
	}
	if len(got) != len(items) {
		t.Fatalf("len = %d, want %d", len(got), len(items))
	}
	for i, v := range items {
		if got[i] != v {
			t.Fatalf("element %d = %v, want %v", i, got[i], v)
		}
	}
}

func TestEmptySequenceRoundTrip(t *testing.T) {
	w := NewWriter(0)
	if err := w.WriteSequence(Default, nil); err != nil {
		t.Fatalf("WriteSequence: %v", err)
	}
	r := NewReader(w.Bytes())
	got, err := r.ReadSequence(Default)
	if err != nil {
		t.Fatalf("ReadSequence: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty sequence, got %v", got)
	}
}
