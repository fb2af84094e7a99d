package wire

import (
	"reflect"
	"testing"
)

func TestWriteObjectReadObjectRoundTrip(t *testing.T) {
	cases := []any{
		int32(7),
		int64(-99),
		float32(1.5),
		float64(2.5),
		true,
		"some string",
		[]byte{9, 8, 7},
		Timestamp(1700000000),
		Vec3{X: 1, Y: 2, Z: 3},
	}

	for _, v := range cases {
		w := NewWriter(0)
		if err := WriteObject(Default, v, w); err != nil {
			t.Fatalf("WriteObject(%v): %v", v, err)
		}
		r := NewReader(w.Bytes())
		got, err := ReadObject(Default, r)
		if err != nil {
			t.Fatalf("ReadObject(%v): %v", v, err)
		}
		if !reflect.DeepEqual(got, v) {
			t.Fatalf("round trip mismatch: want %#v, got %#v", v, got)
		}
	}
}

func TestWriteObjectNil(t *testing.T) {
	w := NewWriter(0)
	if err := WriteObject(Default, nil, w); err != nil {
		t.Fatalf("WriteObject(nil): %v", err)
	}
	r := NewReader(w.Bytes())
	got, err := ReadObject(Default, r)
	if err != nil {
		t.Fatalf("ReadObject: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil, got %#v", got)
	}
}

func TestWriteObjectUnknownType(t *testing.T) {
	type custom struct{ A int }
	w := NewWriter(0)
	if err := WriteObject(Default, custom{A: 1}, w); err != ErrNoHandler {
		t.Fatalf("expected ErrNoHandler, got %v", err)
	}
}

func TestReadObjectUnknownCode(t *testing.T) {
	w := NewWriter(0)
	w.WriteInt32(999999)
	r := NewReader(w.Bytes())
	if _, err := ReadObject(Default, r); err != ErrUnknownType {
		t.Fatalf("expected ErrUnknownType, got %v", err)
	}
}

func TestRegisterCollision(t *testing.T) {
	reg := NewRegistry()
	registerBuiltins(reg)

	// Re-registering the exact same handler for its own type is a no-op.
	if err := reg.Register(reflect.TypeOf(int32(0)), int32Handler{}); err != nil {
		t.Fatalf("re-registering same handler should be a no-op: %v", err)
	}

	// Binding a hash code already owned by a different handler is an error.
	if err := reg.Register(reflect.TypeOf(float32(0)), impostorInt32Handler{}); err != ErrHandlerCollision {
		t.Fatalf("expected ErrHandlerCollision, got %v", err)
	}
}

// impostorInt32Handler claims CodeInt32 but is a distinct handler type,
// used to exercise the collision path.
type impostorInt32Handler struct{}

func (impostorInt32Handler) HashCode() int32                    { return CodeInt32 }
func (impostorInt32Handler) Write(value any, w *Writer) error   { return nil }
func (impostorInt32Handler) Read(r *Reader) (any, error)        { return nil, nil }
func (impostorInt32Handler) IsDefault(value any) bool            { return false }
