// Package wire implements BitRPC's binary wire codec: little-endian
// primitive encoding, a type-handler registry, and polymorphic object
// framing keyed by integer hash code.
package wire

import "encoding/binary"

// Writer appends primitives to a growable byte buffer. The zero value is
// ready to use.
type Writer struct {
	buf []byte
}

// NewWriter returns a Writer with cap bytes of pre-allocated capacity.
func NewWriter(cap int) *Writer {
	return &Writer{buf: make([]byte, 0, cap)}
}

// Bytes returns the accumulated buffer. The slice aliases the Writer's
// internal storage; callers must not retain it across further writes.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Len reports the number of bytes written so far.
func (w *Writer) Len() int {
	return len(w.buf)
}

func (w *Writer) WriteInt32(v int32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], uint32(v))
	w.buf = append(w.buf, b[:]...)
}

func (w *Writer) WriteInt64(v int64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(v))
	w.buf = append(w.buf, b[:]...)
}

func (w *Writer) WriteUint32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

func (w *Writer) WriteFloat32(v float32) {
	w.WriteUint32(float32bits(v))
}

func (w *Writer) WriteFloat64(v float64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], float64bits(v))
	w.buf = append(w.buf, b[:]...)
}

func (w *Writer) WriteBool(v bool) {
	if v {
		w.WriteInt32(1)
	} else {
		w.WriteInt32(0)
	}
}

// WriteString writes a length-prefixed UTF-8 string. An empty string is
// written with length 0; WriteString never writes the −1 null length
// (ReadString accepts it). WriteOptionalString marks absence with its own
// 0/1 presence tag, not with −1.
func (w *Writer) WriteString(s string) {
	w.WriteInt32(int32(len(s)))
	w.buf = append(w.buf, s...)
}

// WriteBytes writes a length-prefixed byte blob. Length is always ≥ 0; there
// is no null sentinel for bytes (spec §6.2).
func (w *Writer) WriteBytes(b []byte) {
	w.WriteInt32(int32(len(b)))
	w.buf = append(w.buf, b...)
}

// WriteOptionalString writes the int32 presence tag (0 absent, 1 present)
// followed by the string when present.
func (w *Writer) WriteOptionalString(s *string) {
	if s == nil {
		w.WriteInt32(0)
		return
	}
	w.WriteInt32(1)
	w.WriteString(*s)
}

// WriteTimestamp writes seconds since the Unix epoch as an int64.
func (w *Writer) WriteTimestamp(unixSeconds int64) {
	w.WriteInt64(unixSeconds)
}

// WriteVec3 writes three little-endian float32 components.
func (w *Writer) WriteVec3(x, y, z float32) {
	w.WriteFloat32(x)
	w.WriteFloat32(y)
	w.WriteFloat32(z)
}

// WriteSequence writes a homogeneous sequence as int32 count followed by
// count self-describing elements, each encoded through reg the same way
// WriteObject encodes a single value (spec §4.1).
func (w *Writer) WriteSequence(reg *Registry, items []any) error {
	w.WriteInt32(int32(len(items)))
	for _, item := range items {
		if err := WriteObject(reg, item, w); err != nil {
			return err
		}
	}
	return nil
}

// Reader decodes primitives from an immutable byte slice, tracking a
// position cursor separate from the slice itself.
type Reader struct {
	data []byte
	pos  int
}

// NewReader wraps data for sequential decoding.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Remaining reports how many unread bytes are left.
func (r *Reader) Remaining() int {
	return len(r.data) - r.pos
}

// Pos reports the current read offset.
func (r *Reader) Pos() int {
	return r.pos
}

func (r *Reader) need(n int) error {
	if r.Remaining() < n {
		return ErrEndOfStream
	}
	return nil
}

func (r *Reader) ReadInt32() (int32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := int32(binary.LittleEndian.Uint32(r.data[r.pos:]))
	r.pos += 4
	return v, nil
}

func (r *Reader) ReadInt64() (int64, error) {
	if err := r.need(8); err != nil {
		return 0, err
	}
	v := int64(binary.LittleEndian.Uint64(r.data[r.pos:]))
	r.pos += 8
	return v, nil
}

func (r *Reader) ReadUint32() (uint32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(r.data[r.pos:])
	r.pos += 4
	return v, nil
}

func (r *Reader) ReadFloat32() (float32, error) {
	v, err := r.ReadUint32()
	if err != nil {
		return 0, err
	}
	return float32frombits(v), nil
}

func (r *Reader) ReadFloat64() (float64, error) {
	if err := r.need(8); err != nil {
		return 0, err
	}
	v := float64frombits(binary.LittleEndian.Uint64(r.data[r.pos:]))
	r.pos += 8
	return v, nil
}

func (r *Reader) ReadBool() (bool, error) {
	v, err := r.ReadInt32()
	if err != nil {
		return false, err
	}
	return v != 0, nil
}

// ReadString decodes a length-prefixed UTF-8 string. Both length −1 and
// length 0 decode to the empty string (spec §4.1).
func (r *Reader) ReadString() (string, error) {
	n, err := r.ReadInt32()
	if err != nil {
		return "", err
	}
	if n <= 0 {
		return "", nil
	}
	if err := r.need(int(n)); err != nil {
		return "", err
	}
	s := string(r.data[r.pos : r.pos+int(n)])
	r.pos += int(n)
	return s, nil
}

// ReadBytes decodes a length-prefixed byte blob.
func (r *Reader) ReadBytes() ([]byte, error) {
	n, err := r.ReadInt32()
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, ErrEndOfStream
	}
	if err := r.need(int(n)); err != nil {
		return nil, err
	}
	b := make([]byte, n)
	copy(b, r.data[r.pos:r.pos+int(n)])
	r.pos += int(n)
	return b, nil
}

// ReadOptionalString reads the presence tag written by WriteOptionalString.
func (r *Reader) ReadOptionalString() (*string, error) {
	tag, err := r.ReadInt32()
	if err != nil {
		return nil, err
	}
	if tag == 0 {
		return nil, nil
	}
	s, err := r.ReadString()
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ReadTimestamp reads seconds since the Unix epoch.
func (r *Reader) ReadTimestamp() (int64, error) {
	return r.ReadInt64()
}

// ReadVec3 reads three little-endian float32 components.
func (r *Reader) ReadVec3() (x, y, z float32, err error) {
	if x, err = r.ReadFloat32(); err != nil {
		return
	}
	if y, err = r.ReadFloat32(); err != nil {
		return
	}
	z, err = r.ReadFloat32()
	return
}

// ReadSequence decodes a sequence written by WriteSequence.
func (r *Reader) ReadSequence(reg *Registry) ([]any, error) {
	n, err := r.ReadInt32()
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, ErrEndOfStream
	}
	items := make([]any, n)
	for i := range items {
		v, err := ReadObject(reg, r)
		if err != nil {
			return nil, err
		}
		items[i] = v
	}
	return items, nil
}
