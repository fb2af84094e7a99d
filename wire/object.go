package wire

import "reflect"

// WriteObject performs polymorphic, self-describing object framing
// (spec §4.1). A nil value writes NullCode; otherwise the handler
// registered for value's native type is looked up, its HashCode is written,
// and then the handler encodes the value.
func WriteObject(reg *Registry, value any, w *Writer) error {
	if value == nil {
		w.WriteInt32(NullCode)
		return nil
	}
	h, ok := reg.HandlerForType(reflect.TypeOf(value))
	if !ok {
		return ErrNoHandler
	}
	w.WriteInt32(h.HashCode())
	return h.Write(value, w)
}

// ReadObject reads a hash code and, unless it is NullCode, dispatches to the
// handler registered for that code.
func ReadObject(reg *Registry, r *Reader) (any, error) {
	code, err := r.ReadInt32()
	if err != nil {
		return nil, err
	}
	if code == NullCode {
		return nil, nil
	}
	h, ok := reg.HandlerForCode(code)
	if !ok {
		return nil, ErrUnknownType
	}
	return h.Read(r)
}
