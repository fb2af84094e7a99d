package wire

import (
	"fmt"
	"reflect"
)

// Built-in hash codes. These are part of the wire contract (spec §6.2) and
// must never change.
const (
	CodeInt32     int32 = 101
	CodeInt64     int32 = 102
	CodeFloat32   int32 = 103
	CodeFloat64   int32 = 104
	CodeBool      int32 = 105
	CodeString    int32 = 106
	CodeBytes     int32 = 107
	CodeTimestamp int32 = 201
	CodeVec3      int32 = 202
)

// NullCode is written by WriteObject for an absent value and read by
// ReadObject to signal absence.
const NullCode int32 = -1

// Timestamp is seconds since the Unix epoch, the wire representation fixed
// by spec §3 ("timestamp (seconds since epoch as int64)").
type Timestamp int64

// Vec3 is a three-component float32 vector.
type Vec3 struct {
	X, Y, Z float32
}

func registerBuiltins(r *Registry) {
	must(r.Register(reflect.TypeOf(int32(0)), int32Handler{}))
	must(r.Register(reflect.TypeOf(int64(0)), int64Handler{}))
	must(r.Register(reflect.TypeOf(float32(0)), float32Handler{}))
	must(r.Register(reflect.TypeOf(float64(0)), float64Handler{}))
	must(r.Register(reflect.TypeOf(false), boolHandler{}))
	must(r.Register(reflect.TypeOf(""), stringHandler{}))
	must(r.Register(reflect.TypeOf([]byte(nil)), bytesHandler{}))
	must(r.Register(reflect.TypeOf(Timestamp(0)), timestampHandler{}))
	must(r.Register(reflect.TypeOf(Vec3{}), vec3Handler{}))
}

func must(err error) {
	if err != nil {
		panic(fmt.Sprintf("wire: builtin registration failed: %v", err))
	}
}

type int32Handler struct{}

func (int32Handler) HashCode() int32 { return CodeInt32 }
func (int32Handler) Write(value any, w *Writer) error {
	w.WriteInt32(value.(int32))
	return nil
}
func (int32Handler) Read(r *Reader) (any, error) { return r.ReadInt32() }
func (int32Handler) IsDefault(value any) bool     { return value.(int32) == 0 }

type int64Handler struct{}

func (int64Handler) HashCode() int32 { return CodeInt64 }
func (int64Handler) Write(value any, w *Writer) error {
	w.WriteInt64(value.(int64))
	return nil
}
func (int64Handler) Read(r *Reader) (any, error) { return r.ReadInt64() }
func (int64Handler) IsDefault(value any) bool     { return value.(int64) == 0 }

type float32Handler struct{}

func (float32Handler) HashCode() int32 { return CodeFloat32 }
func (float32Handler) Write(value any, w *Writer) error {
	w.WriteFloat32(value.(float32))
	return nil
}
func (float32Handler) Read(r *Reader) (any, error) { return r.ReadFloat32() }
func (float32Handler) IsDefault(value any) bool     { return value.(float32) == 0 }

type float64Handler struct{}

func (float64Handler) HashCode() int32 { return CodeFloat64 }
func (float64Handler) Write(value any, w *Writer) error {
	w.WriteFloat64(value.(float64))
	return nil
}
func (float64Handler) Read(r *Reader) (any, error) { return r.ReadFloat64() }
func (float64Handler) IsDefault(value any) bool     { return value.(float64) == 0 }

type boolHandler struct{}

func (boolHandler) HashCode() int32 { return CodeBool }
func (boolHandler) Write(value any, w *Writer) error {
	w.WriteBool(value.(bool))
	return nil
}
func (boolHandler) Read(r *Reader) (any, error) { return r.ReadBool() }
func (boolHandler) IsDefault(value any) bool     { return !value.(bool) }

type stringHandler struct{}

func (stringHandler) HashCode() int32 { return CodeString }
func (stringHandler) Write(value any, w *Writer) error {
	w.WriteString(value.(string))
	return nil
}
func (stringHandler) Read(r *Reader) (any, error) { return r.ReadString() }
func (stringHandler) IsDefault(value any) bool     { return value.(string) == "" }

type bytesHandler struct{}

func (bytesHandler) HashCode() int32 { return CodeBytes }
func (bytesHandler) Write(value any, w *Writer) error {
	w.WriteBytes(value.([]byte))
	return nil
}
func (bytesHandler) Read(r *Reader) (any, error) { return r.ReadBytes() }
func (bytesHandler) IsDefault(value any) bool     { return len(value.([]byte)) == 0 }

type timestampHandler struct{}

func (timestampHandler) HashCode() int32 { return CodeTimestamp }
func (timestampHandler) Write(value any, w *Writer) error {
	w.WriteTimestamp(int64(value.(Timestamp)))
	return nil
}
func (timestampHandler) Read(r *Reader) (any, error) {
	v, err := r.ReadTimestamp()
	return Timestamp(v), err
}
func (timestampHandler) IsDefault(value any) bool { return value.(Timestamp) == 0 }

type vec3Handler struct{}

func (vec3Handler) HashCode() int32 { return CodeVec3 }
func (vec3Handler) Write(value any, w *Writer) error {
	v := value.(Vec3)
	w.WriteVec3(v.X, v.Y, v.Z)
	return nil
}
func (vec3Handler) Read(r *Reader) (any, error) {
	x, y, z, err := r.ReadVec3()
	if err != nil {
		return nil, err
	}
	return Vec3{X: x, Y: y, Z: z}, nil
}
func (vec3Handler) IsDefault(value any) bool {
	v := value.(Vec3)
	return v.X == 0 && v.Y == 0 && v.Z == 0
}
