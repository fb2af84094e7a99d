package wire

import (
	"reflect"
	"sync"
)

// TypeHandler is a codec for one user type, keyed on the wire by HashCode.
// Generated struct handlers implement this interface and register
// themselves with a Registry at process startup.
type TypeHandler interface {
	// HashCode is the stable, non-negative wire identifier for the type.
	HashCode() int32

	// Write encodes value (which must be of the handler's native type) onto
	// w.
	Write(value any, w *Writer) error

	// Read decodes one value of the handler's native type from r.
	Read(r *Reader) (any, error)

	// IsDefault reports whether value is the zero value for the handled
	// type, used by callers doing presence-bitmask style encoding.
	IsDefault(value any) bool
}

// Registry maps a type, two ways, to the TypeHandler that serializes it:
// by native Go type (for WriteObject) and by wire hash code (for
// ReadObject). It is the process-wide handler table described in spec §3;
// Registry itself is safe for concurrent use, and is typically accessed
// through the package-level Default registry.
type Registry struct {
	mu     sync.RWMutex
	byType map[reflect.Type]TypeHandler
	byCode map[int32]TypeHandler
}

// NewRegistry returns an empty registry. Most callers want Default, which
// already carries the built-in handlers.
func NewRegistry() *Registry {
	return &Registry{
		byType: make(map[reflect.Type]TypeHandler),
		byCode: make(map[int32]TypeHandler),
	}
}

// Register binds h to its native Go type and to h.HashCode(). Re-registering
// the same (type, handler) pair is a no-op (spec §7 Idempotence); binding a
// hash code already owned by a different handler is an error.
func (r *Registry) Register(nativeType reflect.Type, h TypeHandler) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.byCode[h.HashCode()]; ok && existing != h {
		return ErrHandlerCollision
	}
	r.byType[nativeType] = h
	r.byCode[h.HashCode()] = h
	return nil
}

// HandlerForType looks up the handler registered for a native Go type.
func (r *Registry) HandlerForType(t reflect.Type) (TypeHandler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.byType[t]
	return h, ok
}

// HandlerForCode looks up the handler registered for a wire hash code.
func (r *Registry) HandlerForCode(code int32) (TypeHandler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.byCode[code]
	return h, ok
}

// Default is the process-global handler registry. Built-in handlers are
// registered on package init, matching spec §9 "built-ins populate on
// first access" — Go's init ordering makes this both eager and idempotent
// without a sync.Once.
var Default = NewRegistry()

func init() {
	registerBuiltins(Default)
}
