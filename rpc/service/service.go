// Package service implements the server-side method registry and dispatch
// logic (spec §4.2): a named Service holding unary, asynchronous-unary, and
// server-streaming methods, and a Registry of services that the TCP server
// dispatches incoming calls through.
package service

import (
	"sync"
)

// UnaryHandler decodes its request as req and returns the response value to
// be encoded, or an error.
type UnaryHandler func(req any) (resp any, err error)

// Future is returned by an AsyncUnaryHandler. Registry.Dispatch runs it on
// the calling goroutine while holding one slot of the registry's async
// semaphore, which bounds how many futures run at once.
type Future func() (resp any, err error)

// AsyncUnaryHandler decodes its request as req and returns a Future that
// produces the eventual response.
type AsyncUnaryHandler func(req any) (Future, error)

// StreamHandler decodes its request as req and returns a FrameIterator that
// produces pre-encoded response frame bodies.
type StreamHandler func(req any) (FrameIterator, error)

// FrameIterator yields successive pre-encoded response frame bodies for a
// server-streaming call. Next returns ok=false once the stream is
// exhausted; a non-nil err always implies ok=false.
type FrameIterator interface {
	Next() (frame []byte, ok bool, err error)
}

type methodKind int

const (
	kindUnary methodKind = iota
	kindAsync
	kindStream
)

type methodEntry struct {
	kind   methodKind
	unary  UnaryHandler
	async  AsyncUnaryHandler
	stream StreamHandler
}

// Service is a named collection of methods. The three sub-registries of
// spec §3 ("unary, async-unary, server-stream") are folded into one map
// keyed by method name per the single-registry redesign in spec §9. Each
// name holds exactly one kind: registering a name again replaces its
// previous entry whatever its kind, and Registry.Dispatch invokes whichever
// entry the name holds.
type Service struct {
	name string

	mu      sync.RWMutex
	methods map[string]*methodEntry
}

// NewService returns an empty service named name.
func NewService(name string) *Service {
	return &Service{
		name:    name,
		methods: make(map[string]*methodEntry),
	}
}

// Name returns the service's registered name.
func (s *Service) Name() string { return s.name }

// RegisterUnary registers a synchronous unary method.
func (s *Service) RegisterUnary(method string, h UnaryHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.methods[method] = &methodEntry{kind: kindUnary, unary: h}
}

// RegisterAsyncUnary registers an asynchronous unary method.
func (s *Service) RegisterAsyncUnary(method string, h AsyncUnaryHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.methods[method] = &methodEntry{kind: kindAsync, async: h}
}

// RegisterStream registers a server-streaming method.
func (s *Service) RegisterStream(method string, h StreamHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.methods[method] = &methodEntry{kind: kindStream, stream: h}
}

func (s *Service) lookup(method string) (*methodEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.methods[method]
	return e, ok
}
