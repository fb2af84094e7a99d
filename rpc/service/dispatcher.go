package service

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"

	"bitrpc/rpc"
	"bitrpc/wire"
)

// DefaultAsyncWorkers bounds how many AsyncUnaryHandler futures may be
// running at once across all connections sharing a Registry (spec §9
// supplement: a bounded worker pool rather than one goroutine per call).
const DefaultAsyncWorkers = 64

// Registry is the server-wide set of named services the TCP server
// dispatches calls into.
type Registry struct {
	mu       sync.RWMutex
	services map[string]*Service

	asyncSem *semaphore.Weighted
}

// NewRegistry returns an empty Registry whose async dispatch is bounded to
// maxAsyncWorkers concurrent futures. maxAsyncWorkers <= 0 uses
// DefaultAsyncWorkers.
func NewRegistry(maxAsyncWorkers int64) *Registry {
	if maxAsyncWorkers <= 0 {
		maxAsyncWorkers = DefaultAsyncWorkers
	}
	return &Registry{
		services: make(map[string]*Service),
		asyncSem: semaphore.NewWeighted(maxAsyncWorkers),
	}
}

// Register adds svc to the registry, replacing any existing service of the
// same name.
func (r *Registry) Register(svc *Service) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.services[svc.Name()] = svc
}

// Unregister removes the named service, if present.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.services, name)
}

func (r *Registry) service(name string) (*Service, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.services[name]
	return s, ok
}

// Result is the outcome of dispatching one request frame: exactly one of
// (Body non-nil, Stream non-nil, Err non-nil) describes how the caller
// should respond. Body answers a unary call. Stream answers a
// server-streaming call. Err (which includes unresolved service/method and
// decode failures) means the caller should write a single empty frame and
// keep the connection open.
type Result struct {
	Body   []byte
	Stream FrameIterator
	Err    error
}

// Dispatch resolves fullMethod ("service.method") against the registry and
// invokes the matching handler with reqBody, which must begin with the
// request's wire hash code (spec §4.3). Resolution order among a method's
// possible kinds is fixed by registration (each method has exactly one
// kind); service/method lookup failures and decode/handler errors are
// reported via Result.Err rather than a Go error return, since the caller's
// response to either is identical: an empty frame.
func (r *Registry) Dispatch(ctx context.Context, fullMethod string, reqBody []byte) Result {
	serviceName, methodName, ok := rpc.ParseMethod(fullMethod)
	if !ok {
		return Result{Err: rpc.ErrServiceNotFound}
	}
	svc, ok := r.service(serviceName)
	if !ok {
		return Result{Err: rpc.ErrServiceNotFound}
	}
	entry, ok := svc.lookup(methodName)
	if !ok {
		return Result{Err: rpc.ErrServiceNotFound}
	}

	req, err := wire.ReadObject(wire.Default, wire.NewReader(reqBody))
	if err != nil {
		return Result{Err: err}
	}

	switch entry.kind {
	case kindUnary:
		resp, err := entry.unary(req)
		if err != nil {
			return Result{Err: err}
		}
		return encodeResult(resp)

	case kindAsync:
		future, err := entry.async(req)
		if err != nil {
			return Result{Err: err}
		}
		if err := r.asyncSem.Acquire(ctx, 1); err != nil {
			return Result{Err: err}
		}
		resp, err := func() (any, error) {
			defer r.asyncSem.Release(1)
			return future()
		}()
		if err != nil {
			return Result{Err: err}
		}
		return encodeResult(resp)

	case kindStream:
		iter, err := entry.stream(req)
		if err != nil {
			return Result{Err: err}
		}
		return Result{Stream: iter}

	default:
		return Result{Err: rpc.ErrServiceNotFound}
	}
}

func encodeResult(resp any) Result {
	w := wire.NewWriter(0)
	if err := wire.WriteObject(wire.Default, resp, w); err != nil {
		return Result{Err: err}
	}
	return Result{Body: w.Bytes()}
}
