// Package rpcserver implements the TCP accept loop and per-connection
// worker described in spec §4.5: one goroutine per accepted connection,
// dispatching frames into a service.Registry.
package rpcserver

import (
	"context"
	"encoding/binary"
	"errors"
	"io"
	"net"
	"sync"
	"unicode"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"bitrpc/rpc"
	"bitrpc/rpc/service"
)

// Server accepts TCP connections and dispatches framed requests into a
// service.Registry.
type Server struct {
	registry *service.Registry
	log      *zap.Logger

	mu       sync.Mutex
	listener net.Listener
	closed   bool
}

// New returns a Server dispatching into registry. A nil logger disables
// logging (zap.NewNop), matching how the teacher's log.Printf calls are
// unconditional but here can be silenced by the caller.
func New(registry *service.Registry, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{registry: registry, log: log}
}

// Serve runs the accept loop on lis until Stop is called or Accept returns
// a non-recoverable error. It blocks until the listener closes.
func (s *Server) Serve(lis net.Listener) error {
	s.mu.Lock()
	s.listener = lis
	s.mu.Unlock()

	for {
		conn, err := lis.Accept()
		if err != nil {
			s.mu.Lock()
			stopped := s.closed
			s.mu.Unlock()
			if stopped {
				return nil
			}
			s.log.Error("rpc server: accept error", zap.Error(err))
			return err
		}
		connID := uuid.New().String()
		s.log.Info("rpc server: connection accepted",
			zap.String("remote", conn.RemoteAddr().String()), zap.String("conn_id", connID))
		go s.serveConn(conn, connID)
	}
}

// Stop closes the listener, unblocking Serve's Accept call. Per-connection
// workers are not joined: they observe a broken read on their own socket
// and exit independently, matching the teacher's fire-and-forget
// ServeConn goroutines.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.listener == nil {
		s.closed = true
		return nil
	}
	s.closed = true
	return s.listener.Close()
}

func (s *Server) serveConn(conn net.Conn, connID string) {
	remote := conn.RemoteAddr().String()
	defer func() {
		_ = conn.Close()
		s.log.Info("rpc server: connection closed", zap.String("remote", remote), zap.String("conn_id", connID))
	}()

	for {
		if err := s.serveOneRequest(conn, connID); err != nil {
			if !isExpectedCloseErr(err) {
				s.log.Warn("rpc server: connection terminated",
					zap.String("remote", remote), zap.String("conn_id", connID), zap.Error(err))
			}
			return
		}
	}
}

func isExpectedCloseErr(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, net.ErrClosed)
}

// serveOneRequest implements the per-request worker loop of spec §4.5: read
// the request frame, parse the method name, dispatch, and write the
// response frame(s). Any I/O error reading or writing is returned to the
// caller, which closes the connection (spec §4.2: "any later I/O error
// closes the connection"). A resolvable-but-unknown method produces an
// empty response frame instead, and the connection stays open.
func (s *Server) serveOneRequest(conn net.Conn, connID string) error {
	payload, err := rpc.ReadFrame(conn)
	if err != nil {
		return err
	}

	methodName, reqBody, malformed := splitNameAndBody(payload)
	if malformed {
		s.log.Warn("rpc server: malformed request frame", zap.String("conn_id", connID))
		return rpc.WriteFrame(conn, nil)
	}

	result := s.registry.Dispatch(context.Background(), methodName, reqBody)

	if result.Err != nil {
		s.log.Warn("rpc server: dispatch failed",
			zap.String("method", methodName), zap.String("conn_id", connID), zap.Error(result.Err))
		return rpc.WriteFrame(conn, nil)
	}

	if result.Stream != nil {
		return s.writeStream(conn, result.Stream)
	}
	return rpc.WriteFrame(conn, result.Body)
}

func (s *Server) writeStream(conn net.Conn, iter service.FrameIterator) error {
	for {
		frame, ok, err := iter.Next()
		if err != nil {
			s.log.Warn("rpc server: stream iterator error", zap.Error(err))
			break
		}
		if !ok {
			break
		}
		if err := rpc.WriteFrame(conn, frame); err != nil {
			return err
		}
	}
	return rpc.WriteStreamTerminator(conn)
}

// splitNameAndBody extracts the method name from a request payload using
// the length-prefixed form (spec §4.3: int32 name_len + name bytes),
// requiring a strictly positive length whose name bytes are all printable
// ASCII. Anything else falls back to the legacy ASCII-prefix parser (spec
// §4.5) before giving up.
func splitNameAndBody(payload []byte) (method string, body []byte, malformed bool) {
	if len(payload) >= 4 {
		n := int32(binary.LittleEndian.Uint32(payload[:4]))
		if n > 0 && 4+int(n) <= len(payload) && isPrintableASCII(payload[4:4+n]) {
			return string(payload[4 : 4+n]), payload[4+n:], false
		}
	}
	return asciiPrefixMethod(payload)
}

// isPrintableASCII reports whether every byte of data is a printable ASCII
// character (0x20-0x7E), matching the original's is_printable_ascii.
func isPrintableASCII(data []byte) bool {
	for _, c := range data {
		if c < 32 || c > 126 {
			return false
		}
	}
	return true
}

// asciiPrefixMethod implements the legacy fallback parser: take the
// printable-ASCII prefix of payload as the method name, the remainder is
// the request body.
func asciiPrefixMethod(payload []byte) (method string, body []byte, malformed bool) {
	i := 0
	for i < len(payload) && payload[i] < 0x80 && unicode.IsPrint(rune(payload[i])) {
		i++
	}
	if i == 0 {
		return "", nil, true
	}
	return string(payload[:i]), payload[i:], false
}
