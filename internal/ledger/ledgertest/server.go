// Package ledgertest runs an in-process ledger gateway for tests. It records
// every request and answers all methods with the same canned reply.
package ledgertest

import (
	"context"
	"fmt"
	"net"
	"sync"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
	"google.golang.org/grpc/test/bufconn"
)

// Target is the dial target to pair with Server.DialOption.
const Target = "passthrough:///ledger"

// Call is one request received by the server.
type Call struct {
	Method  string
	Request []byte
}

// Server is a fake gateway. Set its fields before Start; they are read-only
// afterwards.
type Server struct {
	// Reply is sent for every call that does not fail or block.
	Reply []byte
	// Err, when set, is returned as the call status.
	Err error
	// Block holds each call open until the caller gives up.
	Block bool

	mu    sync.Mutex
	calls []Call
	lis   *bufconn.Listener
}

// Start serves until the test ends.
func (s *Server) Start(t testing.TB) {
	t.Helper()

	s.lis = bufconn.Listen(1 << 20)
	srv := grpc.NewServer(
		grpc.ForceServerCodec(bytesCodec{}),
		grpc.UnknownServiceHandler(s.handle),
	)
	go func() { _ = srv.Serve(s.lis) }()
	t.Cleanup(srv.Stop)
}

// DialOption connects a client to the server.
func (s *Server) DialOption() grpc.DialOption {
	return grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
		return s.lis.DialContext(ctx)
	})
}

// Calls returns the requests received so far.
func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

func (s *Server) handle(_ any, stream grpc.ServerStream) error {
	method, _ := grpc.MethodFromServerStream(stream)

	var req []byte
	if err := stream.RecvMsg(&req); err != nil {
		return err
	}

	s.mu.Lock()
	s.calls = append(s.calls, Call{Method: method, Request: req})
	s.mu.Unlock()

	if s.Block {
		<-stream.Context().Done()
		return stream.Context().Err()
	}
	if s.Err != nil {
		return s.Err
	}
	reply := s.Reply
	return stream.SendMsg(&reply)
}

// bytesCodec moves messages as raw bytes, leaving the schema to the caller.
type bytesCodec struct{}

var _ encoding.Codec = bytesCodec{}

func (bytesCodec) Marshal(v any) ([]byte, error) {
	b, ok := v.(*[]byte)
	if !ok {
		return nil, fmt.Errorf("ledgertest: unexpected message type %T", v)
	}
	return *b, nil
}

func (bytesCodec) Unmarshal(data []byte, v any) error {
	b, ok := v.(*[]byte)
	if !ok {
		return fmt.Errorf("ledgertest: unexpected message type %T", v)
	}
	*b = append((*b)[:0], data...)
	return nil
}

func (bytesCodec) Name() string {
	return "proto"
}
