package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ishihatta/HamiotFirebase/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
)

// ErrSubmissionFailed covers every way a transaction can fail to reach the
// ledger: connection failure, timeout and rejection by the gateway.
var ErrSubmissionFailed = errors.New("failed to send transaction")

// Options bound the calls made by a Client.
type Options struct {
	SubmitTimeout time.Duration
	QueryTimeout  time.Duration
}

// Client talks to the ledger's command and query services over one shared
// gRPC connection. It is safe for concurrent use.
type Client struct {
	conn *grpc.ClientConn
	opts Options
}

// Dial creates a client for the gateway at address. The connection is
// established lazily on the first call.
func Dial(address string, opts Options, dialOpts ...grpc.DialOption) (*Client, error) {
	dialOpts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	}, dialOpts...)

	conn, err := grpc.NewClient(address, dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create ledger connection: %w", err)
	}
	return &Client{conn: conn, opts: opts}, nil
}

// Submit forwards a serialized transaction to the ledger for consensus. A nil
// error means the gateway accepted it; commitment is not observed. Submit
// never retries.
func (c *Client) Submit(ctx context.Context, raw []byte) error {
	ctx, span := telemetry.Tracer.Start(ctx, "ledger.Submit",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("rpc.method", toriiMethod),
			attribute.Int("ledger.tx_size", len(raw)),
		),
	)
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, c.opts.SubmitTimeout)
	defer cancel()

	err := c.invoke(ctx, "torii", toriiMethod, raw, &frame{})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "submit failed")
		return fmt.Errorf("%w: %w", ErrSubmissionFailed, err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// Query sends a signed query and returns the serialized QueryResponse.
func (c *Client) Query(ctx context.Context, query []byte) ([]byte, error) {
	ctx, span := telemetry.Tracer.Start(ctx, "ledger.Query",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("rpc.method", findMethod)),
	)
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, c.opts.QueryTimeout)
	defer cancel()

	var reply frame
	if err := c.invoke(ctx, "find", findMethod, query, &reply); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "query failed")
		return nil, fmt.Errorf("failed to query ledger: %w", err)
	}
	return reply.b, nil
}

func (c *Client) invoke(ctx context.Context, name, method string, req []byte, reply *frame) error {
	start := time.Now()
	err := c.conn.Invoke(ctx, method, &frame{b: req}, reply, grpc.ForceCodec(rawCodec{}))

	telemetry.LedgerCallDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	telemetry.LedgerCallsTotal.WithLabelValues(name, status.Code(err).String()).Inc()
	return err
}

// Close tears down the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}
