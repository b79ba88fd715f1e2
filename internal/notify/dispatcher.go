package notify

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/ishihatta/HamiotFirebase/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Gateway delivers a push to a device and returns the provider's message id.
type Gateway interface {
	Send(ctx context.Context, push Push) (string, error)
}

// Dispatcher sends messages in the background. Outcomes are logged and
// counted; they are never reported back to the caller.
type Dispatcher struct {
	gateway Gateway
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewDispatcher returns a dispatcher bounding each send by timeout.
func NewDispatcher(gateway Gateway, timeout time.Duration) *Dispatcher {
	return &Dispatcher{gateway: gateway, timeout: timeout}
}

// Dispatch starts one goroutine per message and returns immediately. The
// sends outlive ctx's cancellation but keep its trace.
func (d *Dispatcher) Dispatch(ctx context.Context, msgs []Message) {
	ctx = context.WithoutCancel(ctx)
	for _, msg := range msgs {
		msg := msg
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			d.send(ctx, msg)
		}()
	}
}

// Wait blocks until every dispatched send has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) send(ctx context.Context, msg Message) {
	ctx, span := telemetry.Tracer.Start(ctx, "notify.Send",
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			attribute.String("notification.type", string(msg.Type)),
			attribute.String("notification.opponent", msg.OpponentAccountID),
		),
	)
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "panic in notification send",
				"type", msg.Type, "panic", fmt.Sprint(r), "stack", string(debug.Stack()))
			telemetry.NotificationsTotal.WithLabelValues(string(msg.Type), "failed").Inc()
			span.SetStatus(codes.Error, "panic")
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	id, err := d.gateway.Send(ctx, msg.Push())
	if err != nil {
		slog.WarnContext(ctx, "failed to send notification",
			"type", msg.Type, "opponent_account_id", msg.OpponentAccountID, "error", err)
		telemetry.NotificationsTotal.WithLabelValues(string(msg.Type), "failed").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "send failed")
		return
	}

	slog.InfoContext(ctx, "notification sent",
		"type", msg.Type, "opponent_account_id", msg.OpponentAccountID, "message_id", id)
	telemetry.NotificationsTotal.WithLabelValues(string(msg.Type), "sent").Inc()
	span.SetStatus(codes.Ok, "")
}
