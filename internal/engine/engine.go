package engine

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/ishihatta/HamiotFirebase/internal/directory"
	"github.com/ishihatta/HamiotFirebase/internal/notify"
	"github.com/ishihatta/HamiotFirebase/internal/telemetry"
	"github.com/ishihatta/HamiotFirebase/internal/transfer"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Submitter hands a serialized transaction to the ledger.
type Submitter interface {
	Submit(ctx context.Context, raw []byte) error
}

// TransferEngine runs the transfer pipeline: validate, submit, then notify
// both parties in the background. It holds no per-request state and is safe
// for concurrent use.
type TransferEngine struct {
	validator  *transfer.Validator
	submitter  Submitter
	directory  directory.Directory
	dispatcher *notify.Dispatcher

	wg sync.WaitGroup
}

// NewTransferEngine wires the pipeline from long-lived client handles.
func NewTransferEngine(validator *transfer.Validator, submitter Submitter, dir directory.Directory, dispatcher *notify.Dispatcher) *TransferEngine {
	return &TransferEngine{
		validator:  validator,
		submitter:  submitter,
		directory:  dir,
		dispatcher: dispatcher,
	}
}

// TransferAsset validates and submits a client-signed transfer transaction.
// The result is final once submission returns: attribute lookups and
// notifications continue after TransferAsset has returned and cannot change
// the outcome.
func (e *TransferEngine) TransferAsset(ctx context.Context, raw []byte) Result {
	start := time.Now()
	ctx, span := telemetry.Tracer.Start(ctx, "engine.TransferAsset",
		trace.WithAttributes(attribute.Int("ledger.tx_size", len(raw))),
	)
	defer span.End()

	result := e.run(ctx, span, raw)

	telemetry.TransfersTotal.WithLabelValues(string(result.State)).Inc()
	telemetry.TransferProcessingDuration.Observe(time.Since(start).Seconds())
	span.SetAttributes(attribute.String("transfer.state", string(result.State)))
	if result.Status == StatusOK {
		span.SetStatus(codes.Ok, "")
	} else {
		span.SetStatus(codes.Error, result.Detail)
	}
	return result
}

func (e *TransferEngine) run(ctx context.Context, span trace.Span, raw []byte) Result {
	transition(ctx, span, StateReceived)

	tx, err := transfer.Decode(raw)
	if err != nil {
		return e.rejectValidation(ctx, err)
	}
	transition(ctx, span, StateDecoded)

	params, err := e.validator.Extract(tx)
	if err != nil {
		return e.rejectValidation(ctx, err)
	}
	span.SetAttributes(
		attribute.String("transfer.src", params.SrcAccountID),
		attribute.String("transfer.dest", params.DestAccountID),
		attribute.String("transfer.amount", params.Amount),
	)
	transition(ctx, span, StateValidated)

	if err := e.submitter.Submit(ctx, raw); err != nil {
		span.RecordError(err)
		slog.WarnContext(ctx, "transfer submission failed", "error", err)
		return ng(StateRejectedSubmission, err.Error())
	}
	transition(ctx, span, StateSubmitted)

	e.wg.Add(1)
	telemetry.BackgroundTasksInFlight.Inc()
	go e.notifyParties(context.WithoutCancel(ctx), params)

	return ok(StateCompleted)
}

func (e *TransferEngine) rejectValidation(ctx context.Context, err error) Result {
	telemetry.ValidationFailuresTotal.WithLabelValues(transfer.Reason(err)).Inc()
	slog.InfoContext(ctx, "transfer rejected", "reason", transfer.Reason(err), "error", err)
	return ng(StateRejectedValidation, err.Error())
}

// notifyParties resolves both parties' attributes and dispatches whatever
// notifications they allow. Everything here is best effort.
func (e *TransferEngine) notifyParties(ctx context.Context, params transfer.Parameters) {
	defer e.wg.Done()
	defer telemetry.BackgroundTasksInFlight.Dec()
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "panic while notifying transfer parties",
				"panic", fmt.Sprint(r), "stack", string(debug.Stack()))
		}
	}()

	ctx, span := telemetry.Tracer.Start(ctx, "engine.notifyParties")
	defer span.End()
	transition(ctx, span, StateNotifying)

	parties := directory.ResolveParties(ctx, e.directory, params.SrcAccountID, params.DestAccountID)
	msgs := notify.BuildMessages(params, parties)
	recordSkipped(msgs)

	span.SetAttributes(attribute.Int("notification.count", len(msgs)))
	e.dispatcher.Dispatch(ctx, msgs)
}

func recordSkipped(msgs []notify.Message) {
	built := make(map[notify.MessageType]bool, len(msgs))
	for _, m := range msgs {
		built[m.Type] = true
	}
	for _, t := range []notify.MessageType{notify.TypeReceiveAsset, notify.TypeSentAsset} {
		if !built[t] {
			telemetry.NotificationsTotal.WithLabelValues(string(t), "skipped").Inc()
		}
	}
}

func transition(ctx context.Context, span trace.Span, s State) {
	span.AddEvent("state", trace.WithAttributes(attribute.String("transfer.state", string(s))))
	slog.DebugContext(ctx, "transfer state", "state", s)
}

// Wait blocks until all background notification work has finished. Call it
// during shutdown after the HTTP server has stopped accepting requests.
func (e *TransferEngine) Wait() {
	e.wg.Wait()
	e.dispatcher.Wait()
}
