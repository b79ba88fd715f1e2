package telemetry

import (
	"context"
	"io"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel/trace"
)

// TracingHandler wraps slog.Handler to add trace context
type TracingHandler struct {
	handler slog.Handler
}

// NewTracingHandler creates a new tracing-aware log handler
func NewTracingHandler(w io.Writer, opts *slog.HandlerOptions) *TracingHandler {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}
	return &TracingHandler{
		handler: slog.NewJSONHandler(w, opts),
	}
}

// Enabled implements slog.Handler
func (h *TracingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle implements slog.Handler
func (h *TracingHandler) Handle(ctx context.Context, record slog.Record) error {
	spanCtx := trace.SpanContextFromContext(ctx)
	if spanCtx.IsValid() {
		record.AddAttrs(
			slog.String("trace_id", spanCtx.TraceID().String()),
			slog.String("span_id", spanCtx.SpanID().String()),
		)
	}
	return h.handler.Handle(ctx, record)
}

// WithAttrs implements slog.Handler
func (h *TracingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &TracingHandler{handler: h.handler.WithAttrs(attrs)}
}

// WithGroup implements slog.Handler
func (h *TracingHandler) WithGroup(name string) slog.Handler {
	return &TracingHandler{handler: h.handler.WithGroup(name)}
}

// NewLogger builds the trace-aware JSON logger tagged with the service name.
func NewLogger(w io.Writer, serviceName string, level slog.Level) *slog.Logger {
	handler := NewTracingHandler(w, &slog.HandlerOptions{
		Level: level,
	})
	return slog.New(handler).With(
		slog.String("service", serviceName),
	)
}

// InitLogger installs the logger as the process default. Packages log through
// slog's package-level functions.
func InitLogger(serviceName string, level slog.Level) {
	slog.SetDefault(NewLogger(os.Stdout, serviceName, level))
}

// ParseLevel maps a config string to a slog level, defaulting to info.
func ParseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}
