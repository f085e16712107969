package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

type ctxKey struct{}

// New creates a slog.Logger writing to stdout.
// format "json" is meant for production log aggregation, anything else gives text output.
// Every record carries the request_id stored by WithRequestID when one is present.
func New(level, format string) *slog.Logger {
	return NewWithWriter(os.Stdout, level, format)
}

func NewWithWriter(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		opts.AddSource = true
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(&requestContextHandler{handler: handler})
}

// WithRequestID stores the request id used to correlate log lines of one request.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, requestID)
}

// RequestID returns the request id stored in ctx, or "".
func RequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelDebug
	}
}

// requestContextHandler wraps any slog.Handler to add request_id from the context
type requestContextHandler struct {
	handler slog.Handler
}

func (h *requestContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

func (h *requestContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if id := RequestID(ctx); id != "" {
		r.AddAttrs(slog.String("request_id", id))
	}
	return h.handler.Handle(ctx, r)
}

func (h *requestContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &requestContextHandler{handler: h.handler.WithAttrs(attrs)}
}

func (h *requestContextHandler) WithGroup(name string) slog.Handler {
	return &requestContextHandler{handler: h.handler.WithGroup(name)}
}
