// Package logging configures log/slog for the server and CLI and carries
// request and batch identifiers through context so every log line of one
// import or generation run can be correlated.
//
// This package integrates with chi's RequestID middleware for HTTP requests.
// The CLI has no request id, so batch ids are the only correlation key there.
//
// Fields added by FromContext:
//   - request_id: chi request id, set by middleware.RequestID
//   - batch_id: import or generation batch id, set by WithBatchID
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
)

type ctxKey int

const batchIDKey ctxKey = iota

// Setup installs the default slog logger writing to stdout.
//
// Level values: "debug", "info", "warn", "error" (default: "info")
// Format values: "text", "json" (default: "text")
//
// Use "json" format in production for machine parsing (ELK, CloudWatch, etc.)
// Use "text" format in development for human readability.
func Setup(level, format string) {
	SetupWriter(os.Stdout, level, format)
}

// SetupWriter is Setup with an explicit destination. The CLI logs to stderr
// so stdout stays free for command output.
//
// Usage:
//
//	logging.SetupWriter(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)
func SetupWriter(w io.Writer, level, format string) {
	opts := &slog.HandlerOptions{
		Level: parseLevel(level),
	}

	var handler slog.Handler
	if strings.ToLower(format) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	slog.SetDefault(slog.New(handler))
}

// parseLevel converts a string log level to slog.Level.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithBatchID returns a context tagged with the id of an import or
// generation batch. Loggers built from the returned context carry batch_id.
//
// Usage:
//
//	batchID := uuid.NewString()
//	ctx = logging.WithBatchID(ctx, batchID)
//	logging.FromContext(ctx).Info("import started", "rows", len(records))
func WithBatchID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, batchIDKey, id)
}

// BatchID returns the batch id stored by WithBatchID, if any.
func BatchID(ctx context.Context) string {
	id, _ := ctx.Value(batchIDKey).(string)
	return id
}

// FromContext returns the default logger enriched with the chi request id
// and batch id found in ctx.
//
// An HTTP import carries both ids, so its row log lines can be traced back to
// the request that uploaded the sheet. Missing ids are simply left out.
//
// Usage:
//
//	logger := logging.FromContext(r.Context())
//	logger.Info("export written", "vendor", name, "rows", n)
func FromContext(ctx context.Context) *slog.Logger {
	logger := slog.Default()

	// Chi's RequestID middleware stores the ID in context
	if reqID := middleware.GetReqID(ctx); reqID != "" {
		logger = logger.With("request_id", reqID)
	}
	if batchID := BatchID(ctx); batchID != "" {
		logger = logger.With("batch_id", batchID)
	}

	return logger
}

// WithFields returns FromContext(ctx) with additional structured fields.
//
// This is useful for creating operation-specific loggers that carry
// consistent context through a multi-step process.
//
// Usage:
//
//	logger := logging.WithFields(ctx,
//	    "vendor", vendor,
//	    "count", count,
//	)
//	logger.Info("generation started")
//	// ... later ...
//	logger.Info("generation finished", "created", len(products))
func WithFields(ctx context.Context, args ...any) *slog.Logger {
	return FromContext(ctx).With(args...)
}
