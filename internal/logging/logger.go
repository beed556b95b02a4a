// Package logging provides the structured logger used across the
// scheduler core and its demo binary.
package logging

import (
	"log/slog"
	"os"

	"github.com/sheerbytes/batchsched/pkg/payload"
)

// New creates a structured logger with text output.
// component: the subsystem name (e.g. "batchbuilder", "demo").
// level: one of "debug", "info", "warn", "error" (default: "info").
func New(component string, level string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: parseLevel(level),
	}
	handler := slog.NewTextHandler(os.Stdout, opts)
	logger := slog.New(handler)

	return logger.With(
		slog.String("component", component),
		slog.Int("pid", os.Getpid()),
	)
}

// WithPayload attaches a Payload's correlation ID and contributed batch
// size as structured attributes, so a single request's lifecycle (queued,
// delayed, rejected, sealed) can be grepped out of a busy log stream.
func WithPayload(logger *slog.Logger, level uint32, p *payload.Payload) *slog.Logger {
	return logger.With(
		slog.String("payload_id", p.ID),
		slog.Uint64("priority_level", uint64(level)),
		slog.Uint64("batch_size", uint64(p.BatchSize)),
	)
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
