// Package logging defines the structured-logging interface used across the
// client. Two implementations are provided: one over log/slog and one over
// zap; New picks between them from configuration.
package logging

import (
	"context"
	"io"
	"log/slog"
	"strings"
)

// Logger is a context-aware, structured logger.
//
// The variadic args are interpreted as key–value pairs, e.g.:
//
//	log.Info(ctx, "page loaded", "resource", "conversations", "page", 2)
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key–value pairs.
	With(args ...any) Logger
}

// Backend names accepted by New.
const (
	BackendSlog = "slog"
	BackendJSON = "json"
	BackendZap  = "zap"
)

// redacted replaces the value of any key in sensitiveKeys.
const redacted = "[redacted]"

var sensitiveKeys = map[string]bool{
	"token":         true,
	"id_token":      true,
	"refresh_token": true,
	"password":      true,
	"authorization": true,
}

// New builds a Logger writing to w. backend is "slog" (text, default),
// "json" (slog JSON) or "zap"; level is one of debug, info, warn, error
// (default info).
func New(backend, level string, w io.Writer) (Logger, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case BackendZap:
		return NewZapLogger(level, w)
	case BackendJSON:
		return NewSlogLogger(slog.New(newSlogHandler(w, level, true))), nil
	default:
		return NewSlogLogger(slog.New(newSlogHandler(w, level, false))), nil
	}
}

// Nop returns a logger that discards everything. Handy for tests and for
// library users that do not care about client logs.
func Nop() Logger {
	return NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// Sync flushes l if its backend buffers entries. Other backends write
// through and return nil.
func Sync(l Logger) error {
	if s, ok := l.(interface{ Sync() error }); ok {
		return s.Sync()
	}
	return nil
}

// redact returns args with the values of sensitive keys masked. args is
// left untouched.
func redact(args []any) []any {
	var out []any
	for i := 0; i+1 < len(args); i += 2 {
		k, ok := args[i].(string)
		if !ok || !sensitiveKeys[strings.ToLower(k)] {
			continue
		}
		if out == nil {
			out = append([]any(nil), args...)
		}
		out[i+1] = redacted
	}
	if out == nil {
		return args
	}
	return out
}
