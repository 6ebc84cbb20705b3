// Package slogctx carries a *slog.Logger through a context.Context, so
// library code logs with whatever logger the caller configured without
// threading one through every signature.
package slogctx

import (
	"context"
	"log/slog"
)

type _ctxKey struct{}

// ContextWithLogger returns a new context carrying the given logger.
func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, _ctxKey{}, logger)
}

// FromContext returns the logger stored in ctx, or slog.Default() if none.
func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(_ctxKey{}).(*slog.Logger); ok && l != nil {
		return l
	}
	return slog.Default()
}

// With returns a context whose carried logger has the given attributes
// appended, scoping downstream log lines to one operation.
func With(ctx context.Context, args ...any) context.Context {
	return ContextWithLogger(ctx, FromContext(ctx).With(args...))
}
