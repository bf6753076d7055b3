// Package requestctx carries per-request identity through context so domain
// services can stamp documents and logs without importing the HTTP layer.
package requestctx

import (
	"context"
	"log/slog"
)

type ctxKey int

const (
	requestIDKey ctxKey = iota
	actorKey
)

// SystemActor is reported for work that no signed-in user started.
const SystemActor = "system"

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func GetRequestID(ctx context.Context) string {
	value, _ := ctx.Value(requestIDKey).(string)
	return value
}

// WithActor records who is acting: a user email, or "job:<type>" for
// scheduled work.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

func GetActor(ctx context.Context) string {
	if value, ok := ctx.Value(actorKey).(string); ok && value != "" {
		return value
	}
	return SystemActor
}

// Logger returns the default logger annotated with whatever identity ctx
// carries.
func Logger(ctx context.Context) *slog.Logger {
	logger := slog.Default()
	if id := GetRequestID(ctx); id != "" {
		logger = logger.With("requestId", id)
	}
	if actor, ok := ctx.Value(actorKey).(string); ok && actor != "" {
		logger = logger.With("actor", actor)
	}
	return logger
}
