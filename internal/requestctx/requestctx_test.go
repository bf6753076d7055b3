package requestctx

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestIDRoundTrip(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")
	assert.Equal(t, "req-1", GetRequestID(ctx))
	assert.Empty(t, GetRequestID(context.Background()))
}

func TestActorDefaultsToSystem(t *testing.T) {
	assert.Equal(t, SystemActor, GetActor(context.Background()))
	assert.Equal(t, SystemActor, GetActor(WithActor(context.Background(), "")))
	assert.Equal(t, "kasir@c2.local", GetActor(WithActor(context.Background(), "kasir@c2.local")))
}

func TestLoggerCarriesIdentity(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	ctx := WithActor(WithRequestID(context.Background(), "req-7"), "job:invoice_overdue")
	Logger(ctx).Info("swept")
	assert.Contains(t, buf.String(), "requestId=req-7")
	assert.Contains(t, buf.String(), "actor=job:invoice_overdue")

	buf.Reset()
	Logger(context.Background()).Info("idle")
	assert.NotContains(t, buf.String(), "requestId")
	assert.NotContains(t, buf.String(), "actor")
}
