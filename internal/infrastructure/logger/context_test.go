package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestFromContext(t *testing.T) {
	assert.Same(t, zap.L(), FromContext(context.Background()))

	l := zap.NewExample()
	assert.Same(t, l, FromContext(WithContext(context.Background(), l)))
}

func TestContextIDs(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetRequestID(ctx))
	_, ok := GetClientID(ctx)
	assert.False(t, ok)

	ctx = WithClientID(WithRequestID(ctx, "req-9"), 42)
	assert.Equal(t, "req-9", GetRequestID(ctx))
	clientID, ok := GetClientID(ctx)
	assert.True(t, ok)
	assert.Equal(t, int64(42), clientID)
}

func TestContextLogger_Enriches(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	tp := sdktrace.NewTracerProvider()
	ctx, span := tp.Tracer("test").Start(context.Background(), "render")
	defer span.End()

	ctx = WithContext(ctx, zap.New(core))
	ctx = WithClientID(WithRequestID(ctx, "req-1"), 7)

	L(ctx).With(zap.Int64("report_id", 3)).Warn("Failed to render report summary")

	require.Equal(t, 1, recorded.Len())
	entry := recorded.All()[0]
	assert.Equal(t, zapcore.WarnLevel, entry.Level)
	fields := entry.ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "7", fields["client_id"])
	assert.Equal(t, int64(3), fields["report_id"])
	assert.Equal(t, span.SpanContext().TraceID().String(), fields["trace_id"])
	assert.Equal(t, span.SpanContext().SpanID().String(), fields["span_id"])
}

func TestContextLogger_NilLogger(t *testing.T) {
	assert.NotPanics(t, func() {
		WithLogger(context.Background(), nil).Error("dropped")
	})
}
