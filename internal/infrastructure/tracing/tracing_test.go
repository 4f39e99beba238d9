package tracing

import (
	"context"
	"testing"

	"github.com/hilthontt/chatroom/internal/infrastructure/configs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitTracer_Disabled(t *testing.T) {
	shutdown, err := InitTracer(context.Background(), configs.TracingConfig{Enabled: false})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))

	_, span := GetTracer("test").Start(context.Background(), "noop")
	assert.False(t, span.SpanContext().IsValid())
	span.End()
}

func TestInitTracer_Enabled(t *testing.T) {
	shutdown, err := InitTracer(context.Background(), configs.TracingConfig{
		Enabled:     true,
		ServiceName: "chatroom-test",
		Environment: "test",
		Endpoint:    "http://127.0.0.1:4318/v1/traces",
	})
	require.NoError(t, err)

	_, span := GetTracer("test").Start(context.Background(), "op")
	assert.True(t, span.SpanContext().IsValid())
	span.End()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = shutdown(ctx)
}
