package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestSetup_SinEndpointSoloPropagador(t *testing.T) {
	shutdown, err := Setup(context.Background(), Config{ServiceName: "retail-stock-api"})
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))

	fields := otel.GetTextMapPropagator().Fields()
	assert.Contains(t, fields, "traceparent")
	assert.Contains(t, fields, "baggage")
}

func TestSetup_ConEndpointInstalaProveedor(t *testing.T) {
	shutdown, err := Setup(context.Background(), Config{
		Endpoint:    "localhost:4318",
		Insecure:    true,
		ServiceName: "retail-stock-api",
		SampleRatio: 0.5,
	})
	require.NoError(t, err)

	_, span := otel.Tracer("test").Start(context.Background(), "op")
	assert.True(t, span.SpanContext().IsValid())
	span.End()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = shutdown(ctx)
}
