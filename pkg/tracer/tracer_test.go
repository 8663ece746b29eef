package tracer

import (
	"context"
	"testing"

	"appointment-service/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestInit_DisabledStillProvidesTracer(t *testing.T) {
	tp, err := Init(context.Background(), config.TracingConfig{Enabled: false, ServiceName: "test"})
	require.NoError(t, err)
	defer tp.Shutdown(context.Background())

	_, span := otel.Tracer("test").Start(context.Background(), "op")
	defer span.End()
	assert.False(t, span.SpanContext().IsSampled())
}
