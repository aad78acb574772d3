package tracing

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"github.com/sabucaps/brazilian/internal/infrastructure/config"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestSetupDisabled(t *testing.T) {
	before := otel.GetTracerProvider()
	shutdown, err := setup(&config.Config{}, quietLogger(), io.Discard)
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
	assert.Equal(t, before, otel.GetTracerProvider())
}

func TestSetupExportsSpans(t *testing.T) {
	var buf bytes.Buffer
	cfg := &config.Config{Tracing: config.TracingConfig{Enabled: true, ServiceName: "progress-test"}}
	shutdown, err := setup(cfg, quietLogger(), &buf)
	require.NoError(t, err)

	_, span := otel.Tracer("test").Start(context.Background(), "ReviewWord")
	span.End()
	require.NoError(t, shutdown(context.Background()))

	assert.Contains(t, buf.String(), "ReviewWord")
	assert.Contains(t, buf.String(), "progress-test")
}
