package tracing

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/sabucaps/brazilian/internal/infrastructure/config"
)

const defaultServiceName = "brazilian"

// Setup installs the global tracer provider. With tracing disabled the
// global no-op provider stays in place and the returned shutdown does nothing.
func Setup(cfg *config.Config, logger logrus.FieldLogger) (func(context.Context) error, error) {
	return setup(cfg, logger, os.Stderr)
}

func setup(cfg *config.Config, logger logrus.FieldLogger, out io.Writer) (func(context.Context) error, error) {
	noop := func(context.Context) error { return nil }
	if !cfg.Tracing.Enabled {
		return noop, nil
	}

	serviceName := strings.TrimSpace(cfg.Tracing.ServiceName)
	if serviceName == "" {
		serviceName = defaultServiceName
	}

	exporter, err := stdouttrace.New(stdouttrace.WithWriter(out))
	if err != nil {
		return noop, err
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewSchemaless(
			attribute.String("service.name", serviceName),
		)),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	logger.WithField("service", serviceName).Info("tracing initialized with stdout exporter")
	return tp.Shutdown, nil
}
