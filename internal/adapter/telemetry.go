package adapter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	m "muton.dev/pkg/muton/internal/model"
)

// Telemetry exporters.
const (
	ExporterNone   = "none"
	ExporterStdout = "stdout"
	ExporterFile   = "file"
)

// ErrUnknownExporter is returned for an exporter name InitTelemetry does not know.
var ErrUnknownExporter = errors.New("unknown telemetry exporter")

// TelemetryConfig selects where spans and metrics of a run go.
type TelemetryConfig struct {
	// Exporter is one of ExporterNone, ExporterStdout or ExporterFile.
	Exporter string
	// Path is written by ExporterFile, one JSON document per export.
	Path    m.Path
	Version string
}

// InitTelemetry installs the global otel tracer and meter providers. The
// returned shutdown flushes pending spans and metrics and must be called.
func InitTelemetry(cfg TelemetryConfig) (func(context.Context) error, error) {
	var (
		out    io.Writer
		closer io.Closer
	)

	switch cfg.Exporter {
	case "", ExporterNone:
		return func(context.Context) error { return nil }, nil
	case ExporterStdout:
		out = os.Stdout
	case ExporterFile:
		file, err := os.Create(string(cfg.Path))
		if err != nil {
			return nil, fmt.Errorf("failed to create telemetry file: %w", err)
		}

		out, closer = file, file
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownExporter, cfg.Exporter)
	}

	res := resource.NewWithAttributes("",
		attribute.String("service.name", "muton"),
		attribute.String("service.version", cfg.Version),
	)

	spanExporter, err := stdouttrace.New(stdouttrace.WithWriter(out))
	if err != nil {
		return nil, fmt.Errorf("failed to create span exporter: %w", err)
	}

	metricExporter, err := stdoutmetric.New(stdoutmetric.WithWriter(out))
	if err != nil {
		return nil, fmt.Errorf("failed to create metric exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(spanExporter),
		sdktrace.WithResource(res),
	)
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter)),
		sdkmetric.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)

	shutdown := func(ctx context.Context) error {
		errs := []error{tp.Shutdown(ctx), mp.Shutdown(ctx)}
		if closer != nil {
			errs = append(errs, closer.Close())
		}

		return errors.Join(errs...)
	}

	return shutdown, nil
}
