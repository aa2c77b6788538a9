package domain

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	m "muton.dev/pkg/muton/internal/model"
)

const instrumentationName = "muton.domain"

// Telemetry holds the tracer and instruments a controller records into.
type Telemetry struct {
	tracer          trace.Tracer
	mutantsTotal    metric.Int64Counter
	mutantDuration  metric.Float64Histogram
	baselineRuns    metric.Int64Counter
	coverageLatency metric.Float64Histogram
}

// NewTelemetry creates the instruments from the given providers.
func NewTelemetry(mp metric.MeterProvider, tp trace.TracerProvider) (*Telemetry, error) {
	meter := mp.Meter(instrumentationName)
	t := &Telemetry{tracer: tp.Tracer(instrumentationName)}

	var err error

	t.mutantsTotal, err = meter.Int64Counter(
		"muton_mutants_total",
		metric.WithDescription("Mutants tested, by outcome"),
	)
	if err != nil {
		return nil, err
	}

	t.mutantDuration, err = meter.Float64Histogram(
		"muton_mutant_duration_seconds",
		metric.WithDescription("Time spent building and testing one mutant"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	t.baselineRuns, err = meter.Int64Counter(
		"muton_baseline_runs_total",
		metric.WithDescription("Baseline suite runs, by result"),
	)
	if err != nil {
		return nil, err
	}

	t.coverageLatency, err = meter.Float64Histogram(
		"muton_coverage_duration_seconds",
		metric.WithDescription("Time spent collecting coverage of one target"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return t, nil
}

// globalTelemetry records into the providers installed with otel.Set*.
// Without installed providers every record is discarded.
func globalTelemetry() *Telemetry {
	t, err := NewTelemetry(otel.GetMeterProvider(), otel.GetTracerProvider())
	if err != nil {
		slog.Error("Failed to create telemetry instruments", "error", err)

		t, _ = NewTelemetry(metricnoop.NewMeterProvider(), tracenoop.NewTracerProvider())
	}

	return t
}

func (t *Telemetry) startMutantSpan(ctx context.Context, mutant m.Mutant) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "MutationController.testMutant",
		trace.WithAttributes(
			attribute.Int("mutant.number", mutant.Number),
			attribute.String("mutant.file", string(mutant.File)),
			attribute.StringSlice("mutant.operators", mutant.Operators()),
		),
	)
}

func setMutantSpanResult(span trace.Span, status m.Status, testsRun int) {
	span.SetAttributes(
		attribute.String("mutant.status", status.String()),
		attribute.Int("mutant.tests_run", testsRun),
	)
}

func (t *Telemetry) recordMutant(ctx context.Context, status m.Status, duration time.Duration) {
	attrs := metric.WithAttributes(attribute.String("status", status.String()))

	t.mutantsTotal.Add(ctx, 1, attrs)
	t.mutantDuration.Record(ctx, duration.Seconds(), attrs)
}

func (t *Telemetry) recordBaseline(ctx context.Context, suite string, passed bool) {
	t.baselineRuns.Add(ctx, 1, metric.WithAttributes(
		attribute.String("suite", suite),
		attribute.Bool("passed", passed),
	))
}

func (t *Telemetry) recordCoverage(ctx context.Context, target m.Target, duration time.Duration) {
	t.coverageLatency.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("package", target.Package),
	))
}
