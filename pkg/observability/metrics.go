package observability

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	ServiceName string
}

// InitMetrics initializes an OpenTelemetry MeterProvider backed by a
// dedicated Prometheus registry and returns the /metrics handler for it.
func InitMetrics(cfg MetricsConfig) (*sdkmetric.MeterProvider, http.Handler, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	exporter, err := promexporter.New(
		promexporter.WithRegisterer(registry),
		promexporter.WithNamespace(sanitizeNamespace(cfg.ServiceName)),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("create prometheus exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
	)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})

	return provider, handler, nil
}

func sanitizeNamespace(name string) string {
	out := []rune(name)
	for i, r := range out {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '_') {
			out[i] = '_'
		}
	}
	return string(out)
}

// AssessmentMetrics records scoring calls as OpenTelemetry instruments.
type AssessmentMetrics struct {
	calls    metric.Int64Counter
	duration metric.Float64Histogram
	scores   metric.Float64Histogram
}

// NewAssessmentMetrics creates the scoring instruments on meter.
func NewAssessmentMetrics(meter metric.Meter) (*AssessmentMetrics, error) {
	calls, err := meter.Int64Counter("assessments",
		metric.WithDescription("Scoring calls by operation and outcome."))
	if err != nil {
		return nil, err
	}
	duration, err := meter.Float64Histogram("assessment_duration",
		metric.WithDescription("Scoring latency."),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}
	scores, err := meter.Float64Histogram("subjectivity_score",
		metric.WithDescription("Distribution of subjectivity percentages."),
		metric.WithExplicitBucketBoundaries(10, 20, 30, 40, 50, 60, 70, 80, 90, 100))
	if err != nil {
		return nil, err
	}

	return &AssessmentMetrics{calls: calls, duration: duration, scores: scores}, nil
}

// RecordAssessment records one scoring call.
func (m *AssessmentMetrics) RecordAssessment(ctx context.Context, operation string, subjectivity float64, elapsed time.Duration, err error) {
	outcome := "ok"
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		outcome = "canceled"
	case err != nil:
		outcome = "error"
	}

	attrs := metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("outcome", outcome),
	)
	m.calls.Add(ctx, 1, attrs)
	m.duration.Record(ctx, elapsed.Seconds(), attrs)
	if err == nil {
		m.scores.Record(ctx, subjectivity, metric.WithAttributes(attribute.String("operation", operation)))
	}
}
