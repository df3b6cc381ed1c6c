package observability

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// MeterName is the instrumentation scope of all instruments.
const MeterName = "github.com/hupe1980/agentslush"

// Metrics records topology runs and agent calls.
type Metrics struct {
	runsTotal     metric.Int64Counter
	runDuration   metric.Float64Histogram
	agentCalls    metric.Int64Counter
	agentErrors   metric.Int64Counter
	agentDuration metric.Float64Histogram

	provider *sdkmetric.MeterProvider
	handler  http.Handler
}

// NewMetrics creates Metrics exported through a dedicated Prometheus registry.
func NewMetrics() (*Metrics, error) {
	registry := prometheus.NewRegistry()

	exporter, err := otelprom.New(otelprom.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))

	m, err := NewMetricsFromMeter(provider.Meter(MeterName))
	if err != nil {
		return nil, err
	}

	m.provider = provider
	m.handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return m, nil
}

// NewMetricsFromMeter creates Metrics on an existing meter. Handler returns
// 404 for Metrics built this way.
func NewMetricsFromMeter(meter metric.Meter) (*Metrics, error) {
	runsTotal, err := meter.Int64Counter(
		"agentslush_runs",
		metric.WithDescription("Total topology runs"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create runs counter: %w", err)
	}

	runDuration, err := meter.Float64Histogram(
		"agentslush_run_duration",
		metric.WithDescription("Topology run duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create run duration histogram: %w", err)
	}

	agentCalls, err := meter.Int64Counter(
		"agentslush_agent_calls",
		metric.WithDescription("Total agent calls"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create agent calls counter: %w", err)
	}

	agentErrors, err := meter.Int64Counter(
		"agentslush_agent_errors",
		metric.WithDescription("Total agent errors"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create agent errors counter: %w", err)
	}

	agentDuration, err := meter.Float64Histogram(
		"agentslush_agent_call_duration",
		metric.WithDescription("Agent call duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create agent duration histogram: %w", err)
	}

	return &Metrics{
		runsTotal:     runsTotal,
		runDuration:   runDuration,
		agentCalls:    agentCalls,
		agentErrors:   agentErrors,
		agentDuration: agentDuration,
	}, nil
}

// RecordRun records one finished topology run. kind is graph, chain or broadcast.
func (m *Metrics) RecordRun(ctx context.Context, kind, name, status string, duration time.Duration) {
	if m == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("name", name),
		attribute.String("status", status),
	)

	m.runsTotal.Add(ctx, 1, attrs)
	m.runDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordAgentCall records one agent execution within a topology.
func (m *Metrics) RecordAgentCall(ctx context.Context, agent string, duration time.Duration, err error) {
	if m == nil {
		return
	}

	attrs := metric.WithAttributes(attribute.String("agent", agent))

	m.agentCalls.Add(ctx, 1, attrs)
	m.agentDuration.Record(ctx, duration.Seconds(), attrs)

	if err != nil {
		m.agentErrors.Add(ctx, 1, attrs)
	}
}

// Handler serves the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.handler == nil {
		return http.NotFoundHandler()
	}
	return m.handler
}

// Shutdown flushes and stops the meter provider.
func (m *Metrics) Shutdown(ctx context.Context) error {
	if m == nil || m.provider == nil {
		return nil
	}
	return m.provider.Shutdown(ctx)
}
