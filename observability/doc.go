// Package observability provides OpenTelemetry metrics and tracing for the
// orchestrators.
//
// Metrics are recorded through otel instruments backed by the Prometheus
// exporter and served by Metrics.Handler. A nil *Metrics is valid and records
// nothing. Tracing goes through the global otel TracerProvider, which is a
// no-op until NewTracerProvider installs one.
package observability
