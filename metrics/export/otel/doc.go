// Package otel publishes engine metrics through OpenTelemetry.
//
// [NewExporter] registers observable instruments on any Meter. Engine
// counters share the lmsauth.events counter and are told apart by the event
// attribute; audit drops are split by event_type. A single callback reads
// [lmsAuth.Engine.MetricsSnapshot] on each collection cycle.
//
// [Start] builds a MeterProvider that pushes those instruments to an
// OTLP/gRPC collector, which is what the lmsauth binary uses when
// metrics.exporter is "otel".
package otel
