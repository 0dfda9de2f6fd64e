// Package prometheus exposes engine metrics as a prometheus.Collector.
//
// [NewCollector] reads [lmsAuth.Engine.MetricsSnapshot] on every scrape, so
// nothing is copied into the Prometheus client between scrapes. Counter
// names are lmsauth_*_total; the single histogram is
// lmsauth_validate_latency_seconds.
//
// The collector is not registered globally; callers register it or mount
// [Handler].
package prometheus
