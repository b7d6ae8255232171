// Package metrics defines the interfaces used to observe scheduling runs.
// A MetricsSink records one PlanResult per run; sinks may also implement the
// optional recorder interfaces for per-route, matrix build and edge failure
// data. Concrete sinks (Prometheus, InfluxDB) live in infra/metrics and are
// created through the factory helpers, which return a MultiSink when several
// sinks are configured.
package metrics
