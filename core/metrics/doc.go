// Package metrics defines the observability contracts for benchmark runs:
// event types, the MetricsSink interface and the factory used to build sinks
// from configuration. Concrete sinks live under infra/metrics.
package metrics
