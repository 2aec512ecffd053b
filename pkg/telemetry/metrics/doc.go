// Package metrics collects Prometheus metrics for the analysis engine:
// analysis counts and latencies by type and status, cache activity,
// rate limit rejections, plugin errors and sandbox timeouts.
//
// Metrics live on a private registry owned by the Collector, so two
// engines in one process never collide; expose them over HTTP with
// Collector.Handler.
package metrics
