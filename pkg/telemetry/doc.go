// Package telemetry provides observability for the analysis engine.
//
// # Components
//
//   - logging: structured slog logging (JSON or text)
//   - metrics: Prometheus metrics collection
//
// # Usage
//
//	logger, err := logging.New(logging.Config{Level: "info", Format: "json"})
//	collector := metrics.NewCollector(nil)
//	collector.RecordAnalysis("sentiment", "success", 120*time.Millisecond)
//
// Metrics are registered on a private registry; expose them with
// metrics.Collector.Handler.
package telemetry
