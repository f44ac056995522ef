// Package monitoring provides Prometheus metrics for the sync core.
//
// Metrics cover the HTTP surface, the per-view sync pipeline (active
// views, update-view flushes, classified init failures, stall timeouts,
// retries), the host control link, and the document-surface stream.
//
// Example Usage:
//
//	metrics := monitoring.NewMetrics()
//	router.Use(monitoring.Middleware(metrics))
//	metrics.ViewsActive.Inc()
package monitoring
