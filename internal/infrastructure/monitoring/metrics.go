package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// View sync metrics
	ViewsActive   prometheus.Gauge
	UpdatesSent   prometheus.Counter
	InitFailures  *prometheus.CounterVec
	StallTimeouts prometheus.Counter
	Retries       prometheus.Counter

	// Host link metrics
	HostControlCalls    *prometheus.CounterVec
	HostControlDuration *prometheus.HistogramVec

	// Surface stream metrics
	WSConnections prometheus.Gauge
	WSMessages    *prometheus.CounterVec

	// System metrics
	Uptime    prometheus.Gauge
	startTime time.Time
}

// NewMetrics creates a new metrics collector
func NewMetrics() *Metrics {
	return &Metrics{
		startTime: time.Now(),

		RequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "blockview_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "blockview_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),

		ViewsActive: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "blockview_views_active",
				Help: "Number of currently mounted embedded views",
			},
		),
		UpdatesSent: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "blockview_update_view_messages_total",
				Help: "Total update-view messages flushed to the view host",
			},
		),
		InitFailures: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "blockview_init_failures_total",
				Help: "View initialization failures by classification",
			},
			[]string{"reason"},
		),
		StallTimeouts: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "blockview_stall_timeouts_total",
				Help: "Initializations demoted to error by the stall timer",
			},
		),
		Retries: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "blockview_retries_total",
				Help: "User-initiated retries from the error state",
			},
		),

		HostControlCalls: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "blockview_host_control_calls_total",
				Help: "Request/response calls to the view host control endpoint",
			},
			[]string{"operation", "status"},
		),
		HostControlDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "blockview_host_control_duration_seconds",
				Help:    "Host control call duration in seconds",
				Buckets: []float64{.005, .01, .05, .1, .5, 1, 5, 10},
			},
			[]string{"operation"},
		),

		WSConnections: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "blockview_ws_connections",
				Help: "Open document-surface stream connections",
			},
		),
		WSMessages: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "blockview_ws_messages_total",
				Help: "Surface stream messages by type and direction",
			},
			[]string{"type", "direction"},
		),

		Uptime: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "blockview_uptime_seconds",
				Help: "Service uptime in seconds",
			},
		),
	}
}

// RecordHTTPRequest records metrics for one HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordHostControlCall records metrics for one host control call
func (m *Metrics) RecordHostControlCall(operation, status string, duration time.Duration) {
	m.HostControlCalls.WithLabelValues(operation, status).Inc()
	m.HostControlDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// UpdateUptime refreshes the uptime gauge
func (m *Metrics) UpdateUptime() {
	m.Uptime.Set(time.Since(m.startTime).Seconds())
}
