package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// Snapshot metrics
	SnapshotRequestsTotal *prometheus.CounterVec
	SnapshotDuration      *prometheus.HistogramVec

	// Per-instrument metrics
	InstrumentDuration    *prometheus.HistogramVec
	InstrumentErrorsTotal *prometheus.CounterVec

	// Recommendation metrics
	RecommendationActions *prometheus.CounterVec
	GeoRiskScores         *prometheus.HistogramVec

	// External API metrics
	ExternalAPIRequestsTotal *prometheus.CounterVec
	ExternalAPIErrorsTotal   *prometheus.CounterVec
	ExternalAPIDuration      *prometheus.HistogramVec

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPResponseSize    *prometheus.HistogramVec

	// Circuit breaker metrics
	CircuitBreakerState *prometheus.GaugeVec
	CircuitBreakerTrips *prometheus.CounterVec
}

// defaultBuckets are the default histogram buckets for duration metrics (in seconds)
var defaultBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30}

// riskBuckets are histogram buckets for geopolitical risk scores.
// Scores are unbounded above but rarely exceed the CRITICAL band.
var riskBuckets = []float64{0, 10, 20, 30, 40, 50, 60, 75, 90, 120}

// globalMetrics is the global metrics instance
var globalMetrics *Metrics

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	factory := promauto.With(reg)

	m := &Metrics{
		// Snapshot metrics
		SnapshotRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "portfolio_machine",
				Subsystem: "snapshot",
				Name:      "requests_total",
				Help:      "Total number of portfolio snapshot requests",
			},
			[]string{"user_id"},
		),
		SnapshotDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "portfolio_machine",
				Subsystem: "snapshot",
				Name:      "duration_seconds",
				Help:      "Duration of portfolio snapshot assembly in seconds",
				Buckets:   defaultBuckets,
			},
			[]string{"status"},
		),

		// Per-instrument metrics
		InstrumentDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "portfolio_machine",
				Subsystem: "instrument",
				Name:      "duration_seconds",
				Help:      "Duration of per-instrument analysis in seconds",
				Buckets:   defaultBuckets,
			},
			[]string{"symbol"},
		),
		InstrumentErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "portfolio_machine",
				Subsystem: "instrument",
				Name:      "errors_total",
				Help:      "Total number of per-instrument analysis failures",
			},
			[]string{"symbol", "error_type"},
		),

		// Recommendation metrics
		RecommendationActions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "portfolio_machine",
				Subsystem: "recommendation",
				Name:      "actions_total",
				Help:      "Total number of recommendations by action type",
			},
			[]string{"action"},
		),
		GeoRiskScores: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "portfolio_machine",
				Subsystem: "recommendation",
				Name:      "geo_risk_score",
				Help:      "Distribution of geopolitical risk scores",
				Buckets:   riskBuckets,
			},
			[]string{"action"},
		),

		// External API metrics
		ExternalAPIRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "portfolio_machine",
				Subsystem: "external_api",
				Name:      "requests_total",
				Help:      "Total number of external API requests",
			},
			[]string{"service", "operation"},
		),
		ExternalAPIErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "portfolio_machine",
				Subsystem: "external_api",
				Name:      "errors_total",
				Help:      "Total number of external API errors",
			},
			[]string{"service", "operation", "error_type"},
		),
		ExternalAPIDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "portfolio_machine",
				Subsystem: "external_api",
				Name:      "duration_seconds",
				Help:      "Duration of external API calls in seconds",
				Buckets:   defaultBuckets,
			},
			[]string{"service", "operation"},
		),

		// HTTP metrics
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "portfolio_machine",
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "portfolio_machine",
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds",
				Buckets:   defaultBuckets,
			},
			[]string{"method", "path"},
		),
		HTTPResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "portfolio_machine",
				Subsystem: "http",
				Name:      "response_size_bytes",
				Help:      "Size of HTTP responses in bytes",
				Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
			},
			[]string{"method", "path"},
		),

		// Circuit breaker metrics
		CircuitBreakerState: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "portfolio_machine",
				Subsystem: "circuit_breaker",
				Name:      "state",
				Help:      "Current state of circuit breakers (0=closed, 1=half-open, 2=open)",
			},
			[]string{"service"},
		),
		CircuitBreakerTrips: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "portfolio_machine",
				Subsystem: "circuit_breaker",
				Name:      "trips_total",
				Help:      "Total number of circuit breaker trips",
			},
			[]string{"service"},
		),
	}

	return m
}

// InitMetrics initializes the global metrics instance
func InitMetrics() *Metrics {
	globalMetrics = NewMetrics(nil)
	return globalMetrics
}

// GetMetrics returns the global metrics instance
func GetMetrics() *Metrics {
	if globalMetrics == nil {
		return InitMetrics()
	}
	return globalMetrics
}

// RecordSnapshotRequest records a portfolio snapshot request
func (m *Metrics) RecordSnapshotRequest(userID string) {
	m.SnapshotRequestsTotal.WithLabelValues(userID).Inc()
}

// RecordSnapshotDuration records the duration of a snapshot assembly
func (m *Metrics) RecordSnapshotDuration(status string, duration time.Duration) {
	m.SnapshotDuration.WithLabelValues(status).Observe(duration.Seconds())
}

// RecordInstrumentDuration records the duration of one instrument analysis
func (m *Metrics) RecordInstrumentDuration(symbol string, duration time.Duration) {
	m.InstrumentDuration.WithLabelValues(symbol).Observe(duration.Seconds())
}

// RecordInstrumentError records a per-instrument analysis failure
func (m *Metrics) RecordInstrumentError(symbol, errorType string) {
	m.InstrumentErrorsTotal.WithLabelValues(symbol, errorType).Inc()
}

// RecordRecommendation records a recommendation and its risk score
func (m *Metrics) RecordRecommendation(action string, riskScore int) {
	m.RecommendationActions.WithLabelValues(action).Inc()
	m.GeoRiskScores.WithLabelValues(action).Observe(float64(riskScore))
}

// RecordExternalAPIRequest records an external API request
func (m *Metrics) RecordExternalAPIRequest(service, operation string) {
	m.ExternalAPIRequestsTotal.WithLabelValues(service, operation).Inc()
}

// RecordExternalAPIError records an external API error
func (m *Metrics) RecordExternalAPIError(service, operation, errorType string) {
	m.ExternalAPIErrorsTotal.WithLabelValues(service, operation, errorType).Inc()
}

// RecordExternalAPIDuration records the duration of an external API call
func (m *Metrics) RecordExternalAPIDuration(service, operation string, duration time.Duration) {
	m.ExternalAPIDuration.WithLabelValues(service, operation).Observe(duration.Seconds())
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, statusCode string, duration time.Duration, responseSize int) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.HTTPResponseSize.WithLabelValues(method, path).Observe(float64(responseSize))
}

// SetCircuitBreakerState sets the current state of a circuit breaker
func (m *Metrics) SetCircuitBreakerState(service string, state int) {
	m.CircuitBreakerState.WithLabelValues(service).Set(float64(state))
}

// RecordCircuitBreakerTrip records a circuit breaker trip
func (m *Metrics) RecordCircuitBreakerTrip(service string) {
	m.CircuitBreakerTrips.WithLabelValues(service).Inc()
}

// Timer is a helper for timing operations
type Timer struct {
	start   time.Time
	metrics *Metrics
}

// NewTimer creates a new timer
func (m *Metrics) NewTimer() *Timer {
	return &Timer{
		start:   time.Now(),
		metrics: m,
	}
}

// ObserveSnapshot records the snapshot duration and status
func (t *Timer) ObserveSnapshot(status string) {
	t.metrics.RecordSnapshotDuration(status, time.Since(t.start))
}

// ObserveInstrument records one instrument's analysis duration
func (t *Timer) ObserveInstrument(symbol string) {
	t.metrics.RecordInstrumentDuration(symbol, time.Since(t.start))
}

// ObserveExternalAPI records the external API duration
func (t *Timer) ObserveExternalAPI(service, operation string) {
	t.metrics.RecordExternalAPIDuration(service, operation, time.Since(t.start))
}

// Duration returns the elapsed time
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
