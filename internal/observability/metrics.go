package observability

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics for the apartment listing service.
// Collectors are registered on the Registerer passed to NewMetrics.
type Metrics struct {
	// HTTPRequestsTotal counts handled requests by method, route pattern and status code.
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPRequestDuration observes request latency in seconds by method and route pattern.
	HTTPRequestDuration *prometheus.HistogramVec

	// HTTPRateLimited counts requests rejected by the rate limiter.
	HTTPRateLimited prometheus.Counter

	// ApartmentsCreated counts listings persisted successfully.
	ApartmentsCreated prometheus.Counter

	// ValidationFailures counts rejected create payloads by the first failing field.
	ValidationFailures *prometheus.CounterVec

	// DuplicatesRejected counts creates refused because the unit number is taken.
	DuplicatesRejected prometheus.Counter
}

// NewMetrics creates the service metrics under namespace and registers them
// with reg. A nil reg uses the default Prometheus registry.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		// HTTP
		HTTPRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests handled",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"method", "route"}),
		HTTPRateLimited: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_rate_limited_total",
			Help:      "Total number of HTTP requests rejected by the rate limiter",
		}),

		// Apartments
		ApartmentsCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "apartments_created_total",
			Help:      "Total number of apartments created",
		}),
		ValidationFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "apartment_validation_failures_total",
			Help:      "Total number of rejected apartment payloads by field",
		}, []string{"field"}),
		DuplicatesRejected: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "apartment_duplicates_rejected_total",
			Help:      "Total number of apartments rejected for a duplicate unit number",
		}),
	}
}

// RecordHTTPRequest records one handled request.
func (m *Metrics) RecordHTTPRequest(method, route string, status int, durationSeconds float64) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(durationSeconds)
}

// RecordRateLimited records a request rejected by the limiter.
func (m *Metrics) RecordRateLimited() {
	if m == nil {
		return
	}
	m.HTTPRateLimited.Inc()
}

// RecordApartmentCreated records a persisted listing.
func (m *Metrics) RecordApartmentCreated() {
	if m == nil {
		return
	}
	m.ApartmentsCreated.Inc()
}

// RecordValidationFailure records a payload rejected on field.
func (m *Metrics) RecordValidationFailure(field string) {
	if m == nil {
		return
	}
	m.ValidationFailures.WithLabelValues(field).Inc()
}

// RecordDuplicateRejected records a create refused for a taken unit number.
func (m *Metrics) RecordDuplicateRejected() {
	if m == nil {
		return
	}
	m.DuplicatesRejected.Inc()
}
