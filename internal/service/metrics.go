package service

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects booking and HTTP metrics in a private Prometheus registry.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry        *prometheus.Registry
	bookingOps      *prometheus.CounterVec
	storageFailures *prometheus.CounterVec
	reqTotal        *prometheus.CounterVec
	reqLatency      *prometheus.HistogramVec
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	bookingOps := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_operations_total",
			Help: "Booking engine operations by outcome",
		},
		[]string{"operation", "outcome"},
	)
	storageFailures := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storage_failures_total",
			Help: "Storage writes that failed after the in-memory state was updated",
		},
		[]string{"operation"},
	)
	reqTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
	reqLatency := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	registry.MustRegister(bookingOps, storageFailures, reqTotal, reqLatency)

	return &Metrics{
		registry:        registry,
		bookingOps:      bookingOps,
		storageFailures: storageFailures,
		reqTotal:        reqTotal,
		reqLatency:      reqLatency,
	}
}

// ObserveBooking counts one engine operation; err nil means "ok".
func (m *Metrics) ObserveBooking(operation string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "rejected"
	}
	m.bookingOps.WithLabelValues(operation, outcome).Inc()
}

func (m *Metrics) StorageFailure(operation string) {
	if m == nil {
		return
	}
	m.storageFailures.WithLabelValues(operation).Inc()
}

func (m *Metrics) ObserveRequest(method, path string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	label := http.StatusText(status)
	m.reqTotal.WithLabelValues(method, path, label).Inc()
	m.reqLatency.WithLabelValues(method, path, label).Observe(elapsed.Seconds())
}

// StorageFailures returns the collector so tests can read it with prometheus/testutil.
func (m *Metrics) StorageFailures() *prometheus.CounterVec {
	return m.storageFailures
}

func (m *Metrics) BookingOperations() *prometheus.CounterVec {
	return m.bookingOps
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
