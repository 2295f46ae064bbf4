package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics represents the collection of all Prometheus metrics
type Metrics struct {
	registry prometheus.Registerer

	// Standard HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Report delivery metrics
	ReportsDelivered prometheus.Counter
	ReportsFailed    *prometheus.CounterVec
	MessageLength    prometheus.Histogram
}

// NewMetrics creates and registers all metrics with the given registerer.
// Production passes prometheus.DefaultRegisterer; tests use an isolated
// registry so repeated registration cannot panic.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{registry: reg}

	m.HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	m.HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	m.ReportsDelivered = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "reports_delivered_total",
			Help: "Total number of reports delivered to the chat provider",
		},
	)

	m.ReportsFailed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reports_failed_total",
			Help: "Total number of reports that were not delivered",
		},
		[]string{"reason"},
	)

	m.MessageLength = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "report_message_length_chars",
			Help:    "Length of delivered messages in characters",
			Buckets: []float64{100, 500, 1000, 2000, 3000, 4000},
		},
	)

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.ReportsDelivered,
		m.ReportsFailed,
		m.MessageLength,
	)

	return m
}

// Middleware for tracking HTTP requests
func (m *Metrics) RequestTrackingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Create a response writer wrapper to capture status code
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		m.HTTPRequestsTotal.WithLabelValues(r.Method, r.URL.Path, strconv.Itoa(rw.statusCode)).Inc()
		m.HTTPRequestDuration.WithLabelValues(r.Method, r.URL.Path).Observe(time.Since(start).Seconds())
	})
}

// responseWriter is a wrapper to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Handler returns the Prometheus HTTP handler for the registry these
// metrics were registered with.
func (m *Metrics) Handler() http.Handler {
	if g, ok := m.registry.(prometheus.Gatherer); ok {
		return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
	}
	return promhttp.Handler()
}
