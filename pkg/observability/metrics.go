package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Auth metrics
	LoginsTotal        *prometheus.CounterVec
	SessionsCreated    prometheus.Counter
	SessionsRevoked    prometheus.Counter
	AccessDeniedTotal  *prometheus.CounterVec
	TokenFailuresTotal *prometheus.CounterVec

	// Upload metrics
	UploadsTotal     *prometheus.CounterVec
	UploadSizeBytes  prometheus.Histogram

	registry *prometheus.Registry
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(registry *prometheus.Registry) *Metrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "proxima_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "proxima_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		LoginsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "proxima_logins_total",
				Help: "Total number of login attempts",
			},
			[]string{"result"},
		),
		SessionsCreated: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "proxima_sessions_created_total",
				Help: "Total number of sessions created",
			},
		),
		SessionsRevoked: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "proxima_sessions_revoked_total",
				Help: "Total number of sessions revoked by logout",
			},
		),
		AccessDeniedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "proxima_access_denied_total",
				Help: "Total number of requests rejected by authorization guards",
			},
			[]string{"guard"},
		),
		TokenFailuresTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "proxima_token_failures_total",
				Help: "Total number of bearer token verification failures",
			},
			[]string{"reason"},
		),
		UploadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "proxima_uploads_total",
				Help: "Total number of file uploads",
			},
			[]string{"status"},
		),
		UploadSizeBytes: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "proxima_upload_size_bytes",
				Help:    "Uploaded file size in bytes",
				Buckets: prometheus.ExponentialBuckets(1024, 4, 10),
			},
		),
		registry: registry,
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.LoginsTotal,
		m.SessionsCreated,
		m.SessionsRevoked,
		m.AccessDeniedTotal,
		m.TokenFailuresTotal,
		m.UploadsTotal,
		m.UploadSizeBytes,
	)

	return m
}

// Handler returns an HTTP handler serving the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// InstrumentHandler wraps an HTTP handler with request counting and timing.
// The path label is the mux route template, not the raw URL, to keep
// cardinality bounded.
func (m *Metrics) InstrumentHandler(path string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rw, r)

		m.HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(rw.status)).Inc()
		m.HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// statusRecorder wraps http.ResponseWriter to capture the status code
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}
