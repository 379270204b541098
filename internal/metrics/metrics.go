// Package metrics provides Prometheus collectors for Nimbus.
//
// Metrics are optional. Until InitRegistry is called every constructor
// returns a no-op implementation, so callers never check for nil.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registry     *prometheus.Registry
	registryOnce sync.Once

	httpOnce sync.Once
	httpInst *httpMetrics
	fsOnce   sync.Once
	fsInst   *fsMetrics
)

// InitRegistry enables metrics collection. Safe to call more than once.
func InitRegistry() {
	registryOnce.Do(func() {
		registry = prometheus.NewRegistry()
	})
}

// GetRegistry returns the registry, or nil when metrics are disabled
func GetRegistry() *prometheus.Registry {
	return registry
}

// IsEnabled reports whether InitRegistry has been called
func IsEnabled() bool {
	return GetRegistry() != nil
}

// Handler serves the registry in the Prometheus text format
func Handler() http.Handler {
	if !IsEnabled() {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "Metrics collection is disabled", http.StatusServiceUnavailable)
		})
	}
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// HTTPMetrics records request counts and latency per route
type HTTPMetrics interface {
	ObserveRequest(method, route string, status int, duration time.Duration)
}

// FSMetrics records filesystem domain events
type FSMetrics interface {
	UploadAccepted(bytes int64)
	QuotaRejected(plan string)
	BlobDeleteFailed()
}

type noopHTTP struct{}

func (noopHTTP) ObserveRequest(string, string, int, time.Duration) {}

type noopFS struct{}

func (noopFS) UploadAccepted(int64) {}
func (noopFS) QuotaRejected(string) {}
func (noopFS) BlobDeleteFailed() {}

type httpMetrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewHTTPMetrics returns Prometheus-backed HTTP metrics, or a no-op when disabled
func NewHTTPMetrics() HTTPMetrics {
	if !IsEnabled() {
		return noopHTTP{}
	}
	httpOnce.Do(func() { httpInst = newHTTPMetrics(GetRegistry()) })
	return httpInst
}

func newHTTPMetrics(reg *prometheus.Registry) *httpMetrics {
	return &httpMetrics{
		requestsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "nimbus_http_requests_total",
				Help: "Total number of HTTP requests by method, route and status",
			},
			[]string{"method", "route", "status"},
		),
		requestDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "nimbus_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"method", "route"},
		),
	}
}

func (m *httpMetrics) ObserveRequest(method, route string, status int, duration time.Duration) {
	m.requestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

type fsMetrics struct {
	uploadsTotal       prometheus.Counter
	uploadBytes        prometheus.Counter
	quotaRejections    *prometheus.CounterVec
	blobDeleteFailures prometheus.Counter
}

// NewFSMetrics returns Prometheus-backed filesystem metrics, or a no-op when disabled
func NewFSMetrics() FSMetrics {
	if !IsEnabled() {
		return noopFS{}
	}
	fsOnce.Do(func() { fsInst = newFSMetrics(GetRegistry()) })
	return fsInst
}

func newFSMetrics(reg *prometheus.Registry) *fsMetrics {
	return &fsMetrics{
		uploadsTotal: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "nimbus_uploads_total",
			Help: "Total number of accepted uploads",
		}),
		uploadBytes: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "nimbus_upload_bytes_total",
			Help: "Total bytes accepted by uploads",
		}),
		quotaRejections: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "nimbus_quota_rejections_total",
			Help: "Uploads rejected because they would exceed the plan limit",
		}, []string{"plan"}),
		blobDeleteFailures: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "nimbus_blob_delete_failures_total",
			Help: "Best-effort blob deletions that failed and were skipped",
		}),
	}
}

func (m *fsMetrics) UploadAccepted(bytes int64) {
	m.uploadsTotal.Inc()
	m.uploadBytes.Add(float64(bytes))
}

func (m *fsMetrics) QuotaRejected(plan string) {
	m.quotaRejections.WithLabelValues(plan).Inc()
}

func (m *fsMetrics) BlobDeleteFailed() {
	m.blobDeleteFailures.Inc()
}
