package http

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// metrics holds the request-level Prometheus instruments. They register on
// the default registry, which main exposes at /metrics.
type metrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

var (
	metricsOnce   sync.Once
	sharedMetrics *metrics
)

// newMetrics returns the process-wide instruments. Registration on the
// default registry must happen exactly once, even when several servers are
// constructed in tests.
func newMetrics() *metrics {
	metricsOnce.Do(func() {
		sharedMetrics = buildMetrics()
	})
	return sharedMetrics
}

func buildMetrics() *metrics {
	return &metrics{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "knowledged_http_requests_total",
			Help: "Total HTTP requests labeled by method, route and status code.",
		}, []string{"method", "route", "status"}),
		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "knowledged_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds labeled by method and route.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"method", "route"}),
	}
}

func (m *metrics) record(method, route string, status int, dur time.Duration) {
	m.requestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(dur.Seconds())
}
