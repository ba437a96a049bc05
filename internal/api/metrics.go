package api

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are client-side request counters. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	Requests      *prometheus.CounterVec
	Duration      *prometheus.HistogramVec
	ForcedLogouts prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Requests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "nexo_client_requests_total",
			Help: "Backend requests by method and status.",
		}, []string{"method", "status"}),
		Duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "nexo_client_request_duration_seconds",
			Help:    "Backend request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
		ForcedLogouts: f.NewCounter(prometheus.CounterOpts{
			Name: "nexo_client_forced_logouts_total",
			Help: "401 responses that triggered a forced logout.",
		}),
	}
}

func (m *Metrics) observe(method, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(method, status).Inc()
	m.Duration.WithLabelValues(method).Observe(d.Seconds())
}

func (m *Metrics) forcedLogout() {
	if m == nil {
		return
	}
	m.ForcedLogouts.Inc()
}
