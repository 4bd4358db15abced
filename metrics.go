package qiskitruntime

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// connMetrics instruments API round trips when a registerer is supplied
// through WithMetrics.
type connMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func newConnMetrics(reg prometheus.Registerer) *connMetrics {
	m := &connMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "qiskit_runtime",
			Name:      "api_requests_total",
			Help:      "Total runtime API requests, by method and status code.",
		}, []string{"method", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "qiskit_runtime",
			Name:      "api_request_duration_seconds",
			Help:      "Runtime API request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
	}
	reg.MustRegister(m.requests, m.duration)
	return m
}

func (m *connMetrics) observe(req *http.Request, resp *http.Response, elapsed time.Duration) {
	code := "error"
	if resp != nil {
		code = strconv.Itoa(resp.StatusCode)
	}
	m.requests.WithLabelValues(req.Method, code).Inc()
	m.duration.WithLabelValues(req.Method).Observe(elapsed.Seconds())
}
