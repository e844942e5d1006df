package web

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const METRICS_NAMESPACE = "lab_roster"

type metrics struct {
	logins          *prometheus.CounterVec
	deviceMutations *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

func newMetrics(registry *prometheus.Registry) (*metrics, error) {
	m := &metrics{
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: METRICS_NAMESPACE,
			Name:      "logins_total",
			Help:      "Login attempts by outcome.",
		}, []string{"outcome"}),
		deviceMutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: METRICS_NAMESPACE,
			Name:      "device_mutations_total",
			Help:      "Device additions and removals by outcome.",
		}, []string{"operation", "outcome"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: METRICS_NAMESPACE,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	for _, c := range []prometheus.Collector{
		m.logins,
		m.deviceMutations,
		m.requestDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	} {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

func (m *metrics) login(outcome string) {
	m.logins.WithLabelValues(outcome).Inc()
}

func (m *metrics) deviceMutation(operation, outcome string) {
	m.deviceMutations.WithLabelValues(operation, outcome).Inc()
}

func (m *metrics) observeRequest(method, route, status string, elapsed time.Duration) {
	m.requestDuration.WithLabelValues(method, route, status).Observe(elapsed.Seconds())
}
