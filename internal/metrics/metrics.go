// Package metrics holds the Prometheus collectors for hold transitions,
// quotes and upstream calls.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Transitions      *prometheus.CounterVec
	Quotes           *prometheus.CounterVec
	UpstreamDuration *prometheus.HistogramVec
	Violations       prometheus.Counter
	Swept            prometheus.Counter
}

// New registers collectors on reg. Pass a fresh prometheus.NewRegistry() in tests.
func New(namespace string, reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Transitions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hold_transitions_total",
			Help:      "Hold order transition attempts by transition and outcome.",
		}, []string{"transition", "outcome"}),
		Quotes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fare_quotes_total",
			Help:      "Change and cancellation quotes by kind and outcome.",
		}, []string{"kind", "outcome"}),
		UpstreamDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "Latency of booking API calls.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		Violations: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "consistency_violations_total",
			Help:      "Terminal transitions that lost to another terminal transition after upstream success.",
		}),
		Swept: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "holds_swept_expired_total",
			Help:      "Holds moved to expired by the background sweep.",
		}),
	}
}

// The methods below are nil-safe so services can run without metrics.

func (m *Metrics) Transition(transition, outcome string) {
	if m == nil {
		return
	}
	m.Transitions.WithLabelValues(transition, outcome).Inc()
}

func (m *Metrics) Quote(kind, outcome string) {
	if m == nil {
		return
	}
	m.Quotes.WithLabelValues(kind, outcome).Inc()
}

func (m *Metrics) ObserveUpstream(operation string, start time.Time) {
	if m == nil {
		return
	}
	m.UpstreamDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

func (m *Metrics) Violation() {
	if m == nil {
		return
	}
	m.Violations.Inc()
}

func (m *Metrics) Expired(n int) {
	if m == nil {
		return
	}
	m.Swept.Add(float64(n))
}
