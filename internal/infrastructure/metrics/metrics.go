package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "learner_portal"

// Metrics exposes Prometheus collectors for upstream traffic and course
// aggregation. A nil *Metrics is valid and records nothing.
type Metrics struct {
	upstreamDuration *prometheus.HistogramVec
	cacheLookups     *prometheus.CounterVec
	aggregations     *prometheus.CounterVec
	subsidies        *prometheus.CounterVec
}

var (
	defaultOnce sync.Once
	shared      *Metrics
)

// Default returns the instance registered with the global Prometheus registry.
func Default() *Metrics {
	defaultOnce.Do(func() {
		shared = MustNew(prometheus.DefaultRegisterer)
	})
	return shared
}

// MustNew registers the collectors with reg and panics on conflicting
// registrations. Tests should pass a fresh prometheus.NewRegistry().
func MustNew(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		upstreamDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "upstream",
				Name:      "request_duration_seconds",
				Help:      "Latency of calls to upstream platform APIs, retries included.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"service", "outcome"},
		),
		cacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "upstream",
				Name:      "cache_lookups_total",
				Help:      "Response cache lookups by result.",
			},
			[]string{"service", "result"},
		),
		aggregations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "course",
				Name:      "aggregations_total",
				Help:      "Course page aggregations by outcome.",
			},
			[]string{"outcome"},
		),
		subsidies: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "course",
				Name:      "subsidy_resolutions_total",
				Help:      "Subsidy resolutions by selected subsidy type (none when no subsidy applies).",
			},
			[]string{"type"},
		),
	}
	reg.MustRegister(m.upstreamDuration, m.cacheLookups, m.aggregations, m.subsidies)
	return m
}

func (m *Metrics) ObserveUpstream(service, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.upstreamDuration.WithLabelValues(service, outcome).Observe(elapsed.Seconds())
}

func (m *Metrics) CacheLookup(service string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(service, result).Inc()
}

func (m *Metrics) Aggregation(outcome string) {
	if m == nil {
		return
	}
	m.aggregations.WithLabelValues(outcome).Inc()
}

func (m *Metrics) SubsidyResolved(subsidyType string) {
	if m == nil {
		return
	}
	if subsidyType == "" {
		subsidyType = "none"
	}
	m.subsidies.WithLabelValues(subsidyType).Inc()
}
