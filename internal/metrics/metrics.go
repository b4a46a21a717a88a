package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "staffup"

// Metrics holds the poller's Prometheus collectors.
type Metrics struct {
	Cycles        prometheus.Counter
	CycleErrors   prometheus.Counter
	Alerts        *prometheus.CounterVec
	Decisions     *prometheus.CounterVec
	FetchDuration prometheus.Histogram
	Cooldowns     prometheus.Gauge
}

// New registers the collectors on reg. Pass a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Cycles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_total",
			Help:      "Evaluation cycles started.",
		}),
		CycleErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycle_errors_total",
			Help:      "Evaluation cycles that ended with an error.",
		}),
		Alerts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_total",
			Help:      "Alerts delivered, by airport.",
		}, []string{"airport"}),
		Decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decisions_total",
			Help:      "Per-rule evaluation outcomes.",
		}, []string{"outcome"}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Time spent fetching the network snapshot.",
			Buckets:   prometheus.DefBuckets,
		}),
		Cooldowns: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_cooldowns",
			Help:      "Airports currently in cooldown.",
		}),
	}
	reg.MustRegister(m.Cycles, m.CycleErrors, m.Alerts, m.Decisions, m.FetchDuration, m.Cooldowns)
	return m
}

// ObserveFetch records a fetch that started at start. Safe on a nil receiver.
func (m *Metrics) ObserveFetch(start time.Time) {
	if m == nil {
		return
	}
	m.FetchDuration.Observe(time.Since(start).Seconds())
}

// Decision counts one evaluation outcome. Safe on a nil receiver.
func (m *Metrics) Decision(outcome, airport string) {
	if m == nil {
		return
	}
	m.Decisions.WithLabelValues(outcome).Inc()
	if outcome == "fired" {
		m.Alerts.WithLabelValues(airport).Inc()
	}
}

// Cycle counts one cycle and, when err is non-nil, one failed cycle.
func (m *Metrics) Cycle(err error, cooldowns int) {
	if m == nil {
		return
	}
	m.Cycles.Inc()
	if err != nil {
		m.CycleErrors.Inc()
	}
	m.Cooldowns.Set(float64(cooldowns))
}
