package enforce

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records check outcomes. A nil *Metrics is valid and records nothing.
type Metrics struct {
	Checks   *prometheus.CounterVec
	Blocked  prometheus.Counter
	Duration *prometheus.HistogramVec
}

// NewMetrics creates the enforcement metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Checks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "engram",
				Name:      "checks_total",
				Help:      "Total number of enforcement checks by mode and verdict",
			},
			[]string{"mode", "verdict"},
		),
		Blocked: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "engram",
				Name:      "checks_blocked_total",
				Help:      "Total number of checks that blocked the caller",
			},
		),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "engram",
				Name:      "check_duration_seconds",
				Help:      "Enforcement check duration in seconds",
				Buckets:   []float64{.1, .5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"mode"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.Checks, m.Blocked, m.Duration)
	}
	return m
}

// Observe records one check.
func (m *Metrics) Observe(mode Mode, r Result, d time.Duration) {
	if m == nil {
		return
	}
	m.Checks.WithLabelValues(string(mode), r.Outcome.Verdict.String()).Inc()
	m.Duration.WithLabelValues(string(mode)).Observe(d.Seconds())
	if r.Blocked {
		m.Blocked.Inc()
	}
}
