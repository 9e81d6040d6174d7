package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// AllotmentMetrics records capacity check outcomes.
type AllotmentMetrics struct {
	checks   *prometheus.CounterVec
	duration *prometheus.HistogramVec
	nights   prometheus.Histogram
}

// NewAllotmentMetrics registers the allotment metrics on the provided registerer.
func NewAllotmentMetrics(reg prometheus.Registerer) *AllotmentMetrics {
	if reg == nil {
		return &AllotmentMetrics{}
	}
	checks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "allotment_checks_total",
		Help: "Allotment checks by outcome and reason.",
	}, []string{"outcome", "reason"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "allotment_check_duration_seconds",
		Help:    "Duration of allotment checks in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	nights := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "allotment_check_nights",
		Help:    "Service dates evaluated per allotment check.",
		Buckets: []float64{1, 2, 3, 5, 7, 14, 30},
	})
	reg.MustRegister(checks, duration, nights)
	return &AllotmentMetrics{
		checks:   checks,
		duration: duration,
		nights:   nights,
	}
}

// ObserveCheck records one completed check.
func (m *AllotmentMetrics) ObserveCheck(outcome, reason string, evaluated int, duration time.Duration) {
	if m == nil || m.checks == nil {
		return
	}
	outcome = normalizeLabel(outcome)
	m.checks.WithLabelValues(outcome, normalizeLabel(reason)).Inc()
	m.duration.WithLabelValues(outcome).Observe(duration.Seconds())
	m.nights.Observe(float64(evaluated))
}
