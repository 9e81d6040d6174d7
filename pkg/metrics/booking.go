package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics tracks reservations written and rejected.
type BookingMetrics struct {
	reservations *prometheus.CounterVec
	rejections   *prometheus.CounterVec
	cancels      prometheus.Counter
}

// NewBookingMetrics registers the booking metrics on the provided registerer.
func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	if reg == nil {
		return &BookingMetrics{}
	}
	reservations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "reservations_created_total",
		Help: "Reservations persisted, by allotment outcome and policy.",
	}, []string{"outcome", "policy"})
	rejections := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "reservations_rejected_total",
		Help: "Reservations refused before persisting, by reason.",
	}, []string{"reason"})
	cancels := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "reservations_cancelled_total",
		Help: "Reservations cancelled.",
	})
	reg.MustRegister(reservations, rejections, cancels)
	return &BookingMetrics{
		reservations: reservations,
		rejections:   rejections,
		cancels:      cancels,
	}
}

// IncCreated counts a persisted reservation.
func (m *BookingMetrics) IncCreated(outcome, policy string) {
	if m == nil || m.reservations == nil {
		return
	}
	m.reservations.WithLabelValues(normalizeLabel(outcome), normalizeLabel(policy)).Inc()
}

// IncRejected counts a reservation that was not written.
func (m *BookingMetrics) IncRejected(reason string) {
	if m == nil || m.rejections == nil {
		return
	}
	m.rejections.WithLabelValues(normalizeLabel(reason)).Inc()
}

// IncCancelled counts a cancellation.
func (m *BookingMetrics) IncCancelled() {
	if m == nil || m.cancels == nil {
		return
	}
	m.cancels.Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
