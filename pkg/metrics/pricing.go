package metrics

import "github.com/prometheus/client_golang/prometheus"

const (
	PriceSourcePeriod = "period"
	PriceSourceBase   = "base"
	// PriceSourceFallback is a base price served because the period lookup failed.
	PriceSourceFallback = "fallback"
)

// PricingMetrics counts price resolutions by where the price came from.
type PricingMetrics struct {
	resolutions *prometheus.CounterVec
}

// NewPricingMetrics registers the pricing metrics on the provided registerer.
func NewPricingMetrics(reg prometheus.Registerer) *PricingMetrics {
	if reg == nil {
		return &PricingMetrics{}
	}
	resolutions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "price_resolutions_total",
		Help: "Price resolutions by source.",
	}, []string{"source", "kind"})
	reg.MustRegister(resolutions)
	return &PricingMetrics{resolutions: resolutions}
}

// IncResolution counts one resolution.
func (m *PricingMetrics) IncResolution(source, kind string) {
	if m == nil || m.resolutions == nil {
		return
	}
	m.resolutions.WithLabelValues(normalizeLabel(source), normalizeLabel(kind)).Inc()
}
