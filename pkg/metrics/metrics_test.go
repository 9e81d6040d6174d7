package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestAllotmentMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewAllotmentMetrics(reg)
	metrics.ObserveCheck("satisfiable", "", 3, 20*time.Millisecond)
	metrics.ObserveCheck("unsatisfiable", "insufficient_stock", 1, 5*time.Millisecond)
	metrics.ObserveCheck("unsatisfiable", "insufficient_stock", 2, 5*time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "allotment_checks_total", "reason", "insufficient_stock"); err != nil {
		t.Fatalf("fetch checks: %v", err)
	} else if got != 2 {
		t.Fatalf("expected 2 insufficient checks, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "allotment_checks_total", "reason", "unknown"); err != nil {
		t.Fatalf("fetch checks: %v", err)
	} else if got != 1 {
		t.Fatalf("expected empty reason to normalize to unknown, got %f", got)
	}

	if got, err := fetchHistogramSum(mfs, "allotment_check_duration_seconds", "outcome", "satisfiable"); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}

	nights := findMetricFamily(mfs, "allotment_check_nights")
	if nights == nil || nights.GetMetric()[0].GetHistogram().GetSampleSum() != 6 {
		t.Fatalf("expected nights histogram sum 6")
	}
}

func TestPricingMetricsCountsBySource(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewPricingMetrics(reg)
	metrics.IncResolution(PriceSourcePeriod, "room_type")
	metrics.IncResolution(PriceSourcePeriod, "room_type")
	metrics.IncResolution(PriceSourceBase, "ticket_tier")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got, err := fetchCounterValue(mfs, "price_resolutions_total", "source", PriceSourcePeriod); err != nil {
		t.Fatalf("fetch resolutions: %v", err)
	} else if got != 2 {
		t.Fatalf("expected 2 period resolutions, got %f", got)
	}
}

func TestBookingMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewBookingMetrics(reg)
	metrics.IncCreated("unsatisfiable", "advisory")
	metrics.IncRejected("allotment_unsatisfiable")
	metrics.IncCancelled()

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got, err := fetchCounterValue(mfs, "reservations_created_total", "policy", "advisory"); err != nil {
		t.Fatalf("fetch created: %v", err)
	} else if got != 1 {
		t.Fatalf("expected 1 created, got %f", got)
	}
	if got, err := fetchCounterValue(mfs, "reservations_rejected_total", "reason", "allotment_unsatisfiable"); err != nil {
		t.Fatalf("fetch rejected: %v", err)
	} else if got != 1 {
		t.Fatalf("expected 1 rejected, got %f", got)
	}
}

func TestNilMetricsAreNoops(t *testing.T) {
	var allotment *AllotmentMetrics
	allotment.ObserveCheck("satisfiable", "", 1, time.Millisecond)
	NewPricingMetrics(nil).IncResolution(PriceSourceBase, "room_type")
	var booking *BookingMetrics
	booking.IncCreated("satisfiable", "advisory")
	booking.IncCancelled()
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("histogram %q missing label %s=%s", name, label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}
