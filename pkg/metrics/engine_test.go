package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestEngineMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewEngineMetrics(reg)

	metrics.ObserveQuoteDuration("IN", 15*time.Millisecond)
	metrics.IncQuoteComputed("IN")
	metrics.IncTransitionApplied("order")
	metrics.IncTransitionRejected("order", "order_cancelled")
	metrics.IncCascadeBlocked("warehouse")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "tax_quotes_computed", "country", "IN"); err != nil {
		t.Fatalf("fetch quotes: %v", err)
	} else if got != 1 {
		t.Fatalf("expected quotes=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "order_transitions_applied", "domain", "order"); err != nil {
		t.Fatalf("fetch applied: %v", err)
	} else if got != 1 {
		t.Fatalf("expected applied=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "order_transitions_rejected", "reason", "order_cancelled"); err != nil {
		t.Fatalf("fetch rejected: %v", err)
	} else if got != 1 {
		t.Fatalf("expected rejected=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "cascade_deletes_blocked", "entity_type", "warehouse"); err != nil {
		t.Fatalf("fetch blocked: %v", err)
	} else if got != 1 {
		t.Fatalf("expected blocked=1, got %f", got)
	}

	if got, err := fetchHistogramSum(mfs, "tax_quote_duration_seconds", "country", "IN"); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}
}

func TestEngineMetricsNilReceiverIsSafe(t *testing.T) {
	var metrics *EngineMetrics
	metrics.IncQuoteComputed("IN")
	metrics.IncTransitionApplied("order")
	metrics.IncCascadeBlocked("category")
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
