package metrics

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestCartMetricsCountsFailuresAndLatency(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCartMetrics(reg)

	m.ObserveSync("insert", 20*time.Millisecond, nil)
	m.ObserveSync("insert", 30*time.Millisecond, errors.New("boom"))
	m.IncFeedEvent("INSERT", FeedSuppressed)
	m.SetActiveSessions(3)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "cart_remote_sync_failures_total", "op", "insert"); err != nil || got != 1 {
		t.Fatalf("expected one insert failure, got %v (%v)", got, err)
	}
	if got, err := fetchHistogramSum(mfs, "cart_remote_sync_duration_seconds", "op", "insert"); err != nil || got <= 0 {
		t.Fatalf("expected duration sum > 0, got %v (%v)", got, err)
	}
	if got, err := fetchCounterValue(mfs, "cart_feed_events_total", "outcome", FeedSuppressed); err != nil || got != 1 {
		t.Fatalf("expected one suppressed event, got %v (%v)", got, err)
	}
	if mf := findMetricFamily(mfs, "storefront_sessions_active"); mf == nil || mf.GetMetric()[0].GetGauge().GetValue() != 3 {
		t.Fatalf("expected active sessions gauge of 3")
	}
}

func TestRoleAndScannerMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	roles := NewRoleMetrics(reg)
	scans := NewScannerMetrics(reg)

	roles.IncResolution("shopper", true)
	roles.IncLookupError("owners")
	scans.Inc(ScanInserted)
	scans.Inc("")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got, err := fetchCounterValue(mfs, "role_resolutions_total", "provisioned", "true"); err != nil || got != 1 {
		t.Fatalf("expected provisioned resolution, got %v (%v)", got, err)
	}
	if got, err := fetchCounterValue(mfs, "role_lookup_errors_total", "table", "owners"); err != nil || got != 1 {
		t.Fatalf("expected owners lookup error, got %v (%v)", got, err)
	}
	if got, err := fetchCounterValue(mfs, "scanner_messages_total", "outcome", "unknown"); err != nil || got != 1 {
		t.Fatalf("expected empty outcome normalized, got %v (%v)", got, err)
	}
}

func TestNilRecordersAreNoops(t *testing.T) {
	var cart *CartMetrics
	cart.ObserveSync("delete", time.Second, errors.New("x"))
	cart.IncFeedEvent("DELETE", FeedApplied)
	NewCartMetrics(nil).SetActiveSessions(1)
	var roles *RoleMetrics
	roles.IncResolution("owner", false)
	NewScannerMetrics(nil).Inc(ScanDropped)
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
