package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestFeedMetricsExports(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewFeedMetrics(reg)

	metrics.FeedOpened()
	metrics.FeedOpened()
	metrics.FeedClosed()
	metrics.SnapshotDelivered("orders")
	metrics.SnapshotDelivered("orders")
	metrics.FallbackQuery("orders")
	metrics.ObserveSnapshotLatency(40 * time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchGaugeValue(mfs, "order_feed_active"); err != nil {
		t.Fatalf("fetch active: %v", err)
	} else if got != 1 {
		t.Fatalf("expected active=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "order_feed_snapshots_delivered", "collection", "orders"); err != nil {
		t.Fatalf("fetch snapshots: %v", err)
	} else if got != 2 {
		t.Fatalf("expected snapshots=2, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "order_feed_fallback_queries", "collection", "orders"); err != nil {
		t.Fatalf("fetch fallbacks: %v", err)
	} else if got != 1 {
		t.Fatalf("expected fallbacks=1, got %f", got)
	}

	if got, err := fetchHistogramSum(mfs, "order_feed_snapshot_seconds"); err != nil {
		t.Fatalf("fetch latency: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected latency sum > 0, got %f", got)
	}
}

func TestFeedMetricsNilSafe(t *testing.T) {
	var metrics *FeedMetrics
	metrics.FeedOpened()
	metrics.FeedClosed()
	metrics.SnapshotDelivered("orders")
	metrics.FallbackQuery("orders")
	metrics.ObserveSnapshotLatency(time.Second)

	unregistered := NewFeedMetrics(nil)
	unregistered.FeedOpened()
	unregistered.SnapshotDelivered("orders")
}

func fetchGaugeValue(mfs []*dto.MetricFamily, name string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		return metric.GetGauge().GetValue(), nil
	}
	return 0, fmt.Errorf("metric %q has no samples", name)
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

func fetchHistogramSum(mfs []*dto.MetricFamily, name string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		return metric.GetHistogram().GetSampleSum(), nil
	}
	return 0, fmt.Errorf("histogram %q has no samples", name)
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
