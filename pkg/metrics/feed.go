package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// FeedMetrics records live order feed activity.
type FeedMetrics struct {
	activeFeeds        prometheus.Gauge
	snapshotsDelivered *prometheus.CounterVec
	fallbackQueries    *prometheus.CounterVec
	snapshotLatency    prometheus.Histogram
}

// NewFeedMetrics registers the feed metrics on the provided registerer.
func NewFeedMetrics(reg prometheus.Registerer) *FeedMetrics {
	if reg == nil {
		return &FeedMetrics{}
	}
	activeFeeds := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "order_feed_active",
		Help: "Currently open live order feeds.",
	})
	snapshotsDelivered := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_feed_snapshots_delivered",
		Help: "Snapshots delivered to live order feeds.",
	}, []string{"collection"})
	fallbackQueries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_feed_fallback_queries",
		Help: "Feed queries served by the coarse fallback after a missing composite index.",
	}, []string{"collection"})
	snapshotLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "order_feed_snapshot_seconds",
		Help:    "Time to run one feed snapshot query.",
		Buckets: prometheus.DefBuckets,
	})
	reg.MustRegister(activeFeeds, snapshotsDelivered, fallbackQueries, snapshotLatency)
	return &FeedMetrics{
		activeFeeds:        activeFeeds,
		snapshotsDelivered: snapshotsDelivered,
		fallbackQueries:    fallbackQueries,
		snapshotLatency:    snapshotLatency,
	}
}

// FeedOpened increments the active feed gauge.
func (f *FeedMetrics) FeedOpened() {
	if f == nil || f.activeFeeds == nil {
		return
	}
	f.activeFeeds.Inc()
}

// FeedClosed decrements the active feed gauge.
func (f *FeedMetrics) FeedClosed() {
	if f == nil || f.activeFeeds == nil {
		return
	}
	f.activeFeeds.Dec()
}

// SnapshotDelivered counts one delivered snapshot for the collection.
func (f *FeedMetrics) SnapshotDelivered(collection string) {
	if f == nil || f.snapshotsDelivered == nil {
		return
	}
	f.snapshotsDelivered.WithLabelValues(normalizeLabel(collection)).Inc()
}

// FallbackQuery counts one coarse-query fallback for the collection.
func (f *FeedMetrics) FallbackQuery(collection string) {
	if f == nil || f.fallbackQueries == nil {
		return
	}
	f.fallbackQueries.WithLabelValues(normalizeLabel(collection)).Inc()
}

// ObserveSnapshotLatency records the duration of one snapshot query.
func (f *FeedMetrics) ObserveSnapshotLatency(d time.Duration) {
	if f == nil || f.snapshotLatency == nil {
		return
	}
	f.snapshotLatency.Observe(d.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
