package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Feed event outcomes as seen by a cart engine.
const (
	FeedApplied    = "applied"
	FeedSuppressed = "suppressed"
	FeedIgnored    = "ignored"
)

// CartMetrics records remote mirroring and change-feed activity of the cart engines.
type CartMetrics struct {
	syncFailures *prometheus.CounterVec
	syncDuration *prometheus.HistogramVec
	feedEvents   *prometheus.CounterVec
	sessions     prometheus.Gauge
}

// NewCartMetrics registers the cart metrics on reg. A nil registerer yields a
// no-op recorder.
func NewCartMetrics(reg prometheus.Registerer) *CartMetrics {
	if reg == nil {
		return &CartMetrics{}
	}
	m := &CartMetrics{
		syncFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cart_remote_sync_failures_total",
			Help: "Remote shopping list calls that failed, by operation.",
		}, []string{"op"}),
		syncDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cart_remote_sync_duration_seconds",
			Help:    "Latency of remote shopping list calls.",
			Buckets: prometheus.DefBuckets,
		}, []string{"op"}),
		feedEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cart_feed_events_total",
			Help: "Change feed events received by cart engines, by type and outcome.",
		}, []string{"type", "outcome"}),
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "storefront_sessions_active",
			Help: "Storefront sessions currently held in memory.",
		}),
	}
	reg.MustRegister(m.syncFailures, m.syncDuration, m.feedEvents, m.sessions)
	return m
}

func (m *CartMetrics) ObserveSync(op string, d time.Duration, err error) {
	if m == nil || m.syncDuration == nil {
		return
	}
	op = normalizeLabel(op)
	m.syncDuration.WithLabelValues(op).Observe(d.Seconds())
	if err != nil {
		m.syncFailures.WithLabelValues(op).Inc()
	}
}

func (m *CartMetrics) IncFeedEvent(eventType, outcome string) {
	if m == nil || m.feedEvents == nil {
		return
	}
	m.feedEvents.WithLabelValues(normalizeLabel(eventType), normalizeLabel(outcome)).Inc()
}

func (m *CartMetrics) SetActiveSessions(n int) {
	if m == nil || m.sessions == nil {
		return
	}
	m.sessions.Set(float64(n))
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
