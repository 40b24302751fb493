package metrics

import (
	"fiestapinata/internal/events"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the game collectors on a registry of their own.
type Metrics struct {
	Registry       *prometheus.Registry
	Spawned        *prometheus.CounterVec
	Expired        *prometheus.CounterVec
	Hits           *prometheus.CounterVec
	ActiveSessions prometheus.Gauge
	UpdateSeconds  prometheus.Histogram
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		Spawned: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pinata_targets_spawned_total",
			Help: "Targets spawned, by pool.",
		}, []string{"pool"}),
		Expired: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pinata_targets_expired_total",
			Help: "Targets that ran out of lifetime, by pool.",
		}, []string{"pool"}),
		Hits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pinata_targets_hit_total",
			Help: "Targets destroyed by a click, by pool.",
		}, []string{"pool"}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pinata_sessions_active",
			Help: "Game sessions currently running.",
		}),
		UpdateSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pinata_frame_update_seconds",
			Help:    "Wall time spent in one session update.",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 8),
		}),
	}
	m.Registry.MustRegister(m.Spawned, m.Expired, m.Hits, m.ActiveSessions, m.UpdateSeconds)
	return m
}

// Observe counts one target event.
func (m *Metrics) Observe(ev events.TargetEvent) {
	pool := string(ev.Pool)
	switch ev.Kind {
	case events.Spawned:
		m.Spawned.WithLabelValues(pool).Inc()
	case events.Expired:
		m.Expired.WithLabelValues(pool).Inc()
	case events.Hit:
		m.Hits.WithLabelValues(pool).Inc()
	}
}

func (m *Metrics) ObserveUpdate(d time.Duration) {
	m.UpdateSeconds.Observe(d.Seconds())
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
