package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cacheEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bazaar_cache_events_total",
			Help: "Cache operations by cache name and outcome",
		},
		[]string{"cache", "outcome"},
	)

	cacheEntries = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "bazaar_cache_entries",
			Help: "Number of entries currently held by each cache",
		},
		[]string{"cache"},
	)
)

type metrics struct {
	events  *prometheus.CounterVec
	entries prometheus.Gauge
}

func newMetrics(name string) *metrics {
	return &metrics{
		events:  cacheEvents.MustCurryWith(prometheus.Labels{"cache": name}),
		entries: cacheEntries.WithLabelValues(name),
	}
}

func (m *metrics) observe(status Status) {
	m.events.WithLabelValues(string(status)).Inc()
}

func (m *metrics) size(n int) {
	m.entries.Set(float64(n))
}
