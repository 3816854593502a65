package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the coordinator's prometheus collectors. A nil *Metrics is
// valid everywhere and records nothing, which keeps tests free of global
// registry collisions.
type Metrics struct {
	ActiveRooms      prometheus.Gauge
	ConnectedClients prometheus.Gauge
	IntentsReceived  *prometheus.CounterVec
	HintDuration     prometheus.Histogram
}

func New(namespace string) *Metrics {
	m := &Metrics{
		ActiveRooms: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_rooms",
			Help:      "Number of live rooms",
		}),
		ConnectedClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connected_clients",
			Help:      "Number of open websocket connections",
		}),
		IntentsReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "intents_received_total",
			Help:      "Inbound intents by type",
		}, []string{"type"}),
		HintDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "hint_duration_seconds",
			Help:      "Hint solver search latency",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		}),
	}

	prometheus.MustRegister(
		m.ActiveRooms,
		m.ConnectedClients,
		m.IntentsReceived,
		m.HintDuration,
	)
	return m
}

func (m *Metrics) RoomOpened() {
	if m != nil {
		m.ActiveRooms.Inc()
	}
}

func (m *Metrics) RoomClosed() {
	if m != nil {
		m.ActiveRooms.Dec()
	}
}

func (m *Metrics) ClientConnected() {
	if m != nil {
		m.ConnectedClients.Inc()
	}
}

func (m *Metrics) ClientDisconnected() {
	if m != nil {
		m.ConnectedClients.Dec()
	}
}

func (m *Metrics) Intent(intentType string) {
	if m != nil {
		m.IntentsReceived.WithLabelValues(intentType).Inc()
	}
}

func (m *Metrics) ObserveHint(seconds float64) {
	if m != nil {
		m.HintDuration.Observe(seconds)
	}
}

// Handler serves the scrape endpoint; mounted on its own listener by main.
func Handler() http.Handler {
	return promhttp.Handler()
}
