package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector holds the relay's Prometheus metrics
type Collector struct {
	connections      prometheus.Gauge
	connectionsTotal prometheus.Counter
	eventsHandled    *prometheus.CounterVec
	broadcasts       *prometheus.CounterVec
	upstreamLatency  *prometheus.HistogramVec
	upstreamErrors   *prometheus.CounterVec
}

// NewCollector creates a collector registered with the default registerer
func NewCollector() *Collector {
	return NewCollectorWith(prometheus.DefaultRegisterer)
}

// NewCollectorWith creates a collector registered with reg. Tests pass a
// fresh registry to avoid duplicate registration.
func NewCollectorWith(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		connections: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "facebridge_connections",
				Help: "Current number of open WebSocket connections",
			},
		),
		connectionsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "facebridge_connections_total",
				Help: "Total number of WebSocket connections accepted",
			},
		),
		eventsHandled: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "facebridge_events_total",
				Help: "Total number of client events handled",
			},
			[]string{"event", "outcome"},
		),
		broadcasts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "facebridge_broadcasts_total",
				Help: "Total number of broadcast events emitted",
			},
			[]string{"event"},
		),
		upstreamLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "facebridge_upstream_request_duration_seconds",
				Help:    "Face API request duration in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"event"},
		),
		upstreamErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "facebridge_upstream_errors_total",
				Help: "Total number of failed Face API requests",
			},
			[]string{"event"},
		),
	}
}

// ConnectionOpened records a new WebSocket connection
func (c *Collector) ConnectionOpened() {
	c.connections.Inc()
	c.connectionsTotal.Inc()
}

// ConnectionClosed records a closed WebSocket connection
func (c *Collector) ConnectionClosed() {
	c.connections.Dec()
}

// EventHandled records one terminal outcome for a client event
func (c *Collector) EventHandled(event, outcome string) {
	c.eventsHandled.WithLabelValues(event, outcome).Inc()
}

// BroadcastSent records one broadcast fan-out
func (c *Collector) BroadcastSent(event string) {
	c.broadcasts.WithLabelValues(event).Inc()
}

// UpstreamRequest records the duration of one Face API call
func (c *Collector) UpstreamRequest(event string, duration time.Duration) {
	c.upstreamLatency.WithLabelValues(event).Observe(duration.Seconds())
}

// UpstreamError records one failed Face API call
func (c *Collector) UpstreamError(event string) {
	c.upstreamErrors.WithLabelValues(event).Inc()
}
