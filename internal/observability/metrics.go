package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	WatchEvents      *prometheus.CounterVec
	BuildsTotal      *prometheus.CounterVec
	BuildDuration    *prometheus.HistogramVec
	BuildRetries     prometheus.Counter
	QueueDepth       prometheus.Gauge
	ConnectedClients prometheus.Gauge
	BroadcastsTotal  prometheus.Counter
	SendFailures     prometheus.Counter
	HealthStatus     prometheus.Gauge

	registry *prometheus.Registry
	handler  http.Handler
}

func NewMetrics() *Metrics {
	return &Metrics{
		WatchEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hotreload_watch_events_total",
				Help: "Total number of file system events detected",
			},
			[]string{"event_type"},
		),
		BuildsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hotreload_builds_total",
				Help: "Total number of build attempts",
			},
			[]string{"build_type", "result"},
		),
		BuildDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "hotreload_build_duration_seconds",
				Help:    "Build command duration in seconds",
				Buckets: prometheus.ExponentialBuckets(0.01, 4, 10),
			},
			[]string{"build_type"},
		),
		BuildRetries: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "hotreload_build_retries_total",
				Help: "Total number of build retries",
			},
		),
		QueueDepth: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "hotreload_build_queue_depth",
				Help: "Number of tasks waiting in the build queue",
			},
		),
		ConnectedClients: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "hotreload_websocket_clients",
				Help: "Number of currently connected websocket clients",
			},
		),
		BroadcastsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "hotreload_broadcasts_total",
				Help: "Total number of broadcast messages sent",
			},
		),
		SendFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "hotreload_send_failures_total",
				Help: "Total number of failed client writes",
			},
		),
		HealthStatus: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "hotreload_health_status",
				Help: "Application health status (1 = healthy, 0 = unhealthy)",
			},
		),
	}
}

func (m *Metrics) RecordBuild(buildType string, success bool, duration time.Duration) {
	result := "success"
	if !success {
		result = "failure"
	}
	m.BuildsTotal.WithLabelValues(buildType, result).Inc()
	m.BuildDuration.WithLabelValues(buildType).Observe(duration.Seconds())
}

func (m *Metrics) SetHealthStatus(healthy bool) {
	if healthy {
		m.HealthStatus.Set(1)
	} else {
		m.HealthStatus.Set(0)
	}
}

func (m *Metrics) Handler() http.Handler {
	if m.handler != nil {
		return m.handler
	}
	return promhttp.Handler()
}

func (m *Metrics) Register() error {
	m.registry = prometheus.NewRegistry()

	collectors := []prometheus.Collector{
		m.WatchEvents,
		m.BuildsTotal,
		m.BuildDuration,
		m.BuildRetries,
		m.QueueDepth,
		m.ConnectedClients,
		m.BroadcastsTotal,
		m.SendFailures,
		m.HealthStatus,
	}
	for _, c := range collectors {
		if err := m.registry.Register(c); err != nil {
			return err
		}
	}

	// Create the handler using our custom registry
	m.handler = promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})

	return nil
}
