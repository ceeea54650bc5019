package monitoring

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "phoneos"

// Metrics holds all Prometheus metrics. A nil *Metrics is valid and records
// nothing, so components can be built without one.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RequestSize     *prometheus.HistogramVec
	ResponseSize    *prometheus.HistogramVec

	// Store metrics
	ActionsTotal       *prometheus.CounterVec
	StateChanges       prometheus.Counter
	TransitionDuration prometheus.Histogram

	// Device metrics, mirrored from the latest state
	BatteryLevel        prometheus.Gauge
	Charging            prometheus.Gauge
	RunningApps         prometheus.Gauge
	RecentApps          prometheus.Gauge
	UnreadNotifications prometheus.Gauge
	Booted              prometheus.Gauge
	Locked              prometheus.Gauge

	// Persistence metrics
	SnapshotOps      *prometheus.CounterVec
	SnapshotDuration *prometheus.HistogramVec
	BreakerState     prometheus.Gauge

	// WebSocket metrics
	WSConnections prometheus.Gauge
	WSMessages    *prometheus.CounterVec

	// Event publishing
	EventsPublished *prometheus.CounterVec

	startTime time.Time

	// snapshot backs the JSON health endpoint
	snapshot Snapshot
	mu       sync.RWMutex
}

// Snapshot holds running totals for the JSON API
type Snapshot struct {
	TotalRequests     int64   `json:"totalRequests"`
	TotalErrors       int64   `json:"totalErrors"`
	TotalActions      int64   `json:"totalActions"`
	ActiveConnections int64   `json:"activeConnections"`
	AvgRequestSeconds float64 `json:"avgRequestSeconds"`
	UptimeSeconds     float64 `json:"uptimeSeconds"`

	totalDuration float64
}

// NewMetrics registers every collector on a private registry, so several
// instances can coexist in one process.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	m := &Metrics{
		registry:  reg,
		startTime: time.Now(),

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		RequestSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_size_bytes",
				Help:      "HTTP request size in bytes",
				Buckets:   []float64{100, 1000, 10000, 100000, 1000000},
			},
			[]string{"method", "path"},
		),
		ResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_response_size_bytes",
				Help:      "HTTP response size in bytes",
				Buckets:   []float64{100, 1000, 10000, 100000, 1000000},
			},
			[]string{"method", "path"},
		),

		ActionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "actions_total",
				Help:      "Actions dispatched, by kind",
			},
			[]string{"kind"},
		),
		StateChanges: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "state_changes_total",
				Help:      "Dispatches that produced a new state",
			},
		),
		TransitionDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "transition_duration_seconds",
				Help:      "Time spent in the transition function",
				Buckets:   []float64{.00001, .00005, .0001, .0005, .001, .005, .01},
			},
		),

		BatteryLevel: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "battery_level", Help: "Battery level between 0 and 1",
		}),
		Charging: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "battery_charging", Help: "1 while charging",
		}),
		RunningApps: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "running_apps", Help: "Depth of the task stack",
		}),
		RecentApps: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "recent_apps", Help: "Entries in the recents list",
		}),
		UnreadNotifications: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "unread_notifications", Help: "Unread notifications in the shade",
		}),
		Booted: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "booted", Help: "1 once the device has booted",
		}),
		Locked: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "locked", Help: "1 while the lock screen is up",
		}),

		SnapshotOps: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "snapshot_operations_total",
				Help:      "Snapshot loads and saves by result",
			},
			[]string{"op", "result"},
		),
		SnapshotDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "snapshot_duration_seconds",
				Help:      "Snapshot load and save duration in seconds",
				Buckets:   []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"op"},
		),
		BreakerState: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "snapshot_breaker_state",
			Help:      "Snapshot breaker state: 0 closed, 1 half-open, 2 open",
		}),

		WSConnections: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "ws_connections", Help: "Number of active WebSocket connections",
		}),
		WSMessages: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ws_messages_total",
				Help:      "Total number of WebSocket messages",
			},
			[]string{"direction", "type"},
		),

		EventsPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_published_total",
				Help:      "State snapshots published to the message bus",
			},
			[]string{"result"},
		),
	}

	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "uptime_seconds",
		Help:      "Process uptime in seconds",
	}, func() float64 {
		return time.Since(m.startTime).Seconds()
	})

	return m
}

// Handler serves the registry in Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Gatherer exposes the registry for tests
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration, reqSize, respSize int64) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.RequestSize.WithLabelValues(method, path).Observe(float64(reqSize))
	m.ResponseSize.WithLabelValues(method, path).Observe(float64(respSize))

	m.mu.Lock()
	m.snapshot.TotalRequests++
	m.snapshot.totalDuration += duration.Seconds()
	if status != "" && (status[0] == '4' || status[0] == '5') {
		m.snapshot.TotalErrors++
	}
	m.mu.Unlock()
}

// RecordAction records one dispatch
func (m *Metrics) RecordAction(kind string, changed bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.ActionsTotal.WithLabelValues(kind).Inc()
	m.TransitionDuration.Observe(duration.Seconds())
	if changed {
		m.StateChanges.Inc()
	}

	m.mu.Lock()
	m.snapshot.TotalActions++
	m.mu.Unlock()
}

// Device is the subset of state mirrored into gauges
type Device struct {
	BatteryLevel float64
	Charging     bool
	Running      int
	Recents      int
	Unread       int
	Booted       bool
	Locked       bool
}

// ObserveDevice updates the device gauges
func (m *Metrics) ObserveDevice(d Device) {
	if m == nil {
		return
	}
	m.BatteryLevel.Set(d.BatteryLevel)
	m.Charging.Set(boolGauge(d.Charging))
	m.RunningApps.Set(float64(d.Running))
	m.RecentApps.Set(float64(d.Recents))
	m.UnreadNotifications.Set(float64(d.Unread))
	m.Booted.Set(boolGauge(d.Booted))
	m.Locked.Set(boolGauge(d.Locked))
}

// RecordSnapshot records a snapshot load or save
func (m *Metrics) RecordSnapshot(op, result string, duration time.Duration) {
	if m == nil {
		return
	}
	m.SnapshotOps.WithLabelValues(op, result).Inc()
	m.SnapshotDuration.WithLabelValues(op).Observe(duration.Seconds())
}

// SetBreakerState records the snapshot breaker state
func (m *Metrics) SetBreakerState(state int) {
	if m == nil {
		return
	}
	m.BreakerState.Set(float64(state))
}

// RecordWSMessage records a WebSocket message
func (m *Metrics) RecordWSMessage(direction, msgType string) {
	if m == nil {
		return
	}
	m.WSMessages.WithLabelValues(direction, msgType).Inc()
}

// IncWSConnections increments WebSocket connections
func (m *Metrics) IncWSConnections() {
	if m == nil {
		return
	}
	m.WSConnections.Inc()
	m.mu.Lock()
	m.snapshot.ActiveConnections++
	m.mu.Unlock()
}

// DecWSConnections decrements WebSocket connections
func (m *Metrics) DecWSConnections() {
	if m == nil {
		return
	}
	m.WSConnections.Dec()
	m.mu.Lock()
	m.snapshot.ActiveConnections--
	m.mu.Unlock()
}

// RecordPublish records an event bus publish
func (m *Metrics) RecordPublish(result string) {
	if m == nil {
		return
	}
	m.EventsPublished.WithLabelValues(result).Inc()
}

// Snapshot returns the running totals
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := m.snapshot
	if s.TotalRequests > 0 {
		s.AvgRequestSeconds = s.totalDuration / float64(s.TotalRequests)
	}
	s.UptimeSeconds = time.Since(m.startTime).Seconds()
	return s
}

func boolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
