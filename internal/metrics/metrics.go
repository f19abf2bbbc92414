package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace prefixes every metric this process exports
const Namespace = "goodaideas"

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// HTTP API
	HTTPRequestsTotal     *prometheus.CounterVec
	HTTPRequestDuration   *prometheus.HistogramVec
	HTTPRequestSize       *prometheus.HistogramVec
	HTTPResponseSize      *prometheus.HistogramVec
	HTTPActiveConnections *prometheus.GaugeVec

	// Remote data backend
	RemoteCallsTotal   *prometheus.CounterVec
	RemoteCallDuration *prometheus.HistogramVec
	AuthEventsTotal    *prometheus.CounterVec

	// State store
	StoreActionsTotal   *prometheus.CounterVec
	StoreSubscribers    prometheus.Gauge
	UnreadNotifications prometheus.Gauge

	// Settings partition
	PersistWritesTotal   *prometheus.CounterVec
	PersistWriteDuration *prometheus.HistogramVec

	// Self-hosted database
	DatabaseQueryDuration   *prometheus.HistogramVec
	DatabaseQueriesTotal    *prometheus.CounterVec
	DatabaseConnectionsOpen *prometheus.GaugeVec

	// Redis
	RedisOperationDuration *prometheus.HistogramVec
	RedisOperationsTotal   *prometheus.CounterVec

	// User-facing failures by notice type
	ErrorsTotal *prometheus.CounterVec
}

var (
	instance *Metrics
	once     sync.Once

	latencyBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5}
	remoteBuckets  = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	fastBuckets    = []float64{.0001, .0005, .001, .005, .01, .05, .1}
	sizeBuckets    = prometheus.ExponentialBuckets(100, 10, 7)
)

func counter(subsystem, name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace, Subsystem: subsystem, Name: name, Help: help,
	}, labels)
}

func histogram(subsystem, name, help string, buckets []float64, labels ...string) *prometheus.HistogramVec {
	return promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace, Subsystem: subsystem, Name: name, Help: help, Buckets: buckets,
	}, labels)
}

func gauge(subsystem, name, help string, labels ...string) *prometheus.GaugeVec {
	return promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: Namespace, Subsystem: subsystem, Name: name, Help: help,
	}, labels)
}

// Initialize registers every metric once with the default registry
func Initialize() *Metrics {
	once.Do(func() {
		instance = &Metrics{
			HTTPRequestsTotal:     counter("http", "requests_total", "API requests served", "method", "path", "status"),
			HTTPRequestDuration:   histogram("http", "request_duration_seconds", "API request latency", latencyBuckets, "method", "path", "status"),
			HTTPRequestSize:       histogram("http", "request_size_bytes", "API request body size", sizeBuckets, "method", "path"),
			HTTPResponseSize:      histogram("http", "response_size_bytes", "API response body size", sizeBuckets, "method", "path", "status"),
			HTTPActiveConnections: gauge("http", "active_requests", "API requests in flight", "method", "path"),

			RemoteCallsTotal:   counter("remote", "calls_total", "Calls to the remote data backend", "backend", "table", "operation", "status"),
			RemoteCallDuration: histogram("remote", "call_duration_seconds", "Remote data backend latency", remoteBuckets, "backend", "table", "operation"),
			AuthEventsTotal:    counter("remote", "auth_events_total", "Session change events delivered to the store", "event"),

			StoreActionsTotal: counter("store", "actions_total", "State store actions", "action", "status"),
			StoreSubscribers: promauto.NewGauge(prometheus.GaugeOpts{
				Namespace: Namespace, Subsystem: "store", Name: "subscribers", Help: "Active state store subscribers",
			}),
			UnreadNotifications: promauto.NewGauge(prometheus.GaugeOpts{
				Namespace: Namespace, Subsystem: "store", Name: "unread_notifications", Help: "Unread notifications held by the state store",
			}),

			PersistWritesTotal:   counter("persist", "writes_total", "Settings partition writes", "backend", "status"),
			PersistWriteDuration: histogram("persist", "write_duration_seconds", "Settings partition write latency", fastBuckets, "backend"),

			DatabaseQueryDuration:   histogram("database", "query_duration_seconds", "Database query latency", latencyBuckets, "query_type", "table"),
			DatabaseQueriesTotal:    counter("database", "queries_total", "Database queries", "query_type", "table", "status"),
			DatabaseConnectionsOpen: gauge("database", "connections_open", "Open database connections", "database"),

			RedisOperationDuration: histogram("redis", "operation_duration_seconds", "Redis operation latency", fastBuckets, "operation", "key_pattern"),
			RedisOperationsTotal:   counter("redis", "operations_total", "Redis operations", "operation", "status"),

			ErrorsTotal: counter("", "errors_total", "Failed actions by notice type", "error_type", "endpoint"),
		}
	})
	return instance
}

// Get returns the global metrics instance
func Get() *Metrics {
	if instance == nil {
		return Initialize()
	}
	return instance
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// ObserveRemoteCall records one remote backend call started at start
func ObserveRemoteCall(backend, table, operation string, start time.Time, err error) {
	m := Get()
	m.RemoteCallsTotal.WithLabelValues(backend, table, operation, status(err)).Inc()
	m.RemoteCallDuration.WithLabelValues(backend, table, operation).Observe(time.Since(start).Seconds())
}

// ObserveStoreAction records one state store action
func ObserveStoreAction(action string, err error) {
	Get().StoreActionsTotal.WithLabelValues(action, status(err)).Inc()
}

// ObservePersistWrite records one settings partition write
func ObservePersistWrite(backend string, start time.Time, err error) {
	m := Get()
	m.PersistWritesTotal.WithLabelValues(backend, status(err)).Inc()
	m.PersistWriteDuration.WithLabelValues(backend).Observe(time.Since(start).Seconds())
}

// ObserveQuery records one database query
func ObserveQuery(queryType, table string, start time.Time, err error) {
	m := Get()
	m.DatabaseQueriesTotal.WithLabelValues(queryType, table, status(err)).Inc()
	m.DatabaseQueryDuration.WithLabelValues(queryType, table).Observe(time.Since(start).Seconds())
}

// ObserveRedis records one redis operation
func ObserveRedis(operation, keyPattern string, start time.Time, err error) {
	m := Get()
	m.RedisOperationsTotal.WithLabelValues(operation, status(err)).Inc()
	m.RedisOperationDuration.WithLabelValues(operation, keyPattern).Observe(time.Since(start).Seconds())
}
