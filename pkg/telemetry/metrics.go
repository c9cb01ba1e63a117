package telemetry

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/vuey/pkg/store"
)

// MetricsConfig configures the Prometheus observer.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "vuey").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for persist duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus observer.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "vuey",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics is a store.Observer that records Prometheus metrics.
//
// Metrics collected:
//   - vuey_stores: Gauge of registered stores by strategy
//   - vuey_store_binds_total: Counter of registrations by strategy and whether state was restored
//   - vuey_store_writes_total: Counter of mutations by store and operation
//   - vuey_store_persist_duration_seconds: Histogram of backend write latency
//   - vuey_store_persist_errors_total: Counter of failed backend writes
//   - vuey_store_recoveries_total: Counter of discarded records by reason (read, decode)
//   - vuey_store_missing_actions_total: Counter of stores skipped by bulk operations
type Metrics struct {
	stores          *prometheus.GaugeVec
	binds           *prometheus.CounterVec
	writes          *prometheus.CounterVec
	persistDuration *prometheus.HistogramVec
	persistErrors   *prometheus.CounterVec
	recoveries      *prometheus.CounterVec
	missingActions  *prometheus.CounterVec
}

// NewMetrics registers the store metrics and returns an observer feeding
// them. It panics if the metrics are already registered with the registry,
// like promauto.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		stores: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "stores",
			Help:        "Number of registered stores",
			ConstLabels: config.ConstLabels,
		}, []string{"strategy"}),

		binds: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "store_binds_total",
			Help:        "Total number of store registrations",
			ConstLabels: config.ConstLabels,
		}, []string{"strategy", "restored"}),

		writes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "store_writes_total",
			Help:        "Total number of store mutations",
			ConstLabels: config.ConstLabels,
		}, []string{"store", "op"}),

		persistDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "store_persist_duration_seconds",
			Help:        "Time spent encoding and writing persisted records",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"store", "strategy"}),

		persistErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "store_persist_errors_total",
			Help:        "Total number of failed record writes",
			ConstLabels: config.ConstLabels,
		}, []string{"store", "strategy"}),

		recoveries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "store_recoveries_total",
			Help:        "Total number of persisted records discarded at registration",
			ConstLabels: config.ConstLabels,
		}, []string{"store", "reason"}),

		missingActions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "store_missing_actions_total",
			Help:        "Total number of stores skipped by bulk reset or clear",
			ConstLabels: config.ConstLabels,
		}, []string{"store", "action"}),
	}
}

// StoreBound implements store.Observer.
func (m *Metrics) StoreBound(_ string, strategy store.SaveStrategy, restored bool) {
	m.stores.WithLabelValues(strategy.String()).Inc()
	m.binds.WithLabelValues(strategy.String(), strconv.FormatBool(restored)).Inc()
}

// StoreWritten implements store.Observer.
func (m *Metrics) StoreWritten(name, op string) {
	m.writes.WithLabelValues(name, op).Inc()
}

// StorePersisted implements store.Observer.
func (m *Metrics) StorePersisted(name string, strategy store.SaveStrategy, elapsed time.Duration, err error) {
	m.persistDuration.WithLabelValues(name, strategy.String()).Observe(elapsed.Seconds())
	if err != nil {
		m.persistErrors.WithLabelValues(name, strategy.String()).Inc()
	}
}

// StoreRecovered implements store.Observer.
func (m *Metrics) StoreRecovered(name string, err error) {
	reason := "unknown"
	var re *store.RecordError
	if errors.As(err, &re) {
		reason = re.Op
	}
	m.recoveries.WithLabelValues(name, reason).Inc()
}

// ActionMissing implements store.Observer.
func (m *Metrics) ActionMissing(name, action string) {
	m.missingActions.WithLabelValues(name, action).Inc()
}
