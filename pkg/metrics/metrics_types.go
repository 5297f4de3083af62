package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds every metric the FTL core exposes. Fields are grouped by
// the same subsystem boundaries as the rest of the module: capacity/wear,
// garbage collection, refresh, and the Bloom-filter hierarchy backing
// refresh scheduling.
type Registry struct {
	// Capacity / wear metrics
	FreeBlocksTotal     prometheus.Gauge
	BadBlocksTotal      prometheus.Gauge
	EraseCountMax       prometheus.Gauge
	EraseCountSpread    prometheus.Gauge
	WriteAmplification  prometheus.Gauge

	// Garbage collection metrics
	GCCyclesTotal          *prometheus.CounterVec
	GCPagesMigratedTotal   prometheus.Counter
	GCErasesTotal          prometheus.Counter
	GCVictimSelectDuration *prometheus.HistogramVec

	// Refresh metrics
	RefreshSweepsTotal     prometheus.Counter
	RefreshPageCopiesTotal prometheus.Counter
	RefreshCallsTotal      prometheus.Counter
	RefreshLevelHistogram  prometheus.Histogram

	// Bloom-filter hierarchy metrics, one counter vector per outcome with
	// the filter level as the label.
	BloomTruePositivesTotal  *prometheus.CounterVec
	BloomFalsePositivesTotal *prometheus.CounterVec
	BloomTrueNegativesTotal  *prometheus.CounterVec
	BloomActualInsertsTotal  *prometheus.CounterVec

	registry *prometheus.Registry
	mu       sync.RWMutex
}

var (
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the global metrics registry, created on first use.
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with every FTL metric
// registered against its own prometheus.Registry, so a simulator can run
// several FTL instances side by side without collector name collisions.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		registry: reg,
	}

	r.initCapacityMetrics()
	r.initGCMetrics()
	r.initRefreshMetrics()
	r.initBloomMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry, for
// wiring into an HTTP exposition endpoint or a test's own gatherer.
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
