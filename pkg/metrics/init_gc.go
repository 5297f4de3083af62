package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initGCMetrics() {
	r.GCCyclesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "ftlsim_gc_cycles_total",
			Help: "Total number of GC cycles run, by victim-selection policy",
		},
		[]string{"policy"},
	)

	r.GCPagesMigratedTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "ftlsim_gc_pages_migrated_total",
			Help: "Total number of valid pages copied out of GC victim blocks",
		},
	)

	r.GCErasesTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "ftlsim_gc_erases_total",
			Help: "Total number of GC cycles that erased their victim blocks",
		},
	)

	r.GCVictimSelectDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ftlsim_gc_victim_select_ticks",
			Help:    "Simulated ticks spent selecting a GC victim block, by policy",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"policy"},
	)
}
