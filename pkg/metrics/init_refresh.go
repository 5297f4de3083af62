package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initRefreshMetrics() {
	r.RefreshSweepsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "ftlsim_refresh_sweeps_total",
			Help: "Total number of periodic refresh sweeps run",
		},
	)

	r.RefreshPageCopiesTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "ftlsim_refresh_page_copies_total",
			Help: "Total number of pages rewritten by the refresh engine",
		},
	)

	r.RefreshCallsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "ftlsim_refresh_calls_total",
			Help: "Total number of periodic refresh ticks handled",
		},
	)

	r.RefreshLevelHistogram = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ftlsim_refresh_selected_level",
			Help:    "Distribution of the Bloom level swept by each refresh tick",
			Buckets: prometheus.LinearBuckets(0, 1, 8),
		},
	)
}
