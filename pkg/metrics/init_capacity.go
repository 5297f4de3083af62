package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initCapacityMetrics() {
	r.FreeBlocksTotal = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "ftlsim_free_blocks_total",
			Help: "Number of blocks currently on the free pool",
		},
	)

	r.BadBlocksTotal = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "ftlsim_bad_blocks_total",
			Help: "Number of blocks retired as bad",
		},
	)

	r.EraseCountMax = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "ftlsim_erase_count_max",
			Help: "Highest per-block erase count observed",
		},
	)

	r.EraseCountSpread = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "ftlsim_erase_count_spread",
			Help: "Difference between the highest and lowest per-block erase count, a wear-leveling health signal",
		},
	)

	r.WriteAmplification = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "ftlsim_write_amplification",
			Help: "Ratio of physical pages written (host writes plus GC and refresh migrations) to host pages written",
		},
	)
}
