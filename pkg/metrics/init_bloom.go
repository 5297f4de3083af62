package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initBloomMetrics() {
	r.BloomTruePositivesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "ftlsim_bloom_true_positives_total",
			Help: "Bloom-filter queries that correctly reported membership, by level",
		},
		[]string{"level"},
	)

	r.BloomFalsePositivesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "ftlsim_bloom_false_positives_total",
			Help: "Bloom-filter queries that reported membership for a page not actually at that level, by level",
		},
		[]string{"level"},
	)

	r.BloomTrueNegativesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "ftlsim_bloom_true_negatives_total",
			Help: "Bloom-filter queries that correctly reported non-membership, by level",
		},
		[]string{"level"},
	)

	r.BloomActualInsertsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "ftlsim_bloom_actual_inserts_total",
			Help: "Number of pages actually inserted into a level's Bloom filter",
		},
		[]string{"level"},
	)
}
