package metrics

import (
	"strconv"
	"time"
)

// UpdateCapacity refreshes the free-block, bad-block and wear-spread
// gauges. Call after any operation that changes block state: write,
// allocate, GC, refresh, format.
func (r *Registry) UpdateCapacity(freeBlocks, badBlocks int, eraseCountMax, eraseCountSpread uint64) {
	r.FreeBlocksTotal.Set(float64(freeBlocks))
	r.BadBlocksTotal.Set(float64(badBlocks))
	r.EraseCountMax.Set(float64(eraseCountMax))
	r.EraseCountSpread.Set(float64(eraseCountSpread))
}

// SetWriteAmplification records the current ratio of physical to host
// page writes.
func (r *Registry) SetWriteAmplification(ratio float64) {
	r.WriteAmplification.Set(ratio)
}

// RecordGCCycle records one GC cycle: the policy that picked the victim,
// how long victim selection took in simulated ticks, how many valid
// pages were migrated off the victim, and whether the victim was erased.
func (r *Registry) RecordGCCycle(policy string, selectDuration time.Duration, pagesMigrated int, erased bool) {
	r.GCCyclesTotal.WithLabelValues(policy).Inc()
	r.GCVictimSelectDuration.WithLabelValues(policy).Observe(selectDuration.Seconds())
	r.GCPagesMigratedTotal.Add(float64(pagesMigrated))
	if erased {
		r.GCErasesTotal.Inc()
	}
}

// RecordRefreshSweep records the outcome of one periodic refresh sweep:
// how many pages it rewrote.
func (r *Registry) RecordRefreshSweep(pageCopies int) {
	r.RefreshSweepsTotal.Inc()
	r.RefreshPageCopiesTotal.Add(float64(pageCopies))
}

// RecordRefreshCall records one periodic refresh tick and the Bloom
// level that tick sweeps.
func (r *Registry) RecordRefreshCall(level int) {
	r.RefreshCallsTotal.Inc()
	r.RefreshLevelHistogram.Observe(float64(level))
}

// RecordBloomQuery records the outcome of a single Bloom-filter query at
// one level of the hierarchy: true positive, false positive, or true
// negative, matching the accounting BloomSet keeps internally.
func (r *Registry) RecordBloomQuery(level int, truePositive, falsePositive, trueNegative bool) {
	l := strconv.Itoa(level)
	switch {
	case truePositive:
		r.BloomTruePositivesTotal.WithLabelValues(l).Inc()
	case falsePositive:
		r.BloomFalsePositivesTotal.WithLabelValues(l).Inc()
	case trueNegative:
		r.BloomTrueNegativesTotal.WithLabelValues(l).Inc()
	}
}

// RecordBloomInsert records an actual insertion into a level's Bloom
// filter, independent of query outcomes.
func (r *Registry) RecordBloomInsert(level int) {
	r.BloomActualInsertsTotal.WithLabelValues(strconv.Itoa(level)).Inc()
}
