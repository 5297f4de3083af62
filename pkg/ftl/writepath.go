package ftl

import (
	"math"
	"strconv"

	"github.com/dd0wney/ftlsim/pkg/logging"
)

// Write performs a host write, spec.md §6's write(req, tick) operation,
// which may trigger GC synchronously if the free-block ratio has
// dropped below threshold. Returns the updated tick.
func (f *FTL) Write(req WriteRequest, tick float64) float64 {
	if req.IOMap.IsEmpty() {
		f.log.Warn("empty iomap on write", logging.LPN(uint64(req.LPN)))
		return tick + cpuLatencyTicks
	}

	finished := f.writeInternal(req.LPN, req.IOMap, tick, true)
	f.stats.WriteCount++

	if f.FreeBlockRatio() < f.cfg.GCThresholdRatio {
		finished = f.runGC(finished)
	}

	f.updateCapacityMetrics()
	return finished
}

// writeInternal implements spec.md §4.6's write_internal: invalidate any
// old mapping for the touched io units, obtain a write target, write
// each io unit to a freshly allocated page, update the mapping, and
// (when sendToPAL) charge PAL/DRAM timing and register refresh entries.
// Initialization writes pass sendToPAL=false, which per spec.md §4.6
// skips PAL/DRAM charges, refresh registration, and GC entirely — GC
// during warmup is a fatal configuration error the caller (Warmup) is
// responsible for never triggering.
func (f *FTL) writeInternal(lpn LPN, iomap IOMap, tick float64, sendToPAL bool) float64 {
	row := f.mapping.Lookup(lpn)
	touchedUnits := iomap.Units(f.cfg.IOUnitsPerPage)

	for _, u := range touchedUnits {
		old := row[u]
		if old != f.mapping.Sentinel() {
			f.arena.Get(old.Block).Invalidate(old.Page, u)
		}
	}

	readBeforeWrite := !f.cfg.UseRandomIOTweak && len(touchedUnits) < f.cfg.IOUnitsPerPage

	finished := tick

	if sendToPAL && readBeforeWrite {
		for u := 0; u < f.cfg.IOUnitsPerPage; u++ {
			if iomap.Has(u) {
				continue
			}
			old := row[u]
			if old == f.mapping.Sentinel() {
				continue
			}
			finished = f.pal.Read(PALRequest{Block: old.Block, Page: old.Page, IOMap: IOMap(1) << uint(u)}, finished)
		}
	}

	block := f.arena.Get(f.alloc.GetLastFreeBlock(iomap))

	writtenPages := make([]int, len(touchedUnits))
	for i, u := range touchedUnits {
		page := block.AllocateNextWrite(u)
		block.Write(page, u, lpn, tick)
		f.mapping.Set(lpn, u, PhysAddr{Block: block.Index, Page: page})
		writtenPages[i] = page

		if sendToPAL {
			finished = f.pal.Write(PALRequest{Block: block.Index, Page: page, IOMap: IOMap(1) << uint(u)}, finished)
		}
	}

	if !sendToPAL {
		return finished
	}

	mappingBytes := len(touchedUnits) * 8
	finished = f.dram.Write(mappingBytes, finished)
	finished = f.dram.Read(mappingBytes, finished)

	for _, page := range writtenPages {
		layer := page % f.cfg.LayersPerBlock
		f.registerRefresh(block, layer, tick)
	}

	f.stats.HostPagesWritten += uint64(len(touchedUnits))
	f.stats.PhysicalPagesWritten += uint64(len(touchedUnits))

	return finished
}

// registerRefresh implements spec.md §4.6 step 6: always insert the
// catch-all top Bloom level for (block, layer), then walk from the top
// level down, inserting into the next finer level whenever the current
// level's predicted RBER at its refresh period exceeds the ECC
// threshold. Because RBER is monotone non-decreasing in retention time
// and the period shrinks as the level index drops, once a level's RBER
// no longer exceeds the threshold no finer level can exceed it either,
// so the walk stops there.
func (f *FTL) registerRefresh(block *Block, layer int, tick float64) {
	top := f.bloom.NLevels() - 1
	if top < 0 {
		return
	}

	key := refreshKey(block.Index, layer)
	f.insertRefreshLevel(top, key)

	for i := top; i >= 1; i-- {
		period := f.cfg.RefreshPeriod * math.Pow(2, float64(i))
		rber := f.errMod.RBER(period, block.EraseCount, layer)
		if rber <= f.eccThreshold {
			break
		}
		f.insertRefreshLevel(i-1, key)
	}
}

func (f *FTL) insertRefreshLevel(level int, key uint64) {
	f.bloom.Insert(level, key)
	f.refTbl.Record(key, level)
	if f.metrics != nil {
		f.metrics.RecordBloomInsert(level)
	}
}

// WarmupConfig drives the initialization fill described in spec.md §6's
// fill_ratio/invalid_page_ratio/filling_mode keys (supplemented per
// SPEC_FULL.md — spec.md names the keys but doesn't work through the
// three filling-mode variants in §4).
type WarmupConfig struct {
	FillRatio        float64
	InvalidPageRatio float64
	Mode             FillingMode
}

// Warmup fills the mapping table to approximately FillRatio of logical
// capacity using send_to_pal=false writes, then invalidates
// InvalidPageRatio of the filled pages by rewriting them, all without
// charging PAL/DRAM timing or triggering GC or refresh registration
// (spec.md §4.6). seq-seq and seq-rand both fill and rewrite in LPN
// order; rand-rand fills a random permutation of LPNs and rewrites the
// first filled ones of that permutation. If FillRatio exceeds
// 1 - GCThresholdRatio, FillRatio is capped at that value and a warning
// logged (spec.md §7's warning case); InvalidPageRatio is used as given
// and is never adjusted.
func (f *FTL) Warmup(cfg WarmupConfig) {
	fillRatio := cfg.FillRatio
	maxSafeFill := 1 - f.cfg.GCThresholdRatio
	if fillRatio > maxSafeFill {
		f.log.Warn("warmup fill_ratio too high, capping fill_ratio",
			logging.String("requested_fill_ratio", floatToString(fillRatio)),
			logging.String("max_safe_fill_ratio", floatToString(maxSafeFill)))
		fillRatio = maxSafeFill
	}

	total := f.mapping.Len()
	toFill := int(float64(total) * fillRatio)

	var perm []int
	switch cfg.Mode {
	case FillSeqRand, FillSeqSeq:
		for lpn := 0; lpn < toFill; lpn++ {
			f.writeInternal(LPN(lpn), FullIOMap(f.cfg.IOUnitsPerPage), 0, false)
		}
	case FillRandRand:
		perm = f.rng.Perm(total)
		for i := 0; i < toFill; i++ {
			f.writeInternal(LPN(perm[i]), FullIOMap(f.cfg.IOUnitsPerPage), 0, false)
		}
	default:
		for lpn := 0; lpn < toFill; lpn++ {
			f.writeInternal(LPN(lpn), FullIOMap(f.cfg.IOUnitsPerPage), 0, false)
		}
	}

	toInvalidate := int(float64(toFill) * cfg.InvalidPageRatio)
	for i := 0; i < toInvalidate; i++ {
		lpn := LPN(i)
		if perm != nil {
			lpn = LPN(perm[i])
		}
		f.writeInternal(lpn, FullIOMap(f.cfg.IOUnitsPerPage), 0, false)
	}
}

func floatToString(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
