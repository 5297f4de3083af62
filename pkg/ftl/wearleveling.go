package ftl

// calculateWearLeveling implements the Li/Lee/Lui wear-leveling factor
// from PageMapping::calculateWearLeveling: (sum EC)^2 / (numBlocks * sum
// EC^2) over every in-use block plus every free block with a nonzero
// erase count. The free pool is stored ascending by erase count, so the
// scan walks it from the tail and stops at the first zero, matching the
// original's early-exit backward scan instead of touching every
// never-erased block on the pool.
func (f *FTL) calculateWearLeveling() float64 {
	var totalErase, sumSquared uint64

	for i := 0; i < f.arena.Len(); i++ {
		if !f.arena.IsInUse(i) {
			continue
		}
		ec := f.arena.Get(i).EraseCount
		totalErase += ec
		sumSquared += ec * ec
	}

	free := f.pool.Indices()
	for i := len(free) - 1; i >= 0; i-- {
		ec := f.arena.Get(free[i]).EraseCount
		if ec == 0 {
			break
		}
		totalErase += ec
		sumSquared += ec * ec
	}

	if sumSquared == 0 {
		return -1
	}

	numBlocks := float64(f.cfg.TotalLogicalBlocks)
	return float64(totalErase) * float64(totalErase) / (numBlocks * float64(sumSquared))
}

// calculateAverageError implements PageMapping::calculateAverageError:
// the mean of every in-use block's peak observed error count.
func (f *FTL) calculateAverageError() float64 {
	var totalError, count float64
	for i := 0; i < f.arena.Len(); i++ {
		if !f.arena.IsInUse(i) {
			continue
		}
		totalError += float64(f.arena.Get(i).MaxErrorCount)
		count++
	}
	return totalError / count
}
