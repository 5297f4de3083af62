package ftl

// BlockArena is the dense array of block state spec.md §9's redesign
// note calls for: blocks never move, never get boxed in or out of a
// map, and are looked up by plain index. An in-use bitset tracks which
// indices are currently allocated to a write target or hold live data,
// distinct from which are sitting on the free pool.
type BlockArena struct {
	blocks []*Block
	inUse  []bool
}

// NewBlockArena constructs every block up front in the post-erase
// state, matching spec.md §3's "created once at init in the free pool"
// lifecycle.
func NewBlockArena(totalBlocks, pagesInBlock, ioUnitsPerPage int, initialEraseCount uint64) *BlockArena {
	a := &BlockArena{
		blocks: make([]*Block, totalBlocks),
		inUse:  make([]bool, totalBlocks),
	}
	for i := range a.blocks {
		a.blocks[i] = NewBlock(i, pagesInBlock, ioUnitsPerPage, initialEraseCount)
	}
	return a
}

// Len returns the total number of blocks in the arena.
func (a *BlockArena) Len() int {
	return len(a.blocks)
}

// Get returns the block at index i. Out-of-range indices are a
// precondition violation: the mapping table should never produce one.
func (a *BlockArena) Get(i int) *Block {
	if i < 0 || i >= len(a.blocks) {
		fatalf("BlockArena.Get", "block index %d out of range [0,%d)", i, len(a.blocks))
	}
	return a.blocks[i]
}

// MarkInUse flags block i as allocated (either a current write target or
// holding live data outside the free pool).
func (a *BlockArena) MarkInUse(i int) {
	a.inUse[i] = true
}

// MarkFree flags block i as no longer in use, following a successful
// erase back onto the free pool.
func (a *BlockArena) MarkFree(i int) {
	a.inUse[i] = false
}

// MarkRetired flags block i as no longer in use without placing it on
// the free pool, for a bad block discarded after crossing
// bad_block_threshold (spec.md §4.7). A retired block counts toward
// neither n_free_blocks nor |blocks_in_use|, matching spec.md §8
// scenario 6's post-retirement invariant.
func (a *BlockArena) MarkRetired(i int) {
	a.inUse[i] = false
}

// IsInUse reports whether block i is currently allocated.
func (a *BlockArena) IsInUse(i int) bool {
	return a.inUse[i]
}

// InUseCount returns the number of blocks currently allocated, the
// complement of the free pool's size used by spec.md §8 invariant 3
// (n_free_blocks + |blocks_in_use| = total_physical_blocks).
func (a *BlockArena) InUseCount() int {
	n := 0
	for _, u := range a.inUse {
		if u {
			n++
		}
	}
	return n
}

// EraseCountBounds returns the minimum and maximum erase count across
// every block, used for the wear-spread statistic.
func (a *BlockArena) EraseCountBounds() (min, max uint64) {
	if len(a.blocks) == 0 {
		return 0, 0
	}
	min, max = a.blocks[0].EraseCount, a.blocks[0].EraseCount
	for _, b := range a.blocks[1:] {
		if b.EraseCount < min {
			min = b.EraseCount
		}
		if b.EraseCount > max {
			max = b.EraseCount
		}
	}
	return min, max
}
