package ftl

// Allocator tracks the current write-target block for each of
// parallel_units parallel slots and hands out the next physical page
// for an io unit within one of those targets, advancing to a new block
// from the free pool when the current one can no longer serve the
// request.
//
// Per spec.md §4.3, which slot serves a given call is not derived from
// the caller's LPN or source block — it is a single rotating index
// shared across every write, GC migration, and refresh migration,
// exactly as the original PageMapping::getLastFreeBlock(Bitset&)
// advances lastFreeBlockIndex unconditionally on every non-random-tweak
// call regardless of who is calling.
type Allocator struct {
	arena         *BlockArena
	pool          *FreeBlockPool
	parallelUnits int
	randomTweak   bool

	// current[s] is the block index currently being written to for slot
	// s. Every slot is populated at construction time, matching the
	// original's init loop over lastFreeBlock.
	current []int

	// lastIndex is the single rotating pointer into current spec.md
	// §4.3 and the original's lastFreeBlockIndex both describe. It
	// advances by one, wrapping at parallelUnits, on every call to
	// GetLastFreeBlock that isn't a random-tweak same-target collision
	// avoidance.
	lastIndex int
	// lastIOMap tracks which io units have already been written on
	// current[lastIndex] since it was last selected, for random-tweak
	// collision detection (the original's lastFreeBlockIOMap).
	lastIOMap IOMap

	reclaimMore bool
}

// NewAllocator builds an allocator with every slot pre-populated from
// the free pool, matching the original's init loop
// ("lastFreeBlock.at(i) = getFreeBlock(i)" for every i in
// [0, pageCountToMaxPerf)), with the rotating index starting at 0.
func NewAllocator(arena *BlockArena, pool *FreeBlockPool, parallelUnits int, randomTweak bool) *Allocator {
	a := &Allocator{
		arena:         arena,
		pool:          pool,
		parallelUnits: parallelUnits,
		randomTweak:   randomTweak,
		current:       make([]int, parallelUnits),
	}
	for s := range a.current {
		a.current[s] = a.GetFreeBlock(s)
	}
	return a
}

// GetFreeBlock pulls a block matching stripe from the free pool. If no
// block in the pool matches the stripe, it silently falls back to the
// first free block regardless of stripe — spec.md §9 flags this as an
// open question ("silently breaking parallelism") rather than a bug to
// fix outright, so the fallback is preserved deliberately rather than
// rejected.
func (a *Allocator) GetFreeBlock(stripe int) int {
	if i, ok := a.pool.PopStripe(stripe, a.parallelUnits); ok {
		return i
	}
	if i, ok := a.pool.PopFront(); ok {
		return i
	}
	fatalf("Allocator.GetFreeBlock", "no free block available for stripe %d", stripe)
	return 0
}

// GetLastFreeBlock implements spec.md §4.3's get_last_free_block(iomap):
// no stripe argument, because the slot it serves from is not chosen by
// the caller. In non-random-tweak mode, every call advances the
// rotating index to the next slot round-robin. In random-tweak mode, a
// call only advances the index when the requested iomap collides with
// the io units already written on the current slot since it was
// selected; otherwise it stays on the same slot and folds the new iomap
// into the accumulated mask. Whichever slot the index lands on, if its
// current target block is full, a fresh block replaces it and
// reclaimMore is raised.
func (a *Allocator) GetLastFreeBlock(iomap IOMap) int {
	if !a.randomTweak || (a.lastIOMap&iomap) != 0 {
		a.lastIndex++
		if a.lastIndex == a.parallelUnits {
			a.lastIndex = 0
		}
		a.lastIOMap = iomap
	} else {
		a.lastIOMap |= iomap
	}

	cur := a.current[a.lastIndex]
	if cur < 0 || a.arena.Get(cur).IsFull() {
		cur = a.GetFreeBlock(a.lastIndex)
		a.current[a.lastIndex] = cur
		a.reclaimMore = true
	}

	return cur
}

// ReclaimMore reports whether a write target was exhausted since the
// flag was last cleared, signaling the next GC cycle should reclaim
// parallel_units additional blocks on top of its usual quantity.
func (a *Allocator) ReclaimMore() bool {
	return a.reclaimMore
}

// ClearReclaimMore resets the flag; GCEngine calls this once it has
// accounted for the extra reclaim quantity.
func (a *Allocator) ClearReclaimMore() {
	a.reclaimMore = false
}

// InvalidateCurrent clears any slot currently targeting block, used
// when GC or refresh pulls the current target out from under the
// allocator: a slot keeps its target after the target fills up, until
// the slot's next allocation, so GC can erase a full block that is
// still a slot's target, and format() can erase an in-progress target.
// Slots are scanned directly rather than derived from block's index
// modulo parallelUnits, since GetFreeBlock's stripe fallback can leave
// a slot holding a block whose index doesn't match its slot number.
func (a *Allocator) InvalidateCurrent(block int) {
	for s, cur := range a.current {
		if cur == block {
			a.current[s] = -1
			if s == a.lastIndex {
				a.lastIOMap = 0
			}
		}
	}
}
