package ftl

import "container/list"

// FreeBlockPool keeps free block indices ordered by ascending erase
// count so that wear leveling always hands out the least-worn block
// first. It is the same container/list doubly-linked-list shape the
// teacher repo uses for LRU cache ordering, repurposed here from
// recency order to erase-count order: Put walks from the tail (the
// highest erase count) looking for the first element it is not smaller
// than, and inserts after it, rather than always pushing to the front.
type FreeBlockPool struct {
	list *list.List
	elem map[int]*list.Element
	bloc *BlockArena
}

// NewFreeBlockPool builds an empty pool over the given arena; callers
// populate it with Put during initialization.
func NewFreeBlockPool(arena *BlockArena) *FreeBlockPool {
	return &FreeBlockPool{
		list: list.New(),
		elem: make(map[int]*list.Element),
		bloc: arena,
	}
}

// Len returns the number of free blocks.
func (p *FreeBlockPool) Len() int {
	return p.list.Len()
}

// Put inserts block index i into the pool, preserving ascending
// erase-count order. Reinsertion after an erase is the common case; a
// reverse scan from the tail keeps the cost low since a just-erased
// block usually has one of the higher erase counts and belongs near the
// tail.
func (p *FreeBlockPool) Put(i int) {
	ec := p.bloc.Get(i).EraseCount

	for e := p.list.Back(); e != nil; e = e.Prev() {
		if p.bloc.Get(e.Value.(int)).EraseCount <= ec {
			elem := p.list.InsertAfter(i, e)
			p.elem[i] = elem
			p.bloc.MarkFree(i)
			return
		}
	}

	elem := p.list.PushFront(i)
	p.elem[i] = elem
	p.bloc.MarkFree(i)
}

// PopFront removes and returns the least-worn free block. Returns
// (0, false) if the pool is empty.
func (p *FreeBlockPool) PopFront() (int, bool) {
	e := p.list.Front()
	if e == nil {
		return 0, false
	}
	i := e.Value.(int)
	p.list.Remove(e)
	delete(p.elem, i)
	p.bloc.MarkInUse(i)
	return i, true
}

// PopStripe removes and returns the first free block whose index
// matches the given stripe (block_index mod parallel_units). Returns
// (0, false) if no block in the pool matches.
func (p *FreeBlockPool) PopStripe(stripe, parallelUnits int) (int, bool) {
	for e := p.list.Front(); e != nil; e = e.Next() {
		i := e.Value.(int)
		if i%parallelUnits == stripe%parallelUnits {
			p.list.Remove(e)
			delete(p.elem, i)
			p.bloc.MarkInUse(i)
			return i, true
		}
	}
	return 0, false
}

// Indices returns the free block indices in the pool's stored order,
// ascending by erase count.
func (p *FreeBlockPool) Indices() []int {
	out := make([]int, 0, p.list.Len())
	for e := p.list.Front(); e != nil; e = e.Next() {
		out = append(out, e.Value.(int))
	}
	return out
}

// Contains reports whether block index i is currently sitting on the
// free pool.
func (p *FreeBlockPool) Contains(i int) bool {
	_, ok := p.elem[i]
	return ok
}

// IsSorted reports whether the pool is currently in ascending
// erase-count order, the invariant spec.md §8 (invariant 5) requires
// hold outside of the transient reinsertion scan.
func (p *FreeBlockPool) IsSorted() bool {
	prev := uint64(0)
	first := true
	for e := p.list.Front(); e != nil; e = e.Next() {
		ec := p.bloc.Get(e.Value.(int)).EraseCount
		if !first && ec < prev {
			return false
		}
		prev = ec
		first = false
	}
	return true
}
