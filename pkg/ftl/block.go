package ftl

// Block holds the authoritative per-physical-block state: which pages
// are valid, erased, or in between, the per-io-unit write pointer, and
// the timestamps and erase count driving wear leveling and GC scoring.
//
// Blocks live in a dense array owned by BlockArena, indexed by
// block_index, rather than the map-of-blocks the source keeps; a block
// never moves once constructed.
type Block struct {
	Index      int
	EraseCount uint64

	// NextWritePage[u] is the next page index io unit u will write to.
	// A block is full when every entry equals PagesInBlock.
	NextWritePage []int

	// validBits[page][u] and erasedBits[page][u] track per-io-unit page
	// state. A slot starts erased, becomes valid on write, and can be
	// invalidated without becoming erased again until the whole block
	// is erased.
	validBits  [][]bool
	erasedBits [][]bool

	// ownerLPN[page][u] is the logical page that currently owns this
	// physical slot, the OOB metadata GC and refresh migration need to
	// find which mapping entry to retarget when they copy a still-valid
	// page to a fresh location. Meaningless when the slot is not valid.
	ownerLPN [][]LPN

	ValidPageCount int

	LastWrittenTime  float64
	LastAccessedTime float64
	MaxErrorCount    int
}

// NewBlock constructs a block in its post-erase state with the given
// initial erase count, matching the "created once at init in the free
// pool" lifecycle from spec.md §3.
func NewBlock(index, pagesInBlock, ioUnitsPerPage int, initialEraseCount uint64) *Block {
	b := &Block{
		Index:         index,
		EraseCount:    initialEraseCount,
		NextWritePage: make([]int, ioUnitsPerPage),
	}
	b.allocatePageState(pagesInBlock, ioUnitsPerPage)
	b.resetPageState()
	return b
}

func (b *Block) allocatePageState(pagesInBlock, ioUnitsPerPage int) {
	b.validBits = make([][]bool, pagesInBlock)
	b.erasedBits = make([][]bool, pagesInBlock)
	b.ownerLPN = make([][]LPN, pagesInBlock)
	for p := range b.validBits {
		b.validBits[p] = make([]bool, ioUnitsPerPage)
		b.erasedBits[p] = make([]bool, ioUnitsPerPage)
		b.ownerLPN[p] = make([]LPN, ioUnitsPerPage)
	}
}

func (b *Block) resetPageState() {
	for p := range b.validBits {
		for u := range b.validBits[p] {
			b.validBits[p][u] = false
			b.erasedBits[p][u] = true
		}
	}
	for u := range b.NextWritePage {
		b.NextWritePage[u] = 0
	}
	b.ValidPageCount = 0
	b.MaxErrorCount = 0
}

// PagesInBlock returns the number of pages this block was constructed
// with.
func (b *Block) PagesInBlock() int {
	return len(b.validBits)
}

// IOUnitsPerPage returns the number of io units per page this block was
// constructed with.
func (b *Block) IOUnitsPerPage() int {
	return len(b.NextWritePage)
}

// IsFull reports whether every io unit's write pointer has reached the
// end of the block.
func (b *Block) IsFull() bool {
	for _, p := range b.NextWritePage {
		if p < len(b.validBits) {
			return false
		}
	}
	return true
}

// AllocateNextWrite advances io unit u's write pointer and returns the
// page it should write to. Callers must check IsFull before calling;
// calling it on a full unit is a caller bug, not a recoverable
// condition, and panics with a *FatalError.
func (b *Block) AllocateNextWrite(u int) int {
	page := b.NextWritePage[u]
	if page >= len(b.validBits) {
		fatalf("Block.AllocateNextWrite", "block %d io unit %d has no free pages left", b.Index, u)
	}
	b.NextWritePage[u]++
	return page
}

// Write marks (page, u) valid and no longer erased, records lpn as the
// slot's owner for later reverse lookup during GC/refresh migration, and
// refreshes the block's write/access timestamps.
func (b *Block) Write(page, u int, lpn LPN, tick float64) {
	b.erasedBits[page][u] = false
	if !b.validBits[page][u] {
		b.validBits[page][u] = true
		b.ValidPageCount++
	}
	b.ownerLPN[page][u] = lpn
	b.LastWrittenTime = tick
	b.LastAccessedTime = tick
}

// OwnerLPN returns the logical page number last written to (page, u).
// Only meaningful while IsValid(page, u) is true.
func (b *Block) OwnerLPN(page, u int) LPN {
	return b.ownerLPN[page][u]
}

// Invalidate clears the valid bit at (page, u). Idempotent: invalidating
// an already-invalid slot is a no-op, matching spec.md §3's invariant.
func (b *Block) Invalidate(page, u int) {
	if b.validBits[page][u] {
		b.validBits[page][u] = false
		b.ValidPageCount--
	}
}

// IsValid reports whether (page, u) currently holds live data.
func (b *Block) IsValid(page, u int) bool {
	return b.validBits[page][u]
}

// PageHasAnyValid reports whether any io unit of page holds live data,
// the test GC and refresh migration use to decide whether a page needs
// copying.
func (b *Block) PageHasAnyValid(page int) bool {
	for u := range b.validBits[page] {
		if b.validBits[page][u] {
			return true
		}
	}
	return false
}

// Read updates the block's last-accessed timestamp. The FTL never keeps
// page contents; PAL is the collaborator that actually models bit
// errors and timing.
func (b *Block) Read(tick float64) {
	b.LastAccessedTime = tick
}

// RecordErrorCount folds an observed error count (from ErrorModel) into
// the block's running maximum, used only for telemetry.
func (b *Block) RecordErrorCount(n int) {
	if n > b.MaxErrorCount {
		b.MaxErrorCount = n
	}
}

// Erase resets all per-page state to the post-erase condition and
// increments EraseCount. The caller (GCEngine) is responsible for
// enforcing the ValidPageCount == 0 precondition before calling this;
// Erase itself enforces it as a fatal check since violating it silently
// would corrupt the mapping invariants spec.md §8 lists.
func (b *Block) Erase() {
	if b.ValidPageCount != 0 {
		fatalf("Block.Erase", "block %d erased with %d valid pages still live", b.Index, b.ValidPageCount)
	}
	b.resetPageState()
	b.EraseCount++
}
