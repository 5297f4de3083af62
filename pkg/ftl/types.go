// Package ftl implements the core of a page-mapped flash translation
// layer for a cycle-accurate SSD simulator: address translation, block
// lifecycle, garbage collection, proactive refresh, and the statistics
// that tie them together. The PAL, DRAM controller, discrete-event
// engine, config parsing, and logging all live outside this package;
// ftl consumes them as narrow interfaces.
package ftl

// LPN is a logical page number, the host-facing address space.
type LPN uint64

// PhysAddr identifies a physical (block, page) location.
type PhysAddr struct {
	Block int
	Page  int
}

// IOMap is a per-I/O-unit bitmask describing which sub-page slots of a
// page a single read/write request touches. Bit u set means io unit u
// is part of the request.
type IOMap uint64

// Has reports whether io unit u is set in the map.
func (m IOMap) Has(u int) bool {
	return m&(IOMap(1)<<uint(u)) != 0
}

// IsEmpty reports whether the map has no bits set at all, the "empty
// request" edge case that is logged and otherwise ignored.
func (m IOMap) IsEmpty() bool {
	return m == 0
}

// PopCount returns the number of io units set in the map.
func (m IOMap) PopCount() int {
	n := 0
	for v := uint64(m); v != 0; v &= v - 1 {
		n++
	}
	return n
}

// Units returns the ascending list of io-unit indices set in the map,
// considering only the first n units (io_units_per_page).
func (m IOMap) Units(n int) []int {
	units := make([]int, 0, m.PopCount())
	for u := 0; u < n; u++ {
		if m.Has(u) {
			units = append(units, u)
		}
	}
	return units
}

// FullIOMap returns the IOMap for a super-page write touching the first
// n io units.
func FullIOMap(n int) IOMap {
	if n <= 0 {
		return 0
	}
	if n >= 64 {
		return ^IOMap(0)
	}
	return IOMap(1)<<uint(n) - 1
}

// refreshKey packs a (block, layer) pair into the 64-bit key that the
// RefreshTable and BloomSet both index by, per the block/layer encoding
// the write path and refresh sweep share.
func refreshKey(block, layer int) uint64 {
	return uint64(uint32(block))<<32 | uint64(uint32(layer))
}
