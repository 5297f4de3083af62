package ftl

// MappingTable is the single source of truth for logical-to-physical
// address translation. Per spec.md §9's redesign note it is a dense
// array indexed by LPN rather than a hash map: the logical page space is
// bounded and known up front, so there is nothing a map buys over a
// slice except per-entry allocation overhead.
//
// Each LPN owns a row of io_units_per_page (block, page) pairs, one per
// sub-page slot; unmapped slots hold the sentinel address
// (TotalPhysicalBlocks, PagesInBlock).
type MappingTable struct {
	rows           [][]PhysAddr
	ioUnitsPerPage int
	sentinel       PhysAddr
	mappedCount    int
}

// NewMappingTable allocates a row per logical page, every slot set to
// the sentinel "unmapped" address.
func NewMappingTable(totalLogicalPages, ioUnitsPerPage, totalPhysicalBlocks, pagesInBlock int) *MappingTable {
	t := &MappingTable{
		rows:           make([][]PhysAddr, totalLogicalPages),
		ioUnitsPerPage: ioUnitsPerPage,
		sentinel:       PhysAddr{Block: totalPhysicalBlocks, Page: pagesInBlock},
	}
	for i := range t.rows {
		row := make([]PhysAddr, ioUnitsPerPage)
		for u := range row {
			row[u] = t.sentinel
		}
		t.rows[i] = row
	}
	return t
}

// Sentinel returns the address used to mark an io unit unmapped.
func (t *MappingTable) Sentinel() PhysAddr {
	return t.sentinel
}

func (t *MappingTable) checkLPN(lpn LPN) {
	if int(lpn) < 0 || int(lpn) >= len(t.rows) {
		fatalf("MappingTable", "lpn %d out of range [0,%d)", lpn, len(t.rows))
	}
}

// Lookup returns the row of physical addresses for lpn. Every slot may
// independently be mapped or the sentinel; callers check per io unit.
func (t *MappingTable) Lookup(lpn LPN) []PhysAddr {
	t.checkLPN(lpn)
	return t.rows[lpn]
}

// IsMapped reports whether io unit u of lpn currently points at a real
// physical page.
func (t *MappingTable) IsMapped(lpn LPN, u int) bool {
	return t.Lookup(lpn)[u] != t.sentinel
}

// AnyMapped reports whether any io unit of lpn is mapped, the
// granularity trim and format operate at.
func (t *MappingTable) AnyMapped(lpn LPN) bool {
	for _, addr := range t.Lookup(lpn) {
		if addr != t.sentinel {
			return true
		}
	}
	return false
}

// Set installs addr as the mapping for io unit u of lpn, tracking the
// mapped-LPN count used by Size.
func (t *MappingTable) Set(lpn LPN, u int, addr PhysAddr) {
	wasMapped := t.AnyMapped(lpn)
	t.rows[lpn][u] = addr
	if !wasMapped {
		t.mappedCount++
	}
}

// InvalidateUnit resets io unit u of lpn back to the sentinel without
// touching the other io units of the same LPN.
func (t *MappingTable) InvalidateUnit(lpn LPN, u int) {
	wasMapped := t.AnyMapped(lpn)
	t.rows[lpn][u] = t.sentinel
	if wasMapped && !t.AnyMapped(lpn) {
		t.mappedCount--
	}
}

// Erase clears every io unit of lpn back to the sentinel, the trim/
// format operation.
func (t *MappingTable) Erase(lpn LPN) {
	if t.AnyMapped(lpn) {
		t.mappedCount--
	}
	row := t.rows[lpn]
	for u := range row {
		row[u] = t.sentinel
	}
}

// Size returns the number of LPNs with at least one mapped io unit.
func (t *MappingTable) Size() int {
	return t.mappedCount
}

// SizeInRange returns the number of LPNs in [begin, end) with at least
// one mapped io unit, via a linear scan of the range.
func (t *MappingTable) SizeInRange(begin, end LPN) int {
	count := 0
	for lpn := begin; lpn < end; lpn++ {
		if t.AnyMapped(lpn) {
			count++
		}
	}
	return count
}

// Len returns the total number of logical pages the table was sized
// for.
func (t *MappingTable) Len() int {
	return len(t.rows)
}
