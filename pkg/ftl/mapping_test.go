package ftl

import "testing"

func TestMappingTableSentinelByDefault(t *testing.T) {
	m := NewMappingTable(8, 2, 4, 8)
	if m.AnyMapped(0) {
		t.Error("fresh table should report no mapping")
	}
	if m.IsMapped(0, 0) {
		t.Error("fresh table should report io unit 0 unmapped")
	}
	if m.Size() != 0 {
		t.Errorf("Size() = %d, want 0", m.Size())
	}
}

func TestMappingTableSetAndLookup(t *testing.T) {
	m := NewMappingTable(8, 2, 4, 8)
	m.Set(3, 0, PhysAddr{Block: 1, Page: 5})

	if !m.IsMapped(3, 0) {
		t.Error("io unit 0 should be mapped after Set")
	}
	if m.IsMapped(3, 1) {
		t.Error("io unit 1 should remain unmapped")
	}
	if m.Size() != 1 {
		t.Errorf("Size() = %d, want 1", m.Size())
	}

	got := m.Lookup(3)[0]
	want := PhysAddr{Block: 1, Page: 5}
	if got != want {
		t.Errorf("Lookup(3)[0] = %+v, want %+v", got, want)
	}
}

func TestMappingTableInvalidateUnit(t *testing.T) {
	m := NewMappingTable(4, 1, 4, 8)
	m.Set(0, 0, PhysAddr{Block: 0, Page: 0})
	if m.Size() != 1 {
		t.Fatalf("Size() = %d, want 1", m.Size())
	}

	m.InvalidateUnit(0, 0)
	if m.AnyMapped(0) {
		t.Error("LPN should be unmapped after invalidating its only io unit")
	}
	if m.Size() != 0 {
		t.Errorf("Size() = %d, want 0", m.Size())
	}
}

func TestMappingTableErase(t *testing.T) {
	m := NewMappingTable(4, 2, 4, 8)
	m.Set(1, 0, PhysAddr{Block: 0, Page: 0})
	m.Set(1, 1, PhysAddr{Block: 0, Page: 1})

	m.Erase(1)
	if m.AnyMapped(1) {
		t.Error("LPN should be fully unmapped after Erase")
	}
	if m.Size() != 0 {
		t.Errorf("Size() = %d, want 0", m.Size())
	}

	// idempotent
	m.Erase(1)
	if m.Size() != 0 {
		t.Errorf("second Erase changed Size() to %d", m.Size())
	}
}

func TestMappingTableSentinelValue(t *testing.T) {
	m := NewMappingTable(1, 1, 4, 8)
	want := PhysAddr{Block: 4, Page: 8}
	if m.Sentinel() != want {
		t.Errorf("Sentinel() = %+v, want %+v", m.Sentinel(), want)
	}
}
