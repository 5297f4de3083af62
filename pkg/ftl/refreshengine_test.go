package ftl

import "testing"

func TestLowestSetBitCadence(t *testing.T) {
	cases := []struct {
		v    uint64
		want int
	}{
		{1, 0}, {2, 1}, {3, 0}, {4, 2}, {5, 0}, {6, 1}, {7, 0}, {8, 3},
	}
	for _, c := range cases {
		if got := lowestSetBit(c.v); got != c.want {
			t.Errorf("lowestSetBit(%d) = %d, want %d", c.v, got, c.want)
		}
	}
}

// TestRefreshBloomHitTriggersPageRewrite covers spec.md §8 scenario 5:
// a page whose predicted RBER crosses the ECC threshold at the finer
// refresh levels gets inserted down into level 0, and the first refresh
// tick (which sweeps level 0) finds the Bloom hit and rewrites the
// page to a fresh physical location.
func TestRefreshBloomHitTriggersPageRewrite(t *testing.T) {
	cfg := testConfig()
	cfg.RefreshPeriod = 10
	cfg.Alpha = 0.001
	cfg.MTerm = 1
	cfg.KTerm = 1
	cfg.Beta = 0
	cfg.Temperature = 0
	f, _, _, _ := newTestFTL(cfg)

	// Block 0 is slot 0's target from construction; pop block 1 out of
	// the way so the write below lands on block 2, matching scenario 5's
	// "(block=2, layer=3)".
	f.alloc.GetFreeBlock(0)
	bi := f.alloc.GetFreeBlock(0)
	if bi != 2 {
		t.Fatalf("expected to pop block 2 second, got %d", bi)
	}

	blk := f.arena.Get(bi)
	for p := 0; p < 3; p++ {
		blk.AllocateNextWrite(0)
	}
	page := blk.AllocateNextWrite(0)
	if page != 3 {
		t.Fatalf("expected page 3, got %d", page)
	}

	lpn := LPN(3)
	blk.Write(page, 0, lpn, 0)
	f.mapping.Set(lpn, 0, PhysAddr{Block: bi, Page: page})
	f.registerRefresh(blk, page%cfg.LayersPerBlock, 0)

	key := refreshKey(bi, page%cfg.LayersPerBlock)
	if !f.bloom.Contains(0, key) {
		t.Fatal("expected level 0 Bloom membership for (block=2, layer=3)")
	}

	f.onRefreshTick(1)

	if f.stats.RefreshPageCopyCount == 0 {
		t.Error("expected the refresh sweep to have rewritten at least one page")
	}
	if blk.IsValid(page, 0) {
		t.Error("source page should have been invalidated after migration")
	}
	addr := f.mapping.Lookup(lpn)[0]
	if addr.Block == bi && addr.Page == page {
		t.Error("mapping should point at the migrated copy, not the original location")
	}
}
