package ftl

import "testing"

// TestWearLevelingFactorEvenlyErased covers calculateWearLeveling
// against the Li/Lee/Lui formula directly: with every block at the
// same nonzero erase count, (sum EC)^2 / (numBlocks * sum EC^2)
// reduces to physicalBlocks / TotalLogicalBlocks.
func TestWearLevelingFactorEvenlyErased(t *testing.T) {
	cfg := testConfig()
	f, _, _, _ := newTestFTL(cfg)

	for i := 0; i < f.arena.Len(); i++ {
		f.arena.Get(i).EraseCount = 5
	}

	want := float64(f.arena.Len()) / float64(cfg.TotalLogicalBlocks)
	got := f.calculateWearLeveling()
	if got < want-0.001 || got > want+0.001 {
		t.Errorf("wear leveling factor = %v, want %v", got, want)
	}
}

// TestWearLevelingFactorUndefinedWhenUnerased covers the original's
// -1 sentinel: no block has ever been erased, so the factor is
// meaningless rather than a divide-by-zero.
func TestWearLevelingFactorUndefinedWhenUnerased(t *testing.T) {
	cfg := testConfig()
	f, _, _, _ := newTestFTL(cfg)

	if got := f.calculateWearLeveling(); got != -1 {
		t.Errorf("wear leveling factor = %v, want -1 when no block has been erased", got)
	}
}

// TestStatValuesIncludesWearLevelingAndBloomCounts covers spec.md §2's
// third named stat category: StatValues must expose the wear-leveling
// factor, average error count, and per-level Bloom filter element
// counts alongside the GC/refresh counters.
func TestStatValuesIncludesWearLevelingAndBloomCounts(t *testing.T) {
	cfg := testConfig()
	cfg.RefreshPeriod = 1000
	cfg.RefreshFilterNum = 3
	f, _, _, _ := newTestFTL(cfg)

	tick := 0.0
	tick = f.Write(WriteRequest{LPN: 0, IOMap: FullIOMap(1)}, tick)
	_ = tick

	values := f.StatValues()
	if _, ok := values["wear_leveling_factor"]; !ok {
		t.Error("StatValues missing wear_leveling_factor")
	}
	if _, ok := values["refresh_average_error_count"]; !ok {
		t.Error("StatValues missing refresh_average_error_count")
	}

	found := false
	for name := range values {
		if name == "bloom_filter_elements_level_0" {
			found = true
		}
	}
	if !found {
		t.Error("StatValues missing per-level bloom filter element counts")
	}

	for _, name := range f.StatList() {
		if _, ok := values[name]; !ok {
			t.Errorf("StatList names %q but StatValues has no entry for it", name)
		}
	}
}
