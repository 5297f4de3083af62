package ftl

// fakePAL models PAL timing as a fixed per-operation latency added to
// tick, just enough for facade-level tests to observe ordering and
// monotonicity without depending on a real PAL implementation.
type fakePAL struct {
	readLatency, writeLatency, eraseLatency float64
	reads, writes, erases                   []PALRequest
}

func newFakePAL() *fakePAL {
	return &fakePAL{readLatency: 1, writeLatency: 2, eraseLatency: 5}
}

func (p *fakePAL) Read(req PALRequest, tick float64) float64 {
	p.reads = append(p.reads, req)
	return tick + p.readLatency
}

func (p *fakePAL) Write(req PALRequest, tick float64) float64 {
	p.writes = append(p.writes, req)
	return tick + p.writeLatency
}

func (p *fakePAL) Erase(req PALRequest, tick float64) float64 {
	p.erases = append(p.erases, req)
	return tick + p.eraseLatency
}

// fakeDRAM charges a trivial fixed latency per call regardless of byte
// count, enough to exercise the call sites without modeling real
// bandwidth.
type fakeDRAM struct{}

func (fakeDRAM) Read(bytes int, tick float64) float64  { return tick + 0.01 }
func (fakeDRAM) Write(bytes int, tick float64) float64 { return tick + 0.01 }

// fakeEvents records allocated callbacks and scheduled ticks; tests that
// need to actually fire a tick call the stored callback directly rather
// than simulating a discrete-event loop.
type fakeEvents struct {
	callbacks []func(tick float64)
	scheduled []float64
}

func (e *fakeEvents) AllocateEvent(cb func(tick float64)) EventID {
	e.callbacks = append(e.callbacks, cb)
	return EventID(len(e.callbacks) - 1)
}

func (e *fakeEvents) ScheduleEvent(id EventID, tick float64) {
	e.scheduled = append(e.scheduled, tick)
}

// testConfig builds the small 4-block x 8-page x 1-io-unit config spec.md
// §8's end-to-end scenarios use, with layers_per_block = pages_in_block
// so layer == page index and scenario 5's "(block=2, layer=3)" addresses
// page 3 directly.
func testConfig() Config {
	return Config{
		IOUnitsPerPage:      1,
		PagesInBlock:        8,
		TotalPhysicalBlocks: 4,
		TotalLogicalBlocks:  1,
		PageSize:            4096,
		ParallelUnits:       1,
		LayersPerBlock:      8,

		FillRatio:        0,
		InvalidPageRatio: 0,
		FillingMode:      FillSeqSeq,

		GCThresholdRatio:   0.25,
		GCMode:             GCModeFixed,
		GCReclaimBlock:     1,
		GCReclaimThreshold: 0.5,
		GCEvictPolicy:      GCGreedy,
		GCDChoiceParam:     1,
		BadBlockThreshold:  2,
		InitialEraseCount:  0,

		RefreshPeriod:     0,
		RefreshFilterNum:  4,
		RefreshFilterSize: 0,
		RefreshThreshold:  1e-2,
		RandomSeed:        1,

		Temperature: 40,
		Epsilon:     1e-6,
		Alpha:       1e-5,
		Beta:        0.1,
		KTerm:       1.2,
		MTerm:       0.5,
		NTerm:       1.0,
		ErrorSigma:  0,

		UseRandomIOTweak: false,
	}
}

func newTestFTL(cfg Config) (*FTL, *fakePAL, *fakeDRAM, *fakeEvents) {
	pal := newFakePAL()
	dram := &fakeDRAM{}
	events := &fakeEvents{}
	f, err := New(cfg, pal, dram, events)
	if err != nil {
		panic(err)
	}
	return f, pal, dram, events
}
