// Command ftlsim drives the ftl package against a fixed-latency PAL/DRAM
// and a tick-ordered event queue, all supplied by pkg/simcollab, so the
// core can be exercised end to end outside of a test binary.
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"

	"github.com/dd0wney/ftlsim/pkg/ftl"
	"github.com/dd0wney/ftlsim/pkg/logging"
	"github.com/dd0wney/ftlsim/pkg/metrics"
	"github.com/dd0wney/ftlsim/pkg/simcollab"
	"github.com/dd0wney/ftlsim/pkg/statslog"
)

func main() {
	blocks := flag.Int("blocks", 256, "total physical blocks")
	pagesPerBlock := flag.Int("pages-per-block", 256, "pages per block")
	ioUnits := flag.Int("io-units", 4, "io units per page")
	logicalBlocks := flag.Int("logical-blocks", 200, "total logical blocks (must be < physical blocks for GC headroom)")
	ops := flag.Int("ops", 200000, "number of host write operations to issue")
	fillRatio := flag.Float64("fill-ratio", 0.6, "warmup fill ratio")
	refreshPeriod := flag.Float64("refresh-period", 1e6, "refresh period in simulated ticks; 0 disables refresh")
	seed := flag.Int64("seed", 1, "random seed")
	statsLogPath := flag.String("stats-log", "ftlsim-refresh.log", "path to the human-readable refresh-statistics log")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	logger := logging.NewJSONLogger(os.Stdout, logging.ParseLevel(*logLevel))

	cfg := ftl.Config{
		IOUnitsPerPage:      *ioUnits,
		PagesInBlock:        *pagesPerBlock,
		TotalPhysicalBlocks: *blocks,
		TotalLogicalBlocks:  *logicalBlocks,
		PageSize:            4096,
		ParallelUnits:       8,
		LayersPerBlock:      64,

		FillRatio:        *fillRatio,
		InvalidPageRatio: 0.1,
		FillingMode:      ftl.FillSeqRand,

		GCThresholdRatio:   0.10,
		GCMode:             ftl.GCModeThreshold,
		GCReclaimBlock:     4,
		GCReclaimThreshold: 0.20,
		GCEvictPolicy:      ftl.GCCostBenefit,
		GCDChoiceParam:     2,
		BadBlockThreshold:  3000,
		InitialEraseCount:  0,

		RefreshPeriod:     *refreshPeriod,
		RefreshFilterNum:  6,
		RefreshFilterSize: 0,
		RefreshThreshold:  1e-2,
		RandomSeed:        *seed,

		Temperature: 40,
		Epsilon:     1e-6,
		Alpha:       1e-5,
		Beta:        0.1,
		KTerm:       1.2,
		MTerm:       0.6,
		NTerm:       1.1,
		ErrorSigma:  2,

		UseRandomIOTweak: false,

		StatsLogPath: *statsLogPath,
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	statsLog, err := statslog.Open(cfg.StatsLogPath)
	if err != nil {
		log.Fatalf("opening stats log: %v", err)
	}
	defer statsLog.Close()

	reg := metrics.NewRegistry()

	pal := simcollab.NewPAL(simcollab.DefaultLatencies())
	dram := simcollab.NewDRAM(simcollab.DefaultLatencies())
	events := simcollab.NewEventEngine()

	f, err := ftl.New(cfg, pal, dram, events,
		ftl.WithLogger(logger),
		ftl.WithMetrics(reg),
		ftl.WithStatsLog(statsLog),
	)
	if err != nil {
		log.Fatalf("constructing ftl: %v", err)
	}

	logger.Info("warming up mapping table", logging.Float64("fill_ratio", cfg.FillRatio))
	f.Warmup(ftl.WarmupConfig{
		FillRatio:        cfg.FillRatio,
		InvalidPageRatio: cfg.InvalidPageRatio,
		Mode:             cfg.FillingMode,
	})

	f.Start()

	rng := rand.New(rand.NewSource(*seed))
	totalLPNs := cfg.TotalLogicalPages()
	tick := 0.0

	logger.Info("starting workload", logging.Int("ops", *ops), logging.Int("total_logical_pages", totalLPNs))

	for i := 0; i < *ops; i++ {
		lpn := ftl.LPN(rng.Intn(totalLPNs))
		tick = f.Write(ftl.WriteRequest{LPN: lpn, IOMap: ftl.FullIOMap(cfg.IOUnitsPerPage)}, tick)

		// Drain any refresh events due by the current tick so the
		// periodic sweep interleaves with the write workload the way
		// spec.md §5 describes: events fire inline, advancing tick by
		// reference, never yielding control elsewhere.
		events.Run(tick)

		if (i+1)%50000 == 0 {
			status := f.GetStatus(0, ftl.LPN(totalLPNs))
			logger.Info("progress",
				logging.Int("ops_done", i+1),
				logging.Tick(tick),
				logging.Int("free_blocks", status.FreePhysicalBlocks),
				logging.Uint64("bad_blocks", status.BadBlockCount),
			)
		}
	}

	status := f.GetStatus(0, ftl.LPN(totalLPNs))
	fmt.Printf("\nfinal status: free_blocks=%d mapped_logical_pages=%d total_logical_pages=%d bad_blocks=%d final_tick=%.2f\n",
		status.FreePhysicalBlocks, status.MappedLogicalPages, status.TotalLogicalPages, status.BadBlockCount, tick)

	fmt.Println("stat values:")
	for _, name := range f.StatList() {
		fmt.Printf("  %-24s %v\n", name, f.StatValues()[name])
	}
}
