package ftl

import (
	"fmt"

	"github.com/dd0wney/ftlsim/pkg/validation"
)

// FillingMode controls how Warmup populates the mapping during
// initialization.
type FillingMode string

const (
	FillSeqSeq  FillingMode = "seq-seq"
	FillSeqRand FillingMode = "seq-rand"
	FillRandRand FillingMode = "rand-rand"
)

// GCMode selects how GCEngine computes how many blocks to reclaim per
// invocation.
type GCMode string

const (
	// GCModeFixed reclaims a fixed number of blocks (gc_reclaim_block)
	// per invocation. Spec calls this GC_MODE_0.
	GCModeFixed GCMode = "fixed"
	// GCModeThreshold reclaims enough blocks to bring the free pool up
	// to gc_reclaim_threshold. Spec calls this GC_MODE_1.
	GCModeThreshold GCMode = "threshold"
)

// GCPolicy selects the victim-selection weight function.
type GCPolicy string

const (
	GCGreedy      GCPolicy = "greedy"
	GCCostBenefit GCPolicy = "cost-benefit"
	GCRandom      GCPolicy = "random"
	GCDChoice     GCPolicy = "d-choice"
)

// Config carries every configuration key spec.md enumerates for the FTL
// core. Parsing a config file into this struct is out of scope for this
// package; validating an already-populated Config is in scope, via
// Validate.
type Config struct {
	// Capacity
	IOUnitsPerPage     int `validate:"required,min=1"`
	PagesInBlock       int `validate:"required,min=1"`
	TotalPhysicalBlocks int `validate:"required,min=4"`
	TotalLogicalBlocks int `validate:"required,min=1"`
	PageSize           int `validate:"required,min=1"`
	ParallelUnits      int `validate:"required,min=1"`
	LayersPerBlock     int `validate:"required,min=1"`

	// Warmup
	FillRatio        float64     `validate:"gte=0,lte=1"`
	InvalidPageRatio float64     `validate:"gte=0,lte=1"`
	FillingMode      FillingMode `validate:"required,oneof=seq-seq seq-rand rand-rand"`

	// GC
	GCThresholdRatio  float64  `validate:"gte=0,lte=1"`
	GCMode            GCMode   `validate:"required,oneof=fixed threshold"`
	GCReclaimBlock    int      `validate:"min=0"`
	GCReclaimThreshold float64 `validate:"gte=0,lte=1"`
	GCEvictPolicy     GCPolicy `validate:"required,oneof=greedy cost-benefit random d-choice"`
	GCDChoiceParam    int      `validate:"min=1"`
	BadBlockThreshold uint64   `validate:"required,min=1"`
	InitialEraseCount uint64

	// Refresh
	RefreshPeriod     float64 `validate:"gte=0"`
	RefreshFilterNum  int     `validate:"min=0"`
	RefreshFilterSize int     `validate:"min=0"`
	RefreshThreshold  float64 `validate:"gte=0,lte=1"`
	RandomSeed        int64

	// Error model
	Temperature float64
	Epsilon     float64
	Alpha       float64
	Beta        float64
	KTerm       float64
	MTerm       float64
	NTerm       float64
	ErrorSigma  float64

	// Write mode
	UseRandomIOTweak bool

	// Ambient (not named by spec.md §6's config-key list, but required
	// to construct the facade: where the human-readable refresh log is
	// written).
	StatsLogPath string
}

// TotalLogicalPages derives the logical page count implied by
// TotalLogicalBlocks and PagesInBlock, the size of MappingTable.
func (c Config) TotalLogicalPages() int {
	return c.TotalLogicalBlocks * c.PagesInBlock
}

// Validate runs the mechanical struct-tag checks via pkg/validation,
// then the cross-field checks a struct tag can't express: the GC
// reclaim threshold must sit above the GC trigger threshold or GC would
// immediately re-trigger itself after reclaiming, and layers must
// divide evenly into pages per block per spec.md's layer definition.
func (c Config) Validate() error {
	if err := validation.Struct(c); err != nil {
		return err
	}

	cv := validation.NewConfigValidator("ftl.Config")
	cv.Custom("GCReclaimThreshold", func() error {
		if c.GCMode == GCModeThreshold && c.GCReclaimThreshold <= c.GCThresholdRatio {
			return fmt.Errorf("gc_reclaim_threshold (%v) must exceed gc_threshold_ratio (%v)",
				c.GCReclaimThreshold, c.GCThresholdRatio)
		}
		return nil
	})
	cv.Custom("LayersPerBlock", func() error {
		if c.PagesInBlock%c.LayersPerBlock != 0 {
			return fmt.Errorf("pages_in_block (%d) must be a multiple of layers_per_block (%d)",
				c.PagesInBlock, c.LayersPerBlock)
		}
		return nil
	})
	cv.Custom("ParallelUnits", func() error {
		if c.TotalPhysicalBlocks < c.ParallelUnits {
			return fmt.Errorf("total_physical_blocks (%d) must be >= parallel_units (%d)",
				c.TotalPhysicalBlocks, c.ParallelUnits)
		}
		return nil
	})

	return cv.Validate()
}
