package ftl

import (
	"math"
	"math/rand"
)

// ErrorModel is the pure physical model spec.md §4.4 describes: given a
// retention time, a P/E cycle count, and a layer index, it predicts a
// raw bit error rate and can draw a random error count around that
// prediction. It is deterministic given its seed — two ErrorModels
// built with the same Config and seed produce identical sequences.
type ErrorModel struct {
	temperature float64
	epsilon     float64
	alpha       float64
	beta        float64
	kTerm       float64
	mTerm       float64
	nTerm       float64
	sigma       float64

	pageSizeBits float64
	rng          *rand.Rand
}

// NewErrorModel builds an ErrorModel from the error-model config keys
// and a page size (used to turn an RBER into an expected error count).
func NewErrorModel(cfg Config) *ErrorModel {
	return &ErrorModel{
		temperature:  cfg.Temperature,
		epsilon:      cfg.Epsilon,
		alpha:        cfg.Alpha,
		beta:         cfg.Beta,
		kTerm:        cfg.KTerm,
		mTerm:        cfg.MTerm,
		nTerm:        cfg.NTerm,
		sigma:        cfg.ErrorSigma,
		pageSizeBits: float64(cfg.PageSize) * 8,
		rng:          rand.New(rand.NewSource(cfg.RandomSeed)),
	}
}

// RBER returns the predicted raw bit error rate for a page with
// retention time dt (simulated seconds since last write), erase count e,
// and layer index layer. The result is in [0,1) and is monotone
// non-decreasing in dt and e: both enter only through positive
// exponents inside a saturating 1-exp(-x) form, so increasing either
// argument can only push the result up, never down, satisfying
// spec.md §4.4's contract.
func (m *ErrorModel) RBER(dt float64, e uint64, layer int) float64 {
	if dt < 0 {
		dt = 0
	}

	retentionTerm := math.Pow(dt+m.epsilon, m.posOrOne(m.mTerm))
	wearTerm := math.Pow(float64(e)+1, m.posOrOne(m.kTerm))
	layerTerm := 1 + m.nonNeg(m.beta)*math.Pow(float64(layer)+1, m.posOrOne(m.nTerm))
	tempTerm := 1 + m.nonNeg(m.temperature)/1000

	x := m.nonNeg(m.alpha) * retentionTerm * wearTerm * layerTerm * tempTerm
	return 1 - math.Exp(-x)
}

// RandomErrors draws an integer error count around RBER(dt, e, layer) *
// page_size_bits, with Gaussian noise of standard deviation sigma. The
// result is never negative.
func (m *ErrorModel) RandomErrors(dt float64, e uint64, layer int) int {
	mean := m.RBER(dt, e, layer) * m.pageSizeBits
	noisy := mean + m.rng.NormFloat64()*m.sigma
	if noisy < 0 {
		return 0
	}
	return int(math.Round(noisy))
}

func (m *ErrorModel) posOrOne(v float64) float64 {
	if v <= 0 {
		return 1
	}
	return v
}

func (m *ErrorModel) nonNeg(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
