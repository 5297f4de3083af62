package ftl

import "testing"

func testErrorModelConfig() Config {
	return Config{
		Temperature: 40,
		Epsilon:     1e-6,
		Alpha:       1e-5,
		Beta:        0.1,
		KTerm:       1.2,
		MTerm:       0.5,
		NTerm:       1.0,
		ErrorSigma:  2,
		PageSize:    4096,
		RandomSeed:  42,
	}
}

func TestErrorModelRBERBounds(t *testing.T) {
	m := NewErrorModel(testErrorModelConfig())
	r := m.RBER(1000, 500, 3)
	if r < 0 || r >= 1 {
		t.Fatalf("RBER() = %v, want in [0,1)", r)
	}
}

func TestErrorModelMonotoneInRetention(t *testing.T) {
	m := NewErrorModel(testErrorModelConfig())
	r1 := m.RBER(100, 500, 3)
	r2 := m.RBER(10000, 500, 3)
	if r2 < r1 {
		t.Errorf("RBER should not decrease with retention time: RBER(100)=%v RBER(10000)=%v", r1, r2)
	}
}

func TestErrorModelMonotoneInEraseCount(t *testing.T) {
	m := NewErrorModel(testErrorModelConfig())
	r1 := m.RBER(1000, 10, 3)
	r2 := m.RBER(1000, 10000, 3)
	if r2 < r1 {
		t.Errorf("RBER should not decrease with erase count: RBER(E=10)=%v RBER(E=10000)=%v", r1, r2)
	}
}

func TestErrorModelDeterministic(t *testing.T) {
	cfg := testErrorModelConfig()
	a := NewErrorModel(cfg)
	b := NewErrorModel(cfg)

	for i := 0; i < 5; i++ {
		if a.RandomErrors(1000, 50, 2) != b.RandomErrors(1000, 50, 2) {
			t.Fatal("two ErrorModels with the same seed diverged")
		}
	}
}

func TestErrorModelRandomErrorsNonNegative(t *testing.T) {
	m := NewErrorModel(testErrorModelConfig())
	for i := 0; i < 100; i++ {
		if n := m.RandomErrors(0, 0, 0); n < 0 {
			t.Fatalf("RandomErrors returned negative count %d", n)
		}
	}
}
