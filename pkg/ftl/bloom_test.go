package ftl

import "testing"

func TestBloomSetNoFalseNegatives(t *testing.T) {
	s := NewBloomSet(4, 1000, 0.01, 0)

	keys := []uint64{0, 1, 42, refreshKey(3, 7), refreshKey(100, 2)}
	for _, k := range keys {
		s.Insert(1, k)
	}
	for _, k := range keys {
		if !s.Contains(1, k) {
			t.Errorf("Contains(1, %d) = false, want true after Insert", k)
		}
	}
}

func TestBloomSetDiscardsFirstFilter(t *testing.T) {
	s := NewBloomSet(3, 100, 0.01, 0)
	if s.NLevels() != 3 {
		t.Fatalf("NLevels() = %d, want 3", s.NLevels())
	}
}

func TestBloomSetQueryClassification(t *testing.T) {
	s := NewBloomSet(2, 100, 0.01, 0)
	k := refreshKey(5, 1)
	s.Insert(0, k)

	// true positive: inserted at level 0, queried at level 0, recorded
	// actual level is 0.
	if hit := s.Query(0, k, 0, true); !hit {
		t.Fatal("Query should report a hit for an inserted key")
	}
	c := s.Counters(0)
	if c.TruePositive != 1 {
		t.Errorf("TruePositive = %d, want 1", c.TruePositive)
	}

	// true negative: a key never inserted anywhere.
	other := refreshKey(999, 3)
	s.Query(1, other, 0, false)
	c1 := s.Counters(1)
	if c1.TrueNegative != 1 {
		t.Errorf("TrueNegative = %d, want 1", c1.TrueNegative)
	}
}

func TestBloomSetResetCountersKeepsBits(t *testing.T) {
	s := NewBloomSet(2, 100, 0.01, 0)
	k := refreshKey(1, 1)
	s.Insert(0, k)
	s.Query(0, k, 0, true)

	s.ResetCounters()
	c := s.Counters(0)
	if c.TruePositive != 0 || c.ActualInsert != 0 {
		t.Errorf("counters not reset: %+v", c)
	}
	if !s.Contains(0, k) {
		t.Error("ResetCounters should not clear the bit table")
	}
}
