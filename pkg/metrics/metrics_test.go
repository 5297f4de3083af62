package metrics

import (
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
)

func gaugeValue(t *testing.T, m interface{ Write(*dto.Metric) error }) float64 {
	t.Helper()
	var metric dto.Metric
	if err := m.Write(&metric); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if g := metric.GetGauge(); g != nil {
		return g.GetValue()
	}
	if c := metric.GetCounter(); c != nil {
		return c.GetValue()
	}
	t.Fatalf("metric has neither gauge nor counter value")
	return 0
}

func TestUpdateCapacity(t *testing.T) {
	r := NewRegistry()
	r.UpdateCapacity(120, 3, 450, 80)

	if got := gaugeValue(t, r.FreeBlocksTotal); got != 120 {
		t.Errorf("FreeBlocksTotal = %v, want 120", got)
	}
	if got := gaugeValue(t, r.BadBlocksTotal); got != 3 {
		t.Errorf("BadBlocksTotal = %v, want 3", got)
	}
	if got := gaugeValue(t, r.EraseCountMax); got != 450 {
		t.Errorf("EraseCountMax = %v, want 450", got)
	}
	if got := gaugeValue(t, r.EraseCountSpread); got != 80 {
		t.Errorf("EraseCountSpread = %v, want 80", got)
	}
}

func TestSetWriteAmplification(t *testing.T) {
	r := NewRegistry()
	r.SetWriteAmplification(1.35)

	if got := gaugeValue(t, r.WriteAmplification); got != 1.35 {
		t.Errorf("WriteAmplification = %v, want 1.35", got)
	}
}

func TestRecordGCCycle(t *testing.T) {
	r := NewRegistry()
	r.RecordGCCycle("greedy", 12*time.Millisecond, 48, true)
	r.RecordGCCycle("greedy", 9*time.Millisecond, 30, false)

	if got := gaugeValue(t, r.GCPagesMigratedTotal); got != 78 {
		t.Errorf("GCPagesMigratedTotal = %v, want 78", got)
	}
	if got := gaugeValue(t, r.GCErasesTotal); got != 1 {
		t.Errorf("GCErasesTotal = %v, want 1", got)
	}

	counter, err := r.GCCyclesTotal.GetMetricWithLabelValues("greedy")
	if err != nil {
		t.Fatalf("GetMetricWithLabelValues: %v", err)
	}
	if got := gaugeValue(t, counter); got != 2 {
		t.Errorf("GCCyclesTotal{greedy} = %v, want 2", got)
	}
}

func TestRecordRefreshSweep(t *testing.T) {
	r := NewRegistry()
	r.RecordRefreshSweep(16)
	r.RecordRefreshSweep(4)

	if got := gaugeValue(t, r.RefreshSweepsTotal); got != 2 {
		t.Errorf("RefreshSweepsTotal = %v, want 2", got)
	}
	if got := gaugeValue(t, r.RefreshPageCopiesTotal); got != 20 {
		t.Errorf("RefreshPageCopiesTotal = %v, want 20", got)
	}
}

func TestRecordRefreshCall(t *testing.T) {
	r := NewRegistry()
	r.RecordRefreshCall(2)
	r.RecordRefreshCall(0)

	if got := gaugeValue(t, r.RefreshCallsTotal); got != 2 {
		t.Errorf("RefreshCallsTotal = %v, want 2", got)
	}
}

func TestRecordBloomQuery(t *testing.T) {
	r := NewRegistry()
	r.RecordBloomQuery(0, true, false, false)
	r.RecordBloomQuery(0, false, true, false)
	r.RecordBloomQuery(1, false, false, true)

	tp, err := r.BloomTruePositivesTotal.GetMetricWithLabelValues("0")
	if err != nil {
		t.Fatalf("GetMetricWithLabelValues: %v", err)
	}
	if got := gaugeValue(t, tp); got != 1 {
		t.Errorf("BloomTruePositivesTotal{0} = %v, want 1", got)
	}

	fp, err := r.BloomFalsePositivesTotal.GetMetricWithLabelValues("0")
	if err != nil {
		t.Fatalf("GetMetricWithLabelValues: %v", err)
	}
	if got := gaugeValue(t, fp); got != 1 {
		t.Errorf("BloomFalsePositivesTotal{0} = %v, want 1", got)
	}

	tn, err := r.BloomTrueNegativesTotal.GetMetricWithLabelValues("1")
	if err != nil {
		t.Fatalf("GetMetricWithLabelValues: %v", err)
	}
	if got := gaugeValue(t, tn); got != 1 {
		t.Errorf("BloomTrueNegativesTotal{1} = %v, want 1", got)
	}
}

func TestRecordBloomInsert(t *testing.T) {
	r := NewRegistry()
	r.RecordBloomInsert(3)
	r.RecordBloomInsert(3)

	ins, err := r.BloomActualInsertsTotal.GetMetricWithLabelValues("3")
	if err != nil {
		t.Fatalf("GetMetricWithLabelValues: %v", err)
	}
	if got := gaugeValue(t, ins); got != 2 {
		t.Errorf("BloomActualInsertsTotal{3} = %v, want 2", got)
	}
}

func TestDefaultRegistrySingleton(t *testing.T) {
	a := DefaultRegistry()
	b := DefaultRegistry()
	if a != b {
		t.Error("DefaultRegistry() returned different instances across calls")
	}
}
