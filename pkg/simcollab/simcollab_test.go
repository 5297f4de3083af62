package simcollab

import (
	"testing"

	"github.com/dd0wney/ftlsim/pkg/ftl"
)

func TestPALAdvancesTick(t *testing.T) {
	p := NewPAL(DefaultLatencies())
	finished := p.Write(ftl.PALRequest{Block: 0, Page: 0, IOMap: ftl.FullIOMap(1)}, 100)
	if finished <= 100 {
		t.Errorf("Write finishedAt = %v, want > 100", finished)
	}
}

func TestEventEngineOrdersByTick(t *testing.T) {
	e := NewEventEngine()
	var order []int

	id1 := e.AllocateEvent(func(tick float64) { order = append(order, 1) })
	id2 := e.AllocateEvent(func(tick float64) { order = append(order, 2) })

	e.ScheduleEvent(id1, 200)
	e.ScheduleEvent(id2, 50)

	e.Run(1000)

	if len(order) != 2 || order[0] != 2 || order[1] != 1 {
		t.Errorf("events fired out of tick order: %v", order)
	}
}

func TestEventEngineRespectsCeiling(t *testing.T) {
	e := NewEventEngine()
	fired := false
	id := e.AllocateEvent(func(tick float64) { fired = true })
	e.ScheduleEvent(id, 500)

	e.Run(100)
	if fired {
		t.Error("event should not fire before its scheduled tick")
	}
	if e.Len() != 1 {
		t.Errorf("Len() = %d, want 1 (event still pending)", e.Len())
	}

	e.Run(500)
	if !fired {
		t.Error("event should fire once untilTick reaches its scheduled tick")
	}
}
