// Package simcollab provides minimal, fixed-latency implementations of
// the PAL, DRAM, and EventEngine interfaces ftl.FTL consumes as opaque
// external collaborators. None of this models real NAND timing — that
// modeling is explicitly out of scope for the FTL core (spec.md §1) —
// it exists only so cmd/ftlsim has something concrete to drive the
// facade with. The ftl package's own tests use their own fakes instead.
package simcollab

import (
	"container/heap"

	"github.com/dd0wney/ftlsim/pkg/ftl"
)

// Latencies bundles the fixed per-operation timing this PAL/DRAM charge.
// A real PAL would derive these from NAND geometry and command
// overhead; this one just adds a constant.
type Latencies struct {
	PageRead   float64
	PageWrite  float64
	BlockErase float64
	DRAMPerKB  float64
}

// DefaultLatencies returns a plausible set of simulated-time constants
// in arbitrary tick units.
func DefaultLatencies() Latencies {
	return Latencies{
		PageRead:   25,
		PageWrite:  200,
		BlockErase: 1500,
		DRAMPerKB:  0.1,
	}
}

// PAL is a fixed-latency physical abstraction layer.
type PAL struct {
	lat Latencies
}

// NewPAL builds a PAL with the given latencies.
func NewPAL(lat Latencies) *PAL {
	return &PAL{lat: lat}
}

func (p *PAL) Read(req ftl.PALRequest, tick float64) float64 {
	return tick + p.lat.PageRead
}

func (p *PAL) Write(req ftl.PALRequest, tick float64) float64 {
	return tick + p.lat.PageWrite
}

func (p *PAL) Erase(req ftl.PALRequest, tick float64) float64 {
	return tick + p.lat.BlockErase
}

// DRAM is a fixed-bandwidth DRAM controller model.
type DRAM struct {
	lat Latencies
}

// NewDRAM builds a DRAM model with the given latencies.
func NewDRAM(lat Latencies) *DRAM {
	return &DRAM{lat: lat}
}

func (d *DRAM) Read(bytes int, tick float64) float64 {
	return tick + float64(bytes)/1024*d.lat.DRAMPerKB
}

func (d *DRAM) Write(bytes int, tick float64) float64 {
	return tick + float64(bytes)/1024*d.lat.DRAMPerKB
}

// pendingEvent is one entry in the event heap: a callback due to fire at
// a given tick.
type pendingEvent struct {
	id       ftl.EventID
	tick     float64
	callback func(tick float64)
	seq      int
}

type eventHeap []*pendingEvent

func (h eventHeap) Len() int { return len(h) }
func (h eventHeap) Less(i, j int) bool {
	if h[i].tick != h[j].tick {
		return h[i].tick < h[j].tick
	}
	return h[i].seq < h[j].seq
}
func (h eventHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *eventHeap) Push(x any)   { *h = append(*h, x.(*pendingEvent)) }
func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// EventEngine is a minimal single-threaded, cooperative discrete-event
// scheduler: a priority queue of (tick, callback) pairs, matching
// spec.md §5's scheduling model. Run drains the queue in tick order
// until it is empty or a tick ceiling is reached.
type EventEngine struct {
	queue      eventHeap
	callbacks  map[ftl.EventID]func(tick float64)
	nextID     ftl.EventID
	nextSeq    int
}

// NewEventEngine returns an empty engine.
func NewEventEngine() *EventEngine {
	e := &EventEngine{callbacks: make(map[ftl.EventID]func(tick float64))}
	heap.Init(&e.queue)
	return e
}

func (e *EventEngine) AllocateEvent(callback func(tick float64)) ftl.EventID {
	e.nextID++
	id := e.nextID
	e.callbacks[id] = callback
	return id
}

func (e *EventEngine) ScheduleEvent(id ftl.EventID, tick float64) {
	cb, ok := e.callbacks[id]
	if !ok {
		return
	}
	e.nextSeq++
	heap.Push(&e.queue, &pendingEvent{id: id, tick: tick, callback: cb, seq: e.nextSeq})
}

// Run pops events in tick order, invoking each callback, until the
// queue is empty or the next event's tick exceeds untilTick.
func (e *EventEngine) Run(untilTick float64) {
	for e.queue.Len() > 0 {
		next := e.queue[0]
		if next.tick > untilTick {
			return
		}
		heap.Pop(&e.queue)
		next.callback(next.tick)
	}
}

// Len returns the number of events currently queued.
func (e *EventEngine) Len() int {
	return e.queue.Len()
}
