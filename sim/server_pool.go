package sim

import (
	"cmp"
	"fmt"

	"github.com/addrummond/heap"
)

// serverSlot is one server's next-free timestamp.
type serverSlot struct {
	freeAt int64
}

func (a *serverSlot) Cmp(b *serverSlot) int {
	return cmp.Compare(a.freeAt, b.freeAt)
}

// ServerPool is a min-heap of next-free timestamps, one per server.
//
// Baseline servers start free at 0. Burst servers (peak - baseline of them)
// start free at the window end, so they only take work once every baseline
// server's backlog extends past the window.
type ServerPool struct {
	slots heap.Heap[serverSlot, heap.Min]
	n     int
}

// NewServerPool creates a pool of peakCapacity servers of which
// baselineCapacity are free at time 0 and the rest at windowLength.
// Requires 0 <= baselineCapacity <= peakCapacity and peakCapacity >= 1.
func NewServerPool(windowLength int64, baselineCapacity, peakCapacity int) *ServerPool {
	if peakCapacity < 1 {
		panic(fmt.Sprintf("NewServerPool: peakCapacity must be >= 1, got %d", peakCapacity))
	}
	if baselineCapacity < 0 || baselineCapacity > peakCapacity {
		panic(fmt.Sprintf("NewServerPool: baselineCapacity %d outside [0, %d]", baselineCapacity, peakCapacity))
	}
	p := &ServerPool{}
	for i := 0; i < baselineCapacity; i++ {
		p.Push(0)
	}
	for i := baselineCapacity; i < peakCapacity; i++ {
		p.Push(windowLength)
	}
	return p
}

// Len returns the number of servers currently in the pool.
func (p *ServerPool) Len() int {
	return p.n
}

// Push returns a server to the pool, free from freeAt onward.
func (p *ServerPool) Push(freeAt int64) {
	heap.PushOrderable(&p.slots, serverSlot{freeAt: freeAt})
	p.n++
}

// PopEarliest removes the server that becomes free soonest and returns its
// next-free timestamp. Popping an empty pool is a caller bug.
func (p *ServerPool) PopEarliest() int64 {
	slot, ok := heap.PopOrderable(&p.slots)
	if !ok {
		panic("ServerPool.PopEarliest: pool is empty")
	}
	p.n--
	return slot.freeAt
}

// PeekEarliest returns the soonest next-free timestamp without removing it.
func (p *ServerPool) PeekEarliest() (int64, bool) {
	slot, ok := heap.Peek(&p.slots)
	if !ok {
		return 0, false
	}
	return slot.freeAt, true
}
