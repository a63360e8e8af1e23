package sim

import "github.com/shenango/bench/sim/workload"

// SimulateDispatch replays schedule against a pool of peakCapacity servers
// (baselineCapacity of them free from time 0) and returns each event's
// latency in nanoseconds, in schedule order.
//
// Every arrival goes to whichever server frees up soonest: work-conserving,
// FIFO by arrival, no affinity and no preemption. An empty schedule is a
// caller bug and panics.
func SimulateDispatch(schedule workload.Schedule, windowLength int64, baselineCapacity, peakCapacity int) []int64 {
	return SimulateDispatchInto(make([]int64, 0, len(schedule)), schedule, windowLength, baselineCapacity, peakCapacity)
}

// SimulateDispatchInto is SimulateDispatch appending into dst.
func SimulateDispatchInto(dst []int64, schedule workload.Schedule, windowLength int64, baselineCapacity, peakCapacity int) []int64 {
	if len(schedule) == 0 {
		panic("SimulateDispatch: schedule must not be empty")
	}
	pool := NewServerPool(windowLength, baselineCapacity, peakCapacity)

	for _, ev := range schedule {
		start := max(ev.ArrivalOffset, pool.PopEarliest())
		end := start + ev.ServiceDuration
		dst = append(dst, end-ev.ArrivalOffset)
		pool.Push(end)
	}
	return dst
}
