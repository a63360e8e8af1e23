package workload

import (
	"fmt"
	"math/rand/v2"
)

// Event is one arrival in a simulated window.
type Event struct {
	ArrivalOffset   int64 // ns from window start
	ServiceDuration int64 // ns
}

// Schedule is a sequence of Events ordered by ArrivalOffset ascending.
// The order comes from construction; nothing re-sorts it.
type Schedule []Event

// ExpectedCount returns the number of events GenerateSchedule emits for the
// given throughput and window: window/meanGap + 1.
func ExpectedCount(requestsPerSecond, windowLength int64) int64 {
	return windowLength/NewPoissonArrivals(requestsPerSecond).MeanGap() + 1
}

// GenerateSchedule builds one window of Poisson arrivals with service times
// drawn from dist.
//
// The loop runs a fixed ExpectedCount iterations instead of stopping when the
// window is exhausted. Offsets are clamped to windowLength, so late arrivals
// pile up on the boundary rather than extending the window.
func GenerateSchedule(dist Distribution, requestsPerSecond, windowLength int64, rng *rand.Rand) Schedule {
	if windowLength < 0 {
		panic(fmt.Sprintf("GenerateSchedule: windowLength must be >= 0, got %d", windowLength))
	}
	arrivals := NewPoissonArrivals(requestsPerSecond)
	n := windowLength/arrivals.MeanGap() + 1

	schedule := make(Schedule, 0, n)
	var offset int64
	for range n {
		offset = min(offset+arrivals.SampleGap(rng), windowLength)
		schedule = append(schedule, Event{
			ArrivalOffset:   offset,
			ServiceDuration: dist.Sample(rng),
		})
	}
	return schedule
}
