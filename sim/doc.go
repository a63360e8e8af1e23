// Package sim provides the discrete-event queueing core of simnet: a
// multi-server dispatch simulation and the Monte Carlo aggregator that turns
// many simulated windows into one tail-latency estimate.
//
// # Reading Guide
//
// Start with these files to understand the kernel:
//   - workload/schedule.go: one window of Poisson arrivals with sampled service times
//   - server_pool.go: min-heap of per-server next-free timestamps (baseline + burst)
//   - dispatch.go: earliest-available-server replay of a schedule
//   - trials.go: independent trials, pooling and the 99.9th percentile
//
// # Units
//
// All simulation times are int64 nanoseconds. Reported latencies are
// float64 microseconds.
//
// # Determinism
//
// Every trial draws from its own stream derived from the run seed
// (see rng.go), so estimates are reproducible and independent of the number
// of worker goroutines.
//
// The capacity search built on top of this package lives in sim/sweep.
package sim
