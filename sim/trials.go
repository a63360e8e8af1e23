package sim

import (
	"context"
	"fmt"
	"math/rand/v2"
	"runtime"
	"slices"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/shenango/bench/sim/workload"
)

// TrialConfig describes one tail-latency estimation: the workload, the
// server pool and how many independent trials to pool.
type TrialConfig struct {
	Distribution      workload.Distribution
	RequestsPerSecond int64
	WindowLength      int64 // ns
	BaselineCapacity  int
	PeakCapacity      int
	Iterations        int
	Workers           int   // goroutines running trials; <= 0 means GOMAXPROCS
	Seed              int64 // root of every per-trial stream
	Summary           bool  // also compute LatencySummary (one extra float64 copy of the pool)
}

// Validate reports configuration errors that would otherwise surface as
// panics deep inside a trial.
func (c TrialConfig) Validate() error {
	if c.RequestsPerSecond <= 0 {
		return fmt.Errorf("requests per second must be > 0, got %d", c.RequestsPerSecond)
	}
	if c.RequestsPerSecond > workload.NanosPerSecond {
		return fmt.Errorf("requests per second must be <= %d, got %d", int64(workload.NanosPerSecond), c.RequestsPerSecond)
	}
	if c.WindowLength <= 0 {
		return fmt.Errorf("window length must be > 0, got %d", c.WindowLength)
	}
	if c.Iterations <= 0 {
		return fmt.Errorf("iterations must be > 0, got %d", c.Iterations)
	}
	if c.PeakCapacity < 1 {
		return fmt.Errorf("peak capacity must be >= 1, got %d", c.PeakCapacity)
	}
	if c.BaselineCapacity < 0 || c.BaselineCapacity > c.PeakCapacity {
		return fmt.Errorf("baseline capacity %d must be within [0, %d]", c.BaselineCapacity, c.PeakCapacity)
	}
	return nil
}

func (c TrialConfig) workers() int {
	w := c.Workers
	if w <= 0 {
		w = runtime.GOMAXPROCS(0)
	}
	return min(w, c.Iterations)
}

// PooledSamples returns how many latency samples one estimation holds in
// memory: Iterations × ExpectedCount. cfg must be valid.
func (c TrialConfig) PooledSamples() int64 {
	return int64(c.Iterations) * workload.ExpectedCount(c.RequestsPerSecond, c.WindowLength)
}

// TailEstimate is the outcome of EstimateTailLatency.
type TailEstimate struct {
	P999Micros float64         `yaml:"p999_us"`
	Samples    int             `yaml:"samples"`
	Summary    *LatencySummary `yaml:"summary,omitempty"`
}

// RunTrial generates one schedule from rng, dispatches it and appends the
// per-event latencies to dst.
func RunTrial(cfg TrialConfig, rng *rand.Rand, dst []int64) []int64 {
	schedule := workload.GenerateSchedule(cfg.Distribution, cfg.RequestsPerSecond, cfg.WindowLength, rng)
	return SimulateDispatchInto(dst, schedule, cfg.WindowLength, cfg.BaselineCapacity, cfg.PeakCapacity)
}

// PooledLatencies runs cfg.Iterations trials and returns every latency
// sample, concatenated in trial order. Trial i always draws from
// NewSimulationKey(cfg.Seed).ForTrial(i), so the result does not depend on
// cfg.Workers.
func PooledLatencies(ctx context.Context, cfg TrialConfig) ([]int64, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	key := NewSimulationKey(cfg.Seed)
	perTrial := int(workload.ExpectedCount(cfg.RequestsPerSecond, cfg.WindowLength))
	logrus.Debugf("pooling %d samples over %d trials", cfg.PooledSamples(), cfg.Iterations)
	workers := cfg.workers()

	// Contiguous trial ranges per worker keep the concatenation in trial order.
	parts := make([][]int64, workers)
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		lo := w * cfg.Iterations / workers
		hi := (w + 1) * cfg.Iterations / workers
		wg.Add(1)
		go func() {
			defer wg.Done()
			part := make([]int64, 0, (hi-lo)*perTrial)
			for i := lo; i < hi; i++ {
				if err := ctx.Err(); err != nil {
					errs[w] = err
					return
				}
				part = RunTrial(cfg, key.ForTrial(i), part)
			}
			parts[w] = part
		}()
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return slices.Concat(parts...), nil
}

// EstimateTailLatency pools the latencies of cfg.Iterations independent
// trials and returns the 99.9th percentile at rank floor(N × 0.999), in
// microseconds.
func EstimateTailLatency(ctx context.Context, cfg TrialConfig) (TailEstimate, error) {
	latencies, err := PooledLatencies(ctx, cfg)
	if err != nil {
		return TailEstimate{}, err
	}
	slices.Sort(latencies)

	est := NewTailEstimate(latencies, cfg.Summary)
	logrus.Debugf("%s rps=%d servers=%d/%d: p99.9=%.3fµs over %d samples",
		cfg.Distribution, cfg.RequestsPerSecond, cfg.BaselineCapacity, cfg.PeakCapacity, est.P999Micros, est.Samples)
	return est, nil
}

// NewTailEstimate builds a TailEstimate from ascending-sorted, non-empty
// pooled samples.
func NewTailEstimate(sorted []int64, withSummary bool) TailEstimate {
	est := TailEstimate{
		P999Micros: TailPercentile(sorted, TailPercent),
		Samples:    len(sorted),
	}
	if withSummary {
		s := Summarize(sorted)
		est.Summary = &s
	}
	return est
}

// EstimateP999 is EstimateTailLatency without cancellation, returning only
// the statistic. An invalid cfg panics.
func EstimateP999(cfg TrialConfig) float64 {
	est, err := EstimateTailLatency(context.Background(), cfg)
	if err != nil {
		panic(fmt.Sprintf("EstimateP999: %v", err))
	}
	return est.P999Micros
}
