package workload

import (
	"fmt"
	"math/rand/v2"
)

// NanosPerSecond is the number of simulation ticks in one second.
const NanosPerSecond = 1_000_000_000

// PoissonArrivals draws exponentially-distributed inter-arrival gaps (CV=1),
// realizing a homogeneous Poisson process.
type PoissonArrivals struct {
	meanGap int64 // nanoseconds between arrivals, on average
}

// NewPoissonArrivals creates a sampler for the given throughput.
// The mean gap is 1e9/requestsPerSecond in whole nanoseconds; a rate that
// would make the gap zero (or a non-positive rate) is a caller bug and panics.
func NewPoissonArrivals(requestsPerSecond int64) PoissonArrivals {
	if requestsPerSecond <= 0 {
		panic(fmt.Sprintf("NewPoissonArrivals: requestsPerSecond must be > 0, got %d", requestsPerSecond))
	}
	gap := NanosPerSecond / requestsPerSecond
	if gap == 0 {
		panic(fmt.Sprintf("NewPoissonArrivals: requestsPerSecond %d exceeds one arrival per nanosecond", requestsPerSecond))
	}
	return PoissonArrivals{meanGap: gap}
}

// MeanGap returns the mean inter-arrival time in nanoseconds.
func (p PoissonArrivals) MeanGap() int64 {
	return p.meanGap
}

// SampleGap returns the next inter-arrival time in nanoseconds, truncated.
// A gap of 0 is valid: several arrivals may share a timestamp.
func (p PoissonArrivals) SampleGap(rng *rand.Rand) int64 {
	return int64(rng.ExpFloat64() * float64(p.meanGap))
}
