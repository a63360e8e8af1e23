// Package workload generates synthetic arrival schedules: service-time
// distributions, Poisson inter-arrival gaps and fixed-length windows of events.
package workload

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
)

// DistributionKind names one of the supported service-time laws.
type DistributionKind int

const (
	KindConstant DistributionKind = iota
	KindExponential
	KindBimodal1
	KindBimodal2
)

var kindNames = [...]string{
	KindConstant:    "constant",
	KindExponential: "exponential",
	KindBimodal1:    "bimodal1",
	KindBimodal2:    "bimodal2",
}

func (k DistributionKind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("DistributionKind(%d)", int(k))
	}
	return kindNames[k]
}

// DistributionNames returns the accepted distribution names in declaration order.
func DistributionNames() []string {
	names := make([]string, len(kindNames))
	copy(names, kindNames[:])
	return names
}

// ParseDistributionKind maps a lowercase distribution name to its kind.
func ParseDistributionKind(name string) (DistributionKind, error) {
	for i, n := range kindNames {
		if n == name {
			return DistributionKind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown distribution %q (valid: %s)", name, strings.Join(kindNames[:], ", "))
}

// Distribution is a sampleable service-time law parameterized by its mean in
// nanoseconds. The zero value is Constant(0).
type Distribution struct {
	kind DistributionKind
	mean float64
}

// NewDistribution validates mean and returns the distribution of the given kind.
func NewDistribution(kind DistributionKind, mean float64) (Distribution, error) {
	if kind < 0 || int(kind) >= len(kindNames) {
		return Distribution{}, fmt.Errorf("unknown distribution kind %d", int(kind))
	}
	if math.IsNaN(mean) || math.IsInf(mean, 0) || mean < 0 {
		return Distribution{}, fmt.Errorf("%s distribution mean must be a finite value >= 0, got %v", kind, mean)
	}
	return Distribution{kind: kind, mean: mean}, nil
}

func mustDistribution(kind DistributionKind, mean float64) Distribution {
	d, err := NewDistribution(kind, mean)
	if err != nil {
		panic(err)
	}
	return d
}

// Constant always yields mean.
func Constant(mean float64) Distribution { return mustDistribution(KindConstant, mean) }

// Exponential is memoryless with rate 1/mean.
func Exponential(mean float64) Distribution { return mustDistribution(KindExponential, mean) }

// Bimodal1 yields 5.5×mean with probability 1/10, else 0.5×mean.
func Bimodal1(mean float64) Distribution { return mustDistribution(KindBimodal1, mean) }

// Bimodal2 yields 500.5×mean with probability 1/1000, else 0.5×mean.
func Bimodal2(mean float64) Distribution { return mustDistribution(KindBimodal2, mean) }

func (d Distribution) Kind() DistributionKind { return d.kind }

// Name returns the lowercase variant name, as accepted by ParseDistributionKind.
func (d Distribution) Name() string { return d.kind.String() }

// Mean returns the configured mean truncated to whole nanoseconds.
func (d Distribution) Mean() int64 { return int64(d.mean) }

func (d Distribution) String() string {
	return fmt.Sprintf("%s(%g)", d.kind, d.mean)
}

// Sample draws one service time in nanoseconds. The result is truncated
// toward zero and is never negative. Constant never consumes from rng.
func (d Distribution) Sample(rng *rand.Rand) int64 {
	switch d.kind {
	case KindExponential:
		return int64(rng.ExpFloat64() * d.mean)
	case KindBimodal1:
		return d.bimodal(rng, 10, 5.5)
	case KindBimodal2:
		return d.bimodal(rng, 1000, 500.5)
	default:
		return int64(d.mean)
	}
}

// bimodal picks the straggler outcome with probability 1/oneIn.
func (d Distribution) bimodal(rng *rand.Rand, oneIn int, largeFactor float64) int64 {
	if rng.IntN(oneIn) == 0 {
		return int64(d.mean * largeFactor)
	}
	return int64(d.mean * 0.5)
}
