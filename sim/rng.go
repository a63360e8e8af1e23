package sim

import (
	"fmt"
	"hash/fnv"
	"math/rand/v2"
)

// === SimulationKey ===

// SimulationKey uniquely identifies a reproducible estimation run.
// Two runs with the same SimulationKey and identical configuration
// MUST produce bit-for-bit identical results.
type SimulationKey int64

// NewSimulationKey creates a SimulationKey from a seed value.
func NewSimulationKey(seed int64) SimulationKey {
	return SimulationKey(seed)
}

// Derive returns the key of a named sub-stream: key XOR fnv1a64(name).
// It touches no shared state and is safe to call from any goroutine.
func (k SimulationKey) Derive(name string) SimulationKey {
	return SimulationKey(int64(k) ^ fnv1a64(name))
}

// Rand returns a fresh generator seeded from the key.
func (k SimulationKey) Rand() *rand.Rand {
	return rand.New(rand.NewPCG(uint64(k), pcgStream))
}

// ForTrial returns the independent stream for trial i. Each call returns a
// new generator, so trials may run on any goroutine in any order.
func (k SimulationKey) ForTrial(i int) *rand.Rand {
	return k.Derive(SubsystemTrial(i)).Rand()
}

// pcgStream is the fixed PCG increment selector shared by every stream;
// streams differ by their seed alone.
const pcgStream = 0x9e3779b97f4a7c15

// === Subsystem Constants ===

const (
	// SubsystemSweep seeds per-point estimates of a capacity sweep.
	SubsystemSweep = "sweep"
)

// SubsystemTrial returns the subsystem name for trial N.
func SubsystemTrial(id int) string {
	return fmt.Sprintf("trial_%d", id)
}

// SubsystemSweepPoint returns the subsystem name for one load point of a
// capacity sweep. Every server count tried at that load shares the stream,
// so they see identical schedules.
func SubsystemSweepPoint(loadIndex int) string {
	return fmt.Sprintf("%s/load_%d", SubsystemSweep, loadIndex)
}

// fnv1a64 computes a 64-bit FNV-1a hash of the input string.
func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}
