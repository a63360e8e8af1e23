// Package testutil provides shared test infrastructure for the simulator:
// the hand-checked dispatch dataset and tolerance assertions used by the
// sim and sim/workload test packages.
package testutil

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"gopkg.in/yaml.v3"
)

// DispatchGolden represents the structure of testdata/dispatch_golden.yaml.
type DispatchGolden struct {
	Cases []DispatchCase `yaml:"cases"`
}

// DispatchCase is one schedule with the latencies the dispatcher must produce.
type DispatchCase struct {
	Name           string    `yaml:"name"`
	WindowNanos    int64     `yaml:"window_ns"`
	Baseline       int       `yaml:"baseline"`
	Peak           int       `yaml:"peak"`
	Events         [][]int64 `yaml:"events"` // [arrival offset, service duration] pairs
	LatenciesNanos []int64   `yaml:"latencies_ns"`
}

// LoadDispatchGolden loads the dispatch dataset from the repo-root testdata directory.
// The path is resolved relative to this source file: sim/internal/testutil/ → testdata/.
func LoadDispatchGolden(t *testing.T) *DispatchGolden {
	t.Helper()

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get current file path")
	}
	path := filepath.Join(filepath.Dir(thisFile), "..", "..", "..", "testdata", "dispatch_golden.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read dispatch dataset: %v", err)
	}

	var golden DispatchGolden
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&golden); err != nil {
		t.Fatalf("Failed to parse dispatch dataset: %v", err)
	}
	for _, c := range golden.Cases {
		for i, ev := range c.Events {
			if len(ev) != 2 {
				t.Fatalf("case %q event %d: want [arrival, service], got %v", c.Name, i, ev)
			}
		}
		if len(c.Events) != len(c.LatenciesNanos) {
			t.Fatalf("case %q: %d events but %d latencies", c.Name, len(c.Events), len(c.LatenciesNanos))
		}
	}
	return &golden
}

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}
