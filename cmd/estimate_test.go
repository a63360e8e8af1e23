package cmd

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shenango/bench/sim"
	"github.com/shenango/bench/sim/workload"
)

func withEstimateFlags(t *testing.T, set func()) {
	t.Helper()
	saved := []any{estimateRPS, estimateWindow, estimateBaseline, estimatePeak, estimateIterations,
		estimateDistribution, estimateMean, estimateSeed, estimateWorkers, estimateSummary}
	t.Cleanup(func() {
		estimateRPS = saved[0].(int64)
		estimateWindow = saved[1].(int64)
		estimateBaseline = saved[2].(int)
		estimatePeak = saved[3].(int)
		estimateIterations = saved[4].(int)
		estimateDistribution = saved[5].(string)
		estimateMean = saved[6].(float64)
		estimateSeed = saved[7].(int64)
		estimateWorkers = saved[8].(int)
		estimateSummary = saved[9].(bool)
	})
	set()
}

func TestBuildTrialConfig_Defaults(t *testing.T) {
	cfg, err := buildTrialConfig()
	require.NoError(t, err)
	assert.Equal(t, "exponential", cfg.Distribution.Name())
	assert.Equal(t, int64(10_000), cfg.Distribution.Mean())
	assert.Equal(t, int64(800_000), cfg.RequestsPerSecond)
	assert.Equal(t, 10, cfg.BaselineCapacity)
	assert.Equal(t, 16, cfg.PeakCapacity)
	assert.True(t, cfg.Summary)
}

func TestBuildTrialConfig_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		set     func()
		wantErr string
	}{
		{"unknown distribution", func() { estimateDistribution = "gaussian" }, "unknown distribution"},
		{"negative mean", func() { estimateMean = -1 }, "mean"},
		{"baseline above peak", func() { estimateBaseline = 20 }, "baseline capacity"},
		{"zero rate", func() { estimateRPS = 0 }, "requests per second"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withEstimateFlags(t, tt.set)
			_, err := buildTrialConfig()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRunEstimate_DumpsSortedLatencies(t *testing.T) {
	// GIVEN constant 1µs service, one server, 10µs mean gap
	cfg := sim.TrialConfig{
		Distribution:      workload.Constant(1000),
		RequestsPerSecond: 100_000,
		WindowLength:      100_000,
		BaselineCapacity:  1,
		PeakCapacity:      1,
		Iterations:        4,
		Seed:              1,
		Summary:           true,
	}
	dump := filepath.Join(t.TempDir(), "latencies.txt")

	// WHEN estimated with a dump path
	report, err := runEstimate(context.Background(), cfg, dump)
	require.NoError(t, err)

	// THEN the report counts 4 trials of 11 events and the dump holds them in order
	assert.Equal(t, 44, report.Estimate.Samples)
	require.NotNil(t, report.Estimate.Summary)
	assert.GreaterOrEqual(t, report.Estimate.P999Micros, 1.0)

	data, err := os.ReadFile(dump)
	require.NoError(t, err)
	fields := strings.Split(strings.TrimSuffix(string(data), ", "), ", ")
	assert.Len(t, fields, 44)
	assert.Equal(t, "1000", fields[0], "no sample is below the service time")
}

func TestRootCmd_RegistersSubcommands(t *testing.T) {
	for _, name := range []string{"sweep", "estimate"} {
		c, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, c.Name())
	}
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("log"))
}
