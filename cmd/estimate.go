package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/shenango/bench/sim"
	"github.com/shenango/bench/sim/workload"
)

var (
	estimateRPS          int64   // Requests arrival per second
	estimateWindow       int64   // Window length (ns)
	estimateBaseline     int     // Servers free from time 0
	estimatePeak         int     // Total servers; the rest join at the end of the window
	estimateIterations   int     // Trials to pool
	estimateDistribution string  // Service-time distribution name
	estimateMean         float64 // Mean service time (ns)
	estimateSeed         int64   // Root seed
	estimateWorkers      int     // Goroutines running trials
	estimateSummary      bool    // Include mean/stddev/p50/p99/max
	estimateDump         string  // Optional file for the sorted pooled latencies
)

// buildTrialConfig turns the estimate flags into a validated TrialConfig.
func buildTrialConfig() (sim.TrialConfig, error) {
	kind, err := workload.ParseDistributionKind(estimateDistribution)
	if err != nil {
		return sim.TrialConfig{}, err
	}
	dist, err := workload.NewDistribution(kind, estimateMean)
	if err != nil {
		return sim.TrialConfig{}, err
	}
	cfg := sim.TrialConfig{
		Distribution:      dist,
		RequestsPerSecond: estimateRPS,
		WindowLength:      estimateWindow,
		BaselineCapacity:  estimateBaseline,
		PeakCapacity:      estimatePeak,
		Iterations:        estimateIterations,
		Workers:           estimateWorkers,
		Seed:              estimateSeed,
		Summary:           estimateSummary,
	}
	return cfg, cfg.Validate()
}

// runEstimate pools the trials, optionally dumps the sorted samples and
// returns the report.
func runEstimate(ctx context.Context, cfg sim.TrialConfig, dumpPath string) (estimateReport, error) {
	latencies, err := sim.PooledLatencies(ctx, cfg)
	if err != nil {
		return estimateReport{}, err
	}
	slices.Sort(latencies)
	if dumpPath != "" {
		if err := sim.SaveLatencies(latencies, dumpPath); err != nil {
			return estimateReport{}, fmt.Errorf("dumping latencies: %w", err)
		}
	}
	return newEstimateReport(cfg, sim.NewTailEstimate(latencies, cfg.Summary)), nil
}

// estimateCmd estimates p99.9 latency for one fixed configuration
var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Estimate p99.9 latency for one rate and server pool",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := buildTrialConfig()
		if err != nil {
			logrus.Fatalf("Invalid estimate config: %v", err)
		}

		logrus.Infof("Starting estimate: %s rps=%d window=%dns servers=%d/%d iterations=%d, pooling %s",
			cfg.Distribution, cfg.RequestsPerSecond, cfg.WindowLength, cfg.BaselineCapacity, cfg.PeakCapacity, cfg.Iterations,
			pooledSize(cfg.PooledSamples()))
		startTime := time.Now()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		report, err := runEstimate(ctx, cfg, estimateDump)
		if err != nil {
			logrus.Fatalf("Estimate failed: %v", err)
		}
		if err := writeEstimateReport(os.Stdout, report); err != nil {
			logrus.Fatalf("Writing report: %v", err)
		}
		logrus.Infof("Estimate complete in %v.", time.Since(startTime))
	},
}

func init() {
	estimateCmd.Flags().Int64Var(&estimateRPS, "rps", 800_000, "Requests arrival per second")
	estimateCmd.Flags().Int64Var(&estimateWindow, "window", 1_000_000, "Simulated window length (ns)")
	estimateCmd.Flags().IntVar(&estimateBaseline, "baseline", 10, "Servers available from time 0")
	estimateCmd.Flags().IntVar(&estimatePeak, "peak", 16, "Total servers; the extra ones become free at the end of the window")
	estimateCmd.Flags().IntVar(&estimateIterations, "iterations", 1000, "Trials pooled into the estimate")
	estimateCmd.Flags().StringVar(&estimateDistribution, "distribution", workload.KindExponential.String(), "Service-time distribution (constant, exponential, bimodal1, bimodal2)")
	estimateCmd.Flags().Float64Var(&estimateMean, "mean", 10_000, "Mean service time (ns)")
	estimateCmd.Flags().Int64Var(&estimateSeed, "seed", 42, "Seed for random schedule generation")
	estimateCmd.Flags().IntVar(&estimateWorkers, "workers", 0, "Goroutines running trials (0 = GOMAXPROCS)")
	estimateCmd.Flags().BoolVar(&estimateSummary, "summary", true, "Include mean, stddev, p50, p99 and max")
	estimateCmd.Flags().StringVar(&estimateDump, "dump", "", "Write the sorted pooled latencies (ns) to this file")

	rootCmd.AddCommand(estimateCmd)
}
