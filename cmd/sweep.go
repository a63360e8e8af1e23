package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/shenango/bench/sim"
	"github.com/shenango/bench/sim/sweep"
	"github.com/shenango/bench/sim/workload"
)

var (
	sweepFlags      = sweep.DefaultConfig() // flag-bound sweep settings
	sweepConfigPath string                  // optional YAML file layered under explicit flags
	sweepFormat     string                  // csv or yaml
)

// sweepOverrides copies one flag-bound field into a config loaded from file.
// Only flags the user set explicitly are applied.
var sweepOverrides = map[string]func(dst *sweep.Config, src sweep.Config){
	"peak_cpus":    func(d *sweep.Config, s sweep.Config) { d.PeakServers = s.PeakServers },
	"cpus":         func(d *sweep.Config, s sweep.Config) { d.MaxServers = s.MaxServers },
	"load":         func(d *sweep.Config, s sweep.Config) { d.MaxLoad = s.MaxLoad },
	"service_time": func(d *sweep.Config, s sweep.Config) { d.ServiceTimeMicros = s.ServiceTimeMicros },
	"sla":          func(d *sweep.Config, s sweep.Config) { d.SLAMicros = s.SLAMicros },
	"interval":     func(d *sweep.Config, s sweep.Config) { d.IntervalMicros = s.IntervalMicros },
	"datapoints":   func(d *sweep.Config, s sweep.Config) { d.Datapoints = s.Datapoints },
	"iterations":   func(d *sweep.Config, s sweep.Config) { d.Iterations = s.Iterations },
	"distribution": func(d *sweep.Config, s sweep.Config) { d.Distribution = s.Distribution },
	"seed":         func(d *sweep.Config, s sweep.Config) { d.Seed = s.Seed },
	"workers":      func(d *sweep.Config, s sweep.Config) { d.Workers = s.Workers },
}

// resolveSweepConfig returns the flag values, or, with --config, the file's
// values with explicitly set flags applied on top.
func resolveSweepConfig(cmd *cobra.Command) (sweep.Config, error) {
	if sweepConfigPath == "" {
		return sweepFlags, nil
	}
	cfg, err := sweep.LoadConfig(sweepConfigPath, sweep.DefaultConfig())
	if err != nil {
		return cfg, err
	}
	for name, apply := range sweepOverrides {
		if cmd.Flags().Changed(name) {
			apply(&cfg, sweepFlags)
		}
	}
	return cfg, nil
}

// sweepCmd prints, for each load point, the fewest servers meeting the SLA
var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Find the minimum server count meeting the p99.9 SLA across a load sweep",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := resolveSweepConfig(cmd)
		if err != nil {
			logrus.Fatalf("unable to load sweep config; %v", err)
		}
		if err := cfg.Validate(); err != nil {
			logrus.Fatalf("Invalid sweep config: %v", err)
		}
		if sweepFormat != formatCSV && sweepFormat != formatYAML {
			logrus.Fatalf("Invalid --format %q (want %s or %s)", sweepFormat, formatCSV, formatYAML)
		}

		logrus.Infof("Starting sweep: %d load points up to %.2f, %d..%d servers (peak %d), %s service %.2fµs, SLA %.2fµs",
			cfg.Datapoints, cfg.MaxLoad, 1, cfg.MaxServers, cfg.PeakServers, cfg.Distribution, cfg.ServiceTimeMicros, cfg.SLAMicros)
		if n, ok := peakPooledSamples(cfg); ok {
			logrus.Infof("Largest estimate pools %d samples (%s)", n, pooledSize(n))
		}
		startTime := time.Now()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		if err := runSweep(ctx, os.Stdout, cfg, sweepFormat); err != nil {
			logrus.Fatalf("Sweep failed: %v", err)
		}
		logrus.Infof("Sweep complete in %v.", time.Since(startTime))
	},
}

// peakPooledSamples returns the sample count of the estimate at the highest
// load, the largest the sweep holds in memory at once.
func peakPooledSamples(cfg sweep.Config) (int64, bool) {
	rps := sweep.RequestsPerSecond(cfg.MaxLoad, cfg.ServiceTimeMicros)
	if rps <= 0 || rps > workload.NanosPerSecond {
		return 0, false
	}
	tc := sim.TrialConfig{RequestsPerSecond: rps, WindowLength: cfg.IntervalMicros * 1000, Iterations: cfg.Iterations}
	return tc.PooledSamples(), true
}

// runSweep streams CSV rows as points complete; YAML is written once at the end.
func runSweep(ctx context.Context, out io.Writer, cfg sweep.Config, format string) error {
	if format == formatYAML {
		points, err := sweep.Collect(ctx, cfg)
		if err != nil {
			return err
		}
		return writeSweepYAML(out, cfg, points)
	}
	if err := writeSweepHeader(out); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	return sweep.Run(ctx, cfg, func(p sweep.Point) error {
		return writeSweepPoint(out, p)
	})
}

func init() {
	d := sweep.DefaultConfig()
	sweepCmd.Flags().IntVar(&sweepFlags.PeakServers, "peak_cpus", d.PeakServers, "Total servers including burst capacity")
	sweepCmd.Flags().IntVar(&sweepFlags.MaxServers, "cpus", d.MaxServers, "Largest baseline server count to try")
	sweepCmd.Flags().Float64Var(&sweepFlags.MaxLoad, "load", d.MaxLoad, "Offered load at the last point, in servers' worth of work")
	sweepCmd.Flags().Float64Var(&sweepFlags.ServiceTimeMicros, "service_time", d.ServiceTimeMicros, "Mean service time (µs)")
	sweepCmd.Flags().Float64Var(&sweepFlags.SLAMicros, "sla", d.SLAMicros, "p99.9 latency target (µs)")
	sweepCmd.Flags().Int64Var(&sweepFlags.IntervalMicros, "interval", d.IntervalMicros, "Simulated window length (µs)")
	sweepCmd.Flags().IntVar(&sweepFlags.Datapoints, "datapoints", d.Datapoints, "Number of load points")
	sweepCmd.Flags().IntVar(&sweepFlags.Iterations, "iterations", d.Iterations, "Trials pooled per estimate")
	sweepCmd.Flags().StringVar(&sweepFlags.Distribution, "distribution", d.Distribution, "Service-time distribution (constant, exponential, bimodal1, bimodal2)")
	sweepCmd.Flags().Int64Var(&sweepFlags.Seed, "seed", d.Seed, "Seed for random schedule generation")
	sweepCmd.Flags().IntVar(&sweepFlags.Workers, "workers", d.Workers, "Goroutines running trials (0 = GOMAXPROCS)")

	sweepCmd.Flags().StringVar(&sweepConfigPath, "config", "", "YAML sweep config; explicit flags override its values")
	sweepCmd.Flags().StringVar(&sweepFormat, "format", formatCSV, "Output format (csv, yaml)")

	rootCmd.AddCommand(sweepCmd)
}
