// Package sweep searches, for each offered load, the smallest baseline server
// count whose simulated 99.9th percentile latency stays under an SLA.
package sweep

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/shenango/bench/sim"
	"github.com/shenango/bench/sim/workload"
)

// Point is the sweep result for one offered load.
type Point struct {
	Load              float64   `yaml:"load"` // servers' worth of work
	RequestsPerSecond int64     `yaml:"requests_per_second"`
	Efficiency        float64   `yaml:"efficiency"` // Load / Servers, 0 when unsatisfied
	Servers           int       `yaml:"servers"`    // 0 when no count up to MaxServers met the SLA
	Latencies         []float64 `yaml:"latencies_us"`
}

// Satisfied reports whether some server count met the SLA.
func (p Point) Satisfied() bool {
	return p.Servers > 0
}

// RequestsPerSecond converts an offered load (in servers' worth of work) to
// a request rate for the given mean service time, truncating.
func RequestsPerSecond(load, serviceTimeMicros float64) int64 {
	return int64(load * 1e6 / serviceTimeMicros)
}

type estimateFunc func(ctx context.Context, cfg sim.TrialConfig) (float64, error)

func estimateP999(ctx context.Context, cfg sim.TrialConfig) (float64, error) {
	est, err := sim.EstimateTailLatency(ctx, cfg)
	return est.P999Micros, err
}

// Run sweeps cfg.Datapoints loads evenly spaced in (0, cfg.MaxLoad] and
// calls emit once per load, in increasing load order. The first error from
// the simulator or from emit stops the sweep.
func Run(ctx context.Context, cfg Config, emit func(Point) error) error {
	return run(ctx, cfg, estimateP999, emit)
}

// Collect is Run gathering every point into a slice.
func Collect(ctx context.Context, cfg Config) ([]Point, error) {
	var points []Point
	err := Run(ctx, cfg, func(p Point) error {
		points = append(points, p)
		return nil
	})
	return points, err
}

func run(ctx context.Context, cfg Config, estimate estimateFunc, emit func(Point) error) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid sweep config: %w", err)
	}
	dist, err := cfg.ServiceDistribution()
	if err != nil {
		return fmt.Errorf("invalid sweep config: %w", err)
	}
	if cfg.MaxServers > cfg.PeakServers {
		logrus.Warnf("cpus (%d) exceeds peak_cpus (%d); counts above %d run without burst capacity",
			cfg.MaxServers, cfg.PeakServers, cfg.PeakServers)
	}

	key := sim.NewSimulationKey(cfg.Seed)
	window := cfg.IntervalMicros * 1000

	for i := 1; i <= cfg.Datapoints; i++ {
		load := float64(i) / float64(cfg.Datapoints) * cfg.MaxLoad
		p := Point{Load: load, RequestsPerSecond: RequestsPerSecond(load, cfg.ServiceTimeMicros)}

		if p.RequestsPerSecond <= 0 || p.RequestsPerSecond > workload.NanosPerSecond {
			logrus.Warnf("load %.4f maps to %d requests/s; skipping simulation", load, p.RequestsPerSecond)
		} else {
			seed := int64(key.Derive(sim.SubsystemSweepPoint(i)))
			for servers := 1; servers <= cfg.MaxServers; servers++ {
				latency, err := estimate(ctx, sim.TrialConfig{
					Distribution:      dist,
					RequestsPerSecond: p.RequestsPerSecond,
					WindowLength:      window,
					BaselineCapacity:  servers,
					PeakCapacity:      max(cfg.PeakServers, servers),
					Iterations:        cfg.Iterations,
					Workers:           cfg.Workers,
					Seed:              seed,
				})
				if err != nil {
					return fmt.Errorf("load %.4f on %d servers: %w", load, servers, err)
				}
				p.Latencies = append(p.Latencies, latency)
				logrus.Debugf("load=%.4f rps=%d servers=%d p99.9=%.3fµs", load, p.RequestsPerSecond, servers, latency)

				if latency < cfg.SLAMicros {
					p.Servers = servers
					p.Efficiency = load / float64(servers)
					break
				}
			}
		}

		if err := emit(p); err != nil {
			return err
		}
	}
	return nil
}
