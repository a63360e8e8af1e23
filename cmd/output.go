package cmd

import (
	"fmt"
	"io"

	"github.com/docker/go-units"
	"gopkg.in/yaml.v3"

	"github.com/shenango/bench/sim"
	"github.com/shenango/bench/sim/sweep"
)

const sweepHeader = "Load, Requests/s, Efficiency, Cores"

// Output formats accepted by --format.
const (
	formatCSV  = "csv"
	formatYAML = "yaml"
)

// pooledSize renders the memory held by n int64 latency samples.
func pooledSize(n int64) string {
	return units.BytesSize(float64(n * 8))
}

func writeSweepHeader(w io.Writer) error {
	_, err := fmt.Fprintln(w, sweepHeader)
	return err
}

// writeSweepPoint prints one row; unsatisfied points print 0 efficiency and 0 cores.
func writeSweepPoint(w io.Writer, p sweep.Point) error {
	_, err := fmt.Fprintf(w, "%.4f, %d, %.4f, %d\n", p.Load, p.RequestsPerSecond, p.Efficiency, p.Servers)
	return err
}

func writeSweepYAML(w io.Writer, cfg sweep.Config, points []sweep.Point) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(struct {
		Config sweep.Config  `yaml:"config"`
		Points []sweep.Point `yaml:"points"`
	}{cfg, points})
}

// estimateReport is what `simnet estimate` prints.
type estimateReport struct {
	Distribution      string           `yaml:"distribution"`
	MeanNanos         int64            `yaml:"mean_ns"`
	RequestsPerSecond int64            `yaml:"requests_per_second"`
	WindowNanos       int64            `yaml:"window_ns"`
	Baseline          int              `yaml:"baseline"`
	Peak              int              `yaml:"peak"`
	Iterations        int              `yaml:"iterations"`
	Seed              int64            `yaml:"seed"`
	Estimate          sim.TailEstimate `yaml:"estimate"`
}

func newEstimateReport(cfg sim.TrialConfig, est sim.TailEstimate) estimateReport {
	return estimateReport{
		Distribution:      cfg.Distribution.Name(),
		MeanNanos:         cfg.Distribution.Mean(),
		RequestsPerSecond: cfg.RequestsPerSecond,
		WindowNanos:       cfg.WindowLength,
		Baseline:          cfg.BaselineCapacity,
		Peak:              cfg.PeakCapacity,
		Iterations:        cfg.Iterations,
		Seed:              cfg.Seed,
		Estimate:          est,
	}
}

func writeEstimateReport(w io.Writer, r estimateReport) error {
	data, err := yaml.Marshal(r)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
