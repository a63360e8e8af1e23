package sweep

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/shenango/bench/sim/workload"
)

// Config drives a capacity sweep. Times are in microseconds, as on the
// command line; the sweep converts to nanoseconds for the simulator.
type Config struct {
	PeakServers       int     `yaml:"peak_cpus"`    // total servers including burst capacity
	MaxServers        int     `yaml:"cpus"`         // largest baseline server count to try
	MaxLoad           float64 `yaml:"load"`         // servers' worth of offered load at the last point
	ServiceTimeMicros float64 `yaml:"service_time"` // mean service time
	SLAMicros         float64 `yaml:"sla"`          // p99.9 target
	IntervalMicros    int64   `yaml:"interval"`     // simulated window length
	Datapoints        int     `yaml:"datapoints"`   // number of load points
	Iterations        int     `yaml:"iterations"`   // trials per estimate
	Distribution      string  `yaml:"distribution"` // service-time law name
	Seed              int64   `yaml:"seed"`
	Workers           int     `yaml:"workers"` // <= 0 means GOMAXPROCS
}

// DefaultConfig returns the stock sweep: up to 10 baseline servers bursting
// to 16, 8 servers' worth of load at 10µs exponential service, 100µs SLA.
func DefaultConfig() Config {
	return Config{
		PeakServers:       16,
		MaxServers:        10,
		MaxLoad:           8.0,
		ServiceTimeMicros: 10.0,
		SLAMicros:         100.0,
		IntervalMicros:    1000,
		Datapoints:        100,
		Iterations:        50000,
		Distribution:      "exponential",
		Seed:              42,
	}
}

// Validate checks every field the sweep depends on.
func (c Config) Validate() error {
	if c.PeakServers < 1 {
		return fmt.Errorf("peak_cpus must be >= 1, got %d", c.PeakServers)
	}
	if c.MaxServers < 1 {
		return fmt.Errorf("cpus must be >= 1, got %d", c.MaxServers)
	}
	if !(c.MaxLoad > 0) {
		return fmt.Errorf("load must be > 0, got %v", c.MaxLoad)
	}
	if !(c.ServiceTimeMicros > 0) {
		return fmt.Errorf("service_time must be > 0, got %v", c.ServiceTimeMicros)
	}
	if !(c.SLAMicros > 0) {
		return fmt.Errorf("sla must be > 0, got %v", c.SLAMicros)
	}
	if c.IntervalMicros < 1 {
		return fmt.Errorf("interval must be >= 1, got %d", c.IntervalMicros)
	}
	if c.Datapoints < 1 {
		return fmt.Errorf("datapoints must be >= 1, got %d", c.Datapoints)
	}
	if c.Iterations < 1 {
		return fmt.Errorf("iterations must be >= 1, got %d", c.Iterations)
	}
	if _, err := workload.ParseDistributionKind(c.Distribution); err != nil {
		return err
	}
	return nil
}

// ServiceDistribution returns the configured service-time law with its mean
// converted to nanoseconds.
func (c Config) ServiceDistribution() (workload.Distribution, error) {
	kind, err := workload.ParseDistributionKind(c.Distribution)
	if err != nil {
		return workload.Distribution{}, err
	}
	return workload.NewDistribution(kind, 1000*c.ServiceTimeMicros)
}

// LoadConfig reads a YAML sweep config from path on top of base.
// Keys absent from the file keep their base values; unknown keys are errors.
func LoadConfig(path string, base Config) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("reading sweep config: %w", err)
	}
	cfg := base
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return base, fmt.Errorf("parsing sweep config %s: %w", path, err)
	}
	return cfg, nil
}
