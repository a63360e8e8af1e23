// sim/metrics_utils.go
package sim

import (
	"bufio"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"
)

// TailPercent is the percentile the aggregator reports.
const TailPercent = 99.9

type IntOrFloat64 interface {
	int | int64 | float64
}

// TailRank returns the 0-indexed rank floor(n × p/100), capped at n-1.
func TailRank(n int, p float64) int {
	rank := int(float64(n) * p / 100.0)
	if rank >= n {
		rank = n - 1
	}
	return rank
}

// TailPercentile returns the sample at TailRank(len(sorted), p) of an
// ascending-sorted slice, converted from nanoseconds to microseconds.
// No interpolation: the result is always one of the observed samples.
func TailPercentile[T IntOrFloat64](sorted []T, p float64) float64 {
	if len(sorted) == 0 {
		panic("TailPercentile: no samples")
	}
	return float64(sorted[TailRank(len(sorted), p)]) / 1000
}

// LatencySummary holds descriptive statistics of pooled latencies, in microseconds.
type LatencySummary struct {
	Mean   float64 `yaml:"mean_us"`
	StdDev float64 `yaml:"stddev_us"`
	P50    float64 `yaml:"p50_us"`
	P99    float64 `yaml:"p99_us"`
	Max    float64 `yaml:"max_us"`
}

// Summarize computes a LatencySummary over ascending-sorted nanosecond samples.
// Quantiles use the empirical CDF, so P50/P99 may differ from TailPercentile
// by one rank.
func Summarize(sorted []int64) LatencySummary {
	if len(sorted) == 0 {
		return LatencySummary{}
	}
	micros := make([]float64, len(sorted))
	for i, v := range sorted {
		micros[i] = float64(v) / 1000
	}
	mean, std := stat.MeanStdDev(micros, nil)
	return LatencySummary{
		Mean:   mean,
		StdDev: std,
		P50:    stat.Quantile(0.5, stat.Empirical, micros, nil),
		P99:    stat.Quantile(0.99, stat.Empirical, micros, nil),
		Max:    micros[len(micros)-1],
	}
}

// SaveLatencies writes samples to fileName as a comma-separated list.
func SaveLatencies(data []int64, fileName string) (err error) {
	file, err := os.OpenFile(fileName, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("creating %s: %w", fileName, err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", fileName, closeErr)
		}
	}()

	writer := bufio.NewWriter(file)
	for _, v := range data {
		if _, err := fmt.Fprint(writer, v, ", "); err != nil {
			return fmt.Errorf("writing %s: %w", fileName, err)
		}
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flushing %s: %w", fileName, err)
	}

	logrus.Debugf("Wrote %d latency samples to '%s'", len(data), fileName)
	return nil
}
