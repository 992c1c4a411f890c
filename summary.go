package mqbench

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// Percentiles is a list of percentiles to include in a latency
// distribution, e.g. 10.0, 50.0, 99.9.
type Percentiles []float64

// Logarithmic percentile scale.
var Logarithmic = Percentiles{
	10, 25, 50, 75, 90, 95, 99, 99.9, 99.99, 99.999,
}

// Summary holds the results of a Benchmark run.
type Summary struct {
	Connections      uint64
	RequestRate      uint64
	RequestTotal     uint64
	SuccessTotal     uint64
	ErrorTotal       uint64
	TimeElapsed      time.Duration
	SuccessHistogram *hdrhistogram.Histogram
}

// String returns a stringified version of the Summary.
func (s *Summary) String() string {
	return fmt.Sprintf(
		"\n{Connections: %d, RequestRate: %d, RequestTotal: %d, SuccessTotal: %d, ErrorTotal: %d, TimeElapsed: %s, Throughput: %.2f/s}",
		s.Connections, s.RequestRate, s.RequestTotal, s.SuccessTotal, s.ErrorTotal, s.TimeElapsed, s.Throughput())
}

// Throughput returns the overall request rate in requests per second.
func (s *Summary) Throughput() float64 {
	if s.TimeElapsed <= 0 {
		return 0
	}
	return float64(s.RequestTotal) / s.TimeElapsed.Seconds()
}

// merge the other Summary into this one.
func (s *Summary) merge(o *Summary) {
	if o.TimeElapsed > s.TimeElapsed {
		s.TimeElapsed = o.TimeElapsed
	}
	s.SuccessHistogram.Merge(o.SuccessHistogram)
	s.SuccessTotal += o.SuccessTotal
	s.ErrorTotal += o.ErrorTotal
	s.RequestTotal += o.RequestTotal
}

// GenerateLatencyDistribution generates a text file containing the
// specified latency distribution in a format plottable by
// http://hdrhistogram.github.io/HdrHistogram/plotFiles.html. Percentiles
// defaults to the Logarithmic scale if nil.
func (s *Summary) GenerateLatencyDistribution(percentiles Percentiles, file string) error {
	if percentiles == nil {
		percentiles = Logarithmic
	}
	if dir := filepath.Dir(file); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(file)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteString("Value    Percentile    TotalCount    1/(1-Percentile)\n\n"); err != nil {
		return err
	}
	total := s.SuccessHistogram.TotalCount()
	for _, percentile := range percentiles {
		value := float64(s.SuccessHistogram.ValueAtQuantile(percentile)) / 1000000
		oneByPercentile := float64(1)
		if percentile < 100 {
			oneByPercentile = 1 / (1 - (percentile / 100))
		}
		_, err := f.WriteString(fmt.Sprintf("%f    %f    %d    %f\n",
			value, percentile/100, total, oneByPercentile))
		if err != nil {
			return err
		}
	}
	return nil
}
