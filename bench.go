// Package mqbench provides a harness for benchmarking message-producer
// clients. It issues fixed-size bursts of requests against a Requester,
// measures per-request latency with HDR histograms, and counts failed
// requests without aborting the burst.
package mqbench

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"golang.org/x/time/rate"
)

const (
	maxRecordableLatencyNS = 300000000000
	sigFigs                = 5
)

// Requester synchronously issues requests to the system under test.
type Requester interface {
	// Setup prepares the Requester for benchmarking.
	Setup() error

	// Request performs a synchronous request to the system under test.
	Request() error

	// Teardown is called upon benchmark completion.
	Teardown() error
}

// RequesterFactory creates Requesters, one per benchmark connection.
type RequesterFactory interface {
	// GetRequester returns a new Requester, called once for each
	// Benchmark connection.
	GetRequester(num uint64) Requester
}

// Benchmark performs a system benchmark by issuing a burst of requests on
// one or more connections and computing a summary of the results.
type Benchmark struct {
	connections uint64
	benchmarks  []*connectionBenchmark
}

// NewBenchmark creates a Benchmark which runs a burst of the given number
// of requests on each connection. requestRate specifies the number of
// requests per second to issue on each connection; 0 disables throttling
// and issues requests back-to-back.
func NewBenchmark(factory RequesterFactory, requestRate, connections, requests uint64) *Benchmark {
	if connections == 0 {
		connections = 1
	}
	benchmarks := make([]*connectionBenchmark, connections)
	for i := uint64(0); i < connections; i++ {
		benchmarks[i] = newConnectionBenchmark(factory.GetRequester(i), requestRate, requests)
	}
	return &Benchmark{connections: connections, benchmarks: benchmarks}
}

// Run the benchmark and return a summary of the results. An error is
// returned if any connection failed to set up or tear down; request errors
// are counted in the Summary instead of failing the run.
func (b *Benchmark) Run() (*Summary, error) {
	var (
		start   = make(chan struct{})
		results = make(chan *result, b.connections)
		wg      sync.WaitGroup
	)

	for _, benchmark := range b.benchmarks {
		if err := benchmark.setup(); err != nil {
			return nil, err
		}
	}
	for _, benchmark := range b.benchmarks {
		wg.Add(1)
		go func(c *connectionBenchmark) {
			defer wg.Done()
			<-start
			results <- c.run()
		}(benchmark)
	}

	close(start)
	wg.Wait()
	close(results)

	var summary *Summary
	for res := range results {
		if res.err != nil {
			return nil, res.err
		}
		if summary == nil {
			summary = res.summary
		} else {
			summary.merge(res.summary)
		}
	}
	summary.Connections = b.connections

	for _, benchmark := range b.benchmarks {
		if err := benchmark.teardown(); err != nil {
			return nil, err
		}
	}
	return summary, nil
}

type result struct {
	err     error
	summary *Summary
}

// connectionBenchmark performs a single-connection benchmark: one burst of
// requests issued sequentially from one goroutine.
type connectionBenchmark struct {
	requester   Requester
	requestRate uint64
	requests    uint64
	histogram   *hdrhistogram.Histogram
	errors      uint64
	elapsed     time.Duration
}

func newConnectionBenchmark(requester Requester, requestRate, requests uint64) *connectionBenchmark {
	return &connectionBenchmark{
		requester:   requester,
		requestRate: requestRate,
		requests:    requests,
		histogram:   hdrhistogram.New(1, maxRecordableLatencyNS, sigFigs),
	}
}

func (c *connectionBenchmark) setup() error {
	c.histogram.Reset()
	c.errors = 0
	return c.requester.Setup()
}

func (c *connectionBenchmark) teardown() error {
	return c.requester.Teardown()
}

// run issues the burst. A request error never halts the burst; it is
// counted and the next request is issued.
func (c *connectionBenchmark) run() *result {
	var limiter *rate.Limiter
	if c.requestRate > 0 {
		limiter = rate.NewLimiter(rate.Limit(c.requestRate), 1)
	}

	start := time.Now()
	for i := uint64(0); i < c.requests; i++ {
		if limiter != nil {
			if err := limiter.Wait(context.Background()); err != nil {
				return &result{err: err}
			}
		}
		before := time.Now()
		err := c.requester.Request()
		latency := time.Since(before).Nanoseconds()
		if err != nil {
			c.errors++
			continue
		}
		if err := c.histogram.RecordValue(latency); err != nil {
			return &result{err: fmt.Errorf("recording latency %d: %w", latency, err)}
		}
	}
	c.elapsed = time.Since(start)
	return &result{summary: c.summarize()}
}

func (c *connectionBenchmark) summarize() *Summary {
	return &Summary{
		Connections:      1,
		RequestRate:      c.requestRate,
		RequestTotal:     c.requests,
		ErrorTotal:       c.errors,
		SuccessTotal:     c.requests - c.errors,
		TimeElapsed:      c.elapsed,
		SuccessHistogram: hdrhistogram.Import(c.histogram.Export()),
	}
}
