// Command mqbench runs producer benchmarks against a message broker. It
// drives three send paths — synchronous ordered, asynchronous ordered, and
// synchronous unordered — and reports throughput, latency, and error
// counts per trial.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/0902horn/mqbench"
	"github.com/0902horn/mqbench/config"
	"github.com/0902horn/mqbench/requester"
)

var allPaths = []string{"fifo-sync", "fifo-async", "standard"}

type pathResult struct {
	Timestamp     string  `json:"timestamp"`
	Path          string  `json:"path"`
	Driver        string  `json:"driver"`
	Topic         string  `json:"topic"`
	BodyBytes     int     `json:"body_bytes"`
	Connections   uint64  `json:"connections"`
	BurstSize     uint64  `json:"burst_size"`
	Sent          uint64  `json:"sent"`
	Errors        uint64  `json:"errors"`
	DurationMS    int64   `json:"duration_ms"`
	ThroughputMPS float64 `json:"throughput_mps"`
}

func main() {
	configFlag := flag.String("config", "", "YAML configuration file")
	pathFlag := flag.String("path", "all", "Send path to run: fifo-sync|fifo-async|standard|all")
	listFlag := flag.Bool("list-paths", false, "Print supported send paths and exit")
	driverFlag := flag.String("driver", "", "Override broker driver")
	endpointsFlag := flag.String("endpoints", "", "Override comma-separated broker endpoints")
	accessKeyFlag := flag.String("access-key", "", "Override broker access key")
	accessSecretFlag := flag.String("access-secret", "", "Override broker access secret")
	tlsFlag := flag.Bool("tls", false, "Override: enable TLS")
	fifoTopicFlag := flag.String("fifo-topic", "", "Override FIFO topic name")
	nonFifoTopicFlag := flag.String("non-fifo-topic", "", "Override non-FIFO topic name")
	bodySizeFlag := flag.Int("body-size", 0, "Override message body size in bytes")
	burstSizeFlag := flag.Uint64("burst-size", 0, "Override messages per burst")
	connectionsFlag := flag.Uint64("connections", 0, "Override concurrent connections")
	rateFlag := flag.Uint64("rate", 0, "Override requests per second per connection (0 = unthrottled)")
	jsonOutFlag := flag.String("json-out", "", "Optional file to append one JSON line per trial")
	logLevelFlag := flag.String("log-level", "", "Override log level")
	flag.Parse()

	if *listFlag {
		for _, p := range allPaths {
			fmt.Println(p)
		}
		return
	}

	cfg := config.Default()
	if *configFlag != "" {
		loaded, err := config.Load(*configFlag)
		if err != nil {
			exitErr(err)
		}
		cfg = loaded
	}
	if *driverFlag != "" {
		cfg.Broker.Driver = *driverFlag
	}
	if *endpointsFlag != "" {
		cfg.Broker.Endpoints = strings.Split(*endpointsFlag, ",")
	}
	if *accessKeyFlag != "" {
		cfg.Broker.AccessKey = *accessKeyFlag
	}
	if *accessSecretFlag != "" {
		cfg.Broker.AccessSecret = *accessSecretFlag
	}
	if *tlsFlag {
		cfg.Broker.UseTLS = true
	}
	if *fifoTopicFlag != "" {
		cfg.Broker.FifoTopic = *fifoTopicFlag
	}
	if *nonFifoTopicFlag != "" {
		cfg.Broker.NonFifoTopic = *nonFifoTopicFlag
	}
	if *bodySizeFlag > 0 {
		cfg.Bench.BodySize = *bodySizeFlag
	}
	if *burstSizeFlag > 0 {
		cfg.Bench.BurstSize = *burstSizeFlag
	}
	if *connectionsFlag > 0 {
		cfg.Bench.Connections = *connectionsFlag
	}
	if *rateFlag > 0 {
		cfg.Bench.RequestRate = *rateFlag
	}
	if *logLevelFlag != "" {
		cfg.Log.Level = *logLevelFlag
	}
	if err := cfg.Validate(); err != nil {
		exitErr(err)
	}

	logger := hclog.New(&hclog.LoggerOptions{
		Name:  "mqbench",
		Level: hclog.LevelFromString(cfg.Log.Level),
	})

	paths := allPaths
	if *pathFlag != "all" {
		paths = []string{*pathFlag}
	}
	for _, path := range paths {
		if err := runPath(path, cfg, logger, *jsonOutFlag); err != nil {
			exitErr(err)
		}
	}
}

func runPath(path string, cfg *config.Config, logger hclog.Logger, jsonOut string) error {
	conn := requester.Connection{
		Driver:       cfg.Broker.Driver,
		Endpoints:    cfg.Broker.Endpoints,
		AccessKey:    cfg.Broker.AccessKey,
		AccessSecret: cfg.Broker.AccessSecret,
		UseTLS:       cfg.Broker.UseTLS,
		Namespace:    cfg.Broker.Namespace,
	}

	var factory mqbench.RequesterFactory
	var topic string
	switch path {
	case "fifo-sync":
		topic = cfg.Broker.FifoTopic
		factory = &requester.FifoSyncRequesterFactory{
			Connection: conn,
			Topic:      topic,
			BodySize:   cfg.Bench.BodySize,
			Logger:     logger,
		}
	case "fifo-async":
		topic = cfg.Broker.FifoTopic
		factory = &requester.FifoAsyncRequesterFactory{
			Connection:  conn,
			Topic:       topic,
			BodySize:    cfg.Bench.BodySize,
			Concurrency: cfg.Bench.FifoConcurrency,
			Logger:      logger,
		}
	case "standard":
		topic = cfg.Broker.NonFifoTopic
		factory = &requester.StandardRequesterFactory{
			Connection: conn,
			Topic:      topic,
			BodySize:   cfg.Bench.BodySize,
			Logger:     logger,
		}
	default:
		return fmt.Errorf("unknown send path %q (use -list-paths)", path)
	}

	logger.Info("starting trial", "path", path, "driver", cfg.Broker.Driver,
		"topic", topic, "burst", cfg.Bench.BurstSize, "connections", cfg.Bench.Connections)

	benchmark := mqbench.NewBenchmark(factory, cfg.Bench.RequestRate,
		cfg.Bench.Connections, cfg.Bench.BurstSize)
	summary, err := benchmark.Run()
	if err != nil {
		return fmt.Errorf("trial %s: %w", path, err)
	}

	fmt.Println(summary)
	if cfg.Bench.LatencyDir != "" {
		file := filepath.Join(cfg.Bench.LatencyDir, path+".txt")
		if err := summary.GenerateLatencyDistribution(nil, file); err != nil {
			return err
		}
		logger.Info("wrote latency distribution", "file", file)
	}
	if jsonOut != "" {
		if err := appendResult(jsonOut, path, cfg, summary); err != nil {
			return err
		}
	}
	return nil
}

func appendResult(file, path string, cfg *config.Config, summary *mqbench.Summary) error {
	res := pathResult{
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		Path:          path,
		Driver:        cfg.Broker.Driver,
		Topic:         cfg.Broker.FifoTopic,
		BodyBytes:     cfg.Bench.BodySize,
		Connections:   summary.Connections,
		BurstSize:     cfg.Bench.BurstSize,
		Sent:          summary.RequestTotal,
		Errors:        summary.ErrorTotal,
		DurationMS:    summary.TimeElapsed.Milliseconds(),
		ThroughputMPS: summary.Throughput(),
	}
	if path == "standard" {
		res.Topic = cfg.Broker.NonFifoTopic
	}
	line, err := json.Marshal(res)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.Write(append(line, '\n'))
	return err
}

func exitErr(err error) {
	fmt.Fprintln(os.Stderr, "mqbench:", err)
	os.Exit(1)
}
