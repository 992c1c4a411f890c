// Package config holds the harness configuration: broker connection
// settings, topic names, and burst parameters. Configuration is read once
// at process start and passed into the harness explicitly.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/0902horn/mqbench/client"
)

// Config holds all configuration for a benchmark run.
type Config struct {
	Broker Broker `yaml:"broker"`
	Bench  Bench  `yaml:"bench"`
	Log    Log    `yaml:"log"`
}

// Broker holds connection settings for the system under test.
type Broker struct {
	Driver       string   `yaml:"driver"`
	Endpoints    []string `yaml:"endpoints"`
	AccessKey    string   `yaml:"access_key"`
	AccessSecret string   `yaml:"access_secret"`
	UseTLS       bool     `yaml:"use_tls"`
	Namespace    string   `yaml:"namespace"`
	FifoTopic    string   `yaml:"fifo_topic"`
	NonFifoTopic string   `yaml:"non_fifo_topic"`
}

// Bench holds trial parameters.
type Bench struct {
	// BodySize is the message body length in bytes.
	BodySize int `yaml:"body_size"`

	// BurstSize is the number of messages sent per trial and connection.
	BurstSize uint64 `yaml:"burst_size"`

	// Connections is the number of concurrent producer sessions.
	Connections uint64 `yaml:"connections"`

	// RequestRate throttles sends per second per connection; 0 disables
	// throttling.
	RequestRate uint64 `yaml:"request_rate"`

	// FifoConcurrency is the ordered session's worker count.
	FifoConcurrency int `yaml:"fifo_concurrency"`

	// LatencyDir receives one latency distribution file per trial; empty
	// disables the files.
	LatencyDir string `yaml:"latency_dir"`
}

// Log holds logging configuration.
type Log struct {
	Level string `yaml:"level"` // trace, debug, info, warn, error
}

// Default returns a Config with defaults matching the reference benchmark
// setup: 4 KiB bodies, bursts of 1000, one connection, ten FIFO workers.
func Default() *Config {
	return &Config{
		Broker: Broker{
			Driver:       client.DriverKafka,
			Endpoints:    []string{"localhost:9092"},
			FifoTopic:    "fifo_topic",
			NonFifoTopic: "non_fifo_topic",
		},
		Bench: Bench{
			BodySize:        4096,
			BurstSize:       1000,
			Connections:     1,
			FifoConcurrency: 10,
		},
		Log: Log{Level: "info"},
	}
}

// Load reads a YAML file over the defaults.
func Load(file string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", file, err)
	}
	return cfg, nil
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.Broker.Driver == "" {
		return fmt.Errorf("config: broker driver is required")
	}
	if len(c.Broker.Endpoints) == 0 {
		return fmt.Errorf("config: at least one broker endpoint is required")
	}
	if c.Broker.FifoTopic == "" || c.Broker.NonFifoTopic == "" {
		return fmt.Errorf("config: fifo_topic and non_fifo_topic are required")
	}
	if c.Bench.BodySize < 0 {
		return fmt.Errorf("config: body_size must be non-negative")
	}
	if c.Bench.BurstSize == 0 {
		return fmt.Errorf("config: burst_size must be positive")
	}
	if c.Bench.Connections == 0 {
		return fmt.Errorf("config: connections must be positive")
	}
	if c.Bench.FifoConcurrency <= 0 {
		return fmt.Errorf("config: fifo_concurrency must be positive")
	}
	return nil
}
