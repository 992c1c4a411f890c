package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0902horn/mqbench/client"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 4096, cfg.Bench.BodySize)
	assert.Equal(t, uint64(1000), cfg.Bench.BurstSize)
	assert.Equal(t, 10, cfg.Bench.FifoConcurrency)
	assert.Equal(t, "fifo_topic", cfg.Broker.FifoTopic)
	assert.Equal(t, "non_fifo_topic", cfg.Broker.NonFifoTopic)
}

func TestLoadOverridesDefaults(t *testing.T) {
	file := filepath.Join(t.TempDir(), "mqbench.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
broker:
  driver: jetstream
  endpoints: ["nats-1:4222", "nats-2:4222"]
  access_key: ak
  access_secret: as
  use_tls: true
  fifo_topic: orders
bench:
  body_size: 512
  burst_size: 2000
`), 0o644))

	cfg, err := Load(file)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, client.DriverJetStream, cfg.Broker.Driver)
	assert.Equal(t, []string{"nats-1:4222", "nats-2:4222"}, cfg.Broker.Endpoints)
	assert.True(t, cfg.Broker.UseTLS)
	assert.Equal(t, "orders", cfg.Broker.FifoTopic)
	assert.Equal(t, 512, cfg.Bench.BodySize)
	assert.Equal(t, uint64(2000), cfg.Bench.BurstSize)
	// Untouched fields keep their defaults.
	assert.Equal(t, "non_fifo_topic", cfg.Broker.NonFifoTopic)
	assert.Equal(t, 10, cfg.Bench.FifoConcurrency)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestValidateRejectsBadValues(t *testing.T) {
	for name, mutate := range map[string]func(*Config){
		"no driver":       func(c *Config) { c.Broker.Driver = "" },
		"no endpoints":    func(c *Config) { c.Broker.Endpoints = nil },
		"no fifo topic":   func(c *Config) { c.Broker.FifoTopic = "" },
		"zero burst":      func(c *Config) { c.Bench.BurstSize = 0 },
		"zero conns":      func(c *Config) { c.Bench.Connections = 0 },
		"negative body":   func(c *Config) { c.Bench.BodySize = -1 },
		"zero fifo pool":  func(c *Config) { c.Bench.FifoConcurrency = 0 },
	} {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
