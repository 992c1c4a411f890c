package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialUnknownDriver(t *testing.T) {
	_, err := Dial(Options{
		Driver:    "carrier-pigeon",
		Endpoints: []string{"localhost:1234"},
		Topics:    []string{"t"},
	})
	require.ErrorIs(t, err, ErrUnknownDriver)
}

func TestDialRequiresEndpointsAndTopics(t *testing.T) {
	_, err := Dial(Options{Driver: DriverKafka, Topics: []string{"t"}})
	require.Error(t, err)

	_, err = Dial(Options{Driver: DriverKafka, Endpoints: []string{"localhost:9092"}})
	require.Error(t, err)
}

func TestStaticCredentialsProvider(t *testing.T) {
	p := NewStaticCredentialsProvider("ak", "secret")
	key, secret := p.Credentials()
	assert.Equal(t, "ak", key)
	assert.Equal(t, "secret", secret)
}

func TestOptionsAccessPair(t *testing.T) {
	opts := Options{}
	key, secret := opts.accessPair()
	assert.Empty(t, key)
	assert.Empty(t, secret)

	opts.Credentials = NewStaticCredentialsProvider("", "")
	key, secret = opts.accessPair()
	assert.Empty(t, key)
	assert.Empty(t, secret)
}

func TestOptionsTLSConfig(t *testing.T) {
	opts := Options{}
	assert.Nil(t, opts.tlsConfig())

	opts.UseTLS = true
	require.NotNil(t, opts.tlsConfig())
}

func TestSplitEndpoint(t *testing.T) {
	host, port, err := splitEndpoint("broker:5553", 5552)
	require.NoError(t, err)
	assert.Equal(t, "broker", host)
	assert.Equal(t, 5553, port)

	host, port, err = splitEndpoint("broker", 5552)
	require.NoError(t, err)
	assert.Equal(t, "broker", host)
	assert.Equal(t, 5552, port)
}
