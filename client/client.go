// Package client provides a thin producer-client abstraction over a number
// of message brokers. A Producer sends one message at a time and reports a
// receipt; a FifoProducer layers asynchronous, per-group ordered delivery
// on top of any Producer. The harness treats this package as the boundary
// to the system under test.
package client

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
)

// Driver names accepted by Dial.
const (
	DriverKafka      = "kafka"
	DriverJetStream  = "jetstream"
	DriverSTAN       = "stan"
	DriverRMQStream  = "rmqstream"
	DriverLiftbridge = "liftbridge"
	DriverNSQ        = "nsq"
	DriverAMQP       = "amqp"
	DriverRedis      = "redis"
	DriverCassandra  = "cassandra"
)

var (
	// ErrUnknownDriver is returned by Dial for an unrecognized driver name.
	ErrUnknownDriver = errors.New("client: unknown driver")

	// ErrUnknownTopic is returned when a message names a topic the
	// producer was not built with.
	ErrUnknownTopic = errors.New("client: topic not declared at dial time")

	// ErrClosed is reported for sends submitted after Close.
	ErrClosed = errors.New("client: producer is closed")
)

// Message is an outbound message. It is built fresh per send and not
// retained by the producer after the send call returns; Body may alias a
// shared buffer and must not be mutated.
type Message struct {
	Topic string
	Tag   string
	Keys  []string
	Group string
	Body  []byte
}

// Receipt acknowledges a successful send. Fields are best effort; brokers
// that do not expose an ID or offset leave them zero.
type Receipt struct {
	MessageID string
	Partition int32
	Offset    int64
}

// Callback receives the outcome of an asynchronous send.
type Callback func(*Receipt, error)

// Producer sends messages to a broker. Implementations are safe for
// concurrent SendSync calls. Close releases the underlying connection;
// no sends may be issued after Close.
type Producer interface {
	SendSync(ctx context.Context, msg *Message) (*Receipt, error)
	Close() error
}

// Options configures a producer session.
type Options struct {
	// Driver selects the broker backend, one of the Driver* constants.
	Driver string

	// Endpoints lists broker addresses as host:port. Drivers that accept
	// a single address use the first entry.
	Endpoints []string

	// Credentials supplies the access key/secret pair. Nil or an empty
	// pair means anonymous access.
	Credentials CredentialsProvider

	// UseTLS enables TLS on drivers that support it.
	UseTLS bool

	// Topics lists every topic this session will publish to. Drivers
	// with explicit stream management declare them at dial time.
	Topics []string

	// Namespace is driver specific: the STAN cluster ID, the Cassandra
	// keyspace. Empty selects the driver's default.
	Namespace string
}

func (o *Options) validate() error {
	if len(o.Endpoints) == 0 {
		return errors.New("client: at least one endpoint is required")
	}
	if len(o.Topics) == 0 {
		return errors.New("client: at least one topic is required")
	}
	return nil
}

// accessPair unwraps the credential provider, mapping nil to anonymous.
func (o *Options) accessPair() (string, string) {
	if o.Credentials == nil {
		return "", ""
	}
	return o.Credentials.Credentials()
}

func (o *Options) tlsConfig() *tls.Config {
	if !o.UseTLS {
		return nil
	}
	return &tls.Config{MinVersion: tls.VersionTLS12}
}

// Dial establishes a producer session against the configured broker. A
// connection failure here is fatal to the caller; there is no retry at
// this layer.
func Dial(opts Options) (Producer, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	switch opts.Driver {
	case DriverKafka:
		return dialKafka(opts)
	case DriverJetStream:
		return dialJetStream(opts)
	case DriverSTAN:
		return dialSTAN(opts)
	case DriverRMQStream:
		return dialRMQStream(opts)
	case DriverLiftbridge:
		return dialLiftbridge(opts)
	case DriverNSQ:
		return dialNSQ(opts)
	case DriverAMQP:
		return dialAMQP(opts)
	case DriverRedis:
		return dialRedis(opts)
	case DriverCassandra:
		return dialCassandra(opts)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, opts.Driver)
	}
}

// DialFifo establishes an ordered producer session: a Producer wrapped in a
// FifoProducer with the given worker concurrency.
func DialFifo(opts Options, concurrency int) (*FifoProducer, error) {
	p, err := Dial(opts)
	if err != nil {
		return nil, err
	}
	return NewFifoProducer(p, concurrency), nil
}
