package client

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"sync"

	amqp10 "github.com/rabbitmq/rabbitmq-stream-go-client/pkg/amqp"
	"github.com/rabbitmq/rabbitmq-stream-go-client/pkg/message"
	"github.com/rabbitmq/rabbitmq-stream-go-client/pkg/stream"
)

const defaultRMQStreamPort = 5552

// rmqStreamProducer publishes to RabbitMQ streams, one stream producer per
// declared topic. Sends are serialized; the stream client's batching is
// not safe for concurrent BatchSend on one producer.
type rmqStreamProducer struct {
	env       *stream.Environment
	mu        sync.Mutex
	producers map[string]*stream.Producer
}

func dialRMQStream(opts Options) (Producer, error) {
	host, port, err := splitEndpoint(opts.Endpoints[0], defaultRMQStreamPort)
	if err != nil {
		return nil, err
	}
	user, password := opts.accessPair()
	if user == "" {
		user, password = "guest", "guest"
	}
	env, err := stream.NewEnvironment(
		stream.NewEnvironmentOptions().
			SetHost(host).
			SetPort(port).
			SetUser(user).
			SetPassword(password))
	if err != nil {
		return nil, err
	}

	producers := make(map[string]*stream.Producer, len(opts.Topics))
	for _, topic := range opts.Topics {
		err = env.DeclareStream(topic,
			&stream.StreamOptions{
				MaxLengthBytes: stream.ByteCapacity{}.GB(2),
			},
		)
		if err != nil {
			env.Close()
			return nil, fmt.Errorf("client: declaring stream %q: %w", topic, err)
		}
		producer, err := env.NewProducer(topic, stream.NewProducerOptions().SetBatchSize(1))
		if err != nil {
			env.Close()
			return nil, err
		}
		producers[topic] = producer
	}
	return &rmqStreamProducer{env: env, producers: producers}, nil
}

// SendSync publishes msg to its topic's stream.
func (r *rmqStreamProducer) SendSync(_ context.Context, msg *Message) (*Receipt, error) {
	producer, ok := r.producers[msg.Topic]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTopic, msg.Topic)
	}
	r.mu.Lock()
	err := producer.BatchSend([]message.StreamMessage{amqp10.NewMessage(msg.Body)})
	r.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return &Receipt{}, nil
}

// Close closes every stream producer and the environment.
func (r *rmqStreamProducer) Close() error {
	var firstErr error
	for _, producer := range r.producers {
		if err := producer.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if err := r.env.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// splitEndpoint parses host:port, falling back to the driver default port
// when the endpoint carries none.
func splitEndpoint(endpoint string, defaultPort int) (string, int, error) {
	host, portStr, err := net.SplitHostPort(endpoint)
	if err != nil {
		return endpoint, defaultPort, nil
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, fmt.Errorf("client: invalid port in endpoint %q: %w", endpoint, err)
	}
	return host, port, nil
}
