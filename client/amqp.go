package client

import (
	"context"
	"fmt"
	"sync"

	"github.com/streadway/amqp"
)

// amqpProducer publishes to RabbitMQ through the default exchange, one
// durable queue per topic. Channels are not safe for concurrent publish,
// so sends are serialized.
type amqpProducer struct {
	conn *amqp.Connection
	mu   sync.Mutex
	ch   *amqp.Channel
}

func dialAMQP(opts Options) (Producer, error) {
	user, password := opts.accessPair()
	if user == "" {
		user, password = "guest", "guest"
	}

	var conn *amqp.Connection
	var err error
	if opts.UseTLS {
		url := fmt.Sprintf("amqps://%s:%s@%s/", user, password, opts.Endpoints[0])
		conn, err = amqp.DialTLS(url, opts.tlsConfig())
	} else {
		url := fmt.Sprintf("amqp://%s:%s@%s/", user, password, opts.Endpoints[0])
		conn, err = amqp.Dial(url)
	}
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	for _, topic := range opts.Topics {
		if _, err := ch.QueueDeclare(topic, true, false, false, false, nil); err != nil {
			conn.Close()
			return nil, fmt.Errorf("client: declaring queue %q: %w", topic, err)
		}
	}
	return &amqpProducer{conn: conn, ch: ch}, nil
}

// SendSync publishes msg to its topic's queue.
func (a *amqpProducer) SendSync(_ context.Context, msg *Message) (*Receipt, error) {
	publishing := amqp.Publishing{
		Body: msg.Body,
		Type: msg.Tag,
	}
	if len(msg.Keys) > 0 {
		publishing.MessageId = msg.Keys[0]
	}
	if msg.Group != "" {
		publishing.Headers = amqp.Table{"group": msg.Group}
	}

	a.mu.Lock()
	err := a.ch.Publish("", msg.Topic, false, false, publishing)
	a.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return &Receipt{MessageID: publishing.MessageId}, nil
}

// Close closes the channel and connection.
func (a *amqpProducer) Close() error {
	if err := a.ch.Close(); err != nil {
		a.conn.Close()
		return err
	}
	return a.conn.Close()
}
