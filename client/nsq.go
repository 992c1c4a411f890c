package client

import (
	"context"

	"github.com/nsqio/go-nsq"
)

// nsqProducer publishes to an nsqd node. NSQ has no per-message keys or
// ordering, so group and keys are carried only in the harness's accounting.
type nsqProducer struct {
	producer *nsq.Producer
}

func dialNSQ(opts Options) (Producer, error) {
	config := nsq.NewConfig()
	if _, accessSecret := opts.accessPair(); accessSecret != "" {
		config.AuthSecret = accessSecret
	}
	if opts.UseTLS {
		config.TlsV1 = true
		config.TlsConfig = opts.tlsConfig()
	}
	producer, err := nsq.NewProducer(opts.Endpoints[0], config)
	if err != nil {
		return nil, err
	}
	// Fail fast at dial time rather than on the first send.
	if err := producer.Ping(); err != nil {
		producer.Stop()
		return nil, err
	}
	return &nsqProducer{producer: producer}, nil
}

// SendSync publishes msg and waits for the nsqd response frame.
func (n *nsqProducer) SendSync(_ context.Context, msg *Message) (*Receipt, error) {
	if err := n.producer.Publish(msg.Topic, msg.Body); err != nil {
		return nil, err
	}
	return &Receipt{}, nil
}

// Close stops the producer, flushing pending commands.
func (n *nsqProducer) Close() error {
	n.producer.Stop()
	return nil
}
