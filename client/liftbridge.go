package client

import (
	"context"
	"errors"
	"fmt"

	lift "github.com/liftbridge-io/go-liftbridge/v2"
)

// liftbridgeProducer publishes to Liftbridge streams. Each topic maps to a
// stream named "<topic>-stream"; group keys partition by key so per-group
// order is preserved.
type liftbridgeProducer struct {
	client lift.Client
}

func dialLiftbridge(opts Options) (Producer, error) {
	liftClient, err := lift.Connect(opts.Endpoints)
	if err != nil {
		return nil, err
	}
	for _, topic := range opts.Topics {
		err := liftClient.CreateStream(context.Background(), topic, streamName(topic))
		if err != nil && !errors.Is(err, lift.ErrStreamExists) {
			liftClient.Close()
			return nil, fmt.Errorf("client: creating stream for %q: %w", topic, err)
		}
	}
	return &liftbridgeProducer{client: liftClient}, nil
}

func streamName(topic string) string {
	return topic + "-stream"
}

// SendSync publishes msg and waits for the configured ack.
func (l *liftbridgeProducer) SendSync(ctx context.Context, msg *Message) (*Receipt, error) {
	msgOpts := []lift.MessageOption{lift.AckPolicyAll()}
	if msg.Group != "" {
		msgOpts = append(msgOpts, lift.Key([]byte(msg.Group)), lift.PartitionByKey())
	}
	ack, err := l.client.Publish(ctx, streamName(msg.Topic), msg.Body, msgOpts...)
	if err != nil {
		return nil, err
	}
	return &Receipt{
		MessageID: ack.CorrelationID(),
		Offset:    ack.Offset(),
	}, nil
}

// Close closes the Liftbridge client.
func (l *liftbridgeProducer) Close() error {
	return l.client.Close()
}
