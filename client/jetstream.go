package client

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

// jetstreamProducer publishes to NATS JetStream. Each topic is backed by a
// stream declared at dial time; the subject equals the topic name.
type jetstreamProducer struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

func dialJetStream(opts Options) (Producer, error) {
	natsOpts := []nats.Option{nats.Name("mqbench-" + uuid.NewString())}
	if accessKey, accessSecret := opts.accessPair(); accessKey != "" {
		natsOpts = append(natsOpts, nats.UserInfo(accessKey, accessSecret))
	}
	if opts.UseTLS {
		natsOpts = append(natsOpts, nats.Secure(opts.tlsConfig()))
	}

	conn, err := nats.Connect(strings.Join(opts.Endpoints, ","), natsOpts...)
	if err != nil {
		return nil, err
	}
	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, err
	}
	for _, topic := range opts.Topics {
		_, err := js.AddStream(&nats.StreamConfig{
			Name:     strings.ToUpper(topic),
			Subjects: []string{topic},
		})
		if err != nil && !strings.Contains(err.Error(), "already in use") {
			conn.Close()
			return nil, fmt.Errorf("client: declaring stream for %q: %w", topic, err)
		}
	}
	return &jetstreamProducer{conn: conn, js: js}, nil
}

// SendSync publishes msg and waits for the stream ack.
func (j *jetstreamProducer) SendSync(ctx context.Context, msg *Message) (*Receipt, error) {
	ack, err := j.js.Publish(msg.Topic, msg.Body, nats.Context(ctx))
	if err != nil {
		return nil, err
	}
	return &Receipt{
		MessageID: fmt.Sprintf("%s/%d", ack.Stream, ack.Sequence),
		Offset:    int64(ack.Sequence),
	}, nil
}

// Close drains and closes the NATS connection.
func (j *jetstreamProducer) Close() error {
	j.conn.Close()
	return nil
}
