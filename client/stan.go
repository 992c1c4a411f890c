package client

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/nats-io/stan.go"
)

const defaultSTANCluster = "test-cluster"

// stanProducer publishes to NATS Streaming. The cluster ID comes from
// Options.Namespace.
type stanProducer struct {
	conn stan.Conn
}

func dialSTAN(opts Options) (Producer, error) {
	clusterID := opts.Namespace
	if clusterID == "" {
		clusterID = defaultSTANCluster
	}
	conn, err := stan.Connect(clusterID, "mqbench-"+uuid.NewString(),
		stan.NatsURL(strings.Join(opts.Endpoints, ",")))
	if err != nil {
		return nil, err
	}
	return &stanProducer{conn: conn}, nil
}

// SendSync publishes msg and waits for the cluster ack.
func (s *stanProducer) SendSync(_ context.Context, msg *Message) (*Receipt, error) {
	if err := s.conn.Publish(msg.Topic, msg.Body); err != nil {
		return nil, err
	}
	return &Receipt{}, nil
}

// Close closes the streaming connection.
func (s *stanProducer) Close() error {
	return s.conn.Close()
}
