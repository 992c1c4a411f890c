package requester

import (
	"context"

	"github.com/hashicorp/go-hclog"

	"github.com/0902horn/mqbench"
	"github.com/0902horn/mqbench/client"
	"github.com/0902horn/mqbench/payload"
)

// StandardRequesterFactory implements RequesterFactory by creating a
// Requester which sends unordered messages synchronously, each with a
// globally unique key and no ordering group.
type StandardRequesterFactory struct {
	Connection Connection
	Topic      string
	BodySize   int
	Logger     hclog.Logger

	// Producer optionally supplies a pre-built producer session, used in
	// place of dialing Connection. Intended for tests.
	Producer client.Producer
}

// GetRequester returns a new Requester, called for each Benchmark connection.
func (f *StandardRequesterFactory) GetRequester(num uint64) mqbench.Requester {
	return &standardRequester{
		conn:     f.Connection,
		topic:    f.Topic,
		bodySize: f.BodySize,
		logger:   namedLogger(f.Logger, "standard"),
		producer: f.Producer,
	}
}

type standardRequester struct {
	conn         Connection
	topic        string
	bodySize     int
	logger       hclog.Logger
	producer     client.Producer
	ownsProducer bool
	body         []byte
	index        uint64
}

// Setup prepares the Requester for benchmarking.
func (r *standardRequester) Setup() error {
	if r.producer == nil {
		producer, err := client.Dial(r.conn.options(r.topic))
		if err != nil {
			return err
		}
		r.producer = producer
		r.ownsProducer = true
	}
	r.body = payload.NewGenerator().Random(r.bodySize)
	r.index = 0
	return nil
}

// Request performs a synchronous request to the system under test.
func (r *standardRequester) Request() error {
	i := r.index
	r.index++
	msg := &client.Message{
		Topic: r.topic,
		Tag:   TagSync,
		Keys:  []string{UniqueKey(i)},
		Body:  r.body,
	}
	if _, err := r.producer.SendSync(context.Background(), msg); err != nil {
		r.logger.Error("failed to publish message", "topic", r.topic, "cause", err)
		return err
	}
	return nil
}

// Teardown is called upon benchmark completion.
func (r *standardRequester) Teardown() error {
	if r.ownsProducer {
		if err := r.producer.Close(); err != nil {
			return err
		}
	}
	r.producer = nil
	r.body = nil
	return nil
}
