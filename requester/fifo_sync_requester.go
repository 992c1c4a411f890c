package requester

import (
	"context"

	"github.com/hashicorp/go-hclog"

	"github.com/0902horn/mqbench"
	"github.com/0902horn/mqbench/client"
	"github.com/0902horn/mqbench/payload"
)

// FifoSyncRequesterFactory implements RequesterFactory by creating a
// Requester which sends grouped messages synchronously to a FIFO topic.
type FifoSyncRequesterFactory struct {
	Connection Connection
	Topic      string
	BodySize   int
	Logger     hclog.Logger

	// Producer optionally supplies a pre-built producer session, used in
	// place of dialing Connection. Intended for tests.
	Producer client.Producer
}

// GetRequester returns a new Requester, called for each Benchmark connection.
func (f *FifoSyncRequesterFactory) GetRequester(num uint64) mqbench.Requester {
	return &fifoSyncRequester{
		conn:     f.Connection,
		topic:    f.Topic,
		bodySize: f.BodySize,
		logger:   namedLogger(f.Logger, "fifo-sync"),
		producer: f.Producer,
	}
}

// fifoSyncRequester sends one grouped message per request, cycling through
// the ordering groups round-robin. A failed send is logged and reported but
// never stops the burst.
type fifoSyncRequester struct {
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
func (r *fifoSyncRequester) Setup() error {
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
func (r *fifoSyncRequester) Request() error {
	i := r.index
	r.index++
	msg := &client.Message{
		Topic: r.topic,
		Tag:   TagSync,
		Keys:  []string{"Key-0"},
		Group: OrderingGroup(i),
		Body:  r.body,
	}
	if _, err := r.producer.SendSync(context.Background(), msg); err != nil {
		r.logger.Error("failed to publish message", "topic", r.topic, "cause", err)
		return err
	}
	return nil
}

// Teardown is called upon benchmark completion.
func (r *fifoSyncRequester) Teardown() error {
	if r.ownsProducer {
		if err := r.producer.Close(); err != nil {
			return err
		}
	}
	r.producer = nil
	r.body = nil
	return nil
}
