package requester

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/0902horn/mqbench"
	"github.com/0902horn/mqbench/client"
	"github.com/0902horn/mqbench/payload"
)

// drainTimeout bounds how long Teardown waits for outstanding asynchronous
// sends before closing the session.
const drainTimeout = 30 * time.Second

// FifoAsyncRequesterFactory implements RequesterFactory by creating a
// Requester which submits grouped messages through an ordered producer's
// asynchronous send path.
type FifoAsyncRequesterFactory struct {
	Connection  Connection
	Topic       string
	BodySize    int
	Concurrency int
	Logger      hclog.Logger

	// Producer optionally supplies a pre-built ordered session, used in
	// place of dialing Connection. Intended for tests.
	Producer *client.FifoProducer
}

// GetRequester returns a new Requester, called for each Benchmark connection.
func (f *FifoAsyncRequesterFactory) GetRequester(num uint64) mqbench.Requester {
	concurrency := f.Concurrency
	if concurrency <= 0 {
		concurrency = OrderingGroups
	}
	return &fifoAsyncRequester{
		conn:        f.Connection,
		topic:       f.Topic,
		bodySize:    f.BodySize,
		concurrency: concurrency,
		logger:      namedLogger(f.Logger, "fifo-async"),
		producer:    f.Producer,
	}
}

// fifoAsyncRequester submits one grouped message per request and returns
// without waiting for the broker ack; callbacks record failures. Teardown
// drains every outstanding send before releasing the session, so no
// callback can fire after the benchmark completes.
type fifoAsyncRequester struct {
	conn         Connection
	topic        string
	bodySize     int
	concurrency  int
	logger       hclog.Logger
	producer     *client.FifoProducer
	ownsProducer bool
	body         []byte
	index        uint64
	errorCount   uint64
}

// Setup prepares the Requester for benchmarking.
func (r *fifoAsyncRequester) Setup() error {
	if r.producer == nil {
		producer, err := client.DialFifo(r.conn.options(r.topic), r.concurrency)
		if err != nil {
			return err
		}
		r.producer = producer
		r.ownsProducer = true
	}
	r.body = payload.NewGenerator().Random(r.bodySize)
	r.index = 0
	atomic.StoreUint64(&r.errorCount, 0)
	return nil
}

// Request submits an asynchronous send and returns immediately.
func (r *fifoAsyncRequester) Request() error {
	i := r.index
	r.index++
	msg := &client.Message{
		Topic: r.topic,
		Tag:   TagAsync,
		Keys:  []string{"Key-0"},
		Group: OrderingGroup(i),
		Body:  r.body,
	}
	r.producer.SendAsync(context.Background(), msg, func(_ *client.Receipt, err error) {
		if err != nil {
			atomic.AddUint64(&r.errorCount, 1)
			r.logger.Error("failed to publish message", "topic", r.topic, "cause", err)
		}
	})
	return nil
}

// ErrorCount reports how many asynchronous sends failed. Only meaningful
// once the burst has been drained.
func (r *fifoAsyncRequester) ErrorCount() uint64 {
	return atomic.LoadUint64(&r.errorCount)
}

// Teardown drains outstanding sends and releases the session.
func (r *fifoAsyncRequester) Teardown() error {
	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()
	if err := r.producer.Flush(ctx); err != nil {
		r.logger.Error("timed out draining outstanding sends", "cause", err)
	}
	if errs := r.ErrorCount(); errs > 0 {
		r.logger.Warn("burst completed with failed sends", "topic", r.topic, "errors", errs)
	}
	if r.ownsProducer {
		if err := r.producer.Close(); err != nil {
			return err
		}
	}
	r.producer = nil
	r.body = nil
	return nil
}
