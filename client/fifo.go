package client

import (
	"context"
	"hash/fnv"
	"sync"
)

// fifoQueueDepth bounds each worker's backlog. A full queue blocks
// SendAsync, applying backpressure to the submitter.
const fifoQueueDepth = 1024

type fifoSend struct {
	ctx context.Context
	msg *Message
	cb  Callback
}

// FifoProducer sends messages asynchronously while preserving per-group
// order. Messages sharing a Group hash to the same worker goroutine, which
// issues them sequentially through the wrapped Producer; messages with
// distinct groups may be reordered relative to each other.
//
// Close drains every in-flight send and invokes its callback before
// releasing the wrapped producer, so callers get a hard completion barrier
// at teardown.
type FifoProducer struct {
	producer Producer
	workers  []chan *fifoSend
	wg       sync.WaitGroup
	pending  sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// NewFifoProducer wraps p with concurrency ordered workers. Concurrency
// values below 1 are treated as 1. The FifoProducer takes ownership of p;
// closing the FifoProducer closes p.
func NewFifoProducer(p Producer, concurrency int) *FifoProducer {
	if concurrency < 1 {
		concurrency = 1
	}
	f := &FifoProducer{
		producer: p,
		workers:  make([]chan *fifoSend, concurrency),
	}
	for i := range f.workers {
		ch := make(chan *fifoSend, fifoQueueDepth)
		f.workers[i] = ch
		f.wg.Add(1)
		go f.run(ch)
	}
	return f
}

func (f *FifoProducer) run(ch chan *fifoSend) {
	defer f.wg.Done()
	for s := range ch {
		receipt, err := f.producer.SendSync(s.ctx, s.msg)
		if s.cb != nil {
			s.cb(receipt, err)
		}
		f.pending.Done()
	}
}

// SendAsync submits msg and returns immediately. The callback runs on the
// worker goroutine owning msg's group once the underlying send completes.
// After Close, the callback is invoked inline with ErrClosed.
func (f *FifoProducer) SendAsync(ctx context.Context, msg *Message, cb Callback) {
	f.mu.RLock()
	if f.closed {
		f.mu.RUnlock()
		if cb != nil {
			cb(nil, ErrClosed)
		}
		return
	}
	f.pending.Add(1)
	f.workers[f.partition(msg.Group)] <- &fifoSend{ctx: ctx, msg: msg, cb: cb}
	f.mu.RUnlock()
}

func (f *FifoProducer) partition(group string) int {
	h := fnv.New32a()
	h.Write([]byte(group))
	return int(h.Sum32() % uint32(len(f.workers)))
}

// Flush blocks until every send submitted before the call has completed
// and had its callback invoked, or until ctx is done.
func (f *FifoProducer) Flush(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		f.pending.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close drains all outstanding sends, stops the workers, and closes the
// wrapped producer. Close is idempotent.
func (f *FifoProducer) Close() error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return nil
	}
	f.closed = true
	f.mu.Unlock()

	for _, ch := range f.workers {
		close(ch)
	}
	f.wg.Wait()
	return f.producer.Close()
}
