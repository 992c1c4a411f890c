package client

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProducer records every send, optionally failing selected messages.
type fakeProducer struct {
	mu      sync.Mutex
	sends   []*Message
	byGroup map[string][]string
	failOn  func(msg *Message) error
	closed  bool
}

func newFakeProducer() *fakeProducer {
	return &fakeProducer{byGroup: make(map[string][]string)}
}

func (f *fakeProducer) SendSync(_ context.Context, msg *Message) (*Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOn != nil {
		if err := f.failOn(msg); err != nil {
			return nil, err
		}
	}
	f.sends = append(f.sends, msg)
	if msg.Group != "" && len(msg.Keys) > 0 {
		f.byGroup[msg.Group] = append(f.byGroup[msg.Group], msg.Keys[0])
	}
	return &Receipt{MessageID: strconv.Itoa(len(f.sends))}, nil
}

func (f *fakeProducer) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeProducer) sendCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sends)
}

func TestFifoProducerPreservesPerGroupOrder(t *testing.T) {
	fake := newFakeProducer()
	fifo := NewFifoProducer(fake, 4)

	const total = 200
	for i := 0; i < total; i++ {
		group := fmt.Sprintf("group-%d", i%10)
		msg := &Message{
			Topic: "ordered",
			Group: group,
			Keys:  []string{strconv.Itoa(i)},
			Body:  []byte("x"),
		}
		fifo.SendAsync(context.Background(), msg, nil)
	}
	require.NoError(t, fifo.Close())

	assert.Equal(t, total, fake.sendCount())
	for group, keys := range fake.byGroup {
		require.Len(t, keys, total/10, "group %s", group)
		prev := -1
		for _, key := range keys {
			i, err := strconv.Atoi(key)
			require.NoError(t, err)
			assert.Greater(t, i, prev, "group %s delivered out of order", group)
			prev = i
		}
	}
}

func TestFifoProducerCloseDrainsCallbacks(t *testing.T) {
	fake := newFakeProducer()
	fake.failOn = func(*Message) error {
		time.Sleep(time.Millisecond)
		return nil
	}
	fifo := NewFifoProducer(fake, 3)

	var callbacks uint64
	const total = 100
	for i := 0; i < total; i++ {
		fifo.SendAsync(context.Background(), &Message{Topic: "t", Group: "g"},
			func(receipt *Receipt, err error) {
				assert.NoError(t, err)
				assert.NotNil(t, receipt)
				atomic.AddUint64(&callbacks, 1)
			})
	}
	require.NoError(t, fifo.Close())

	assert.Equal(t, uint64(total), atomic.LoadUint64(&callbacks))
	assert.True(t, fake.closed)
}

func TestFifoProducerFlushWaitsForOutstanding(t *testing.T) {
	fake := newFakeProducer()
	fifo := NewFifoProducer(fake, 2)
	defer fifo.Close()

	var callbacks uint64
	for i := 0; i < 50; i++ {
		fifo.SendAsync(context.Background(), &Message{Topic: "t", Group: strconv.Itoa(i % 4)},
			func(*Receipt, error) { atomic.AddUint64(&callbacks, 1) })
	}
	require.NoError(t, fifo.Flush(context.Background()))
	assert.Equal(t, uint64(50), atomic.LoadUint64(&callbacks))
}

func TestFifoProducerCallbackReceivesError(t *testing.T) {
	sendErr := errors.New("broker unavailable")
	fake := newFakeProducer()
	fake.failOn = func(msg *Message) error {
		if msg.Keys[0] == "3" {
			return sendErr
		}
		return nil
	}
	fifo := NewFifoProducer(fake, 1)

	var failed uint64
	for i := 0; i < 10; i++ {
		fifo.SendAsync(context.Background(),
			&Message{Topic: "t", Group: "g", Keys: []string{strconv.Itoa(i)}},
			func(_ *Receipt, err error) {
				if err != nil {
					assert.ErrorIs(t, err, sendErr)
					atomic.AddUint64(&failed, 1)
				}
			})
	}
	require.NoError(t, fifo.Close())

	assert.Equal(t, uint64(1), atomic.LoadUint64(&failed))
	// The failed send is not recorded; the rest are.
	assert.Equal(t, 9, fake.sendCount())
}

func TestFifoProducerSendAfterClose(t *testing.T) {
	fifo := NewFifoProducer(newFakeProducer(), 2)
	require.NoError(t, fifo.Close())

	done := make(chan error, 1)
	fifo.SendAsync(context.Background(), &Message{Topic: "t"},
		func(_ *Receipt, err error) { done <- err })
	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrClosed)
	case <-time.After(time.Second):
		t.Fatal("callback not invoked after Close")
	}
}

func TestFifoProducerCloseIdempotent(t *testing.T) {
	fifo := NewFifoProducer(newFakeProducer(), 2)
	require.NoError(t, fifo.Close())
	require.NoError(t, fifo.Close())
}
