// Package memory provides an in-process broker transport backed by a
// buffered channel and a single delivery goroutine, preserving publish
// order for each publisher.
package memory

import (
	"context"
	"sync"

	"github.com/pairline/pairline-server/internal/broker"
)

const defaultQueueSize = 256

// Broker is an in-memory implementation of broker.Broker.
type Broker struct {
	queue chan broker.Envelope
	done  chan struct{}

	mu       sync.Mutex
	handlers []broker.Handler
	closed   bool

	startOnce sync.Once
	closeOnce sync.Once
}

// New constructs a ready-to-use in-memory broker.
func New() *Broker {
	return &Broker{
		queue: make(chan broker.Envelope, defaultQueueSize),
		done:  make(chan struct{}),
	}
}

// Publish enqueues the envelope for delivery. Fails with
// broker.ErrUnavailable once the broker is closed.
func (b *Broker) Publish(ctx context.Context, env broker.Envelope) error {
	b.mu.Lock()
	closed := b.closed
	b.mu.Unlock()
	if closed {
		return broker.ErrUnavailable
	}

	select {
	case b.queue <- env:
		return nil
	case <-b.done:
		return broker.ErrUnavailable
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Subscribe registers a handler and starts the delivery loop on first use.
func (b *Broker) Subscribe(_ context.Context, h broker.Handler) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return broker.ErrUnavailable
	}
	b.handlers = append(b.handlers, h)
	b.startOnce.Do(func() {
		go b.deliver()
	})
	return nil
}

// Close stops delivery. Envelopes still queued are discarded; persistence
// across restarts is explicitly out of scope.
func (b *Broker) Close() error {
	b.closeOnce.Do(func() {
		b.mu.Lock()
		b.closed = true
		b.mu.Unlock()
		close(b.done)
	})
	return nil
}

func (b *Broker) deliver() {
	for {
		select {
		case <-b.done:
			return
		case env := <-b.queue:
			b.mu.Lock()
			handlers := make([]broker.Handler, len(b.handlers))
			copy(handlers, b.handlers)
			b.mu.Unlock()

			for _, h := range handlers {
				h(env)
			}
		}
	}
}
