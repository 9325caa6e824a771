// Package pubsub fans values out to subscribers without ever blocking the
// publisher. A Broker[graph.MoveEvent] can serve as the registry's geometry
// listener, which runs with the registry lock held.
package pubsub

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// ErrShutdown is returned by Subscribe after Shutdown.
var ErrShutdown = errors.New("pubsub: broker shut down")

// DefaultBuffer is the per-subscriber channel capacity.
const DefaultBuffer = 100

// Broker delivers every published value to every live subscription. A
// subscriber whose buffer is full misses the value; Dropped counts those.
type Broker[T any] struct {
	mu          sync.RWMutex
	subscribers map[*Subscription[T]]struct{}
	buffer      int
	shutdown    chan struct{}
	isShutdown  bool
	dropped     atomic.Uint64
}

// Subscription receives values from a Broker.
type Subscription[T any] struct {
	channel   chan T
	broker    *Broker[T]
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// NewBroker creates a broker. A buffer of zero or less uses DefaultBuffer.
func NewBroker[T any](buffer int) *Broker[T] {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Broker[T]{
		subscribers: make(map[*Subscription[T]]struct{}),
		buffer:      buffer,
		shutdown:    make(chan struct{}),
	}
}

// Subscribe registers a subscription that ends when ctx is done, when
// Unsubscribe is called, or when the broker shuts down. Its channel is closed
// at that point.
func (b *Broker[T]) Subscribe(ctx context.Context) (*Subscription[T], error) {
	subCtx, cancel := context.WithCancel(ctx)
	sub := &Subscription[T]{
		channel: make(chan T, b.buffer),
		broker:  b,
		cancel:  cancel,
	}

	b.mu.Lock()
	if b.isShutdown {
		b.mu.Unlock()
		cancel()
		return nil, ErrShutdown
	}
	b.subscribers[sub] = struct{}{}
	b.mu.Unlock()

	go func() {
		select {
		case <-subCtx.Done():
			sub.Unsubscribe()
		case <-b.shutdown:
			cancel()
		}
	}()

	return sub, nil
}

// Publish sends v to every subscriber without blocking. Sends happen under
// the read lock so a subscription cannot close its channel mid-send.
func (b *Broker[T]) Publish(v T) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.isShutdown {
		return
	}

	for sub := range b.subscribers {
		select {
		case sub.channel <- v:
		default:
			b.dropped.Add(1)
		}
	}
}

// SubscriberCount returns the number of live subscriptions.
func (b *Broker[T]) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// Dropped returns how many deliveries were skipped because a subscriber's
// buffer was full.
func (b *Broker[T]) Dropped() uint64 {
	return b.dropped.Load()
}

// Shutdown closes every subscription. Later publishes are ignored.
func (b *Broker[T]) Shutdown() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.isShutdown {
		return
	}
	b.isShutdown = true
	close(b.shutdown)

	for sub := range b.subscribers {
		sub.close()
		delete(b.subscribers, sub)
	}
}

// Channel returns the subscription's value channel
func (s *Subscription[T]) Channel() <-chan T {
	return s.channel
}

// Unsubscribe removes the subscription and closes its channel.
func (s *Subscription[T]) Unsubscribe() {
	s.cancel()

	s.broker.mu.Lock()
	defer s.broker.mu.Unlock()
	delete(s.broker.subscribers, s)
	s.close()
}

func (s *Subscription[T]) close() {
	s.closeOnce.Do(func() {
		close(s.channel)
	})
}
