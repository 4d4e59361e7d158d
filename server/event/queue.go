// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package event provides the per-task event queues that connect an agent
// executor to the request handlers consuming its output.
package event

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"sync"
	"sync/atomic"

	a2a "github.com/go-a2a/a2a-wire"
)

// DefaultMaxQueueSize is the default buffer size of each subscription.
const DefaultMaxQueueSize = 1024

// Queue is a broadcaster of [a2a.StreamResult] frames produced for one task.
//
// Every subscription receives every frame published after it subscribed, in
// publication order. Publish blocks while a subscriber's buffer is full.
type Queue struct {
	mu        sync.RWMutex
	subs      map[*Subscription]struct{}
	closed    bool
	published atomic.Int64

	name         string
	maxQueueSize int
	logger       *slog.Logger
}

// QueueOption configures a [Queue].
type QueueOption func(*Queue)

// WithMaxQueueSize sets the buffer size of each subscription.
func WithMaxQueueSize(size int) QueueOption {
	return func(q *Queue) {
		if size > 0 {
			q.maxQueueSize = size
		}
	}
}

// WithQueueName names the queue in log records.
func WithQueueName(name string) QueueOption {
	return func(q *Queue) {
		q.name = name
	}
}

// WithLogger sets the logger of the queue.
func WithLogger(logger *slog.Logger) QueueOption {
	return func(q *Queue) {
		q.logger = logger
	}
}

// NewQueue creates an open queue without subscribers.
func NewQueue(opts ...QueueOption) *Queue {
	q := &Queue{
		subs:         make(map[*Subscription]struct{}),
		maxQueueSize: DefaultMaxQueueSize,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(q)
	}
	if q.name == "" {
		q.name = fmt.Sprintf("queue-%p", q)
	}
	return q
}

// Publish delivers r to every current subscriber.
//
// It returns [ErrQueueClosed] after [Queue.Close] and the context error when
// ctx ends while waiting on a full subscriber.
func (q *Queue) Publish(ctx context.Context, r a2a.StreamResult) error {
	if r == nil {
		return ErrInvalidEvent
	}

	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrQueueClosed
	}

	for sub := range q.subs {
		select {
		case sub.ch <- r:
		case <-sub.done:
			// unsubscribed while publishing
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	q.published.Add(1)
	q.logger.DebugContext(ctx, "published event", slog.String("queue", q.name), slog.String("kind", string(r.GetKind())))

	return nil
}

// Subscribe registers a new subscription.
//
// Subscribing to a closed queue yields a subscription that is already drained.
func (q *Queue) Subscribe() *Subscription {
	sub := newSubscription(q, q.maxQueueSize)

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		close(sub.ch)
		return sub
	}
	q.subs[sub] = struct{}{}

	return sub
}

// Tap subscribes to a queue that is still open.
//
// It is used to resubscribe to a running task and fails with [ErrQueueClosed]
// once the producer is done.
func (q *Queue) Tap() (*Subscription, error) {
	sub, _, err := q.TapFrom()
	return sub, err
}

// TapFrom is like [Queue.Tap] and also returns the number of frames published
// before the subscription. The subscription receives every later frame.
func (q *Queue) TapFrom() (*Subscription, int, error) {
	sub := newSubscription(q, q.maxQueueSize)

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil, 0, ErrQueueClosed
	}
	q.subs[sub] = struct{}{}

	return sub, int(q.published.Load()), nil
}

// Published returns the number of frames published so far.
func (q *Queue) Published() int {
	return int(q.published.Load())
}

// Close ends the queue. Subscribers drain the buffered frames and then stop.
func (q *Queue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	q.closed = true
	for sub := range q.subs {
		close(sub.ch)
	}
	clear(q.subs)

	return nil
}

// IsClosed reports whether the queue has been closed.
func (q *Queue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}

// Len returns the number of active subscriptions.
func (q *Queue) Len() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return len(q.subs)
}

// Name returns the name of the queue.
func (q *Queue) Name() string {
	return q.name
}

// String returns a string representation of the Queue.
func (q *Queue) String() string {
	q.mu.RLock()
	defer q.mu.RUnlock()

	return fmt.Sprintf("Queue{name: %s, subscribers: %d, closed: %t}", q.name, len(q.subs), q.closed)
}

func (q *Queue) unsubscribe(sub *Subscription) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, ok := q.subs[sub]; ok {
		delete(q.subs, sub)
		close(sub.ch)
	}
}

// Subscription is one consumer of a [Queue].
type Subscription struct {
	q        *Queue
	ch       chan a2a.StreamResult
	done     chan struct{}
	doneOnce sync.Once
}

func newSubscription(q *Queue, size int) *Subscription {
	return &Subscription{
		q:    q,
		ch:   make(chan a2a.StreamResult, size),
		done: make(chan struct{}),
	}
}

// Next returns the next frame.
//
// It returns [ErrQueueClosed] once the queue is closed and drained, or the
// subscription was closed.
func (s *Subscription) Next(ctx context.Context) (a2a.StreamResult, error) {
	select {
	case r, ok := <-s.ch:
		if !ok {
			return nil, ErrQueueClosed
		}
		return r, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// All iterates over the frames until the queue is closed or ctx ends.
// Breaking out of the loop does not close the subscription.
func (s *Subscription) All(ctx context.Context) iter.Seq[a2a.StreamResult] {
	return func(yield func(a2a.StreamResult) bool) {
		for {
			r, err := s.Next(ctx)
			if err != nil {
				return
			}
			if !yield(r) {
				return
			}
		}
	}
}

// Close unsubscribes from the queue. It is safe to call more than once.
func (s *Subscription) Close() {
	s.doneOnce.Do(func() {
		close(s.done)
		s.q.unsubscribe(s)
	})
}
