// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package queue

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/stellate/stellate-go/pkg/errors"
)

// ErrClosed is returned by Dequeue once the queue is closed and empty.
var ErrClosed = errors.New(errors.ErrCodeQueueClosed, "queue closed")

// DropPolicy selects which item is discarded when a bounded queue is full.
type DropPolicy string

const (
	// DropNewest rejects the item being enqueued.
	DropNewest DropPolicy = "drop-newest"
	// DropOldest evicts the item at the head of the queue.
	DropOldest DropPolicy = "drop-oldest"
)

// IsValid reports whether p is a known policy.
func (p DropPolicy) IsValid() bool {
	switch p {
	case DropNewest, DropOldest:
		return true
	default:
		return false
	}
}

// ParseDropPolicy converts s into a DropPolicy. Empty selects DropNewest.
func ParseDropPolicy(s string) (DropPolicy, error) {
	if s == "" {
		return DropNewest, nil
	}
	p := DropPolicy(s)
	if !p.IsValid() {
		return "", fmt.Errorf("invalid drop policy %q (must be %q or %q)", s, DropNewest, DropOldest)
	}
	return p, nil
}

// Option configures a Queue.
type Option func(*options)

type options struct {
	capacity int
	policy   DropPolicy
	onDrop   func()
}

// WithCapacity bounds the queue. Zero or less means unbounded.
func WithCapacity(n int) Option {
	return func(o *options) {
		o.capacity = n
	}
}

// WithDropPolicy sets the overflow policy of a bounded queue.
func WithDropPolicy(p DropPolicy) Option {
	return func(o *options) {
		o.policy = p
	}
}

// WithDropHook registers a callback run, outside the lock, for every dropped item.
func WithDropHook(fn func()) Option {
	return func(o *options) {
		o.onDrop = fn
	}
}

// Queue is a FIFO safe for many producers and one consumer.
type Queue[T any] struct {
	mu     sync.Mutex
	items  []T
	head   int
	closed bool

	// notify holds at most one pending wake-up for the consumer.
	notify chan struct{}

	capacity int
	policy   DropPolicy
	onDrop   func()
	dropped  atomic.Uint64
}

// New creates an empty queue.
func New[T any](opts ...Option) *Queue[T] {
	o := &options{policy: DropNewest}
	for _, opt := range opts {
		opt(o)
	}
	if !o.policy.IsValid() {
		o.policy = DropNewest
	}
	return &Queue[T]{
		notify:   make(chan struct{}, 1),
		capacity: o.capacity,
		policy:   o.policy,
		onDrop:   o.onDrop,
	}
}

// Enqueue appends item without blocking. It returns false when the item was
// not kept: the queue is closed, or it is full under DropNewest. Under
// DropOldest the item is kept and the head is evicted instead.
func (q *Queue[T]) Enqueue(item T) bool {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		q.drop()
		return false
	}

	evicted := false
	if q.capacity > 0 && q.lenLocked() >= q.capacity {
		if q.policy == DropNewest {
			q.mu.Unlock()
			q.drop()
			return false
		}
		q.popLocked()
		evicted = true
	}

	q.items = append(q.items, item)
	q.signalLocked()
	q.mu.Unlock()

	if evicted {
		q.drop()
	}
	return true
}

// Dequeue removes and returns the head item, blocking until one is available.
// It returns ctx.Err() if ctx ends first and ErrClosed once the queue is closed
// and drained. Only one goroutine may call Dequeue at a time.
func (q *Queue[T]) Dequeue(ctx context.Context) (T, error) {
	var zero T
	for {
		q.mu.Lock()
		if q.lenLocked() > 0 {
			item := q.popLocked()
			q.mu.Unlock()
			return item, nil
		}
		if q.closed {
			q.mu.Unlock()
			return zero, ErrClosed
		}
		q.mu.Unlock()

		select {
		case <-q.notify:
		case <-ctx.Done():
			return zero, ctx.Err()
		}
	}
}

// Close stops the queue from accepting items. Items already queued remain
// available to Dequeue. Close is idempotent.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	q.signalLocked()
}

// Len returns the number of queued items.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.lenLocked()
}

// Dropped returns how many items were discarded since creation.
func (q *Queue[T]) Dropped() uint64 {
	return q.dropped.Load()
}

// Closed reports whether Close has been called.
func (q *Queue[T]) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

func (q *Queue[T]) lenLocked() int {
	return len(q.items) - q.head
}

func (q *Queue[T]) popLocked() T {
	var zero T
	item := q.items[q.head]
	q.items[q.head] = zero
	q.head++

	switch {
	case q.head == len(q.items):
		q.items = q.items[:0]
		q.head = 0
	case q.head >= 64 && q.head*2 >= len(q.items):
		n := copy(q.items, q.items[q.head:])
		clear(q.items[n:])
		q.items = q.items[:n]
		q.head = 0
	}
	return item
}

func (q *Queue[T]) signalLocked() {
	select {
	case q.notify <- struct{}{}:
	default:
	}
}

func (q *Queue[T]) drop() {
	q.dropped.Add(1)
	if q.onDrop != nil {
		q.onDrop()
	}
}
