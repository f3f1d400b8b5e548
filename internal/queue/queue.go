// Package queue is an unbounded multi-producer, single-consumer FIFO.
package queue

import (
	"sync"
)

// Q is safe for concurrent Push from any number of goroutines. Only one
// goroutine may Pop.
type Q[T any] struct {
	mutex  sync.Mutex
	items  []T
	wake   chan struct{}
	closed bool
}

// New returns an empty, open queue.
func New[T any]() *Q[T] {
	return &Q[T]{wake: make(chan struct{}, 1)}
}

// Push appends v without blocking. It reports false once the queue is closed.
func (q *Q[T]) Push(v T) bool {
	q.mutex.Lock()
	if q.closed {
		q.mutex.Unlock()
		return false
	}
	q.items = append(q.items, v)
	q.mutex.Unlock()

	q.notify()
	return true
}

// Pop blocks until an item is available or the queue is closed.
func (q *Q[T]) Pop() (T, bool) {
	var zero T
	for {
		q.mutex.Lock()
		if len(q.items) > 0 {
			v := q.items[0]
			q.items[0] = zero
			q.items = q.items[1:]
			q.mutex.Unlock()
			return v, true
		}
		if q.closed {
			q.mutex.Unlock()
			return zero, false
		}
		q.mutex.Unlock()
		<-q.wake
	}
}

// Close drops anything still queued and rejects further pushes.
func (q *Q[T]) Close() {
	q.mutex.Lock()
	q.closed = true
	q.items = nil
	q.mutex.Unlock()
	q.notify()
}

// Len is the number of items waiting.
func (q *Q[T]) Len() int {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	return len(q.items)
}

func (q *Q[T]) notify() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}
