// Package queue implements the thread-level FIFO that the channels in
// sync/mpsc are layered on. It knows nothing about coroutines: blocking
// operations block the calling goroutine on a sync.Cond.
package queue

import (
	"errors"
	"sync"
)

var (
	// ErrEmpty is returned by TryRecv when no item is buffered but at
	// least one producer is still alive.
	ErrEmpty = errors.New("mpsc: receiving on an empty channel")

	// ErrFull is returned by TrySend on a bounded queue whose buffer is
	// at capacity.
	ErrFull = errors.New("mpsc: sending on a full channel")

	// ErrDisconnected is returned once the peer side is gone: every
	// producer for a receive, the consumer for a send.
	ErrDisconnected = errors.New("mpsc: channel is disconnected")
)

// Queue is a multi-producer, single-consumer FIFO. A bound of zero
// makes it unbounded.
type Queue[T any] struct {
	mu       sync.Mutex
	notEmpty sync.Cond
	notFull  sync.Cond
	items    []T
	bound    int
	senders  int
	receiver bool
}

// New returns a queue with one live producer and a live consumer.
func New[T any](bound int) *Queue[T] {
	if bound < 0 {
		panic("queue: negative bound")
	}
	q := &Queue[T]{
		bound:    bound,
		senders:  1,
		receiver: true,
	}
	q.notEmpty.L = &q.mu
	q.notFull.L = &q.mu
	return q
}

// Bound reports the capacity, or zero when unbounded.
func (q *Queue[T]) Bound() int {
	return q.bound
}

// Len reports the number of buffered items.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// AddSender registers another live producer.
func (q *Queue[T]) AddSender() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.senders++
}

// DropSender releases one producer. When the last one goes, blocked
// receivers are woken so they can observe ErrDisconnected.
func (q *Queue[T]) DropSender() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.senders == 0 {
		panic("queue: DropSender without a live sender")
	}
	q.senders--
	if q.senders == 0 {
		q.notEmpty.Broadcast()
	}
}

// DropReceiver releases the consumer, discards whatever is still
// buffered and wakes blocked senders.
func (q *Queue[T]) DropReceiver() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.receiver = false
	clear(q.items)
	q.items = nil
	q.notFull.Broadcast()
	q.notEmpty.Broadcast()
}

func (q *Queue[T]) full() bool {
	return q.bound > 0 && len(q.items) >= q.bound
}

func (q *Queue[T]) push(v T) {
	q.items = append(q.items, v)
	q.notEmpty.Signal()
}

func (q *Queue[T]) pop() T {
	var zero T
	v := q.items[0]
	q.items[0] = zero
	q.items = q.items[1:]
	if q.bound > 0 {
		q.notFull.Signal()
	}
	return v
}

// TrySend enqueues v without blocking. On error the queue is unchanged
// and the caller still owns v.
func (q *Queue[T]) TrySend(v T) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	switch {
	case !q.receiver:
		return ErrDisconnected
	case q.full():
		return ErrFull
	}
	q.push(v)
	return nil
}

// Send enqueues v, blocking while a bounded queue is full.
func (q *Queue[T]) Send(v T) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	for q.receiver && q.full() {
		q.notFull.Wait()
	}
	if !q.receiver {
		return ErrDisconnected
	}
	q.push(v)
	return nil
}

// TryRecv dequeues the oldest item without blocking. Buffered items are
// always handed out before ErrDisconnected is reported.
func (q *Queue[T]) TryRecv() (T, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	var zero T
	switch {
	case len(q.items) > 0:
		return q.pop(), nil
	case q.senders == 0 || !q.receiver:
		return zero, ErrDisconnected
	}
	return zero, ErrEmpty
}

// Recv dequeues the oldest item, blocking while the queue is empty and
// a producer is still alive.
func (q *Queue[T]) Recv() (T, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.items) == 0 && q.senders > 0 && q.receiver {
		q.notEmpty.Wait()
	}
	if len(q.items) > 0 {
		return q.pop(), nil
	}
	var zero T
	return zero, ErrDisconnected
}
