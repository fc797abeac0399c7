package mpsc

import (
	"context"
	"iter"
	"sync/atomic"

	"github.com/webriots/coio"
	"github.com/webriots/coio/internal/queue"
)

// Sender is the producer side of an unbounded channel. Use Clone for
// additional producers; each must be closed.
type Sender[T any] struct {
	q      *queue.Queue[T]
	shared *endpoints
	closed atomic.Bool
}

// Receiver is the consumer side of an unbounded channel. There is
// exactly one per channel.
type Receiver[T any] struct {
	q      *queue.Queue[T]
	shared *endpoints
	closed atomic.Bool
}

// Channel creates an unbounded channel.
func Channel[T any]() (*Sender[T], *Receiver[T]) {
	q := queue.New[T](0)
	shared := newEndpoints()
	return &Sender[T]{q: q, shared: shared}, &Receiver[T]{q: q, shared: shared}
}

// Send enqueues v and readies the receiver if it is parked. It never
// blocks. Once the receiver has closed it returns a *SendError carrying
// v and ErrDisconnected.
func (s *Sender[T]) Send(v T) error {
	if s.closed.Load() {
		return &SendError[T]{Value: v, Err: ErrClosed}
	}
	if err := s.q.TrySend(v); err != nil {
		return &SendError[T]{Value: v, Err: err}
	}
	s.shared.recvWait.WakeOne()
	return nil
}

// TrySend is Send; an unbounded channel is never full.
func (s *Sender[T]) TrySend(v T) error {
	return s.Send(v)
}

// Clone returns a new producer for the same channel.
func (s *Sender[T]) Clone() *Sender[T] {
	if s.closed.Load() {
		panic("mpsc: Clone of closed Sender")
	}
	s.q.AddSender()
	s.shared.addSender()
	return &Sender[T]{q: s.q, shared: s.shared}
}

// Close releases the producer. Closing the last producer wakes a parked
// receiver so it can observe the disconnect. Close is idempotent.
func (s *Sender[T]) Close() {
	if !s.closed.CompareAndSwap(false, true) {
		return
	}
	s.q.DropSender()
	if s.shared.dropSender() {
		s.shared.recvWait.WakeAll()
	}
}

// TryRecv returns the oldest value without blocking, ErrEmpty when none
// is buffered, or ErrDisconnected when none is buffered and every
// producer has closed.
func (r *Receiver[T]) TryRecv() (T, error) {
	if r.closed.Load() {
		var zero T
		return zero, ErrClosed
	}
	return r.q.TryRecv()
}

// Recv returns the oldest value, waiting for one if needed. It returns
// ErrDisconnected once the buffer is empty and every producer has
// closed.
func (r *Receiver[T]) Recv(ctx context.Context) (T, error) {
	if r.closed.Load() {
		var zero T
		return zero, ErrClosed
	}

	var (
		v   T
		err error
	)
	attempt := func() bool {
		v, err = r.q.TryRecv()
		return err != ErrEmpty
	}
	if coio.Park(ctx, &r.shared.recvWait, attempt) {
		return v, err
	}
	return r.q.Recv()
}

// All returns an iterator over received values that stops at the first
// error.
func (r *Receiver[T]) All(ctx context.Context) iter.Seq[T] {
	return func(yield func(T) bool) {
		for {
			v, err := r.Recv(ctx)
			if err != nil || !yield(v) {
				return
			}
		}
	}
}

// Len returns the number of buffered values.
func (r *Receiver[T]) Len() int {
	return r.q.Len()
}

// Close releases the receiver and discards buffered values. Later sends
// fail with ErrDisconnected. Close is idempotent.
func (r *Receiver[T]) Close() {
	if !r.closed.CompareAndSwap(false, true) {
		return
	}
	r.q.DropReceiver()
	r.shared.recvWait.WakeAll()
}
