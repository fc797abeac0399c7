package mpsc

import (
	"context"
	"iter"
	"sync/atomic"

	"github.com/webriots/coio"
	"github.com/webriots/coio/internal/queue"
)

// SyncSender is the producer side of a bounded channel. Use Clone for
// additional producers; each must be closed.
type SyncSender[T any] struct {
	q      *queue.Queue[T]
	shared *endpoints
	closed atomic.Bool
}

// SyncReceiver is the consumer side of a bounded channel. There is
// exactly one per channel.
type SyncReceiver[T any] struct {
	q      *queue.Queue[T]
	shared *endpoints
	closed atomic.Bool
}

// SyncChannel creates a channel that buffers at most capacity values.
// It panics if capacity is negative. A capacity of zero is raised to
// one: a rendezvous channel cannot make progress while its receiver is
// parked rather than blocked, since nothing would be waiting to take
// the value.
func SyncChannel[T any](capacity int) (*SyncSender[T], *SyncReceiver[T]) {
	if capacity < 0 {
		panic("mpsc: negative capacity")
	}
	q := queue.New[T](max(capacity, 1))
	shared := newEndpoints()
	return &SyncSender[T]{q: q, shared: shared}, &SyncReceiver[T]{q: q, shared: shared}
}

// TrySend enqueues v if there is room. On a full channel it returns a
// *SendError carrying v and ErrFull and leaves the channel untouched.
func (s *SyncSender[T]) TrySend(v T) error {
	if s.closed.Load() {
		return &SendError[T]{Value: v, Err: ErrClosed}
	}
	if err := s.q.TrySend(v); err != nil {
		return &SendError[T]{Value: v, Err: err}
	}
	s.shared.recvWait.WakeOne()
	return nil
}

// Send enqueues v, waiting for room if the channel is full. It returns
// a *SendError carrying v and ErrDisconnected if the receiver closes
// first.
func (s *SyncSender[T]) Send(ctx context.Context, v T) error {
	if s.closed.Load() {
		return &SendError[T]{Value: v, Err: ErrClosed}
	}

	var err error
	attempt := func() bool {
		err = s.q.TrySend(v)
		return err != ErrFull
	}
	if !coio.Park(ctx, &s.shared.sendWait, attempt) {
		err = s.q.Send(v)
	}
	if err != nil {
		return &SendError[T]{Value: v, Err: err}
	}
	s.shared.recvWait.WakeOne()
	return nil
}

// Clone returns a new producer for the same channel.
func (s *SyncSender[T]) Clone() *SyncSender[T] {
	if s.closed.Load() {
		panic("mpsc: Clone of closed SyncSender")
	}
	s.q.AddSender()
	s.shared.addSender()
	return &SyncSender[T]{q: s.q, shared: s.shared}
}

// Close releases the producer. Closing the last producer wakes a parked
// receiver so it can observe the disconnect. Close is idempotent.
func (s *SyncSender[T]) Close() {
	if !s.closed.CompareAndSwap(false, true) {
		return
	}
	s.q.DropSender()
	if s.shared.dropSender() {
		s.shared.recvWait.WakeAll()
	}
}

// TryRecv returns the oldest value without blocking and readies one
// parked sender, since a slot was freed. It returns ErrEmpty when
// nothing is buffered, or ErrDisconnected when nothing is buffered and
// every producer has closed.
func (r *SyncReceiver[T]) TryRecv() (T, error) {
	if r.closed.Load() {
		var zero T
		return zero, ErrClosed
	}
	v, err := r.q.TryRecv()
	if err == nil {
		r.shared.sendWait.WakeOne()
	}
	return v, err
}

// Recv returns the oldest value, waiting for one if needed, and readies
// one parked sender. Values buffered before the last producer closed
// are still delivered; ErrDisconnected follows once they are drained.
func (r *SyncReceiver[T]) Recv(ctx context.Context) (T, error) {
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
	if !coio.Park(ctx, &r.shared.recvWait, attempt) {
		v, err = r.q.Recv()
	}
	if err == nil {
		r.shared.sendWait.WakeOne()
	}
	return v, err
}

// All returns an iterator over received values that stops at the first
// error.
func (r *SyncReceiver[T]) All(ctx context.Context) iter.Seq[T] {
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
func (r *SyncReceiver[T]) Len() int {
	return r.q.Len()
}

// Cap returns the channel's capacity.
func (r *SyncReceiver[T]) Cap() int {
	return r.q.Bound()
}

// Close releases the receiver and discards buffered values. Every
// parked sender is woken and fails with ErrDisconnected. Close is
// idempotent.
func (r *SyncReceiver[T]) Close() {
	if !r.closed.CompareAndSwap(false, true) {
		return
	}
	r.q.DropReceiver()
	r.shared.sendWait.WakeAll()
	r.shared.recvWait.WakeAll()
}
