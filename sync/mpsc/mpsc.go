// Package mpsc provides multi-producer, single-consumer FIFO channels
// that cooperate with the coio scheduler.
//
// Channel returns an unbounded pair whose sends never block.
// SyncChannel returns a bounded pair whose sends wait for capacity.
// Blocking operations take a context.Context: when it belongs to a
// coio coroutine the operation parks the coroutine and leaves its
// worker free; otherwise it blocks the calling goroutine like an
// ordinary channel. Contexts are used only to find the coroutine;
// deadlines and cancellation are not observed.
//
// Endpoints are released with Close. When the last producer closes, a
// parked receiver wakes and observes ErrDisconnected once the buffer is
// drained. When the receiver of a bounded channel closes, every parked
// sender wakes and observes ErrDisconnected.
package mpsc

import (
	"errors"
	"sync/atomic"

	"github.com/webriots/coio"
	"github.com/webriots/coio/internal/queue"
)

var (
	// ErrEmpty is returned by TryRecv when nothing is buffered yet.
	ErrEmpty = queue.ErrEmpty

	// ErrFull is returned by TrySend on a bounded channel at capacity.
	ErrFull = queue.ErrFull

	// ErrDisconnected is returned once the other side of the channel has
	// closed: every producer for a receive, the receiver for a send.
	ErrDisconnected = queue.ErrDisconnected

	// ErrClosed is returned by operations on an endpoint that was
	// closed by its owner.
	ErrClosed = errors.New("mpsc: use of closed endpoint")
)

// SendError is returned by a send that did not deliver its value. Value
// is the rejected value, handed back unchanged; Err is ErrFull,
// ErrDisconnected or ErrClosed.
type SendError[T any] struct {
	Value T
	Err   error
}

func (e *SendError[T]) Error() string {
	return e.Err.Error()
}

func (e *SendError[T]) Unwrap() error {
	return e.Err
}

// endpoints is the state every endpoint of one channel shares: the
// wait lists and the number of live producers. The producer count is
// what decides whether a closing producer was the last one; it is
// raised by the constructor and Clone and lowered once per Close.
type endpoints struct {
	recvWait coio.WaitList
	sendWait coio.WaitList
	senders  atomic.Int64
}

func newEndpoints() *endpoints {
	e := &endpoints{}
	e.senders.Store(1)
	return e
}

func (e *endpoints) addSender() {
	e.senders.Add(1)
}

// dropSender reports whether the last live producer is gone.
func (e *endpoints) dropSender() bool {
	n := e.senders.Add(-1)
	if n < 0 {
		panic("mpsc: producer count underflow")
	}
	return n == 0
}
