package coio

import (
	"context"
	"sync/atomic"
)

// JoinHandle waits for a spawned coroutine to finish.
type JoinHandle struct {
	h        *Handle
	waiters  WaitList
	finished atomic.Bool
	done     chan struct{}
	err      error
}

func newJoinHandle(h *Handle) *JoinHandle {
	return &JoinHandle{
		h:    h,
		done: make(chan struct{}),
	}
}

// ID returns the identifier of the coroutine being joined.
func (j *JoinHandle) ID() uint64 {
	return j.h.id
}

// Done returns a channel that is closed when the coroutine finishes.
func (j *JoinHandle) Done() <-chan struct{} {
	return j.done
}

// Join waits for the coroutine to finish and returns its panic as a
// *PanicError, or nil. Called from a coroutine it parks; otherwise it
// blocks the calling goroutine. A coroutine must not join itself.
func (j *JoinHandle) Join(ctx context.Context) error {
	if Park(ctx, &j.waiters, j.finished.Load) {
		return j.err
	}
	<-j.done
	return j.err
}

func (j *JoinHandle) complete(err error) {
	j.err = err
	j.finished.Store(true)
	close(j.done)
	j.waiters.WakeAll()
}
