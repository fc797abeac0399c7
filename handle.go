package coio

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"
)

// Coroutine states. A coroutine is running while it executes or sits in
// the run queue, suspending between BeginSuspend and the moment its
// worker regains control, and parked after that until someone readies
// it.
const (
	stateRunning int32 = iota
	stateSuspending
	stateParked
)

// Handle is a resumable reference to one coroutine. A Handle may sit in
// at most one WaitList at a time.
type Handle struct {
	id     uint64
	sched  *Scheduler
	co     *coroutine
	join   *JoinHandle
	state  atomic.Int32
	listed atomic.Bool
}

// ID returns the coroutine's scheduler-unique identifier.
func (h *Handle) ID() uint64 {
	return h.id
}

func (h *Handle) String() string {
	return fmt.Sprintf("Coroutine(%d)", h.id)
}

// Ready makes the coroutine runnable. A coroutine that is still between
// BeginSuspend and its switch has the suspend cancelled; a parked one is
// queued on the scheduler. Readying a running coroutine does nothing.
// It is safe to call from any goroutine.
func (h *Handle) Ready() {
	for {
		switch h.state.Load() {
		case stateSuspending:
			if h.state.CompareAndSwap(stateSuspending, stateRunning) {
				return
			}
		case stateParked:
			if h.state.CompareAndSwap(stateParked, stateRunning) {
				h.sched.schedule(h)
				return
			}
		default:
			return
		}
	}
}

type ctxKey struct{}

// FromContext returns the Handle of the coroutine ctx belongs to, or nil
// when ctx carries no live coroutine.
func FromContext(ctx context.Context) *Handle {
	h, _ := ctx.Value(ctxKey{}).(*Handle)
	if h == nil || h.co.done {
		return nil
	}
	return h
}

// Ticket is the pending suspension returned by BeginSuspend.
type Ticket struct {
	h *Handle
}

// BeginSuspend starts suspending the calling coroutine. Until the
// returned Ticket's Wait, the coroutine keeps running and can register
// its Handle with whatever will wake it. It reports false when ctx
// carries no coroutine.
func BeginSuspend(ctx context.Context) (Ticket, bool) {
	h := FromContext(ctx)
	if h == nil {
		return Ticket{}, false
	}
	if !h.state.CompareAndSwap(stateRunning, stateSuspending) {
		panic("coio: BeginSuspend on a coroutine that is already suspending")
	}
	return Ticket{h: h}, true
}

// Handle returns the Handle to register for a later wakeup.
func (t Ticket) Handle() *Handle {
	return t.h
}

// Cancel abandons the suspension; Wait will return immediately.
func (t Ticket) Cancel() {
	t.h.Ready()
}

// Wait switches away from the coroutine unless the suspension was
// cancelled or the Handle was readied already, and returns once the
// coroutine has been readied and picked up by a worker.
func (t Ticket) Wait() {
	if t.h.state.Load() == stateRunning {
		return
	}
	t.h.co.suspend()
}

// Yield lets other runnable coroutines run before the caller continues.
// Outside a coroutine it yields the goroutine.
func Yield(ctx context.Context) {
	h := FromContext(ctx)
	if h == nil {
		runtime.Gosched()
		return
	}
	h.co.suspend()
}
