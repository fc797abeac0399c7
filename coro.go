package coio

import (
	"errors"
	"unsafe"
)

var (
	// ErrCanceled is raised as a panic at the suspension point of a
	// coroutine that is cancelled by scheduler shutdown, and at any
	// later attempt of that coroutine to suspend again. Join reports it
	// wrapped in a *PanicError.
	ErrCanceled = errors.New("coio: coroutine canceled")
	_           unsafe.Pointer
)

// rtcoro is the runtime's opaque coroutine.
type rtcoro struct{}

//go:linkname newcoro runtime.newcoro
func newcoro(func(*rtcoro)) *rtcoro

//go:linkname coroswitch runtime.coroswitch
func coroswitch(*rtcoro)

// coroutine is a stackful coroutine. A worker drives it with resume;
// the body gives control back with suspend. Only one goroutine may be
// inside resume or cancel at a time; the run queue guarantees that.
type coroutine struct {
	c        *rtcoro
	done     bool
	canceled bool
	perr     error
}

func newCoroutine(fn func()) *coroutine {
	co := &coroutine{}
	co.c = newcoro(func(*rtcoro) {
		defer func() {
			if p := recover(); p != nil {
				co.perr = newPanicError(p)
			}
			co.done = true
		}()
		if co.canceled {
			panic(ErrCanceled)
		}
		fn()
	})
	return co
}

// resume runs the coroutine until it suspends or returns.
func (co *coroutine) resume() {
	if co.done {
		panic("coio: resume of finished coroutine")
	}
	coroswitch(co.c)
}

// suspend hands control back to whoever resumed the coroutine. It must
// only be called from inside the coroutine body.
func (co *coroutine) suspend() {
	if co.done || co.canceled {
		panic(ErrCanceled)
	}
	coroswitch(co.c)
	if co.canceled {
		panic(ErrCanceled)
	}
}

// cancel unwinds a suspended or never-started coroutine by making its
// suspension point panic with ErrCanceled, and returns once the body
// has exited.
func (co *coroutine) cancel() {
	if co.done {
		return
	}
	co.canceled = true
	coroswitch(co.c)
}
