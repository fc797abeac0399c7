package coio

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCoroutineSuspendResume(t *testing.T) {
	r := require.New(t)

	var (
		steps []int
		co    *coroutine
	)
	co = newCoroutine(func() {
		steps = append(steps, 1)
		co.suspend()
		steps = append(steps, 2)
		co.suspend()
		steps = append(steps, 3)
	})

	r.Empty(steps)

	co.resume()
	r.Equal([]int{1}, steps)
	r.False(co.done)

	co.resume()
	r.Equal([]int{1, 2}, steps)
	r.False(co.done)

	co.resume()
	r.Equal([]int{1, 2, 3}, steps)
	r.True(co.done)
	r.NoError(co.perr)
}

func TestCoroutineResumeAfterCompletion(t *testing.T) {
	r := require.New(t)

	co := newCoroutine(func() {})
	co.resume()
	r.True(co.done)

	r.PanicsWithValue("coio: resume of finished coroutine", func() {
		co.resume()
	})
}

func TestCoroutinePanicRecovery(t *testing.T) {
	r := require.New(t)

	var co *coroutine
	co = newCoroutine(func() {
		co.suspend()
		panic("test panic")
	})

	co.resume()
	r.False(co.done)

	co.resume()
	r.True(co.done)

	var perr *PanicError
	r.ErrorAs(co.perr, &perr)
	r.Equal("test panic", perr.Value)
	r.Equal("test panic", perr.Error())
	r.Contains(string(perr.Stack), "coro_test.go")
}

func TestCoroutineCancel(t *testing.T) {
	r := require.New(t)

	var (
		co       *coroutine
		returned bool
	)
	co = newCoroutine(func() {
		defer func() { returned = true }()
		co.suspend()
		t.Error("coroutine should have been canceled")
	})

	co.resume()
	r.False(co.done)

	co.cancel()
	r.True(co.done)
	r.True(returned)
	r.ErrorIs(co.perr, ErrCanceled)

	// Cancelling twice is a no-op.
	co.cancel()
}

func TestCoroutineCancelBeforeResume(t *testing.T) {
	r := require.New(t)

	co := newCoroutine(func() {
		t.Error("coroutine should not start")
	})

	co.cancel()
	r.True(co.done)
	r.ErrorIs(co.perr, ErrCanceled)
}

func TestCoroutineSuspendDuringCancel(t *testing.T) {
	r := require.New(t)

	var (
		co       *coroutine
		deferred bool
	)
	co = newCoroutine(func() {
		defer func() {
			deferred = true
			// Unwinding code that tries to suspend again must not switch
			// back to the canceller.
			co.suspend()
		}()
		co.suspend()
	})

	co.resume()
	co.cancel()

	r.True(deferred)
	r.True(co.done)
	r.ErrorIs(co.perr, ErrCanceled)
}

func TestCoroutineSuspendEscaped(t *testing.T) {
	r := require.New(t)

	co := newCoroutine(func() {})
	co.resume()
	r.True(co.done)

	func() {
		defer func() {
			p := recover()
			r.NotNil(p)
			err, ok := p.(error)
			r.True(ok)
			r.True(errors.Is(err, ErrCanceled))
		}()
		co.suspend()
	}()
}

func TestDebugString(t *testing.T) {
	r := require.New(t)

	var outer *coroutine
	outer = newCoroutine(func() {
		inner := newCoroutine(func() {
			panic("test panic")
		})
		inner.resume()
		panic(inner.perr)
	})

	outer.resume()
	r.True(outer.done)

	var perr *PanicError
	r.ErrorAs(outer.perr, &perr)

	msg := perr.DebugString()
	r.Equal(2, strings.Count(msg, "test panic"))
	r.GreaterOrEqual(strings.Count(msg, "coro_test.go"), 2)
}
