package coio

import (
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
)

// PanicError is the error a coroutine's JoinHandle reports when the
// coroutine body panicked. It keeps the recovered value and the stack
// of the panicking coroutine.
type PanicError struct {
	Value any
	Stack []byte
}

func (p *PanicError) Error() string {
	return fmt.Sprintf("%v", p.Value)
}

// ErrorWithStack returns the panic value followed by the coroutine's
// stack trace.
func (p *PanicError) ErrorWithStack() string {
	return fmt.Sprintf("%v\n\n%s", p.Value, p.Stack)
}

// Unwrap returns the panic value if it is an error, so errors.Is
// matches ErrCanceled for cancelled coroutines.
func (p *PanicError) Unwrap() error {
	err, _ := p.Value.(error)
	return err
}

// DebugString renders the whole error chain, expanding the stack of
// every PanicError found in it. Cycles are visited once.
func (p *PanicError) DebugString() string {
	var (
		sb    strings.Builder
		seen  = make(map[error]bool)
		queue = []error{p}
	)

	for len(queue) > 0 {
		e := queue[0]
		queue = queue[1:]
		if e == nil || seen[e] {
			continue
		}
		seen[e] = true

		if pe, ok := e.(*PanicError); ok {
			sb.WriteString(pe.ErrorWithStack())
		} else {
			sb.WriteString(e.Error())
		}

		switch u := e.(type) {
		case interface{ Unwrap() []error }:
			queue = append(queue, u.Unwrap()...)
		default:
			queue = append(queue, errors.Unwrap(e))
		}
	}

	return sb.String()
}

func newPanicError(v any) error {
	return &PanicError{
		Value: v,
		Stack: debug.Stack(),
	}
}
