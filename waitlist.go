package coio

import (
	"slices"
	"sync"
)

// WaitList is a FIFO of parked coroutines waiting for one kind of
// progress. The zero value is an empty list. FIFO order decides who is
// readied first, not who runs first.
type WaitList struct {
	mu      sync.Mutex
	handles []*Handle
}

// NewWaitList returns an empty WaitList.
func NewWaitList() *WaitList {
	return &WaitList{}
}

// PushBack appends h. It panics if h is already in a wait list.
func (wl *WaitList) PushBack(h *Handle) {
	wl.mu.Lock()
	defer wl.mu.Unlock()
	wl.pushLocked(h)
}

func (wl *WaitList) pushLocked(h *Handle) {
	if !h.listed.CompareAndSwap(false, true) {
		panic("coio: handle is already in a wait list")
	}
	wl.handles = append(wl.handles, h)
}

// PopFront removes and returns the oldest Handle, or nil.
func (wl *WaitList) PopFront() *Handle {
	wl.mu.Lock()
	defer wl.mu.Unlock()

	if len(wl.handles) == 0 {
		return nil
	}
	h := wl.handles[0]
	wl.handles[0] = nil
	wl.handles = wl.handles[1:]
	h.listed.Store(false)
	return h
}

// remove takes h out of the list and reports whether it was there.
func (wl *WaitList) remove(h *Handle) bool {
	wl.mu.Lock()
	defer wl.mu.Unlock()

	i := slices.Index(wl.handles, h)
	if i < 0 {
		return false
	}
	wl.handles = slices.Delete(wl.handles, i, i+1)
	h.listed.Store(false)
	return true
}

// Len returns the number of waiting handles.
func (wl *WaitList) Len() int {
	wl.mu.Lock()
	defer wl.mu.Unlock()
	return len(wl.handles)
}

// WakeOne readies the oldest waiter, if any, and reports whether there
// was one.
func (wl *WaitList) WakeOne() bool {
	h := wl.PopFront()
	if h == nil {
		return false
	}
	h.Ready()
	return true
}

// WakeAll drains the list and readies every waiter. It is used when the
// event the waiters expect can no longer happen, so each of them gets to
// observe that for itself. It returns the number of waiters woken.
func (wl *WaitList) WakeAll() int {
	wl.mu.Lock()
	handles := wl.handles
	wl.handles = nil
	for _, h := range handles {
		h.listed.Store(false)
	}
	wl.mu.Unlock()

	for _, h := range handles {
		h.sched.log.Debug("coroutine woken by wait list drain", "coroutine", h.id, "drained", len(handles))
		h.Ready()
	}
	return len(handles)
}
