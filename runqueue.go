package coio

import "sync"

// runQueue is the FIFO of runnable coroutines the workers drain.
type runQueue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []*Handle
	closed bool
}

func newRunQueue() *runQueue {
	q := &runQueue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// push appends h and wakes one idle worker. It reports false once the
// queue is closed.
func (q *runQueue) push(h *Handle) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}

	q.items = append(q.items, h)
	q.cond.Signal()
	return true
}

// pop blocks until a coroutine is runnable. It reports false once the
// queue is closed; coroutines still queued at that point stay behind.
func (q *runQueue) pop() (*Handle, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.items) == 0 && !q.closed {
		q.cond.Wait()
	}
	if q.closed {
		return nil, false
	}

	h := q.items[0]
	q.items[0] = nil
	q.items = q.items[1:]
	return h, true
}

func (q *runQueue) close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}

	q.closed = true
	q.items = nil
	q.cond.Broadcast()
}

func (q *runQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
