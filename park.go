package coio

import "context"

// Park suspends the coroutine ctx belongs to until attempt reports
// done. attempt must be a non-blocking try of some operation; it
// reports done when the operation succeeded or can never succeed.
// Whoever makes progress possible is expected to ready one waiter
// from wl.
//
// Park reports false, without calling attempt, when ctx carries no
// coroutine: the caller should then fall back to its blocking
// operation.
//
// Between a failed attempt and parking, attempt is retried with wl
// locked, so progress made by a peer that takes wl's lock to wake a
// waiter cannot slip past unnoticed. The lock is released before the
// coroutine switches away. A wakeup only means progress may be
// possible; Park retries and may park again.
func Park(ctx context.Context, wl *WaitList, attempt func() bool) bool {
	if FromContext(ctx) == nil {
		return false
	}

	for {
		if attempt() {
			return true
		}

		t, ok := BeginSuspend(ctx)
		if !ok {
			return false
		}
		if wl.register(t, attempt) {
			t.Wait()
			return true
		}
		wl.wait(t)
	}
}

// wait suspends on a ticket whose handle register queued on wl. If the
// coroutine unwinds instead of resuming, its handle leaves wl; a wakeup
// it was already handed moves on to the next waiter.
func (wl *WaitList) wait(t Ticket) {
	resumed := false
	defer func() {
		if resumed {
			return
		}
		if !wl.remove(t.Handle()) {
			wl.WakeOne()
		}
	}()

	t.Wait()
	resumed = true
}

// register retries attempt under the list lock and either queues the
// suspending coroutine or cancels its suspension.
func (wl *WaitList) register(t Ticket, attempt func() bool) bool {
	wl.mu.Lock()
	defer wl.mu.Unlock()

	if attempt() {
		t.Cancel()
		return true
	}
	wl.pushLocked(t.Handle())
	return false
}
