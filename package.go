// Package coio provides a cooperative M:N coroutine scheduler and the
// parking primitives that coroutine-aware synchronization is built on.
//
// A Scheduler multiplexes stackful coroutines over a fixed set of
// worker goroutines. Coroutines are started with Scheduler.Run or
// Spawn and receive a context.Context that identifies them; passing
// that context to a blocking operation lets it suspend the coroutine
// instead of blocking the worker underneath. Operations called with a
// context that carries no coroutine fall back to ordinary goroutine
// blocking, so the same code works with or without a scheduler.
//
// The parking machinery is exposed in layers:
//
//   - Handle: a resumable reference to one coroutine. Handle.Ready
//     makes a parked coroutine runnable again on any worker.
//
//   - BeginSuspend and Ticket: a two-phase suspend. BeginSuspend marks
//     the caller as suspending; the caller may then register its
//     Handle somewhere, or call Ticket.Cancel, before Ticket.Wait
//     performs the actual switch. A Ready that lands between the two
//     phases cancels the switch instead of being lost.
//
//   - WaitList: a mutex-guarded FIFO of Handles.
//
//   - Park: the double-checked suspend loop used by the channels in
//     sync/mpsc and by JoinHandle.Join.
//
// The context handed to a coroutine must not escape it. Using it from
// another goroutine while the coroutine is running corrupts its state.
package coio
