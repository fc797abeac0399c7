package coio

import (
	"cmp"
	"context"
	"errors"
	"log/slog"
	"runtime"
	"slices"
	"sync"
	"sync/atomic"
)

var (
	// ErrSchedulerClosed is returned when spawning on, or running, a
	// scheduler that has already shut down.
	ErrSchedulerClosed = errors.New("coio: scheduler is closed")

	// ErrNoScheduler is returned by Spawn when ctx does not belong to a
	// coroutine.
	ErrNoScheduler = errors.New("coio: no scheduler in context")
)

// Options configures a Scheduler. The zero value is usable.
type Options struct {
	// Workers is the number of worker goroutines coroutines are
	// multiplexed on. Values below one mean runtime.GOMAXPROCS(0).
	Workers int

	// Logger receives debug records about worker and coroutine
	// lifecycles and wakeups, and error records for coroutine panics.
	// Nil means slog.Default().
	Logger *slog.Logger
}

// Scheduler runs coroutines cooperatively on a pool of workers.
type Scheduler struct {
	opts Options
	log  *slog.Logger
	runq *runQueue
	wg   sync.WaitGroup

	nextID  atomic.Uint64
	started atomic.Bool

	mu     sync.Mutex
	live   map[*Handle]struct{}
	closed bool
}

// Stats is a snapshot of a scheduler's state.
type Stats struct {
	Workers  int
	Live     int
	Runnable int
	Closed   bool
}

// NewScheduler returns a scheduler configured by opts. Its workers start
// with Run.
func NewScheduler(opts Options) *Scheduler {
	if opts.Workers < 1 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &Scheduler{
		opts: opts,
		log:  opts.Logger,
		runq: newRunQueue(),
		live: make(map[*Handle]struct{}),
	}
}

// Run starts the workers, runs fn as the main coroutine and waits for
// it to return. The scheduler then shuts down: workers stop and every
// coroutine still alive is cancelled, so its deferred calls run and its
// JoinHandle reports ErrCanceled. Run returns the main coroutine's
// panic as a *PanicError, or nil.
//
// A scheduler runs once; later calls return ErrSchedulerClosed.
func (s *Scheduler) Run(fn func(ctx context.Context)) error {
	if !s.started.CompareAndSwap(false, true) {
		return ErrSchedulerClosed
	}

	main, err := s.spawn(context.Background(), fn)
	if err != nil {
		return err
	}

	for i := 0; i < s.opts.Workers; i++ {
		s.wg.Add(1)
		go s.work(i)
	}

	err = main.Join(context.Background())
	s.shutdown()
	return err
}

// Spawn queues fn to run as a new coroutine. Coroutines spawned before
// Run start once the workers do.
func (s *Scheduler) Spawn(fn func(ctx context.Context)) (*JoinHandle, error) {
	return s.spawn(context.Background(), fn)
}

// Spawn queues fn as a new coroutine on the scheduler that runs the
// coroutine ctx belongs to. The new coroutine's context derives from
// ctx.
func Spawn(ctx context.Context, fn func(ctx context.Context)) (*JoinHandle, error) {
	h := FromContext(ctx)
	if h == nil {
		return nil, ErrNoScheduler
	}
	return h.sched.spawn(ctx, fn)
}

func (s *Scheduler) spawn(parent context.Context, fn func(ctx context.Context)) (*JoinHandle, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrSchedulerClosed
	}
	h := &Handle{
		id:    s.nextID.Add(1),
		sched: s,
	}
	h.join = newJoinHandle(h)
	ctx := context.WithValue(parent, ctxKey{}, h)
	h.co = newCoroutine(func() {
		fn(ctx)
	})
	s.live[h] = struct{}{}
	s.mu.Unlock()

	s.log.Debug("coroutine spawned", "coroutine", h.id)
	s.schedule(h)
	return h.join, nil
}

func (s *Scheduler) schedule(h *Handle) {
	if !s.runq.push(h) {
		s.log.Debug("wakeup after shutdown ignored", "coroutine", h.id)
	}
}

// work drains the run queue until shutdown.
func (s *Scheduler) work(id int) {
	defer s.wg.Done()

	s.log.Debug("worker started", "worker", id)
	defer s.log.Debug("worker stopped", "worker", id)

	for {
		h, ok := s.runq.pop()
		if !ok {
			return
		}
		s.run(h)
	}
}

// run resumes h until it suspends or returns. A coroutine that suspended
// is parked unless it was readied while switching away, in which case it
// goes straight back on the run queue.
func (s *Scheduler) run(h *Handle) {
	h.co.resume()
	if h.co.done {
		s.finish(h)
		return
	}
	if !h.state.CompareAndSwap(stateSuspending, stateParked) {
		s.schedule(h)
	}
}

func (s *Scheduler) finish(h *Handle) {
	s.mu.Lock()
	delete(s.live, h)
	s.mu.Unlock()

	if h.co.perr != nil {
		s.log.Error("coroutine panicked", "coroutine", h.id, "error", h.co.perr)
	} else {
		s.log.Debug("coroutine finished", "coroutine", h.id)
	}
	h.join.complete(h.co.perr)
}

// shutdown stops the workers and cancels the coroutines left behind,
// oldest first.
func (s *Scheduler) shutdown() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.runq.close()
	s.wg.Wait()

	s.mu.Lock()
	left := make([]*Handle, 0, len(s.live))
	for h := range s.live {
		left = append(left, h)
	}
	s.mu.Unlock()

	slices.SortFunc(left, func(a, b *Handle) int {
		return cmp.Compare(a.id, b.id)
	})

	for _, h := range left {
		s.log.Debug("canceling coroutine", "coroutine", h.id)
		h.state.Store(stateRunning)
		h.co.cancel()
		s.finish(h)
	}
}

// Stats returns a snapshot of the scheduler.
func (s *Scheduler) Stats() Stats {
	s.mu.Lock()
	live, closed := len(s.live), s.closed
	s.mu.Unlock()

	return Stats{
		Workers:  s.opts.Workers,
		Live:     live,
		Runnable: s.runq.len(),
		Closed:   closed,
	}
}
