package queue

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestQueueFIFO(t *testing.T) {
	r := require.New(t)

	q := New[int](0)
	for i := range 5 {
		r.NoError(q.TrySend(i))
	}
	r.Equal(5, q.Len())

	for i := range 5 {
		v, err := q.TryRecv()
		r.NoError(err)
		r.Equal(i, v)
	}

	_, err := q.TryRecv()
	r.ErrorIs(err, ErrEmpty)
}

func TestQueueBoundedFull(t *testing.T) {
	r := require.New(t)

	q := New[string](2)
	r.Equal(2, q.Bound())
	r.NoError(q.TrySend("a"))
	r.NoError(q.TrySend("b"))
	r.ErrorIs(q.TrySend("c"), ErrFull)
	r.Equal(2, q.Len())

	v, err := q.TryRecv()
	r.NoError(err)
	r.Equal("a", v)
	r.NoError(q.TrySend("c"))
}

func TestQueueDrainsBeforeDisconnect(t *testing.T) {
	r := require.New(t)

	q := New[int](3)
	r.NoError(q.TrySend(1))
	r.NoError(q.TrySend(2))
	q.DropSender()

	v, err := q.TryRecv()
	r.NoError(err)
	r.Equal(1, v)

	v, err = q.Recv()
	r.NoError(err)
	r.Equal(2, v)

	_, err = q.TryRecv()
	r.ErrorIs(err, ErrDisconnected)
	_, err = q.Recv()
	r.ErrorIs(err, ErrDisconnected)
}

func TestQueueReceiverDropRejectsSends(t *testing.T) {
	r := require.New(t)

	q := New[int](1)
	r.NoError(q.TrySend(1))
	q.DropReceiver()

	r.ErrorIs(q.TrySend(2), ErrDisconnected)
	r.ErrorIs(q.Send(2), ErrDisconnected)
	r.Zero(q.Len())
}

func TestQueueSenderCount(t *testing.T) {
	r := require.New(t)

	q := New[int](0)
	q.AddSender()
	q.DropSender()

	_, err := q.TryRecv()
	r.ErrorIs(err, ErrEmpty)

	q.DropSender()
	_, err = q.TryRecv()
	r.ErrorIs(err, ErrDisconnected)

	r.Panics(func() { q.DropSender() })
}

func TestQueueBlockingRecvWakesOnDisconnect(t *testing.T) {
	r := require.New(t)

	q := New[int](0)
	errc := make(chan error, 1)
	go func() {
		_, err := q.Recv()
		errc <- err
	}()

	time.Sleep(10 * time.Millisecond)
	q.DropSender()

	select {
	case err := <-errc:
		r.ErrorIs(err, ErrDisconnected)
	case <-time.After(5 * time.Second):
		r.Fail("Recv did not observe disconnect")
	}
}

func TestQueueBlockingSendWaitsForCapacity(t *testing.T) {
	r := require.New(t)

	q := New[int](1)
	r.NoError(q.Send(1))

	done := make(chan error, 1)
	go func() {
		done <- q.Send(2)
	}()

	select {
	case <-done:
		r.Fail("Send on a full queue returned early")
	case <-time.After(10 * time.Millisecond):
	}

	v, err := q.Recv()
	r.NoError(err)
	r.Equal(1, v)
	r.NoError(<-done)

	v, err = q.Recv()
	r.NoError(err)
	r.Equal(2, v)
}

func TestQueueConcurrentProducers(t *testing.T) {
	r := require.New(t)

	const (
		producers = 8
		perSender = 500
	)

	q := New[int](4)
	for range producers - 1 {
		q.AddSender()
	}

	var wg sync.WaitGroup
	for p := range producers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer q.DropSender()
			for i := range perSender {
				if err := q.Send(p*perSender + i); err != nil {
					t.Errorf("Send: %v", err)
					return
				}
			}
		}()
	}

	seen := make(map[int]bool)
	last := make([]int, producers)
	for i := range last {
		last[i] = -1
	}
	for {
		v, err := q.Recv()
		if err != nil {
			r.ErrorIs(err, ErrDisconnected)
			break
		}
		r.False(seen[v], "duplicate %d", v)
		seen[v] = true
		p, i := v/perSender, v%perSender
		r.Greater(i, last[p], "producer %d out of order", p)
		last[p] = i
	}
	wg.Wait()
	r.Len(seen, producers*perSender)
}
