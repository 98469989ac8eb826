package crawl

import (
	"context"
	"sync"
)

// Barrier counts the outstanding units of work of one BFS level.
//
// It starts with the number of directly dispatched jobs. A unit that spawns
// follow-up work calls Register before it arrives itself, so the count can
// never reach zero while any direct or indirect unit is unfinished.
// Units that are dropped arrive through Cancel, which still decrements the
// count so that shutdown cannot strand a waiter.
type Barrier struct {
	mu        sync.Mutex
	pending   int
	arrived   int
	cancelled int
	done      chan struct{}
}

// NewBarrier returns a barrier expecting n units.
// A barrier created with n <= 0 is already released.
func NewBarrier(n int) *Barrier {
	b := &Barrier{done: make(chan struct{})}
	if n <= 0 {
		close(b.done)
		return b
	}
	b.pending = n
	return b
}

// Register adds one outstanding unit. It must be called by a unit that has
// not arrived yet; registering on a released barrier panics.
func (b *Barrier) Register() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.pending == 0 {
		panic("crawl: Register called on a released barrier")
	}
	b.pending++
}

// Arrive marks one unit as completed.
func (b *Barrier) Arrive() {
	b.arrive(false)
}

// Cancel marks one unit as dropped without completing.
func (b *Barrier) Cancel() {
	b.arrive(true)
}

func (b *Barrier) arrive(cancelled bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.pending == 0 {
		panic("crawl: arrival on a released barrier")
	}
	b.pending--
	if cancelled {
		b.cancelled++
	} else {
		b.arrived++
	}
	if b.pending == 0 {
		close(b.done)
	}
}

// Wait blocks until every unit has arrived or ctx is done.
func (b *Barrier) Wait(ctx context.Context) error {
	select {
	case <-b.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done returns a channel closed once the barrier is released.
func (b *Barrier) Done() <-chan struct{} {
	return b.done
}

// Pending returns the number of outstanding units.
func (b *Barrier) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pending
}

// Cancelled returns the number of units that arrived through Cancel.
func (b *Barrier) Cancelled() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cancelled
}

// Arrived returns the number of units that arrived through Arrive.
func (b *Barrier) Arrived() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.arrived
}
