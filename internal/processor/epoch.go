package processor

import (
	"context"
	"sync"
	"time"
)

// Epoch is the shared generation cell that tempo sequences validate
// themselves against. Exactly one generation is current at a time;
// sequences compare-and-halt rather than being externally cancelled.
type Epoch struct {
	mu      sync.Mutex
	gen     uint64
	changed chan struct{}
}

// NewEpoch creates an epoch cell at generation zero
func NewEpoch() *Epoch {
	return &Epoch{changed: make(chan struct{})}
}

// Advance mints a strictly greater generation, publishes it, and wakes
// every waiter
func (e *Epoch) Advance() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.gen++
	close(e.changed)
	e.changed = make(chan struct{})
	return e.gen
}

// Current returns the published generation
func (e *Epoch) Current() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.gen
}

// Wait sleeps up to d on behalf of generation gen. It returns false as soon
// as gen is superseded or the context is cancelled, and true only if the
// full wait elapsed with gen still current.
func (e *Epoch) Wait(ctx context.Context, gen uint64, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	for {
		e.mu.Lock()
		current, changed := e.gen, e.changed
		e.mu.Unlock()

		if current != gen {
			return false
		}

		select {
		case <-timer.C:
			return e.Current() == gen
		case <-ctx.Done():
			return false
		case <-changed:
			// Woken by a publish; loop to re-check the generation.
		}
	}
}
