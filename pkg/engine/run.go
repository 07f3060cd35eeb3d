package engine

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/kako-rgb/djnoday/pkg/queue"
)

// Run drives the background work until ctx is cancelled: an immediate
// pull, sweep and drain, then a fixed-interval poll (pull, sweep, then
// drain the pending queue), a fixed-interval expiry sweep, and reloads
// whenever another process rewrites the durable records. Sweeping before
// each drain keeps entries that expired while queued off the wire.
func (e *Engine) Run(ctx context.Context) error {
	watch, err := e.persistence.Watch(ctx)
	if err != nil {
		// Background reloads are an optimization; polling still converges.
		fmt.Fprintf(os.Stderr, "engine: watch unavailable: %v\n", err)
		watch = nil
	}

	if err := e.Pull(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
	}
	e.Sweep()
	if err := e.Drain(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
	}

	poll := time.NewTicker(e.pollInterval)
	defer poll.Stop()
	sweep := time.NewTicker(e.sweepInterval)
	defer sweep.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-poll.C:
			if err := e.Pull(ctx); err != nil {
				fmt.Fprintf(os.Stderr, "%v\n", err)
			}
			e.Sweep()
			if err := e.Drain(ctx); err != nil {
				fmt.Fprintf(os.Stderr, "%v\n", err)
			}
		case <-sweep.C:
			e.Sweep()
		case _, ok := <-watch:
			if !ok {
				watch = nil
				continue
			}
			if err := e.Reload(); err != nil {
				fmt.Fprintf(os.Stderr, "engine: reload: %v\n", err)
			}
		}
	}
}

// Reload re-reads the durable records, picking up writes made by another
// process of this CLI against the same store.
func (e *Engine) Reload() error {
	q, err := queue.Load(e.persistence)
	if err != nil {
		return err
	}
	snap, err := e.persistence.LoadSnapshot()
	if err != nil {
		return err
	}

	e.mu.Lock()
	e.queue = q
	e.snapshot = snap
	e.recomputeLocked()
	e.mu.Unlock()
	e.emit(EventViewChanged)
	return nil
}
