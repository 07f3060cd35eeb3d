// Package engine is the reconciliation core: it merges the durable pending
// queue with the last remote snapshot into one ordered view, pushes pending
// requests opportunistically, expires old entries, and surfaces a read-only
// projection to renderers.
package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/kako-rgb/djnoday/pkg/clock"
	"github.com/kako-rgb/djnoday/pkg/dedup"
	"github.com/kako-rgb/djnoday/pkg/queue"
	"github.com/kako-rgb/djnoday/pkg/remote"
	"github.com/kako-rgb/djnoday/pkg/request"
	"github.com/kako-rgb/djnoday/pkg/store"
)

var (
	// ErrDuplicate is returned when an equivalent request, pending or
	// confirmed, is already visible.
	ErrDuplicate = errors.New("engine: duplicate request")
	// ErrNotFound is returned when a delete targets an unknown id.
	ErrNotFound = errors.New("engine: request not found")
)

const (
	defaultPollInterval  = 10 * time.Second
	defaultSweepInterval = time.Minute
	pushTimeout          = 30 * time.Second
)

// EventType classifies engine notifications.
type EventType int

const (
	// EventViewChanged means the merged view was recomputed.
	EventViewChanged EventType = iota
	// EventStale means a pull failed and the projection serves cached data.
	EventStale
)

// Event is emitted on the Events channel after engine state changes.
type Event struct {
	Type EventType
}

// Options configures a new Engine. Remote and Persistence are required.
type Options struct {
	Clock         clock.Clock
	Remote        remote.Store
	Persistence   store.Persistence
	PollInterval  time.Duration
	SweepInterval time.Duration
	Retention     time.Duration
}

// Engine owns all client-side request state. All mutating operations take the
// engine mutex, so callers observe no partial updates; network calls run
// outside the lock and reconcile their results against current state.
type Engine struct {
	mu          sync.Mutex
	clock       clock.Clock
	remote      remote.Store
	persistence store.Persistence

	queue    *queue.Queue
	snapshot *store.Snapshot
	index    *dedup.Index
	merged   []*request.Request

	failedPulls int
	itemErrs    map[string]string

	pollInterval  time.Duration
	sweepInterval time.Duration
	retention     time.Duration

	events chan Event
}

// New reads the durable records and builds a ready engine. Nothing is served
// before this completes, so restarts always start from the persisted state.
func New(o Options) (*Engine, error) {
	if o.Remote == nil {
		return nil, errors.New("engine: remote store required")
	}
	if o.Persistence == nil {
		return nil, errors.New("engine: persistence required")
	}
	if o.Clock == nil {
		o.Clock = clock.System()
	}
	if o.PollInterval <= 0 {
		o.PollInterval = defaultPollInterval
	}
	if o.SweepInterval <= 0 {
		o.SweepInterval = defaultSweepInterval
	}
	if o.Retention <= 0 {
		o.Retention = request.Retention
	}

	q, err := queue.Load(o.Persistence)
	if err != nil {
		return nil, err
	}
	snap, err := o.Persistence.LoadSnapshot()
	if err != nil {
		return nil, err
	}

	e := &Engine{
		clock:         o.Clock,
		remote:        o.Remote,
		persistence:   o.Persistence,
		queue:         q,
		snapshot:      snap,
		index:         dedup.New(),
		itemErrs:      make(map[string]string),
		pollInterval:  o.PollInterval,
		sweepInterval: o.SweepInterval,
		retention:     o.Retention,
		events:        make(chan Event, 64),
	}
	e.mu.Lock()
	e.recomputeLocked()
	e.mu.Unlock()
	return e, nil
}

// Events exposes the notification channel. Events are dropped rather than
// blocking the engine when the consumer lags; consumers should treat any
// event as "re-read the projection".
func (e *Engine) Events() <-chan Event {
	return e.events
}

func (e *Engine) emit(t EventType) {
	select {
	case e.events <- Event{Type: t}:
	default:
	}
}

// Submit validates and deduplicates text, appends a pending request to the
// durable queue, and schedules a background push. It returns before any
// network traffic happens; the new request is immediately visible.
func (e *Engine) Submit(author, text string) (*request.Request, error) {
	if err := request.ValidateText(text); err != nil {
		return nil, err
	}

	e.mu.Lock()
	if e.index.Exists(text) {
		e.mu.Unlock()
		return nil, ErrDuplicate
	}
	r, err := e.queue.Enqueue(author, text, e.clock.Now())
	if err != nil {
		e.mu.Unlock()
		return nil, err
	}
	e.recomputeLocked()
	e.mu.Unlock()
	e.emit(EventViewChanged)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), pushTimeout)
		defer cancel()
		_ = e.Push(ctx, r.ID) // failures stay queued; the poll loop retries
	}()
	return r, nil
}

// Delete removes the request with the given id. Pending requests are removed
// locally without a network call; confirmed requests are removed from the
// remote store first and retained locally if that fails.
func (e *Engine) Delete(ctx context.Context, id string) error {
	e.mu.Lock()
	if _, ok := e.queue.Get(id); ok {
		if _, err := e.queue.Remove(id); err != nil {
			e.mu.Unlock()
			return err
		}
		delete(e.itemErrs, id)
		e.recomputeLocked()
		e.mu.Unlock()
		e.emit(EventViewChanged)
		return nil
	}
	if e.findSnapshotLocked(id) == nil {
		e.mu.Unlock()
		return ErrNotFound
	}
	e.mu.Unlock()

	if err := e.remote.Remove(ctx, id); err != nil {
		e.mu.Lock()
		e.itemErrs[id] = "delete failed"
		e.mu.Unlock()
		e.emit(EventViewChanged)
		return fmt.Errorf("engine: delete %s: %w", id, err)
	}

	e.mu.Lock()
	e.dropSnapshotLocked(id)
	delete(e.itemErrs, id)
	e.persistSnapshotLocked()
	e.recomputeLocked()
	e.mu.Unlock()
	e.emit(EventViewChanged)
	return nil
}

// Sweep removes every request older than the retention window from the view
// and the durable records. It needs no network access and returns the number
// of requests dropped.
func (e *Engine) Sweep() int {
	e.mu.Lock()
	now := e.clock.Now()
	removed := 0

	dropped, err := e.queue.Filter(func(r *request.Request) bool {
		return now.Sub(r.Created.Time) <= e.retention
	})
	if err == nil {
		removed += len(dropped)
	}

	if e.snapshot != nil {
		kept := e.snapshot.Requests[:0:0]
		for _, r := range e.snapshot.Requests {
			if now.Sub(r.Created.Time) <= e.retention {
				kept = append(kept, r)
			}
		}
		if len(kept) != len(e.snapshot.Requests) {
			removed += len(e.snapshot.Requests) - len(kept)
			e.snapshot.Requests = kept
			e.persistSnapshotLocked()
		}
	}

	if removed > 0 {
		e.recomputeLocked()
	}
	e.mu.Unlock()
	if removed > 0 {
		e.emit(EventViewChanged)
	}
	return removed
}

// Projected is one row of the read-only view served to renderers.
type Projected struct {
	ID         string
	Author     string
	Text       string
	AgeDisplay string
	Origin     request.Origin
	Pending    bool
	Failed     string
}

// View is the projection contract: an ordered, always-current list plus
// global status flags.
type View struct {
	Items    []Projected
	Stale    bool
	PulledAt time.Time
}

// Projection returns the current merged view annotated for display.
func (e *Engine) Projection() View {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.clock.Now()
	v := View{Items: make([]Projected, 0, len(e.merged)), Stale: e.failedPulls > 0}
	if e.snapshot != nil {
		v.PulledAt = e.snapshot.PulledAt.Time
	}
	for _, r := range e.merged {
		// The merged view is only rebuilt on mutation; items can age past
		// the retention window between rebuilds, so filter at read time too.
		if now.Sub(r.Created.Time) > e.retention {
			continue
		}
		v.Items = append(v.Items, Projected{
			ID:         r.ID,
			Author:     r.Author,
			Text:       r.Text,
			AgeDisplay: humanize.RelTime(r.Created.Time, now, "ago", "from now"),
			Origin:     r.Origin,
			Pending:    r.Pending(),
			Failed:     e.itemErrs[r.ID],
		})
	}
	return v
}

// PendingCount reports how many requests still await remote acknowledgment.
func (e *Engine) PendingCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.queue.Len()
}

// recomputeLocked rebuilds the merged view and the dedup index: pending
// requests first, then confirmed requests not shadowed by a pending
// duplicate, everything ordered by creation time descending and bounded by
// the retention window.
func (e *Engine) recomputeLocked() {
	now := e.clock.Now()
	merged := make([]*request.Request, 0, e.queue.Len())

	shadow := make(map[string]struct{}, e.queue.Len())
	for _, r := range e.queue.List() {
		if now.Sub(r.Created.Time) > e.retention {
			continue
		}
		merged = append(merged, r)
		shadow[request.Normalize(r.Text)] = struct{}{}
	}
	if e.snapshot != nil {
		for _, r := range e.snapshot.Requests {
			if now.Sub(r.Created.Time) > e.retention {
				continue
			}
			if _, dup := shadow[request.Normalize(r.Text)]; dup {
				continue
			}
			merged = append(merged, r.Clone())
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		if merged[i].Created.Equal(merged[j].Created.Time) {
			return merged[i].ID < merged[j].ID
		}
		return merged[i].Created.After(merged[j].Created.Time)
	})

	e.merged = merged
	e.index.Rebuild(merged)
}

func (e *Engine) findSnapshotLocked(id string) *request.Request {
	if e.snapshot == nil {
		return nil
	}
	for _, r := range e.snapshot.Requests {
		if r.ID == id {
			return r
		}
	}
	return nil
}

func (e *Engine) dropSnapshotLocked(id string) {
	if e.snapshot == nil {
		return
	}
	for i, r := range e.snapshot.Requests {
		if r.ID == id {
			e.snapshot.Requests = append(e.snapshot.Requests[:i], e.snapshot.Requests[i+1:]...)
			return
		}
	}
}

func (e *Engine) persistSnapshotLocked() {
	if err := e.persistence.SaveSnapshot(e.snapshot); err != nil {
		// The in-memory view stays correct; the next successful pull or
		// mutation rewrites the record.
		fmt.Fprintf(os.Stderr, "engine: persist snapshot: %v\n", err)
	}
}
