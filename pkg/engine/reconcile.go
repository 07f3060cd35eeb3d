package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/kako-rgb/djnoday/pkg/request"
	"github.com/kako-rgb/djnoday/pkg/store"
)

// A snapshotSource is one step of the ordered fallback chain the engine
// walks when refreshing confirmed state: remote store, then the cached
// snapshot, then an empty list. Modeling the chain explicitly keeps the
// precedence order testable.
type snapshotSource struct {
	name string
	load func(ctx context.Context) (*store.Snapshot, error)
}

func (e *Engine) snapshotSources() []snapshotSource {
	return []snapshotSource{
		{name: "remote", load: e.loadRemote},
		{name: "cache", load: e.loadCache},
		{name: "empty", load: e.loadEmpty},
	}
}

func (e *Engine) loadRemote(ctx context.Context) (*store.Snapshot, error) {
	items, err := e.remote.List(ctx)
	if err != nil {
		return nil, err
	}
	// Store implementations may hand back nil entries (a remote payload with
	// null elements, for instance); drop them before marking and sorting.
	live := items[:0:0]
	for _, r := range items {
		if r == nil {
			continue
		}
		r.Origin = request.OriginConfirmed
		live = append(live, r)
	}
	items = live
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Created.After(items[j].Created.Time)
	})
	return &store.Snapshot{
		PulledAt: request.Timestamp{Time: e.clock.Now()},
		Requests: items,
	}, nil
}

func (e *Engine) loadCache(context.Context) (*store.Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.snapshot == nil {
		return nil, errors.New("engine: no cached snapshot")
	}
	return e.snapshot.Clone(), nil
}

func (e *Engine) loadEmpty(context.Context) (*store.Snapshot, error) {
	return &store.Snapshot{}, nil
}

// Pull refreshes confirmed state through the fallback chain. Only a remote
// success replaces the durable snapshot and clears the stale flag; a fallback
// keeps serving the previous merge and returns the remote error so callers
// can report it.
func (e *Engine) Pull(ctx context.Context) error {
	var remoteErr error
	for _, src := range e.snapshotSources() {
		snap, err := src.load(ctx)
		if err != nil {
			if src.name == "remote" {
				remoteErr = fmt.Errorf("engine: pull: %w", err)
			}
			continue
		}

		e.mu.Lock()
		if src.name == "remote" {
			e.adoptSnapshotLocked(snap)
		} else {
			e.failedPulls++
		}
		e.recomputeLocked()
		e.mu.Unlock()

		e.emit(EventViewChanged)
		if remoteErr != nil {
			e.emit(EventStale)
		}
		return remoteErr
	}
	return remoteErr
}

// adoptSnapshotLocked replaces the snapshot wholesale and reconciles the
// pending queue against it: a pending request whose text now matches a
// confirmed one is treated as acknowledged and dequeued.
func (e *Engine) adoptSnapshotLocked(snap *store.Snapshot) {
	confirmed := make(map[string]struct{}, len(snap.Requests))
	for _, r := range snap.Requests {
		confirmed[request.Normalize(r.Text)] = struct{}{}
	}
	if _, err := e.queue.Filter(func(r *request.Request) bool {
		_, ok := confirmed[request.Normalize(r.Text)]
		return !ok
	}); err != nil {
		fmt.Fprintf(os.Stderr, "engine: reconcile queue: %v\n", err)
	}

	e.snapshot = snap
	e.failedPulls = 0
	e.persistSnapshotLocked()
}

// Push sends one pending request to the remote store and rewrites its
// temporary id in place on success. A push whose earlier acknowledgment was
// lost is detected through the snapshot before resubmitting, so retries
// never double-post.
func (e *Engine) Push(ctx context.Context, id string) error {
	e.mu.Lock()
	item, ok := e.queue.Get(id)
	if !ok {
		e.mu.Unlock()
		return nil
	}
	if e.clock.Now().Sub(item.Created.Time) > e.retention {
		// Expired while queued, e.g. the client was offline past the
		// retention window. Dropping it here keeps expired content from
		// reappearing on the shared list with a fresh server timestamp.
		_, err := e.queue.Remove(id)
		e.recomputeLocked()
		e.mu.Unlock()
		e.emit(EventViewChanged)
		return err
	}
	if twin := e.snapshotTwinLocked(item.Text); twin != nil {
		// The earlier push landed but its acknowledgment never arrived.
		_, err := e.queue.Remove(id)
		e.recomputeLocked()
		e.mu.Unlock()
		e.emit(EventViewChanged)
		return err
	}
	author, text := item.Author, item.Text
	e.mu.Unlock()

	created, err := e.remote.Append(ctx, author, text)
	if err != nil {
		return fmt.Errorf("engine: push %s: %w", id, err)
	}

	e.mu.Lock()
	e.confirmLocked(id, created)
	e.mu.Unlock()
	e.emit(EventViewChanged)
	return nil
}

// Drain pushes every pending request, oldest first, and joins any errors.
// Items that fail stay queued for the next cycle.
func (e *Engine) Drain(ctx context.Context) error {
	pending := e.queueIDsOldestFirst()
	var errs []error
	for _, id := range pending {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := e.Push(ctx, id); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (e *Engine) queueIDsOldestFirst() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	items := e.queue.List()
	ids := make([]string, 0, len(items))
	for i := len(items) - 1; i >= 0; i-- {
		ids = append(ids, items[i].ID)
	}
	return ids
}

func (e *Engine) snapshotTwinLocked(text string) *request.Request {
	if e.snapshot == nil {
		return nil
	}
	key := request.Normalize(text)
	for _, r := range e.snapshot.Requests {
		if request.Normalize(r.Text) == key {
			return r
		}
	}
	return nil
}

// confirmLocked promotes a pending request in place: same position, same
// client createdAt, confirmed id and origin. If the pending entry was deleted
// while the push was in flight, the remote copy is deleted again instead.
func (e *Engine) confirmLocked(tempID string, created *request.Request) {
	item, ok := e.queue.Get(tempID)
	if !ok {
		serverID := created.ID
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), pushTimeout)
			defer cancel()
			_ = e.remote.Remove(ctx, serverID)
		}()
		return
	}
	if _, err := e.queue.Remove(tempID); err != nil {
		fmt.Fprintf(os.Stderr, "engine: dequeue %s: %v\n", tempID, err)
	}

	promoted := item.Clone()
	promoted.ID = created.ID
	promoted.Origin = request.OriginConfirmed
	// Created stays the client timestamp so the row keeps its position.

	if e.snapshot == nil {
		e.snapshot = &store.Snapshot{}
	}
	e.snapshot.Requests = append(e.snapshot.Requests, promoted)
	e.persistSnapshotLocked()
	e.recomputeLocked()
}
