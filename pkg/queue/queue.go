// Package queue implements the pending-write queue: locally originated
// requests not yet acknowledged by the remote store. Every mutation persists
// the whole queue before returning, so a crash never loses user input.
package queue

import (
	"fmt"
	"time"

	"github.com/kako-rgb/djnoday/pkg/request"
	"github.com/kako-rgb/djnoday/pkg/store"
)

// Queue is an ordered log of pending requests, newest first. It is owned by
// the reconciliation engine and is not safe for concurrent use on its own.
type Queue struct {
	p     store.Persistence
	items []*request.Request
}

// Load reads the durable queue record and reconstructs the in-memory queue.
func Load(p store.Persistence) (*Queue, error) {
	items, err := p.LoadQueue()
	if err != nil {
		return nil, fmt.Errorf("queue: load: %w", err)
	}
	for _, r := range items {
		r.Origin = request.OriginPending
	}
	return &Queue{p: p, items: items}, nil
}

// Enqueue creates a pending request with a temporary id, prepends it, and
// persists the queue before returning. It never touches the network.
func (q *Queue) Enqueue(author, text string, now time.Time) (*request.Request, error) {
	r := request.New(author, text, now)
	q.items = append([]*request.Request{r}, q.items...)
	if err := q.persist(); err != nil {
		// Roll back the in-memory insert so state matches disk.
		q.items = q.items[1:]
		return nil, err
	}
	return r.Clone(), nil
}

// Remove deletes the entry with the given id, persisting the change. It
// reports whether an entry was removed.
func (q *Queue) Remove(id string) (bool, error) {
	for i, r := range q.items {
		if r.ID == id {
			prev := q.items
			q.items = append(q.items[:i:i], q.items[i+1:]...)
			if err := q.persist(); err != nil {
				q.items = prev
				return false, err
			}
			return true, nil
		}
	}
	return false, nil
}

// Get returns a copy of the entry with the given id.
func (q *Queue) Get(id string) (*request.Request, bool) {
	for _, r := range q.items {
		if r.ID == id {
			return r.Clone(), true
		}
	}
	return nil, false
}

// List returns the queue in reverse-chronological order as copies.
func (q *Queue) List() []*request.Request {
	out := make([]*request.Request, 0, len(q.items))
	for _, r := range q.items {
		out = append(out, r.Clone())
	}
	return out
}

// Len reports the number of pending entries.
func (q *Queue) Len() int {
	return len(q.items)
}

// Filter keeps only entries for which keep returns true, persisting when
// anything was dropped. It returns the removed entries.
func (q *Queue) Filter(keep func(*request.Request) bool) ([]*request.Request, error) {
	kept := q.items[:0:0]
	var removed []*request.Request
	for _, r := range q.items {
		if keep(r) {
			kept = append(kept, r)
		} else {
			removed = append(removed, r)
		}
	}
	if len(removed) == 0 {
		return nil, nil
	}
	prev := q.items
	q.items = kept
	if err := q.persist(); err != nil {
		q.items = prev
		return nil, err
	}
	return removed, nil
}

func (q *Queue) persist() error {
	if err := q.p.SaveQueue(q.items); err != nil {
		return fmt.Errorf("queue: persist: %w", err)
	}
	return nil
}
