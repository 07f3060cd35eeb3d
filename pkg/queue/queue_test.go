package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kako-rgb/djnoday/pkg/request"
	"github.com/kako-rgb/djnoday/pkg/store"
)

type memoryPersistence struct {
	queue    []*request.Request
	snapshot *store.Snapshot
	saves    int
	failSave bool
}

func (m *memoryPersistence) LoadQueue() ([]*request.Request, error) {
	out := make([]*request.Request, 0, len(m.queue))
	for _, r := range m.queue {
		out = append(out, r.Clone())
	}
	return out, nil
}

func (m *memoryPersistence) SaveQueue(items []*request.Request) error {
	if m.failSave {
		return errors.New("disk full")
	}
	m.saves++
	m.queue = make([]*request.Request, 0, len(items))
	for _, r := range items {
		m.queue = append(m.queue, r.Clone())
	}
	return nil
}

func (m *memoryPersistence) LoadSnapshot() (*store.Snapshot, error) { return m.snapshot.Clone(), nil }
func (m *memoryPersistence) SaveSnapshot(s *store.Snapshot) error {
	m.snapshot = s.Clone()
	return nil
}
func (m *memoryPersistence) Watch(ctx context.Context) (<-chan store.Event, error) {
	ch := make(chan store.Event)
	go func() {
		<-ctx.Done()
		close(ch)
	}()
	return ch, nil
}

func TestEnqueuePersistsBeforeReturning(t *testing.T) {
	mp := &memoryPersistence{}
	q, err := Load(mp)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	now := time.Now()
	r, err := q.Enqueue("Ana", "Isabella", now)
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if !r.Pending() {
		t.Fatal("enqueued request must be pending")
	}
	if mp.saves != 1 {
		t.Fatalf("expected 1 durable save, got %d", mp.saves)
	}
	if len(mp.queue) != 1 || mp.queue[0].ID != r.ID {
		t.Fatalf("durable record does not match: %+v", mp.queue)
	}
}

func TestEnqueueOrderNewestFirst(t *testing.T) {
	q, _ := Load(&memoryPersistence{})
	now := time.Now()
	first, _ := q.Enqueue("Ana", "one", now)
	second, _ := q.Enqueue("Ben", "two", now.Add(time.Second))

	got := q.List()
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[0].ID != second.ID || got[1].ID != first.ID {
		t.Fatal("expected newest first ordering")
	}
}

func TestEnqueueRollsBackOnSaveFailure(t *testing.T) {
	mp := &memoryPersistence{failSave: true}
	q, _ := Load(mp)

	if _, err := q.Enqueue("Ana", "Isabella", time.Now()); err == nil {
		t.Fatal("expected persist failure")
	}
	if q.Len() != 0 {
		t.Fatal("in-memory queue must roll back when persist fails")
	}
}

func TestRemove(t *testing.T) {
	mp := &memoryPersistence{}
	q, _ := Load(mp)
	r, _ := q.Enqueue("Ana", "Isabella", time.Now())

	removed, err := q.Remove(r.ID)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if !removed {
		t.Fatal("expected entry removed")
	}
	if len(mp.queue) != 0 {
		t.Fatal("removal must be persisted")
	}

	removed, err = q.Remove(r.ID)
	if err != nil || removed {
		t.Fatalf("second remove should be a no-op, got %v, %v", removed, err)
	}
}

func TestLoadRestoresAcrossRestart(t *testing.T) {
	mp := &memoryPersistence{}
	q, _ := Load(mp)
	r, _ := q.Enqueue("Ana", "Isabella", time.Now())

	// Simulate process restart: new queue over the same persistence.
	q2, err := Load(mp)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if q2.Len() != 1 {
		t.Fatalf("expected 1 entry after restart, got %d", q2.Len())
	}
	got, ok := q2.Get(r.ID)
	if !ok || got.Text != "Isabella" || !got.Pending() {
		t.Fatalf("unexpected restored entry: %+v", got)
	}
}

func TestFilter(t *testing.T) {
	mp := &memoryPersistence{}
	q, _ := Load(mp)
	now := time.Now()
	old, _ := q.Enqueue("Ana", "old one", now.Add(-25*time.Hour))
	fresh, _ := q.Enqueue("Ben", "fresh one", now)

	removed, err := q.Filter(func(r *request.Request) bool { return !r.Expired(now) })
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	if len(removed) != 1 || removed[0].ID != old.ID {
		t.Fatalf("expected old entry removed, got %+v", removed)
	}
	if q.Len() != 1 {
		t.Fatalf("expected 1 entry left, got %d", q.Len())
	}
	if _, ok := q.Get(fresh.ID); !ok {
		t.Fatal("fresh entry must survive")
	}
}

func TestFilterRollsBackOnSaveFailure(t *testing.T) {
	mp := &memoryPersistence{}
	q, _ := Load(mp)
	now := time.Now()
	old, _ := q.Enqueue("Ana", "old one", now.Add(-25*time.Hour))
	mp.failSave = true

	if _, err := q.Filter(func(r *request.Request) bool { return !r.Expired(now) }); err == nil {
		t.Fatal("expected persist failure")
	}
	if q.Len() != 1 {
		t.Fatal("in-memory queue must roll back when persist fails")
	}
	if _, ok := q.Get(old.ID); !ok {
		t.Fatal("filtered entry must be restored after rollback")
	}
}
