package store

import (
	"context"
	"testing"
	"time"

	"github.com/kako-rgb/djnoday/pkg/request"
)

type testConfig struct {
	path string
}

func (t *testConfig) BasePath() string  { return t.path }
func (t *testConfig) RemoteURL() string { return "" }
func (t *testConfig) Author() string    { return "" }

func load(t *testing.T, dir string) Persistence {
	t.Helper()
	p, err := Load(&testConfig{path: dir})
	if err != nil {
		t.Fatalf("load persistence: %v", err)
	}
	return p
}

func TestQueueRoundTrip(t *testing.T) {
	dir := t.TempDir()
	p := load(t, dir)

	items, err := p.LoadQueue()
	if err != nil {
		t.Fatalf("load empty queue: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected empty queue, got %d items", len(items))
	}

	now := time.Date(2025, 3, 1, 20, 0, 0, 0, time.UTC)
	saved := []*request.Request{
		request.New("Ana", "Isabella", now),
		request.New("Ben", "Free", now.Add(-time.Minute)),
	}
	if err := p.SaveQueue(saved); err != nil {
		t.Fatalf("save queue: %v", err)
	}

	// A fresh Persistence must see the same records, as after a restart.
	reloaded, err := load(t, dir).LoadQueue()
	if err != nil {
		t.Fatalf("reload queue: %v", err)
	}
	if len(reloaded) != 2 {
		t.Fatalf("expected 2 items after reload, got %d", len(reloaded))
	}
	if reloaded[0].ID != saved[0].ID || reloaded[0].Text != "Isabella" {
		t.Fatalf("unexpected first item: %+v", reloaded[0])
	}
	if !reloaded[0].Pending() {
		t.Fatal("pending origin must survive the round trip")
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	dir := t.TempDir()
	p := load(t, dir)

	snap, err := p.LoadSnapshot()
	if err != nil {
		t.Fatalf("load missing snapshot: %v", err)
	}
	if snap != nil {
		t.Fatalf("expected nil snapshot, got %+v", snap)
	}

	now := time.Date(2025, 3, 1, 20, 0, 0, 0, time.UTC)
	saved := &Snapshot{
		PulledAt: request.Timestamp{Time: now},
		Requests: []*request.Request{
			{ID: "01J", Author: "Ana", Text: "Isabella", Created: request.Timestamp{Time: now}, Origin: request.OriginConfirmed},
		},
	}
	if err := p.SaveSnapshot(saved); err != nil {
		t.Fatalf("save snapshot: %v", err)
	}

	got, err := load(t, dir).LoadSnapshot()
	if err != nil {
		t.Fatalf("reload snapshot: %v", err)
	}
	if got == nil || len(got.Requests) != 1 {
		t.Fatalf("unexpected snapshot: %+v", got)
	}
	if !got.PulledAt.Equal(now) {
		t.Fatalf("expected pulledAt %v, got %v", now, got.PulledAt)
	}
	if got.Requests[0].Origin != request.OriginConfirmed {
		t.Fatalf("expected confirmed origin, got %q", got.Requests[0].Origin)
	}

	if err := p.SaveSnapshot(nil); err != nil {
		t.Fatalf("erase snapshot: %v", err)
	}
	got, err = p.LoadSnapshot()
	if err != nil {
		t.Fatalf("load erased snapshot: %v", err)
	}
	if got != nil {
		t.Fatal("expected snapshot gone after erase")
	}
}

func TestWatchSeesQueueWrites(t *testing.T) {
	dir := t.TempDir()
	p := load(t, dir)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := p.Watch(ctx)
	if err != nil {
		t.Fatalf("watch: %v", err)
	}

	if err := p.SaveQueue([]*request.Request{request.New("Ana", "Isabella", time.Now())}); err != nil {
		t.Fatalf("save queue: %v", err)
	}

	select {
	case ev := <-events:
		if ev.Record != QueueRecord {
			t.Fatalf("expected %s event, got %s", QueueRecord, ev.Record)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for watch event")
	}
}
