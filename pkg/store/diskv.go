// Package store is the local durable layer: it persists the pending-write
// queue and the last good remote snapshot so a process restart loses at most
// an in-flight network call, never user input.
package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/peterbourgon/diskv/v3"

	"github.com/kako-rgb/djnoday/pkg/request"
)

const (
	// QueueRecord holds the ordered pending-write queue.
	QueueRecord = "pendingQueue"
	// SnapshotRecord holds the last successful remote pull.
	SnapshotRecord = "remoteSnapshotCache"
)

// Snapshot is the most recent confirmed state pulled from the remote store,
// replaced wholesale on every successful pull.
type Snapshot struct {
	PulledAt request.Timestamp  `json:"pulledAt"`
	Requests []*request.Request `json:"requests"`
}

// Clone returns an independent copy of the snapshot.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	cp := &Snapshot{PulledAt: s.PulledAt, Requests: make([]*request.Request, 0, len(s.Requests))}
	for _, r := range s.Requests {
		cp.Requests = append(cp.Requests, r.Clone())
	}
	return cp
}

// Persistence defines the durable contract consumed by the engine.
type Persistence interface {
	LoadQueue() ([]*request.Request, error)
	SaveQueue(items []*request.Request) error
	LoadSnapshot() (*Snapshot, error)
	SaveSnapshot(s *Snapshot) error
	Watch(ctx context.Context) (<-chan Event, error)
}

// Load creates a Persistence backed by diskv using the provided config.
func Load(cfg Config) (Persistence, error) {
	if cfg == nil {
		var err error
		cfg, err = LoadConfig()
		if err != nil {
			return nil, err
		}
	}

	basePath := cfg.BasePath()
	return &persistence{d: diskv.New(diskv.Options{
		BasePath:     basePath,
		Transform:    func(string) []string { return nil },
		CacheSizeMax: 1024 * 1024, // 1MB
	}), basePath: basePath}, nil
}

type persistence struct {
	d        *diskv.Diskv
	basePath string
}

func (p *persistence) LoadQueue() ([]*request.Request, error) {
	var items []*request.Request
	if err := p.read(QueueRecord, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (p *persistence) SaveQueue(items []*request.Request) error {
	if items == nil {
		items = []*request.Request{}
	}
	return p.write(QueueRecord, items)
}

func (p *persistence) LoadSnapshot() (*Snapshot, error) {
	if !p.d.Has(SnapshotRecord) {
		return nil, nil
	}
	var snap Snapshot
	if err := p.read(SnapshotRecord, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (p *persistence) SaveSnapshot(s *Snapshot) error {
	if s == nil {
		if !p.d.Has(SnapshotRecord) {
			return nil
		}
		return p.d.Erase(SnapshotRecord)
	}
	return p.write(SnapshotRecord, s)
}

func (p *persistence) read(key string, target interface{}) error {
	if !p.d.Has(key) {
		return nil
	}
	val, err := p.d.Read(key)
	if err != nil {
		return fmt.Errorf("store: read %s: %w", key, err)
	}
	if len(val) == 0 {
		return nil
	}
	if err := json.Unmarshal(val, target); err != nil {
		return fmt.Errorf("store: decode %s: %w", key, err)
	}
	return nil
}

func (p *persistence) write(key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("store: encode %s: %w", key, err)
	}
	if err := p.d.Write(key, data); err != nil {
		return fmt.Errorf("store: write %s: %w", key, err)
	}
	return nil
}
