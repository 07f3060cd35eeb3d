// Package dedup answers "does an equivalent request already exist?" over the
// merged view. The index is rebuilt wholesale on every view change; the view
// is small enough that recomputation is cheaper than keeping an incremental
// structure correct.
package dedup

import (
	"github.com/kako-rgb/djnoday/pkg/request"
)

// Index holds the normalized text keys currently visible.
type Index struct {
	keys map[string]string // normalized text -> id of the holder
}

// New returns an empty index.
func New() *Index {
	return &Index{keys: make(map[string]string)}
}

// Rebuild replaces the index contents with the given items. Identity is the
// normalized text only; the author does not participate.
func (i *Index) Rebuild(items []*request.Request) {
	keys := make(map[string]string, len(items))
	for _, r := range items {
		if r == nil {
			continue
		}
		key := request.Normalize(r.Text)
		if key == "" {
			continue
		}
		if _, taken := keys[key]; !taken {
			keys[key] = r.ID
		}
	}
	i.keys = keys
}

// Exists reports whether an equivalent request is already present, pending or
// confirmed.
func (i *Index) Exists(text string) bool {
	_, ok := i.keys[request.Normalize(text)]
	return ok
}

// Holder returns the id of the request that owns the given text, if any.
func (i *Index) Holder(text string) (string, bool) {
	id, ok := i.keys[request.Normalize(text)]
	return id, ok
}

// Len reports the number of distinct texts indexed.
func (i *Index) Len() int {
	return len(i.keys)
}
