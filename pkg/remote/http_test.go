package remote

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kako-rgb/djnoday/pkg/clock"
	"github.com/kako-rgb/djnoday/pkg/request"
	"github.com/kako-rgb/djnoday/pkg/server"
)

func newPair(t *testing.T) (*HTTPStore, *httptest.Server) {
	t.Helper()
	ts := httptest.NewServer(server.New(clock.System(), 0).Router())
	t.Cleanup(ts.Close)
	h, err := NewHTTP(ts.URL)
	if err != nil {
		t.Fatalf("new http store: %v", err)
	}
	return h, ts
}

func TestNewHTTPRejectsBadURL(t *testing.T) {
	if _, err := NewHTTP("nodayz.onrender.com"); err == nil {
		t.Fatal("expected error for url without scheme")
	}
}

func TestAppendThenList(t *testing.T) {
	h, _ := newPair(t)
	ctx := context.Background()

	created, err := h.Append(ctx, "Ana", "Isabella")
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if created.ID == "" || created.Pending() {
		t.Fatalf("expected confirmed id, got %+v", created)
	}

	items, err := h.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 || items[0].ID != created.ID {
		t.Fatalf("unexpected list: %+v", items)
	}
	if items[0].Origin != request.OriginConfirmed {
		t.Fatal("listed items must be marked confirmed")
	}
}

func TestAppendFailsExplicitly(t *testing.T) {
	h, _ := newPair(t)

	if _, err := h.Append(context.Background(), "Ana", "  "); err == nil {
		t.Fatal("expected explicit rejection for empty text")
	}
	long := strings.Repeat("a", request.MaxTextLength+1)
	if _, err := h.Append(context.Background(), "Ana", long); err == nil {
		t.Fatal("expected explicit rejection for over-length text")
	}
}

func TestRemoveIdempotent(t *testing.T) {
	h, _ := newPair(t)
	ctx := context.Background()

	created, err := h.Append(ctx, "Ana", "Isabella")
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := h.Remove(ctx, created.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	// Removing an already-removed id must not be an error.
	if err := h.Remove(ctx, created.ID); err != nil {
		t.Fatalf("second remove: %v", err)
	}
}

func TestListSkipsNullEntries(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[null, {"id":"srv-1","name":"Ana","request":"Isabella","createdAt":"2025-03-01T20:00:00Z"}, null]`)
	}))
	defer ts.Close()

	h, err := NewHTTP(ts.URL)
	if err != nil {
		t.Fatalf("new http store: %v", err)
	}

	items, err := h.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 || items[0].ID != "srv-1" {
		t.Fatalf("expected the single non-null entry, got %+v", items)
	}
	if items[0].Origin != request.OriginConfirmed {
		t.Fatal("surviving entries must be marked confirmed")
	}
}

func TestListSurfacesServerFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer ts.Close()

	h, err := NewHTTP(ts.URL)
	if err != nil {
		t.Fatalf("new http store: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if _, err := h.List(ctx); err == nil {
		t.Fatal("expected list error")
	}
	if _, err := h.Append(ctx, "Ana", "Isabella"); err == nil {
		t.Fatal("expected append error")
	}
	if err := h.Remove(ctx, "x"); err == nil {
		t.Fatal("expected remove error")
	}
}
