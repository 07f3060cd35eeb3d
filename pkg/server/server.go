// Package server is a reference implementation of the remote request store:
// the REST surface the client reconciles against. State is held in memory
// and expired on the same retention window the clients use, so a restart
// simply starts an empty list.
package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/oklog/ulid/v2"

	"github.com/kako-rgb/djnoday/pkg/clock"
	"github.com/kako-rgb/djnoday/pkg/request"
)

// ListLimit caps how many requests a single list call returns.
const ListLimit = 50

// Server owns the shared request list and its HTTP handlers.
type Server struct {
	mu        sync.Mutex
	clock     clock.Clock
	retention time.Duration
	requests  []*request.Request
}

// New builds a Server. A zero retention falls back to the shared default.
func New(c clock.Clock, retention time.Duration) *Server {
	if c == nil {
		c = clock.System()
	}
	if retention <= 0 {
		retention = request.Retention
	}
	return &Server{clock: c, retention: retention}
}

// Router returns the HTTP routes for the request store.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/requests", s.handleList).Methods(http.MethodGet)
	r.HandleFunc("/requests", s.handleAppend).Methods(http.MethodPost)
	r.HandleFunc("/requests/{id}", s.handleRemove).Methods(http.MethodDelete)
	return r
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	s.mu.Lock()
	s.pruneLocked()
	items := make([]*request.Request, 0, len(s.requests))
	for _, it := range s.requests {
		items = append(items, it.Clone())
	}
	s.mu.Unlock()

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Created.After(items[j].Created.Time)
	})
	if len(items) > ListLimit {
		items = items[:ListLimit]
	}
	_ = json.NewEncoder(w).Encode(items)
}

func (s *Server) handleAppend(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var in struct {
		Name    string `json:"name"`
		Request string `json:"request"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	if err := request.ValidateText(in.Request); err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusBadRequest)
		return
	}

	now := s.clock.Now()
	created := request.New(in.Name, in.Request, now)
	created.ID = ulid.Make().String()
	created.Origin = request.OriginConfirmed

	s.mu.Lock()
	s.requests = append(s.requests, created)
	s.mu.Unlock()

	slog.Info("request_created", "id", created.ID, "name", created.Author)
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(created)
}

func (s *Server) handleRemove(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	id := mux.Vars(r)["id"]

	s.mu.Lock()
	found := false
	for i, it := range s.requests {
		if it.ID == id {
			s.requests = append(s.requests[:i], s.requests[i+1:]...)
			found = true
			break
		}
	}
	s.mu.Unlock()

	if !found {
		http.Error(w, `{"error":"request not found"}`, http.StatusNotFound)
		return
	}
	slog.Info("request_deleted", "id", id)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": "request deleted"})
}

// Sweep drops expired requests and returns how many were removed.
func (s *Server) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	before := len(s.requests)
	s.pruneLocked()
	return before - len(s.requests)
}

func (s *Server) pruneLocked() {
	now := s.clock.Now()
	kept := s.requests[:0:0]
	for _, it := range s.requests {
		if now.Sub(it.Created.Time) <= s.retention {
			kept = append(kept, it)
		}
	}
	s.requests = kept
}

// Len reports the number of live requests.
func (s *Server) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}
