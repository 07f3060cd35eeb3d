package serve

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/kako-rgb/djnoday/pkg/clock"
	"github.com/kako-rgb/djnoday/pkg/request"
	"github.com/kako-rgb/djnoday/pkg/server"
)

type Serve struct {
	Addr      string
	Retention time.Duration

	Clock clock.Clock
}

// Do runs the reference remote store until the context is cancelled. Expired
// requests are swept hourly on top of the prune that happens on every list.
func (n *Serve) Do(ctx context.Context) error {
	if n.Addr == "" {
		n.Addr = ":3000"
	}
	if n.Retention <= 0 {
		n.Retention = request.Retention
	}
	if n.Clock == nil {
		n.Clock = clock.System()
	}

	s := server.New(n.Clock, n.Retention)
	srv := &http.Server{
		Addr:         n.Addr,
		Handler:      s.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	sweep := time.NewTicker(time.Hour)
	defer sweep.Stop()
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-sweep.C:
				if removed := s.Sweep(); removed > 0 {
					slog.Info("requests_expired", "count", removed)
				}
			}
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	slog.Info("serving", "addr", n.Addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
