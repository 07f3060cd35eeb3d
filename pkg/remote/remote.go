// Package remote defines the transport-agnostic contract the reconciliation
// engine consumes, plus the HTTP client that speaks to the shared store.
package remote

import (
	"context"

	"github.com/kako-rgb/djnoday/pkg/request"
)

// Store is the minimal remote contract: list, append, remove. Failures must
// be explicit errors, never silent drops; Remove is idempotent, so removing
// an already-removed id is not an error.
type Store interface {
	List(ctx context.Context) ([]*request.Request, error)
	Append(ctx context.Context, author, text string) (*request.Request, error)
	Remove(ctx context.Context, id string) error
}
