// Package request defines the shared unit of state: one live music request.
package request

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	// MaxTextLength bounds the request text after trimming.
	MaxTextLength = 40

	// DefaultAuthor is used when a submitter leaves the name blank.
	DefaultAuthor = "Anonymous"

	// TempIDPrefix marks client-minted identifiers that have not been
	// acknowledged by the remote store.
	TempIDPrefix = "temp-"

	// Retention is the age after which a request expires everywhere.
	Retention = 24 * time.Hour
)

var (
	ErrTextEmpty   = errors.New("request: text required")
	ErrTextTooLong = errors.New("request: text exceeds 40 characters")
)

// Origin records which side of the system vouches for a request.
type Origin string

const (
	// OriginPending means the request exists only locally so far.
	OriginPending Origin = "pending"
	// OriginConfirmed means the remote store acknowledged the request or it
	// arrived in a pulled snapshot.
	OriginConfirmed Origin = "confirmed"
)

// Request is a single entry on the shared list.
type Request struct {
	ID      string    `json:"id"`
	Author  string    `json:"name"`
	Text    string    `json:"request"`
	Created Timestamp `json:"createdAt"`
	Origin  Origin    `json:"origin,omitempty"`
}

// New mints a pending request with a temporary id. Author and text are
// trimmed; a blank author becomes DefaultAuthor. Text is assumed validated.
func New(author, text string, now time.Time) *Request {
	author = strings.TrimSpace(author)
	if author == "" {
		author = DefaultAuthor
	}
	return &Request{
		ID:      TempIDPrefix + uuid.NewString(),
		Author:  author,
		Text:    strings.TrimSpace(text),
		Created: Timestamp{Time: now},
		Origin:  OriginPending,
	}
}

// ValidateText rejects empty or over-length text before it can enter the
// pending queue. Length is measured in runes after trimming.
func ValidateText(text string) error {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ErrTextEmpty
	}
	if utf8.RuneCountInString(trimmed) > MaxTextLength {
		return ErrTextTooLong
	}
	return nil
}

// Normalize produces the identity key used for deduplication: trimmed,
// case-folded text. Author is deliberately excluded.
func Normalize(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

// Pending reports whether the request is still optimistic.
func (r *Request) Pending() bool {
	return r.Origin == OriginPending || strings.HasPrefix(r.ID, TempIDPrefix)
}

// ExpiresAt derives the expiry instant from Created so the two can never
// drift apart.
func (r *Request) ExpiresAt() time.Time {
	return r.Created.Add(Retention)
}

// Expired reports whether the request is past the retention window at now.
func (r *Request) Expired(now time.Time) bool {
	return now.Sub(r.Created.Time) > Retention
}

// Clone returns an independent copy.
func (r *Request) Clone() *Request {
	if r == nil {
		return nil
	}
	cp := *r
	return &cp
}
