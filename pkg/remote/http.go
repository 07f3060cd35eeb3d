package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/kako-rgb/djnoday/pkg/request"
)

const defaultTimeout = 15 * time.Second

// HTTPStore talks to a remote request store over its REST surface:
// GET/POST /requests and DELETE /requests/{id}.
type HTTPStore struct {
	base   *url.URL
	client *http.Client
}

// NewHTTP builds an HTTPStore for the given base URL, e.g.
// https://nodayz.onrender.com.
func NewHTTP(baseURL string) (*HTTPStore, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("remote: parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("remote: base url %q needs scheme and host", baseURL)
	}
	return &HTTPStore{
		base:   u,
		client: &http.Client{Timeout: defaultTimeout},
	}, nil
}

func (h *HTTPStore) List(ctx context.Context) ([]*request.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.base.JoinPath("requests").String(), nil)
	if err != nil {
		return nil, fmt.Errorf("remote: build list request: %w", err)
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("remote: list: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("remote: list: unexpected status %d", resp.StatusCode)
	}

	var items []*request.Request
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, fmt.Errorf("remote: decode list: %w", err)
	}
	// JSON null elements decode to nil pointers; drop them.
	out := items[:0]
	for _, r := range items {
		if r == nil {
			continue
		}
		r.Origin = request.OriginConfirmed
		out = append(out, r)
	}
	return out, nil
}

func (h *HTTPStore) Append(ctx context.Context, author, text string) (*request.Request, error) {
	body, err := json.Marshal(map[string]string{"name": author, "request": text})
	if err != nil {
		return nil, fmt.Errorf("remote: encode append: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.base.JoinPath("requests").String(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("remote: build append request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("remote: append: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, fmt.Errorf("remote: append rejected: status %d: %s", resp.StatusCode, snippet)
	}

	var created request.Request
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return nil, fmt.Errorf("remote: decode append: %w", err)
	}
	if created.ID == "" {
		return nil, fmt.Errorf("remote: append response missing id")
	}
	created.Origin = request.OriginConfirmed
	return &created, nil
}

func (h *HTTPStore) Remove(ctx context.Context, id string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, h.base.JoinPath("requests", id).String(), nil)
	if err != nil {
		return fmt.Errorf("remote: build remove request: %w", err)
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("remote: remove: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent:
		return nil
	case http.StatusNotFound:
		// Already gone; removal is idempotent.
		return nil
	default:
		return fmt.Errorf("remote: remove: unexpected status %d", resp.StatusCode)
	}
}
