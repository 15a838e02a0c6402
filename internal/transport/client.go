// Package transport is the outbound HTTP layer of the gateway: a client
// that authenticates every call with the session's bearer token and
// normalizes every failure into the fixed error taxonomy before it
// reaches a caller.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/brokerhub/admin-gateway/internal/api/metrics"
	"github.com/brokerhub/admin-gateway/internal/core/ports"
)

const defaultTimeout = 15 * time.Second

// Response is the normalized success envelope returned by every verb.
type Response struct {
	Data   json.RawMessage
	Status int
	Header http.Header
}

// Decode unmarshals the response body into v.
func (r *Response) Decode(v any) error {
	if len(r.Data) == 0 {
		return nil
	}
	return json.Unmarshal(r.Data, v)
}

// Config fixes the client's target and behavior at construction time.
type Config struct {
	BaseURL string
	Timeout time.Duration
	// DefaultHeaders are attached to every request unless overridden by
	// the request itself or the token interceptor.
	DefaultHeaders map[string]string
}

// Client wraps http.Client with the two interceptors the access-control
// core requires: the bearer token is read from persisted storage at
// dispatch time (not from the in-memory session, which may lag right
// after login), and any 401 response forces the session into a
// logged-out state through the onUnauthorized hook before the normalized
// error is returned.
type Client struct {
	base    string
	http    *http.Client
	storage ports.SessionStorage
	log     zerolog.Logger

	// onUnauthorized runs once per 401 response with the request path.
	// Session logout is idempotent, so concurrent in-flight 401s are
	// harmless. The hook itself decides whether a path is exempt (the
	// auth endpoints: a failed login must not wipe the prior session).
	onUnauthorized func(ctx context.Context, path string)

	mu      sync.RWMutex
	headers map[string]string
}

// NewClient builds a Client. A non-positive timeout falls back to the
// package default.
func NewClient(cfg Config, storage ports.SessionStorage, log zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	headers := make(map[string]string, len(cfg.DefaultHeaders)+1)
	headers["Content-Type"] = "application/json"
	for k, v := range cfg.DefaultHeaders {
		headers[k] = v
	}

	return &Client{
		base:    strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		storage: storage,
		log:     log,
		headers: headers,
	}
}

// SetUnauthorizedHook installs the forced-logout callback fired on any
// 401 response. Set once during wiring, before the first request.
func (c *Client) SetUnauthorizedHook(fn func(ctx context.Context, path string)) {
	c.onUnauthorized = fn
}

// SetAuthToken pins an Authorization default header imperatively. It is
// the escape hatch for the window right after login, before the persisted
// envelope is visible to the interceptor.
func (c *Client) SetAuthToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.headers["Authorization"] = "Bearer " + token
}

// RemoveAuthToken drops the pinned Authorization header.
func (c *Client) RemoveAuthToken() {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.headers, "Authorization")
}

func (c *Client) Get(ctx context.Context, path string) (*Response, error) {
	return c.do(ctx, http.MethodGet, path, nil)
}

func (c *Client) Post(ctx context.Context, path string, body any) (*Response, error) {
	return c.do(ctx, http.MethodPost, path, body)
}

func (c *Client) Put(ctx context.Context, path string, body any) (*Response, error) {
	return c.do(ctx, http.MethodPut, path, body)
}

func (c *Client) Patch(ctx context.Context, path string, body any) (*Response, error) {
	return c.do(ctx, http.MethodPatch, path, body)
}

func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.do(ctx, http.MethodDelete, path, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body any) (*Response, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, NormalizeFailure(fmt.Errorf("encode request: %w", err))
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return nil, NormalizeFailure(err)
	}

	c.mu.RLock()
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	c.mu.RUnlock()

	// Token interceptor: the persisted envelope is the source of truth so
	// requests dispatched before in-memory hydration still authenticate.
	// Absence leaves the headers untouched.
	if token := c.persistedToken(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.UpstreamRequestDuration.WithLabelValues(method, "0").Observe(time.Since(start).Seconds())
		return nil, NormalizeFailure(err)
	}
	defer resp.Body.Close()
	metrics.UpstreamRequestDuration.WithLabelValues(method, strconv.Itoa(resp.StatusCode)).Observe(time.Since(start).Seconds())

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NormalizeFailure(err)
	}

	if resp.StatusCode == http.StatusUnauthorized && c.onUnauthorized != nil {
		c.onUnauthorized(ctx, path)
	}

	if resp.StatusCode >= 400 {
		apiErr := NormalizeResponse(resp.StatusCode, raw)
		c.log.Debug().
			Str("method", method).
			Str("path", path).
			Int("status", resp.StatusCode).
			Msg("upstream request failed")
		return nil, apiErr
	}

	return &Response{Data: raw, Status: resp.StatusCode, Header: resp.Header}, nil
}

func (c *Client) persistedToken(ctx context.Context) string {
	env, err := c.storage.Load(ctx)
	if err != nil || env == nil {
		return ""
	}
	return env.State.Token
}
