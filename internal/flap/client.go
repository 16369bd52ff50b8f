// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package flap

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/morganforge/flap-tui/internal/sse"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrAuthRequired is returned when no bearer token is available. The
	// exchange must not be opened; the caller prompts re-authentication.
	ErrAuthRequired = errors.New("authentication required")

	// ErrRateLimited is returned when the client-side send limiter cannot
	// admit the request before the context deadline.
	ErrRateLimited = errors.New("request rate limit exceeded")
)

// StatusError reports a non-success HTTP status from the backend.
type StatusError struct {
	StatusCode int
	Body       string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("backend returned status %d: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("backend returned status %d", e.StatusCode)
}

// =============================================================================
// TOKEN PROVIDER
// =============================================================================

// TokenProvider supplies the opaque bearer token for the Authorization
// header. Implementations live in internal/auth; the token's provenance
// (Firebase, static, encrypted store) is invisible to this client.
type TokenProvider interface {
	// Token returns the current bearer token, or "" when the user is not
	// authenticated.
	Token() string
}

// StaticToken is a TokenProvider for a fixed token, used by tests and by
// the FLAP_TOKEN environment override.
type StaticToken string

// Token returns the static token value.
func (t StaticToken) Token() string { return string(t) }

// =============================================================================
// CLIENT
// =============================================================================

// Endpoint paths on the backend.
const (
	EndpointChat         = "/api/chat"
	EndpointStream       = "/api/chat/stream"
	EndpointStreamSearch = "/api/chat/stream/search"
	EndpointHealth       = "/health"
)

// DefaultTimeout bounds the synchronous fallback request. Streaming
// requests are bounded by their context instead; a chat stream legitimately
// outlives any fixed request timeout.
const DefaultTimeout = 30 * time.Second

// maxErrorBodySize caps how much of an error response body is read back.
const maxErrorBodySize = 8 * 1024

// Client talks to the Flap backend.
type Client struct {
	baseURL string
	tokens  TokenProvider
	logf    sse.Logger

	// Separate clients: the sync client enforces DefaultTimeout, the
	// streaming client must not cut long-lived response bodies short.
	httpClient   *http.Client
	streamClient *http.Client

	// Cooperative send pacing. One request per second with a small burst
	// keeps a misbehaving caller from hammering the backend.
	limiter *rate.Limiter
}

// NewClient creates a backend client. tokens must not be nil; logf may be.
func NewClient(baseURL string, tokens TokenProvider, logf sse.Logger) *Client {
	if logf == nil {
		logf = func(string, ...any) {}
	}
	return &Client{
		baseURL:      baseURL,
		tokens:       tokens,
		logf:         logf,
		httpClient:   &http.Client{Timeout: DefaultTimeout},
		streamClient: &http.Client{},
		limiter:      rate.NewLimiter(rate.Every(time.Second), 3),
	}
}

// WithTimeout overrides the synchronous request timeout.
func (c *Client) WithTimeout(d time.Duration) *Client {
	c.httpClient.Timeout = d
	return c
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// newRequest builds an authenticated JSON POST. Fails with ErrAuthRequired
// before any connection is opened when no token is available.
func (c *Client) newRequest(ctx context.Context, endpoint string, body any) (*http.Request, error) {
	token := c.tokens.Token()
	if token == "" {
		return nil, ErrAuthRequired
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	return req, nil
}

// wait admits the request through the send limiter.
func (c *Client) wait(ctx context.Context) error {
	if err := c.limiter.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrRateLimited
	}
	return nil
}

// readStatusError drains an error response into a StatusError.
func readStatusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))

	// The backend wraps errors as {"detail": "..."}; fall back to the raw
	// body when it does not.
	var detail struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &detail) == nil && detail.Detail != "" {
		return &StatusError{StatusCode: resp.StatusCode, Body: detail.Detail}
	}
	return &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
}

// =============================================================================
// SYNCHRONOUS CHAT (FALLBACK ENDPOINT)
// =============================================================================

// Chat performs a synchronous chat request against the fallback endpoint.
// Used when the streaming exchange could not be opened.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	httpReq, err := c.newRequest(ctx, EndpointChat, req)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, readStatusError(resp)
	}

	var chatResp ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if !chatResp.Success {
		if chatResp.Error != "" {
			return nil, fmt.Errorf("backend error: %s", chatResp.Error)
		}
		return nil, errors.New("backend reported failure without detail")
	}

	return &chatResp, nil
}

// =============================================================================
// HEALTH
// =============================================================================

// Health probes the backend health endpoint. No authentication required.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+EndpointHealth, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, readStatusError(resp)
	}

	var status HealthStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("failed to decode health response: %w", err)
	}
	return &status, nil
}
