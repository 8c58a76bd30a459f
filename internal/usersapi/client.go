// Package usersapi is the outbound client for the remote users endpoint.
//
// Submit POSTs one registration record as JSON to {base}/users.  Any 2xx is
// success; every other status, and every transport error, is returned as an
// error.  There is no retry and, unless the caller configures one, no
// timeout.
package usersapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/yanizio/regform/internal/registration"
)

// compile-time assertion
var _ registration.Submitter = (*Client)(nil)

// StatusError reports a non-2xx response.
type StatusError struct {
	StatusCode int
	Body       string // first KiB of the response body
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("users api: unexpected status %d", e.StatusCode)
}

// Options tunes a Client.  Zero values are valid.
type Options struct {
	Token   string        // sent as a bearer token when non-empty
	Timeout time.Duration // 0 means no timeout
	HTTP    *http.Client  // overrides the default client (tests)
}

// Client posts registrations to one base URL.
type Client struct {
	endpoint string
	token    string
	http     *http.Client
}

// New builds a Client for baseURL, e.g. "https://api.example.com".
func New(baseURL string, opts Options) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("users api base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("users api base url %q: scheme must be http or https", baseURL)
	}
	hc := opts.HTTP
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	return &Client{
		endpoint: u.JoinPath("users").String(),
		token:    opts.Token,
		http:     hc,
	}, nil
}

// Endpoint returns the resolved POST target.
func (c *Client) Endpoint() string { return c.endpoint }

// Submit implements registration.Submitter.
func (c *Client) Submit(ctx context.Context, rec registration.Record) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode registration: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build users request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("post %s: %w", c.endpoint, err)
	}
	defer resp.Body.Close()

	zap.S().Debugw("users api response",
		"status", resp.StatusCode,
		"elapsed", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &StatusError{StatusCode: resp.StatusCode, Body: string(snippet)}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
