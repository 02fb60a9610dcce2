// Marquee - Movie & TV Discovery Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package account

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/marquee/internal/config"
	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/models"
)

// maxErrorBodySize limits how much of an error response body is read
const maxErrorBodySize = 4096

// StatusError is a non-2xx answer from the Account Service.
type StatusError struct {
	HTTPStatus    int
	StatusCode    int
	StatusMessage string
	Path          string
}

func (e *StatusError) Error() string {
	if e.StatusMessage != "" {
		return fmt.Sprintf("%s: HTTP %d (status %d): %s", e.Path, e.HTTPStatus, e.StatusCode, e.StatusMessage)
	}
	return fmt.Sprintf("%s: HTTP %d", e.Path, e.HTTPStatus)
}

// Rejected reports whether the service answered but refused the request.
func (e *StatusError) Rejected() bool {
	return e.HTTPStatus >= 400 && e.HTTPStatus < 500
}

// statusResponse is the TMDB write/status envelope.
type statusResponse struct {
	Success       *bool  `json:"success,omitempty"`
	StatusCode    int    `json:"status_code,omitempty"`
	StatusMessage string `json:"status_message,omitempty"`
}

func (r statusResponse) ok() bool {
	return r.Success == nil || *r.Success
}

// Client is the HTTP implementation of Service.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	limiter *rate.Limiter
	cb      *gobreaker.CircuitBreaker[any]
}

var _ Service = (*Client)(nil)

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// NewClient creates an Account Service client from configuration.
func NewClient(cfg config.AccountConfig, opts ...Option) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	limit := rate.Inf
	burst := cfg.RateBurst
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	if burst < 1 {
		burst = 1
	}

	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(limit, burst),
		cb:      newBreaker("account-service", cfg.BreakerTimeout),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// do performs one request. out may be nil. A non-2xx answer yields *StatusError.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%s: rate limiter: %w", path, err)
	}

	_, err := c.cb.Execute(func() (any, error) {
		return nil, c.roundTrip(ctx, method, path, query, body, out)
	})
	recordBreakerResult(c.cb, err)
	return err
}

func (c *Client) roundTrip(ctx context.Context, method, path string, query url.Values, body, out any) error {
	if query == nil {
		query = url.Values{}
	}
	query.Set("api_key", c.apiKey)
	reqURL := c.baseURL + path + "?" + query.Encode()

	var reader io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode body: %w", path, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return fmt.Errorf("%s: failed to create request: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json;charset=utf-8")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: HTTP request failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		se := &StatusError{HTTPStatus: resp.StatusCode, Path: path}
		var status statusResponse
		if err := json.Unmarshal(readBodyForError(resp.Body), &status); err == nil {
			se.StatusCode = status.StatusCode
			se.StatusMessage = status.StatusMessage
		}
		return se
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: failed to decode response: %w", path, err)
	}
	return nil
}

// write performs a mutation and folds the TMDB status envelope into a bool.
func (c *Client) write(ctx context.Context, method, path string, s models.Session, body any) (bool, error) {
	if s.Token == "" {
		return false, nil
	}
	q := url.Values{}
	q.Set("session_id", s.Token)

	var status statusResponse
	err := c.do(ctx, method, path, q, body, &status)
	if se, ok := asRejection(err); ok {
		logging.Ctx(ctx).Warn().Str("path", path).Int("http_status", se.HTTPStatus).
			Int("status_code", se.StatusCode).Str("status_message", se.StatusMessage).
			Msg("Account Service rejected write")
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return status.ok(), nil
}

func asRejection(err error) (*StatusError, bool) {
	var se *StatusError
	if errors.As(err, &se) && se.Rejected() {
		return se, true
	}
	return nil, false
}

// readBodyForError reads a bounded prefix of an error response body.
func readBodyForError(r io.Reader) []byte {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return nil
	}
	return body
}
