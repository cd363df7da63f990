package feeds

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

var (
	// ErrStatus marks a non-2xx HTTP response.
	ErrStatus = errors.New("unexpected HTTP status")
	// ErrSoftError marks an error code embedded in a 2xx payload.
	ErrSoftError = errors.New("provider reported error")
	// ErrRetriesExhausted is returned once every attempt has failed.
	ErrRetriesExhausted = errors.New("retries exhausted")
)

// RetryPolicy is the bounded linear backoff schedule.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// DefaultRetryPolicy is three attempts, waiting 500ms then 1s.
var DefaultRetryPolicy = RetryPolicy{MaxAttempts: 3, BaseDelay: 500 * time.Millisecond}

// Delay returns the wait before the given 1-based attempt:
// zero for the first, (attempt-1)*BaseDelay afterwards.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if attempt <= 1 || p.BaseDelay <= 0 {
		return 0
	}
	return time.Duration(attempt-1) * p.BaseDelay
}

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// ContextSleep is the production Sleeper.
func ContextSleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Request describes one provider call.
type Request struct {
	URL    string
	Header http.Header
	// SoftErrorPaths are checked in a decoded 2xx payload; a non-zero,
	// non-empty value at any of them fails the attempt.
	SoftErrorPaths []string
}

// Client fetches JSON documents with retry.
type Client struct {
	httpClient *http.Client
	policy     RetryPolicy
	sleep      Sleeper
	logger     zerolog.Logger
}

// NewClient creates a client. A nil httpClient uses a default one with a
// 10 second timeout.
func NewClient(httpClient *http.Client, policy RetryPolicy, logger zerolog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	return &Client{
		httpClient: httpClient,
		policy:     policy,
		sleep:      ContextSleep,
		logger:     logger,
	}
}

// WithSleeper replaces the backoff sleeper. Used by tests to observe the
// delay schedule without waiting.
func (c *Client) WithSleeper(s Sleeper) *Client {
	c.sleep = s
	return c
}

// GetJSON performs the request, retrying transient failures, and returns
// the decoded payload. Numbers decode as json.Number.
func (c *Client) GetJSON(ctx context.Context, req Request) (any, error) {
	var lastErr error
	for attempt := 1; attempt <= c.policy.MaxAttempts; attempt++ {
		if attempt > 1 {
			delay := c.policy.Delay(attempt)
			if err := c.sleep(ctx, delay); err != nil {
				return nil, fmt.Errorf("feeds: backoff before attempt %d: %w", attempt, err)
			}
		}
		payload, err := c.once(ctx, req)
		if err == nil {
			return payload, nil
		}
		lastErr = err
		c.logger.Warn().
			Err(err).
			Int("attempt", attempt).
			Int("max_attempts", c.policy.MaxAttempts).
			Str("url", req.URL).
			Msg("feed request failed")
	}
	return nil, fmt.Errorf("feeds: %w after %d attempts: %w", ErrRetriesExhausted, c.policy.MaxAttempts, lastErr)
}

func (c *Client) once(ctx context.Context, req Request) (any, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	if httpReq.Header.Get("Accept") == "" {
		httpReq.Header.Set("Accept", "application/json")
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", redact(req.URL), err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return nil, fmt.Errorf("%w: HTTP %d from %s", ErrStatus, resp.StatusCode, redact(req.URL))
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	var payload any
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode %s: %w", redact(req.URL), err)
	}
	if path, code, ok := softError(payload, req.SoftErrorPaths); ok {
		return nil, fmt.Errorf("%w: %s=%s", ErrSoftError, path, code)
	}
	return payload, nil
}

// softError reports the first embedded error code that signals failure.
func softError(payload any, paths []string) (string, string, bool) {
	for _, p := range paths {
		v, ok := lookup(payload, p)
		if !ok {
			continue
		}
		switch x := v.(type) {
		case json.Number:
			if f, err := x.Float64(); err == nil && f != 0 {
				return p, x.String(), true
			}
		case float64:
			if x != 0 {
				return p, fmt.Sprint(x), true
			}
		case string:
			if x != "" && x != "0" {
				return p, x, true
			}
		case bool:
			if x {
				return p, "true", true
			}
		}
	}
	return "", "", false
}

// redact drops the query string so credentials passed as parameters never
// reach the logs.
func redact(raw string) string {
	base, _, _ := strings.Cut(raw, "?")
	return base
}
