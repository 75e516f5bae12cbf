// Package reader is the client for the remote reader extraction service. It
// POSTs a target URL and receives the page rendered to HTML, with retry on
// rate limiting.
package reader

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/use-agent/distill/backoff"
	"github.com/use-agent/distill/config"
	"github.com/use-agent/distill/models"
)

// maxBodySize caps the HTML payload read from the reader service.
const maxBodySize = 10 * 1024 * 1024 // 10 MB

// Client talks to the reader extraction service. It is safe for concurrent
// use: endpoint and credentials are read-only after construction, and the
// underlying http.Client is shared by design.
type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
	policy   backoff.Policy
	limiter  *rate.Limiter // nil when client-side limiting is disabled
}

// New creates a Client from cfg. session is the shared HTTP client owned by
// the caller; when nil a default client with cfg.Timeout is used.
func New(cfg config.ReaderConfig, session *http.Client) *Client {
	if session == nil {
		session = &http.Client{Timeout: cfg.Timeout}
	}

	endpoint := cfg.ServerURL
	if endpoint == "" {
		endpoint = config.DefaultReaderURL
	}

	var limiter *rate.Limiter
	if cfg.MaxRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.MaxRPS), 1)
	}

	return &Client{
		endpoint: endpoint,
		apiKey:   cfg.APIKey,
		http:     session,
		policy:   backoff.Default(),
		limiter:  limiter,
	}
}

// WithPolicy overrides the retry policy. Intended for tests and for callers
// embedding the client in pipelines with their own retry budgets.
func (c *Client) WithPolicy(p backoff.Policy) *Client {
	c.policy = p
	return c
}

// Fetch asks the reader service to render targetURL and returns the raw HTML.
//
// Rate-limit responses (429) are retried per the backoff policy; the returned
// error after the attempt budget is exhausted is still RATE_LIMITED so the
// caller can react. Every other failure is REQUEST_FAILED and returns
// immediately. Fetch is the only place in the pipeline that sleeps, and the
// sleep is cancelled with ctx.
func (c *Client) Fetch(ctx context.Context, targetURL string) (string, error) {
	var lastErr error

	for attempt := 1; attempt <= c.policy.MaxAttempts; attempt++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return "", models.NewScrapeError(models.ErrCodeRequestFailed,
					"reader: rate limiter wait aborted", err)
			}
		}

		html, err := c.doRequest(ctx, targetURL)
		if err == nil {
			return html, nil
		}
		lastErr = err

		if !c.policy.Retryable(err) || attempt == c.policy.MaxAttempts {
			break
		}

		delay := c.policy.Delay(attempt)
		slog.Warn("reader rate limited, backing off",
			"url", targetURL, "attempt", attempt, "delay", delay)
		if err := sleep(ctx, delay); err != nil {
			return "", models.NewScrapeError(models.ErrCodeRequestFailed,
				"reader: backoff wait aborted", err)
		}
	}

	return "", lastErr
}

// doRequest performs one reader round-trip and classifies the result.
func (c *Client) doRequest(ctx context.Context, targetURL string) (string, error) {
	payload, err := json.Marshal(map[string]string{"url": targetURL})
	if err != nil {
		return "", models.NewScrapeError(models.ErrCodeRequestFailed,
			"reader: marshal request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", models.NewScrapeError(models.ErrCodeRequestFailed,
			"reader: build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Return-Format", "html")
	// An absent API key is a valid state: the request simply goes out
	// unauthenticated.
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", models.NewScrapeError(models.ErrCodeRequestFailed,
			fmt.Sprintf("reader: request to %s failed", c.endpoint), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", models.NewScrapeError(models.ErrCodeRateLimited,
			fmt.Sprintf("reader: HTTP 429 for %s", targetURL), nil)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", models.NewScrapeError(models.ErrCodeRequestFailed,
			fmt.Sprintf("reader: HTTP %d for %s", resp.StatusCode, targetURL), nil)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return "", models.NewScrapeError(models.ErrCodeRequestFailed,
			"reader: read body", err)
	}

	return string(body), nil
}

// sleep blocks for d or until ctx is cancelled, whichever comes first.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
