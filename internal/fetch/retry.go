// Package fetch - retry.go wraps the client with backoff, pacing, and
// unblocking proxy escalation.
package fetch

import (
	"context"
	"errors"
	"log"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// DefaultMaxRetries is the retry budget for transient network failures.
const DefaultMaxRetries = 3

// baseBackoff is the first retry delay; each attempt doubles it.
const baseBackoff = 500 * time.Millisecond

// RetryConfig configures the retry wrapper.
type RetryConfig struct {
	MaxRetries int
	// PerHostRate paces requests per host to avoid tripping rate-based
	// blocking. Zero means the default of one request per second.
	PerHostRate rate.Limit
	Proxy       *UnblockProxy
	Verbose     bool
}

// RetryClient wraps Client with exponential backoff on transient errors and
// optional escalation through an unblocking proxy. 4xx responses are never
// retried directly: the site made a decision, repeating the request verbatim
// only burns the rate budget.
type RetryClient struct {
	client   *Client
	config   RetryConfig
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewRetryClient creates a retrying fetcher around client.
func NewRetryClient(client *Client, config RetryConfig) *RetryClient {
	if config.MaxRetries == 0 {
		config.MaxRetries = DefaultMaxRetries
	}
	if config.PerHostRate == 0 {
		config.PerHostRate = rate.Every(time.Second)
	}
	return &RetryClient{
		client:   client,
		config:   config,
		limiters: map[string]*rate.Limiter{},
	}
}

func (r *RetryClient) limiterFor(host string) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()
	if l, ok := r.limiters[host]; ok {
		return l
	}
	l := rate.NewLimiter(r.config.PerHostRate, 1)
	// Drain the initial token so the first Wait per host actually delays
	// instead of passing through on the free burst token.
	l.Reserve()
	r.limiters[host] = l
	return l
}

// Fetch retrieves a URL with backoff on transient errors. When every direct
// attempt fails and an unblocking proxy is configured, the request is routed
// through the proxy as a final attempt.
func (r *RetryClient) Fetch(ctx context.Context, urlStr string, opts *Options) (*Result, error) {
	host := ""
	if parsed, err := url.Parse(urlStr); err == nil {
		host = parsed.Hostname()
	}

	var lastErr error
	var lastResult *Result
	for attempt := 0; attempt < r.config.MaxRetries; attempt++ {
		// The limiter starts drained, so this is the short pre-request
		// delay on the first attempt and per-host pacing afterwards.
		if host != "" {
			if err := r.limiterFor(host).Wait(ctx); err != nil {
				return nil, &Error{URL: urlStr, Message: "canceled while pacing", Cause: err}
			}
		}

		result, err := r.client.Fetch(ctx, urlStr, opts)
		if err == nil {
			return result, nil
		}
		lastErr = err
		lastResult = result

		var fetchErr *Error
		if !errors.As(err, &fetchErr) || !fetchErr.Retryable {
			break
		}
		if ctx.Err() != nil {
			break
		}

		backoff := baseBackoff << attempt
		if r.config.Verbose {
			log.Printf("[FETCH] attempt %d for %s failed (%v), backing off %s", attempt+1, urlStr, err, backoff)
		}
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return lastResult, lastErr
		}
	}

	if r.config.Proxy != nil && r.config.Proxy.Configured() && ctx.Err() == nil {
		if r.config.Verbose {
			log.Printf("[FETCH] direct fetch failed for %s, routing through unblocking proxy", urlStr)
		}
		result, err := r.config.Proxy.Fetch(ctx, r.client, urlStr, opts)
		if err == nil {
			return result, nil
		}
		if r.config.Verbose {
			log.Printf("[FETCH] proxy fetch failed for %s: %v", urlStr, err)
		}
	}

	return lastResult, lastErr
}
