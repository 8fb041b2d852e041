// Package fetch provides HTTP retrieval of job posting pages from untrusted
// third-party sites. It centralizes header rotation, retry policy, and the
// optional unblocking proxy used when direct fetches are refused.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// DefaultTimeout is the HTTP request timeout for a first-attempt fetch.
// Escalated strategies pass longer timeouts explicitly.
const DefaultTimeout = 10 * time.Second

// maxBodyBytes caps response reads; job pages past this size are noise.
const maxBodyBytes = 8 << 20

// Result holds the response from a page fetch.
type Result struct {
	URL        string
	FinalURL   string
	HTML       string
	StatusCode int
}

// Error represents a failure during page fetching. The response body and
// status, when available, are preserved for the failure analyzer.
type Error struct {
	URL        string
	Message    string
	StatusCode int
	Body       string
	Retryable  bool
	Cause      error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Options configures a single fetch.
type Options struct {
	Timeout time.Duration
	Headers map[string]string
}

// Client performs direct HTTP fetches with rotating browser-like headers.
type Client struct {
	httpClient *http.Client
	headers    *headerRotation
}

// NewClient creates a fetch client. A nil http.Client gets a default with
// redirect following enabled.
func NewClient(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		httpClient: httpClient,
		headers:    newHeaderRotation(),
	}
}

// Fetch retrieves a URL and returns the body, status, and final URL after
// redirects. A non-2xx status is returned as an *Error alongside the Result
// so callers can inspect the body for bot-challenge markers. Retries belong
// to RetryClient, never here.
func (c *Client) Fetch(ctx context.Context, urlStr string, opts *Options) (*Result, error) {
	if opts == nil {
		opts = &Options{}
	}
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	parsed, err := url.Parse(urlStr)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, &Error{
			URL:     urlStr,
			Message: "invalid URL",
			Cause:   err,
		}
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, &Error{
			URL:     urlStr,
			Message: "failed to create request",
			Cause:   err,
		}
	}

	c.headers.apply(req)
	for key, value := range opts.Headers {
		req.Header.Set(key, value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &Error{
			URL:       urlStr,
			Message:   "HTTP request failed",
			Retryable: true,
			Cause:     err,
		}
	}
	defer func() { _ = resp.Body.Close() }()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &Error{
			URL:       urlStr,
			Message:   "failed to read response body",
			Retryable: true,
			Cause:     err,
		}
	}

	finalURL := urlStr
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	result := &Result{
		URL:        urlStr,
		FinalURL:   finalURL,
		HTML:       string(bodyBytes),
		StatusCode: resp.StatusCode,
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return result, &Error{
			URL:        urlStr,
			Message:    fmt.Sprintf("HTTP status %d", resp.StatusCode),
			StatusCode: resp.StatusCode,
			Body:       result.HTML,
			Retryable:  resp.StatusCode >= 500,
		}
	}

	return result, nil
}
