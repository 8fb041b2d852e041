// Package fetch - proxy.go routes blocked requests through a third-party
// unblocking proxy service.
package fetch

import (
	"context"
	"net/url"
	"time"
)

// proxyTimeout is generous: unblocking services run their own browser farm
// and regularly take tens of seconds.
const proxyTimeout = 60 * time.Second

// UnblockProxy is an API-style unblocking service (ScraperAPI, ScrapingBee,
// and similar): the target URL and API key go in the query string of a GET
// against the service endpoint, and the response body is the unblocked page.
type UnblockProxy struct {
	Endpoint string
	APIKey   string
	// RenderJS asks the service to execute JavaScript before responding.
	RenderJS bool
}

// Configured reports whether credentials are present. Proxy routing is
// strictly optional; without credentials the retry layer skips it.
func (p *UnblockProxy) Configured() bool {
	return p != nil && p.Endpoint != "" && p.APIKey != ""
}

// Fetch retrieves target through the proxy service using the shared client.
// The returned Result keeps the target URL, not the proxy URL, so downstream
// strategies see the page they asked for.
func (p *UnblockProxy) Fetch(ctx context.Context, client *Client, target string, opts *Options) (*Result, error) {
	proxyURL, err := p.requestURL(target)
	if err != nil {
		return nil, &Error{URL: target, Message: "failed to build proxy URL", Cause: err}
	}

	proxyOpts := &Options{Timeout: proxyTimeout}
	if opts != nil && opts.Headers != nil {
		proxyOpts.Headers = opts.Headers
	}

	result, err := client.Fetch(ctx, proxyURL, proxyOpts)
	if err != nil {
		return nil, err
	}

	result.URL = target
	result.FinalURL = target
	return result, nil
}

func (p *UnblockProxy) requestURL(target string) (string, error) {
	endpoint, err := url.Parse(p.Endpoint)
	if err != nil {
		return "", err
	}
	q := endpoint.Query()
	q.Set("api_key", p.APIKey)
	q.Set("url", target)
	if p.RenderJS {
		q.Set("render", "true")
	}
	endpoint.RawQuery = q.Encode()
	return endpoint.String(), nil
}
