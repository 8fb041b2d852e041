// Package cache provides the URL-keyed extraction result cache. It is the
// only state shared across concurrent extraction requests, so all access is
// safe for concurrent use and duplicate in-flight extractions for the same
// URL are collapsed through single-flight.
package cache

import (
	"context"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultTTL keeps extracted postings for a day. Job postings change rarely;
// re-running the cascade inside that window only re-spends network and LLM
// budget for the same answer.
const DefaultTTL = 24 * time.Hour

// Entry is a cached extraction payload. Entries are immutable once written.
type Entry struct {
	URL       string
	Content   []byte
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the entry is past its TTL.
func (e *Entry) Expired(now time.Time) bool {
	return now.After(e.ExpiresAt)
}

// Store is a pluggable cache backend. Get returns nil for a miss or an
// expired entry.
type Store interface {
	Get(ctx context.Context, key string) (*Entry, error)
	Set(ctx context.Context, key string, content []byte, ttl time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

// Cache combines a Store with single-flight de-duplication.
type Cache struct {
	store Store
	ttl   time.Duration
	group singleflight.Group
}

// New creates a cache over store. A zero ttl uses DefaultTTL.
func New(store Store, ttl time.Duration) *Cache {
	if ttl == 0 {
		ttl = DefaultTTL
	}
	return &Cache{store: store, ttl: ttl}
}

// Get returns the cached content for a URL, or nil on a miss.
func (c *Cache) Get(ctx context.Context, urlStr string) ([]byte, error) {
	entry, err := c.store.Get(ctx, NormalizeURL(urlStr))
	if err != nil || entry == nil {
		return nil, err
	}
	return entry.Content, nil
}

// Do runs producer for a URL unless a fresh cached entry exists. Concurrent
// calls for the same normalized URL share a single producer execution and
// all receive its result. Successful results are written through before
// being returned. The fromCache flag is true when no producer ran for this
// caller's result.
func (c *Cache) Do(ctx context.Context, urlStr string, producer func(ctx context.Context) ([]byte, error)) (content []byte, fromCache bool, err error) {
	key := NormalizeURL(urlStr)

	type flightResult struct {
		content   []byte
		fromCache bool
	}

	v, err, shared := c.group.Do(key, func() (any, error) {
		if entry, getErr := c.store.Get(ctx, key); getErr == nil && entry != nil {
			return flightResult{content: entry.Content, fromCache: true}, nil
		}

		produced, prodErr := producer(ctx)
		if prodErr != nil {
			return nil, prodErr
		}
		// Write-through failures are not fatal: the extraction itself
		// succeeded and the caller should get it.
		_ = c.store.Set(ctx, key, produced, c.ttl)
		return flightResult{content: produced}, nil
	})
	if err != nil {
		return nil, false, err
	}

	result := v.(flightResult)
	return result.content, result.fromCache || shared, nil
}

// Invalidate removes the entry for a URL so the next request re-runs the
// cascade.
func (c *Cache) Invalidate(ctx context.Context, urlStr string) error {
	return c.store.Invalidate(ctx, NormalizeURL(urlStr))
}

// NormalizeURL canonicalizes a URL for use as a cache key: lowercased
// scheme/host, fragment dropped, tracking query parameters removed, and the
// trailing slash trimmed. Two spellings of the same posting URL must hit the
// same entry.
func NormalizeURL(urlStr string) string {
	parsed, err := url.Parse(strings.TrimSpace(urlStr))
	if err != nil || parsed.Host == "" {
		return strings.TrimSpace(urlStr)
	}

	parsed.Scheme = strings.ToLower(parsed.Scheme)
	parsed.Host = strings.ToLower(parsed.Host)
	parsed.Fragment = ""

	q := parsed.Query()
	for param := range q {
		if strings.HasPrefix(param, "utm_") || param == "ref" || param == "gclid" || param == "fbclid" {
			q.Del(param)
		}
	}
	parsed.RawQuery = q.Encode()

	normalized := parsed.String()
	return strings.TrimSuffix(normalized, "/")
}
