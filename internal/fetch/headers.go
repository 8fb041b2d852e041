// Package fetch - headers.go provides rotating browser-like request headers.
package fetch

import (
	"net/http"
	"sync"
)

// userAgents is the rotation pool. Realistic desktop browser strings reduce
// trivial bot detection on sites that only inspect the User-Agent header.
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:127.0) Gecko/20100101 Firefox/127.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.5 Safari/605.1.15",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36 Edg/126.0.0.0",
}

// headerRotation hands out a different user agent per request.
type headerRotation struct {
	mu   sync.Mutex
	next int
}

func newHeaderRotation() *headerRotation {
	return &headerRotation{}
}

func (r *headerRotation) userAgent() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ua := userAgents[r.next%len(userAgents)]
	r.next++
	return ua
}

// apply sets the rotated user agent plus the standard header set a real
// browser sends on a top-level navigation.
func (r *headerRotation) apply(req *http.Request) {
	req.Header.Set("User-Agent", r.userAgent())
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	// Accept-Encoding stays unset: the transport negotiates gzip itself and
	// only decompresses transparently when it owns the header.
	req.Header.Set("Sec-Fetch-Dest", "document")
	req.Header.Set("Sec-Fetch-Mode", "navigate")
	req.Header.Set("Sec-Fetch-Site", "none")
	req.Header.Set("Sec-Fetch-User", "?1")
	req.Header.Set("Upgrade-Insecure-Requests", "1")
	req.Header.Set("Cache-Control", "no-cache")
}
