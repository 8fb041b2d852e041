// Package embedded - endpoints.go discovers API endpoint URLs referenced in
// page scripts. The miner never follows them; they ride along on the result
// for a caller that wants to probe the site's data API directly.
package embedded

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var endpointPatterns = []*regexp.Regexp{
	// fetch("..."), fetch('...')
	regexp.MustCompile(`fetch\(\s*["']([^"']+)["']`),
	// axios.get("..."), axios.post('...')
	regexp.MustCompile(`axios\.\w+\(\s*["']([^"']+)["']`),
	// Quoted paths that look like data APIs.
	regexp.MustCompile(`["']((?:https?://[^"']+)?/(?:api|graphql)(?:/[^"'?\s]*)?(?:\?[^"']*)?)["']`),
}

// maxEndpoints caps discovery; past a handful the list is framework noise.
const maxEndpoints = 10

// DiscoverEndpoints scans script bodies for API URLs, resolving relative
// paths against baseURL and de-duplicating.
func DiscoverEndpoints(doc *goquery.Document, baseURL string) []string {
	base, _ := url.Parse(baseURL)

	seen := make(map[string]bool)
	var endpoints []string
	add := func(raw string) {
		raw = strings.TrimSpace(raw)
		if raw == "" || strings.HasPrefix(raw, "data:") {
			return
		}
		parsed, err := url.Parse(raw)
		if err != nil {
			return
		}
		if base != nil && !parsed.IsAbs() {
			parsed = base.ResolveReference(parsed)
		}
		if parsed.Host == "" {
			return
		}
		resolved := parsed.String()
		if !seen[resolved] && len(endpoints) < maxEndpoints {
			seen[resolved] = true
			endpoints = append(endpoints, resolved)
		}
	}

	doc.Find("script").Each(func(_ int, s *goquery.Selection) {
		body := s.Text()
		if body == "" {
			return
		}
		for _, pattern := range endpointPatterns {
			for _, match := range pattern.FindAllStringSubmatch(body, -1) {
				add(match[1])
			}
		}
	})

	return endpoints
}
