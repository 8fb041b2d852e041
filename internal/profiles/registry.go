// Package profiles provides per-domain selector tables for known job boards
// and ATS platforms, and applies them against fetched pages. Profiles are
// static process-wide configuration loaded once at startup.
package profiles

import (
	"net/url"
	"strings"
)

// FieldSelectors maps posting fields to CSS selectors, tried in priority
// order. The first non-empty match per field wins.
type FieldSelectors struct {
	Title        []string
	Company      []string
	Location     []string
	Salary       []string
	Description  []string
	Requirements []string
}

// Profile is a site configuration record for one job board or ATS platform.
type Profile struct {
	ID string
	// DomainSuffixes match the host exactly or as a dot-separated suffix
	// (boards.greenhouse.io matches greenhouse.io). Checked first.
	DomainSuffixes []string
	// DomainPatterns are substring fallbacks for platforms that embed
	// their name in customer subdomains (acme.wd5.myworkdayjobs.com).
	DomainPatterns []string
	Selectors      FieldSelectors
	// Noise selectors removed before description extraction.
	Noise []string
}

// Registry holds the ordered profile table. Order encodes specificity:
// earlier profiles win when both a suffix and a pattern would match.
type Registry struct {
	profiles []Profile
}

// NewRegistry creates a registry with the built-in profile table.
func NewRegistry() *Registry {
	return &Registry{profiles: builtinProfiles()}
}

// Detect matches a URL's host against the profile table. Exact suffix
// matches are preferred over substring patterns so careers.example.com
// never accidentally matches an unrelated example.com profile.
func (r *Registry) Detect(urlStr string) (*Profile, bool) {
	parsed, err := url.Parse(urlStr)
	if err != nil || parsed.Host == "" {
		return nil, false
	}
	host := strings.ToLower(parsed.Hostname())

	for i := range r.profiles {
		for _, suffix := range r.profiles[i].DomainSuffixes {
			if hostMatchesSuffix(host, suffix) {
				return &r.profiles[i], true
			}
		}
	}
	for i := range r.profiles {
		for _, pattern := range r.profiles[i].DomainPatterns {
			if strings.Contains(host, pattern) {
				return &r.profiles[i], true
			}
		}
	}
	return nil, false
}

// Lookup returns the profile with the given ID.
func (r *Registry) Lookup(id string) (*Profile, bool) {
	for i := range r.profiles {
		if r.profiles[i].ID == id {
			return &r.profiles[i], true
		}
	}
	return nil, false
}

// hostMatchesSuffix reports whether host equals suffix or ends with
// "."+suffix. Plain substring matching is not enough: example.com must not
// match notexample.com.
func hostMatchesSuffix(host, suffix string) bool {
	if host == suffix {
		return true
	}
	return strings.HasSuffix(host, "."+suffix)
}
