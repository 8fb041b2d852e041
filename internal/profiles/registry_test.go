package profiles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetect_KnownPlatforms(t *testing.T) {
	registry := NewRegistry()

	tests := []struct {
		url      string
		expected string
	}{
		{"https://www.linkedin.com/jobs/view/3791234567", "linkedin"},
		{"https://www.indeed.com/viewjob?jk=abc123", "indeed"},
		{"https://www.dice.com/job-detail/a1b2c3", "dice"},
		{"https://boards.greenhouse.io/acme/jobs/4012345", "greenhouse"},
		{"https://jobs.lever.co/acme/7e1f2a3b", "lever"},
		{"https://acme.wd5.myworkdayjobs.com/en-US/careers/job/R-12345", "workday"},
		{"https://acme.taleo.net/careersection/2/jobdetail.ftl", "taleo"},
		{"https://careers-acme.icims.com/jobs/1234/engineer/job", "icims"},
		{"https://career5.successfactors.eu/career?req_id=1234", "successfactors"},
		{"https://sjobs.brassring.com/TGnewUI/Search/Home/Home", "brassring"},
		{"https://recruiting.ultipro.com/ACM1000ACME/JobBoard/x/OpportunityDetail", "ultipro"},
		{"https://jobs.ashbyhq.com/acme/1b2c3d4e", "ashby"},
		{"https://jobs.smartrecruiters.com/Acme/743999-backend-engineer", "smartrecruiters"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			profile, ok := registry.Detect(tt.url)
			require.True(t, ok, "expected a profile for %s", tt.url)
			assert.Equal(t, tt.expected, profile.ID)
		})
	}
}

func TestDetect_UnknownDomain(t *testing.T) {
	registry := NewRegistry()
	_, ok := registry.Detect("https://careers.acme-widgets.com/openings/42")
	assert.False(t, ok)
}

func TestDetect_InvalidURL(t *testing.T) {
	registry := NewRegistry()
	_, ok := registry.Detect("::not a url::")
	assert.False(t, ok)
}

func TestDetect_SuffixNotSubstring(t *testing.T) {
	registry := NewRegistry()

	// A lookalike domain must not match the real platform's suffix.
	_, ok := registry.Detect("https://notlinkedin.com/jobs/view/1")
	assert.False(t, ok, "notlinkedin.com must not match linkedin.com")

	// A real subdomain must match.
	profile, ok := registry.Detect("https://jobs.linkedin.com/view/1")
	require.True(t, ok)
	assert.Equal(t, "linkedin", profile.ID)
}

func TestHostMatchesSuffix(t *testing.T) {
	assert.True(t, hostMatchesSuffix("greenhouse.io", "greenhouse.io"))
	assert.True(t, hostMatchesSuffix("boards.greenhouse.io", "greenhouse.io"))
	assert.False(t, hostMatchesSuffix("fakegreenhouse.io", "greenhouse.io"))
	assert.False(t, hostMatchesSuffix("greenhouse.io.evil.com", "greenhouse.io"))
}

func TestLookup(t *testing.T) {
	registry := NewRegistry()
	profile, ok := registry.Lookup("greenhouse")
	require.True(t, ok)
	assert.Equal(t, "greenhouse", profile.ID)

	_, ok = registry.Lookup("nonexistent")
	assert.False(t, ok)
}
