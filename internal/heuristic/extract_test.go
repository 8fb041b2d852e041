package heuristic

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_KeywordContainer(t *testing.T) {
	html := `<html><body>
		<nav>Home | Jobs | About</nav>
		<div class="sidebar">Trending searches</div>
		<div class="job-posting-content">
			<h2>Platform Engineer</h2>
			<p>We run a large fleet of services and need an engineer who cares
			about reliability, observability, and developer experience. You will
			own our deployment pipeline and on-call tooling.</p>
			<ul>
				<li>5+ years operating production systems</li>
				<li>Fluent in Go or Rust</li>
			</ul>
		</div>
		<footer>Copyright Acme</footer>
	</body></html>`

	result, err := Extract(html)
	require.NoError(t, err)
	assert.Contains(t, result.Text, "Platform Engineer")
	assert.Contains(t, result.Text, "reliability")
	assert.Contains(t, result.Text, "- 5+ years operating production systems")
	assert.NotContains(t, result.Text, "Trending searches")
	assert.NotContains(t, result.Text, "Copyright Acme")
}

func TestExtract_LargestCandidateWins(t *testing.T) {
	long := strings.Repeat("Detailed responsibilities and qualifications for the role. ", 10)
	html := `<html><body>
		<div class="job-card">Engineer - Acme - Remote (teaser)</div>
		<div class="job-description">` + long + `</div>
	</body></html>`

	result, err := Extract(html)
	require.NoError(t, err)
	assert.Contains(t, result.Text, "Detailed responsibilities")
	assert.NotContains(t, result.Text, "teaser")
}

func TestExtract_ContentRootFallback(t *testing.T) {
	long := strings.Repeat("A main-element page with no job classes anywhere in sight. ", 6)
	html := `<html><body>
		<div class="hero">Welcome</div>
		<main><p>` + long + `</p></main>
	</body></html>`

	result, err := Extract(html)
	require.NoError(t, err)
	assert.Contains(t, result.Text, "main-element page")
}

func TestExtract_ParagraphFallback(t *testing.T) {
	html := `<html><body>
		<p>First paragraph about the position with plenty of detail to pass the length floor of the scanner.</p>
		<p>Second paragraph describing benefits and the interview process in similar depth and length here.</p>
		<li>A stray list item</li>
	</body></html>`

	result, err := Extract(html)
	require.NoError(t, err)
	assert.Contains(t, result.Text, "First paragraph")
	assert.Contains(t, result.Text, "- A stray list item")
}

func TestExtract_RegexSupplements(t *testing.T) {
	long := strings.Repeat("An engineering role with broad scope and ownership. ", 5)
	html := `<html><body><div class="job-description">
		<p>` + long + `</p>
		<p>Compensation: $140,000 - $180,000 per year. This is a full-time, remote position.</p>
	</div></body></html>`

	result, err := Extract(html)
	require.NoError(t, err)
	assert.Contains(t, result.Fields["salary"], "$140,000")
	assert.Equal(t, "full-time", strings.ToLower(result.Fields["employment_type"]))
	assert.Equal(t, "remote", strings.ToLower(result.Fields["workplace_type"]))
}

func TestHTMLToText_Formatting(t *testing.T) {
	html := `
	<h2>Responsibilities</h2>
	<ul>
		<li>Ship features</li>
		<li>Review code</li>
	</ul>
	<table>
		<tr><th>Band</th><th>Salary</th></tr>
		<tr><td>L4</td><td>$150k</td></tr>
	</table>
	<p>Apply&nbsp;today &amp; join us.</p>`

	text := HTMLToText(html)
	assert.Contains(t, text, "Responsibilities")
	assert.Contains(t, text, "- Ship features")
	assert.Contains(t, text, "- Review code")
	assert.Contains(t, text, "Band | Salary")
	assert.Contains(t, text, "L4 | $150k")
	assert.Contains(t, text, "Apply today & join us.")
	assert.NotContains(t, text, "&nbsp;")
}

func TestHTMLToText_WhitespaceCollapse(t *testing.T) {
	html := `<div><p>One</p><br/><br/><br/><p>Two</p></div>`
	text := HTMLToText(html)
	assert.NotContains(t, text, "\n\n\n", "no more than one blank line between paragraphs")
	assert.Contains(t, text, "One")
	assert.Contains(t, text, "Two")
}

func TestScanText_SalaryVariants(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"comma range", "pays $120,000 - $150,000 per year", "salary"},
		{"k range", "comp is $120k - $150k plus equity", "salary"},
		{"single with period", "base of $95,000 per year", "salary"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := ScanText(tt.text)
			assert.NotEmpty(t, fields[tt.want], "expected %s in %q", tt.want, tt.text)
		})
	}
}

func TestScanText_NoFalsePositives(t *testing.T) {
	fields := ScanText("We have 401k matching and a $50 monthly stipend.")
	assert.Empty(t, fields["salary"])
}
