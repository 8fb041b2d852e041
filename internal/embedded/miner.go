// Package embedded mines job data that pages carry in markup and scripts but
// never render as visible text: JSON-LD, microdata, script variable
// assignments, framework hydration payloads, base64 blobs, and HTML
// comments. Each sub-strategy carries a fixed confidence; the miner returns
// the highest-confidence non-empty candidate.
package embedded

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Sub-strategy confidences. These are tuned priorities reflecting how
// trustworthy each source has been in practice, not calibrated
// probabilities.
const (
	ConfidenceJSONLD    = 0.95
	ConfidenceMicrodata = 0.90
	ConfidenceHydration = 0.75
	ConfidenceScriptVar = 0.70
	ConfidenceBase64    = 0.65
	ConfidenceComment   = 0.60
)

// ErrParse is returned when the page HTML cannot be parsed.
var ErrParse = fmt.Errorf("failed to parse HTML")

// ErrNoEmbeddedData is returned when no sub-strategy produced a candidate.
var ErrNoEmbeddedData = fmt.Errorf("no embedded job data found")

// Posting is a structured job posting recovered from embedded data.
type Posting struct {
	Title            string
	Company          string
	Location         string
	Salary           string
	EmploymentType   string
	Description      string
	Responsibilities []string
	Qualifications   []string
}

// Empty reports whether the posting carries no usable content.
func (p *Posting) Empty() bool {
	return p.Title == "" && p.Description == "" &&
		len(p.Responsibilities) == 0 && len(p.Qualifications) == 0
}

// Fields returns the non-empty scalar fields as a map.
func (p *Posting) Fields() map[string]string {
	fields := make(map[string]string)
	set := func(k, v string) {
		if v != "" {
			fields[k] = v
		}
	}
	set("title", p.Title)
	set("company", p.Company)
	set("location", p.Location)
	set("salary", p.Salary)
	set("employment_type", p.EmploymentType)
	return fields
}

// Text renders the posting as plain text: header fields, description, then
// bulleted sections.
func (p *Posting) Text() string {
	var sb strings.Builder
	for _, line := range []string{p.Title, p.Company, p.Location, p.Salary, p.EmploymentType} {
		if line != "" {
			sb.WriteString(line + "\n")
		}
	}
	if p.Description != "" {
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(p.Description + "\n")
	}
	writeSection := func(heading string, items []string) {
		if len(items) == 0 {
			return
		}
		sb.WriteString("\n" + heading + ":\n")
		for _, item := range items {
			sb.WriteString("- " + item + "\n")
		}
	}
	writeSection("Responsibilities", p.Responsibilities)
	writeSection("Qualifications", p.Qualifications)
	return strings.TrimSpace(sb.String())
}

// Candidate pairs a recovered posting with its source and confidence.
type Candidate struct {
	Source     string
	Confidence float64
	Posting    Posting
}

// Mined is the full result of a mining pass.
type Mined struct {
	Best *Candidate
	// Endpoints are API URLs discovered in scripts, for optional caller
	// follow-up. Populated even when no candidate was found.
	Endpoints []string
}

// Mine runs all sub-strategies over the page in decreasing reliability
// order and returns the best candidate plus discovered API endpoints.
func Mine(htmlStr, baseURL string) (*Mined, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlStr))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	mined := &Mined{Endpoints: DiscoverEndpoints(doc, baseURL)}

	strategies := []func() *Candidate{
		func() *Candidate { return mineJSONLD(doc) },
		func() *Candidate { return mineMicrodata(doc) },
		func() *Candidate { return mineScripts(doc) },
		func() *Candidate { return mineBase64(htmlStr) },
		func() *Candidate { return mineComments(htmlStr) },
	}

	for _, strategy := range strategies {
		candidate := strategy()
		if candidate == nil || candidate.Posting.Empty() {
			continue
		}
		if mined.Best == nil || candidate.Confidence > mined.Best.Confidence {
			mined.Best = candidate
		}
	}

	return mined, nil
}
