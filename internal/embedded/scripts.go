// Package embedded - scripts.go digs job data out of script bodies: global
// variable assignments, framework hydration payloads, base64 data URIs, and
// JSON stashed in HTML comments. Script bodies are JavaScript, not JSON, so
// everything here leans on balanced-span scanning rather than strict parses.
package embedded

import (
	"encoding/base64"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jonathan/job-extractor/internal/heuristic"
	"github.com/jonathan/job-extractor/internal/jsonx"
)

// jobKeywords gate the expensive scan: a script body that never mentions
// any of these cannot contain a posting worth parsing.
var jobKeywords = []string{
	"title", "company", "responsibilities", "qualifications",
	"salary", "location", "jobDescription", "hiringOrganization",
}

// hydrationIDs are script element ids used by frameworks to ship server
// state to the client. Their bodies are pure JSON.
var hydrationIDs = []string{"__NEXT_DATA__", "__remix-context__"}

// assignmentPattern matches global variable assignments whose value starts
// an object or array literal.
var assignmentPattern = regexp.MustCompile(`(?:var|let|const|window\.|self\.)\s*(?:__)?[A-Za-z_$][\w$.]*(?:__)?\s*=\s*[\{\[]`)

// hydrationGlobals are well-known assignment targets holding full app state.
var hydrationGlobals = []string{
	"window.__INITIAL_STATE__",
	"window.__PRELOADED_STATE__",
	"window.__remixContext",
	"window.__APOLLO_STATE__",
}

func mineScripts(doc *goquery.Document) *Candidate {
	var best *Candidate

	consider := func(candidate *Candidate) {
		if candidate == nil || candidate.Posting.Empty() {
			return
		}
		if best == nil || candidate.Confidence > best.Confidence {
			best = candidate
		}
	}

	// Hydration payloads first: they are more reliably structured than
	// arbitrary inline assignments.
	for _, id := range hydrationIDs {
		doc.Find(`script[id="` + id + `"]`).Each(func(_ int, s *goquery.Selection) {
			if payload := parseTolerant(s.Text()); payload != nil {
				if posting := findJobObject(payload, 0); posting != nil {
					consider(&Candidate{Source: "hydration", Confidence: ConfidenceHydration, Posting: *posting})
				}
			}
		})
	}

	doc.Find("script").Each(func(_ int, s *goquery.Selection) {
		body := s.Text()
		if body == "" || !containsJobKeyword(body) {
			return
		}

		for _, global := range hydrationGlobals {
			idx := strings.Index(body, global)
			if idx < 0 {
				continue
			}
			if posting := postingFromSpan(body[idx:]); posting != nil {
				consider(&Candidate{Source: "hydration", Confidence: ConfidenceHydration, Posting: *posting})
			}
		}

		for _, loc := range assignmentPattern.FindAllStringIndex(body, -1) {
			// Back up one byte so the opening bracket is part of the span.
			if posting := postingFromSpan(body[loc[1]-1:]); posting != nil {
				consider(&Candidate{Source: "scriptvar", Confidence: ConfidenceScriptVar, Posting: *posting})
			}
		}
	})

	return best
}

// postingFromSpan extracts the first balanced JSON span from text, parses it
// tolerantly, and searches the result for a job-like object.
func postingFromSpan(text string) *Posting {
	payload := parseTolerant(text)
	if payload == nil {
		return nil
	}
	return findJobObject(payload, 0)
}

func containsJobKeyword(body string) bool {
	lower := strings.ToLower(body)
	for _, kw := range jobKeywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// maxSearchDepth bounds the recursive walk through hydration state, which
// can nest arbitrarily deep.
const maxSearchDepth = 12

// findJobObject recursively searches decoded JSON for an object exposing
// job-like fields: a title plus at least one other posting field.
func findJobObject(payload any, depth int) *Posting {
	if depth > maxSearchDepth {
		return nil
	}
	switch t := payload.(type) {
	case map[string]any:
		if posting := postingFromMap(t); posting != nil {
			return posting
		}
		for _, v := range t {
			if posting := findJobObject(v, depth+1); posting != nil {
				return posting
			}
		}
	case []any:
		for _, item := range t {
			if posting := findJobObject(item, depth+1); posting != nil {
				return posting
			}
		}
	}
	return nil
}

// postingFromMap maps a generic decoded object to a Posting when it looks
// like one. Key aliases cover the spellings seen across job boards.
func postingFromMap(m map[string]any) *Posting {
	firstString := func(keys ...string) string {
		for _, key := range keys {
			if s := stringField(m, key); s != "" {
				return s
			}
		}
		return ""
	}
	firstList := func(keys ...string) []string {
		for _, key := range keys {
			if items := stringList(m[key]); len(items) > 0 {
				return items
			}
		}
		return nil
	}

	posting := &Posting{
		Title:            firstString("title", "jobTitle", "job_title", "positionTitle", "name"),
		Company:          firstString("company", "companyName", "company_name", "employer", "organization"),
		Location:         firstString("location", "jobLocation", "job_location", "city"),
		Salary:           firstString("salary", "compensation", "pay", "salaryRange"),
		EmploymentType:   firstString("employmentType", "employment_type", "jobType", "job_type"),
		Responsibilities: firstList("responsibilities", "duties"),
		Qualifications:   firstList("qualifications", "requirements", "skills"),
	}
	if posting.Company == "" {
		posting.Company = organizationName(m["hiringOrganization"])
	}
	if desc := firstString("description", "jobDescription", "job_description", "descriptionHtml"); desc != "" {
		posting.Description = heuristic.HTMLToText(desc)
	}

	// Require a title plus at least one substantive companion field;
	// otherwise any {"name": ...} object would qualify.
	if posting.Title == "" {
		return nil
	}
	if posting.Description == "" && posting.Company == "" &&
		len(posting.Responsibilities) == 0 && len(posting.Qualifications) == 0 {
		return nil
	}
	return posting
}

// base64Pattern matches JSON payloads embedded in data: URIs.
var base64Pattern = regexp.MustCompile(`data:(?:application|text)/json;base64,([A-Za-z0-9+/=]+)`)

func mineBase64(htmlStr string) *Candidate {
	for _, match := range base64Pattern.FindAllStringSubmatch(htmlStr, -1) {
		decoded, err := base64.StdEncoding.DecodeString(match[1])
		if err != nil {
			continue
		}
		var payload any
		if err := json.Unmarshal(decoded, &payload); err != nil {
			continue
		}
		if posting := findJobObject(payload, 0); posting != nil {
			return &Candidate{Source: "base64", Confidence: ConfidenceBase64, Posting: *posting}
		}
	}
	return nil
}

// commentPattern captures HTML comment bodies.
var commentPattern = regexp.MustCompile(`<!--([\s\S]*?)-->`)

func mineComments(htmlStr string) *Candidate {
	for _, match := range commentPattern.FindAllStringSubmatch(htmlStr, -1) {
		body := match[1]
		if !containsJobKeyword(body) || !strings.ContainsAny(body, "{[") {
			continue
		}
		span, _ := jsonx.FirstBalancedSpan(body)
		if span == "" {
			continue
		}
		payload := parseTolerant(span)
		if payload == nil {
			continue
		}
		if posting := findJobObject(payload, 0); posting != nil {
			return &Candidate{Source: "comment", Confidence: ConfidenceComment, Posting: *posting}
		}
	}
	return nil
}
