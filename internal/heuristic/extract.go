// Package heuristic extracts job posting content from pages with no known
// site profile and no usable embedded data. It scans for containers whose
// class or id looks job-related, scores candidates by text length, and falls
// back through generic content roots down to the raw body text.
package heuristic

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ErrParse is returned when the HTML cannot be parsed.
var ErrParse = fmt.Errorf("failed to parse HTML")

// noiseSelector removes non-content elements before scanning.
const noiseSelector = "script, style, noscript, nav, header, footer, aside, iframe, form, svg"

// noiseKeywords disqualify an element when present in its class or id.
var noiseKeywords = []string{
	"nav", "menu", "footer", "header", "sidebar", "banner",
	"cookie", "consent", "popup", "modal", "advert", "promo",
	"share", "social", "breadcrumb", "related", "similar-jobs",
}

// contentKeywords mark an element as a likely posting container.
var contentKeywords = []string{
	"job", "description", "posting", "position", "vacancy",
	"opening", "role", "career", "content", "detail",
}

// contentRoots are generic fallbacks tried after the keyword scan.
var contentRoots = []string{"main", "article", "[role='main']", "#main", "#content"}

// minCandidateLength disqualifies keyword matches that are plainly too short
// to be a posting body (a "Jobs" nav link, a teaser card).
const minCandidateLength = 150

// Result is the heuristic extractor's output.
type Result struct {
	Text string
	// Fields holds best-effort regex supplements (salary, employment
	// type), never primary extraction results.
	Fields map[string]string
}

// Extract runs the heuristic cascade over raw HTML.
func Extract(htmlStr string) (*Result, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlStr))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	doc.Find(noiseSelector).Remove()
	removeNoiseByKeyword(doc)

	text := keywordCandidate(doc)
	if text == "" {
		text = contentRootCandidate(doc)
	}
	if text == "" {
		text = paragraphConcatenation(doc)
	}
	if text == "" {
		if body, err := doc.Find("body").Html(); err == nil {
			text = HTMLToText(body)
		}
	}

	return &Result{
		Text:   text,
		Fields: ScanText(text),
	}, nil
}

// removeNoiseByKeyword drops elements whose class/id marks them as chrome.
// Elements that also carry a content keyword are kept: "job-header" is more
// likely posting metadata than site navigation.
func removeNoiseByKeyword(doc *goquery.Document) {
	doc.Find("div, section, ul, span").Each(func(_ int, s *goquery.Selection) {
		attrs := elementAttrs(s)
		if attrs == "" {
			return
		}
		for _, kw := range noiseKeywords {
			if strings.Contains(attrs, kw) && !containsAny(attrs, contentKeywords) {
				s.Remove()
				return
			}
		}
	})
}

// keywordCandidate scans for elements whose class/id contains a content
// keyword and returns the largest one's normalized text.
func keywordCandidate(doc *goquery.Document) string {
	var best *goquery.Selection
	bestLen := 0

	doc.Find("div, section, article, td").Each(func(_ int, s *goquery.Selection) {
		attrs := elementAttrs(s)
		if attrs == "" || !containsAny(attrs, contentKeywords) {
			return
		}
		length := len(strings.TrimSpace(s.Text()))
		if length > bestLen {
			best = s
			bestLen = length
		}
	})

	if best == nil || bestLen < minCandidateLength {
		return ""
	}
	return selectionText(best)
}

func contentRootCandidate(doc *goquery.Document) string {
	for _, selector := range contentRoots {
		selection := doc.Find(selector)
		if selection.Length() == 0 {
			continue
		}
		text := selectionText(selection.First())
		if len(text) >= minCandidateLength {
			return text
		}
	}
	return ""
}

// paragraphConcatenation joins all paragraph and list-item text, keeping
// list items as bullets.
func paragraphConcatenation(doc *goquery.Document) string {
	var parts []string
	doc.Find("p, li").Each(func(_ int, s *goquery.Selection) {
		text := strings.Join(strings.Fields(s.Text()), " ")
		if text == "" {
			return
		}
		if goquery.NodeName(s) == "li" {
			text = "- " + text
		}
		parts = append(parts, text)
	})
	joined := strings.Join(parts, "\n")
	if len(strings.TrimSpace(joined)) < minCandidateLength {
		return ""
	}
	return joined
}

func selectionText(s *goquery.Selection) string {
	inner, err := goquery.OuterHtml(s)
	if err != nil {
		return collapseWhitespace(s.Text())
	}
	return HTMLToText(inner)
}

func elementAttrs(s *goquery.Selection) string {
	class, _ := s.Attr("class")
	id, _ := s.Attr("id")
	return strings.ToLower(class + " " + id)
}

func containsAny(haystack string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(haystack, needle) {
			return true
		}
	}
	return false
}
