// Package embedded - jsonld.go recovers schema.org JobPosting records from
// JSON-LD script blocks, including records nested in @graph containers.
package embedded

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jonathan/job-extractor/internal/heuristic"
	"github.com/jonathan/job-extractor/internal/jsonx"
)

func mineJSONLD(doc *goquery.Document) *Candidate {
	var found *Posting
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		payload := parseTolerant(s.Text())
		if payload == nil {
			return true
		}
		if posting := jobPostingFromLD(payload); posting != nil {
			found = posting
			return false
		}
		return true
	})
	if found == nil {
		return nil
	}
	return &Candidate{Source: "jsonld", Confidence: ConfidenceJSONLD, Posting: *found}
}

// parseTolerant decodes raw as JSON, falling back to balanced-span scanning
// and repair when the block is decorated or truncated.
func parseTolerant(raw string) any {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	var payload any
	if err := json.Unmarshal([]byte(raw), &payload); err == nil {
		return payload
	}

	span, _ := jsonx.FirstBalancedSpan(raw)
	if span == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(span), &payload); err == nil {
		return payload
	}
	repaired, err := jsonx.Repair(span)
	if err != nil {
		return nil
	}
	if err := json.Unmarshal([]byte(repaired), &payload); err != nil {
		return nil
	}
	return payload
}

// jobPostingFromLD finds the first JobPosting record in a decoded JSON-LD
// payload, descending into arrays and @graph containers.
func jobPostingFromLD(payload any) *Posting {
	switch t := payload.(type) {
	case map[string]any:
		if isJobPostingType(t["@type"]) {
			return postingFromLDRecord(t)
		}
		if graph, ok := t["@graph"].([]any); ok {
			for _, item := range graph {
				if posting := jobPostingFromLD(item); posting != nil {
					return posting
				}
			}
		}
	case []any:
		for _, item := range t {
			if posting := jobPostingFromLD(item); posting != nil {
				return posting
			}
		}
	}
	return nil
}

func isJobPostingType(t any) bool {
	switch v := t.(type) {
	case string:
		return v == "JobPosting"
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok && s == "JobPosting" {
				return true
			}
		}
	}
	return false
}

func postingFromLDRecord(record map[string]any) *Posting {
	posting := &Posting{
		Title:          stringField(record, "title"),
		Company:        organizationName(record["hiringOrganization"]),
		Location:       ldLocation(record["jobLocation"]),
		Salary:         ldSalary(record["baseSalary"]),
		EmploymentType: stringField(record, "employmentType"),
	}
	// Descriptions in JSON-LD are frequently HTML-encoded.
	if desc := stringField(record, "description"); desc != "" {
		posting.Description = heuristic.HTMLToText(desc)
	}
	posting.Responsibilities = stringList(record["responsibilities"])
	posting.Qualifications = stringList(record["qualifications"])
	if len(posting.Qualifications) == 0 {
		posting.Qualifications = stringList(record["skills"])
	}
	if posting.Empty() {
		return nil
	}
	return posting
}

func organizationName(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case map[string]any:
		return stringField(t, "name")
	}
	return ""
}

func ldLocation(v any) string {
	switch t := v.(type) {
	case []any:
		for _, item := range t {
			if loc := ldLocation(item); loc != "" {
				return loc
			}
		}
	case map[string]any:
		if addr, ok := t["address"].(map[string]any); ok {
			parts := []string{}
			for _, key := range []string{"addressLocality", "addressRegion", "addressCountry"} {
				if s := stringField(addr, key); s != "" {
					parts = append(parts, s)
				}
			}
			if len(parts) > 0 {
				return strings.Join(parts, ", ")
			}
		}
		return stringField(t, "name")
	case string:
		return t
	}
	return ""
}

func ldSalary(v any) string {
	record, ok := v.(map[string]any)
	if !ok {
		return ""
	}
	currency := stringField(record, "currency")
	value, ok := record["value"].(map[string]any)
	if !ok {
		return stringField(record, "value")
	}

	format := func(n any) string {
		switch t := n.(type) {
		case float64:
			return strings.TrimSuffix(fmt.Sprintf("%.2f", t), ".00")
		case string:
			return t
		}
		return ""
	}

	minVal := format(value["minValue"])
	maxVal := format(value["maxValue"])
	single := format(value["value"])
	unit := stringField(value, "unitText")

	var amount string
	switch {
	case minVal != "" && maxVal != "":
		amount = minVal + " - " + maxVal
	case single != "":
		amount = single
	default:
		return ""
	}
	if currency != "" {
		amount = currency + " " + amount
	}
	if unit != "" {
		amount += " per " + strings.ToLower(unit)
	}
	return amount
}

func stringField(m map[string]any, key string) string {
	if s, ok := m[key].(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

func stringList(v any) []string {
	switch t := v.(type) {
	case string:
		trimmed := strings.TrimSpace(t)
		if trimmed == "" {
			return nil
		}
		// A single blob: split on newlines when it looks multi-line.
		if strings.Contains(trimmed, "\n") {
			var items []string
			for _, line := range strings.Split(trimmed, "\n") {
				line = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "-"))
				if line != "" {
					items = append(items, line)
				}
			}
			return items
		}
		return []string{trimmed}
	case []any:
		var items []string
		for _, item := range t {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				items = append(items, strings.TrimSpace(s))
			}
		}
		return items
	}
	return nil
}
