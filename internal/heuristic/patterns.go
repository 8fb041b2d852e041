// Package heuristic - patterns.go holds the declarative regex table for
// opportunistic field extraction from cleaned text. Each rule is independent
// so it can be unit-tested on its own; none of them is a primary extraction
// path, they only supplement whatever the DOM scan produced.
package heuristic

import "regexp"

// TextPattern binds a compiled pattern to the field it fills and a fixed
// priority. Higher-confidence rules for the same field win.
type TextPattern struct {
	Field      string
	Pattern    *regexp.Regexp
	Confidence float64
}

// textPatterns is evaluated in order against cleaned posting text.
var textPatterns = []TextPattern{
	{
		Field:      "salary",
		Pattern:    regexp.MustCompile(`(?i)[$€£]\s?\d{1,3}(?:,\d{3})+(?:\.\d+)?\s*(?:-|–|—|to)\s*[$€£]?\s?\d{1,3}(?:,\d{3})+(?:\.\d+)?(?:\s*(?:per\s+year|per\s+annum|annually|/\s*yr|/\s*year))?`),
		Confidence: 0.8,
	},
	{
		Field:      "salary",
		Pattern:    regexp.MustCompile(`(?i)[$€£]\s?\d{2,3}(?:\.\d+)?\s?k\s*(?:-|–|—|to)\s*[$€£]?\s?\d{2,3}(?:\.\d+)?\s?k`),
		Confidence: 0.7,
	},
	{
		Field:      "salary",
		Pattern:    regexp.MustCompile(`(?i)[$€£]\s?\d{1,3}(?:,\d{3})+(?:\.\d+)?(?:\s*(?:per\s+year|per\s+annum|annually|/\s*yr|/\s*hour|/\s*hr))`),
		Confidence: 0.5,
	},
	{
		Field:      "employment_type",
		Pattern:    regexp.MustCompile(`(?i)\b(full[- ]time|part[- ]time|contract(?:or)?|intern(?:ship)?|temporary|freelance|per[- ]diem)\b`),
		Confidence: 0.6,
	},
	{
		Field:      "workplace_type",
		Pattern:    regexp.MustCompile(`(?i)\b(fully remote|remote[- ]first|remote|hybrid|on[- ]site)\b`),
		Confidence: 0.5,
	},
}

// ScanText runs the pattern table over cleaned text and returns the best
// match per field.
func ScanText(text string) map[string]string {
	fields := make(map[string]string)
	confidence := make(map[string]float64)
	for _, rule := range textPatterns {
		if confidence[rule.Field] >= rule.Confidence {
			continue
		}
		if match := rule.Pattern.FindString(text); match != "" {
			fields[rule.Field] = match
			confidence[rule.Field] = rule.Confidence
		}
	}
	return fields
}
