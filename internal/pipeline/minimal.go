package pipeline

import (
	"regexp"
	"strings"
)

// minimalSummaryMax bounds the stub check: text longer than this is assumed
// to carry real content regardless of shape.
const minimalSummaryMax = 200

// stubPatterns match templated placeholder summaries that sites (and some
// scrapers) assemble from the URL or page metadata. They pass a naive length
// check but carry no information a user could not read off the URL.
var stubPatterns = []*regexp.Regexp{
	// "This is a Software Engineer position at Acme."
	regexp.MustCompile(`(?i)^this is an? .{1,80}? (position|role|job|opening|opportunity) (at|with) .{1,60}?\.?$`),
	// "Software Engineer job at Acme. Apply now!"
	regexp.MustCompile(`(?i)^.{1,80}? (job|position|role|opening) (at|with) .{1,60}?\.?\s*(apply (now|today)[.!]?)?$`),
	// "Apply now for this position." / "Join us today!"
	regexp.MustCompile(`(?i)^(apply now|join (us|our team))\b.{0,80}$`),
	// "Job description" headers with nothing underneath.
	regexp.MustCompile(`(?i)^job (details|description|summary)[.:]?$`),
}

// IsMinimalSummary reports whether text is a low-information templated stub.
// Such text may clear the length threshold yet must not be treated as a
// successful extraction.
func IsMinimalSummary(text string) bool {
	collapsed := strings.Join(strings.Fields(text), " ")
	if collapsed == "" {
		return true
	}
	if len(collapsed) > minimalSummaryMax {
		return false
	}
	for _, pattern := range stubPatterns {
		if pattern.MatchString(collapsed) {
			return true
		}
	}
	return false
}

// accepted applies the stopping rule: enough text and not a stub.
func accepted(text string, threshold int) bool {
	trimmed := strings.TrimSpace(text)
	return len(trimmed) >= threshold && !IsMinimalSummary(trimmed)
}
