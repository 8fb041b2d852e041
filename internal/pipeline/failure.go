package pipeline

import (
	"net/url"
	"strings"
)

// FailureAnalysis classifies a terminal failure and carries remediation
// guidance for the user.
type FailureAnalysis struct {
	ReasonCode  ReasonCode
	Guidance    string
	Suggestions []string
}

// failureContext is everything the analyzer gets to look at: the fetch
// outcome plus the recorded attempt trail. The analysis is derived from this
// explicit evidence, never by re-running strategies.
type failureContext struct {
	URL        string
	HTML       string
	StatusCode int
	FetchError string
	Attempts   []Attempt
}

const pasteSuggestion = "Copy the job description from your browser and paste it directly instead of using the URL."

// AnalyzeFailure inspects the failure context and produces a reason code
// with guidance. Known problematic domains get specific remediation text.
func AnalyzeFailure(fc failureContext) *FailureAnalysis {
	host := hostOf(fc.URL)

	// Nothing fetched at all: the site was unreachable.
	if fc.HTML == "" && fc.StatusCode == 0 {
		return &FailureAnalysis{
			ReasonCode: ReasonUnreachable,
			Guidance:   "The page could not be retrieved. The URL may be wrong, expired, or the site may be down.",
			Suggestions: []string{
				"Check that the URL opens in your browser.",
				"The posting may have been taken down.",
				pasteSuggestion,
			},
		}
	}

	if isLinkedIn(host) && (looksLikeAuthWall(fc.HTML) || thinContent(fc.HTML)) {
		return &FailureAnalysis{
			ReasonCode: ReasonRequiresAuth,
			Guidance:   "LinkedIn requires a logged-in session to view this posting; automated extraction only sees the login wall.",
			Suggestions: []string{
				"Open the posting in your browser while logged in, then paste the description text.",
				pasteSuggestion,
			},
		}
	}

	if looksLikeAuthWall(fc.HTML) {
		return &FailureAnalysis{
			ReasonCode: ReasonRequiresAuth,
			Guidance:   "This page appears to require a login before showing the posting.",
			Suggestions: []string{pasteSuggestion},
		}
	}

	if fc.StatusCode == 403 || fc.StatusCode == 429 || looksBlocked(fc.HTML) {
		guidance := "The site is blocking automated access to this page."
		if isIndeed(host) {
			guidance = "Indeed aggressively blocks automated access; direct extraction rarely gets past its bot defense."
		}
		return &FailureAnalysis{
			ReasonCode: ReasonBotBlocked,
			Guidance:   guidance,
			Suggestions: []string{
				pasteSuggestion,
				"If the posting also exists on the company's own careers page, try that URL instead.",
			},
		}
	}

	if thinContent(fc.HTML) {
		return &FailureAnalysis{
			ReasonCode: ReasonDynamicContentOnly,
			Guidance:   "The page builds its content with JavaScript after loading; the initial HTML contains no posting text.",
			Suggestions: []string{
				"Enable the headless browser strategy if it is disabled in this deployment.",
				pasteSuggestion,
			},
		}
	}

	return &FailureAnalysis{
		ReasonCode: ReasonUnknown,
		Guidance:   "The page was retrieved but no strategy could extract a usable job description from it.",
		Suggestions: []string{
			pasteSuggestion,
			"Check that the URL points directly at a single job posting, not a search or listing page.",
		},
	}
}

// thinContent reports whether the HTML has almost no visible text, the
// signature of an SPA shell.
func thinContent(htmlStr string) bool {
	// Strip tags crudely; precision does not matter at this point.
	var sb strings.Builder
	inTag := false
	for _, r := range htmlStr {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			sb.WriteRune(r)
		}
	}
	return len(strings.TrimSpace(sb.String())) < 100
}

func hostOf(urlStr string) string {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return ""
	}
	return strings.ToLower(parsed.Hostname())
}

func isLinkedIn(host string) bool {
	return host == "linkedin.com" || strings.HasSuffix(host, ".linkedin.com")
}

func isIndeed(host string) bool {
	return host == "indeed.com" || strings.HasSuffix(host, ".indeed.com")
}
