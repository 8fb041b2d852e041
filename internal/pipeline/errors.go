package pipeline

import (
	"fmt"
	"strings"
)

// ReasonCode classifies why an extraction failed terminally.
type ReasonCode string

// Reason codes for terminal extraction failures.
const (
	ReasonBotBlocked         ReasonCode = "bot_blocked"
	ReasonRequiresAuth       ReasonCode = "requires_auth"
	ReasonDynamicContentOnly ReasonCode = "dynamic_content_only"
	ReasonUnreachable        ReasonCode = "unreachable"
	ReasonUnknown            ReasonCode = "unknown"
)

// ExtractionError is the terminal failure surfaced to the caller after every
// strategy has been exhausted. Message and Suggestions are written for
// direct display to an end user.
type ExtractionError struct {
	ReasonCode  ReasonCode `json:"reason_code"`
	Message     string     `json:"message"`
	Suggestions []string   `json:"suggestions,omitempty"`
	Attempts    []Attempt  `json:"attempts,omitempty"`
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction failed (%s): %s", e.ReasonCode, e.Message)
}

// BlockedError indicates the site answered with a bot defense: a 403/429
// status or a challenge page in place of content. Recoverable; later
// strategies (proxy, headless render) sometimes get past it.
type BlockedError struct {
	URL        string
	StatusCode int
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("blocked by %s (status %d)", e.URL, e.StatusCode)
}

// EmptyContentError indicates a strategy ran cleanly but produced
// sub-threshold text. Recoverable; the cascade continues.
type EmptyContentError struct {
	Strategy Strategy
	Length   int
}

func (e *EmptyContentError) Error() string {
	return fmt.Sprintf("%s produced %d characters, below threshold", e.Strategy, e.Length)
}

// blockIndicators are phrases bot-challenge pages render instead of content.
var blockIndicators = []string{
	"captcha", "are you a human", "verify you are human",
	"access denied", "access to this page has been denied",
	"checking your browser", "cloudflare", "pardon our interruption",
	"request blocked", "unusual traffic",
}

// looksBlocked reports whether the HTML reads like a bot-challenge page.
func looksBlocked(htmlStr string) bool {
	lower := strings.ToLower(htmlStr)
	for _, indicator := range blockIndicators {
		if strings.Contains(lower, indicator) {
			return true
		}
	}
	return false
}

// authIndicators are phrases login walls render instead of content.
var authIndicators = []string{
	"sign in to continue", "log in to view", "login to view",
	"join now to see", "authwall", "please sign in", "member login",
	"sign in to view",
}

// looksLikeAuthWall reports whether the HTML reads like a login wall.
func looksLikeAuthWall(htmlStr string) bool {
	lower := strings.ToLower(htmlStr)
	for _, indicator := range authIndicators {
		if strings.Contains(lower, indicator) {
			return true
		}
	}
	return false
}
