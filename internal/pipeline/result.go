// Package pipeline orchestrates the extraction cascade: a fixed cost-ordered
// sequence of strategies, each tried until one produces enough readable text.
// The only ground truth for success is "did we get enough non-boilerplate
// text", so acceptance is a threshold plus a stub check, never a guarantee.
package pipeline

import "time"

// Strategy identifies the extraction technique that produced a result.
type Strategy string

// Strategies in cascade cost order. StrategyFetch never produces a result;
// it only appears in attempt trails when the fetch itself failed.
const (
	StrategyFetch          Strategy = "fetch"
	StrategySiteProfile    Strategy = "site_profile"
	StrategyEmbeddedData   Strategy = "embedded_data"
	StrategyHeuristic      Strategy = "heuristic"
	StrategyAIAssisted     Strategy = "ai_assisted"
	StrategyHeadlessRender Strategy = "headless_render"
)

// DefaultThreshold is the minimum accepted text length. Postings below it
// are treated as teasers or stubs and the cascade continues.
const DefaultThreshold = 150

// ExtractionRequest is the immutable input to a single extraction attempt.
type ExtractionRequest struct {
	URL string `json:"url"`
	// RawHTML, when set, bypasses the fetcher entirely. Used when the
	// caller already retrieved the page for another purpose.
	RawHTML string `json:"raw_html,omitempty"`
	// SiteHint forces a specific site profile instead of URL detection.
	SiteHint string `json:"site_hint,omitempty"`
}

// Attempt records one strategy execution in the cascade, successful or not.
// The trail feeds failure analysis, so every swallowed error lands here.
type Attempt struct {
	Strategy Strategy `json:"strategy"`
	Error    string   `json:"error,omitempty"`
	// TextLength is the length of the produced text, zero on failure.
	TextLength int `json:"text_length,omitempty"`
}

// ExtractionResult is a successful extraction.
type ExtractionResult struct {
	Text string `json:"text"`
	// StructuredFields holds best-effort per-field values. Values are
	// string or []string depending on the field.
	StructuredFields map[string]any `json:"structured_fields,omitempty"`
	Strategy         Strategy       `json:"strategy"`
	Confidence       float64        `json:"confidence"`
	// Endpoints are API URLs discovered in page scripts, for optional
	// caller follow-up.
	Endpoints []string  `json:"endpoints,omitempty"`
	Attempts  []Attempt `json:"attempts,omitempty"`
	FromCache bool      `json:"from_cache,omitempty"`
	Duration  time.Duration `json:"duration_ns,omitempty"`
}

// Strategy-intrinsic confidences for the non-embedded strategies. The
// embedded miner carries its own per-sub-strategy scores. These are tuned
// priorities, not calibrated probabilities.
const (
	confidenceSiteProfile = 0.85
	confidenceHeuristic   = 0.50
	confidenceAIAssisted  = 0.70
	confidenceRender      = 0.60
)
