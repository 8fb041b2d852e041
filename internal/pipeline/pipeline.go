package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/job-extractor/internal/cache"
	"github.com/jonathan/job-extractor/internal/embedded"
	"github.com/jonathan/job-extractor/internal/fetch"
	"github.com/jonathan/job-extractor/internal/heuristic"
	"github.com/jonathan/job-extractor/internal/llm"
	"github.com/jonathan/job-extractor/internal/profiles"
	"github.com/jonathan/job-extractor/internal/render"
)

// Fetcher retrieves a page. Satisfied by *fetch.RetryClient.
type Fetcher interface {
	Fetch(ctx context.Context, urlStr string, opts *fetch.Options) (*fetch.Result, error)
}

// Config holds the orchestrator's tunables. It is threaded explicitly at
// construction; nothing reads ambient globals.
type Config struct {
	// Threshold is the minimum accepted text length. Zero uses
	// DefaultThreshold.
	Threshold int
	// OverallTimeout bounds a whole cascade. Once exceeded, remaining
	// strategies are skipped and failure analysis runs on what we have.
	// Zero means no overall deadline beyond the caller's context.
	OverallTimeout time.Duration
	// DisableRender turns the headless strategy off regardless of the
	// configured renderer.
	DisableRender bool
	Verbose       bool
}

// Pipeline runs the extraction cascade. Construct with New; the zero value
// is not usable.
type Pipeline struct {
	config   Config
	fetcher  Fetcher
	cache    *cache.Cache
	registry *profiles.Registry
	ai       *llm.Extractor
	renderer render.Renderer
}

// New creates a Pipeline. fetcher and store are required; ai may be nil when
// no provider is configured, and renderer may be nil to disable the headless
// strategy.
func New(config Config, fetcher Fetcher, store *cache.Cache, ai *llm.Extractor, renderer render.Renderer) *Pipeline {
	if config.Threshold == 0 {
		config.Threshold = DefaultThreshold
	}
	if renderer == nil {
		renderer = render.Disabled{}
	}
	return &Pipeline{
		config:   config,
		fetcher:  fetcher,
		cache:    store,
		registry: profiles.NewRegistry(),
		ai:       ai,
		renderer: renderer,
	}
}

// ExtractJobPosting runs the cascade for a request. Concurrent calls for the
// same URL share one cascade execution through the cache's single-flight.
// On terminal failure the returned error is an *ExtractionError.
func (p *Pipeline) ExtractJobPosting(ctx context.Context, req ExtractionRequest) (*ExtractionResult, error) {
	start := time.Now()

	// A raw-HTML request without a URL has no meaningful cache key; run the
	// cascade directly.
	if req.URL == "" && req.RawHTML != "" {
		result, err := p.runCascade(ctx, req)
		if result != nil {
			result.Duration = time.Since(start)
		}
		return result, err
	}
	if req.URL == "" {
		return nil, &ExtractionError{
			ReasonCode: ReasonUnknown,
			Message:    "no URL or HTML provided",
		}
	}

	content, fromCache, err := p.cache.Do(ctx, req.URL, func(ctx context.Context) ([]byte, error) {
		result, err := p.runCascade(ctx, req)
		if err != nil {
			return nil, err
		}
		return json.Marshal(result)
	})
	if err != nil {
		return nil, err
	}

	var result ExtractionResult
	if err := json.Unmarshal(content, &result); err != nil {
		return nil, fmt.Errorf("decode cached extraction: %w", err)
	}
	result.FromCache = fromCache
	result.Duration = time.Since(start)
	return &result, nil
}

// Invalidate drops the cached extraction for a URL.
func (p *Pipeline) Invalidate(ctx context.Context, urlStr string) error {
	return p.cache.Invalidate(ctx, urlStr)
}

// runCascade executes the strategy sequence for one request. Strategies run
// sequentially in cost order; each failure is recorded and falls through to
// the next strategy.
func (p *Pipeline) runCascade(ctx context.Context, req ExtractionRequest) (*ExtractionResult, error) {
	var deadline time.Time
	if p.config.OverallTimeout > 0 {
		deadline = time.Now().Add(p.config.OverallTimeout)
	}
	expired := func() bool {
		if ctx.Err() != nil {
			return true
		}
		return !deadline.IsZero() && time.Now().After(deadline)
	}

	var attempts []Attempt
	record := func(strategy Strategy, err error, textLen int) {
		attempt := Attempt{Strategy: strategy, TextLength: textLen}
		if err != nil {
			attempt.Error = err.Error()
		}
		attempts = append(attempts, attempt)
		if p.config.Verbose && err != nil {
			log.Printf("[VERBOSE] strategy %s failed: %v", strategy, err)
		}
	}

	fc := failureContext{URL: req.URL}
	fail := func() (*ExtractionResult, error) {
		fc.Attempts = attempts
		analysis := AnalyzeFailure(fc)
		return nil, &ExtractionError{
			ReasonCode:  analysis.ReasonCode,
			Message:     analysis.Guidance,
			Suggestions: analysis.Suggestions,
			Attempts:    attempts,
		}
	}

	// Fetch, unless the caller brought the page with them.
	htmlStr := req.RawHTML
	if htmlStr == "" {
		result, err := p.fetcher.Fetch(ctx, req.URL, nil)
		if result != nil {
			fc.StatusCode = result.StatusCode
			htmlStr = result.HTML
		}
		if err != nil {
			fc.FetchError = err.Error()
		}
		if htmlStr == "" {
			if err != nil {
				record(StrategyFetch, err, 0)
			}
			return fail()
		}
		// One trail entry per network call. The blocked classification
		// subsumes the raw status error; the body still goes through the
		// cascade in case content hides behind the challenge markup.
		if fc.StatusCode == 403 || fc.StatusCode == 429 || looksBlocked(htmlStr) {
			record(StrategyFetch, &BlockedError{URL: req.URL, StatusCode: fc.StatusCode}, 0)
		} else if err != nil {
			record(StrategyFetch, err, 0)
		}
	}
	fc.HTML = htmlStr

	finish := func(result *ExtractionResult) (*ExtractionResult, error) {
		result.Attempts = attempts
		return result, nil
	}

	// Site profile.
	if !expired() {
		if result := p.trySiteProfile(req, htmlStr, record); result != nil {
			return finish(result)
		}
	}

	// Embedded data. Endpoints discovered here ride along on whatever
	// result eventually wins.
	var endpoints []string
	if !expired() {
		result, found := p.tryEmbedded(req, htmlStr, record)
		endpoints = found
		if result != nil {
			result.Endpoints = endpoints
			return finish(result)
		}
	}

	// Generic heuristic. Its text is kept sub-threshold or not: the AI
	// strategy prefers pre-cleaned text over raw HTML.
	var heuristicText string
	if !expired() {
		result, text := p.tryHeuristic(htmlStr, record)
		heuristicText = text
		if result != nil {
			result.Endpoints = endpoints
			return finish(result)
		}
	}

	// AI-assisted.
	if !expired() && p.ai != nil {
		if result := p.tryAI(ctx, htmlStr, heuristicText, record); result != nil {
			result.Endpoints = endpoints
			return finish(result)
		}
	}

	// Headless render.
	if !expired() && !p.config.DisableRender && req.URL != "" {
		if result := p.tryRender(ctx, req.URL, record); result != nil {
			result.Endpoints = endpoints
			return finish(result)
		}
	}

	return fail()
}

func (p *Pipeline) trySiteProfile(req ExtractionRequest, htmlStr string, record func(Strategy, error, int)) *ExtractionResult {
	var profile *profiles.Profile
	var ok bool
	if req.SiteHint != "" {
		profile, ok = p.registry.Lookup(req.SiteHint)
	} else {
		profile, ok = p.registry.Detect(req.URL)
	}
	if !ok {
		return nil
	}

	extraction, err := profile.Extract(htmlStr)
	if err != nil {
		record(StrategySiteProfile, err, 0)
		return nil
	}

	text := extraction.Text()
	if !accepted(text, p.config.Threshold) {
		record(StrategySiteProfile, &EmptyContentError{Strategy: StrategySiteProfile, Length: len(text)}, len(text))
		return nil
	}

	record(StrategySiteProfile, nil, len(text))
	fields := toAnyMap(extraction.Fields())
	if len(extraction.Requirements) > 0 {
		fields["requirements"] = extraction.Requirements
	}
	return &ExtractionResult{
		Text:             text,
		StructuredFields: fields,
		Strategy:         StrategySiteProfile,
		Confidence:       confidenceSiteProfile,
	}
}

func (p *Pipeline) tryEmbedded(req ExtractionRequest, htmlStr string, record func(Strategy, error, int)) (*ExtractionResult, []string) {
	mined, err := embedded.Mine(htmlStr, req.URL)
	if err != nil {
		record(StrategyEmbeddedData, err, 0)
		return nil, nil
	}
	if mined.Best == nil {
		record(StrategyEmbeddedData, embedded.ErrNoEmbeddedData, 0)
		return nil, mined.Endpoints
	}

	text := mined.Best.Posting.Text()
	if !accepted(text, p.config.Threshold) {
		record(StrategyEmbeddedData, &EmptyContentError{Strategy: StrategyEmbeddedData, Length: len(text)}, len(text))
		return nil, mined.Endpoints
	}

	record(StrategyEmbeddedData, nil, len(text))
	posting := mined.Best.Posting
	fields := toAnyMap(posting.Fields())
	if len(posting.Responsibilities) > 0 {
		fields["responsibilities"] = posting.Responsibilities
	}
	if len(posting.Qualifications) > 0 {
		fields["qualifications"] = posting.Qualifications
	}
	return &ExtractionResult{
		Text:             text,
		StructuredFields: fields,
		Strategy:         StrategyEmbeddedData,
		Confidence:       mined.Best.Confidence,
	}, mined.Endpoints
}

func (p *Pipeline) tryHeuristic(htmlStr string, record func(Strategy, error, int)) (*ExtractionResult, string) {
	result, err := heuristic.Extract(htmlStr)
	if err != nil {
		record(StrategyHeuristic, err, 0)
		return nil, ""
	}

	if !accepted(result.Text, p.config.Threshold) {
		record(StrategyHeuristic, &EmptyContentError{Strategy: StrategyHeuristic, Length: len(result.Text)}, len(result.Text))
		return nil, result.Text
	}

	record(StrategyHeuristic, nil, len(result.Text))
	return &ExtractionResult{
		Text:             result.Text,
		StructuredFields: toAnyMap(result.Fields),
		Strategy:         StrategyHeuristic,
		Confidence:       confidenceHeuristic,
	}, result.Text
}

func (p *Pipeline) tryAI(ctx context.Context, htmlStr, heuristicText string, record func(Strategy, error, int)) *ExtractionResult {
	input := heuristicText
	if strings.TrimSpace(input) == "" {
		input = heuristic.HTMLToText(htmlStr)
	}
	if strings.TrimSpace(input) == "" {
		record(StrategyAIAssisted, &EmptyContentError{Strategy: StrategyAIAssisted}, 0)
		return nil
	}

	extraction, err := p.ai.Extract(ctx, input)
	if err != nil {
		record(StrategyAIAssisted, err, 0)
		return nil
	}

	text := extraction.Text()
	if !accepted(text, p.config.Threshold) {
		record(StrategyAIAssisted, &EmptyContentError{Strategy: StrategyAIAssisted, Length: len(text)}, len(text))
		return nil
	}

	record(StrategyAIAssisted, nil, len(text))
	fields := toAnyMap(extraction.Fields())
	if len(extraction.Responsibilities) > 0 {
		fields["responsibilities"] = extraction.Responsibilities
	}
	if len(extraction.Qualifications) > 0 {
		fields["qualifications"] = extraction.Qualifications
	}
	return &ExtractionResult{
		Text:             text,
		StructuredFields: fields,
		Strategy:         StrategyAIAssisted,
		Confidence:       confidenceAIAssisted,
	}
}

func (p *Pipeline) tryRender(ctx context.Context, urlStr string, record func(Strategy, error, int)) *ExtractionResult {
	rendered, err := p.renderer.Render(ctx, urlStr)
	if err != nil {
		record(StrategyHeadlessRender, err, 0)
		return nil
	}

	result, err := heuristic.Extract(rendered.HTML)
	if err != nil {
		record(StrategyHeadlessRender, err, 0)
		return nil
	}
	text := result.Text
	fields := toAnyMap(result.Fields)

	// The rendered DOM usually has real section headings; recover them.
	if doc, docErr := goquery.NewDocumentFromReader(strings.NewReader(rendered.HTML)); docErr == nil {
		for name, items := range render.Sections(doc) {
			fields[name] = items
		}
	}

	if !accepted(text, p.config.Threshold) {
		record(StrategyHeadlessRender, &EmptyContentError{Strategy: StrategyHeadlessRender, Length: len(text)}, len(text))
		return nil
	}

	record(StrategyHeadlessRender, nil, len(text))
	return &ExtractionResult{
		Text:             text,
		StructuredFields: fields,
		Strategy:         StrategyHeadlessRender,
		Confidence:       confidenceRender,
	}
}

func toAnyMap(m map[string]string) map[string]any {
	fields := make(map[string]any, len(m))
	for k, v := range m {
		fields[k] = v
	}
	return fields
}
