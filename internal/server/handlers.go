package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/jonathan/job-extractor/internal/pipeline"
)

var validate = validator.New()

// ExtractRequest is the POST /extract request body.
type ExtractRequest struct {
	URL      string `json:"url" validate:"required_without=RawHTML,omitempty,url"`
	RawHTML  string `json:"raw_html,omitempty"`
	SiteHint string `json:"site_hint,omitempty"`
}

// ExtractResponse is the POST /extract success body.
type ExtractResponse struct {
	ID               string         `json:"id"`
	Text             string         `json:"text"`
	StructuredFields map[string]any `json:"structured_fields,omitempty"`
	Strategy         string         `json:"strategy"`
	Confidence       float64        `json:"confidence"`
	Endpoints        []string       `json:"endpoints,omitempty"`
	FromCache        bool           `json:"from_cache"`
	DurationMS       int64          `json:"duration_ms"`
}

// ExtractErrorResponse is the POST /extract failure body. ReasonCode and
// Suggestions are written for direct display to an end user.
type ExtractErrorResponse struct {
	Error       string   `json:"error"`
	ReasonCode  string   `json:"reason_code,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// handleExtract runs the pipeline for a submitted URL or raw HTML.
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	var req ExtractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.jsonResponse(w, http.StatusBadRequest, ExtractErrorResponse{Error: "invalid JSON body"})
		return
	}
	if err := validate.Struct(&req); err != nil {
		s.jsonResponse(w, http.StatusBadRequest, ExtractErrorResponse{Error: "validation failed: " + err.Error()})
		return
	}

	start := time.Now()
	result, err := s.extractor.ExtractJobPosting(r.Context(), pipeline.ExtractionRequest{
		URL:      req.URL,
		RawHTML:  req.RawHTML,
		SiteHint: req.SiteHint,
	})
	if err != nil {
		status, body := extractionErrorResponse(err)
		s.jsonResponse(w, status, body)
		return
	}

	s.jsonResponse(w, http.StatusOK, ExtractResponse{
		ID:               uuid.NewString(),
		Text:             result.Text,
		StructuredFields: result.StructuredFields,
		Strategy:         string(result.Strategy),
		Confidence:       result.Confidence,
		Endpoints:        result.Endpoints,
		FromCache:        result.FromCache,
		DurationMS:       time.Since(start).Milliseconds(),
	})
}

// extractionErrorResponse maps a pipeline error to an HTTP status and body.
func extractionErrorResponse(err error) (int, ExtractErrorResponse) {
	var extErr *pipeline.ExtractionError
	if !errors.As(err, &extErr) {
		return http.StatusInternalServerError, ExtractErrorResponse{Error: "extraction failed"}
	}

	body := ExtractErrorResponse{
		Error:       extErr.Message,
		ReasonCode:  string(extErr.ReasonCode),
		Suggestions: extErr.Suggestions,
	}
	return httpStatusForReason(extErr.ReasonCode), body
}

// httpStatusForReason returns the HTTP status for a failure reason. The
// request itself was well-formed, so these all map to upstream trouble.
func httpStatusForReason(reason pipeline.ReasonCode) int {
	switch reason {
	case pipeline.ReasonBotBlocked, pipeline.ReasonRequiresAuth:
		return http.StatusBadGateway
	case pipeline.ReasonUnreachable:
		return http.StatusBadGateway
	case pipeline.ReasonDynamicContentOnly, pipeline.ReasonUnknown:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusUnprocessableEntity
	}
}
