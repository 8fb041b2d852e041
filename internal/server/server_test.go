package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-extractor/internal/pipeline"
)

// fakeExtractor returns a canned result or error.
type fakeExtractor struct {
	result *pipeline.ExtractionResult
	err    error
	gotReq pipeline.ExtractionRequest
}

func (f *fakeExtractor) ExtractJobPosting(_ context.Context, req pipeline.ExtractionRequest) (*pipeline.ExtractionResult, error) {
	f.gotReq = req
	return f.result, f.err
}

func postExtract(t *testing.T, handler http.Handler, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/extract", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHandleExtract_Success(t *testing.T) {
	extractor := &fakeExtractor{result: &pipeline.ExtractionResult{
		Text:       "Backend Engineer at Acme. Build services.",
		Strategy:   pipeline.StrategyEmbeddedData,
		Confidence: 0.95,
		StructuredFields: map[string]any{"title": "Backend Engineer"},
	}}
	srv := New(Config{}, extractor)

	rec := postExtract(t, srv.Handler(), map[string]string{"url": "https://example.com/jobs/1"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ExtractResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "embedded_data", resp.Strategy)
	assert.Equal(t, "Backend Engineer", resp.StructuredFields["title"])
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, "https://example.com/jobs/1", extractor.gotReq.URL)
}

func TestHandleExtract_RawHTMLAllowed(t *testing.T) {
	extractor := &fakeExtractor{result: &pipeline.ExtractionResult{
		Text:     "content",
		Strategy: pipeline.StrategyHeuristic,
	}}
	srv := New(Config{}, extractor)

	rec := postExtract(t, srv.Handler(), map[string]string{"raw_html": "<html><body>posting</body></html>"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "<html><body>posting</body></html>", extractor.gotReq.RawHTML)
}

func TestHandleExtract_MissingURLAndHTML(t *testing.T) {
	srv := New(Config{}, &fakeExtractor{})
	rec := postExtract(t, srv.Handler(), map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleExtract_InvalidURL(t *testing.T) {
	srv := New(Config{}, &fakeExtractor{})
	rec := postExtract(t, srv.Handler(), map[string]string{"url": "not a url"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleExtract_InvalidJSON(t *testing.T) {
	srv := New(Config{}, &fakeExtractor{})
	req := httptest.NewRequest(http.MethodPost, "/extract", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleExtract_PipelineFailure(t *testing.T) {
	extractor := &fakeExtractor{err: &pipeline.ExtractionError{
		ReasonCode:  pipeline.ReasonRequiresAuth,
		Message:     "LinkedIn requires a logged-in session.",
		Suggestions: []string{"Paste the description text instead."},
	}}
	srv := New(Config{}, extractor)

	rec := postExtract(t, srv.Handler(), map[string]string{"url": "https://www.linkedin.com/jobs/view/1"})
	require.Equal(t, http.StatusBadGateway, rec.Code)

	var resp ExtractErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "requires_auth", resp.ReasonCode)
	assert.NotEmpty(t, resp.Suggestions)
}

func TestHTTPStatusForReason(t *testing.T) {
	assert.Equal(t, http.StatusBadGateway, httpStatusForReason(pipeline.ReasonBotBlocked))
	assert.Equal(t, http.StatusBadGateway, httpStatusForReason(pipeline.ReasonUnreachable))
	assert.Equal(t, http.StatusUnprocessableEntity, httpStatusForReason(pipeline.ReasonUnknown))
}

func TestHandleHealth(t *testing.T) {
	srv := New(Config{}, &fakeExtractor{})
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}
