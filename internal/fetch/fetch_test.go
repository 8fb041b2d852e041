package fetch

import (
	"compress/gzip"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetch_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("<html><body><h1>Backend Engineer</h1></body></html>"))
	}))
	defer server.Close()

	client := NewClient(nil)
	result, err := client.Fetch(context.Background(), server.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, server.URL, result.URL)
	assert.Contains(t, result.HTML, "Backend Engineer")
	assert.Equal(t, http.StatusOK, result.StatusCode)
}

func TestFetch_InvalidURL(t *testing.T) {
	client := NewClient(nil)
	_, err := client.Fetch(context.Background(), "not-a-valid-url", nil)
	require.Error(t, err)

	var fetchErr *Error
	require.ErrorAs(t, err, &fetchErr)
	assert.Contains(t, err.Error(), "invalid URL")
	assert.False(t, fetchErr.Retryable)
}

func TestFetch_BrowserHeaders(t *testing.T) {
	var gotUA, gotAccept, gotSecFetch string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		gotSecFetch = r.Header.Get("Sec-Fetch-Mode")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(nil)
	_, err := client.Fetch(context.Background(), server.URL, nil)
	require.NoError(t, err)
	assert.Contains(t, gotUA, "Mozilla/5.0")
	assert.Contains(t, gotAccept, "text/html")
	assert.Equal(t, "navigate", gotSecFetch)
}

func TestFetch_UserAgentRotation(t *testing.T) {
	seen := make(map[string]bool)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen[r.Header.Get("User-Agent")] = true
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(nil)
	for i := 0; i < 3; i++ {
		_, err := client.Fetch(context.Background(), server.URL, nil)
		require.NoError(t, err)
	}
	assert.Len(t, seen, 3, "each request should carry a different user agent")
}

func TestFetch_GzipResponseDecoded(t *testing.T) {
	var gotEncoding string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotEncoding = r.Header.Get("Accept-Encoding")
		w.Header().Set("Content-Encoding", "gzip")
		w.Header().Set("Content-Type", "text/html")
		gz := gzip.NewWriter(w)
		_, _ = gz.Write([]byte("<html><body><h1>Staff Engineer</h1><p>Real job content</p></body></html>"))
		_ = gz.Close()
	}))
	defer server.Close()

	client := NewClient(nil)
	result, err := client.Fetch(context.Background(), server.URL, nil)
	require.NoError(t, err)
	assert.Contains(t, gotEncoding, "gzip", "transport should still negotiate compression")
	assert.Contains(t, result.HTML, "Real job content", "body must be decompressed, not raw gzip bytes")
}

func TestFetch_Non2xxKeepsBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte("Access Denied - bot detected"))
	}))
	defer server.Close()

	client := NewClient(nil)
	result, err := client.Fetch(context.Background(), server.URL, nil)
	require.Error(t, err)
	require.NotNil(t, result)
	assert.Equal(t, http.StatusForbidden, result.StatusCode)

	var fetchErr *Error
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, http.StatusForbidden, fetchErr.StatusCode)
	assert.Contains(t, fetchErr.Body, "bot detected")
	assert.False(t, fetchErr.Retryable, "4xx must not be retried")
}

func TestFetch_5xxIsRetryable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(nil)
	_, err := client.Fetch(context.Background(), server.URL, nil)
	require.Error(t, err)

	var fetchErr *Error
	require.ErrorAs(t, err, &fetchErr)
	assert.True(t, fetchErr.Retryable)
}

func TestFetch_FollowsRedirects(t *testing.T) {
	var target *httptest.Server
	target = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/start" {
			http.Redirect(w, r, "/final", http.StatusFound)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("landed"))
	}))
	defer target.Close()

	client := NewClient(nil)
	result, err := client.Fetch(context.Background(), target.URL+"/start", nil)
	require.NoError(t, err)
	assert.Equal(t, target.URL+"/final", result.FinalURL)
	assert.Equal(t, "landed", result.HTML)
}
