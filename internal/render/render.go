// Package render provides headless browser rendering for job pages that
// ship an empty shell and paint content client-side. Rendering is the most
// expensive extraction step, so it sits behind an interface the pipeline
// can disable outright.
package render

import (
	"context"
	"fmt"
	"time"
)

// DefaultTimeout bounds a full render including navigation and settle time.
const DefaultTimeout = 30 * time.Second

// Result holds the outcome of a headless render.
type Result struct {
	URL  string
	HTML string
}

// Renderer renders a URL in a headless browser and returns the final DOM.
type Renderer interface {
	Render(ctx context.Context, url string) (*Result, error)
}

// ErrDisabled is returned by the disabled renderer.
var ErrDisabled = fmt.Errorf("headless rendering is disabled")

// Disabled is a Renderer that always refuses. Used when no browser is
// installed or the operator opts out.
type Disabled struct{}

// Render always returns ErrDisabled.
func (Disabled) Render(_ context.Context, _ string) (*Result, error) {
	return nil, ErrDisabled
}

// TimeoutError indicates the page did not finish rendering within the
// render deadline. The pipeline treats it as recoverable.
type TimeoutError struct {
	URL     string
	Timeout time.Duration
	Cause   error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("render of %s timed out after %s: %v", e.URL, e.Timeout, e.Cause)
}

func (e *TimeoutError) Unwrap() error {
	return e.Cause
}
