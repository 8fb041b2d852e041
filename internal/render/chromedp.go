// Package render - chromedp.go drives a headless Chrome instance.
// Requires Chrome/Chromium to be installed on the system.
package render

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/chromedp/chromedp"
)

// settleDelay gives client-side frameworks time to paint after the DOM is
// ready. WaitReady alone fires before hydration on most SPA job boards.
const settleDelay = 3 * time.Second

// contentMarker is the selector we wait for after settling. Job pages
// almost always render their posting into one of these containers; waiting
// on it beats a fixed sleep when the page is fast.
const contentMarker = `main, article, [class*="job"], [class*="description"], [id*="job"]`

// markerWait bounds the marker poll so a page that never renders the marker
// still returns whatever DOM it has.
const markerWait = 5 * time.Second

// ChromeRenderer renders pages with a headless Chrome via chromedp.
type ChromeRenderer struct {
	Timeout time.Duration
	Verbose bool
}

// NewChromeRenderer creates a ChromeRenderer with the default timeout.
func NewChromeRenderer(verbose bool) *ChromeRenderer {
	return &ChromeRenderer{Timeout: DefaultTimeout, Verbose: verbose}
}

// Render navigates to url, waits for the page to settle, and returns the
// rendered DOM.
func (r *ChromeRenderer) Render(ctx context.Context, url string) (*Result, error) {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	if r.Verbose {
		log.Printf("[BROWSER] Starting headless browser for: %s", url)
	}

	allocCtx, cancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)...,
	)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, timeout)
	defer cancel()

	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		chromedp.Sleep(settleDelay),
		// Try to dismiss common cookie banners - don't fail if not found
		chromedp.ActionFunc(func(ctx context.Context) error {
			_ = chromedp.Click(`button[id*="accept"], button[class*="accept"]`, chromedp.NodeVisible).Do(ctx)
			return nil
		}),
		// Wait for a content container, but only briefly
		chromedp.ActionFunc(func(ctx context.Context) error {
			waitCtx, cancel := context.WithTimeout(ctx, markerWait)
			defer cancel()
			_ = chromedp.WaitVisible(contentMarker, chromedp.ByQuery).Do(waitCtx)
			return nil
		}),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, &TimeoutError{URL: url, Timeout: timeout, Cause: err}
		}
		return nil, fmt.Errorf("browser rendering failed: %w", err)
	}

	if r.Verbose {
		log.Printf("[BROWSER] Rendered HTML: %d bytes", len(html))
	}

	return &Result{URL: url, HTML: html}, nil
}
