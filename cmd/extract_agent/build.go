package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jonathan/job-extractor/internal/cache"
	"github.com/jonathan/job-extractor/internal/config"
	"github.com/jonathan/job-extractor/internal/fetch"
	"github.com/jonathan/job-extractor/internal/llm"
	"github.com/jonathan/job-extractor/internal/pipeline"
	"github.com/jonathan/job-extractor/internal/render"
)

// buildPipeline assembles a Pipeline from configuration. The returned
// cleanup releases the LLM client and the database pool.
func buildPipeline(ctx context.Context, cfg *config.Config) (*pipeline.Pipeline, func(), error) {
	cleanups := []func(){}
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	// Fetcher with retry, pacing, and optional unblocking proxy.
	var proxy *fetch.UnblockProxy
	if cfg.ProxyEndpoint != "" {
		proxy = &fetch.UnblockProxy{
			Endpoint: cfg.ProxyEndpoint,
			APIKey:   cfg.ProxyAPIKey,
			RenderJS: true,
		}
	}
	fetcher := fetch.NewRetryClient(fetch.NewClient(&http.Client{}), fetch.RetryConfig{
		MaxRetries: cfg.MaxRetries,
		Proxy:      proxy,
		Verbose:    cfg.Verbose,
	})

	// Cache store: Postgres when configured, process memory otherwise.
	var store cache.Store
	if cfg.DatabaseURL != "" {
		pgStore, err := cache.NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("failed to open cache database: %w", err)
		}
		cleanups = append(cleanups, pgStore.Close)
		store = pgStore
	} else {
		store = cache.NewMemoryStore()
	}
	ttl, err := cfg.ParsedCacheTTL()
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	// AI-assisted extraction, only when a key is configured.
	var ai *llm.Extractor
	if cfg.APIKey != "" {
		llmConfig := llm.DefaultConfig()
		if cfg.AIModel != "" {
			llmConfig = llmConfig.WithModel(llm.TierStandard, cfg.AIModel)
		}
		client, err := llm.NewClient(ctx, llmConfig, cfg.APIKey)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("failed to create LLM client: %w", err)
		}
		cleanups = append(cleanups, func() { _ = client.Close() })
		ai = llm.NewExtractor(client)
	}

	var renderer render.Renderer = render.Disabled{}
	if !cfg.DisableBrowser {
		renderer = render.NewChromeRenderer(cfg.Verbose)
	}

	timeout, err := cfg.ParsedOverallTimeout()
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	p := pipeline.New(pipeline.Config{
		Threshold:      cfg.Threshold,
		OverallTimeout: timeout,
		DisableRender:  cfg.DisableBrowser,
		Verbose:        cfg.Verbose,
	}, fetcher, cache.New(store, ttl), ai, renderer)

	return p, cleanup, nil
}
