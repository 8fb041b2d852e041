// Package config provides configuration loading and validation for the
// extraction service. Values come from a JSON file, the environment, and
// defaults, merged in that order of precedence.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config is the full configuration surface. All fields are optional;
// missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Extraction behavior
	Threshold      int    `json:"threshold,omitempty" validate:"gte=0"`                  // Minimum accepted text length (characters)
	CacheTTL       string `json:"cache_ttl,omitempty"`                                   // Cache TTL as a Go duration string, e.g. "24h"
	OverallTimeout string `json:"overall_timeout,omitempty"`                             // Per-request deadline as a Go duration string
	DisableBrowser bool   `json:"disable_browser,omitempty"`                             // Turn the headless-render strategy off
	Verbose        bool   `json:"verbose,omitempty"`                                     // Print detailed debug information
	MaxRetries     int    `json:"max_retries,omitempty" validate:"gte=0,lte=10"`         // Fetch retry budget

	// AI provider
	APIKey  string `json:"api_key,omitempty"`                                            // Gemini API key
	AIModel string `json:"ai_model,omitempty"`                                           // Model override for the standard tier

	// Unblocking proxy
	ProxyEndpoint string `json:"proxy_endpoint,omitempty" validate:"omitempty,url"`      // Unblocking proxy base URL
	ProxyAPIKey   string `json:"proxy_api_key,omitempty"`                                // Unblocking proxy credential

	// Storage
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL URL for the durable cache; empty uses memory

	// HTTP API
	ListenAddr string `json:"listen_addr,omitempty" validate:"omitempty,hostname_port"` // serve bind address
}

// envOverrides maps environment variables onto config fields. Environment
// wins over the config file.
func (c *Config) applyEnv() {
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.DatabaseURL = v
	}
	if v := os.Getenv("UNBLOCK_PROXY_ENDPOINT"); v != "" {
		c.ProxyEndpoint = v
	}
	if v := os.Getenv("UNBLOCK_PROXY_API_KEY"); v != "" {
		c.ProxyAPIKey = v
	}
}

// Load reads configuration from an optional JSON file, applies environment
// overrides, and validates the result. An empty path loads environment and
// defaults only.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		if !filepath.IsAbs(path) {
			cwd, err := os.Getwd()
			if err != nil {
				return nil, fmt.Errorf("failed to get current directory: %w", err)
			}
			path = filepath.Join(cwd, path)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var validate = validator.New()

// Validate checks field values, including that duration strings parse.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	if _, err := c.ParsedCacheTTL(); err != nil {
		return err
	}
	if _, err := c.ParsedOverallTimeout(); err != nil {
		return err
	}
	if c.ProxyAPIKey != "" && c.ProxyEndpoint == "" {
		return fmt.Errorf("config error: 'proxy_api_key' set without 'proxy_endpoint'")
	}
	return nil
}

// ParsedCacheTTL returns the cache TTL, zero when unset.
func (c *Config) ParsedCacheTTL() (time.Duration, error) {
	return parseDuration("cache_ttl", c.CacheTTL)
}

// ParsedOverallTimeout returns the per-request deadline, zero when unset.
func (c *Config) ParsedOverallTimeout() (time.Duration, error) {
	return parseDuration("overall_timeout", c.OverallTimeout)
}

func parseDuration(field, value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("config error: '%s' is not a valid duration: %w", field, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("config error: '%s' must be non-negative", field)
	}
	return d, nil
}

// MergeWithDefaults returns a new Config with zero-valued fields filled from
// defaults. CLI flags always win for bools, so bool fields are not merged.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.Threshold == 0 {
		result.Threshold = defaults.Threshold
	}
	if result.CacheTTL == "" {
		result.CacheTTL = defaults.CacheTTL
	}
	if result.OverallTimeout == "" {
		result.OverallTimeout = defaults.OverallTimeout
	}
	if result.MaxRetries == 0 {
		result.MaxRetries = defaults.MaxRetries
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.AIModel == "" {
		result.AIModel = defaults.AIModel
	}
	if result.ProxyEndpoint == "" {
		result.ProxyEndpoint = defaults.ProxyEndpoint
	}
	if result.ProxyAPIKey == "" {
		result.ProxyAPIKey = defaults.ProxyAPIKey
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.ListenAddr == "" {
		result.ListenAddr = defaults.ListenAddr
	}

	return result
}
