package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_FromFile(t *testing.T) {
	path := writeConfig(t, `{
		"threshold": 200,
		"cache_ttl": "12h",
		"api_key": "file-key",
		"listen_addr": "localhost:8080"
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 200, cfg.Threshold)
	assert.Equal(t, "file-key", cfg.APIKey)

	ttl, err := cfg.ParsedCacheTTL()
	require.NoError(t, err)
	assert.Equal(t, 12*time.Hour, ttl)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `{"api_key": "file-key"}`)
	t.Setenv("GEMINI_API_KEY", "env-key")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env-key", cfg.APIKey)
}

func TestLoad_EmptyPathUsesEnvOnly(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/extractor")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/extractor", cfg.DatabaseURL)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.json")
	assert.Error(t, err)
}

func TestValidate_BadDuration(t *testing.T) {
	cfg := Config{CacheTTL: "one day"}
	assert.Error(t, cfg.Validate())
}

func TestValidate_NegativeThreshold(t *testing.T) {
	cfg := Config{Threshold: -1}
	assert.Error(t, cfg.Validate())
}

func TestValidate_ProxyKeyWithoutEndpoint(t *testing.T) {
	cfg := Config{ProxyAPIKey: "secret"}
	assert.Error(t, cfg.Validate())
}

func TestValidate_BadProxyEndpoint(t *testing.T) {
	cfg := Config{ProxyEndpoint: "not a url"}
	assert.Error(t, cfg.Validate())
}

func TestMergeWithDefaults(t *testing.T) {
	cfg := Config{APIKey: "explicit"}
	merged := cfg.MergeWithDefaults(Config{
		APIKey:     "default-key",
		Threshold:  150,
		ListenAddr: "localhost:9090",
	})

	assert.Equal(t, "explicit", merged.APIKey)
	assert.Equal(t, 150, merged.Threshold)
	assert.Equal(t, "localhost:9090", merged.ListenAddr)
}
