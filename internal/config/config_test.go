package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mdxpad/internal/llm"
)

func TestLoadFrom_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, TransportHTTP, cfg.Transport)
	assert.Equal(t, DefaultGeminiBaseURL, cfg.BaseURL(llm.ProviderGemini))
	assert.Equal(t, DefaultOpenRouterBaseURL, cfg.BaseURL(llm.ProviderOpenRouter))
	assert.Equal(t, 0.7, cfg.Temperature)
	assert.Equal(t, 8192, cfg.MaxOutputTokens)
}

func TestLoadFrom_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
transport = "SDK"
default_provider = "openrouter"
default_model = "openai/gpt-4o-mini"

[gemini]
base_url = "http://localhost:9999/v1beta/"
`), 0o600))
	t.Setenv("MDXPAD_OPENROUTER_BASE_URL", "http://localhost:8888/api/v1")

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, TransportSDK, cfg.Transport)
	assert.Equal(t, "openrouter", cfg.DefaultProvider)
	assert.Equal(t, "http://localhost:9999/v1beta", cfg.Gemini.BaseURL)
	assert.Equal(t, "http://localhost:8888/api/v1", cfg.OpenRouter.BaseURL)
}

func TestLoadFrom_RejectsUnknownValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`transport = "carrier-pigeon"`), 0o600))
	_, err := LoadFrom(path)
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte(`default_provider = "anthropic"`), 0o600))
	_, err = LoadFrom(path)
	assert.ErrorIs(t, err, llm.ErrValidation)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg := Default()
	cfg.DefaultModel = "gemini-2.5-pro"
	require.NoError(t, Save(cfg, path))

	loaded, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "gemini-2.5-pro", loaded.DefaultModel)
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "notes"), ExpandPath("~/notes"))
	assert.Equal(t, "/tmp/x", ExpandPath("/tmp/x"))
}
