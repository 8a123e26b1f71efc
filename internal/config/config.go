package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"mdxpad/internal/llm"
)

// Transport selects how providers are reached.
type Transport string

const (
	// TransportHTTP talks to the vendor REST endpoints directly.
	TransportHTTP Transport = "http"
	// TransportSDK goes through the eino chat model clients.
	TransportSDK Transport = "sdk"
)

const (
	DefaultGeminiBaseURL     = "https://generativelanguage.googleapis.com/v1beta"
	DefaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"
)

type EndpointConfig struct {
	BaseURL string `toml:"base_url"`
}

type KeyringConfig struct {
	// Backend restricts the keyring to one backend ("file", "keychain",
	// "secret-service", "wincred", ...). Empty lets the keyring pick.
	Backend string `toml:"backend,omitempty"`
	FileDir string `toml:"file_dir,omitempty"`
}

type Config struct {
	DataDirectory   string         `toml:"data_directory"`
	Transport       Transport      `toml:"transport"`
	DefaultProvider string         `toml:"default_provider"`
	DefaultModel    string         `toml:"default_model"`
	Temperature     float64        `toml:"temperature"`
	MaxOutputTokens int            `toml:"max_output_tokens"`
	Gemini          EndpointConfig `toml:"gemini"`
	OpenRouter      EndpointConfig `toml:"openrouter"`
	Keyring         KeyringConfig  `toml:"keyring"`
}

var Debug = false
var DebugLog *log.Logger

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		DataDirectory:   GetDefaultDataDir(),
		Transport:       TransportHTTP,
		DefaultProvider: string(llm.ProviderGemini),
		DefaultModel:    "gemini-2.5-flash",
		Temperature:     llm.DefaultTemperature,
		MaxOutputTokens: llm.DefaultMaxOutputTokens,
		Gemini:          EndpointConfig{BaseURL: DefaultGeminiBaseURL},
		OpenRouter:      EndpointConfig{BaseURL: DefaultOpenRouterBaseURL},
	}
}

// Load reads the user's config file, if any, and applies env overrides.
func Load() (*Config, error) {
	return LoadFrom(GetConfigFilePath())
}

// LoadFrom reads path on top of the defaults. A missing file is not an error.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: decode %s: %w", path, err)
		}
	}
	cfg.applyEnvOverrides()
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg to path as TOML, creating parent directories.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("config: create dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("MDXPAD_DATA_DIR"); v != "" {
		c.DataDirectory = v
	}
	if v := os.Getenv("MDXPAD_TRANSPORT"); v != "" {
		c.Transport = Transport(v)
	}
	if v := os.Getenv("MDXPAD_DEFAULT_PROVIDER"); v != "" {
		c.DefaultProvider = v
	}
	if v := os.Getenv("MDXPAD_DEFAULT_MODEL"); v != "" {
		c.DefaultModel = v
	}
	if v := os.Getenv("MDXPAD_GEMINI_BASE_URL"); v != "" {
		c.Gemini.BaseURL = v
	}
	if v := os.Getenv("MDXPAD_OPENROUTER_BASE_URL"); v != "" {
		c.OpenRouter.BaseURL = v
	}
	if v := os.Getenv("MDXPAD_KEYRING_BACKEND"); v != "" {
		c.Keyring.Backend = v
	}
	if v := os.Getenv("MDXPAD_TEMPERATURE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Temperature = f
		}
	}
}

func (c *Config) normalize() error {
	c.Transport = Transport(strings.ToLower(strings.TrimSpace(string(c.Transport))))
	switch c.Transport {
	case "":
		c.Transport = TransportHTTP
	case TransportHTTP, TransportSDK:
	default:
		return fmt.Errorf("config: unknown transport %q", c.Transport)
	}
	if c.DefaultProvider != "" {
		kind, err := llm.ParseProviderKind(c.DefaultProvider)
		if err != nil {
			return fmt.Errorf("config: default_provider: %w", err)
		}
		c.DefaultProvider = string(kind)
	}
	if c.Temperature <= 0 {
		c.Temperature = llm.DefaultTemperature
	}
	if c.MaxOutputTokens <= 0 {
		c.MaxOutputTokens = llm.DefaultMaxOutputTokens
	}
	c.Gemini.BaseURL = strings.TrimRight(c.Gemini.BaseURL, "/")
	c.OpenRouter.BaseURL = strings.TrimRight(c.OpenRouter.BaseURL, "/")
	if c.Gemini.BaseURL == "" {
		c.Gemini.BaseURL = DefaultGeminiBaseURL
	}
	if c.OpenRouter.BaseURL == "" {
		c.OpenRouter.BaseURL = DefaultOpenRouterBaseURL
	}
	return nil
}

func (c *Config) DataDir() string {
	return ExpandPath(c.DataDirectory)
}

// DatabasePath is where the sqlite history/settings database lives.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir(), "mdxpad.db")
}

// BaseURL returns the endpoint root configured for kind.
func (c *Config) BaseURL(kind llm.ProviderKind) string {
	switch kind {
	case llm.ProviderGemini:
		return c.Gemini.BaseURL
	case llm.ProviderOpenRouter:
		return c.OpenRouter.BaseURL
	}
	return ""
}
