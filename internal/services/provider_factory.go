package services

import (
	"fmt"

	"mdxpad/internal/config"
	"mdxpad/internal/generation"
	"mdxpad/internal/llm"
	"mdxpad/internal/llm/client"
	"mdxpad/internal/llm/httpapi"
)

// NewProvider builds the provider for kind over the configured transport.
func NewProvider(cfg *config.Config, kind llm.ProviderKind) (llm.Provider, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	switch cfg.Transport {
	case config.TransportSDK:
		opts := client.Options{
			BaseURL:         cfg.BaseURL(kind),
			Temperature:     cfg.Temperature,
			MaxOutputTokens: cfg.MaxOutputTokens,
		}
		switch kind {
		case llm.ProviderGemini:
			return client.NewGeminiProvider(opts), nil
		case llm.ProviderOpenRouter:
			return client.NewOpenRouterProvider(opts), nil
		}
	default:
		opts := httpapi.Options{
			BaseURL:         cfg.BaseURL(kind),
			Temperature:     cfg.Temperature,
			MaxOutputTokens: cfg.MaxOutputTokens,
		}
		switch kind {
		case llm.ProviderGemini:
			return httpapi.NewGeminiProvider(opts), nil
		case llm.ProviderOpenRouter:
			return httpapi.NewOpenRouterProvider(opts), nil
		}
	}
	return nil, fmt.Errorf("unsupported provider %q", kind)
}

// ProviderResolver binds NewProvider to cfg for the generation controller.
func ProviderResolver(cfg *config.Config) generation.ProviderResolver {
	return func(kind llm.ProviderKind) (llm.Provider, error) {
		return NewProvider(cfg, kind)
	}
}
