package llm

import (
	"context"
	"fmt"
	"strings"
)

// ProviderKind identifies an LLM vendor. The set is closed.
type ProviderKind string

const (
	ProviderGemini     ProviderKind = "gemini"
	ProviderOpenRouter ProviderKind = "openrouter"
)

// Kinds lists the supported providers in display order.
func Kinds() []ProviderKind {
	return []ProviderKind{ProviderGemini, ProviderOpenRouter}
}

// ParseProviderKind maps a tag onto a ProviderKind, rejecting unknown tags.
func ParseProviderKind(s string) (ProviderKind, error) {
	switch ProviderKind(strings.ToLower(strings.TrimSpace(s))) {
	case ProviderGemini:
		return ProviderGemini, nil
	case ProviderOpenRouter:
		return ProviderOpenRouter, nil
	}
	return "", fmt.Errorf("%w: unknown provider %q", ErrValidation, s)
}

func (k ProviderKind) DisplayName() string {
	switch k {
	case ProviderGemini:
		return "Google Gemini"
	case ProviderOpenRouter:
		return "OpenRouter"
	}
	return string(k)
}

// DefaultModel is used when the caller does not pick a model.
func (k ProviderKind) DefaultModel() string {
	switch k {
	case ProviderGemini:
		return "gemini-2.5-flash"
	case ProviderOpenRouter:
		return "openai/gpt-4o-mini"
	}
	return ""
}

// Provider turns a prompt into text, either in one response or as a stream.
// Implementations keep no state between calls.
type Provider interface {
	Kind() ProviderKind
	Generate(ctx context.Context, req GenerationRequest) (string, error)
	GenerateStream(ctx context.Context, req GenerationRequest) (ChunkStream, error)
}

// ChunkStream yields text fragments in order. Recv returns io.EOF once the
// provider signals the end of the response. Close releases the underlying
// connection and is safe to call more than once.
type ChunkStream interface {
	Recv() (string, error)
	Close() error
}
