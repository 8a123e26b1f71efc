package llm

import (
	"fmt"
	"strings"
)

const (
	DefaultTemperature     = 0.7
	DefaultMaxOutputTokens = 8192
)

// SystemPreamble is prepended to every prompt sent to a provider.
const SystemPreamble = `You are an expert MDX content writer. Respond with MDX only.
Do not wrap the response in code fences and do not add commentary before or after it.
The response is inserted verbatim into the user's document.`

// GenerationRequest is one generation attempt. It is never persisted.
type GenerationRequest struct {
	Prompt   string       `json:"prompt"`
	Model    string       `json:"model"`
	APIKey   string       `json:"-"`
	Provider ProviderKind `json:"provider"`
}

// NewGenerationRequest trims its inputs and rejects an empty prompt or key.
// The model name is passed through unvalidated.
func NewGenerationRequest(provider ProviderKind, model, apiKey, prompt string) (GenerationRequest, error) {
	req := GenerationRequest{
		Prompt:   strings.TrimSpace(prompt),
		Model:    strings.TrimSpace(model),
		APIKey:   strings.TrimSpace(apiKey),
		Provider: provider,
	}
	if req.Prompt == "" {
		return GenerationRequest{}, fmt.Errorf("%w: prompt is required", ErrValidation)
	}
	if req.APIKey == "" {
		return GenerationRequest{}, fmt.Errorf("%w: api key is required", ErrValidation)
	}
	return req, nil
}

// Validate re-checks the invariants of a request built without the constructor.
func (r GenerationRequest) Validate() error {
	if strings.TrimSpace(r.Prompt) == "" {
		return fmt.Errorf("%w: prompt is required", ErrValidation)
	}
	if strings.TrimSpace(r.APIKey) == "" {
		return fmt.Errorf("%w: api key is required", ErrValidation)
	}
	if _, err := ParseProviderKind(string(r.Provider)); err != nil {
		return err
	}
	return nil
}

// WrappedPrompt is the text actually sent: preamble plus user prompt.
func (r GenerationRequest) WrappedPrompt() string {
	return SystemPreamble + "\n\n" + r.Prompt
}
