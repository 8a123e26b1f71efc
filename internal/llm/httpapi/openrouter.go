package httpapi

import (
	"context"

	"mdxpad/internal/config"
	"mdxpad/internal/llm"
	"mdxpad/internal/llm/stream"
)

const openRouterFullTextPath = "choices.0.message.content"

type OpenRouterProvider struct {
	opts Options
}

var _ llm.Provider = (*OpenRouterProvider)(nil)

func NewOpenRouterProvider(opts Options) *OpenRouterProvider {
	return &OpenRouterProvider{opts: opts.withDefaults(config.DefaultOpenRouterBaseURL)}
}

type openRouterMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openRouterRequest struct {
	Model       string              `json:"model"`
	Messages    []openRouterMessage `json:"messages"`
	Temperature float64             `json:"temperature"`
	MaxTokens   int                 `json:"max_tokens"`
	Stream      bool                `json:"stream,omitempty"`
}

func (p *OpenRouterProvider) Kind() llm.ProviderKind { return llm.ProviderOpenRouter }

func (p *OpenRouterProvider) Generate(ctx context.Context, req llm.GenerationRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}
	resp, err := post(ctx, p.Kind(), p.opts.HTTPClient, p.opts.BaseURL+"/chat/completions", p.headers(req), p.body(req, false))
	if err != nil {
		return "", err
	}
	raw, err := readBody(p.Kind(), resp)
	if err != nil {
		return "", err
	}
	text, _ := stream.ExtractText(string(raw), openRouterFullTextPath)
	if text == "" {
		return "", llm.NewEmptyResponseError(p.Kind(), resp.StatusCode)
	}
	return text, nil
}

func (p *OpenRouterProvider) GenerateStream(ctx context.Context, req llm.GenerationRequest) (llm.ChunkStream, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	headers := p.headers(req)
	headers["Accept"] = "text/event-stream"
	resp, err := post(ctx, p.Kind(), p.opts.HTTPClient, p.opts.BaseURL+"/chat/completions", headers, p.body(req, true))
	if err != nil {
		return nil, err
	}
	return stream.NewReader(ctx, resp.Body, stream.OpenRouterEnvelope), nil
}

func (p *OpenRouterProvider) headers(req llm.GenerationRequest) map[string]string {
	return map[string]string{
		"Authorization": "Bearer " + req.APIKey,
		"X-Title":       "mdxpad",
	}
}

func (p *OpenRouterProvider) body(req llm.GenerationRequest, streaming bool) openRouterRequest {
	return openRouterRequest{
		Model:       req.Model,
		Messages:    []openRouterMessage{{Role: "user", Content: req.WrappedPrompt()}},
		Temperature: p.opts.Temperature,
		MaxTokens:   p.opts.MaxOutputTokens,
		Stream:      streaming,
	}
}
