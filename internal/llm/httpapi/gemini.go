package httpapi

import (
	"context"
	"net/url"
	"strings"

	"mdxpad/internal/config"
	"mdxpad/internal/llm"
	"mdxpad/internal/llm/stream"
)

type GeminiProvider struct {
	opts Options
}

var _ llm.Provider = (*GeminiProvider)(nil)

func NewGeminiProvider(opts Options) *GeminiProvider {
	return &GeminiProvider{opts: opts.withDefaults(config.DefaultGeminiBaseURL)}
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

func (p *GeminiProvider) Kind() llm.ProviderKind { return llm.ProviderGemini }

func (p *GeminiProvider) Generate(ctx context.Context, req llm.GenerationRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}
	resp, err := post(ctx, p.Kind(), p.opts.HTTPClient, p.endpoint(req, "generateContent", nil), nil, p.body(req))
	if err != nil {
		return "", err
	}
	raw, err := readBody(p.Kind(), resp)
	if err != nil {
		return "", err
	}
	text, _ := stream.ExtractText(string(raw), stream.GeminiEnvelope.TextPath)
	if text == "" {
		return "", llm.NewEmptyResponseError(p.Kind(), resp.StatusCode)
	}
	return text, nil
}

func (p *GeminiProvider) GenerateStream(ctx context.Context, req llm.GenerationRequest) (llm.ChunkStream, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	q := url.Values{"alt": {"sse"}}
	resp, err := post(ctx, p.Kind(), p.opts.HTTPClient, p.endpoint(req, "streamGenerateContent", q),
		map[string]string{"Accept": "text/event-stream"}, p.body(req))
	if err != nil {
		return nil, err
	}
	return stream.NewReader(ctx, resp.Body, stream.GeminiEnvelope), nil
}

func (p *GeminiProvider) endpoint(req llm.GenerationRequest, method string, q url.Values) string {
	if q == nil {
		q = url.Values{}
	}
	q.Set("key", req.APIKey)
	model := strings.TrimPrefix(req.Model, "models/")
	return p.opts.BaseURL + "/models/" + url.PathEscape(model) + ":" + method + "?" + q.Encode()
}

func (p *GeminiProvider) body(req llm.GenerationRequest) geminiRequest {
	return geminiRequest{
		Contents: []geminiContent{{
			Role:  "user",
			Parts: []geminiPart{{Text: req.WrappedPrompt()}},
		}},
		GenerationConfig: geminiGenerationConfig{
			Temperature:     p.opts.Temperature,
			MaxOutputTokens: p.opts.MaxOutputTokens,
		},
	}
}
