// Package client reaches providers through eino chat models.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"google.golang.org/genai"

	"mdxpad/internal/llm"
)

// ChatModelFactory builds a chat model for one request. The key and model
// travel with the request, so a model is created per call.
type ChatModelFactory func(ctx context.Context, req llm.GenerationRequest) (model.BaseChatModel, error)

type Options struct {
	BaseURL         string
	Temperature     float64
	MaxOutputTokens int
}

func (o Options) temperature() float32 {
	if o.Temperature <= 0 {
		return llm.DefaultTemperature
	}
	return float32(o.Temperature)
}

func (o Options) maxTokens() int {
	if o.MaxOutputTokens <= 0 {
		return llm.DefaultMaxOutputTokens
	}
	return o.MaxOutputTokens
}

// EinoProvider adapts an eino chat model to llm.Provider.
type EinoProvider struct {
	kind    llm.ProviderKind
	factory ChatModelFactory
	opts    Options
}

var _ llm.Provider = (*EinoProvider)(nil)

func NewEinoProvider(kind llm.ProviderKind, factory ChatModelFactory, opts Options) *EinoProvider {
	return &EinoProvider{kind: kind, factory: factory, opts: opts}
}

// NewGeminiProvider uses the eino gemini model over the genai client.
func NewGeminiProvider(opts Options) *EinoProvider {
	return NewEinoProvider(llm.ProviderGemini, func(ctx context.Context, req llm.GenerationRequest) (model.BaseChatModel, error) {
		cc := &genai.ClientConfig{
			APIKey:  req.APIKey,
			Backend: genai.BackendGeminiAPI,
		}
		if opts.BaseURL != "" {
			cc.HTTPOptions = genai.HTTPOptions{BaseURL: geminiSDKBase(opts.BaseURL)}
		}
		cli, err := genai.NewClient(ctx, cc)
		if err != nil {
			return nil, fmt.Errorf("create genai client: %w", err)
		}
		temp := opts.temperature()
		maxTokens := opts.maxTokens()
		return gemini.NewChatModel(ctx, &gemini.Config{
			Client:      cli,
			Model:       req.Model,
			MaxTokens:   &maxTokens,
			Temperature: &temp,
		})
	}, opts)
}

// NewOpenRouterProvider uses the eino openai model pointed at OpenRouter's
// OpenAI-compatible API.
func NewOpenRouterProvider(opts Options) *EinoProvider {
	return NewEinoProvider(llm.ProviderOpenRouter, func(ctx context.Context, req llm.GenerationRequest) (model.BaseChatModel, error) {
		temp := opts.temperature()
		maxTokens := opts.maxTokens()
		return openai.NewChatModel(ctx, &openai.ChatModelConfig{
			APIKey:      req.APIKey,
			BaseURL:     opts.BaseURL,
			Model:       req.Model,
			Temperature: &temp,
			MaxTokens:   &maxTokens,
		})
	}, opts)
}

// geminiSDKBase strips the API version suffix; genai appends its own.
func geminiSDKBase(base string) string {
	base = strings.TrimRight(base, "/")
	if i := strings.LastIndex(base, "/v1"); i > 0 {
		return base[:i] + "/"
	}
	return base + "/"
}

func (p *EinoProvider) Kind() llm.ProviderKind { return p.kind }

func (p *EinoProvider) Generate(ctx context.Context, req llm.GenerationRequest) (string, error) {
	cm, err := p.model(ctx, req)
	if err != nil {
		return "", err
	}
	msg, err := cm.Generate(ctx, messages(req), p.callOptions()...)
	if err != nil {
		return "", p.wrap(ctx, err)
	}
	if msg == nil || msg.Content == "" {
		return "", llm.NewEmptyResponseError(p.kind, 0)
	}
	return msg.Content, nil
}

func (p *EinoProvider) GenerateStream(ctx context.Context, req llm.GenerationRequest) (llm.ChunkStream, error) {
	cm, err := p.model(ctx, req)
	if err != nil {
		return nil, err
	}
	reader, err := cm.Stream(ctx, messages(req), p.callOptions()...)
	if err != nil {
		return nil, p.wrap(ctx, err)
	}
	if reader == nil {
		return nil, &llm.ProviderError{Provider: p.kind, Message: "model returned nil stream reader"}
	}
	return &messageStream{ctx: ctx, provider: p, reader: reader}, nil
}

func (p *EinoProvider) model(ctx context.Context, req llm.GenerationRequest) (model.BaseChatModel, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	cm, err := p.factory(ctx, req)
	if err != nil {
		log.Printf("Error creating %s chat model: %v", p.kind, err)
		return nil, &llm.ProviderError{Provider: p.kind, Message: "create chat model", Err: err}
	}
	return cm, nil
}

func (p *EinoProvider) callOptions() []model.Option {
	return []model.Option{
		model.WithTemperature(p.opts.temperature()),
		model.WithMaxTokens(p.opts.maxTokens()),
	}
}

func (p *EinoProvider) wrap(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	var perr *llm.ProviderError
	if errors.As(err, &perr) {
		return err
	}
	return &llm.ProviderError{Provider: p.kind, Message: err.Error(), Err: err}
}

func messages(req llm.GenerationRequest) []*schema.Message {
	return []*schema.Message{
		schema.SystemMessage(llm.SystemPreamble),
		schema.UserMessage(req.Prompt),
	}
}

// messageStream turns assistant message deltas into text chunks.
type messageStream struct {
	ctx       context.Context
	provider  *EinoProvider
	reader    *schema.StreamReader[*schema.Message]
	closeOnce sync.Once
}

func (s *messageStream) Recv() (string, error) {
	for {
		if err := s.ctx.Err(); err != nil {
			s.Close()
			return "", err
		}
		msg, err := s.reader.Recv()
		if err != nil {
			s.Close()
			if errors.Is(err, io.EOF) {
				return "", io.EOF
			}
			return "", s.provider.wrap(s.ctx, err)
		}
		if msg == nil || msg.Content == "" {
			continue
		}
		return msg.Content, nil
	}
}

func (s *messageStream) Close() error {
	s.closeOnce.Do(s.reader.Close)
	return nil
}
