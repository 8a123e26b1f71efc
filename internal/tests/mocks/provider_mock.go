package mocks

import (
	"context"
	"io"
	"sync"

	"mdxpad/internal/llm"
)

// ProviderMock streams the configured chunks, then ends with Err or io.EOF.
// Requests are recorded in call order.
type ProviderMock struct {
	KindValue llm.ProviderKind
	Chunks    []string
	Err       error
	// Gate, when set, blocks each Recv until a value arrives or ctx ends.
	Gate chan struct{}

	mu       sync.Mutex
	Requests []llm.GenerationRequest
}

func (m *ProviderMock) Kind() llm.ProviderKind {
	if m.KindValue == "" {
		return llm.ProviderGemini
	}
	return m.KindValue
}

func (m *ProviderMock) Generate(ctx context.Context, req llm.GenerationRequest) (string, error) {
	m.record(req)
	if m.Err != nil {
		return "", m.Err
	}
	var out string
	for _, c := range m.Chunks {
		out += c
	}
	return out, nil
}

func (m *ProviderMock) GenerateStream(ctx context.Context, req llm.GenerationRequest) (llm.ChunkStream, error) {
	m.record(req)
	return &mockStream{ctx: ctx, chunks: append([]string(nil), m.Chunks...), err: m.Err, gate: m.Gate}, nil
}

func (m *ProviderMock) Calls() []llm.GenerationRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]llm.GenerationRequest(nil), m.Requests...)
}

func (m *ProviderMock) record(req llm.GenerationRequest) {
	m.mu.Lock()
	m.Requests = append(m.Requests, req)
	m.mu.Unlock()
}

type mockStream struct {
	ctx    context.Context
	chunks []string
	err    error
	gate   chan struct{}
}

func (s *mockStream) Recv() (string, error) {
	if s.gate != nil {
		select {
		case <-s.ctx.Done():
			return "", s.ctx.Err()
		case <-s.gate:
		}
	}
	if err := s.ctx.Err(); err != nil {
		return "", err
	}
	if len(s.chunks) == 0 {
		if s.err != nil {
			return "", s.err
		}
		return "", io.EOF
	}
	c := s.chunks[0]
	s.chunks = s.chunks[1:]
	return c, nil
}

func (s *mockStream) Close() error { return nil }
