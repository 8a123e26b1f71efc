package stream

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/tidwall/gjson"

	"mdxpad/internal/config"
	"mdxpad/internal/llm"
)

// Envelope describes how a provider frames text inside its stream lines.
type Envelope struct {
	Provider llm.ProviderKind
	// TextPath is a gjson path to the text fragment of one line.
	TextPath string
	// Sentinel ends the stream when seen as a whole payload. Empty means none.
	Sentinel string
}

var (
	GeminiEnvelope = Envelope{
		Provider: llm.ProviderGemini,
		TextPath: "candidates.0.content.parts.#.text",
	}
	OpenRouterEnvelope = Envelope{
		Provider: llm.ProviderOpenRouter,
		TextPath: "choices.0.delta.content",
		Sentinel: "[DONE]",
	}
)

// EnvelopeFor returns the framing used by kind.
func EnvelopeFor(kind llm.ProviderKind) (Envelope, error) {
	switch kind {
	case llm.ProviderGemini:
		return GeminiEnvelope, nil
	case llm.ProviderOpenRouter:
		return OpenRouterEnvelope, nil
	}
	return Envelope{}, fmt.Errorf("%w: no stream envelope for %q", llm.ErrValidation, kind)
}

// ExtractText reads path from a JSON document. Array results, such as all
// parts of a Gemini candidate, are concatenated.
func ExtractText(json string, path string) (string, bool) {
	res := gjson.Get(json, path)
	if !res.Exists() {
		return "", false
	}
	if res.IsArray() {
		var b strings.Builder
		for _, part := range res.Array() {
			b.WriteString(part.String())
		}
		return b.String(), true
	}
	return res.String(), true
}

// Reader decodes newline-delimited (optionally SSE-framed) JSON into text
// chunks. It is lazy and cannot be restarted.
type Reader struct {
	ctx  context.Context
	body io.ReadCloser
	br   *bufio.Reader
	env  Envelope

	done      atomic.Bool
	closeOnce sync.Once
	closeErr  error
	skipped   atomic.Int64
}

var _ llm.ChunkStream = (*Reader)(nil)

func NewReader(ctx context.Context, body io.ReadCloser, env Envelope) *Reader {
	return &Reader{
		ctx:  ctx,
		body: body,
		br:   bufio.NewReader(body),
		env:  env,
	}
}

// Recv returns the next non-empty text fragment, io.EOF at the end of the
// stream, or the error that stopped it. The body is released on any terminal
// result.
func (r *Reader) Recv() (string, error) {
	if r.done.Load() {
		if err := r.ctx.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	for {
		if err := r.ctx.Err(); err != nil {
			r.Close()
			return "", err
		}

		line, readErr := r.br.ReadString('\n')
		if line != "" {
			text, ok, err := r.decode(line)
			if err != nil {
				r.Close()
				return "", err
			}
			if ok {
				return text, nil
			}
		}

		if readErr != nil {
			r.Close()
			if errors.Is(readErr, io.EOF) {
				return "", io.EOF
			}
			if err := r.ctx.Err(); err != nil {
				return "", err
			}
			return "", &llm.ProviderError{Provider: r.env.Provider, Message: "read stream", Err: readErr}
		}
	}
}

// Close releases the body. Only the first call closes it.
func (r *Reader) Close() error {
	r.closeOnce.Do(func() {
		r.done.Store(true)
		r.closeErr = r.body.Close()
	})
	return r.closeErr
}

// Skipped counts lines dropped because they could not be decoded.
func (r *Reader) Skipped() int {
	return int(r.skipped.Load())
}

// decode turns one raw line into a fragment. ok is false for lines that carry
// nothing; io.EOF is returned for the sentinel.
func (r *Reader) decode(line string) (text string, ok bool, err error) {
	line = strings.TrimSpace(strings.TrimRight(line, "\r\n"))
	if line == "" || strings.HasPrefix(line, ":") {
		return "", false, nil
	}
	if strings.HasPrefix(line, "event:") || strings.HasPrefix(line, "id:") || strings.HasPrefix(line, "retry:") {
		return "", false, nil
	}
	if payload, found := strings.CutPrefix(line, "data:"); found {
		line = strings.TrimSpace(payload)
	}
	if r.env.Sentinel != "" && line == r.env.Sentinel {
		return "", false, io.EOF
	}

	if !gjson.Valid(line) {
		r.skip(line, "invalid json")
		return "", false, nil
	}
	if perr := gjson.Get(line, "error"); perr.IsObject() {
		return "", false, &llm.ProviderError{
			Provider: r.env.Provider,
			Status:   int(perr.Get("code").Int()),
			Message:  perr.Get("message").String(),
		}
	}

	text, found := ExtractText(line, r.env.TextPath)
	if !found {
		r.skip(line, "no text at "+r.env.TextPath)
		return "", false, nil
	}
	return text, text != "", nil
}

func (r *Reader) skip(line, reason string) {
	r.skipped.Add(1)
	if len(line) > 120 {
		line = line[:120] + "..."
	}
	config.Debugf("stream: %s: skipped line (%s): %s", r.env.Provider, reason, line)
}
