// Package httpapi talks to provider REST endpoints directly.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"mdxpad/internal/llm"
)

// Options configures a provider. Zero values fall back to defaults.
type Options struct {
	BaseURL         string
	HTTPClient      *http.Client
	Temperature     float64
	MaxOutputTokens int
}

func (o Options) withDefaults(baseURL string) Options {
	if strings.TrimSpace(o.BaseURL) == "" {
		o.BaseURL = baseURL
	}
	o.BaseURL = strings.TrimRight(o.BaseURL, "/")
	if o.HTTPClient == nil {
		// no timeout: a long generation is bounded by the caller's context
		o.HTTPClient = &http.Client{}
	}
	if o.Temperature <= 0 {
		o.Temperature = llm.DefaultTemperature
	}
	if o.MaxOutputTokens <= 0 {
		o.MaxOutputTokens = llm.DefaultMaxOutputTokens
	}
	return o
}

// post sends payload as JSON and returns the response when it is 2xx.
// Any other status is drained into a ProviderError.
func post(ctx context.Context, kind llm.ProviderKind, client *http.Client, url string, headers map[string]string, payload any) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%s: marshal request: %w", kind, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", kind, err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &llm.ProviderError{Provider: kind, Message: "request failed", Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		raw, _ := io.ReadAll(resp.Body)
		msg := strings.TrimSpace(string(raw))
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, &llm.ProviderError{Provider: kind, Status: resp.StatusCode, Message: msg}
	}
	return resp, nil
}

// readBody reads a full response, rejecting an empty one.
func readBody(kind llm.ProviderKind, resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &llm.ProviderError{Provider: kind, Status: resp.StatusCode, Message: "read response", Err: err}
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, llm.NewEmptyResponseError(kind, resp.StatusCode)
	}
	return raw, nil
}
