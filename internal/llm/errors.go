package llm

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrValidation marks requests rejected before any network call.
	ErrValidation = errors.New("validation failed")
	// ErrEmptyResponse marks a provider response that carried no text.
	ErrEmptyResponse = errors.New("empty response")
)

// ProviderError is a failure reported by, or while talking to, a provider.
// Status is the HTTP status when one is known and 0 otherwise.
type ProviderError struct {
	Provider ProviderKind
	Status   int
	Message  string
	Err      error
}

func (e *ProviderError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Status > 0 {
		return fmt.Sprintf("%s: status %d: %s", e.Provider, e.Status, msg)
	}
	return fmt.Sprintf("%s: %s", e.Provider, msg)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// NewEmptyResponseError reports a response without content. It matches both
// ErrEmptyResponse and *ProviderError.
func NewEmptyResponseError(kind ProviderKind, status int) *ProviderError {
	return &ProviderError{Provider: kind, Status: status, Message: "provider returned no content", Err: ErrEmptyResponse}
}

// IsCancellation reports whether err stems from the caller cancelling.
func IsCancellation(err error) bool {
	return errors.Is(err, context.Canceled)
}
