package generation

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"mdxpad/internal/editor"
	"mdxpad/internal/llm"
)

// Result is the terminal outcome of a session.
type Result struct {
	SessionID string          `json:"sessionId"`
	State     State           `json:"state"`
	Output    string          `json:"output"`
	Document  string          `json:"document"`
	Strategy  editor.Strategy `json:"strategy,omitempty"`
	Err       error           `json:"-"`
}

// Session is one generation attempt, run by a Controller.
type Session struct {
	ID       string
	Request  llm.GenerationRequest
	Snapshot editor.SelectionSnapshot

	ctx          context.Context
	cancel       context.CancelFunc
	fullResponse bool
	done         chan struct{}

	// guarded by Controller.mu
	output    strings.Builder
	received  bool
	span      *editor.TextRange
	strategy  editor.Strategy
	state     State
	cancelled bool
	result    Result
}

func newSession(parent context.Context, req llm.GenerationRequest, snap editor.SelectionSnapshot, cfg startConfig) *Session {
	ctx, cancel := context.WithCancel(parent)
	s := &Session{
		ID:           uuid.NewString(),
		Request:      req,
		Snapshot:     snap,
		ctx:          ctx,
		cancel:       cancel,
		fullResponse: cfg.fullResponse,
		done:         make(chan struct{}),
		state:        StateRequesting,
	}
	if snap.Range != nil {
		r := *snap.Range
		s.span = &r
	}
	return s
}

// Done is closed once the session reached a terminal state.
func (s *Session) Done() <-chan struct{} { return s.done }

// Wait blocks until the session ends and returns its outcome.
func (s *Session) Wait() Result {
	<-s.done
	return s.result
}

// Target describes what the session writes into.
func (s *Session) Target() string {
	if s.Snapshot.HasRange() {
		return "selection"
	}
	return "document"
}

// StartOption tweaks a single Start call.
type StartOption func(*startConfig)

type startConfig struct {
	fullResponse bool
}

// WithFullResponse waits for the complete response instead of streaming.
func WithFullResponse() StartOption {
	return func(c *startConfig) { c.fullResponse = true }
}
