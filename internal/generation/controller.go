// Package generation drives one streaming generation at a time into an
// editor host.
package generation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"

	"mdxpad/internal/editor"
	"mdxpad/internal/llm"
)

// ProviderResolver returns the provider used for kind.
type ProviderResolver func(kind llm.ProviderKind) (llm.Provider, error)

type Option func(*Controller)

func WithObserver(o Observer) Option {
	return func(c *Controller) { c.observer = o }
}

// WithApplier replaces the default applier built over the host.
func WithApplier(a *editor.Applier) Option {
	return func(c *Controller) { c.applier = a }
}

// WithLogger enables debug output.
func WithLogger(l *log.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// Controller owns the generation state machine. At most one session is
// active; starting another cancels the previous one first.
type Controller struct {
	host     editor.Host
	applier  *editor.Applier
	resolve  ProviderResolver
	observer Observer
	logger   *log.Logger

	mu     sync.Mutex
	state  State
	active *Session
}

func NewController(host editor.Host, resolve ProviderResolver, opts ...Option) *Controller {
	c := &Controller{
		host:     host,
		resolve:  resolve,
		observer: ObserverFuncs{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.applier == nil {
		c.applier = editor.NewApplier(host)
		c.applier.SetLogger(c.logger)
	}
	return c
}

// State returns the controller state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Active returns the running session, if any.
func (c *Controller) Active() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Start validates the request and target, then runs a new session on its own
// goroutine. Validation failures return an error matching llm.ErrValidation
// and leave the controller untouched.
func (c *Controller) Start(ctx context.Context, req llm.GenerationRequest, snap editor.SelectionSnapshot, opts ...StartOption) (*Session, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if snap.Range != nil {
		if err := editor.ValidateRange(c.host, *snap.Range); err != nil {
			return nil, fmt.Errorf("%w: %w", llm.ErrValidation, err)
		}
		// the span is tracked from the clamped start, where the first write lands
		clamped := editor.ClampRange(c.host.GetValue(), *snap.Range)
		snap.Range = &clamped
	}
	provider, err := c.resolve(req.Provider)
	if err != nil {
		return nil, fmt.Errorf("%w: resolve provider: %w", llm.ErrValidation, err)
	}

	var cfg startConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	c.mu.Lock()
	if prev := c.active; prev != nil {
		c.cancelLocked(prev)
	}
	sess := newSession(ctx, req, snap, cfg)
	c.active = sess
	c.state = StateRequesting
	c.mu.Unlock()

	c.observer.StateChanged(sess.ID, StateRequesting)
	go c.run(sess, provider)
	return sess, nil
}

// Cancel stops the active session. Text already written stays in place and
// nothing is written afterwards. It reports whether there was a session in
// flight.
func (c *Controller) Cancel() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == nil || !c.state.Active() {
		return false
	}
	c.cancelLocked(c.active)
	c.state = StateCancelled
	return true
}

func (c *Controller) cancelLocked(s *Session) {
	if s.state.Terminal() {
		return
	}
	s.cancelled = true
	s.cancel()
}

func (c *Controller) run(s *Session, provider llm.Provider) {
	defer close(s.done)
	if s.fullResponse {
		c.finish(s, c.runFull(s, provider))
		return
	}
	c.finish(s, c.runStream(s, provider))
}

func (c *Controller) runFull(s *Session, provider llm.Provider) error {
	text, err := provider.Generate(s.ctx, s.Request)
	if err != nil {
		return err
	}
	if text == "" {
		return nil
	}
	return c.push(s, text)
}

func (c *Controller) runStream(s *Session, provider llm.Provider) error {
	chunks, err := provider.GenerateStream(s.ctx, s.Request)
	if err != nil {
		return err
	}
	defer chunks.Close()

	for {
		chunk, err := chunks.Recv()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if chunk == "" {
			continue
		}
		if err := c.push(s, chunk); err != nil {
			return err
		}
	}
}

// push appends chunk to the accumulator and writes the whole accumulator over
// the session span. The span then covers exactly what was written.
func (c *Controller) push(s *Session, chunk string) error {
	c.mu.Lock()
	if err := s.ctx.Err(); err != nil {
		c.mu.Unlock()
		return err
	}
	first := !s.received
	s.received = true
	s.output.WriteString(chunk)
	output := s.output.String()
	if first {
		s.state = StateStreaming
		if c.active == s {
			c.state = StateStreaming
		}
	}

	strategy, err := c.applier.Apply(s.span, output)
	if err == nil {
		s.strategy = strategy
		if s.span != nil {
			next := editor.SpanOf(s.span.Start(), output)
			s.span = &next
		}
	}
	content := c.host.GetValue()
	c.mu.Unlock()

	if first {
		c.observer.StateChanged(s.ID, StateStreaming)
	}
	c.observer.ChunkReceived(s.ID, chunk, output)
	if err != nil {
		return err
	}
	c.observer.DocumentChanged(s.ID, content)
	return nil
}

func (c *Controller) finish(s *Session, err error) {
	c.mu.Lock()
	var state State
	switch {
	case s.cancelled, llm.IsCancellation(err), err != nil && s.ctx.Err() != nil:
		state, err = StateCancelled, nil
	case err != nil:
		state = StateFailed
	case !s.received:
		state, err = StateFailed, llm.NewEmptyResponseError(s.Request.Provider, 0)
	default:
		state = StateCompleted
	}
	s.state = state
	s.result = Result{
		SessionID: s.ID,
		State:     state,
		Output:    s.output.String(),
		Document:  c.host.GetValue(),
		Strategy:  s.strategy,
		Err:       err,
	}
	isActive := c.active == s
	if isActive {
		c.state = state
	}
	c.mu.Unlock()

	s.cancel()
	if err != nil && c.logger != nil {
		c.logger.Printf("generation: session %s %s: %v", s.ID, state, err)
	}
	c.observer.StateChanged(s.ID, state)

	if !isActive {
		return
	}
	c.mu.Lock()
	idle := c.active == s
	if idle {
		c.active = nil
		c.state = StateIdle
	}
	c.mu.Unlock()
	if idle {
		c.observer.StateChanged(s.ID, StateIdle)
	}
}
