package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"mdxpad/internal/assets"
	"mdxpad/internal/editor"
	"mdxpad/internal/events"
	"mdxpad/internal/generation"
	"mdxpad/internal/llm"
)

// ErrGenerationActive rejects document writes while a generation streams.
var ErrGenerationActive = errors.New("a generation is in progress")

// CredentialStore caches the API key between dialog openings.
type CredentialStore interface {
	GetApiKey() (string, error)
	StoreApiKey(apiKey string) error
}

// GenerateInput is what the AI dialog submits.
type GenerateInput struct {
	Provider     string `json:"provider"`
	Model        string `json:"model"`
	APIKey       string `json:"apiKey"`
	Prompt       string `json:"prompt"`
	TemplateID   uint   `json:"templateId,omitempty"`
	FullResponse bool   `json:"fullResponse,omitempty"`
}

// EditorDeps wires the editor service. Only Resolve is required.
type EditorDeps struct {
	Resolve   generation.ProviderResolver
	Keys      CredentialStore
	History   GenerationHistoryService
	Templates TemplateService
	Models    ModelConfigService
	Preview   *PreviewService
	Logger    *log.Logger
	Content   string
}

// EditorService is the frontend's handle on the document and the AI pipeline.
type EditorService struct {
	ctx        context.Context
	buffer     *editor.Buffer
	tracker    *editor.Tracker
	controller *generation.Controller

	keys      CredentialStore
	history   GenerationHistoryService
	templates TemplateService
	models    ModelConfigService
	preview   *PreviewService
	logger    *log.Logger

	// streaming is the session whose writes are already reported by the
	// controller observer; userEdit marks a write that came from the frontend.
	mu          sync.Mutex
	streaming   string
	userEdit    atomic.Bool
	stopContent func()

	wg sync.WaitGroup
}

func NewEditorService(deps EditorDeps) *EditorService {
	content := deps.Content
	if content == "" {
		content = assets.DefaultDocument
	}
	preview := deps.Preview
	if preview == nil {
		preview = NewPreviewService()
	}
	s := &EditorService{
		ctx:       context.Background(),
		buffer:    editor.NewBuffer(content),
		keys:      deps.Keys,
		history:   deps.History,
		templates: deps.Templates,
		models:    deps.Models,
		preview:   preview,
		logger:    deps.Logger,
	}
	s.tracker = editor.NewTracker(s.buffer)
	s.stopContent = s.buffer.OnContentChange(s.contentChanged)
	s.controller = generation.NewController(s.buffer, deps.Resolve,
		generation.WithObserver(generation.ObserverFuncs{
			OnState:    s.stateChanged,
			OnChunk:    s.chunkReceived,
			OnDocument: s.documentChanged,
		}),
		generation.WithLogger(deps.Logger),
	)
	return s
}

func (s *EditorService) Startup(ctx context.Context) {
	s.ctx = ctx
}

// Shutdown stops a running generation and waits for its bookkeeping.
func (s *EditorService) Shutdown() {
	s.controller.Cancel()
	s.wg.Wait()
	s.tracker.Close()
	if s.stopContent != nil {
		s.stopContent()
		s.stopContent = nil
	}
}

func (s *EditorService) GetContent() string {
	return s.buffer.GetValue()
}

// SetContent replaces the document with what the user typed. The document
// is read-only while a generation is active.
func (s *EditorService) SetContent(content string) error {
	if s.controller.State().Active() {
		return ErrGenerationActive
	}
	s.userEdit.Store(true)
	defer s.userEdit.Store(false)
	s.buffer.SetValue(content)
	return nil
}

func (s *EditorService) SetSelection(r editor.TextRange) error {
	if err := s.buffer.SetSelection(&r); err != nil {
		return fmt.Errorf("set selection %s: %w", r, err)
	}
	return nil
}

func (s *EditorService) ClearSelection() {
	_ = s.buffer.SetSelection(nil)
	s.tracker.Clear()
}

func (s *EditorService) GetSelectionText() string {
	return s.tracker.Capture().Text
}

// GetStoredAPIKey pre-fills the AI dialog. Errors read as "nothing stored".
func (s *EditorService) GetStoredAPIKey() string {
	if s.keys == nil {
		return ""
	}
	key, err := s.keys.GetApiKey()
	if err != nil {
		s.logf("editor: read stored api key: %v", err)
		return ""
	}
	return key
}

// Generate starts an AI generation into the captured selection, or the whole
// document when nothing is selected. Inputs that fail validation are ignored.
// Failures reach the user as notify events, not as returned errors.
func (s *EditorService) Generate(input GenerateInput) error {
	kind, err := llm.ParseProviderKind(input.Provider)
	if err != nil {
		return nil
	}

	prompt := input.Prompt
	if input.TemplateID != 0 && s.templates != nil {
		rendered, err := s.templates.Render(input.TemplateID, prompt)
		if err != nil {
			s.notify(s.ctx, events.NewError("Template not available").WithDescription(err.Error()))
			return nil
		}
		prompt = rendered
	}

	snap := s.tracker.Capture()
	req, err := llm.NewGenerationRequest(kind, s.modelFor(kind, input.Model), input.APIKey, generation.BuildPrompt(prompt, snap))
	if err != nil {
		return nil
	}

	var opts []generation.StartOption
	if input.FullResponse {
		opts = append(opts, generation.WithFullResponse())
	}
	sess, err := s.controller.Start(s.ctx, req, snap, opts...)
	if err != nil {
		if errors.Is(err, editor.ErrInvalidRange) {
			s.tracker.Clear()
			s.notify(s.ctx, events.NewError("Invalid selection range").WithDescription("Select the text again and retry."))
			return nil
		}
		if errors.Is(err, llm.ErrValidation) {
			return nil
		}
		s.notify(s.ctx, events.NewError("Could not start generation").WithDescription(err.Error()))
		return nil
	}

	if s.keys != nil {
		if err := s.keys.StoreApiKey(req.APIKey); err != nil {
			s.logf("editor: store api key: %v", err)
		}
	}
	if s.history != nil {
		if err := s.history.Begin(sess); err != nil {
			s.logf("editor: %v", err)
		}
	}

	s.wg.Add(1)
	go s.await(sess)
	return nil
}

func (s *EditorService) await(sess *generation.Session) {
	defer s.wg.Done()
	res := sess.Wait()
	ctx := events.WithSession(s.ctx, res.SessionID)

	if s.history != nil {
		if err := s.history.Finish(res); err != nil {
			s.logf("editor: %v", err)
		}
	}

	switch res.State {
	case generation.StateCompleted:
		s.notify(ctx, events.NewSuccess("Content generated"))
	case generation.StateFailed:
		msg := "Generation failed"
		if errors.Is(res.Err, llm.ErrEmptyResponse) {
			msg = "The model returned no content"
		}
		desc := ""
		if res.Err != nil {
			desc = res.Err.Error()
		}
		s.notify(ctx, events.NewError(msg).WithDescription(desc))
	}
	// the snapshot is consumed; the next generation needs a fresh selection
	s.tracker.Clear()
}

// StopGeneration cancels the running generation, keeping partial output.
func (s *EditorService) StopGeneration() bool {
	return s.controller.Cancel()
}

func (s *EditorService) GenerationState() generation.State {
	return s.controller.State()
}

// Undo reverts the last edit. Refused while a generation is active.
func (s *EditorService) Undo() bool {
	if s.controller.State().Active() {
		return false
	}
	return s.buffer.Undo()
}

// CanUndo drives the frontend's undo button.
func (s *EditorService) CanUndo() bool {
	return !s.controller.State().Active() && s.buffer.CanUndo()
}

func (s *EditorService) RenderPreview() (string, error) {
	return s.preview.Render(s.buffer.GetValue())
}

// Wait blocks until bookkeeping for started generations is done.
func (s *EditorService) Wait() {
	s.wg.Wait()
}

func (s *EditorService) stateChanged(sessionID string, state generation.State) {
	s.mu.Lock()
	if state.Active() {
		s.streaming = sessionID
	} else if s.streaming == sessionID {
		s.streaming = ""
	}
	s.mu.Unlock()

	events.Emit(events.WithSession(s.ctx, sessionID), events.GenerationState, events.StateEvent{
		State:     state.String(),
		Active:    state.Active(),
		Timestamp: time.Now(),
	})
}

func (s *EditorService) chunkReceived(sessionID string, chunk string, output string) {
	events.Emit(events.WithSession(s.ctx, sessionID), events.GenerationChunk, events.ChunkEvent{
		Chunk:  chunk,
		Length: len(output),
	})
}

func (s *EditorService) documentChanged(sessionID string, content string) {
	events.Emit(events.WithSession(s.ctx, sessionID), events.EditorContent, events.ContentEvent{Content: content})
}

// contentChanged reports backend-side document changes, such as Undo, that
// neither the frontend nor the controller observer has announced.
func (s *EditorService) contentChanged(content string) {
	if s.userEdit.Load() {
		return
	}
	s.mu.Lock()
	generating := s.streaming != ""
	s.mu.Unlock()
	if generating {
		return
	}
	events.Emit(s.ctx, events.EditorContent, events.ContentEvent{Content: content})
}

func (s *EditorService) modelFor(kind llm.ProviderKind, model string) string {
	model = strings.TrimSpace(model)
	if model != "" {
		if _, apiName, ok := ModelFromKey(model); ok {
			return apiName
		}
		return model
	}
	if s.models != nil {
		if def, err := s.models.DefaultModel(string(kind)); err == nil {
			return def.APIName
		}
	}
	return kind.DefaultModel()
}

func (s *EditorService) notify(ctx context.Context, evt events.NotifyEvent) {
	events.Emit(ctx, events.Notify, evt)
}

func (s *EditorService) logf(format string, args ...any) {
	if s.logger != nil {
		s.logger.Printf(format, args...)
		return
	}
	log.Printf(format, args...)
}
