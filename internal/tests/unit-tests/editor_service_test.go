package unit_tests

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mdxpad/internal/editor"
	"mdxpad/internal/events"
	"mdxpad/internal/generation"
	"mdxpad/internal/llm"
	"mdxpad/internal/models"
	"mdxpad/internal/services"
	"mdxpad/internal/tests/mocks"
)

type emitted struct {
	name    string
	payload any
}

type eventLog struct {
	mu  sync.Mutex
	all []emitted
}

func captureEvents(t *testing.T) *eventLog {
	t.Helper()
	log := &eventLog{}
	events.SetCustomEmitter(func(ctx context.Context, name string, payload any) {
		log.mu.Lock()
		log.all = append(log.all, emitted{name, payload})
		log.mu.Unlock()
	})
	t.Cleanup(func() { events.SetCustomEmitter(nil) })
	return log
}

func (l *eventLog) notifications() []events.NotifyEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []events.NotifyEvent
	for _, e := range l.all {
		if n, ok := e.payload.(events.NotifyEvent); ok {
			out = append(out, n)
		}
	}
	return out
}

func (l *eventLog) states() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []string
	for _, e := range l.all {
		if s, ok := e.payload.(events.StateEvent); ok {
			out = append(out, s.State)
		}
	}
	return out
}

func (l *eventLog) contents() []events.ContentEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []events.ContentEvent
	for _, e := range l.all {
		if c, ok := e.payload.(events.ContentEvent); ok {
			out = append(out, c)
		}
	}
	return out
}

type historyRecorder struct {
	mu       sync.Mutex
	created  []models.GenerationRecord
	finished map[string]string
}

func (h *historyRecorder) repo() *mocks.GenerationRecordRepositoryMock {
	h.finished = map[string]string{}
	return &mocks.GenerationRecordRepositoryMock{
		CreateFunc: func(ctx context.Context, r *models.GenerationRecord) error {
			h.mu.Lock()
			h.created = append(h.created, *r)
			h.mu.Unlock()
			return nil
		},
		FinishFunc: func(ctx context.Context, id, state, strategy, errText string, n int) error {
			h.mu.Lock()
			h.finished[id] = state
			h.mu.Unlock()
			return nil
		},
	}
}

func newEditor(t *testing.T, provider *mocks.ProviderMock, content string) (*services.EditorService, *mocks.CredentialStoreMock, *historyRecorder) {
	t.Helper()
	keys := &mocks.CredentialStoreMock{}
	hist := &historyRecorder{}
	svc := services.NewEditorService(services.EditorDeps{
		Resolve: func(llm.ProviderKind) (llm.Provider, error) { return provider, nil },
		Keys:    keys,
		History: services.NewGenerationHistoryService(hist.repo()),
		Content: content,
	})
	svc.Startup(context.Background())
	t.Cleanup(svc.Shutdown)
	return svc, keys, hist
}

func TestEditorService_GenerateReplacesSelection(t *testing.T) {
	log := captureEvents(t)
	provider := &mocks.ProviderMock{Chunks: []string{"Hel", "lo"}}
	svc, keys, hist := newEditor(t, provider, "one\ntwo\nthree")

	require.NoError(t, svc.SetSelection(editor.TextRange{StartLine: 2, StartColumn: 1, EndLine: 2, EndColumn: 4}))
	assert.Equal(t, "two", svc.GetSelectionText())

	require.NoError(t, svc.Generate(services.GenerateInput{Provider: "gemini", APIKey: " key ", Prompt: "greet"}))
	svc.Wait()

	assert.Equal(t, "one\nHello\nthree", svc.GetContent())
	assert.Equal(t, generation.StateIdle, svc.GenerationState())
	assert.Equal(t, []string{"key"}, keys.StoredKeys())
	assert.Equal(t, "key", svc.GetStoredAPIKey())

	calls := provider.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "gemini-2.5-flash", calls[0].Model)
	assert.Contains(t, calls[0].Prompt, "greet")
	assert.Contains(t, calls[0].Prompt, "two")

	require.Len(t, hist.created, 1)
	assert.Equal(t, "selection", hist.created[0].Target)
	assert.Equal(t, "2:1-2:4", hist.created[0].Range)
	assert.Equal(t, "completed", hist.finished[hist.created[0].SessionID])

	assert.Equal(t, []string{"requesting", "streaming", "completed", "idle"}, log.states())
	notes := log.notifications()
	require.Len(t, notes, 1)
	assert.Equal(t, events.EventSuccess, notes[0].Type)
	assert.Equal(t, hist.created[0].SessionID, notes[0].SessionKey)

	// one undo step per streamed chunk
	assert.True(t, svc.Undo())
	assert.Equal(t, "one\nHel\nthree", svc.GetContent())
	assert.True(t, svc.Undo())
	assert.Equal(t, "one\ntwo\nthree", svc.GetContent())
	assert.False(t, svc.Undo())
}

func TestEditorService_GenerateWholeDocument(t *testing.T) {
	captureEvents(t)
	provider := &mocks.ProviderMock{Chunks: []string{"# Fresh"}}
	svc, _, hist := newEditor(t, provider, "old")

	require.NoError(t, svc.Generate(services.GenerateInput{Provider: "openrouter", Model: "openrouter|anthropic/claude-3.5-sonnet", APIKey: "k", Prompt: "rewrite"}))
	svc.Wait()

	assert.Equal(t, "# Fresh", svc.GetContent())
	assert.Equal(t, "anthropic/claude-3.5-sonnet", provider.Calls()[0].Model)
	assert.Equal(t, "rewrite", provider.Calls()[0].Prompt)
	assert.Equal(t, "document", hist.created[0].Target)

	// a whole-document replacement resets the undo stack
	assert.False(t, svc.Undo())
	assert.Equal(t, "# Fresh", svc.GetContent())
}

func TestEditorService_InvalidInputIsIgnored(t *testing.T) {
	log := captureEvents(t)
	provider := &mocks.ProviderMock{Chunks: []string{"x"}}
	svc, keys, hist := newEditor(t, provider, "doc")

	inputs := []services.GenerateInput{
		{Provider: "gemini", APIKey: "", Prompt: "p"},
		{Provider: "gemini", APIKey: "k", Prompt: "   "},
		{Provider: "claude", APIKey: "k", Prompt: "p"},
	}
	for _, in := range inputs {
		assert.NoError(t, svc.Generate(in))
	}
	svc.Wait()

	assert.Empty(t, provider.Calls())
	assert.Empty(t, keys.StoredKeys())
	assert.Empty(t, hist.created)
	assert.Empty(t, log.notifications())
	assert.Equal(t, "doc", svc.GetContent())
}

func TestEditorService_ProviderErrorNotifies(t *testing.T) {
	log := captureEvents(t)
	provider := &mocks.ProviderMock{
		Chunks: []string{"partial"},
		Err:    &llm.ProviderError{Provider: llm.ProviderGemini, Status: 429, Message: "quota"},
	}
	svc, keys, hist := newEditor(t, provider, "doc")

	require.NoError(t, svc.Generate(services.GenerateInput{Provider: "gemini", APIKey: "k", Prompt: "p"}))
	svc.Wait()

	assert.Equal(t, "partial", svc.GetContent())
	assert.Equal(t, []string{"k"}, keys.StoredKeys())
	assert.Equal(t, "failed", hist.finished[hist.created[0].SessionID])
	notes := log.notifications()
	require.Len(t, notes, 1)
	assert.Equal(t, events.EventError, notes[0].Type)
	assert.Contains(t, notes[0].Description, "quota")
}

func TestEditorService_EmptyResponseNotifies(t *testing.T) {
	log := captureEvents(t)
	svc, _, _ := newEditor(t, &mocks.ProviderMock{}, "doc")

	require.NoError(t, svc.Generate(services.GenerateInput{Provider: "gemini", APIKey: "k", Prompt: "p"}))
	svc.Wait()

	assert.Equal(t, "doc", svc.GetContent())
	notes := log.notifications()
	require.Len(t, notes, 1)
	assert.Equal(t, "The model returned no content", notes[0].Message)
}

func TestEditorService_StopKeepsPartialAndStaysQuiet(t *testing.T) {
	log := captureEvents(t)
	gate := make(chan struct{})
	provider := &mocks.ProviderMock{Chunks: []string{"A", "B"}, Gate: gate}
	svc, _, hist := newEditor(t, provider, "doc")

	require.NoError(t, svc.Generate(services.GenerateInput{Provider: "gemini", APIKey: "k", Prompt: "p"}))
	assert.ErrorIs(t, svc.SetContent("typed"), services.ErrGenerationActive)

	gate <- struct{}{}
	require.Eventually(t, func() bool { return svc.GetContent() == "A" }, 2*time.Second, 5*time.Millisecond)
	assert.False(t, svc.Undo())

	assert.True(t, svc.StopGeneration())
	svc.Wait()

	assert.Equal(t, "A", svc.GetContent())
	assert.Equal(t, generation.StateIdle, svc.GenerationState())
	assert.False(t, svc.StopGeneration())
	assert.Equal(t, "cancelled", hist.finished[hist.created[0].SessionID])
	assert.Empty(t, log.notifications())
	assert.NoError(t, svc.SetContent("typed"))
}

func TestEditorService_TemplatePrefixesPrompt(t *testing.T) {
	captureEvents(t)
	provider := &mocks.ProviderMock{Chunks: []string{"ok"}}
	templates := services.NewTemplateService(&mocks.TemplateRepositoryMock{
		GetFunc: func(ctx context.Context, id uint) (*models.Template, error) {
			return &models.Template{ID: id, Name: "brief", Content: "Be brief."}, nil
		},
	})
	svc := services.NewEditorService(services.EditorDeps{
		Resolve:   func(llm.ProviderKind) (llm.Provider, error) { return provider, nil },
		Templates: templates,
		Content:   "doc",
	})
	defer svc.Shutdown()

	require.NoError(t, svc.Generate(services.GenerateInput{Provider: "gemini", APIKey: "k", Prompt: "about cats", TemplateID: 3}))
	svc.Wait()
	assert.Equal(t, "Be brief.\n\nabout cats", provider.Calls()[0].Prompt)
}

func TestEditorService_RenderPreview(t *testing.T) {
	svc := services.NewEditorService(services.EditorDeps{
		Resolve: func(llm.ProviderKind) (llm.Provider, error) { return &mocks.ProviderMock{}, nil },
		Content: "export const meta = {}\n\n# Title\n\n- a\n- b\n",
	})
	defer svc.Shutdown()

	html, err := svc.RenderPreview()
	require.NoError(t, err)
	assert.Contains(t, html, "<h1")
	assert.Contains(t, html, "<li>a</li>")
	assert.NotContains(t, html, "export")
}

func TestEditorService_ContentEventsAndUndoState(t *testing.T) {
	log := captureEvents(t)
	gate := make(chan struct{})
	provider := &mocks.ProviderMock{Chunks: []string{"A", "B"}, Gate: gate}
	svc, _, hist := newEditor(t, provider, "one\ntwo")

	require.NoError(t, svc.SetContent("one\ntwo\nthree"))
	assert.Empty(t, log.contents(), "frontend edits are not echoed back")
	assert.False(t, svc.CanUndo())

	require.NoError(t, svc.SetSelection(editor.TextRange{StartLine: 3, StartColumn: 1, EndLine: 3, EndColumn: 6}))
	require.NoError(t, svc.Generate(services.GenerateInput{Provider: "gemini", APIKey: "k", Prompt: "p"}))
	gate <- struct{}{}
	require.Eventually(t, func() bool { return svc.GetContent() == "one\ntwo\nA" }, 2*time.Second, 5*time.Millisecond)
	assert.False(t, svc.CanUndo(), "undo is disabled while generating")
	gate <- struct{}{} // "B"
	gate <- struct{}{} // end of stream
	svc.Wait()

	sessionID := hist.created[0].SessionID
	streamed := log.contents()
	require.Len(t, streamed, 2)
	for _, c := range streamed {
		assert.Equal(t, sessionID, c.SessionKey)
	}
	assert.Equal(t, "one\ntwo\nAB", streamed[1].Content)

	assert.True(t, svc.CanUndo())
	assert.True(t, svc.Undo())
	all := log.contents()
	require.Len(t, all, 3)
	assert.Equal(t, "one\ntwo\nA", all[2].Content)
	assert.Empty(t, all[2].SessionKey)
}
