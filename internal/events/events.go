package events

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventInfo    EventType = "info"
	EventWarn    EventType = "warn"
	EventSuccess EventType = "success"
	EventError   EventType = "error"
)

const (
	EditorContent   = "events:editor:content"
	GenerationState = "events:generation:state"
	GenerationChunk = "events:generation:chunk"
	Notify          = "events:notify"
)

// NotifyEvent is a toast shown by the frontend.
type NotifyEvent struct {
	ID          string            `json:"id"`
	Type        EventType         `json:"type"`
	Message     string            `json:"message"`
	Description string            `json:"description,omitempty"`
	Timestamp   time.Time         `json:"timestamp"`
	SessionKey  string            `json:"sessionKey,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// WithDescription returns a copy of e carrying a secondary line of text.
func (e NotifyEvent) WithDescription(desc string) NotifyEvent {
	e.Description = desc
	return e
}

// StateEvent reports a generation lifecycle change.
type StateEvent struct {
	SessionKey string    `json:"sessionKey,omitempty"`
	State      string    `json:"state"`
	Active     bool      `json:"active"`
	Timestamp  time.Time `json:"timestamp"`
}

// ChunkEvent carries one streamed fragment plus the accumulated length.
type ChunkEvent struct {
	SessionKey string `json:"sessionKey,omitempty"`
	Chunk      string `json:"chunk"`
	Length     int    `json:"length"`
}

// ContentEvent carries the full document after a backend-side change.
type ContentEvent struct {
	SessionKey string `json:"sessionKey,omitempty"`
	Content    string `json:"content"`
}

type contextKey string

const sessionContextKey contextKey = "mdxpad/events/session"

// WithSession returns a derived context annotated with the given session key
// so event emitters can automatically scope payloads.
func WithSession(ctx context.Context, sessionKey string) context.Context {
	if strings.TrimSpace(sessionKey) == "" {
		return ctx
	}
	return context.WithValue(ctx, sessionContextKey, sessionKey)
}

// SessionFromContext extracts the session key associated with ctx.
func SessionFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(sessionContextKey).(string); ok {
		return v
	}
	return ""
}

func CreateNotifyEvent(eventType EventType, message string) NotifyEvent {
	return NotifyEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Message:   message,
		Timestamp: time.Now(),
	}
}

func NewInfo(message string) NotifyEvent    { return CreateNotifyEvent(EventInfo, message) }
func NewWarn(message string) NotifyEvent    { return CreateNotifyEvent(EventWarn, message) }
func NewError(message string) NotifyEvent   { return CreateNotifyEvent(EventError, message) }
func NewSuccess(message string) NotifyEvent { return CreateNotifyEvent(EventSuccess, message) }
