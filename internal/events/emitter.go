package events

import (
	"context"

	"github.com/wailsapp/wails/v2/pkg/runtime"
)

// Emit publishes payload under name. It is a no-op until an emitter is
// installed.
var Emit = func(ctx context.Context, name string, payload any) {}

func EnableRuntimeEmitter() {
	Emit = func(ctx context.Context, name string, payload any) {
		payload = scope(ctx, payload)
		runtime.EventsEmit(ctx, name, payload)
		if evt, ok := payload.(NotifyEvent); ok {
			logRuntimeEvent(ctx, name, evt)
		}
	}
}

func SetCustomEmitter(f func(ctx context.Context, name string, payload any)) {
	if f == nil {
		Emit = func(context.Context, string, any) {}
		return
	}
	Emit = func(ctx context.Context, name string, payload any) {
		f(ctx, name, scope(ctx, payload))
	}
}

// scope fills an empty session key from ctx.
func scope(ctx context.Context, payload any) any {
	session := SessionFromContext(ctx)
	if session == "" {
		return payload
	}
	switch p := payload.(type) {
	case NotifyEvent:
		if p.SessionKey == "" {
			p.SessionKey = session
		}
		return p
	case StateEvent:
		if p.SessionKey == "" {
			p.SessionKey = session
		}
		return p
	case ChunkEvent:
		if p.SessionKey == "" {
			p.SessionKey = session
		}
		return p
	case ContentEvent:
		if p.SessionKey == "" {
			p.SessionKey = session
		}
		return p
	}
	return payload
}
