package events

import (
	"context"
	"log"
)

// Emit publishes an event. The default emitter drops everything; the
// composition root installs a real one at startup.
var Emit = func(ctx context.Context, name string, evt GenerationEvent) {}

// EnableLogEmitter routes events to the process log.
func EnableLogEmitter() {
	Emit = func(ctx context.Context, name string, evt GenerationEvent) {
		if evt.SessionKey == "" {
			if session := SessionFromContext(ctx); session != "" {
				evt.SessionKey = session
			}
		}
		logEvent(name, evt)
	}
}

// SetCustomEmitter replaces the emitter, e.g. to fan events out over a
// stream. Passing nil restores the silent default.
func SetCustomEmitter(f func(ctx context.Context, name string, evt GenerationEvent)) {
	if f == nil {
		Emit = func(context.Context, string, GenerationEvent) {}
		return
	}
	Emit = func(ctx context.Context, name string, evt GenerationEvent) {
		if evt.SessionKey == "" {
			if session := SessionFromContext(ctx); session != "" {
				evt.SessionKey = session
			}
		}
		f(ctx, name, evt)
	}
}

func logEvent(name string, evt GenerationEvent) {
	if evt.SessionKey != "" {
		log.Printf("[%s] %s %s: %s", evt.Type, name, evt.SessionKey, evt.Message)
		return
	}
	log.Printf("[%s] %s: %s", evt.Type, name, evt.Message)
}
