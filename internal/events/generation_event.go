// Package events carries generation progress notifications from the
// pipeline to whoever is observing it (logs in the server, a stream in a
// richer deployment).
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

// Well-known event names emitted by the generation pipeline.
const (
	GenerationStarted = "event:generation:started"
	GenerationAttempt = "event:generation:attempt"
	GenerationRetry   = "event:generation:retry"
	GenerationDone    = "event:generation:done"
	GenerationFailed  = "event:generation:failed"
	ImportStarted     = "event:import:started"
	ImportDone        = "event:import:done"
)

// GenerationEvent is the payload attached to every emission.
type GenerationEvent struct {
	ID         string            `json:"id"`
	Type       EventType         `json:"type"`
	Message    string            `json:"message"`
	Timestamp  time.Time         `json:"timestamp"`
	SessionKey string            `json:"sessionKey,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

type contextKey string

const sessionContextKey contextKey = "codeloom/events/session"

// WithSession returns a derived context annotated with the given session
// key so event emitters can automatically scope payloads.
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

// NewEvent builds a timestamped event with a fresh id.
func NewEvent(eventType EventType, message string) GenerationEvent {
	return GenerationEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// WithMetadata attaches a metadata key/value pair, allocating lazily.
func (e GenerationEvent) WithMetadata(key, value string) GenerationEvent {
	if e.Metadata == nil {
		e.Metadata = make(map[string]string)
	}
	e.Metadata[key] = value
	return e
}
