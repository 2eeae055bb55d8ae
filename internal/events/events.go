package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event types emitted by the user service.
const (
	TypeUserRegistered = "user.registered"
	TypeUserUpdated    = "user.updated"
)

// UserEvent records a change to a single user.
type UserEvent struct {
	ID         uuid.UUID `json:"id"`
	Type       string    `json:"type"`
	UserID     string    `json:"user_id"`
	OccurredAt time.Time `json:"occurred_at"`
	// Fields lists the attributes touched by an update.
	Fields []string `json:"fields,omitempty"`
}

// NewUserEvent creates an event of eventType for userID.
func NewUserEvent(eventType, userID string, fields ...string) *UserEvent {
	return &UserEvent{
		ID:         uuid.New(),
		Type:       eventType,
		UserID:     userID,
		OccurredAt: time.Now().UTC(),
		Fields:     fields,
	}
}

// EventHandler processes events.
type EventHandler interface {
	HandleEvent(ctx context.Context, event *UserEvent) error
}

// HandlerFunc adapts a function to EventHandler.
type HandlerFunc func(ctx context.Context, event *UserEvent) error

// HandleEvent calls f.
func (f HandlerFunc) HandleEvent(ctx context.Context, event *UserEvent) error {
	return f(ctx, event)
}

// EventEmitter publishes events to whoever is listening.
type EventEmitter interface {
	EmitEvent(ctx context.Context, event *UserEvent) error
}
