package events

import (
	"context"
	"time"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the subject suffix for this event (e.g. "chat.completed").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

const (
	TypeChatCompleted     = "chat.completed"
	TypeModerationFlagged = "moderation.flagged"
	TypeKnowledgeReload   = "knowledge.reload"
)

// Publisher delivers events to the bus. Publishing is best-effort; callers
// log failures and carry on.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NopPublisher drops every event. It is used when no bus is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

// BaseEvent carries a type and payload without a dedicated struct.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// ChatCompleted is emitted after every answered chat turn.
type ChatCompleted struct {
	SessionID      string
	UserID         string
	Intent         string
	AgentUsed      string
	Success        bool
	Tools          []string
	ResponseTimeMs int64
	OccurredAt     time.Time
}

func (e ChatCompleted) EventType() string { return TypeChatCompleted }

func (e ChatCompleted) Payload() map[string]interface{} {
	return map[string]interface{}{
		"session_id":       e.SessionID,
		"user_id":          e.UserID,
		"intent":           e.Intent,
		"agent_used":       e.AgentUsed,
		"success":          e.Success,
		"tools":            e.Tools,
		"response_time_ms": e.ResponseTimeMs,
		"occurred_at":      e.OccurredAt.Format(time.RFC3339),
	}
}

func (e ChatCompleted) Timestamp() time.Time { return e.OccurredAt }

// ModerationFlagged is emitted when a message is blocked. It never
// carries the message text.
type ModerationFlagged struct {
	SessionID  string
	Categories []string
	Degraded   bool
	OccurredAt time.Time
}

func (e ModerationFlagged) EventType() string { return TypeModerationFlagged }

func (e ModerationFlagged) Payload() map[string]interface{} {
	return map[string]interface{}{
		"session_id":  e.SessionID,
		"categories":  e.Categories,
		"degraded":    e.Degraded,
		"occurred_at": e.OccurredAt.Format(time.RFC3339),
	}
}

func (e ModerationFlagged) Timestamp() time.Time { return e.OccurredAt }
