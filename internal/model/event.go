package model

import (
	"time"
)

// EventType represents the type of conversation lifecycle event.
type EventType string

const (
	EventTypeMessageSent   EventType = "message_sent"
	EventTypeRunCompleted  EventType = "run_completed"
	EventTypeRunFailed     EventType = "run_failed"
	EventTypeThreadDeleted EventType = "thread_deleted"
)

// ConversationEvent is a transient lifecycle event published for observability.
// The remote service remains the source of truth; events are never replayed.
type ConversationEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	UserID    string    `json:"user_id"`
	ThreadID  string    `json:"thread_id,omitempty"`
	RunID     string    `json:"run_id,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
