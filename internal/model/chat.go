// Package model defines data structures for the assistant gateway.
package model

import (
	"time"
)

// Role represents the role of a message sender.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatRequest is the request to send a message to the assistant.
type ChatRequest struct {
	Message  string `json:"message"`
	UserID   string `json:"user_id"`
	ThreadID string `json:"thread_id,omitempty"`
}

// ChatResponse is the envelope returned for a completed or in-flight run.
// It is constructed fresh per run result and never mutated afterwards.
type ChatResponse struct {
	Response  string    `json:"response"`
	ThreadID  string    `json:"thread_id"`
	MessageID string    `json:"message_id"`
	Timestamp time.Time `json:"timestamp"`
	Status    string    `json:"status"`
}

// HistoryEntry is a read-only projection of a remote message.
type HistoryEntry struct {
	Role      Role   `json:"role"`
	Content   string `json:"content"`
	MessageID string `json:"message_id"`
	CreatedAt int64  `json:"created_at"`
}

// ErrorResponse is the JSON envelope for all surfaced errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	DocsURL string `json:"docs_url,omitempty"`
}

// DeleteThreadResponse is the response after deleting a user's thread.
type DeleteThreadResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// HealthResponse is the response for the health endpoint.
type HealthResponse struct {
	Status      string `json:"status"`
	AssistantID string `json:"assistant_id"`
}
