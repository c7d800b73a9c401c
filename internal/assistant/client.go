// Package assistant drives remote assistant runs: thread resolution,
// message submission, run polling with adaptive backoff, and streaming.
package assistant

import (
	"context"
)

// RunStatus is the remote service's view of a run. The orchestrator only
// observes these values; it never mutates run state directly.
type RunStatus string

const (
	RunStatusQueued         RunStatus = "queued"
	RunStatusInProgress     RunStatus = "in_progress"
	RunStatusRequiresAction RunStatus = "requires_action"
	RunStatusCompleted      RunStatus = "completed"
	RunStatusFailed         RunStatus = "failed"
)

// Thread is an opaque remote conversation handle.
type Thread struct {
	ID string
}

// ThreadMessage is a message stored in a remote thread.
type ThreadMessage struct {
	ID        string
	Role      string
	Content   string
	CreatedAt int64
}

// Run is one remote inference invocation against a thread.
type Run struct {
	ID        string
	Status    RunStatus
	LastError string
}

// Client is the remote assistant service consumed by the orchestrator.
// All resources are addressed by opaque string identifiers.
type Client interface {
	CreateThread(ctx context.Context) (Thread, error)
	RetrieveThread(ctx context.Context, threadID string) (Thread, error)
	DeleteThread(ctx context.Context, threadID string) error

	// CreateMessage appends a message to a thread.
	CreateMessage(ctx context.Context, threadID, role, content string) (ThreadMessage, error)
	// ListMessages returns up to limit messages, newest first.
	ListMessages(ctx context.Context, threadID string, limit int) ([]ThreadMessage, error)
	RetrieveMessage(ctx context.Context, threadID, messageID string) (ThreadMessage, error)

	CreateRun(ctx context.Context, threadID string) (Run, error)
	RetrieveRun(ctx context.Context, threadID, runID string) (Run, error)

	// ListModels is the cheapest available remote call, used as an
	// availability probe.
	ListModels(ctx context.Context) ([]string, error)
}
