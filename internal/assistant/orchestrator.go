package assistant

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/capitalize-ai/assistant-gateway/internal/model"
	"github.com/capitalize-ai/assistant-gateway/pkg/logger"
	"github.com/capitalize-ai/assistant-gateway/pkg/metrics"
)

const (
	defaultPaceDelay    = 2 * time.Second
	defaultRetryDelay   = 2 * time.Second
	defaultPollInterval = 500 * time.Millisecond
	defaultMaxRetries   = 15

	// Remote page-size ceiling for message listing.
	maxHistoryLimit = 100

	pollInitialDelay = time.Second
	pollMaxDelay     = 10 * time.Second
)

// SleepFunc suspends for the given duration or until ctx is done. Injected
// so tests can observe backoff schedules without real delays.
type SleepFunc func(ctx context.Context, d time.Duration) error

func defaultSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// EventPublisher receives conversation lifecycle events. Publishing is
// best-effort and must never fail the request.
type EventPublisher interface {
	Publish(event model.ConversationEvent)
}

// Options tunes the orchestrator's pacing and retry behavior. Zero values
// fall back to defaults.
type Options struct {
	PaceDelay    time.Duration
	RetryDelay   time.Duration
	PollInterval time.Duration
	MaxRetries   int
	Sleep        SleepFunc
}

// Orchestrator drives remote runs to completion: it resolves thread
// handles, submits messages, launches runs, and polls run status with
// adaptive backoff until a terminal state or the iteration budget.
type Orchestrator struct {
	client  Client
	threads *ThreadCache
	events  EventPublisher
	logger  *logger.Logger

	paceDelay    time.Duration
	retryDelay   time.Duration
	pollInterval time.Duration
	maxRetries   int
	sleep        SleepFunc
}

// NewOrchestrator creates a new run orchestrator.
func NewOrchestrator(client Client, threads *ThreadCache, events EventPublisher, log *logger.Logger, opts Options) *Orchestrator {
	if opts.PaceDelay <= 0 {
		opts.PaceDelay = defaultPaceDelay
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = defaultRetryDelay
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultPollInterval
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = defaultMaxRetries
	}
	if opts.Sleep == nil {
		opts.Sleep = defaultSleep
	}

	return &Orchestrator{
		client:       client,
		threads:      threads,
		events:       events,
		logger:       log,
		paceDelay:    opts.PaceDelay,
		retryDelay:   opts.RetryDelay,
		pollInterval: opts.PollInterval,
		maxRetries:   opts.MaxRetries,
		sleep:        opts.Sleep,
	}
}

// SendMessage submits a user message, launches a run, and polls it to a
// terminal state, returning the assistant's latest message as an envelope.
//
// Rate-limited attempts retry the whole sequence from thread resolution,
// which resubmits the user message. That mirrors the upstream behavior
// this service wraps; a retry after a partial failure can therefore leave
// a duplicate user message in the thread.
func (o *Orchestrator) SendMessage(ctx context.Context, userID, text string) (*model.ChatResponse, error) {
	var lastErr error

	for attempt := 0; attempt <= o.maxRetries; attempt++ {
		resp, err := o.sendOnce(ctx, userID, text)
		if err == nil {
			return resp, nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		if !isRateLimited(err) {
			return nil, err
		}

		lastErr = err
		if attempt == o.maxRetries {
			break
		}

		metrics.SendRetriesTotal.Inc()
		delay := o.retryDelay << uint(attempt+1)
		o.logger.Warn("rate limited, retrying send",
			"user_id", userID, "attempt", attempt+1, "delay", delay)
		if err := o.sleep(ctx, delay); err != nil {
			return nil, err
		}
	}

	return nil, rateLimitError(lastErr)
}

func (o *Orchestrator) sendOnce(ctx context.Context, userID, text string) (*model.ChatResponse, error) {
	threadID, err := o.threads.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Static throttle between remote calls to stay under the provider's
	// request-rate ceiling.
	if err := o.sleep(ctx, o.paceDelay); err != nil {
		return nil, err
	}

	if _, err := o.client.CreateMessage(ctx, threadID, string(model.RoleUser), text); err != nil {
		return nil, err
	}
	o.publish(model.EventTypeMessageSent, userID, threadID, "", "")

	if err := o.sleep(ctx, o.paceDelay); err != nil {
		return nil, err
	}

	run, err := o.client.CreateRun(ctx, threadID)
	if err != nil {
		return nil, err
	}

	resp, err := o.awaitRun(ctx, threadID, run.ID)
	if err != nil {
		o.publish(model.EventTypeRunFailed, userID, threadID, run.ID, MessageOf(err))
		return nil, err
	}

	o.publish(model.EventTypeRunCompleted, userID, threadID, run.ID, "")
	return resp, nil
}

// awaitRun polls run status until a terminal state. Queued runs back off
// more gently than in-flight ones since queued work is expected to sit
// longer before progressing. The iteration budget bounds both status
// polls and rate-limit retries.
func (o *Orchestrator) awaitRun(ctx context.Context, threadID, runID string) (*model.ChatResponse, error) {
	for iteration := 0; iteration < o.maxRetries; {
		run, err := o.client.RetrieveRun(ctx, threadID, runID)
		if err != nil {
			if !isRateLimited(err) {
				return nil, err
			}
			iteration++
			if iteration >= o.maxRetries {
				return nil, rateLimitError(err)
			}
			o.logger.Warn("rate limited while polling run",
				"run_id", runID, "iteration", iteration)
			if err := o.sleep(ctx, o.retryDelay<<uint(iteration)); err != nil {
				return nil, err
			}
			continue
		}

		switch run.Status {
		case RunStatusCompleted:
			metrics.RecordRun(string(run.Status), iteration+1)
			return o.latestMessageEnvelope(ctx, threadID)

		case RunStatusFailed:
			metrics.RecordRun(string(run.Status), iteration+1)
			if Classify(run.LastError) == KindQuotaExceeded {
				metrics.QuotaErrorsTotal.Inc()
				return nil, quotaError(errors.New(run.LastError))
			}
			return nil, &Error{
				Kind:    KindRunFailed,
				Message: fmt.Sprintf("assistant run failed: %s", run.LastError),
			}
		}

		var delay time.Duration
		if run.Status == RunStatusQueued {
			delay = backoffDelay(pollInitialDelay, 1.5, iteration, pollMaxDelay)
		} else {
			delay = backoffDelay(pollInitialDelay, 2, iteration, pollMaxDelay)
		}

		o.logger.Debug("run not terminal",
			"run_id", runID, "status", string(run.Status), "delay", delay)
		if err := o.sleep(ctx, delay); err != nil {
			return nil, err
		}
		iteration++
	}

	o.logger.Error("run timed out", "run_id", runID, "budget", o.maxRetries)
	return nil, timeoutError()
}

func (o *Orchestrator) latestMessageEnvelope(ctx context.Context, threadID string) (*model.ChatResponse, error) {
	messages, err := o.client.ListMessages(ctx, threadID, 1)
	if err != nil {
		return nil, err
	}
	if len(messages) == 0 {
		return nil, &Error{Kind: KindService, Message: "no messages found after completion"}
	}
	return envelope(threadID, messages[0], string(RunStatusCompleted)), nil
}

// SendMessageStream submits a message once (no outer rate-limit retry) and
// returns a channel of envelopes, one per newly observed message whenever
// the run reaches a terminal-or-actionable status. The channel closes after
// an envelope with status "completed", when the iteration budget runs out,
// or when ctx is cancelled. At most one error is sent on the error channel;
// both channels are closed when the stream ends.
func (o *Orchestrator) SendMessageStream(ctx context.Context, userID, text string) (<-chan model.ChatResponse, <-chan error) {
	out := make(chan model.ChatResponse)
	errc := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errc)

		threadID, err := o.threads.Resolve(ctx, userID)
		if err != nil {
			errc <- err
			return
		}

		if _, err := o.client.CreateMessage(ctx, threadID, string(model.RoleUser), text); err != nil {
			errc <- err
			return
		}
		o.publish(model.EventTypeMessageSent, userID, threadID, "", "")

		run, err := o.client.CreateRun(ctx, threadID)
		if err != nil {
			errc <- err
			return
		}

		if err := o.streamRun(ctx, userID, threadID, run.ID, out); err != nil {
			errc <- err
		}
	}()

	return out, errc
}

// streamRun polls at a fixed short cadence and emits an envelope whenever
// the run status is completed, requires_action, or failed and the newest
// message differs from the last one emitted. A run stuck at failed or
// requires_action keeps being polled, without re-emitting, until a newer
// message appears or the budget is exhausted.
func (o *Orchestrator) streamRun(ctx context.Context, userID, threadID, runID string, out chan<- model.ChatResponse) error {
	lastMessageID := ""

	for iteration := 0; iteration < o.maxRetries; iteration++ {
		run, err := o.client.RetrieveRun(ctx, threadID, runID)
		if err != nil {
			if !isRateLimited(err) {
				return err
			}
			if iteration+1 >= o.maxRetries {
				return rateLimitError(err)
			}
			if err := o.sleep(ctx, o.retryDelay<<uint(iteration+1)); err != nil {
				return err
			}
			continue
		}

		switch run.Status {
		case RunStatusCompleted, RunStatusRequiresAction, RunStatusFailed:
			messages, err := o.client.ListMessages(ctx, threadID, 1)
			if err != nil {
				return err
			}

			if len(messages) > 0 && messages[0].ID != lastMessageID {
				lastMessageID = messages[0].ID

				select {
				case out <- *envelope(threadID, messages[0], string(run.Status)):
				case <-ctx.Done():
					return ctx.Err()
				}

				if run.Status == RunStatusCompleted {
					metrics.RecordRun(string(run.Status), iteration+1)
					o.publish(model.EventTypeRunCompleted, userID, threadID, runID, "")
					return nil
				}
			}
		}

		if err := o.sleep(ctx, o.pollInterval); err != nil {
			return err
		}
	}

	return nil
}

// History returns the user's conversation history, newest first. A thread
// is created when none exists, so a never-contacted user gets an empty
// history. Read errors are surfaced immediately, never retried.
func (o *Orchestrator) History(ctx context.Context, userID string, limit int) ([]model.HistoryEntry, error) {
	threadID, err := o.threads.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}

	if limit <= 0 || limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	messages, err := o.client.ListMessages(ctx, threadID, limit)
	if err != nil {
		return nil, &Error{Kind: KindService, Message: err.Error(), Err: err}
	}

	history := make([]model.HistoryEntry, 0, len(messages))
	for _, msg := range messages {
		history = append(history, model.HistoryEntry{
			Role:      model.Role(msg.Role),
			Content:   msg.Content,
			MessageID: msg.ID,
			CreatedAt: msg.CreatedAt,
		})
	}
	return history, nil
}

// Message returns a single message from the user's thread, or nil when the
// remote service does not know the ID.
func (o *Orchestrator) Message(ctx context.Context, userID, messageID string) (*model.HistoryEntry, error) {
	threadID, err := o.threads.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}

	msg, err := o.client.RetrieveMessage(ctx, threadID, messageID)
	if err != nil {
		if Classify(err.Error()) == KindNotFound {
			return nil, nil
		}
		return nil, &Error{Kind: KindService, Message: err.Error(), Err: err}
	}

	return &model.HistoryEntry{
		Role:      model.Role(msg.Role),
		Content:   msg.Content,
		MessageID: msg.ID,
		CreatedAt: msg.CreatedAt,
	}, nil
}

// DeleteThread removes the user's remote thread and local cache entry.
func (o *Orchestrator) DeleteThread(ctx context.Context, userID string) error {
	if err := o.threads.Release(ctx, userID); err != nil {
		return err
	}
	o.publish(model.EventTypeThreadDeleted, userID, "", "", "")
	return nil
}

func (o *Orchestrator) publish(eventType model.EventType, userID, threadID, runID, detail string) {
	if o.events == nil {
		return
	}
	o.events.Publish(model.ConversationEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		UserID:    userID,
		ThreadID:  threadID,
		RunID:     runID,
		Detail:    detail,
		CreatedAt: time.Now().UTC(),
	})
}

func envelope(threadID string, msg ThreadMessage, status string) *model.ChatResponse {
	return &model.ChatResponse{
		Response:  msg.Content,
		ThreadID:  threadID,
		MessageID: msg.ID,
		Timestamp: time.Now().UTC(),
		Status:    status,
	}
}

func backoffDelay(base time.Duration, factor float64, iteration int, max time.Duration) time.Duration {
	d := time.Duration(float64(base) * math.Pow(factor, float64(iteration)))
	if d > max {
		return max
	}
	return d
}
