package assistant

import (
	"context"
	"errors"

	"github.com/sashabaranov/go-openai"
)

// OpenAIClient adapts the OpenAI Assistants API to the Client interface.
type OpenAIClient struct {
	client      *openai.Client
	assistantID string
}

// NewOpenAIClient creates a new OpenAI assistant client.
func NewOpenAIClient(apiKey, assistantID string) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, errors.New("OpenAI API key is required")
	}
	if assistantID == "" {
		return nil, errors.New("OpenAI assistant ID is required")
	}

	return &OpenAIClient{
		client:      openai.NewClient(apiKey),
		assistantID: assistantID,
	}, nil
}

// AssistantID returns the configured assistant identifier.
func (c *OpenAIClient) AssistantID() string {
	return c.assistantID
}

// CreateThread creates a new remote thread.
func (c *OpenAIClient) CreateThread(ctx context.Context) (Thread, error) {
	thread, err := c.client.CreateThread(ctx, openai.ThreadRequest{})
	if err != nil {
		return Thread{}, err
	}
	return Thread{ID: thread.ID}, nil
}

// RetrieveThread verifies a thread still exists remotely.
func (c *OpenAIClient) RetrieveThread(ctx context.Context, threadID string) (Thread, error) {
	thread, err := c.client.RetrieveThread(ctx, threadID)
	if err != nil {
		return Thread{}, err
	}
	return Thread{ID: thread.ID}, nil
}

// DeleteThread removes a remote thread.
func (c *OpenAIClient) DeleteThread(ctx context.Context, threadID string) error {
	_, err := c.client.DeleteThread(ctx, threadID)
	return err
}

// CreateMessage appends a message to a thread.
func (c *OpenAIClient) CreateMessage(ctx context.Context, threadID, role, content string) (ThreadMessage, error) {
	msg, err := c.client.CreateMessage(ctx, threadID, openai.MessageRequest{
		Role:    role,
		Content: content,
	})
	if err != nil {
		return ThreadMessage{}, err
	}
	return toThreadMessage(msg), nil
}

// ListMessages returns up to limit messages in descending creation order.
func (c *OpenAIClient) ListMessages(ctx context.Context, threadID string, limit int) ([]ThreadMessage, error) {
	order := "desc"
	list, err := c.client.ListMessage(ctx, threadID, &limit, &order, nil, nil)
	if err != nil {
		return nil, err
	}

	messages := make([]ThreadMessage, 0, len(list.Messages))
	for _, msg := range list.Messages {
		messages = append(messages, toThreadMessage(msg))
	}
	return messages, nil
}

// RetrieveMessage fetches a single message from a thread.
func (c *OpenAIClient) RetrieveMessage(ctx context.Context, threadID, messageID string) (ThreadMessage, error) {
	msg, err := c.client.RetrieveMessage(ctx, threadID, messageID)
	if err != nil {
		return ThreadMessage{}, err
	}
	return toThreadMessage(msg), nil
}

// CreateRun launches a run for the configured assistant.
func (c *OpenAIClient) CreateRun(ctx context.Context, threadID string) (Run, error) {
	run, err := c.client.CreateRun(ctx, threadID, openai.RunRequest{
		AssistantID: c.assistantID,
	})
	if err != nil {
		return Run{}, err
	}
	return toRun(run), nil
}

// RetrieveRun fetches the current state of a run.
func (c *OpenAIClient) RetrieveRun(ctx context.Context, threadID, runID string) (Run, error) {
	run, err := c.client.RetrieveRun(ctx, threadID, runID)
	if err != nil {
		return Run{}, err
	}
	return toRun(run), nil
}

// ListModels lists available models; used as the quota probe.
func (c *OpenAIClient) ListModels(ctx context.Context) ([]string, error) {
	list, err := c.client.ListModels(ctx)
	if err != nil {
		return nil, err
	}

	models := make([]string, 0, len(list.Models))
	for _, m := range list.Models {
		models = append(models, m.ID)
	}
	return models, nil
}

func toThreadMessage(msg openai.Message) ThreadMessage {
	content := ""
	if len(msg.Content) > 0 && msg.Content[0].Text != nil {
		content = msg.Content[0].Text.Value
	}
	return ThreadMessage{
		ID:        msg.ID,
		Role:      msg.Role,
		Content:   content,
		CreatedAt: int64(msg.CreatedAt),
	}
}

func toRun(run openai.Run) Run {
	lastError := ""
	if run.LastError != nil {
		lastError = run.LastError.Message
	}
	return Run{
		ID:        run.ID,
		Status:    RunStatus(run.Status),
		LastError: lastError,
	}
}
