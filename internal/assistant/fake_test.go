package assistant

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// runResult scripts one RetrieveRun outcome.
type runResult struct {
	run Run
	err error
}

// fakeClient is a scripted in-memory stand-in for the remote service.
// Scripted slices are consumed one entry per call; the last entry repeats
// once the script is exhausted.
type fakeClient struct {
	mu sync.Mutex

	threadSeq          int
	createThreadCalls  int
	createThreadErr    error
	retrieveThreadErr  error
	deleteThreadErr    error
	deletedThreads     []string
	createMessageCalls int
	createMessageErr   error
	createRunCalls     int
	createRunErr       error
	retrieveRunCalls   int
	runScript          []runResult
	listCalls          int
	listLimits         []int
	listScript         [][]ThreadMessage
	listErr            error
	retrieveMessageFn  func(threadID, messageID string) (ThreadMessage, error)
	listModelsErr      error
}

func (f *fakeClient) CreateThread(ctx context.Context) (Thread, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createThreadCalls++
	if f.createThreadErr != nil {
		return Thread{}, f.createThreadErr
	}
	f.threadSeq++
	return Thread{ID: fmt.Sprintf("thread_%d", f.threadSeq)}, nil
}

func (f *fakeClient) RetrieveThread(ctx context.Context, threadID string) (Thread, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.retrieveThreadErr != nil {
		return Thread{}, f.retrieveThreadErr
	}
	return Thread{ID: threadID}, nil
}

func (f *fakeClient) DeleteThread(ctx context.Context, threadID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteThreadErr != nil {
		return f.deleteThreadErr
	}
	f.deletedThreads = append(f.deletedThreads, threadID)
	return nil
}

func (f *fakeClient) CreateMessage(ctx context.Context, threadID, role, content string) (ThreadMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createMessageCalls++
	if f.createMessageErr != nil {
		return ThreadMessage{}, f.createMessageErr
	}
	return ThreadMessage{
		ID:      fmt.Sprintf("msg_user_%d", f.createMessageCalls),
		Role:    role,
		Content: content,
	}, nil
}

func (f *fakeClient) ListMessages(ctx context.Context, threadID string, limit int) ([]ThreadMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	f.listLimits = append(f.listLimits, limit)
	if f.listErr != nil {
		return nil, f.listErr
	}
	if len(f.listScript) == 0 {
		return nil, nil
	}

	idx := f.listCalls - 1
	if idx >= len(f.listScript) {
		idx = len(f.listScript) - 1
	}

	messages := f.listScript[idx]
	if limit < len(messages) {
		messages = messages[:limit]
	}
	return messages, nil
}

func (f *fakeClient) RetrieveMessage(ctx context.Context, threadID, messageID string) (ThreadMessage, error) {
	f.mu.Lock()
	fn := f.retrieveMessageFn
	f.mu.Unlock()
	if fn != nil {
		return fn(threadID, messageID)
	}
	return ThreadMessage{ID: messageID, Role: "assistant", Content: "hello"}, nil
}

func (f *fakeClient) CreateRun(ctx context.Context, threadID string) (Run, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createRunCalls++
	if f.createRunErr != nil {
		return Run{}, f.createRunErr
	}
	return Run{ID: fmt.Sprintf("run_%d", f.createRunCalls), Status: RunStatusQueued}, nil
}

func (f *fakeClient) RetrieveRun(ctx context.Context, threadID, runID string) (Run, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.retrieveRunCalls++

	if len(f.runScript) == 0 {
		return Run{ID: runID, Status: RunStatusCompleted}, nil
	}

	idx := f.retrieveRunCalls - 1
	if idx >= len(f.runScript) {
		idx = len(f.runScript) - 1
	}

	result := f.runScript[idx]
	if result.err != nil {
		return Run{}, result.err
	}
	run := result.run
	if run.ID == "" {
		run.ID = runID
	}
	return run, nil
}

func (f *fakeClient) ListModels(ctx context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listModelsErr != nil {
		return nil, f.listModelsErr
	}
	return []string{"gpt-4o"}, nil
}

// sleepRecorder captures requested delays without actually sleeping.
type sleepRecorder struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (s *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	s.delays = append(s.delays, d)
	s.mu.Unlock()

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

func (s *sleepRecorder) recorded() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Duration(nil), s.delays...)
}
