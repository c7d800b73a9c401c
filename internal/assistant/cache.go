package assistant

import (
	"context"
	"fmt"
	"sync"

	"github.com/capitalize-ai/assistant-gateway/pkg/logger"
	"github.com/capitalize-ai/assistant-gateway/pkg/metrics"
)

// ThreadCache maps local user IDs to remote thread handles. The remote
// service owns the threads; the cache holds references only, at most one
// per user. Staleness is detected lazily on resolve.
type ThreadCache struct {
	client Client
	logger *logger.Logger

	mu      sync.Mutex
	threads map[string]string
	locks   map[string]*sync.Mutex
}

// NewThreadCache creates a new thread cache.
func NewThreadCache(client Client, log *logger.Logger) *ThreadCache {
	return &ThreadCache{
		client:  client,
		logger:  log,
		threads: make(map[string]string),
		locks:   make(map[string]*sync.Mutex),
	}
}

// userLock returns the per-user mutex, creating it on first use. Resolve
// and Release for the same user are serialized so concurrent requests
// cannot each create a thread and overwrite the other's entry.
func (c *ThreadCache) userLock(userID string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()

	lock, ok := c.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		c.locks[userID] = lock
	}
	return lock
}

func (c *ThreadCache) get(userID string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id, ok := c.threads[userID]
	return id, ok
}

func (c *ThreadCache) put(userID, threadID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.threads[userID] = threadID
}

func (c *ThreadCache) evict(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.threads, userID)
}

// Resolve returns the user's thread handle, verifying a cached handle is
// still resolvable remotely and creating a new thread when it is not.
func (c *ThreadCache) Resolve(ctx context.Context, userID string) (string, error) {
	lock := c.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	if threadID, ok := c.get(userID); ok {
		if _, err := c.client.RetrieveThread(ctx, threadID); err == nil {
			return threadID, nil
		}
		// Stale handle: the remote side no longer resolves it.
		c.logger.Warn("cached thread no longer resolvable, recreating",
			"user_id", userID, "thread_id", threadID)
		c.evict(userID)
	}

	if _, err := CheckQuota(ctx, c.client); err != nil {
		return "", err
	}

	thread, err := c.client.CreateThread(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to create thread: %w", err)
	}

	c.put(userID, thread.ID)
	metrics.ThreadsCreatedTotal.Inc()
	c.logger.Info("created new thread", "user_id", userID, "thread_id", thread.ID)

	return thread.ID, nil
}

// Release deletes the user's remote thread and then the cache entry. If
// the remote deletion fails the entry stays in place, so the local
// reference to an unconfirmed deletion is never lost.
func (c *ThreadCache) Release(ctx context.Context, userID string) error {
	lock := c.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	threadID, ok := c.get(userID)
	if !ok {
		return nil
	}

	if err := c.client.DeleteThread(ctx, threadID); err != nil {
		return fmt.Errorf("failed to delete thread: %w", err)
	}

	c.evict(userID)
	c.logger.Info("deleted thread", "user_id", userID, "thread_id", threadID)

	return nil
}
