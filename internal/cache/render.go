// Package cache keeps rendered project documents in memory for a short time.
package cache

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const DefaultTTL = 5 * time.Minute

// Key identifies one rendered document.
type Key struct {
	ProjectID string
	Format    string
}

type entry struct {
	content    string
	renderedAt time.Time
}

// RenderFunc produces the document for a key on a cache miss.
type RenderFunc func(ctx context.Context) (string, error)

// RenderCache is a TTL cache for rendered documents. A zero TTL disables
// caching and every Get renders.
type RenderCache struct {
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time

	mu      sync.RWMutex
	entries map[Key]entry
	// generations counts invalidations per project. A render whose project
	// was invalidated while it ran is returned but not stored.
	generations map[string]uint64
}

func NewRenderCache(ttl time.Duration, logger *slog.Logger) *RenderCache {
	return &RenderCache{
		ttl:     ttl,
		logger:  logger,
		now:         time.Now,
		entries:     make(map[Key]entry),
		generations: make(map[string]uint64),
	}
}

// Get returns the cached document if fresh, otherwise renders and stores it.
// hit reports whether the result came from the cache.
func (c *RenderCache) Get(ctx context.Context, key Key, render RenderFunc) (content string, hit bool, err error) {
	if c.ttl > 0 {
		c.mu.RLock()
		e, ok := c.entries[key]
		c.mu.RUnlock()
		if ok && c.now().Sub(e.renderedAt) < c.ttl {
			return e.content, true, nil
		}
	}

	content, err = c.Refresh(ctx, key, render)
	return content, false, err
}

// Refresh renders key regardless of freshness.
func (c *RenderCache) Refresh(ctx context.Context, key Key, render RenderFunc) (string, error) {
	c.mu.RLock()
	gen := c.generations[key.ProjectID]
	c.mu.RUnlock()

	content, err := render(ctx)
	if err != nil {
		return "", err
	}
	if c.ttl <= 0 {
		return content, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generations[key.ProjectID] != gen {
		if c.logger != nil {
			c.logger.Debug("discarding render of invalidated project", "project_id", key.ProjectID, "format", key.Format)
		}
		return content, nil
	}
	c.entries[key] = entry{content: content, renderedAt: c.now()}
	return content, nil
}

// InvalidateProject drops every format rendered for projectID.
func (c *RenderCache) InvalidateProject(projectID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generations[projectID]++
	dropped := 0
	for k := range c.entries {
		if k.ProjectID == projectID {
			delete(c.entries, k)
			dropped++
		}
	}
	if dropped > 0 && c.logger != nil {
		c.logger.Debug("render cache invalidated", "project_id", projectID, "entries", dropped)
	}
}

func (c *RenderCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
