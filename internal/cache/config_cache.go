package cache

import (
	"sync"
	"time"

	"github.com/shopino/commerce-service/internal/models"
)

// ConfigCache holds the most recently read app-config snapshot so the
// latest-version row is not re-fetched on every request. Appending a new
// config version invalidates it.
type ConfigCache struct {
	mu      sync.RWMutex
	cfg     *models.AppConfig
	readAt  time.Time
	maxAge  time.Duration
	nowFunc func() time.Time
}

func NewConfigCache(maxAge time.Duration) *ConfigCache {
	return &ConfigCache{maxAge: maxAge, nowFunc: time.Now}
}

func (c *ConfigCache) Get() (*models.AppConfig, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.cfg == nil {
		return nil, false
	}
	if c.maxAge > 0 && c.nowFunc().Sub(c.readAt) > c.maxAge {
		return nil, false
	}
	return c.cfg, true
}

func (c *ConfigCache) Set(cfg *models.AppConfig) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cfg = cfg
	c.readAt = c.nowFunc()
}

func (c *ConfigCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cfg = nil
}
