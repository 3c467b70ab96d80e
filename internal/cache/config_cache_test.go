package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/shopino/commerce-service/internal/models"
)

func TestConfigCache(t *testing.T) {
	c := NewConfigCache(time.Minute)

	_, ok := c.Get()
	assert.False(t, ok, "empty cache misses")

	cfg := &models.AppConfig{Version: 3, Name: "store", TaxRate: 9}
	c.Set(cfg)

	got, ok := c.Get()
	assert.True(t, ok)
	assert.Equal(t, 3, got.Version)

	c.Invalidate()
	_, ok = c.Get()
	assert.False(t, ok, "invalidated cache misses")
}

func TestConfigCacheExpires(t *testing.T) {
	c := NewConfigCache(time.Minute)
	now := time.Now()
	c.nowFunc = func() time.Time { return now }

	c.Set(&models.AppConfig{Version: 1})
	_, ok := c.Get()
	assert.True(t, ok)

	now = now.Add(2 * time.Minute)
	_, ok = c.Get()
	assert.False(t, ok, "stale entry is treated as a miss")
}
