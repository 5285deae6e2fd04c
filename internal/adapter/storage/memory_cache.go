package storage

import (
	"context"
	"sync"
	"time"

	"github.com/rl1809/inventory-tracker/internal/core/domain"
)

// MemoryCache is the in-process inventory cache.
type MemoryCache struct {
	mu          sync.RWMutex
	items       []domain.Item
	index       map[string]int
	logs        []domain.LogEntry
	requestKeys map[string]time.Time
	keyTTL      time.Duration
	now         func() time.Time
}

func NewMemoryCache(keyTTL time.Duration) *MemoryCache {
	return &MemoryCache{
		index:       make(map[string]int),
		requestKeys: make(map[string]time.Time),
		keyTTL:      keyTTL,
		now:         time.Now,
	}
}

func (c *MemoryCache) ReplaceAll(_ context.Context, items []domain.Item, logs []domain.LogEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.setItems(items)
	c.logs = append([]domain.LogEntry(nil), logs...)
	return nil
}

func (c *MemoryCache) ReplaceItems(_ context.Context, items []domain.Item) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.setItems(items)
	return nil
}

func (c *MemoryCache) setItems(items []domain.Item) {
	c.items = append([]domain.Item(nil), items...)
	c.index = make(map[string]int, len(items))
	for i, item := range c.items {
		c.index[item.ID] = i
	}
}

func (c *MemoryCache) GetItem(_ context.Context, id string) (*domain.Item, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	i, ok := c.index[id]
	if !ok {
		return nil, nil
	}
	item := c.items[i]
	return &item, nil
}

func (c *MemoryCache) Items(_ context.Context) ([]domain.Item, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return append([]domain.Item(nil), c.items...), nil
}

func (c *MemoryCache) Logs(_ context.Context) ([]domain.LogEntry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return append([]domain.LogEntry(nil), c.logs...), nil
}

func (c *MemoryCache) ReplaceItem(_ context.Context, item domain.Item) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i, ok := c.index[item.ID]; ok {
		c.items[i] = item
		return nil
	}
	c.index[item.ID] = len(c.items)
	c.items = append(c.items, item)
	return nil
}

func (c *MemoryCache) PrependLog(_ context.Context, entry domain.LogEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	logs := make([]domain.LogEntry, 0, len(c.logs)+1)
	logs = append(logs, entry)
	c.logs = append(logs, c.logs...)
	return nil
}

func (c *MemoryCache) Clear(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = nil
	c.index = make(map[string]int)
	c.logs = nil
	return nil
}

func (c *MemoryCache) SetIdempotency(_ context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if expires, ok := c.requestKeys[key]; ok && now.Before(expires) {
		return false, nil
	}
	for k, expires := range c.requestKeys {
		if !now.Before(expires) {
			delete(c.requestKeys, k)
		}
	}
	c.requestKeys[key] = now.Add(c.keyTTL)
	return true, nil
}

func (c *MemoryCache) ReleaseIdempotency(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.requestKeys, key)
	return nil
}
