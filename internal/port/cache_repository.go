package port

import (
	"context"

	"github.com/rl1809/inventory-tracker/internal/core/domain"
)

// CacheRepository mirrors the persisted items and logs for the read path.
type CacheRepository interface {
	// ReplaceAll swaps the whole cache content
	ReplaceAll(ctx context.Context, items []domain.Item, logs []domain.LogEntry) error

	// ReplaceItems swaps the item collection and keeps the logs
	ReplaceItems(ctx context.Context, items []domain.Item) error

	// GetItem returns nil when the item is not cached
	GetItem(ctx context.Context, id string) (*domain.Item, error)

	// Items returns a copy of the cached items in load order
	Items(ctx context.Context) ([]domain.Item, error)

	// Logs returns a copy of the cached logs, newest first
	Logs(ctx context.Context) ([]domain.LogEntry, error)

	// ReplaceItem upserts a single item, keeping its position
	ReplaceItem(ctx context.Context, item domain.Item) error

	// PrependLog adds an entry at the head of the log
	PrependLog(ctx context.Context, entry domain.LogEntry) error

	// Clear empties both collections
	Clear(ctx context.Context) error

	// SetIdempotency claims a request key, returns false if already claimed
	SetIdempotency(ctx context.Context, key string) (bool, error)

	// ReleaseIdempotency frees a claimed key so the request can be retried
	ReleaseIdempotency(ctx context.Context, key string) error
}
