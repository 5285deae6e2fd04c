package port

import (
	"context"

	"github.com/rl1809/inventory-tracker/internal/core/domain"
)

// DatabaseRepository is the persistent record store holding the inventory,
// logs and settings tables.
type DatabaseRepository interface {
	// ListItems returns every valid inventory row in insertion order
	ListItems(ctx context.Context) ([]domain.Item, error)

	// UpdateItem writes the full item record keyed by its ID
	UpdateItem(ctx context.Context, item domain.Item) error

	// ReplaceItems deletes all inventory rows and inserts items
	ReplaceItems(ctx context.Context, items []domain.Item) error

	DeleteAllItems(ctx context.Context) error

	// InsertLog appends a log entry
	InsertLog(ctx context.Context, entry domain.LogEntry) error

	// ListLogs returns log entries newest first
	ListLogs(ctx context.Context) ([]domain.LogEntry, error)

	DeleteAllLogs(ctx context.Context) error

	// GetSetting returns the value and whether the key exists
	GetSetting(ctx context.Context, key string) (string, bool, error)

	SetSetting(ctx context.Context, key, value string) error

	DeleteSetting(ctx context.Context, key string) error
}
