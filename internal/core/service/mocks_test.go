package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rl1809/inventory-tracker/internal/core/domain"
)

var errStoreDown = errors.New("store unavailable")

// Mock DatabaseRepository
type mockDatabaseRepo struct {
	mu       sync.Mutex
	items    map[string]domain.Item
	order    []string
	logs     []domain.LogEntry
	settings map[string]string

	listErr      error
	updateErr    error
	replaceErr   error
	insertLogErr error
	settingErr   error
	updateDelay  time.Duration

	updateCalls int
}

func newMockDatabaseRepo(items ...domain.Item) *mockDatabaseRepo {
	m := &mockDatabaseRepo{
		items:    make(map[string]domain.Item),
		settings: make(map[string]string),
	}
	for _, item := range items {
		m.items[item.ID] = item
		m.order = append(m.order, item.ID)
	}
	return m
}

func (m *mockDatabaseRepo) ListItems(ctx context.Context) ([]domain.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.listErr != nil {
		return nil, m.listErr
	}
	items := make([]domain.Item, 0, len(m.order))
	for _, id := range m.order {
		items = append(items, m.items[id])
	}
	return items, nil
}

func (m *mockDatabaseRepo) UpdateItem(ctx context.Context, item domain.Item) error {
	m.mu.Lock()
	m.updateCalls++
	delay, err := m.updateDelay, m.updateErr
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[item.ID] = item
	return nil
}

func (m *mockDatabaseRepo) ReplaceItems(ctx context.Context, items []domain.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.replaceErr != nil {
		return m.replaceErr
	}
	m.items = make(map[string]domain.Item, len(items))
	m.order = m.order[:0]
	for _, item := range items {
		m.items[item.ID] = item
		m.order = append(m.order, item.ID)
	}
	return nil
}

func (m *mockDatabaseRepo) DeleteAllItems(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.replaceErr != nil {
		return m.replaceErr
	}
	m.items = make(map[string]domain.Item)
	m.order = nil
	return nil
}

func (m *mockDatabaseRepo) InsertLog(ctx context.Context, entry domain.LogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.insertLogErr != nil {
		return m.insertLogErr
	}
	m.logs = append([]domain.LogEntry{entry}, m.logs...)
	return nil
}

func (m *mockDatabaseRepo) ListLogs(ctx context.Context) ([]domain.LogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.listErr != nil {
		return nil, m.listErr
	}
	return append([]domain.LogEntry(nil), m.logs...), nil
}

func (m *mockDatabaseRepo) DeleteAllLogs(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.logs = nil
	return nil
}

func (m *mockDatabaseRepo) GetSetting(ctx context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.settingErr != nil {
		return "", false, m.settingErr
	}
	v, ok := m.settings[key]
	return v, ok, nil
}

func (m *mockDatabaseRepo) SetSetting(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.settingErr != nil {
		return m.settingErr
	}
	m.settings[key] = value
	return nil
}

func (m *mockDatabaseRepo) DeleteSetting(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.settingErr != nil {
		return m.settingErr
	}
	delete(m.settings, key)
	return nil
}

func (m *mockDatabaseRepo) item(id string) domain.Item {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.items[id]
}

func (m *mockDatabaseRepo) logCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.logs)
}

// Mock CacheRepository
type mockCacheRepo struct {
	mu             sync.Mutex
	items          []domain.Item
	logs           []domain.LogEntry
	idempotencySet map[string]bool

	replaceItemErr error
	failAfter      int
	replaceCalls   int
}

func newMockCacheRepo(items ...domain.Item) *mockCacheRepo {
	return &mockCacheRepo{
		items:          append([]domain.Item(nil), items...),
		idempotencySet: make(map[string]bool),
		failAfter:      -1,
	}
}

func (m *mockCacheRepo) ReplaceAll(ctx context.Context, items []domain.Item, logs []domain.LogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items = append([]domain.Item(nil), items...)
	m.logs = append([]domain.LogEntry(nil), logs...)
	return nil
}

func (m *mockCacheRepo) ReplaceItems(ctx context.Context, items []domain.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items = append([]domain.Item(nil), items...)
	return nil
}

func (m *mockCacheRepo) GetItem(ctx context.Context, id string) (*domain.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, item := range m.items {
		if item.ID == id {
			return &item, nil
		}
	}
	return nil, nil
}

func (m *mockCacheRepo) Items(ctx context.Context) ([]domain.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]domain.Item(nil), m.items...), nil
}

func (m *mockCacheRepo) Logs(ctx context.Context) ([]domain.LogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]domain.LogEntry(nil), m.logs...), nil
}

// ReplaceItem fails once failAfter successful calls have happened, or always
// when replaceItemErr is set and failAfter is negative.
func (m *mockCacheRepo) ReplaceItem(ctx context.Context, item domain.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.replaceCalls++
	if m.replaceItemErr != nil && (m.failAfter < 0 || m.replaceCalls > m.failAfter) {
		return m.replaceItemErr
	}
	for i := range m.items {
		if m.items[i].ID == item.ID {
			m.items[i] = item
			return nil
		}
	}
	m.items = append(m.items, item)
	return nil
}

func (m *mockCacheRepo) PrependLog(ctx context.Context, entry domain.LogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.logs = append([]domain.LogEntry{entry}, m.logs...)
	return nil
}

func (m *mockCacheRepo) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items = nil
	m.logs = nil
	return nil
}

func (m *mockCacheRepo) SetIdempotency(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.idempotencySet[key] {
		return false, nil
	}
	m.idempotencySet[key] = true
	return true, nil
}

func (m *mockCacheRepo) ReleaseIdempotency(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.idempotencySet, key)
	return nil
}

func (m *mockCacheRepo) item(id string) domain.Item {
	item, _ := m.GetItem(context.Background(), id)
	if item == nil {
		return domain.Item{}
	}
	return *item
}

// Mock Notifier
type mockNotifier struct {
	mu   sync.Mutex
	sent []domain.Notification
}

func (m *mockNotifier) Notify(n domain.Notification) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, n)
}

func (m *mockNotifier) last() domain.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return domain.Notification{}
	}
	return m.sent[len(m.sent)-1]
}

func (m *mockNotifier) count(severity domain.Severity) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, s := range m.sent {
		if s.Severity == severity {
			n++
		}
	}
	return n
}
