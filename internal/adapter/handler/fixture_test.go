package handler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/inventory-tracker/internal/adapter/auth"
	"github.com/rl1809/inventory-tracker/internal/adapter/notify"
	"github.com/rl1809/inventory-tracker/internal/adapter/storage"
	"github.com/rl1809/inventory-tracker/internal/core/domain"
	"github.com/rl1809/inventory-tracker/internal/core/service"
)

// fakeStore is an in-memory DatabaseRepository for handler tests.
type fakeStore struct {
	mu       sync.Mutex
	items    []domain.Item
	logs     []domain.LogEntry
	settings map[string]string
}

func (f *fakeStore) ListItems(context.Context) ([]domain.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Item(nil), f.items...), nil
}

func (f *fakeStore) UpdateItem(_ context.Context, item domain.Item) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		if f.items[i].ID == item.ID {
			f.items[i] = item
			return nil
		}
	}
	return storage.ErrRowNotFound
}

func (f *fakeStore) ReplaceItems(_ context.Context, items []domain.Item) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = append([]domain.Item(nil), items...)
	return nil
}

func (f *fakeStore) DeleteAllItems(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = nil
	return nil
}

func (f *fakeStore) InsertLog(_ context.Context, entry domain.LogEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logs = append([]domain.LogEntry{entry}, f.logs...)
	return nil
}

func (f *fakeStore) ListLogs(context.Context) ([]domain.LogEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.LogEntry(nil), f.logs...), nil
}

func (f *fakeStore) DeleteAllLogs(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logs = nil
	return nil
}

func (f *fakeStore) GetSetting(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.settings[key]
	return v, ok, nil
}

func (f *fakeStore) SetSetting(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.settings[key] = value
	return nil
}

func (f *fakeStore) DeleteSetting(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.settings, key)
	return nil
}

type fixture struct {
	store     *fakeStore
	stock     *service.StockService
	inventory *service.InventoryService
	tokens    *auth.TokenIssuer
	authn     *auth.StaticAuthenticator
	notifier  *notify.LogNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := &fakeStore{
		items: []domain.Item{
			domain.NewItem("item-1", "Art123", "Lager1", 3, "Lager2", 2, "7310000000001"),
			domain.NewItem("item-2", "Bolt M8", "Hall A", 0, "", 0, "1002"),
		},
		settings: make(map[string]string),
	}
	cache := storage.NewMemoryCache(time.Hour)
	logger, _ := test.NewNullLogger()
	notifier := notify.NewLogNotifier(logger, 10)

	stock := service.NewStockService(store, cache, notifier, time.Second)
	inventory := service.NewInventoryService(store, cache, notifier, time.Second)
	_, _, err := inventory.LoadAll(context.Background())
	require.NoError(t, err)

	authn, err := auth.NewStaticAuthenticator(auth.DefaultCredentials("asdf123", "plast")...)
	require.NoError(t, err)

	return &fixture{
		store:     store,
		stock:     stock,
		inventory: inventory,
		tokens:    auth.NewTokenIssuer("test-secret", time.Hour),
		authn:     authn,
		notifier:  notifier,
	}
}

func (f *fixture) token(t *testing.T, session domain.Session) string {
	t.Helper()
	token, err := f.tokens.Issue(session)
	require.NoError(t, err)
	return token
}
