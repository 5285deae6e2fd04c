package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/rl1809/inventory-tracker/internal/core/domain"
	"github.com/rl1809/inventory-tracker/internal/port"
)

// InventoryService owns the bulk operations and read projections over the
// cache. Per-item stock changes go through StockService.
type InventoryService struct {
	db       port.DatabaseRepository
	cache    port.CacheRepository
	notifier port.Notifier
	timeout  time.Duration
	now      func() time.Time
	newID    func() string
}

func NewInventoryService(db port.DatabaseRepository, cache port.CacheRepository, notifier port.Notifier, timeout time.Duration) *InventoryService {
	if timeout <= 0 {
		timeout = DefaultStoreTimeout
	}
	return &InventoryService{
		db:       db,
		cache:    cache,
		notifier: notifier,
		timeout:  timeout,
		now:      func() time.Time { return time.Now().UTC() },
		newID:    func() string { return uuid.NewString() },
	}
}

// LoadAll replaces the cache with the store content. On failure the cache
// is left untouched.
func (s *InventoryService) LoadAll(ctx context.Context) ([]domain.Item, []domain.LogEntry, error) {
	var (
		items []domain.Item
		logs  []domain.LogEntry
	)

	err := callWithTimeout(ctx, s.timeout, func(ctx context.Context) error {
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			items, err = s.db.ListItems(gctx)
			return err
		})
		g.Go(func() error {
			var err error
			logs, err = s.db.ListLogs(gctx)
			return err
		})
		return g.Wait()
	})
	if err != nil {
		err = storeError("load inventory", err)
		s.notify(domain.SeverityError, "Error loading data", "Could not load inventory data. Please try again.")
		return nil, nil, err
	}

	if err := s.cache.ReplaceAll(ctx, items, logs); err != nil {
		return nil, nil, fmt.Errorf("%w: fill cache: %w", domain.ErrPersistence, err)
	}

	log.WithFields(log.Fields{"items": len(items), "logs": len(logs)}).Info("inventory loaded")
	return items, logs, nil
}

func (s *InventoryService) Refresh(ctx context.Context) error {
	if _, _, err := s.LoadAll(ctx); err != nil {
		return err
	}
	s.notify(domain.SeverityInfo, "Data refreshed", "Inventory data has been refreshed.")
	return nil
}

func (s *InventoryService) Items(ctx context.Context) ([]domain.Item, error) {
	return s.Filter(ctx, nil)
}

func (s *InventoryService) Logs(ctx context.Context) ([]domain.LogEntry, error) {
	logs, err := s.cache.Logs(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: read cache: %w", domain.ErrPersistence, err)
	}
	return logs, nil
}

// Filter projects the cached items through keep, preserving order. A nil
// predicate keeps everything.
func (s *InventoryService) Filter(ctx context.Context, keep func(domain.Item) bool) ([]domain.Item, error) {
	items, err := s.cache.Items(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: read cache: %w", domain.ErrPersistence, err)
	}
	if keep == nil {
		return items, nil
	}

	filtered := make([]domain.Item, 0, len(items))
	for _, item := range items {
		if keep(item) {
			filtered = append(filtered, item)
		}
	}
	return filtered, nil
}

// Search matches term case-insensitively against the article and both
// location labels. An empty term returns every item.
func (s *InventoryService) Search(ctx context.Context, term string) ([]domain.Item, error) {
	if term == "" {
		return s.Filter(ctx, nil)
	}
	return s.Filter(ctx, MatchesSearch(term))
}

func MatchesSearch(term string) func(domain.Item) bool {
	needle := strings.ToLower(term)
	return func(item domain.Item) bool {
		return strings.Contains(strings.ToLower(item.Article), needle) ||
			strings.Contains(strings.ToLower(item.Location1), needle) ||
			(item.HasLocation2() && strings.Contains(strings.ToLower(item.Location2), needle))
	}
}

func (s *InventoryService) EmptyItems(ctx context.Context) ([]domain.Item, error) {
	return s.Filter(ctx, domain.IsEmpty)
}

// FindByBarcode returns the first cached item whose barcode equals code.
func (s *InventoryService) FindByBarcode(ctx context.Context, code string) (domain.Item, error) {
	if code != "" {
		items, err := s.Filter(ctx, func(item domain.Item) bool { return item.Barcode == code })
		if err != nil {
			return domain.Item{}, err
		}
		if len(items) > 0 {
			return items[0], nil
		}
	}

	s.notify(domain.SeverityError, "Item not found", fmt.Sprintf("No item found with barcode: %s", code))
	return domain.Item{}, fmt.Errorf("%w: barcode %q", domain.ErrItemNotFound, code)
}

// Import replaces the whole item collection with items. Fresh ids are
// assigned and statuses re-derived. Logs are kept.
func (s *InventoryService) Import(ctx context.Context, session domain.Session, items []domain.Item) (int, error) {
	if err := session.RequireRole(domain.RoleAdmin); err != nil {
		s.notify(domain.SeverityError, "Import failed", describe(err))
		return 0, err
	}

	imported := make([]domain.Item, 0, len(items))
	for i, item := range items {
		item.ID = s.newID()
		item = item.Normalize()
		if err := item.Validate(); err != nil {
			err = fmt.Errorf("%w: item %d: %w", domain.ErrImportFormat, i+1, err)
			s.notify(domain.SeverityError, "Import failed", describe(err))
			return 0, err
		}
		imported = append(imported, item)
	}

	if err := callWithTimeout(ctx, s.timeout, func(ctx context.Context) error {
		return s.db.ReplaceItems(ctx, imported)
	}); err != nil {
		err = storeError("import items", err)
		s.notify(domain.SeverityError, "Import failed", describe(err))
		return 0, err
	}

	if err := s.cache.ReplaceItems(ctx, imported); err != nil {
		log.WithError(err).Error("imported items stored but cache refresh failed")
		return len(imported), fmt.Errorf("%w: fill cache: %w", domain.ErrPersistence, err)
	}

	s.notify(domain.SeverityInfo, "Import successful", fmt.Sprintf("%d items have been imported.", len(imported)))
	return len(imported), nil
}

// ClearAll deletes every item and log entry. It cannot be undone.
func (s *InventoryService) ClearAll(ctx context.Context, session domain.Session) error {
	if err := session.RequireRole(domain.RoleAdmin); err != nil {
		s.notify(domain.SeverityError, "Clear failed", describe(err))
		return err
	}

	err := callWithTimeout(ctx, s.timeout, func(ctx context.Context) error {
		if err := s.db.DeleteAllItems(ctx); err != nil {
			return err
		}
		return s.db.DeleteAllLogs(ctx)
	})
	if err != nil {
		err = storeError("clear inventory", err)
		s.notify(domain.SeverityError, "Clear failed", describe(err))
		return err
	}

	if err := s.cache.Clear(ctx); err != nil {
		return fmt.Errorf("%w: clear cache: %w", domain.ErrPersistence, err)
	}

	log.WithField("user", session.Username).Warn("inventory and logs cleared")
	s.notify(domain.SeverityInfo, "Inventory cleared", "All items and log entries have been deleted.")
	return nil
}

// Logo returns the company logo data URL, or "" when none is set.
func (s *InventoryService) Logo(ctx context.Context) (string, error) {
	var (
		value string
		found bool
	)
	err := callWithTimeout(ctx, s.timeout, func(ctx context.Context) error {
		var err error
		value, found, err = s.db.GetSetting(ctx, domain.SettingCompanyLogo)
		return err
	})
	if err != nil {
		return "", storeError("get logo", err)
	}
	if !found {
		return "", nil
	}
	return value, nil
}

func (s *InventoryService) SetLogo(ctx context.Context, session domain.Session, dataURL string) error {
	if err := session.RequireAuthenticated(); err != nil {
		return err
	}
	if !strings.HasPrefix(dataURL, "data:") {
		return fmt.Errorf("%w: logo must be a data URL", domain.ErrInvalidSetting)
	}

	if err := callWithTimeout(ctx, s.timeout, func(ctx context.Context) error {
		return s.db.SetSetting(ctx, domain.SettingCompanyLogo, dataURL)
	}); err != nil {
		err = storeError("set logo", err)
		s.notify(domain.SeverityError, "Logo upload failed", "Could not upload logo. Please try again.")
		return err
	}

	s.notify(domain.SeverityInfo, "Logo updated", "Company logo has been updated successfully.")
	return nil
}

func (s *InventoryService) RemoveLogo(ctx context.Context, session domain.Session) error {
	if err := session.RequireAuthenticated(); err != nil {
		return err
	}

	if err := callWithTimeout(ctx, s.timeout, func(ctx context.Context) error {
		return s.db.DeleteSetting(ctx, domain.SettingCompanyLogo)
	}); err != nil {
		err = storeError("remove logo", err)
		s.notify(domain.SeverityError, "Error removing logo", "Could not remove logo. Please try again.")
		return err
	}

	s.notify(domain.SeverityInfo, "Logo removed", "Company logo has been removed.")
	return nil
}

func (s *InventoryService) notify(severity domain.Severity, title, description string) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(domain.Notification{
		Severity:    severity,
		Title:       title,
		Description: description,
		Time:        s.now(),
	})
}
