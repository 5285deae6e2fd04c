package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/rl1809/inventory-tracker/internal/core/domain"
	"github.com/rl1809/inventory-tracker/internal/port"
)

const DefaultStoreTimeout = 5 * time.Second

// StockService is the only write path for stock fields and log entries.
//
// Concurrent calls against the same item are not serialized: the store sees
// plain read-modify-write updates and the last write wins.
type StockService struct {
	db       port.DatabaseRepository
	cache    port.CacheRepository
	notifier port.Notifier
	timeout  time.Duration
	now      func() time.Time
	newLogID func() (string, error)
}

func NewStockService(db port.DatabaseRepository, cache port.CacheRepository, notifier port.Notifier, timeout time.Duration) *StockService {
	if timeout <= 0 {
		timeout = DefaultStoreTimeout
	}
	return &StockService{
		db:       db,
		cache:    cache,
		notifier: notifier,
		timeout:  timeout,
		now:      func() time.Time { return time.Now().UTC() },
		newLogID: newLogID,
	}
}

func (s *StockService) AddStock(ctx context.Context, session domain.Session, itemID, location string) (*domain.Mutation, error) {
	return s.ApplyDelta(ctx, session, itemID, 1, location)
}

func (s *StockService) RemoveStock(ctx context.Context, session domain.Session, itemID, location string) (*domain.Mutation, error) {
	return s.ApplyDelta(ctx, session, itemID, -1, location)
}

// ApplyDelta changes the stock of one item at one location.
//
// The cache is updated before the store confirms. When the store write
// fails the cache is reverted and the returned mutation is RolledBack. A
// failed log insert leaves the stock change Committed and is reported
// through Mutation.LogWarning.
func (s *StockService) ApplyDelta(ctx context.Context, session domain.Session, itemID string, delta int, location string) (*domain.Mutation, error) {
	return s.apply(ctx, session, "", itemID, delta, location)
}

// ApplyDeltaOnce is ApplyDelta guarded by a caller supplied request id.
// Replaying the same id returns domain.ErrDuplicateRequest without side
// effects.
func (s *StockService) ApplyDeltaOnce(ctx context.Context, session domain.Session, requestID, itemID string, delta int, location string) (*domain.Mutation, error) {
	return s.apply(ctx, session, requestID, itemID, delta, location)
}

func (s *StockService) apply(ctx context.Context, session domain.Session, requestID, itemID string, delta int, location string) (*domain.Mutation, error) {
	m, err := s.prepare(ctx, session, requestID, itemID, delta, location)
	if err != nil {
		s.notifyFailure(err, itemID, location)
		return nil, err
	}

	if err := s.cache.ReplaceItem(ctx, m.After); err != nil {
		m.State = domain.MutationRolledBack
		s.releaseRequest(ctx, requestID)
		err = fmt.Errorf("%w: cache item: %w", domain.ErrPersistence, err)
		s.notifyFailure(err, itemID, location)
		return m, err
	}

	if err := s.withTimeout(ctx, func(ctx context.Context) error {
		return s.db.UpdateItem(ctx, m.After)
	}); err != nil {
		s.rollback(ctx, m)
		s.releaseRequest(ctx, requestID)
		err = storeError("update item", err)
		s.notifyFailure(err, itemID, location)
		return m, err
	}
	m.State = domain.MutationCommitted

	s.writeLog(ctx, session, m)

	s.notify(domain.SeverityInfo, successTitle(m.Delta),
		fmt.Sprintf("%s at %s updated successfully.", m.Before.Article, m.Location))
	return m, nil
}

func (s *StockService) prepare(ctx context.Context, session domain.Session, requestID, itemID string, delta int, location string) (*domain.Mutation, error) {
	if err := session.RequireAuthenticated(); err != nil {
		return nil, err
	}
	if delta == 0 {
		return nil, domain.ErrInvalidDelta
	}

	item, err := s.cache.GetItem(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("%w: read cache: %w", domain.ErrPersistence, err)
	}
	if item == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrItemNotFound, itemID)
	}

	slot := domain.ResolveLocationSlot(*item, location)
	if slot == domain.SlotNotFound {
		return nil, fmt.Errorf("%w: %q on %s", domain.ErrLocationNotFound, location, item.Article)
	}

	if requestID != "" {
		ok, err := s.cache.SetIdempotency(ctx, requestKey(requestID))
		if err != nil {
			return nil, fmt.Errorf("%w: idempotency check: %w", domain.ErrPersistence, err)
		}
		if !ok {
			return nil, domain.ErrDuplicateRequest
		}
	}

	before := *item
	return &domain.Mutation{
		ItemID:   itemID,
		Location: location,
		Slot:     slot,
		Delta:    delta,
		Before:   before,
		After:    before.WithStock(slot, domain.ApplyDelta(before.Stock(slot), delta)),
		State:    domain.MutationPending,
	}, nil
}

// rollback restores the pre-update snapshot. It runs on a context detached
// from the caller's cancellation so a timed out request still compensates.
func (s *StockService) rollback(ctx context.Context, m *domain.Mutation) {
	m.State = domain.MutationRolledBack

	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	if err := s.cache.ReplaceItem(rctx, m.Before); err != nil {
		log.WithError(err).WithField("item_id", m.ItemID).Error("CRITICAL cache rollback failed")
		return
	}
	log.WithField("item_id", m.ItemID).Info("rolled back cached stock")
}

// releaseRequest frees the request key of a rolled back mutation so the
// caller can retry with the same id.
func (s *StockService) releaseRequest(ctx context.Context, requestID string) {
	if requestID == "" {
		return
	}

	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	if err := s.cache.ReleaseIdempotency(rctx, requestKey(requestID)); err != nil {
		log.WithError(err).WithField("request_id", requestID).Error("failed to release request key")
	}
}

func requestKey(requestID string) string {
	return "stock:" + requestID
}

func (s *StockService) writeLog(ctx context.Context, session domain.Session, m *domain.Mutation) {
	entry, err := s.newLogEntry(session, m)
	if err == nil {
		err = s.withTimeout(ctx, func(ctx context.Context) error {
			return s.db.InsertLog(ctx, entry)
		})
	}
	if err != nil {
		m.LogWarning = fmt.Errorf("%w: %w", domain.ErrLogWrite, err)
		log.WithError(err).WithField("item_id", m.ItemID).Warn("stock log write failed")
		s.notify(domain.SeverityWarning, "Log not saved",
			fmt.Sprintf("Stock for %s was updated but the change log could not be written.", m.Before.Article))
		return
	}

	m.LogEntry = &entry
	if err := s.cache.PrependLog(ctx, entry); err != nil {
		log.WithError(err).WithField("log_id", entry.ID).Warn("failed to cache log entry")
	}
}

func (s *StockService) newLogEntry(session domain.Session, m *domain.Mutation) (domain.LogEntry, error) {
	id, err := s.newLogID()
	if err != nil {
		return domain.LogEntry{}, err
	}
	return domain.NewLogEntry(id, m.Before, m.Location, m.PreviousStock(), m.Delta, session.Username, s.now()), nil
}

func (s *StockService) withTimeout(ctx context.Context, fn func(ctx context.Context) error) error {
	return callWithTimeout(ctx, s.timeout, fn)
}

func (s *StockService) notify(severity domain.Severity, title, description string) {
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

func (s *StockService) notifyFailure(err error, itemID, location string) {
	log.WithError(err).WithFields(log.Fields{
		"item_id":  itemID,
		"location": location,
	}).Warn("stock update failed")
	s.notify(domain.SeverityError, "Error updating stock", describe(err))
}

func successTitle(delta int) string {
	if delta > 0 {
		return "Stock added"
	}
	return "Stock removed"
}

// newLogID returns a UUIDv7, which orders by creation time and carries 74
// random bits.
func newLogID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

func callWithTimeout(ctx context.Context, timeout time.Duration, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return fn(ctx)
}

func storeError(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s: %w", domain.ErrTimeout, op, err)
	}
	return fmt.Errorf("%w: %s: %w", domain.ErrPersistence, op, err)
}

// describe turns an error into the user-facing notification text.
func describe(err error) string {
	switch {
	case errors.Is(err, domain.ErrNotAuthenticated):
		return "Please log in again."
	case errors.Is(err, domain.ErrNotAuthorized):
		return "You are not allowed to perform this action."
	case errors.Is(err, domain.ErrItemNotFound):
		return "The item no longer exists. Refresh and try again."
	case errors.Is(err, domain.ErrLocationNotFound):
		return "The selected location does not belong to this item."
	case errors.Is(err, domain.ErrInvalidDelta):
		return "The stock change must not be zero."
	case errors.Is(err, domain.ErrDuplicateRequest):
		return "This request was already processed."
	case errors.Is(err, domain.ErrTimeout):
		return "The server took too long to answer. Please try again."
	case errors.Is(err, domain.ErrImportFormat):
		return "Could not import data. Please check the format and try again."
	default:
		return "Could not update inventory. Please try again."
	}
}
