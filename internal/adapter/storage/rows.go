package storage

import (
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/rl1809/inventory-tracker/internal/core/domain"
)

// itemRow is the stored shape of an inventory record. It is shared by the
// MySQL and Redis adapters; statuses are written for readers of the table
// but never trusted on the way back in.
type itemRow struct {
	ID        string `db:"id" json:"id"`
	Article   string `db:"article" json:"article"`
	Location1 string `db:"location1" json:"location1"`
	Location2 string `db:"location2" json:"location2"`
	Status1   string `db:"status1" json:"status1"`
	Status2   string `db:"status2" json:"status2"`
	Stock1    int    `db:"stock1" json:"stock1"`
	Stock2    int    `db:"stock2" json:"stock2"`
	Barcode   string `db:"barcode" json:"barcode"`
}

type logRow struct {
	ID            string    `db:"id" json:"id"`
	Timestamp     time.Time `db:"timestamp" json:"timestamp"`
	Article       string    `db:"article" json:"article"`
	Location      string    `db:"location" json:"location"`
	Operation     string    `db:"operation" json:"operation"`
	PreviousStock int       `db:"previous_stock" json:"previous_stock"`
	NewStock      int       `db:"new_stock" json:"new_stock"`
	User          string    `db:"user" json:"user"`
}

func newItemRow(item domain.Item) itemRow {
	item = item.Normalize()
	return itemRow{
		ID:        item.ID,
		Article:   item.Article,
		Location1: item.Location1,
		Location2: item.Location2,
		Status1:   string(item.Status1),
		Status2:   string(item.Status2),
		Stock1:    item.Stock1,
		Stock2:    item.Stock2,
		Barcode:   item.Barcode,
	}
}

// toDomain validates the row and coerces what can be coerced: negative
// stock becomes zero and statuses are re-derived from stock.
func (r itemRow) toDomain() (domain.Item, error) {
	item := domain.NewItem(r.ID, r.Article, r.Location1, r.Stock1, r.Location2, r.Stock2, r.Barcode)
	if err := item.Validate(); err != nil {
		return domain.Item{}, fmt.Errorf("inventory row %q: %w", r.ID, err)
	}
	return item, nil
}

func newLogRow(entry domain.LogEntry) logRow {
	return logRow{
		ID:            entry.ID,
		Timestamp:     entry.Timestamp.UTC(),
		Article:       entry.Article,
		Location:      entry.Location,
		Operation:     string(entry.Operation),
		PreviousStock: entry.PreviousStock,
		NewStock:      entry.NewStock,
		User:          entry.User,
	}
}

func (r logRow) toDomain() (domain.LogEntry, error) {
	op := domain.Operation(strings.ToLower(strings.TrimSpace(r.Operation)))
	if !op.Valid() {
		return domain.LogEntry{}, fmt.Errorf("log row %q: %w: operation %q", r.ID, domain.ErrInvalidRecord, r.Operation)
	}
	if strings.TrimSpace(r.ID) == "" {
		return domain.LogEntry{}, fmt.Errorf("log row: %w: empty id", domain.ErrInvalidRecord)
	}
	return domain.LogEntry{
		ID:            r.ID,
		Timestamp:     r.Timestamp.UTC(),
		Article:       r.Article,
		Location:      r.Location,
		Operation:     op,
		PreviousStock: max(r.PreviousStock, 0),
		NewStock:      max(r.NewStock, 0),
		User:          r.User,
	}, nil
}

func itemsFromRows(rows []itemRow) []domain.Item {
	items := make([]domain.Item, 0, len(rows))
	for _, row := range rows {
		item, err := row.toDomain()
		if err != nil {
			log.WithError(err).Warn("skipping malformed inventory row")
			continue
		}
		items = append(items, item)
	}
	return items
}

func logsFromRows(rows []logRow) []domain.LogEntry {
	entries := make([]domain.LogEntry, 0, len(rows))
	for _, row := range rows {
		entry, err := row.toDomain()
		if err != nil {
			log.WithError(err).Warn("skipping malformed log row")
			continue
		}
		entries = append(entries, entry)
	}
	return entries
}
