package storage

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/inventory-tracker/internal/core/domain"
)

func TestItemRow_ToDomainRederivesStatus(t *testing.T) {
	row := itemRow{
		ID:        "1",
		Article:   "Art123",
		Location1: "Lager1",
		Location2: "Lager2",
		Status1:   "out-of-stock",
		Status2:   "bogus",
		Stock1:    3,
		Stock2:    -2,
	}

	item, err := row.toDomain()
	require.NoError(t, err)

	assert.Equal(t, domain.StatusInStock, item.Status1)
	assert.Equal(t, 0, item.Stock2)
	assert.Equal(t, domain.StatusOutOfStock, item.Status2)
}

func TestItemRow_RejectsMissingFields(t *testing.T) {
	_, err := itemRow{ID: "1", Location1: "L"}.toDomain()
	assert.ErrorIs(t, err, domain.ErrInvalidRecord)

	_, err = itemRow{Article: "A", Location1: "L"}.toDomain()
	assert.ErrorIs(t, err, domain.ErrInvalidRecord)
}

func TestItemsFromRows_SkipsMalformed(t *testing.T) {
	items := itemsFromRows([]itemRow{
		{ID: "1", Article: "A", Location1: "L"},
		{ID: "2", Article: "", Location1: "L"},
		{ID: "3", Article: "C", Location1: "L", Stock1: 4},
	})

	require.Len(t, items, 2)
	assert.Equal(t, "1", items[0].ID)
	assert.Equal(t, "3", items[1].ID)
}

func TestNewItemRow_WritesDerivedStatus(t *testing.T) {
	row := newItemRow(domain.Item{ID: "1", Article: "A", Location1: "L", Stock1: 0, Location2: ""})

	assert.Equal(t, "out-of-stock", row.Status1)
	assert.Equal(t, "", row.Status2)
}

func TestLogRow_ToDomain(t *testing.T) {
	ts := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	entry, err := logRow{ID: "l1", Timestamp: ts, Operation: " Remove ", PreviousStock: 1, NewStock: -1}.toDomain()
	require.NoError(t, err)
	assert.Equal(t, domain.OperationRemove, entry.Operation)
	assert.Equal(t, 0, entry.NewStock)
	assert.Equal(t, ts, entry.Timestamp)

	_, err = logRow{ID: "l2", Operation: "transfer"}.toDomain()
	assert.ErrorIs(t, err, domain.ErrInvalidRecord)

	_, err = logRow{Operation: "add"}.toDomain()
	assert.ErrorIs(t, err, domain.ErrInvalidRecord)
}

func TestLogsFromRows_SkipsMalformed(t *testing.T) {
	logs := logsFromRows([]logRow{
		{ID: "l1", Operation: "add"},
		{ID: "l2", Operation: "???"},
	})

	require.Len(t, logs, 1)
	assert.Equal(t, "l1", logs[0].ID)
}

type fakeResult struct {
	rows int64
	err  error
}

func (r fakeResult) LastInsertId() (int64, error) { return 0, nil }
func (r fakeResult) RowsAffected() (int64, error) { return r.rows, r.err }

func TestRequireAffected(t *testing.T) {
	assert.NoError(t, requireAffected(fakeResult{rows: 1}, "update inventory 1"))
	assert.ErrorIs(t, requireAffected(fakeResult{}, "update inventory 1"), ErrRowNotFound)

	errUnsupported := errors.New("rows affected unsupported")
	err := requireAffected(fakeResult{err: errUnsupported}, "update inventory 1")
	assert.ErrorIs(t, err, errUnsupported)
	assert.NotErrorIs(t, err, ErrRowNotFound)
}
