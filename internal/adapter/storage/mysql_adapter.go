package storage

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/rl1809/inventory-tracker/internal/core/domain"
)

var ErrRowNotFound = errors.New("row not found")

const selectItems = `
	SELECT id, article, location1, COALESCE(location2, '') AS location2,
		status1, COALESCE(status2, '') AS status2, stock1, stock2,
		COALESCE(barcode, '') AS barcode
	FROM inventory ORDER BY seq`

const insertItem = `
	INSERT INTO inventory (id, article, location1, location2, status1, status2, stock1, stock2, barcode)
	VALUES (:id, :article, :location1, NULLIF(:location2, ''), :status1, NULLIF(:status2, ''), :stock1, :stock2, NULLIF(:barcode, ''))`

type MySQLAdapter struct {
	db *sqlx.DB
}

func NewMySQLAdapter(db *sqlx.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

func (m *MySQLAdapter) ListItems(ctx context.Context) ([]domain.Item, error) {
	var rows []itemRow
	if err := m.db.SelectContext(ctx, &rows, selectItems); err != nil {
		return nil, errors.Wrap(err, "select inventory")
	}
	return itemsFromRows(rows), nil
}

// UpdateItem requires the DSN to set clientFoundRows=true so that writing
// identical values still counts as a matched row.
func (m *MySQLAdapter) UpdateItem(ctx context.Context, item domain.Item) error {
	result, err := m.db.NamedExecContext(ctx, `
		UPDATE inventory
		SET article = :article, location1 = :location1, location2 = NULLIF(:location2, ''),
			status1 = :status1, status2 = NULLIF(:status2, ''),
			stock1 = :stock1, stock2 = :stock2, barcode = NULLIF(:barcode, '')
		WHERE id = :id`,
		newItemRow(item),
	)
	if err != nil {
		return errors.Wrapf(err, "update inventory %s", item.ID)
	}

	return requireAffected(result, "update inventory "+item.ID)
}

// requireAffected fails with ErrRowNotFound when the statement matched no row.
func requireAffected(result sql.Result, op string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return errors.Wrapf(err, "%s: rows affected", op)
	}
	if rows == 0 {
		return errors.Wrap(ErrRowNotFound, op)
	}
	return nil
}

func (m *MySQLAdapter) ReplaceItems(ctx context.Context, items []domain.Item) error {
	tx, err := m.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM inventory`); err != nil {
		return errors.Wrap(err, "delete inventory")
	}

	for _, item := range items {
		if _, err := tx.NamedExecContext(ctx, insertItem, newItemRow(item)); err != nil {
			return errors.Wrapf(err, "insert inventory %s", item.ID)
		}
	}

	return errors.Wrap(tx.Commit(), "commit import")
}

func (m *MySQLAdapter) DeleteAllItems(ctx context.Context) error {
	_, err := m.db.ExecContext(ctx, `DELETE FROM inventory`)
	return errors.Wrap(err, "delete inventory")
}

func (m *MySQLAdapter) InsertLog(ctx context.Context, entry domain.LogEntry) error {
	_, err := m.db.NamedExecContext(ctx, `
		INSERT INTO logs (id, timestamp, article, location, operation, previous_stock, new_stock, user)
		VALUES (:id, :timestamp, :article, :location, :operation, :previous_stock, :new_stock, NULLIF(:user, ''))`,
		newLogRow(entry),
	)
	return errors.Wrapf(err, "insert log %s", entry.ID)
}

func (m *MySQLAdapter) ListLogs(ctx context.Context) ([]domain.LogEntry, error) {
	var rows []logRow
	err := m.db.SelectContext(ctx, &rows, `
		SELECT id, timestamp, article, location, operation, previous_stock, new_stock,
			COALESCE(user, '') AS user
		FROM logs ORDER BY timestamp DESC, id DESC`)
	if err != nil {
		return nil, errors.Wrap(err, "select logs")
	}
	return logsFromRows(rows), nil
}

func (m *MySQLAdapter) DeleteAllLogs(ctx context.Context) error {
	_, err := m.db.ExecContext(ctx, `DELETE FROM logs`)
	return errors.Wrap(err, "delete logs")
}

func (m *MySQLAdapter) GetSetting(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := m.db.GetContext(ctx, &value, "SELECT `value` FROM settings WHERE `key` = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrapf(err, "select setting %s", key)
	}
	return value, true, nil
}

func (m *MySQLAdapter) SetSetting(ctx context.Context, key, value string) error {
	_, err := m.db.ExecContext(ctx,
		"INSERT INTO settings (`key`, `value`) VALUES (?, ?) ON DUPLICATE KEY UPDATE `value` = VALUES(`value`)",
		key, value,
	)
	return errors.Wrapf(err, "upsert setting %s", key)
}

func (m *MySQLAdapter) DeleteSetting(ctx context.Context, key string) error {
	_, err := m.db.ExecContext(ctx, "DELETE FROM settings WHERE `key` = ?", key)
	return errors.Wrapf(err, "delete setting %s", key)
}
