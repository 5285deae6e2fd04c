// Package csvio converts inventory items and log entries to and from the
// delimited text format used for bulk import and export.
//
// Values are joined without quoting, matching what spreadsheet users paste
// into the import box. A value containing the delimiter is therefore not
// representable.
package csvio

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rl1809/inventory-tracker/internal/core/domain"
)

var ItemHeader = []string{"Article", "Location1", "Status1", "Stock1", "Location2", "Status2", "Stock2", "Barcode"}

var LogHeader = []string{"Timestamp", "Article", "Location", "Operation", "PreviousStock", "NewStock", "User"}

// columns maps the import fields to positions in a row.
type columns struct {
	article, location1, stock1, location2, stock2, barcode int
}

// importColumns is the hand-written layout: article, location1, stock1,
// location2, stock2, barcode.
var importColumns = columns{article: 0, location1: 1, stock1: 2, location2: 3, stock2: 4, barcode: 5}

// exportColumns reads back files produced by WriteItems.
var exportColumns = columns{article: 0, location1: 1, stock1: 3, location2: 4, stock2: 6, barcode: 7}

// ParseItems reads delimited text into items without ids. The delimiter is a
// tab when the header line contains one, a comma otherwise. Rows whose first
// column is empty are skipped, unparsable stock counts become zero, and
// statuses are always derived from stock.
func ParseItems(text string) ([]domain.Item, error) {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	header := strings.TrimRight(lines[0], "\r")
	if strings.TrimSpace(header) == "" {
		return nil, fmt.Errorf("%w: missing header line", domain.ErrImportFormat)
	}

	delimiter := ","
	if strings.Contains(header, "\t") {
		delimiter = "\t"
	}
	cols := layoutFor(strings.Split(header, delimiter))

	items := make([]domain.Item, 0, len(lines)-1)
	for i, line := range lines[1:] {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		values := strings.Split(line, delimiter)
		if strings.TrimSpace(values[0]) == "" {
			continue
		}
		if len(values) <= cols.location1 || field(values, cols.location1) == "" {
			return nil, fmt.Errorf("%w: line %d: missing location1", domain.ErrImportFormat, i+2)
		}

		items = append(items, domain.NewItem(
			"",
			field(values, cols.article),
			field(values, cols.location1),
			parseStock(field(values, cols.stock1)),
			field(values, cols.location2),
			parseStock(field(values, cols.stock2)),
			field(values, cols.barcode),
		))
	}
	return items, nil
}

func layoutFor(header []string) columns {
	if len(header) >= len(ItemHeader) && strings.EqualFold(strings.TrimSpace(header[2]), ItemHeader[2]) {
		return exportColumns
	}
	return importColumns
}

func field(values []string, i int) string {
	if i >= len(values) {
		return ""
	}
	return strings.TrimSpace(values[i])
}

func parseStock(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// WriteItems writes the header and one comma-joined row per item.
func WriteItems(w io.Writer, items []domain.Item) error {
	rows := make([][]string, 0, len(items)+1)
	rows = append(rows, ItemHeader)
	for _, item := range items {
		rows = append(rows, itemRecord(item))
	}
	return writeRows(w, rows)
}

// WriteLogs writes the change log, newest first as given.
func WriteLogs(w io.Writer, logs []domain.LogEntry) error {
	rows := make([][]string, 0, len(logs)+1)
	rows = append(rows, LogHeader)
	for _, entry := range logs {
		rows = append(rows, []string{
			entry.Timestamp.UTC().Format(time.RFC3339),
			entry.Article,
			entry.Location,
			string(entry.Operation),
			strconv.Itoa(entry.PreviousStock),
			strconv.Itoa(entry.NewStock),
			entry.User,
		})
	}
	return writeRows(w, rows)
}

func itemRecord(item domain.Item) []string {
	item = item.Normalize()
	return []string{
		item.Article,
		item.Location1,
		string(item.Status1),
		strconv.Itoa(item.Stock1),
		item.Location2,
		string(item.Status2),
		strconv.Itoa(item.Stock2),
		item.Barcode,
	}
}

func writeRows(w io.Writer, rows [][]string) error {
	bw := bufio.NewWriter(w)
	for i, row := range rows {
		if i > 0 {
			if _, err := bw.WriteString("\n"); err != nil {
				return err
			}
		}
		if _, err := bw.WriteString(strings.Join(row, ",")); err != nil {
			return err
		}
	}
	return bw.Flush()
}
