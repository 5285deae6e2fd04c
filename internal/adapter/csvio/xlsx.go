package csvio

import (
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/rl1809/inventory-tracker/internal/core/domain"
)

const xlsxSheet = "Inventory"

// WriteItemsXLSX writes the same columns as WriteItems into a single sheet
// workbook. Stock columns are written as numbers.
func WriteItemsXLSX(w io.Writer, items []domain.Item) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", xlsxSheet); err != nil {
		return err
	}

	header := make([]interface{}, len(ItemHeader))
	for i, h := range ItemHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(xlsxSheet, "A1", &header); err != nil {
		return err
	}

	for i, item := range items {
		item = item.Normalize()
		row := []interface{}{
			item.Article,
			item.Location1,
			string(item.Status1),
			item.Stock1,
			item.Location2,
			string(item.Status2),
			item.Stock2,
			item.Barcode,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(xlsxSheet, cell, &row); err != nil {
			return err
		}
	}

	return f.Write(w)
}
