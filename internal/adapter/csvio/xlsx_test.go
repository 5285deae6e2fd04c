package csvio

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/rl1809/inventory-tracker/internal/core/domain"
)

func TestWriteItemsXLSX(t *testing.T) {
	var buf bytes.Buffer
	err := WriteItemsXLSX(&buf, []domain.Item{
		domain.NewItem("1", "Art123", "Lager1", 3, "Lager2", 0, "7310000000001"),
	})
	require.NoError(t, err)

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(xlsxSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, ItemHeader, rows[0])
	assert.Equal(t, []string{"Art123", "Lager1", "in-stock", "3", "Lager2", "out-of-stock", "0", "7310000000001"}, rows[1])
}
