package main

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/inventory-tracker/internal/core/domain"
)

func TestWriteExport_ReportsCloseError(t *testing.T) {
	items := []domain.Item{domain.NewItem("item-1", "Art123", "Lager1", 3, "", 0, "")}
	errDiskFull := errors.New("disk full")

	var buf bytes.Buffer
	err := writeExport(&buf, func() error { return errDiskFull }, "items", "csv", items, nil)

	assert.ErrorIs(t, err, errDiskFull)
	assert.Contains(t, buf.String(), "Art123")
}

func TestWriteExport_ClosesOnWriteError(t *testing.T) {
	closed := false
	err := writeExport(&bytes.Buffer{}, func() error { closed = true; return nil }, "items", "pdf", nil, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format")
	assert.True(t, closed)
}
