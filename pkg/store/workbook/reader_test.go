package workbook

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func buildWorkbook(t *testing.T) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	t.Cleanup(func() { f.Close() })

	require.NoError(t, f.SetCellValue("Sheet1", "A1", "Item"))
	require.NoError(t, f.SetCellValue("Sheet1", "B1", "31/03/2025"))
	require.NoError(t, f.SetCellValue("Sheet1", "A2", "PL Total"))
	require.NoError(t, f.SetCellValue("Sheet1", "B2", 1000.5))
	require.NoError(t, f.SetCellValue("Sheet1", "A3", "Flag"))
	require.NoError(t, f.SetCellValue("Sheet1", "B3", true))
	require.NoError(t, f.SetCellValue("Sheet1", "A4", "Data"))
	require.NoError(t, f.SetCellValue("Sheet1", "C4", time.Date(2025, 4, 30, 0, 0, 0, 0, time.UTC)))

	_, err := f.NewSheet("Passivo")
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue("Passivo", "A1", "1.234,56"))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestRead(t *testing.T) {
	raw, err := Read(buildWorkbook(t), "ALFA")
	require.NoError(t, err)

	assert.Equal(t, "ALFA", raw.Source)
	require.Len(t, raw.Sheets, 2)
	assert.Equal(t, "Sheet1", raw.Sheets[0].Name)
	assert.Equal(t, "Passivo", raw.Sheets[1].Name)

	cells := raw.Sheets[0].Cells
	require.Len(t, cells, 4)
	assert.Equal(t, []any{"Item", "31/03/2025"}, cells[0])
	assert.Equal(t, []any{"PL Total", 1000.5}, cells[1])
	assert.Equal(t, []any{"Flag", true}, cells[2])
	assert.Equal(t, []any{"Data", nil, 45777.0}, cells[3], "dates stay serial numbers")

	assert.Equal(t, [][]any{{"1.234,56"}}, raw.Sheets[1].Cells, "locale text is not parsed here")
}

func TestRead_Invalid(t *testing.T) {
	_, err := Read(strings.NewReader("not a workbook"), "ALFA")
	assert.Error(t, err)
}
