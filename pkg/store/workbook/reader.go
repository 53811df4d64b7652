package workbook

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/de-tools/fidc-atlas/pkg/models/domain"
	"github.com/xuri/excelize/v2"
)

// Read loads every sheet of an xlsx workbook as an un-oriented cell grid.
// Numeric cells (dates included, as serials) are returned as float64, booleans as
// bool, everything else as string. Empty cells are nil.
func Read(r io.Reader, source string) (*domain.RawTable, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook for %s: %w", source, err)
	}
	defer f.Close()

	raw := &domain.RawTable{Source: source}
	for _, name := range f.GetSheetList() {
		cells, err := readSheet(f, name)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %q of %s: %w", name, source, err)
		}
		raw.Sheets = append(raw.Sheets, domain.Sheet{Name: name, Cells: cells})
	}
	return raw, nil
}

func readSheet(f *excelize.File, sheet string) ([][]any, error) {
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}

	cells := make([][]any, len(rows))
	for i, row := range rows {
		out := make([]any, len(row))
		for j, value := range row {
			if value == "" {
				continue
			}
			axis, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				return nil, err
			}
			kind, err := f.GetCellType(sheet, axis)
			if err != nil {
				return nil, err
			}
			out[j] = typed(kind, value)
		}
		cells[i] = out
	}
	return cells, nil
}

func typed(kind excelize.CellType, value string) any {
	switch kind {
	case excelize.CellTypeBool:
		return value == "1" || strings.EqualFold(value, "true")
	case excelize.CellTypeUnset, excelize.CellTypeNumber, excelize.CellTypeDate, excelize.CellTypeFormula:
		if v, err := strconv.ParseFloat(value, 64); err == nil {
			return v
		}
	}
	return value
}
