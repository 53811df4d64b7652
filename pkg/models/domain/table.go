package domain

import (
	"math"
	"time"
)

// DateLayout is the serialized form of every date index.
const DateLayout = "2006-01-02"

// Missing marks an absent or invalid numeric cell.
var Missing = math.NaN()

func IsMissing(v float64) bool {
	return math.IsNaN(v)
}

// Sheet is one un-oriented cell grid as read from a workbook.
type Sheet struct {
	Name  string
	Cells [][]any
}

// RawTable holds every sheet of one source file.
type RawTable struct {
	Source string
	Sheets []Sheet
}

// CanonicalTable is one source's data indexed by month start, one row per month.
type CanonicalTable struct {
	Source  string
	Columns []string
	Dates   []time.Time
	Values  [][]float64
}

// Row returns the values for the month containing date.
func (t *CanonicalTable) Row(date time.Time) ([]float64, bool) {
	key := MonthStart(date)
	for i, d := range t.Dates {
		if d.Equal(key) {
			return t.Values[i], true
		}
	}
	return nil, false
}

// ColumnIndex returns the first position of name, or -1.
func (t *CanonicalTable) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// MonthStart truncates t to the first day of its month in UTC.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// Snapshot is the consolidated one-row-per-source table for a reporting date.
type Snapshot struct {
	Date    time.Time
	Sources []string
	Columns []string
	Values  [][]float64
}

func (s *Snapshot) ColumnIndex(name string) int {
	for i, c := range s.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Diagnostic records a value that was coerced to missing or a row that was dropped.
type Diagnostic struct {
	Source string
	Column string
	Row    string
	Value  any
	Reason string
}
