package domain

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Frame is the working table of the reshaper. Labels may repeat; cells are stored
// column-major and Index runs parallel to every column.
type Frame struct {
	Labels []string
	Cols   [][]any
	Index  []any
}

// NewFrame builds a frame from row-major cells. Short rows are padded with nil.
func NewFrame(labels []string, rows [][]any, index []any) *Frame {
	f := &Frame{
		Labels: append([]string(nil), labels...),
		Cols:   make([][]any, len(labels)),
		Index:  append([]any(nil), index...),
	}
	for j := range labels {
		col := make([]any, len(rows))
		for i, row := range rows {
			if j < len(row) {
				col[i] = row[j]
			}
		}
		f.Cols[j] = col
	}
	return f
}

func (f *Frame) Len() int {
	return len(f.Index)
}

func (f *Frame) Width() int {
	return len(f.Labels)
}

// Find returns the first position of label, or -1.
func (f *Frame) Find(label string) int {
	for i, l := range f.Labels {
		if l == label {
			return i
		}
	}
	return -1
}

// Positions returns every position whose label equals label.
func (f *Frame) Positions(label string) []int {
	var out []int
	for i, l := range f.Labels {
		if l == label {
			out = append(out, i)
		}
	}
	return out
}

// Column returns the first column named label.
func (f *Frame) Column(label string) ([]any, bool) {
	i := f.Find(label)
	if i < 0 {
		return nil, false
	}
	return f.Cols[i], true
}

// Select keeps the columns at positions, in the given order.
func (f *Frame) Select(positions []int) *Frame {
	out := &Frame{
		Labels: make([]string, 0, len(positions)),
		Cols:   make([][]any, 0, len(positions)),
		Index:  append([]any(nil), f.Index...),
	}
	for _, p := range positions {
		out.Labels = append(out.Labels, f.Labels[p])
		out.Cols = append(out.Cols, append([]any(nil), f.Cols[p]...))
	}
	return out
}

// FilterRows keeps the rows for which keep returns true.
func (f *Frame) FilterRows(keep func(row int) bool) *Frame {
	out := &Frame{
		Labels: append([]string(nil), f.Labels...),
		Cols:   make([][]any, len(f.Cols)),
	}
	var rows []int
	for i := range f.Index {
		if keep(i) {
			rows = append(rows, i)
			out.Index = append(out.Index, f.Index[i])
		}
	}
	for j, col := range f.Cols {
		nc := make([]any, len(rows))
		for k, r := range rows {
			nc[k] = col[r]
		}
		out.Cols[j] = nc
	}
	return out
}

// Set replaces the first column named label, appending it when absent.
func (f *Frame) Set(label string, values []any) {
	if i := f.Find(label); i >= 0 {
		f.Cols[i] = values
		return
	}
	f.Labels = append(f.Labels, label)
	f.Cols = append(f.Cols, values)
}

func (f *Frame) Clone() *Frame {
	out := &Frame{
		Labels: append([]string(nil), f.Labels...),
		Cols:   make([][]any, len(f.Cols)),
		Index:  append([]any(nil), f.Index...),
	}
	for j, col := range f.Cols {
		out.Cols[j] = append([]any(nil), col...)
	}
	return out
}

// Float reads a coerced cell; anything that is not a float64 counts as missing.
func Float(v any) float64 {
	if f, ok := v.(float64); ok {
		return f
	}
	return math.NaN()
}

// Blank reports whether a raw cell carries no value.
func Blank(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	case float64:
		return math.IsNaN(x)
	}
	return false
}

// Label renders a raw cell as a column label or index key.
func Label(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case float64:
		if x == math.Trunc(x) && math.Abs(x) < 1e15 {
			return fmt.Sprintf("%d", int64(x))
		}
		return fmt.Sprintf("%g", x)
	case time.Time:
		return x.Format(DateLayout)
	}
	return fmt.Sprint(v)
}
