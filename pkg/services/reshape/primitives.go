package reshape

import (
	"fmt"
	"slices"
	"strings"

	"github.com/de-tools/fidc-atlas/pkg/models/domain"
)

// Transpose swaps rows and columns, padding ragged rows with nil.
func Transpose(cells [][]any) [][]any {
	width := 0
	for _, row := range cells {
		width = max(width, len(row))
	}
	out := make([][]any, width)
	for j := range out {
		out[j] = make([]any, len(cells))
		for i, row := range cells {
			if j < len(row) {
				out[j][i] = row[j]
			}
		}
	}
	return out
}

// DropEmptyRows removes rows whose every cell is blank.
func DropEmptyRows(cells [][]any) [][]any {
	out := make([][]any, 0, len(cells))
	for _, row := range cells {
		if slices.ContainsFunc(row, func(v any) bool { return !domain.Blank(v) }) {
			out = append(out, row)
		}
	}
	return out
}

// ExtractHeader finds the first cell equal to sentinel, scanning row by row. Its row
// becomes the header, the values beneath it the index, and every row up to and
// including the header is discarded.
func ExtractHeader(cells [][]any, sentinel string) (*domain.Frame, error) {
	for i, row := range cells {
		for j, cell := range row {
			s, ok := cell.(string)
			if !ok || strings.TrimSpace(s) != sentinel {
				continue
			}
			labels := make([]string, len(row))
			for k, v := range row {
				labels[k] = domain.Label(v)
			}
			body := cells[i+1:]
			index := make([]any, len(body))
			for k, r := range body {
				if j < len(r) {
					index[k] = r[j]
				}
			}
			return domain.NewFrame(labels, body, index), nil
		}
	}
	return nil, fmt.Errorf("%w: header %q not found", domain.ErrLayoutMismatch, sentinel)
}

// MergeSheets inner-joins frames on the first column named key, left to right.
// Left row order is preserved and the key appears once; other labels are
// concatenated as they are, duplicates included. The merged index is the key.
func MergeSheets(frames []*domain.Frame, key string) (*domain.Frame, error) {
	if len(frames) == 0 {
		return nil, fmt.Errorf("%w: no sheets to merge", domain.ErrLayoutMismatch)
	}
	merged := frames[0]
	if merged.Find(key) < 0 {
		return nil, fmt.Errorf("%w: join key %q absent from sheet 1", domain.ErrLayoutMismatch, key)
	}
	for n, right := range frames[1:] {
		var err error
		if merged, err = join(merged, right, key); err != nil {
			return nil, fmt.Errorf("sheet %d: %w", n+2, err)
		}
	}

	out := merged.Clone()
	keyCol, _ := out.Column(key)
	out.Index = append([]any(nil), keyCol...)
	return out, nil
}

func join(left, right *domain.Frame, key string) (*domain.Frame, error) {
	lk, rk := left.Find(key), right.Find(key)
	if rk < 0 {
		return nil, fmt.Errorf("%w: join key %q absent", domain.ErrLayoutMismatch, key)
	}

	rightRows := make(map[string][]int)
	for i, v := range right.Cols[rk] {
		if domain.Blank(v) {
			continue
		}
		k := domain.Label(v)
		rightRows[k] = append(rightRows[k], i)
	}

	var rightPos []int
	for j := range right.Labels {
		if j != rk {
			rightPos = append(rightPos, j)
		}
	}

	out := &domain.Frame{
		Labels: slices.Concat(left.Labels, pick(right.Labels, rightPos)),
		Cols:   make([][]any, left.Width()+len(rightPos)),
	}
	for i, v := range left.Cols[lk] {
		if domain.Blank(v) {
			continue
		}
		for _, r := range rightRows[domain.Label(v)] {
			for j, col := range left.Cols {
				out.Cols[j] = append(out.Cols[j], col[i])
			}
			for n, j := range rightPos {
				out.Cols[left.Width()+n] = append(out.Cols[left.Width()+n], right.Cols[j][r])
			}
			out.Index = append(out.Index, v)
		}
	}
	return out, nil
}

func pick(labels []string, positions []int) []string {
	out := make([]string, len(positions))
	for n, p := range positions {
		out[n] = labels[p]
	}
	return out
}

// StandardizeOptions mirror the per-recipe cleanup switches.
type StandardizeOptions struct {
	// Subset is the column whose blank rows are dropped.
	Subset string
	// DropBlank drops rows with a blank Subset value.
	DropBlank bool
	// FirstOnly keeps only the first column named Subset.
	FirstOnly bool
}

// Standardize applies the row and column cleanup selected by opts.
func Standardize(f *domain.Frame, opts StandardizeOptions) (*domain.Frame, error) {
	out := f
	if opts.FirstOnly {
		dups := f.Positions(opts.Subset)
		keep := make([]int, 0, f.Width())
		for j := range f.Labels {
			if len(dups) > 1 && slices.Contains(dups[1:], j) {
				continue
			}
			keep = append(keep, j)
		}
		out = f.Select(keep)
	}
	if !opts.DropBlank {
		return out, nil
	}
	col, ok := out.Column(opts.Subset)
	if !ok {
		return nil, fmt.Errorf("%w: column %q not found", domain.ErrLayoutMismatch, opts.Subset)
	}
	return out.FilterRows(func(row int) bool {
		return !domain.Blank(col[row])
	}), nil
}
