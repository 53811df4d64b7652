package daybucket

import (
	"cmp"
	"slices"

	"github.com/de-tools/fidc-atlas/pkg/models/domain"
)

// Order builds the final column order of a snapshot: required columns first, then
// matched columns with grouped intervals sorted by (group, start, end) and
// everything unparseable after them. Layout rules are applied last.
func Order(required, matched []string, layout domain.LayoutConfig) []string {
	sorted := slices.Clone(matched)
	slices.SortStableFunc(sorted, compareBuckets)

	out := make([]string, 0, len(required)+len(sorted))
	seen := make(map[string]struct{}, cap(out))
	for _, c := range slices.Concat(required, sorted) {
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}

	for _, p := range layout.PlaceBefore {
		out = moveBefore(out, p.Column, p.Anchor)
	}
	for _, g := range groups(out) {
		if first := firstBucket(out, g); first != "" {
			out = moveBefore(out, g, first)
		}
	}
	for _, p := range layout.PlaceAfterGroup {
		if last := lastBucket(out, p.Group); last != "" {
			out = moveAfter(out, p.Column, last)
		}
	}
	return out
}

func compareBuckets(a, b string) int {
	ba, okA := ParseGrouped(a)
	bb, okB := ParseGrouped(b)
	switch {
	case okA && !okB:
		return -1
	case !okA && okB:
		return 1
	case !okA && !okB:
		return 0
	}
	return cmp.Or(
		cmp.Compare(ba.Group, bb.Group),
		cmp.Compare(ba.Start, bb.Start),
		cmp.Compare(ba.End, bb.End),
	)
}

// groups lists interval groups in order of first appearance.
func groups(cols []string) []string {
	var out []string
	for _, c := range cols {
		b, ok := ParseGrouped(c)
		if ok && !slices.Contains(out, b.Group) {
			out = append(out, b.Group)
		}
	}
	return out
}

func firstBucket(cols []string, group string) string {
	for _, c := range cols {
		if b, ok := ParseGrouped(c); ok && b.Group == group {
			return c
		}
	}
	return ""
}

func lastBucket(cols []string, group string) string {
	last := ""
	for _, c := range cols {
		if b, ok := ParseGrouped(c); ok && b.Group == group {
			last = c
		}
	}
	return last
}

func moveBefore(cols []string, col, anchor string) []string {
	i := slices.Index(cols, col)
	if i < 0 || !slices.Contains(cols, anchor) || col == anchor {
		return cols
	}
	cols = slices.Delete(slices.Clone(cols), i, i+1)
	return slices.Insert(cols, slices.Index(cols, anchor), col)
}

func moveAfter(cols []string, col, anchor string) []string {
	i := slices.Index(cols, col)
	if i < 0 || !slices.Contains(cols, anchor) || col == anchor {
		return cols
	}
	cols = slices.Delete(slices.Clone(cols), i, i+1)
	return slices.Insert(cols, slices.Index(cols, anchor)+1, col)
}
