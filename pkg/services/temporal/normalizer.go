package temporal

import (
	"slices"
	"time"

	"github.com/de-tools/fidc-atlas/pkg/models/domain"
	"github.com/rs/zerolog"
)

// Normalizer collapses a coerced frame to one row per calendar month.
type Normalizer struct {
	logger zerolog.Logger
}

func NewNormalizer(logger zerolog.Logger) *Normalizer {
	return &Normalizer{logger: logger}
}

// Normalize drops rows whose index is not a date, keys the rest by month start and
// keeps the first row seen for each month. Output dates are ascending.
func (n *Normalizer) Normalize(source string, f *domain.Frame) (*domain.CanonicalTable, []domain.Diagnostic) {
	var diags []domain.Diagnostic
	type keyed struct {
		month time.Time
		row   int
	}
	seen := make(map[time.Time]struct{})
	var kept []keyed

	for i, idx := range f.Index {
		t, ok := ParseDate(idx)
		if !ok {
			n.logger.Warn().
				Str("source", source).
				Str("index", domain.Label(idx)).
				Msg("row dropped, index is not a date")
			diags = append(diags, domain.Diagnostic{
				Source: source,
				Row:    domain.Label(idx),
				Value:  idx,
				Reason: "unparseable date index",
			})
			continue
		}
		month := domain.MonthStart(t)
		if _, dup := seen[month]; dup {
			continue
		}
		seen[month] = struct{}{}
		kept = append(kept, keyed{month: month, row: i})
	}

	slices.SortStableFunc(kept, func(a, b keyed) int {
		return a.month.Compare(b.month)
	})

	table := &domain.CanonicalTable{
		Source:  source,
		Columns: append([]string(nil), f.Labels...),
		Dates:   make([]time.Time, 0, len(kept)),
		Values:  make([][]float64, 0, len(kept)),
	}
	for _, k := range kept {
		row := make([]float64, f.Width())
		for j, col := range f.Cols {
			row[j] = domain.Float(col[k.row])
		}
		table.Dates = append(table.Dates, k.month)
		table.Values = append(table.Values, row)
	}
	return table, diags
}

// Renormalize applies the same month collapse to an existing canonical table.
func (n *Normalizer) Renormalize(t *domain.CanonicalTable) *domain.CanonicalTable {
	f := &domain.Frame{
		Labels: t.Columns,
		Cols:   make([][]any, len(t.Columns)),
		Index:  make([]any, len(t.Dates)),
	}
	for i, d := range t.Dates {
		f.Index[i] = d
	}
	for j := range t.Columns {
		col := make([]any, len(t.Dates))
		for i := range t.Dates {
			col[i] = t.Values[i][j]
		}
		f.Cols[j] = col
	}
	out, _ := n.Normalize(t.Source, f)
	return out
}
