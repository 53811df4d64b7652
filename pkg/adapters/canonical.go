package adapters

import (
	"database/sql"
	"math"
	"time"

	"github.com/de-tools/fidc-atlas/pkg/models/domain"
	"github.com/de-tools/fidc-atlas/pkg/models/store"
)

func nullFloat(v float64) sql.NullFloat64 {
	if domain.IsMissing(v) || math.IsInf(v, 0) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

func fromNull(v sql.NullFloat64) float64 {
	if !v.Valid {
		return domain.Missing
	}
	return v.Float64
}

func MapDomainCanonicalTableToStore(t *domain.CanonicalTable) []store.CanonicalValue {
	if t == nil {
		return nil
	}
	out := make([]store.CanonicalValue, 0, len(t.Dates)*len(t.Columns))
	for i, date := range t.Dates {
		for j, label := range t.Columns {
			out = append(out, store.CanonicalValue{
				Source:   t.Source,
				Period:   date,
				Position: j,
				Label:    label,
				Value:    nullFloat(t.Values[i][j]),
			})
		}
	}
	return out
}

// MapStoreCanonicalValuesToDomain expects values ordered by period then position.
func MapStoreCanonicalValuesToDomain(source string, values []store.CanonicalValue) *domain.CanonicalTable {
	t := &domain.CanonicalTable{Source: source}
	rows := make(map[time.Time]int)
	for _, v := range values {
		period := domain.MonthStart(v.Period)
		i, ok := rows[period]
		if !ok {
			i = len(t.Dates)
			rows[period] = i
			t.Dates = append(t.Dates, period)
			t.Values = append(t.Values, nil)
		}
		if i == 0 && v.Position == len(t.Columns) {
			t.Columns = append(t.Columns, v.Label)
		}
		t.Values[i] = setAt(t.Values[i], v.Position, fromNull(v.Value))
	}
	for i := range t.Values {
		t.Values[i] = pad(t.Values[i], len(t.Columns))
	}
	return t
}

func setAt(row []float64, pos int, v float64) []float64 {
	row = pad(row, pos+1)
	row[pos] = v
	return row
}

func pad(row []float64, n int) []float64 {
	for len(row) < n {
		row = append(row, domain.Missing)
	}
	return row
}
