package adapters

import (
	"math"
	"testing"
	"time"

	"github.com/de-tools/fidc-atlas/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalTableLongFormat(t *testing.T) {
	jan := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	table := &domain.CanonicalTable{
		Source:  "ALFA",
		Columns: []string{"PL Total", "PL Total", "0-30 dias"},
		Dates:   []time.Time{jan, feb},
		Values:  [][]float64{{1, 2, math.NaN()}, {4, 5, 6}},
	}

	values := MapDomainCanonicalTableToStore(table)
	require.Len(t, values, 6)
	assert.False(t, values[2].Value.Valid)
	assert.Equal(t, 1, values[1].Position)

	back := MapStoreCanonicalValuesToDomain("ALFA", values)
	assert.Equal(t, table.Columns, back.Columns, "duplicate labels survive by position")
	assert.Equal(t, table.Dates, back.Dates)
	assert.True(t, domain.IsMissing(back.Values[0][2]))
	assert.Equal(t, []float64{4, 5, 6}, back.Values[1])
}

func TestSnapshotToAPI(t *testing.T) {
	snap := &domain.Snapshot{
		Date:    time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
		Sources: []string{"ALFA", "BETA"},
		Columns: []string{"PL Total", "PDD Total (PL%)"},
		Values:  [][]float64{{100, -5}, {200, math.NaN()}},
	}

	back := MapStoreSnapshotValuesToDomain(snap.Date, MapDomainSnapshotToStore(snap))
	assert.Equal(t, snap.Sources, back.Sources)
	assert.Equal(t, snap.Columns, back.Columns)
	assert.True(t, domain.IsMissing(back.Values[1][1]))

	out := MapDomainSnapshotToAPI(snap)
	assert.Equal(t, "2025-04-01", out.Date)
	require.Len(t, out.Rows, 2)
	require.NotNil(t, out.Rows[0].Values[1])
	assert.Equal(t, -5.0, *out.Rows[0].Values[1])
	assert.Nil(t, out.Rows[1].Values[1])
}

func TestRunReportMapping(t *testing.T) {
	report := &domain.RunReport{
		RunID:     "run-1",
		Date:      time.Date(2025, 4, 30, 0, 0, 0, 0, time.UTC),
		Attempted: []string{"ALFA", "BETA"},
		Succeeded: []string{"ALFA"},
		Failed:    map[string]string{"BETA": "layout mismatch"},
	}

	run := MapDomainRunReportToStore(report)
	assert.Equal(t, 50.0, run.Completion)
	assert.Equal(t, time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), run.Period)

	out := MapDomainRunReportToAPI(MapStoreRunToDomain(run))
	assert.Equal(t, "2025-04-01", out.Date)
	assert.Equal(t, 50.0, out.Completion)
}
