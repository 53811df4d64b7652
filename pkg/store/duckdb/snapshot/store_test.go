package snapshot

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/de-tools/fidc-atlas/pkg/models/store"
	"github.com/de-tools/fidc-atlas/pkg/store/duckdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	db    *sql.DB
	store Store
}

var april = time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)

func setupFixture(t *testing.T) *fixture {
	db, err := duckdb.NewDB(duckdb.Settings{DbPath: ":memory:"})
	require.NoError(t, err)
	s, err := NewStore(db)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return &fixture{
		db:    db,
		store: s,
	}
}

func TestNewStore_NilDB(t *testing.T) {
	s, err := NewStore(nil)
	assert.Error(t, err)
	assert.Nil(t, s)
}

func TestStore_Snapshot(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	values := []store.SnapshotValue{
		{Period: april, Source: "BETA", Position: 0, Label: "PL Total", Value: sql.NullFloat64{Float64: 2, Valid: true}},
		{Period: april, Source: "ALFA", Position: 1, Label: "PDD Total (PL%)"},
		{Period: april, Source: "ALFA", Position: 0, Label: "PL Total", Value: sql.NullFloat64{Float64: 1, Valid: true}},
		{Period: april, Source: "BETA", Position: 1, Label: "PDD Total (PL%)", Value: sql.NullFloat64{Float64: -5, Valid: true}},
	}
	require.NoError(t, f.store.SaveSnapshot(ctx, april, values))
	require.NoError(t, f.store.SaveSnapshot(ctx, april.AddDate(0, -1, 0), values[:1]))

	got, err := f.store.GetSnapshot(ctx, april)
	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.Equal(t, "ALFA", got[0].Source)
	assert.Equal(t, "PL Total", got[0].Label)
	assert.False(t, got[1].Value.Valid)
	assert.Equal(t, -5.0, got[3].Value.Float64)

	periods, err := f.store.Periods(ctx)
	require.NoError(t, err)
	require.Len(t, periods, 2)
	assert.Equal(t, time.March, periods[0].Month())

	require.NoError(t, f.store.SaveSnapshot(ctx, april, values[:2]))
	got, err = f.store.GetSnapshot(ctx, april)
	require.NoError(t, err)
	assert.Len(t, got, 2, "save replaces the period")

	_, err = f.store.GetSnapshot(ctx, april.AddDate(1, 0, 0))
	assert.ErrorIs(t, err, duckdb.ErrNotFound)
}

func TestStore_Runs(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	started := time.Date(2025, 5, 2, 10, 0, 0, 0, time.UTC)

	older := store.Run{
		ID: "run-1", Period: april, StartedAt: started, FinishedAt: started.Add(time.Minute),
		Attempted: []string{"ALFA", "BETA"}, Succeeded: []string{"ALFA"},
		Failed: map[string]string{"BETA": "layout mismatch"}, Completion: 50,
	}
	newer := store.Run{
		ID: "run-2", Period: april, StartedAt: started.Add(time.Hour), FinishedAt: started.Add(2 * time.Hour),
		Attempted: []string{"ALFA"}, Succeeded: []string{"ALFA"}, Completion: 100,
	}
	require.NoError(t, f.store.SaveRun(ctx, older))
	require.NoError(t, f.store.SaveRun(ctx, newer))

	runs, err := f.store.GetRuns(ctx, april)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-2", runs[0].ID)
	assert.Equal(t, older.Failed, runs[1].Failed)
	assert.Equal(t, older.Attempted, runs[1].Attempted)
	assert.Equal(t, 50.0, runs[1].Completion)

	_, err = f.store.GetRuns(ctx, april.AddDate(0, 1, 0))
	assert.ErrorIs(t, err, duckdb.ErrNotFound)
}

func TestStore_SaveRunFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO runs").WillReturnError(errors.New("constraint violation"))

	s, err := NewStore(db)
	require.NoError(t, err)

	err = s.SaveRun(context.Background(), store.Run{ID: "run-1", Period: april})
	assert.ErrorContains(t, err, "constraint violation")
	assert.NoError(t, mock.ExpectationsWereMet())
}
