package canonical

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

func value(source string, month time.Month, pos int, label string, v *float64) store.CanonicalValue {
	out := store.CanonicalValue{
		Source:   source,
		Period:   time.Date(2025, month, 1, 0, 0, 0, 0, time.UTC),
		Position: pos,
		Label:    label,
	}
	if v != nil {
		out.Value = sql.NullFloat64{Float64: *v, Valid: true}
	}
	return out
}

func ptr(v float64) *float64 { return &v }

func TestNewStore(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		f := setupFixture(t)
		assert.NotNil(t, f.store)
	})

	t.Run("nil db", func(t *testing.T) {
		s, err := NewStore(nil)
		assert.Error(t, err)
		assert.Nil(t, s)
	})
}

func TestStore_SaveAndGet(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	values := []store.CanonicalValue{
		value("ALFA", 4, 0, "PL Total", ptr(200)),
		value("ALFA", 4, 1, "0-30 dias", nil),
		value("ALFA", 3, 1, "0-30 dias", ptr(5)),
		value("ALFA", 3, 0, "PL Total", ptr(100)),
	}
	require.NoError(t, f.store.Save(ctx, "ALFA", values))
	require.NoError(t, f.store.Save(ctx, "BETA", []store.CanonicalValue{value("BETA", 4, 0, "PL Total", ptr(1))}))

	got, err := f.store.Get(ctx, "ALFA")
	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.Equal(t, time.March, got[0].Period.Month())
	assert.Equal(t, "PL Total", got[0].Label)
	assert.Equal(t, 100.0, got[0].Value.Float64)
	assert.False(t, got[3].Value.Valid)

	t.Run("save replaces", func(t *testing.T) {
		require.NoError(t, f.store.Save(ctx, "ALFA", values[:1]))
		got, err := f.store.Get(ctx, "ALFA")
		require.NoError(t, err)
		assert.Len(t, got, 1)
	})

	t.Run("sources", func(t *testing.T) {
		names, err := f.store.Sources(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"ALFA", "BETA"}, names)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := f.store.Get(ctx, "GAMA")
		assert.ErrorIs(t, err, duckdb.ErrNotFound)
	})
}

func TestStore_SaveRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM canonical_values").WithArgs("ALFA").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectPrepare("INSERT INTO canonical_values").
		ExpectExec().WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	s, err := NewStore(db)
	require.NoError(t, err)

	err = s.Save(context.Background(), "ALFA", []store.CanonicalValue{value("ALFA", 4, 0, "PL Total", ptr(1))})
	assert.ErrorContains(t, err, "disk full")
	assert.NoError(t, mock.ExpectationsWereMet())
}
