package snapshot

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/de-tools/fidc-atlas/pkg/models/api"
	"github.com/de-tools/fidc-atlas/pkg/models/domain"
	"github.com/de-tools/fidc-atlas/pkg/models/store"
	"github.com/de-tools/fidc-atlas/pkg/store/duckdb"
	"github.com/de-tools/fidc-atlas/pkg/store/duckdb/canonical"
	"github.com/de-tools/fidc-atlas/pkg/store/duckdb/snapshot"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var april = time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)

type fixture struct {
	router *chi.Mux
}

func setupFixture(t *testing.T) *fixture {
	db, err := duckdb.NewDB(duckdb.Settings{DbPath: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	tables, err := canonical.NewStore(db)
	require.NoError(t, err)
	snapshots, err := snapshot.NewStore(db)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, tables.Save(ctx, "ALFA", []store.CanonicalValue{
		{Source: "ALFA", Period: april, Position: 0, Label: "PL Total", Value: sql.NullFloat64{Float64: 100, Valid: true}},
		{Source: "ALFA", Period: april, Position: 1, Label: "0-30 dias"},
	}))
	require.NoError(t, snapshots.SaveSnapshot(ctx, april, []store.SnapshotValue{
		{Source: "ALFA", Position: 0, Label: "PL Total", Value: sql.NullFloat64{Float64: 100, Valid: true}},
		{Source: "BETA", Position: 0, Label: "PL Total"},
	}))
	require.NoError(t, snapshots.SaveRun(ctx, store.Run{
		ID: "run-1", Period: april, StartedAt: april, FinishedAt: april.Add(time.Minute),
		Attempted: []string{"ALFA", "BETA"}, Succeeded: []string{"ALFA", "BETA"}, Failed: map[string]string{},
	}))

	cat := &domain.Catalogue{Sources: []domain.SourceDefinition{
		{Name: "ALFA"},
		{Name: "ORRAM", Funds: []string{"SIFRANPP"}},
		{Name: "OXSS", Recipe: "OXSS"},
	}}
	h := NewHandler(cat, tables, snapshots)

	router := chi.NewRouter()
	router.Get("/sources", h.ListSources)
	router.Get("/sources/{source}/table", h.GetTable)
	router.Get("/snapshots", h.ListSnapshots)
	router.Get("/snapshots/{date}", h.GetSnapshot)
	router.Get("/runs/{date}", h.GetRuns)
	return &fixture{router: router}
}

func (f *fixture) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}

func TestHandler_Sources(t *testing.T) {
	f := setupFixture(t)

	rec := f.get(t, "/sources")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[api.SourcesResponse](t, rec)
	require.Len(t, body.Sources, 3)
	assert.Equal(t, api.Source{Name: "ORRAM", Recipe: "ORRAM", Funds: []string{"SIFRANPP"}}, body.Sources[1])
}

func TestHandler_Table(t *testing.T) {
	f := setupFixture(t)

	rec := f.get(t, "/sources/ALFA/table")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[api.CanonicalTable](t, rec)
	assert.Equal(t, []string{"PL Total", "0-30 dias"}, body.Columns)
	require.Len(t, body.Rows, 1)
	assert.Equal(t, "2025-04-01", body.Rows[0].Date)
	assert.Nil(t, body.Rows[0].Values[1])

	assert.Equal(t, http.StatusNotFound, f.get(t, "/sources/NOPE/table").Code)
}

func TestHandler_Snapshot(t *testing.T) {
	f := setupFixture(t)

	tests := []struct {
		name   string
		path   string
		status int
	}{
		{"any day of the month", "/snapshots/2025-04-30", http.StatusOK},
		{"missing period", "/snapshots/2024-01-01", http.StatusNotFound},
		{"bad date", "/snapshots/april", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, f.get(t, tt.path).Code)
		})
	}

	body := decode[api.Snapshot](t, f.get(t, "/snapshots/2025-04-01"))
	assert.Equal(t, "2025-04-01", body.Date)
	require.Len(t, body.Rows, 2)
	assert.Equal(t, "BETA", body.Rows[1].Source)
	assert.Nil(t, body.Rows[1].Values[0])

	csv := f.get(t, "/snapshots/2025-04-01?format=csv")
	require.Equal(t, http.StatusOK, csv.Code)
	assert.Contains(t, csv.Header().Get("Content-Disposition"), "FIDCS_2025_04_01.csv")
	assert.True(t, strings.HasPrefix(csv.Body.String(), "\ufeffFIDC;PL Total\nALFA;100\nBETA;\n"))

	periods := decode[api.PeriodsResponse](t, f.get(t, "/snapshots"))
	assert.Equal(t, []string{"2025-04-01"}, periods.Periods)
}

func TestHandler_Runs(t *testing.T) {
	f := setupFixture(t)

	rec := f.get(t, "/runs/2025-04-15")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[api.RunsResponse](t, rec)
	require.Len(t, body.Runs, 1)
	assert.Equal(t, "run-1", body.Runs[0].ID)
	assert.Equal(t, 100.0, body.Runs[0].Completion)

	assert.Equal(t, http.StatusNotFound, f.get(t, "/runs/2025-05-01").Code)
}
