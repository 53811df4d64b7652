package snapshot

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/de-tools/fidc-atlas/pkg/adapters"
	"github.com/de-tools/fidc-atlas/pkg/models/api"
	"github.com/de-tools/fidc-atlas/pkg/models/domain"
	"github.com/de-tools/fidc-atlas/pkg/store/csvfile"
	"github.com/de-tools/fidc-atlas/pkg/store/duckdb"
	"github.com/de-tools/fidc-atlas/pkg/store/duckdb/canonical"
	"github.com/de-tools/fidc-atlas/pkg/store/duckdb/snapshot"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

type Handler struct {
	catalogue *domain.Catalogue
	tables    canonical.Store
	snapshots snapshot.Store
}

func NewHandler(catalogue *domain.Catalogue, tables canonical.Store, snapshots snapshot.Store) *Handler {
	return &Handler{
		catalogue: catalogue,
		tables:    tables,
		snapshots: snapshots,
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zerolog.Ctx(r.Context()).Error().
			Err(err).
			Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, duckdb.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, errBadDate):
		status = http.StatusBadRequest
	default:
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("request failed")
	}
	writeJSON(w, r, status, api.Error{Error: err.Error()})
}

var errBadDate = errors.New("date must be YYYY-MM-DD")

func period(r *http.Request) (time.Time, error) {
	d, err := time.Parse(domain.DateLayout, chi.URLParam(r, "date"))
	if err != nil {
		return time.Time{}, errBadDate
	}
	return domain.MonthStart(d), nil
}

func (h *Handler) ListSources(w http.ResponseWriter, r *http.Request) {
	response := api.SourcesResponse{Sources: make([]api.Source, 0, len(h.catalogue.Sources))}
	for _, def := range h.catalogue.Sources {
		response.Sources = append(response.Sources, adapters.MapDomainSourceToAPI(def))
	}
	writeJSON(w, r, http.StatusOK, response)
}

func (h *Handler) GetTable(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := chi.URLParam(r, "source")

	values, err := h.tables.Get(ctx, name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, adapters.MapDomainCanonicalTableToAPI(adapters.MapStoreCanonicalValuesToDomain(name, values)))
}

func (h *Handler) ListSnapshots(w http.ResponseWriter, r *http.Request) {
	periods, err := h.snapshots.Periods(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	response := api.PeriodsResponse{Periods: make([]string, len(periods))}
	for i, p := range periods {
		response.Periods[i] = p.Format(domain.DateLayout)
	}
	writeJSON(w, r, http.StatusOK, response)
}

// GetSnapshot serves JSON, or the semicolon separated export with ?format=csv.
func (h *Handler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p, err := period(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	values, err := h.snapshots.GetSnapshot(ctx, p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	snap := adapters.MapStoreSnapshotValuesToDomain(p, values)

	if r.URL.Query().Get("format") == "csv" {
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", "attachment; filename="+csvfile.SnapshotFileName(snap))
		if err := csvfile.WriteSnapshot(w, snap); err != nil {
			zerolog.Ctx(ctx).Error().
				Err(err).
				Str("date", p.Format(domain.DateLayout)).
				Msg("failed to write snapshot csv")
		}
		return
	}
	writeJSON(w, r, http.StatusOK, adapters.MapDomainSnapshotToAPI(snap))
}

func (h *Handler) GetRuns(w http.ResponseWriter, r *http.Request) {
	p, err := period(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	runs, err := h.snapshots.GetRuns(r.Context(), p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response := api.RunsResponse{Runs: make([]api.Run, len(runs))}
	for i, run := range runs {
		response.Runs[i] = adapters.MapDomainRunReportToAPI(adapters.MapStoreRunToDomain(run))
	}
	writeJSON(w, r, http.StatusOK, response)
}
