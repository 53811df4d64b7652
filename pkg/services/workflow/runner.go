package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/de-tools/fidc-atlas/pkg/adapters"
	"github.com/de-tools/fidc-atlas/pkg/models/domain"
	"github.com/de-tools/fidc-atlas/pkg/services/reshape"
	"github.com/de-tools/fidc-atlas/pkg/store/duckdb"
	"github.com/de-tools/fidc-atlas/pkg/store/duckdb/canonical"
	"github.com/de-tools/fidc-atlas/pkg/store/duckdb/snapshot"
	"github.com/de-tools/fidc-atlas/pkg/store/source"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

var ErrNoSources = errors.New("no source produced a canonical table")

type Reshaper interface {
	Reshape(ctx context.Context, raw *domain.RawTable) (*reshape.Result, error)
}

type Consolidator interface {
	Consolidate(tables []*domain.CanonicalTable, date time.Time) (*domain.Snapshot, error)
}

type RunnerConfig struct {
	// Workers bounds how many sources are reshaped at once.
	Workers int
}

type Runner struct {
	provider       source.Provider
	reshaper       Reshaper
	consolidator   Consolidator
	canonicalStore canonical.Store
	snapshotStore  snapshot.Store
	config         RunnerConfig
	logger         zerolog.Logger
	now            func() time.Time
}

func NewRunner(
	provider source.Provider,
	reshaper Reshaper,
	consolidator Consolidator,
	canonicalStore canonical.Store,
	snapshotStore snapshot.Store,
	config RunnerConfig,
	logger zerolog.Logger,
) *Runner {
	if config.Workers < 1 {
		config.Workers = 1
	}
	return &Runner{
		provider:       provider,
		reshaper:       reshaper,
		consolidator:   consolidator,
		canonicalStore: canonicalStore,
		snapshotStore:  snapshotStore,
		config:         config,
		logger:         logger,
		now:            time.Now,
	}
}

// Reshape fetches one source workbook, reshapes it and stores the canonical table.
func (r *Runner) Reshape(ctx context.Context, date time.Time, name string) (*reshape.Result, error) {
	raw, err := r.provider.Fetch(ctx, name, date)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", name, err)
	}
	res, err := r.reshaper.Reshape(ctx, raw)
	if err != nil {
		return nil, err
	}
	for _, d := range res.Diagnostics {
		r.logger.Debug().
			Str("source", name).
			Str("column", d.Column).
			Str("row", d.Row).
			Interface("value", d.Value).
			Msg(d.Reason)
	}
	if err := r.canonicalStore.Save(ctx, res.Table.Source, adapters.MapDomainCanonicalTableToStore(res.Table)); err != nil {
		return nil, fmt.Errorf("store %s: %w", res.Table.Source, err)
	}
	return res, nil
}

// Consolidate builds and stores the snapshot for date from the stored canonical tables
// of sources, or of every stored source when none are given.
func (r *Runner) Consolidate(ctx context.Context, date time.Time, sources []string) (*domain.Snapshot, error) {
	if len(sources) == 0 {
		var err error
		if sources, err = r.canonicalStore.Sources(ctx); err != nil {
			return nil, err
		}
	}

	tables := make([]*domain.CanonicalTable, 0, len(sources))
	for _, name := range sources {
		values, err := r.canonicalStore.Get(ctx, name)
		if errors.Is(err, duckdb.ErrNotFound) {
			r.logger.Warn().Str("source", name).Msg("no stored canonical table")
			continue
		}
		if err != nil {
			return nil, err
		}
		tables = append(tables, adapters.MapStoreCanonicalValuesToDomain(name, values))
	}

	snap, err := r.consolidator.Consolidate(tables, date)
	if err != nil {
		return nil, err
	}
	if err := r.snapshotStore.SaveSnapshot(ctx, snap.Date, adapters.MapDomainSnapshotToStore(snap)); err != nil {
		return nil, fmt.Errorf("store snapshot: %w", err)
	}
	return snap, nil
}

type outcome struct {
	table *domain.CanonicalTable
	err   error
}

// Run reshapes every source for date, consolidates the successful ones and records the
// run. Source failures never abort the run; they are reported per source.
func (r *Runner) Run(ctx context.Context, date time.Time, sources []string) (*domain.RunReport, error) {
	report := &domain.RunReport{
		RunID:     uuid.NewString(),
		Date:      domain.MonthStart(date),
		StartedAt: r.now(),
		Failed:    make(map[string]string),
	}
	logger := r.logger.With().Str("run", report.RunID).Str("date", date.Format(domain.DateLayout)).Logger()

	if len(sources) == 0 {
		var err error
		if sources, err = r.provider.List(ctx, date); err != nil {
			return nil, fmt.Errorf("list sources: %w", err)
		}
	}
	if len(sources) == 0 {
		return nil, ErrNoSources
	}
	report.Attempted = sources

	results := make([]outcome, len(sources))
	g := new(errgroup.Group)
	g.SetLimit(r.config.Workers)
	for i, name := range sources {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i].err = err
				return nil
			}
			res, err := r.Reshape(ctx, date, name)
			if err != nil {
				results[i].err = err
				return nil
			}
			results[i].table = res.Table
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var stored []string
	for i, res := range results {
		name := sources[i]
		if res.err != nil {
			logger.Error().Err(res.err).Str("source", name).Msg("source failed")
			report.Failed[name] = res.err.Error()
			continue
		}
		report.Succeeded = append(report.Succeeded, name)
		stored = append(stored, res.table.Source)
	}

	event := logger.Info()
	if len(report.Failed) > 0 {
		event = logger.Warn().Strs("failed", report.FailedSources())
	}
	event.
		Int("attempted", len(report.Attempted)).
		Int("succeeded", len(report.Succeeded)).
		Float64("completion", report.Completion()).
		Msg("sources reshaped")

	var err error
	if len(stored) == 0 {
		err = ErrNoSources
	} else {
		report.Snapshot, err = r.Consolidate(ctx, date, stored)
	}

	report.FinishedAt = r.now()
	if saveErr := r.snapshotStore.SaveRun(ctx, adapters.MapDomainRunReportToStore(report)); saveErr != nil {
		logger.Error().Err(saveErr).Msg("failed to store run report")
		err = errors.Join(err, saveErr)
	}
	return report, err
}
