package reshape

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/de-tools/fidc-atlas/pkg/models/domain"
	"github.com/de-tools/fidc-atlas/pkg/services/classify"
	"github.com/de-tools/fidc-atlas/pkg/services/coerce"
	"github.com/de-tools/fidc-atlas/pkg/services/daybucket"
	"github.com/de-tools/fidc-atlas/pkg/services/temporal"
	"github.com/rs/zerolog"
)

type ErrorKind string

const (
	KindConfig ErrorKind = "config"
	KindLayout ErrorKind = "layout"
)

// SourceError is a failure that excludes one source from the run.
type SourceError struct {
	Source string
	Kind   ErrorKind
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("source %s: %s error: %v", e.Source, e.Kind, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

func kindOf(err error) ErrorKind {
	switch {
	case errors.Is(err, domain.ErrUnknownSource), errors.Is(err, ErrUnknownRecipe):
		return KindConfig
	default:
		return KindLayout
	}
}

// Result is one source's canonical table plus the values that were coerced away.
type Result struct {
	Table       *domain.CanonicalTable
	Diagnostics []domain.Diagnostic
	Recipe      string
}

type Reshaper struct {
	catalogue     *domain.Catalogue
	recipes       Registry
	logger        zerolog.Logger
	classifier    *classify.Classifier
	coercer       *coerce.Coercer
	normalizer    *temporal.Normalizer
	canonicalizer *daybucket.Canonicalizer
}

func NewReshaper(catalogue *domain.Catalogue, recipes Registry, logger zerolog.Logger) *Reshaper {
	return &Reshaper{
		catalogue:     catalogue,
		recipes:       recipes,
		logger:        logger,
		classifier:    classify.NewClassifier(logger),
		coercer:       coerce.NewCoercer(logger),
		normalizer:    temporal.NewNormalizer(logger),
		canonicalizer: daybucket.NewCanonicalizer(catalogue.DayBuckets),
	}
}

// Reshape turns one source's raw workbook into its canonical table. Every failure,
// panics included, comes back as a *SourceError.
func (r *Reshaper) Reshape(ctx context.Context, raw *domain.RawTable) (res *Result, err error) {
	logger := r.logger.With().Str("source", raw.Source).Logger()
	defer func() {
		if p := recover(); p != nil {
			res = nil
			err = &SourceError{Source: raw.Source, Kind: KindLayout, Err: fmt.Errorf("recovered: %v", p)}
		}
	}()

	fail := func(err error) (*Result, error) {
		if ctx.Err() != nil {
			return nil, err
		}
		return nil, &SourceError{Source: raw.Source, Kind: kindOf(err), Err: err}
	}

	def, err := r.catalogue.Resolve(raw.Source)
	if err != nil {
		return fail(err)
	}
	recipe, err := r.recipes.Get(def.RecipeName())
	if err != nil {
		return fail(err)
	}

	sheets, err := recipe.Load(raw, logger)
	if err != nil {
		return fail(err)
	}
	state := &State{
		Source:     raw.Source,
		Def:        def,
		Grids:      make([][][]any, 0, len(sheets)),
		Logger:     logger,
		classifier: r.classifier,
	}
	for _, sh := range sheets {
		state.Grids = append(state.Grids, Transpose(sh.Cells))
	}

	if err := r.run(ctx, state, recipe.Layout); err != nil {
		return fail(err)
	}
	if state.Frame == nil {
		return fail(fmt.Errorf("%w: recipe %s produced no table", domain.ErrLayoutMismatch, recipe.Name))
	}

	coerced, diags := r.coercer.Frame(raw.Source, state.Frame)
	state.Frame = coerced

	hooks := slices.Concat(recipe.FundHooks[raw.Source], recipe.Hooks)
	if len(def.RulesTagged(domain.TagLiquids)) > 0 {
		hooks = append(hooks, TotalLiquidated)
	}
	if err := r.run(ctx, state, hooks); err != nil {
		return fail(err)
	}

	state.Frame.Labels = r.canonicalizer.Columns(state.Frame.Labels)

	name := raw.Source
	if recipe.OutputName != "" {
		name = recipe.OutputName
	}
	table, dropped := r.normalizer.Normalize(name, state.Frame)
	diags = append(diags, dropped...)
	if len(table.Dates) == 0 {
		return fail(fmt.Errorf("%w: no dated rows", domain.ErrLayoutMismatch))
	}

	logger.Info().
		Str("recipe", recipe.Name).
		Int("months", len(table.Dates)).
		Int("columns", len(table.Columns)).
		Int("diagnostics", len(diags)).
		Msg("source reshaped")

	return &Result{Table: table, Diagnostics: diags, Recipe: recipe.Name}, nil
}

func (r *Reshaper) run(ctx context.Context, state *State, steps []Step) error {
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := step.Apply(state); err != nil {
			return fmt.Errorf("step %s: %w", step.Name, err)
		}
		state.Logger.Debug().Str("step", step.Name).Msg("step applied")
	}
	return nil
}
