package reshape

import (
	"fmt"

	"github.com/de-tools/fidc-atlas/pkg/models/domain"
	"github.com/de-tools/fidc-atlas/pkg/services/classify"
	"github.com/de-tools/fidc-atlas/pkg/services/temporal"
	"github.com/rs/zerolog"
)

// State is the working set a recipe's steps read and replace.
type State struct {
	Source string
	Def    *domain.SourceDefinition
	// Grids are the loaded sheets, already transposed.
	Grids  [][][]any
	Frame  *domain.Frame
	Logger zerolog.Logger

	classifier *classify.Classifier
}

// Classify runs the column classifier over the current frame.
func (s *State) Classify() {
	s.Frame, _ = s.classifier.Apply(s.Frame, s.Def)
}

// Columns returns the positions of frame columns matched by any rule with one of tags.
func (s *State) Columns(tags ...domain.Tag) []int {
	rules := s.Def.RulesTagged(tags...)
	var out []int
	for j, label := range s.Frame.Labels {
		for _, r := range rules {
			if r.Matches(label) {
				out = append(out, j)
				break
			}
		}
	}
	return out
}

// Step is one named transformation of a recipe.
type Step struct {
	Name  string
	Apply func(s *State) error
}

// SheetLoader picks the sheets a recipe works on.
type SheetLoader func(raw *domain.RawTable, logger zerolog.Logger) ([]domain.Sheet, error)

// Recipe is the composed pipeline for one source template. Layout steps run on raw
// cells; Hooks run after numeric coercion. FundHooks run before Hooks for the
// named fund only.
type Recipe struct {
	Name       string
	Load       SheetLoader
	Layout     []Step
	FundHooks  map[string][]Step
	Hooks      []Step
	OutputName string
}

// SingleSheet uses the first sheet and warns when the workbook has more.
func SingleSheet(raw *domain.RawTable, logger zerolog.Logger) ([]domain.Sheet, error) {
	if len(raw.Sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", domain.ErrLayoutMismatch)
	}
	if len(raw.Sheets) > 1 {
		logger.Warn().
			Str("source", raw.Source).
			Int("sheets", len(raw.Sheets)).
			Msg("more than one sheet found, reading only the first")
	}
	return raw.Sheets[:1], nil
}

// NamedSheet uses the sheet called name.
func NamedSheet(name string) SheetLoader {
	return func(raw *domain.RawTable, _ zerolog.Logger) ([]domain.Sheet, error) {
		for _, sh := range raw.Sheets {
			if sh.Name == name {
				return []domain.Sheet{sh}, nil
			}
		}
		return nil, fmt.Errorf("%w: sheet %q not found", domain.ErrLayoutMismatch, name)
	}
}

// AllSheets uses every sheet; beyond three the trailing one is a summary and is skipped.
func AllSheets(raw *domain.RawTable, logger zerolog.Logger) ([]domain.Sheet, error) {
	if len(raw.Sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", domain.ErrLayoutMismatch)
	}
	if len(raw.Sheets) > 3 {
		logger.Warn().
			Str("source", raw.Source).
			Str("skipped", raw.Sheets[len(raw.Sheets)-1].Name).
			Msg("more than three sheets found, last one skipped")
		return raw.Sheets[:len(raw.Sheets)-1], nil
	}
	return raw.Sheets, nil
}

// Extract promotes the sentinel row of the single loaded grid to the header.
func Extract(sentinel string) Step {
	return Step{Name: "extract " + sentinel, Apply: func(s *State) error {
		if len(s.Grids) == 0 {
			return fmt.Errorf("%w: nothing loaded", domain.ErrLayoutMismatch)
		}
		f, err := ExtractHeader(s.Grids[0], sentinel)
		if err != nil {
			return err
		}
		s.Frame = f
		return nil
	}}
}

// Clean drops blank subset rows and duplicate subset columns as configured, then
// classifies the remaining columns.
func Clean(opts StandardizeOptions) Step {
	return Step{Name: "standardize", Apply: func(s *State) error {
		f, err := Standardize(s.Frame, opts)
		if err != nil {
			return err
		}
		s.Frame = f
		s.Classify()
		return nil
	}}
}

// Merge prepares every loaded grid around key, inner-joins them and classifies the result.
func Merge(key string) Step {
	return Step{Name: "merge " + key, Apply: func(s *State) error {
		frames := make([]*domain.Frame, 0, len(s.Grids))
		for n, grid := range s.Grids {
			f, err := ExtractHeader(DropEmptyRows(grid), key)
			if err != nil {
				return fmt.Errorf("sheet %d: %w", n+1, err)
			}
			if f, err = Standardize(f, StandardizeOptions{Subset: key, DropBlank: true}); err != nil {
				return fmt.Errorf("sheet %d: %w", n+1, err)
			}
			frames = append(frames, f)
		}
		merged, err := MergeSheets(frames, key)
		if err != nil {
			return err
		}
		s.Frame = merged
		s.Classify()
		return nil
	}}
}

// ConvertDates reads index labels as dates. Cells that are already dates (Excel
// serials, ISO or day-first text) are kept, and month names ("Abril 2025",
// "abr-25") are read as the first of that month. Anything else is cleared and
// later dropped.
var ConvertDates = Step{Name: "convert dates", Apply: func(s *State) error {
	for i, v := range s.Frame.Index {
		if t, ok := temporal.ParseDate(v); ok {
			s.Frame.Index[i] = t
			continue
		}
		s.Frame.Index[i] = nil
	}
	return nil
}}

// DropUndated removes rows whose index is not a date, such as trailing totals.
var DropUndated = Step{Name: "drop undated rows", Apply: func(s *State) error {
	index, before := s.Frame.Index, s.Frame.Len()
	s.Frame = s.Frame.FilterRows(func(row int) bool {
		_, ok := temporal.ParseDate(index[row])
		return ok
	})
	if dropped := before - s.Frame.Len(); dropped > 0 {
		s.Logger.Debug().Str("source", s.Source).Int("rows", dropped).Msg("undated rows dropped")
	}
	return nil
}}

