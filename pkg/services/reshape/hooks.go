package reshape

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/de-tools/fidc-atlas/pkg/models/domain"
	"github.com/de-tools/fidc-atlas/pkg/services/coerce"
)

// Hooks run on coerced frames: every cell is a float64, NaN when missing.

// TotalLiquidatedColumn receives the sum of the liquids-tagged columns.
const TotalLiquidatedColumn = "Liquidado Total (R$)"

var (
	presentValueSuffix = regexp.MustCompile(`((?:Cedente|Sacado)\s+\d+)\s+\(Vlr Presente-PDD\)`)
	parenthetical      = regexp.MustCompile(`\s*\(.*?\)\s*`)
)

func floats(col []any) []float64 {
	out := make([]float64, len(col))
	for i, v := range col {
		out[i] = domain.Float(v)
	}
	return out
}

func cells(vals []float64) []any {
	out := make([]any, len(vals))
	for i, v := range vals {
		out[i] = v
	}
	return out
}

func missingColumn(n int) []any {
	out := make([]any, n)
	for i := range out {
		out[i] = domain.Missing
	}
	return out
}

// sumRows adds the columns at positions row by row. A row stays missing when every
// addend is missing.
func sumRows(f *domain.Frame, positions []int) []any {
	out := make([]any, f.Len())
	for i := range out {
		total, seen := 0.0, false
		for _, p := range positions {
			if v := domain.Float(f.Cols[p][i]); !domain.IsMissing(v) {
				total += v
				seen = true
			}
		}
		if seen {
			out[i] = total
		} else {
			out[i] = domain.Missing
		}
	}
	return out
}

// NetAssets splits rename-tagged columns into "{label} (%)" and blanks the raw
// column, then multiplies asset-tagged columns row-wise by the first dc column.
var NetAssets = Step{Name: "net assets", Apply: func(s *State) error {
	for _, j := range s.Columns(domain.TagRename) {
		label := s.Frame.Labels[j]
		s.Frame.Set(label+" (%)", append([]any(nil), s.Frame.Cols[j]...))
		s.Frame.Cols[j] = missingColumn(s.Frame.Len())
	}

	dc := s.Columns(domain.TagDC)
	if len(dc) == 0 {
		return nil
	}
	factor := floats(s.Frame.Cols[dc[0]])
	for _, j := range s.Columns(domain.TagAsset) {
		vals := floats(s.Frame.Cols[j])
		for i := range vals {
			vals[i] *= factor[i]
		}
		s.Frame.Cols[j] = cells(vals)
	}
	return nil
}}

// TopConcentration sums "{target} 1" through "{target} 10" into
// "Concentrações {target}s (R$)".
func TopConcentration(target string) Step {
	return Step{Name: "top 10 " + target, Apply: func(s *State) error {
		var positions []int
		for n := 1; n <= 10; n++ {
			if j := s.Frame.Find(fmt.Sprintf("%s %d", target, n)); j >= 0 {
				positions = append(positions, j)
			}
		}
		if len(positions) == 0 {
			s.Logger.Warn().Str("source", s.Source).Str("target", target).Msg("no ranked columns for concentration")
			return nil
		}
		s.Frame.Set(fmt.Sprintf("Concentrações %ss (R$)", target), sumRows(s.Frame, positions))
		return nil
	}}
}

// RebasePercent turns percent-tagged columns into amounts by multiplying them by total.
func RebasePercent(total string) Step {
	return Step{Name: "rebase percentages", Apply: func(s *State) error {
		base, ok := s.Frame.Column(total)
		if !ok {
			return fmt.Errorf("%w: percentage base %q not found", domain.ErrLayoutMismatch, total)
		}
		factor := floats(base)
		for _, j := range s.Columns(domain.TagRepeatPercent, domain.TagPercentRP) {
			vals := floats(s.Frame.Cols[j])
			for i := range vals {
				vals[i] *= factor[i]
			}
			s.Frame.Cols[j] = cells(vals)
		}
		return nil
	}}
}

func scaleTagged(s *State, tag domain.Tag) {
	rules := s.Def.RulesTagged(tag)
	for j, label := range s.Frame.Labels {
		for _, r := range rules {
			if !r.Matches(label) {
				continue
			}
			k := r.ScaleFactor()
			vals := floats(s.Frame.Cols[j])
			for i := range vals {
				vals[i] *= k
			}
			s.Frame.Cols[j] = cells(vals)
			break
		}
	}
}

// ScaleValues applies the valueR1000 factor, thousands to units by default.
var ScaleValues = Step{Name: "scale values", Apply: func(s *State) error {
	scaleTagged(s, domain.TagValueR1000)
	return nil
}}

// ScaleAbsolute applies the absolute factor, a sign flip in thousands by default.
var ScaleAbsolute = Step{Name: "scale absolute", Apply: func(s *State) error {
	scaleTagged(s, domain.TagAbsolute)
	return nil
}}

// Magnitudes replaces absolute-tagged values with their magnitude and leaves the
// unit alone. Used by sources that publish provisions as negative balances.
var Magnitudes = Step{Name: "magnitudes", Apply: func(s *State) error {
	for _, j := range s.Columns(domain.TagAbsolute) {
		vals := floats(s.Frame.Cols[j])
		for i := range vals {
			vals[i] = coerce.Abs(vals[i])
		}
		s.Frame.Cols[j] = cells(vals)
	}
	return nil
}}

// StripPresentValueSuffix renames "Cedente N (Vlr Presente-PDD)" to "Cedente N",
// and the same for Sacado.
var StripPresentValueSuffix = Step{Name: "strip present value suffix", Apply: func(s *State) error {
	for j, label := range s.Frame.Labels {
		s.Frame.Labels[j] = presentValueSuffix.ReplaceAllString(label, "$1")
	}
	return nil
}}

// StripParentheticals removes "(...)" groups from removePar and percentRP columns.
var StripParentheticals = Step{Name: "strip parentheticals", Apply: func(s *State) error {
	for _, j := range s.Columns(domain.TagRemovePar, domain.TagPercentRP) {
		s.Frame.Labels[j] = strings.TrimSpace(parenthetical.ReplaceAllString(s.Frame.Labels[j], ""))
	}
	return nil
}}

// SumFamily replaces the first column tagged target with the row sum of every
// column tagged family.
func SumFamily(target, family domain.Tag) Step {
	return Step{Name: "sum " + string(family), Apply: func(s *State) error {
		dest := s.Columns(target)
		if len(dest) == 0 {
			s.Logger.Warn().Str("source", s.Source).Str("tag", string(target)).Msg("no column to receive family sum")
			return nil
		}
		s.Frame.Cols[dest[0]] = sumRows(s.Frame, s.Columns(family))
		return nil
	}}
}

// BlankColumn sets label to missing, adding it when absent.
func BlankColumn(label string) Step {
	return Step{Name: "blank " + label, Apply: func(s *State) error {
		s.Frame.Set(label, missingColumn(s.Frame.Len()))
		return nil
	}}
}

// TotalLiquidated sums the liquids-tagged columns into TotalLiquidatedColumn.
var TotalLiquidated = Step{Name: "total liquidated", Apply: func(s *State) error {
	s.Frame.Set(TotalLiquidatedColumn, sumRows(s.Frame, s.Columns(domain.TagLiquids)))
	return nil
}}
