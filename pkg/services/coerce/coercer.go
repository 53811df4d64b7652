package coerce

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/de-tools/fidc-atlas/pkg/models/domain"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// brNumber matches Brazilian formatted numbers: "322.850,74", "-1.000", "12,5".
var brNumber = regexp.MustCompile(`^-?\d{1,3}(?:\.\d{3})*(?:,\d+)?$`)

var blanks = map[string]struct{}{"": {}, "-": {}}

// Coercer converts raw cells to float64, marking everything it cannot read as missing.
type Coercer struct {
	logger zerolog.Logger
}

func NewCoercer(logger zerolog.Logger) *Coercer {
	return &Coercer{logger: logger}
}

// Value returns the numeric value of v. ok is false when v is blank or invalid.
func (c *Coercer) Value(v any) (float64, bool) {
	switch x := v.(type) {
	case nil:
		return domain.Missing, false
	case float64:
		return x, !math.IsNaN(x)
	case float32:
		return float64(x), !math.IsNaN(float64(x))
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case int32:
		return float64(x), true
	case decimal.Decimal:
		return x.InexactFloat64(), true
	case string:
		return c.String(x)
	}
	return domain.Missing, false
}

// String parses a cell rendered as text.
func (c *Coercer) String(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if _, blank := blanks[s]; blank {
		return domain.Missing, false
	}
	if brNumber.MatchString(s) {
		plain := strings.ReplaceAll(strings.ReplaceAll(s, ".", ""), ",", ".")
		if d, err := decimal.NewFromString(plain); err == nil {
			c.logger.Debug().Str("value", s).Msg("pt-BR number converted")
			return d.InexactFloat64(), true
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) {
		return domain.Missing, false
	}
	return f, true
}

// Frame coerces every cell of f. Invalid non-blank cells become missing and are
// reported as diagnostics; blank cells become missing silently.
func (c *Coercer) Frame(source string, f *domain.Frame) (*domain.Frame, []domain.Diagnostic) {
	out := f.Clone()
	var diags []domain.Diagnostic
	for j, col := range out.Cols {
		for i, v := range col {
			n, ok := c.Value(v)
			if !ok && !domain.Blank(v) && !isBlankString(v) {
				row := ""
				if i < len(out.Index) {
					row = domain.Label(out.Index[i])
				}
				c.logger.Debug().
					Str("source", source).
					Str("column", out.Labels[j]).
					Str("row", row).
					Interface("value", v).
					Msg("invalid value converted to missing")
				diags = append(diags, domain.Diagnostic{
					Source: source,
					Column: out.Labels[j],
					Row:    row,
					Value:  v,
					Reason: "invalid numeric value",
				})
			}
			col[i] = n
		}
	}
	return out, diags
}

// Abs returns the magnitude of v, leaving missing values untouched.
func Abs(v float64) float64 {
	if domain.IsMissing(v) {
		return v
	}
	return math.Abs(v)
}

func isBlankString(v any) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	_, blank := blanks[strings.TrimSpace(s)]
	return blank
}
