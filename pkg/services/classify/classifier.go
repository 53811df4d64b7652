package classify

import (
	"github.com/de-tools/fidc-atlas/pkg/models/domain"
	"github.com/rs/zerolog"
)

// Unmatched is the RuleIndex of a column no rule claimed.
const Unmatched = -1

// Resolution is the outcome for one column position.
type Resolution struct {
	Position  int
	Label     string
	RuleIndex int
	Tag       domain.Tag
}

func (r Resolution) Matched() bool {
	return r.RuleIndex != Unmatched
}

// Classification is the immutable result of resolving every column of a frame
// against one source's rule list.
type Classification struct {
	Resolutions []Resolution
	// Missing holds the patterns of rules that matched no column at all.
	Missing []string
}

// Kept returns the positions that survive classification, in frame order.
func (c Classification) Kept() []int {
	out := make([]int, 0, len(c.Resolutions))
	for _, r := range c.Resolutions {
		if r.Matched() && !r.Tag.Drops() {
			out = append(out, r.Position)
		}
	}
	return out
}

// Classify resolves labels left to right. Each label takes the first rule that
// matches and is not yet satisfied; a non-repeatable rule is satisfied by its
// first column, so later columns carrying the same label fall through.
func Classify(labels []string, rules []domain.FieldRule) Classification {
	satisfied := make(map[int]struct{}, len(rules))
	hit := make(map[int]struct{}, len(rules))
	res := make([]Resolution, len(labels))

	for pos, label := range labels {
		res[pos] = Resolution{Position: pos, Label: label, RuleIndex: Unmatched}
		for i, rule := range rules {
			if _, done := satisfied[i]; done {
				continue
			}
			if !rule.Matches(label) {
				continue
			}
			res[pos].RuleIndex = i
			res[pos].Tag = rule.Tag
			hit[i] = struct{}{}
			if !rule.Tag.Repeatable() {
				satisfied[i] = struct{}{}
			}
			break
		}
	}

	var missing []string
	for i, rule := range rules {
		if _, ok := hit[i]; ok {
			continue
		}
		found := false
		for _, label := range labels {
			if rule.Matches(label) {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, rule.Pattern)
		}
	}

	return Classification{Resolutions: res, Missing: missing}
}

type Classifier struct {
	logger zerolog.Logger
}

func NewClassifier(logger zerolog.Logger) *Classifier {
	return &Classifier{logger: logger}
}

// Apply classifies the frame's columns and returns the frame without unmatched
// and removed columns. Unexpected or absent columns are never fatal.
func (c *Classifier) Apply(f *domain.Frame, def *domain.SourceDefinition) (*domain.Frame, Classification) {
	cls := Classify(f.Labels, def.Rules)

	for _, pattern := range cls.Missing {
		c.logger.Warn().
			Str("source", def.Name).
			Str("pattern", pattern).
			Msg("expected column not found")
	}
	for _, r := range cls.Resolutions {
		switch {
		case !r.Matched():
			c.logger.Warn().
				Str("source", def.Name).
				Str("column", r.Label).
				Msg("column not in catalogue, dropped")
		case r.Tag.Drops():
			c.logger.Debug().
				Str("source", def.Name).
				Str("column", r.Label).
				Str("tag", string(r.Tag)).
				Msg("column removed by rule")
		}
	}

	return f.Select(cls.Kept()), cls
}
