package domain

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
)

var (
	ErrUnknownSource  = errors.New("source not found in catalogue")
	ErrLayoutMismatch = errors.New("layout mismatch")
)

// Tag is the semantic action a FieldRule applies to the columns it matches.
type Tag string

const (
	TagKeep          Tag = "keep"
	TagRemove        Tag = "remove"
	TagRemoveRepeat  Tag = "removeRepeat"
	TagRepeat        Tag = "repeat"
	TagRepeatPercent Tag = "repeatPercent"
	TagRepeatMez     Tag = "repeatMez"
	TagRepeatSen     Tag = "repeatSen"
	TagPercentRP     Tag = "percentRP"
	TagAbsolute      Tag = "absolute"
	TagValueR1000    Tag = "valueR1000"
	TagAsset         Tag = "asset"
	TagDC            Tag = "dc"
	TagRename        Tag = "rename"
	TagRemovePar     Tag = "removePar"
	TagLiquids       Tag = "liquids"
	TagMez           Tag = "mez"
	TagSen           Tag = "sen"
)

var knownTags = []Tag{
	TagKeep, TagRemove, TagRemoveRepeat, TagRepeat, TagRepeatPercent, TagRepeatMez,
	TagRepeatSen, TagPercentRP, TagAbsolute, TagValueR1000, TagAsset, TagDC,
	TagRename, TagRemovePar, TagLiquids, TagMez, TagSen,
}

// ParseTag maps a catalogue tag to its canonical spelling. Matching is case-insensitive
// so legacy lowercase documents ("repeatpercent", "removepar") keep working.
func ParseTag(s string) (Tag, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return TagKeep, nil
	}
	for _, t := range knownTags {
		if strings.EqualFold(string(t), s) {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown tag %q", s)
}

// Repeatable reports whether a rule with this tag may match more than one column.
func (t Tag) Repeatable() bool {
	return strings.HasPrefix(string(t), string(TagRepeat))
}

// Drops reports whether columns resolved to this tag are removed by the classifier.
func (t Tag) Drops() bool {
	return t == TagRemove || t == TagRemoveRepeat
}

// FieldRule pairs a column-label pattern with the tag applied to the columns it matches.
type FieldRule struct {
	Pattern string
	Tag     Tag
	// Factor overrides the default scale of absolute (-1000) and valueR1000 (1000).
	Factor *float64

	re *regexp.Regexp
}

// NewFieldRule compiles pattern as a case-insensitive full match.
func NewFieldRule(pattern string, tag Tag) (FieldRule, error) {
	re, err := CompileFullMatch(pattern)
	if err != nil {
		return FieldRule{}, err
	}
	return FieldRule{Pattern: pattern, Tag: tag, re: re}, nil
}

// CompileFullMatch anchors pattern on both ends and makes it case-insensitive.
func CompileFullMatch(pattern string) (*regexp.Regexp, error) {
	re, err := regexp.Compile(`(?i)^(?:` + pattern + `)$`)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	return re, nil
}

func (r FieldRule) Matches(label string) bool {
	if r.re == nil {
		return false
	}
	return r.re.MatchString(label)
}

// ScaleFactor returns the multiplier applied to columns of a scaling tag.
func (r FieldRule) ScaleFactor() float64 {
	if r.Factor != nil {
		return *r.Factor
	}
	switch r.Tag {
	case TagAbsolute:
		return -1000
	case TagValueR1000:
		return 1000
	}
	return 1
}

// SourceDefinition describes one manager template: the recipe that reshapes its
// workbooks and the ordered rule list that classifies their columns.
type SourceDefinition struct {
	Name   string
	Recipe string
	Funds  []string
	Rules  []FieldRule
}

// RecipeName falls back to the definition name when no recipe is declared.
func (d *SourceDefinition) RecipeName() string {
	if d.Recipe != "" {
		return d.Recipe
	}
	return d.Name
}

// RulesTagged returns the rules carrying any of the given tags, in catalogue order.
func (d *SourceDefinition) RulesTagged(tags ...Tag) []FieldRule {
	var out []FieldRule
	for _, r := range d.Rules {
		if slices.Contains(tags, r.Tag) {
			out = append(out, r)
		}
	}
	return out
}

// Equivalence lists the raw aliases that rename to one canonical column.
type Equivalence struct {
	Canonical string
	Aliases   []string
}

// EquivalenceMap keeps canonical columns in catalogue order; that order is the
// required-column order of consolidated snapshots.
type EquivalenceMap []Equivalence

func (m EquivalenceMap) Canonical() []string {
	out := make([]string, 0, len(m))
	for _, e := range m {
		out = append(out, e.Canonical)
	}
	return out
}

// Rename returns the canonical name for an alias; the label is returned unchanged
// when no alias matches.
func (m EquivalenceMap) Rename(label string) string {
	for _, e := range m {
		if slices.Contains(e.Aliases, label) {
			return e.Canonical
		}
	}
	return label
}

type DayBucketConfig struct {
	// LowerBoundCorrections are start bounds that sources publish one day late ("31-60").
	LowerBoundCorrections []int
	// OpenBoundCorrections apply the same -1 shift to "> N" style labels.
	OpenBoundCorrections []int
}

func DefaultDayBucketConfig() DayBucketConfig {
	return DayBucketConfig{
		LowerBoundCorrections: []int{6, 16, 31, 61, 91, 121, 151, 181, 366, 721},
		OpenBoundCorrections:  []int{121},
	}
}

// Placement moves Column immediately before Anchor when both are present.
type Placement struct {
	Column string
	Anchor string
}

// GroupPlacement moves Column right after the last interval column of Group.
type GroupPlacement struct {
	Column string
	Group  string
}

type LayoutConfig struct {
	PlaceBefore     []Placement
	PlaceAfterGroup []GroupPlacement
}

func DefaultLayoutConfig() LayoutConfig {
	return LayoutConfig{
		PlaceBefore: []Placement{
			{Column: "Concentração Top 10 Cedentes (R$)", Anchor: "Cedente 1"},
			{Column: "Concentração Top 10 Sacados (R$)", Anchor: "Sacado 1"},
		},
		PlaceAfterGroup: []GroupPlacement{
			{Column: "PDD À Vencer", Group: "PDD Total"},
		},
	}
}

// Catalogue is the immutable, run-wide rule set.
type Catalogue struct {
	Sources          []SourceDefinition
	Equivalences     EquivalenceMap
	SnapshotPatterns []string
	DayBuckets       DayBucketConfig
	Layout           LayoutConfig
}

// Resolve finds the definition whose fund group lists source or, for definitions
// without funds, whose name equals source. A group name alone never resolves.
func (c *Catalogue) Resolve(source string) (*SourceDefinition, error) {
	for i := range c.Sources {
		def := &c.Sources[i]
		if len(def.Funds) > 0 {
			if slices.Contains(def.Funds, source) {
				return def, nil
			}
			continue
		}
		if def.Name == source {
			return def, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownSource, source)
}
