package consolidate

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/de-tools/fidc-atlas/pkg/models/domain"
	"github.com/de-tools/fidc-atlas/pkg/services/daybucket"
	"github.com/rs/zerolog"
)

var ErrEmptySnapshot = errors.New("no source has data for the snapshot date")

type Consolidator struct {
	catalogue     *domain.Catalogue
	canonicalizer *daybucket.Canonicalizer
	patterns      []*regexp.Regexp
	logger        zerolog.Logger
}

func NewConsolidator(catalogue *domain.Catalogue, logger zerolog.Logger) (*Consolidator, error) {
	patterns := make([]*regexp.Regexp, 0, len(catalogue.SnapshotPatterns))
	for _, p := range catalogue.SnapshotPatterns {
		// Snapshot patterns are matched case-sensitively, unlike field rules.
		re, err := regexp.Compile(`^(?:` + p + `)$`)
		if err != nil {
			return nil, fmt.Errorf("invalid snapshot pattern %q: %w", p, err)
		}
		patterns = append(patterns, re)
	}
	return &Consolidator{
		catalogue:     catalogue,
		canonicalizer: daybucket.NewCanonicalizer(catalogue.DayBuckets),
		patterns:      patterns,
		logger:        logger,
	}, nil
}

// selection is one source's relabelled columns that made it into the snapshot.
type selection struct {
	source  string
	labels  []string
	values  []float64
	matched []string
}

// Labels applies interval canonicalization, alias renaming and context grouping.
func (c *Consolidator) Labels(columns []string) []string {
	labels := c.canonicalizer.Columns(columns)
	for i, l := range labels {
		labels[i] = c.catalogue.Equivalences.Rename(l)
	}
	return daybucket.GroupByContext(labels)
}

func (c *Consolidator) matches(label string) bool {
	return slices.ContainsFunc(c.patterns, func(re *regexp.Regexp) bool {
		return re.MatchString(label)
	})
}

func (c *Consolidator) selectColumns(t *domain.CanonicalTable, date time.Time) selection {
	sel := selection{source: t.Source}
	required := c.catalogue.Equivalences.Canonical()
	labels := c.Labels(t.Columns)
	row, ok := t.Row(date)

	seen := make(map[string]struct{}, len(labels))
	for j, label := range labels {
		if _, dup := seen[label]; dup {
			continue
		}
		byPattern := c.matches(label)
		if !byPattern && !slices.Contains(required, label) {
			continue
		}
		seen[label] = struct{}{}
		if byPattern {
			sel.matched = append(sel.matched, label)
		}
		if !ok || domain.IsMissing(row[j]) {
			continue
		}
		sel.labels = append(sel.labels, label)
		sel.values = append(sel.values, row[j])
	}
	return sel
}

// Consolidate builds the one-row-per-source snapshot for the month of date.
// Sources with no data for that month are left out, as are columns no source fills.
func (c *Consolidator) Consolidate(tables []*domain.CanonicalTable, date time.Time) (*domain.Snapshot, error) {
	month := domain.MonthStart(date)

	var rows []selection
	var matched []string
	for _, t := range tables {
		sel := c.selectColumns(t, month)
		for _, m := range sel.matched {
			if !slices.Contains(matched, m) {
				matched = append(matched, m)
			}
		}
		if len(sel.labels) == 0 {
			c.logger.Warn().
				Str("source", t.Source).
				Str("date", month.Format(domain.DateLayout)).
				Msg("source has no data for snapshot date, dropped")
			continue
		}
		rows = append(rows, sel)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptySnapshot, month.Format(domain.DateLayout))
	}
	slices.SortStableFunc(rows, func(a, b selection) int {
		return strings.Compare(a.source, b.source)
	})

	present := make(map[string]struct{})
	for _, r := range rows {
		for _, l := range r.labels {
			present[l] = struct{}{}
		}
	}
	var columns []string
	for _, col := range daybucket.Order(c.catalogue.Equivalences.Canonical(), matched, c.catalogue.Layout) {
		if _, ok := present[col]; ok {
			columns = append(columns, col)
		}
	}

	snap := &domain.Snapshot{
		Date:    month,
		Sources: make([]string, len(rows)),
		Columns: columns,
		Values:  make([][]float64, len(rows)),
	}
	for i, r := range rows {
		snap.Sources[i] = r.source
		vals := make([]float64, len(columns))
		for j, col := range columns {
			vals[j] = domain.Missing
			if k := slices.Index(r.labels, col); k >= 0 {
				vals[j] = r.values[k]
			}
		}
		snap.Values[i] = vals
	}

	added := AddRatios(snap, c.logger)

	c.logger.Info().
		Str("date", month.Format(domain.DateLayout)).
		Int("sources", len(snap.Sources)).
		Int("columns", len(snap.Columns)).
		Int("ratios", added).
		Msg("snapshot consolidated")
	return snap, nil
}
