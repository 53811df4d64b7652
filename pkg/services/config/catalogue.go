package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/de-tools/fidc-atlas/pkg/models/domain"
	"gopkg.in/yaml.v3"
)

var ErrInvalidCatalogue = errors.New("invalid catalogue")

type catalogueDoc struct {
	Sources          []sourceDoc   `yaml:"sources"`
	Equivalences     yaml.Node     `yaml:"equivalences"`
	SnapshotPatterns []string      `yaml:"snapshot_patterns"`
	DayBuckets       *dayBucketDoc `yaml:"day_buckets"`
	Layout           *layoutDoc    `yaml:"layout"`
}

type sourceDoc struct {
	Name   string    `yaml:"name"`
	Recipe string    `yaml:"recipe"`
	Funds  []string  `yaml:"funds"`
	Rules  []ruleDoc `yaml:"rules"`
}

type ruleDoc struct {
	Pattern string   `yaml:"pattern"`
	Tag     string   `yaml:"tag"`
	Factor  *float64 `yaml:"factor"`
}

type dayBucketDoc struct {
	LowerBoundCorrections []int `yaml:"lower_bound_corrections"`
	OpenBoundCorrections  []int `yaml:"open_bound_corrections"`
}

type layoutDoc struct {
	PlaceBefore []struct {
		Column string `yaml:"column"`
		Anchor string `yaml:"anchor"`
	} `yaml:"place_before"`
	PlaceAfterGroup []struct {
		Column string `yaml:"column"`
		Group  string `yaml:"group"`
	} `yaml:"place_after_group"`
}

// LoadCatalogue reads and validates the catalogue document at path.
func LoadCatalogue(path string) (*domain.Catalogue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalogue: %w", err)
	}
	return ParseCatalogue(data)
}

// ParseCatalogue decodes a catalogue document, compiling every pattern up front.
func ParseCatalogue(data []byte) (*domain.Catalogue, error) {
	var doc catalogueDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCatalogue, err)
	}

	cat := &domain.Catalogue{
		Sources:          make([]domain.SourceDefinition, 0, len(doc.Sources)),
		SnapshotPatterns: doc.SnapshotPatterns,
		DayBuckets:       domain.DefaultDayBucketConfig(),
		Layout:           domain.DefaultLayoutConfig(),
	}

	names := make(map[string]struct{}, len(doc.Sources))
	for _, s := range doc.Sources {
		if s.Name == "" {
			return nil, fmt.Errorf("%w: source without name", ErrInvalidCatalogue)
		}
		if _, dup := names[s.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate source %s", ErrInvalidCatalogue, s.Name)
		}
		names[s.Name] = struct{}{}

		def, err := buildSource(s)
		if err != nil {
			return nil, fmt.Errorf("%w: source %s: %w", ErrInvalidCatalogue, s.Name, err)
		}
		cat.Sources = append(cat.Sources, def)
	}

	eq, err := decodeEquivalences(&doc.Equivalences)
	if err != nil {
		return nil, fmt.Errorf("%w: equivalences: %w", ErrInvalidCatalogue, err)
	}
	cat.Equivalences = eq

	for _, p := range doc.SnapshotPatterns {
		if _, err := domain.CompileFullMatch(p); err != nil {
			return nil, fmt.Errorf("%w: snapshot_patterns: %w", ErrInvalidCatalogue, err)
		}
	}

	if doc.DayBuckets != nil {
		cat.DayBuckets = domain.DayBucketConfig{
			LowerBoundCorrections: doc.DayBuckets.LowerBoundCorrections,
			OpenBoundCorrections:  doc.DayBuckets.OpenBoundCorrections,
		}
	}
	if doc.Layout != nil {
		cat.Layout = domain.LayoutConfig{}
		for _, p := range doc.Layout.PlaceBefore {
			cat.Layout.PlaceBefore = append(cat.Layout.PlaceBefore, domain.Placement{Column: p.Column, Anchor: p.Anchor})
		}
		for _, p := range doc.Layout.PlaceAfterGroup {
			cat.Layout.PlaceAfterGroup = append(cat.Layout.PlaceAfterGroup, domain.GroupPlacement{Column: p.Column, Group: p.Group})
		}
	}

	return cat, nil
}

func buildSource(s sourceDoc) (domain.SourceDefinition, error) {
	def := domain.SourceDefinition{
		Name:   s.Name,
		Recipe: s.Recipe,
		Funds:  s.Funds,
		Rules:  make([]domain.FieldRule, 0, len(s.Rules)),
	}
	for _, r := range s.Rules {
		tag, err := domain.ParseTag(r.Tag)
		if err != nil {
			return def, err
		}
		rule, err := domain.NewFieldRule(r.Pattern, tag)
		if err != nil {
			return def, err
		}
		rule.Factor = r.Factor
		def.Rules = append(def.Rules, rule)
	}
	return def, nil
}

// decodeEquivalences walks the mapping node directly; key order is the
// required-column order of snapshots and a plain map would lose it.
func decodeEquivalences(node *yaml.Node) (domain.EquivalenceMap, error) {
	if node.Kind == 0 {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("expected mapping at line %d", node.Line)
	}
	out := make(domain.EquivalenceMap, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		var aliases []string
		if err := value.Decode(&aliases); err != nil {
			return nil, fmt.Errorf("aliases of %q: %w", key.Value, err)
		}
		out = append(out, domain.Equivalence{Canonical: key.Value, Aliases: aliases})
	}
	return out, nil
}
