package daybucket

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/de-tools/fidc-atlas/pkg/models/domain"
)

var (
	spaces = regexp.MustCompile(`\s+`)

	// "1-30" is published by some administrators for the first bucket, which every
	// other source labels "0-30".
	firstBucketRange = regexp.MustCompile(`^1\s*-\s*(\d+)$`)
	closedRange = regexp.MustCompile(`^(?:de\s*)?(\d+)\s*(?:a|e|-)\s*(\d+)(?:\s*dias?)?$`)
	upTo        = regexp.MustCompile(`^(?:até|ate|<=)\s*(\d+)(?:\s*dias?)?$`)
	above       = regexp.MustCompile(`^(?:>|acima\s*de|superior(?:\s*a)?)\s*(\d+)(?:\s*dias?)?$`)

	canonicalForm = regexp.MustCompile(`^(?:\d+-\d+|<= \d+|> \d+) dias$`)
)

// Canonicalizer rewrites day-interval headers to "{start}-{end} dias",
// "<= {n} dias" or "> {n} dias".
type Canonicalizer struct {
	lower []int
	open  []int
}

func NewCanonicalizer(cfg domain.DayBucketConfig) *Canonicalizer {
	return &Canonicalizer{
		lower: slices.Clone(cfg.LowerBoundCorrections),
		open:  slices.Clone(cfg.OpenBoundCorrections),
	}
}

// Label returns the canonical form of s and whether s is a day interval at all.
func (c *Canonicalizer) Label(s string) (string, bool) {
	entry := spaces.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), " ")
	if entry == "" {
		return s, false
	}

	if m := firstBucketRange.FindStringSubmatch(entry); m != nil {
		return fmt.Sprintf("0-%s dias", m[1]), true
	}
	if m := closedRange.FindStringSubmatch(entry); m != nil {
		return fmt.Sprintf("%d-%s dias", c.adjust(m[1], c.lower), m[2]), true
	}
	if m := upTo.FindStringSubmatch(entry); m != nil {
		return fmt.Sprintf("<= %s dias", m[1]), true
	}
	if m := above.FindStringSubmatch(entry); m != nil {
		return fmt.Sprintf("> %d dias", c.adjust(m[1], c.open)), true
	}
	return s, false
}

// Columns rewrites every interval label and leaves the rest untouched.
func (c *Canonicalizer) Columns(labels []string) []string {
	out := make([]string, len(labels))
	for i, l := range labels {
		out[i], _ = c.Label(l)
	}
	return out
}

func (c *Canonicalizer) adjust(raw string, corrections []int) int {
	n, _ := strconv.Atoi(raw)
	if slices.Contains(corrections, n) {
		return n - 1
	}
	return n
}

// IsInterval reports whether label is already in canonical interval form.
func IsInterval(label string) bool {
	return canonicalForm.MatchString(label)
}
