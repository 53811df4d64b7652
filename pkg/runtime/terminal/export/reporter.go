package export

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"text/template"
	"time"

	"github.com/de-tools/fidc-atlas/pkg/models/domain"
)

type TableConfig struct {
	NameWidth  int
	ValueWidth int
}

func DefaultTableConfig() TableConfig {
	return TableConfig{
		NameWidth:  44,
		ValueWidth: 24,
	}
}

type Reporter struct {
	writer io.Writer
	config TableConfig
}

func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{
		writer: writer,
		config: DefaultTableConfig(),
	}
}

type row struct {
	Name  string
	Value string
}

type block struct {
	Title string
	Rows  []row
}

func formatValue(v float64) string {
	if domain.IsMissing(v) {
		return "-"
	}
	return fmt.Sprintf("%.2f", v)
}

func (c *Reporter) funcs() template.FuncMap {
	return template.FuncMap{
		"formatRow": func(name, value string) string {
			return fmt.Sprintf("| %-*s | %*s |",
				c.config.NameWidth, name,
				c.config.ValueWidth, value)
		},
		"separator": func() string {
			return fmt.Sprintf("+%s+%s+",
				strings.Repeat("-", c.config.NameWidth+2),
				strings.Repeat("-", c.config.ValueWidth+2))
		},
	}
}

const gridTmpl = `
{{.Title}}
{{range .Blocks}}
=== {{.Title}} ===
{{separator}}
{{range .Rows}}{{formatRow .Name .Value}}
{{end}}{{separator}}
{{end}}`

func (c *Reporter) grid(title string, blocks []block) error {
	t, err := template.New("grid").Funcs(c.funcs()).Parse(gridTmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}
	return t.Execute(c.writer, struct {
		Title  string
		Blocks []block
	}{title, blocks})
}

// Snapshot prints one block per source with the source's non-missing columns.
func (c *Reporter) Snapshot(s *domain.Snapshot) error {
	blocks := make([]block, 0, len(s.Sources))
	for i, name := range s.Sources {
		b := block{Title: name}
		for j, col := range s.Columns {
			if v := s.Values[i][j]; !domain.IsMissing(v) {
				b.Rows = append(b.Rows, row{Name: col, Value: formatValue(v)})
			}
		}
		blocks = append(blocks, b)
	}
	title := fmt.Sprintf("Snapshot %s (%d sources, %d columns)",
		s.Date.Format(domain.DateLayout), len(s.Sources), len(s.Columns))
	return c.grid(title, blocks)
}

// Table prints the canonical row of t for the month of date.
func (c *Reporter) Table(t *domain.CanonicalTable, date time.Time) error {
	month := domain.MonthStart(date)
	values, ok := t.Row(month)
	if !ok {
		return fmt.Errorf("%s has no row for %s", t.Source, month.Format(domain.DateLayout))
	}
	b := block{Title: month.Format(domain.DateLayout)}
	for j, col := range t.Columns {
		b.Rows = append(b.Rows, row{Name: col, Value: formatValue(values[j])})
	}
	title := fmt.Sprintf("%s (%d months, %d columns)", t.Source, len(t.Dates), len(t.Columns))
	return c.grid(title, []block{b})
}

// Runs prints the outcome of each run, newest first as given.
func (c *Reporter) Runs(reports ...*domain.RunReport) error {
	blocks := make([]block, 0, len(reports))
	for _, r := range reports {
		b := block{Title: r.RunID, Rows: []row{
			{Name: "Started", Value: r.StartedAt.Format(time.DateTime)},
			{Name: "Duration", Value: r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond).String()},
			{Name: "Attempted", Value: fmt.Sprint(len(r.Attempted))},
			{Name: "Succeeded", Value: fmt.Sprint(len(r.Succeeded))},
			{Name: "Completion", Value: fmt.Sprintf("%.1f%%", r.Completion())},
		}}
		if r.Snapshot != nil {
			b.Rows = append(b.Rows, row{Name: "Snapshot sources", Value: fmt.Sprint(len(r.Snapshot.Sources))})
		}
		for _, name := range r.FailedSources() {
			b.Rows = append(b.Rows, row{Name: "Failed: " + name, Value: truncate(r.Failed[name], c.config.ValueWidth)})
		}
		blocks = append(blocks, b)
	}
	title := "Runs"
	if len(reports) > 0 {
		title = fmt.Sprintf("Runs for %s", reports[0].Date.Format(domain.DateLayout))
	}
	return c.grid(title, blocks)
}

// Sources prints the catalogue entries and whether a canonical table is stored for each.
func (c *Reporter) Sources(defs []domain.SourceDefinition, stored []string) error {
	b := block{Title: "Catalogue"}
	for _, def := range defs {
		status := "not stored"
		names := append([]string{def.Name}, def.Funds...)
		if slices.ContainsFunc(names, func(n string) bool { return slices.Contains(stored, n) }) {
			status = "stored"
		}
		name := def.Name
		if def.RecipeName() != def.Name {
			name += " (" + def.RecipeName() + ")"
		}
		b.Rows = append(b.Rows, row{Name: name, Value: status})
	}
	return c.grid(fmt.Sprintf("Sources (%d)", len(defs)), []block{b})
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
