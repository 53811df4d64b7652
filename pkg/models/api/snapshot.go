package api

import "time"

type Source struct {
	Name   string   `json:"name"`
	Recipe string   `json:"recipe"`
	Funds  []string `json:"funds,omitempty"`
}

type SourcesResponse struct {
	Sources []Source `json:"sources"`
}

// Values are null where the cell is missing.
type TableRow struct {
	Date   string     `json:"date"`
	Values []*float64 `json:"values"`
}

type CanonicalTable struct {
	Source  string     `json:"source"`
	Columns []string   `json:"columns"`
	Rows    []TableRow `json:"rows"`
}

type SnapshotRow struct {
	Source string     `json:"source"`
	Values []*float64 `json:"values"`
}

type Snapshot struct {
	Date    string        `json:"date"`
	Columns []string      `json:"columns"`
	Rows    []SnapshotRow `json:"rows"`
}

type Run struct {
	ID         string            `json:"id"`
	Date       string            `json:"date"`
	StartedAt  time.Time         `json:"started_at"`
	FinishedAt time.Time         `json:"finished_at"`
	Attempted  []string          `json:"attempted"`
	Succeeded  []string          `json:"succeeded"`
	Failed     map[string]string `json:"failed,omitempty"`
	Completion float64           `json:"completion"`
}

type RunsResponse struct {
	Runs []Run `json:"runs"`
}

type Error struct {
	Error string `json:"error"`
}

type PeriodsResponse struct {
	Periods []string `json:"periods"`
}
