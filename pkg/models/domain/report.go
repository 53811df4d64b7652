package domain

import (
	"slices"
	"time"
)

// RunReport summarises one reshaping + consolidation run.
type RunReport struct {
	RunID      string
	Date       time.Time
	StartedAt  time.Time
	FinishedAt time.Time
	Attempted  []string
	Succeeded  []string
	// Failed maps source name to the cause that excluded it.
	Failed     map[string]string
	Snapshot   *Snapshot
}

// Completion is the share of attempted sources that produced a canonical table, in percent.
func (r *RunReport) Completion() float64 {
	if len(r.Attempted) == 0 {
		return 0
	}
	return 100 * float64(len(r.Succeeded)) / float64(len(r.Attempted))
}

// FailedSources lists the failed source names in a stable order.
func (r *RunReport) FailedSources() []string {
	out := make([]string, 0, len(r.Failed))
	for name := range r.Failed {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}
