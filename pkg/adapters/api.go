package adapters

import (
	"github.com/de-tools/fidc-atlas/pkg/models/api"
	"github.com/de-tools/fidc-atlas/pkg/models/domain"
)

func apiValues(values []float64) []*float64 {
	out := make([]*float64, len(values))
	for i, v := range values {
		if domain.IsMissing(v) {
			continue
		}
		out[i] = &v
	}
	return out
}

func MapDomainSourceToAPI(def domain.SourceDefinition) api.Source {
	return api.Source{Name: def.Name, Recipe: def.RecipeName(), Funds: def.Funds}
}

func MapDomainCanonicalTableToAPI(t *domain.CanonicalTable) api.CanonicalTable {
	out := api.CanonicalTable{Source: t.Source, Columns: t.Columns, Rows: make([]api.TableRow, len(t.Dates))}
	for i, d := range t.Dates {
		out.Rows[i] = api.TableRow{Date: d.Format(domain.DateLayout), Values: apiValues(t.Values[i])}
	}
	return out
}

func MapDomainSnapshotToAPI(s *domain.Snapshot) api.Snapshot {
	out := api.Snapshot{
		Date:    s.Date.Format(domain.DateLayout),
		Columns: s.Columns,
		Rows:    make([]api.SnapshotRow, len(s.Sources)),
	}
	for i, source := range s.Sources {
		out.Rows[i] = api.SnapshotRow{Source: source, Values: apiValues(s.Values[i])}
	}
	return out
}

func MapDomainRunReportToAPI(r *domain.RunReport) api.Run {
	return api.Run{
		ID:         r.RunID,
		Date:       r.Date.Format(domain.DateLayout),
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		Attempted:  r.Attempted,
		Succeeded:  r.Succeeded,
		Failed:     r.Failed,
		Completion: r.Completion(),
	}
}
