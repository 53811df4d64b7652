package adapters

import (
	"time"

	"github.com/de-tools/fidc-atlas/pkg/models/domain"
	"github.com/de-tools/fidc-atlas/pkg/models/store"
)

func MapDomainSnapshotToStore(s *domain.Snapshot) []store.SnapshotValue {
	if s == nil {
		return nil
	}
	out := make([]store.SnapshotValue, 0, len(s.Sources)*len(s.Columns))
	for i, source := range s.Sources {
		for j, label := range s.Columns {
			out = append(out, store.SnapshotValue{
				Period:   s.Date,
				Source:   source,
				Position: j,
				Label:    label,
				Value:    nullFloat(s.Values[i][j]),
			})
		}
	}
	return out
}

// MapStoreSnapshotValuesToDomain expects values ordered by source then position.
func MapStoreSnapshotValuesToDomain(period time.Time, values []store.SnapshotValue) *domain.Snapshot {
	s := &domain.Snapshot{Date: domain.MonthStart(period)}
	rows := make(map[string]int)
	for _, v := range values {
		i, ok := rows[v.Source]
		if !ok {
			i = len(s.Sources)
			rows[v.Source] = i
			s.Sources = append(s.Sources, v.Source)
			s.Values = append(s.Values, nil)
		}
		if i == 0 && v.Position == len(s.Columns) {
			s.Columns = append(s.Columns, v.Label)
		}
		s.Values[i] = setAt(s.Values[i], v.Position, fromNull(v.Value))
	}
	for i := range s.Values {
		s.Values[i] = pad(s.Values[i], len(s.Columns))
	}
	return s
}

func MapDomainRunReportToStore(r *domain.RunReport) store.Run {
	return store.Run{
		ID:         r.RunID,
		Period:     domain.MonthStart(r.Date),
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		Attempted:  r.Attempted,
		Succeeded:  r.Succeeded,
		Failed:     r.Failed,
		Completion: r.Completion(),
	}
}

func MapStoreRunToDomain(r store.Run) *domain.RunReport {
	return &domain.RunReport{
		RunID:      r.ID,
		Date:       r.Period,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		Attempted:  r.Attempted,
		Succeeded:  r.Succeeded,
		Failed:     r.Failed,
	}
}
