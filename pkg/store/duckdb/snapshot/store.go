package snapshot

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/de-tools/fidc-atlas/pkg/models/store"
	"github.com/de-tools/fidc-atlas/pkg/store/duckdb"
)

// Store persists consolidated snapshots and the reports of the runs that built them.
type Store interface {
	// SaveSnapshot replaces the snapshot stored for period.
	SaveSnapshot(ctx context.Context, period time.Time, values []store.SnapshotValue) error
	GetSnapshot(ctx context.Context, period time.Time) ([]store.SnapshotValue, error)
	Periods(ctx context.Context) ([]time.Time, error)
	SaveRun(ctx context.Context, run store.Run) error
	// GetRuns returns the runs of period, newest first.
	GetRuns(ctx context.Context, period time.Time) ([]store.Run, error)
}

type snapshotStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &snapshotStore{
		db: db,
	}, nil
}

func (s *snapshotStore) SaveSnapshot(ctx context.Context, period time.Time, values []store.SnapshotValue) error {
	return duckdb.InTransaction(ctx, s.db, func(ctx context.Context) error {
		conn := duckdb.Conn(ctx, s.db)
		if _, err := conn.ExecContext(ctx, `DELETE FROM snapshot_values WHERE period = ?`, period); err != nil {
			return fmt.Errorf("delete snapshot: %w", err)
		}
		if len(values) == 0 {
			return nil
		}

		stmt, err := conn.PrepareContext(ctx, `
			INSERT INTO snapshot_values (period, source, position, label, value)
			VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare statement: %w", err)
		}
		defer stmt.Close()

		for _, v := range values {
			if _, err := stmt.ExecContext(ctx, period, v.Source, v.Position, v.Label, v.Value); err != nil {
				return fmt.Errorf("insert value: %w", err)
			}
		}
		return nil
	})
}

func (s *snapshotStore) GetSnapshot(ctx context.Context, period time.Time) ([]store.SnapshotValue, error) {
	rows, err := duckdb.Conn(ctx, s.db).QueryContext(ctx, `
		SELECT period, source, position, label, value
		FROM snapshot_values
		WHERE period = ?
		ORDER BY source, position`, period)
	if err != nil {
		return nil, fmt.Errorf("query snapshot: %w", err)
	}
	defer rows.Close()

	var out []store.SnapshotValue
	for rows.Next() {
		var v store.SnapshotValue
		if err := rows.Scan(&v.Period, &v.Source, &v.Position, &v.Label, &v.Value); err != nil {
			return nil, fmt.Errorf("scan value: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("snapshot %s: %w", period.Format(time.DateOnly), duckdb.ErrNotFound)
	}
	return out, nil
}

func (s *snapshotStore) Periods(ctx context.Context) ([]time.Time, error) {
	rows, err := duckdb.Conn(ctx, s.db).QueryContext(ctx,
		`SELECT DISTINCT period FROM snapshot_values ORDER BY period`)
	if err != nil {
		return nil, fmt.Errorf("query periods: %w", err)
	}
	defer rows.Close()

	var out []time.Time
	for rows.Next() {
		var p time.Time
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scan period: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *snapshotStore) SaveRun(ctx context.Context, run store.Run) error {
	attempted, err := json.Marshal(run.Attempted)
	if err != nil {
		return fmt.Errorf("marshal attempted: %w", err)
	}
	succeeded, err := json.Marshal(run.Succeeded)
	if err != nil {
		return fmt.Errorf("marshal succeeded: %w", err)
	}
	failed, err := json.Marshal(run.Failed)
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}

	_, err = duckdb.Conn(ctx, s.db).ExecContext(ctx, `
		INSERT INTO runs (id, period, started_at, finished_at, attempted, succeeded, failed, completion)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Period, run.StartedAt, run.FinishedAt,
		string(attempted), string(succeeded), string(failed), run.Completion,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

func (s *snapshotStore) GetRuns(ctx context.Context, period time.Time) ([]store.Run, error) {
	rows, err := duckdb.Conn(ctx, s.db).QueryContext(ctx, `
		SELECT id, period, started_at, finished_at, attempted, succeeded, failed, completion
		FROM runs
		WHERE period = ?
		ORDER BY started_at DESC`, period)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []store.Run
	for rows.Next() {
		var run store.Run
		var attempted, succeeded, failed string
		if err := rows.Scan(&run.ID, &run.Period, &run.StartedAt, &run.FinishedAt,
			&attempted, &succeeded, &failed, &run.Completion); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if err := json.Unmarshal([]byte(attempted), &run.Attempted); err != nil {
			return nil, fmt.Errorf("unmarshal attempted: %w", err)
		}
		if err := json.Unmarshal([]byte(succeeded), &run.Succeeded); err != nil {
			return nil, fmt.Errorf("unmarshal succeeded: %w", err)
		}
		if err := json.Unmarshal([]byte(failed), &run.Failed); err != nil {
			return nil, fmt.Errorf("unmarshal failed: %w", err)
		}
		out = append(out, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("runs for %s: %w", period.Format(time.DateOnly), duckdb.ErrNotFound)
	}
	return out, nil
}
