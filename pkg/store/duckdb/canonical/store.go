package canonical

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/de-tools/fidc-atlas/pkg/models/store"
	"github.com/de-tools/fidc-atlas/pkg/store/duckdb"
)

// Store persists canonical tables in long format, one row per cell.
type Store interface {
	// Save replaces every stored value of source.
	Save(ctx context.Context, source string, values []store.CanonicalValue) error
	Get(ctx context.Context, source string) ([]store.CanonicalValue, error)
	Sources(ctx context.Context) ([]string, error)
}

type canonicalStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &canonicalStore{
		db: db,
	}, nil
}

func (s *canonicalStore) Save(ctx context.Context, source string, values []store.CanonicalValue) error {
	return duckdb.InTransaction(ctx, s.db, func(ctx context.Context) error {
		conn := duckdb.Conn(ctx, s.db)
		if _, err := conn.ExecContext(ctx, `DELETE FROM canonical_values WHERE source = ?`, source); err != nil {
			return fmt.Errorf("delete values: %w", err)
		}
		if len(values) == 0 {
			return nil
		}

		stmt, err := conn.PrepareContext(ctx, `
			INSERT INTO canonical_values (source, period, position, label, value)
			VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare statement: %w", err)
		}
		defer stmt.Close()

		for _, v := range values {
			if _, err := stmt.ExecContext(ctx, source, v.Period, v.Position, v.Label, v.Value); err != nil {
				return fmt.Errorf("insert value: %w", err)
			}
		}
		return nil
	})
}

func (s *canonicalStore) Get(ctx context.Context, source string) ([]store.CanonicalValue, error) {
	rows, err := duckdb.Conn(ctx, s.db).QueryContext(ctx, `
		SELECT period, position, label, value
		FROM canonical_values
		WHERE source = ?
		ORDER BY period, position`, source)
	if err != nil {
		return nil, fmt.Errorf("query values: %w", err)
	}
	defer rows.Close()

	var out []store.CanonicalValue
	for rows.Next() {
		v := store.CanonicalValue{Source: source}
		if err := rows.Scan(&v.Period, &v.Position, &v.Label, &v.Value); err != nil {
			return nil, fmt.Errorf("scan value: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("canonical table %s: %w", source, duckdb.ErrNotFound)
	}
	return out, nil
}

func (s *canonicalStore) Sources(ctx context.Context) ([]string, error) {
	rows, err := duckdb.Conn(ctx, s.db).QueryContext(ctx,
		`SELECT DISTINCT source FROM canonical_values ORDER BY source`)
	if err != nil {
		return nil, fmt.Errorf("query sources: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan source: %w", err)
		}
		out = append(out, name)
	}
	return out, rows.Err()
}
