package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"

	"github.com/marcboeker/go-duckdb/v2"
)

var ErrNotFound = errors.New("not found")

const CanonicalValuesSchema = `
	CREATE TABLE IF NOT EXISTS canonical_values (
		source VARCHAR NOT NULL,
		period DATE NOT NULL,
		position INTEGER NOT NULL,
		label VARCHAR NOT NULL,
		value DOUBLE,
		PRIMARY KEY (source, period, position)
	);
`
const SnapshotValuesSchema = `
	CREATE TABLE IF NOT EXISTS snapshot_values (
		period DATE NOT NULL,
		source VARCHAR NOT NULL,
		position INTEGER NOT NULL,
		label VARCHAR NOT NULL,
		value DOUBLE,
		PRIMARY KEY (period, source, position)
	);
`
const RunsSchema = `
	CREATE TABLE IF NOT EXISTS runs (
		id VARCHAR NOT NULL PRIMARY KEY,
		period DATE NOT NULL,
		started_at TIMESTAMP NOT NULL,
		finished_at TIMESTAMP NOT NULL,
		attempted VARCHAR,
		succeeded VARCHAR,
		failed VARCHAR,
		completion DOUBLE
	);
`

var bootQueries = []string{
	CanonicalValuesSchema,
	SnapshotValuesSchema,
	RunsSchema,
}

type Settings struct {
	DbPath string
}

func NewDB(settings Settings) (*sql.DB, error) {
	c, err := duckdb.NewConnector(fmt.Sprintf("%s?threads=4", settings.DbPath), func(exec driver.ExecerContext) error {
		for _, query := range bootQueries {
			_, err := exec.ExecContext(context.Background(), query, nil)
			if err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	db := sql.OpenDB(c)
	return db, nil
}
